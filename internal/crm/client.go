package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"nok-landing/internal/models"
)

const leadSource = "Лендинг НОК"

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Lead: лид в формате Zoho CRM.
type Lead struct {
	LastName    string `json:"Last_Name"`
	FirstName   string `json:"First_Name,omitempty"`
	Email       string `json:"Email"`
	Phone       string `json:"Phone,omitempty"`
	Company     string `json:"Company,omitempty"`
	Designation string `json:"Designation,omitempty"`
	Source      string `json:"Lead_Source,omitempty"`
	Description string `json:"Description,omitempty"`
}

// Zoho отвечает результатом по каждой записи в data, а ошибки авторизации и
// запроса целиком приходят в полях верхнего уровня.
type leadResult struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
	Details struct {
		ID              string `json:"id"`
		APIName         string `json:"api_name"`
		DuplicateRecord struct {
			ID string `json:"id"`
		} `json:"duplicate_record"`
	} `json:"details"`
}

type createLeadResponse struct {
	leadResult
	Data []leadResult `json:"data"`
}

// codeDuplicate: лид с таким email уже заведён, details указывает на него.
const codeDuplicate = "DUPLICATE_DATA"

// LeadError: CRM отклонила лид. Code: код Zoho (INVALID_TOKEN, MANDATORY_NOT_FOUND, ...).
type LeadError struct {
	HTTPStatus int
	Code       string
	Message    string
	Field      string
}

func (e *LeadError) Error() string {
	msg := fmt.Sprintf("crm: лид отклонён (HTTP %d, %s): %s", e.HTTPStatus, e.Code, e.Message)
	if e.Field != "" {
		msg += " [" + e.Field + "]"
	}
	return msg
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Name() string { return "crm" }

// Record создаёт лид по одобренной заявке.
func (c *Client) Record(ctx context.Context, sub *models.ApplicationSubmission) error {
	_, err := c.CreateLead(ctx, LeadFromApplication(sub))
	return err
}

// CreateLead возвращает id лида; если лид с такими данными уже есть, id существующего.
func (c *Client) CreateLead(ctx context.Context, lead *Lead) (string, error) {
	url := fmt.Sprintf("%s/Leads", c.baseURL)

	payload := map[string]interface{}{
		"data": []Lead{*lead},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal lead: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Zoho-oauthtoken "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	var createResp createLeadResponse
	if err := json.Unmarshal(body, &createResp); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return "", fmt.Errorf("failed to create lead (status %d): %s", resp.StatusCode, snippet(body))
		}
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(createResp.Data) == 0 {
		if createResp.Code != "" {
			return "", &LeadError{HTTPStatus: resp.StatusCode, Code: createResp.Code, Message: createResp.Message}
		}
		if resp.StatusCode >= http.StatusBadRequest {
			return "", fmt.Errorf("failed to create lead (status %d): %s", resp.StatusCode, snippet(body))
		}
		return "", errors.New("no data in response")
	}

	result := createResp.Data[0]
	switch {
	case result.Status == "success":
		return result.Details.ID, nil
	case result.Code == codeDuplicate && result.Details.DuplicateRecord.ID != "":
		return result.Details.DuplicateRecord.ID, nil
	case result.Code == codeDuplicate && result.Details.ID != "":
		return result.Details.ID, nil
	}

	return "", &LeadError{
		HTTPStatus: resp.StatusCode,
		Code:       result.Code,
		Message:    result.Message,
		Field:      result.Details.APIName,
	}
}

func snippet(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}

// LeadFromApplication: первое слово ФИО считается фамилией.
func LeadFromApplication(sub *models.ApplicationSubmission) *Lead {
	lastName, firstName := splitFullName(sub.FullName)

	var desc strings.Builder
	fmt.Fprintf(&desc, "Заявка %s", sub.Reference)
	if sub.Experience != "" {
		fmt.Fprintf(&desc, "\nОпыт: %s", sub.Experience.Label())
	}
	if sub.Message != "" {
		fmt.Fprintf(&desc, "\n%s", sub.Message)
	}

	return &Lead{
		LastName:    lastName,
		FirstName:   firstName,
		Email:       sub.Email,
		Phone:       sub.Phone,
		Company:     sub.Company,
		Designation: sub.Specialization.Label(),
		Source:      leadSource,
		Description: desc.String(),
	}
}

func splitFullName(fullName string) (string, string) {
	parts := strings.Fields(fullName)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
