package crm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nok-landing/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleApplication() *models.ApplicationSubmission {
	return &models.ApplicationSubmission{
		Reference:      uuid.MustParse("0e8c5b7e-4a1c-4d3e-9a55-35c2a4f1b001"),
		FullName:       "Сидорова Анна Петровна",
		Email:          "anna@example.ru",
		Phone:          "89001234567",
		Specialization: models.SpecDesigner,
		Company:        "АО Проектстрой",
		Experience:     models.ExpOverTen,
		Message:        "Интересует ближайшая дата",
		Consent:        true,
	}
}

func TestLeadFromApplication(t *testing.T) {
	lead := LeadFromApplication(sampleApplication())

	assert.Equal(t, "Сидорова", lead.LastName)
	assert.Equal(t, "Анна Петровна", lead.FirstName)
	assert.Equal(t, "anna@example.ru", lead.Email)
	assert.Equal(t, "АО Проектстрой", lead.Company)
	assert.Equal(t, models.SpecDesigner.Label(), lead.Designation)
	assert.Equal(t, leadSource, lead.Source)
	assert.Contains(t, lead.Description, "0e8c5b7e-4a1c-4d3e-9a55-35c2a4f1b001")
	assert.Contains(t, lead.Description, "Интересует ближайшая дата")
}

func TestSplitFullName(t *testing.T) {
	last, first := splitFullName("Кузнецов")
	assert.Equal(t, "Кузнецов", last)
	assert.Empty(t, first)

	last, first = splitFullName("  Кузнецов   Олег  ")
	assert.Equal(t, "Кузнецов", last)
	assert.Equal(t, "Олег", first)
}

func TestClient_CreateLead(t *testing.T) {
	var got struct {
		Data []Lead `json:"data"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/crm/v3/Leads", r.URL.Path)
		assert.Equal(t, "Zoho-oauthtoken secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":[{"code":"SUCCESS","details":{"id":"555"},"message":"record added","status":"success"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/crm/v3/", "secret", time.Second)
	id, err := c.CreateLead(context.Background(), LeadFromApplication(sampleApplication()))

	require.NoError(t, err)
	assert.Equal(t, "555", id)
	require.Len(t, got.Data, 1)
	assert.Equal(t, "Сидорова", got.Data[0].LastName)
}

func TestClient_RecordFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `oops`},
		{name: "rejected record", status: http.StatusOK, body: `{"data":[{"status":"error","message":"duplicate"}]}`},
		{name: "empty data", status: http.StatusOK, body: `{"data":[]}`},
		{name: "garbage", status: http.StatusOK, body: `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "secret", time.Second)
			assert.Equal(t, "crm", c.Name())
			assert.Error(t, c.Record(context.Background(), sampleApplication()))
		})
	}
}

func TestClient_CreateLeadErrorCarriesZohoCode(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   LeadError
	}{
		{
			name:   "record level",
			status: http.StatusBadRequest,
			body:   `{"data":[{"code":"MANDATORY_NOT_FOUND","details":{"api_name":"Last_Name"},"message":"required field not found","status":"error"}]}`,
			want:   LeadError{HTTPStatus: http.StatusBadRequest, Code: "MANDATORY_NOT_FOUND", Message: "required field not found", Field: "Last_Name"},
		},
		{
			name:   "request level",
			status: http.StatusUnauthorized,
			body:   `{"code":"INVALID_TOKEN","details":{},"message":"invalid oauth token","status":"error"}`,
			want:   LeadError{HTTPStatus: http.StatusUnauthorized, Code: "INVALID_TOKEN", Message: "invalid oauth token"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "secret", time.Second)
			_, err := c.CreateLead(context.Background(), LeadFromApplication(sampleApplication()))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want.Code)

			var leadErr *LeadError
			require.True(t, errors.As(err, &leadErr))
			assert.Equal(t, tt.want, *leadErr)
		})
	}
}

func TestClient_CreateLeadDuplicateReturnsExistingID(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "v3 details", body: `{"data":[{"code":"DUPLICATE_DATA","details":{"api_name":"Email","duplicate_record":{"id":"777"}},"message":"duplicate data","status":"error"}]}`},
		{name: "v2 details", body: `{"data":[{"code":"DUPLICATE_DATA","details":{"api_name":"Email","id":"777"},"message":"duplicate data","status":"error"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "secret", time.Second)
			id, err := c.CreateLead(context.Background(), LeadFromApplication(sampleApplication()))
			require.NoError(t, err)
			assert.Equal(t, "777", id)
			assert.NoError(t, c.Record(context.Background(), sampleApplication()))
		})
	}
}

func TestClient_DuplicateWithoutIDIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"data":[{"code":"DUPLICATE_DATA","details":{"api_name":"Email"},"message":"duplicate data","status":"error"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", time.Second)
	err := c.Record(context.Background(), sampleApplication())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DUPLICATE_DATA")
	assert.Contains(t, err.Error(), "[Email]")
}
