package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nok-landing/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func sampleApplication() *models.ApplicationSubmission {
	return &models.ApplicationSubmission{
		Reference:      uuid.MustParse("3f1b3c8e-5b8a-4c59-8a1d-2f6f8e0c9a10"),
		SubmittedAt:    time.Date(2025, 4, 2, 9, 15, 0, 0, time.UTC),
		FullName:       "Орлов Дмитрий",
		Email:          "orlov@example.ru",
		Phone:          "+79001112233",
		Specialization: models.SpecArchitect,
		Consent:        true,
	}
}

func TestRow(t *testing.T) {
	row := Row(sampleApplication())

	require.Len(t, row, 9)
	assert.Equal(t, "3f1b3c8e-5b8a-4c59-8a1d-2f6f8e0c9a10", row[0])
	assert.Equal(t, "02.04.2025 09:15:00", row[1])
	assert.Equal(t, "Орлов Дмитрий", row[2])
	assert.Equal(t, models.SpecArchitect.Label(), row[5])
	assert.Equal(t, "", row[7])
}

func TestLogger_Record(t *testing.T) {
	var (
		gotPath  string
		gotQuery string
		gotBody  struct {
			Values [][]interface{} `json:"values"`
		}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-id","updates":{"updatedRows":1}}`))
	}))
	defer srv.Close()

	l, err := NewWithOptions(context.Background(), "sheet-id", "Заявки",
		option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	assert.Equal(t, "sheets", l.Name())

	require.NoError(t, l.Record(context.Background(), sampleApplication()))

	assert.True(t, strings.HasPrefix(gotPath, "/v4/spreadsheets/sheet-id/values/"), gotPath)
	assert.True(t, strings.HasSuffix(gotPath, ":append"), gotPath)
	assert.Contains(t, gotQuery, "valueInputOption=RAW")
	require.Len(t, gotBody.Values, 1)
	assert.Equal(t, "orlov@example.ru", gotBody.Values[0][3])
}

func TestLogger_RecordError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"forbidden"}}`))
	}))
	defer srv.Close()

	l, err := NewWithOptions(context.Background(), "sheet-id", "Заявки",
		option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	assert.Error(t, l.Record(context.Background(), sampleApplication()))
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), "/nonexistent/creds.json", "sheet-id", "Заявки")
	assert.Error(t, err)
}
