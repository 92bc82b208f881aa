package sheets

import (
	"context"
	"fmt"
	"os"

	"nok-landing/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

const timeLayout = "02.01.2006 15:04:05"

// Logger дописывает заявки строками в Google-таблицу.
type Logger struct {
	service     *gsheets.Service
	spreadsheet string
	sheetName   string
}

func New(ctx context.Context, credentialsPath, spreadsheetID, sheetName string) (*Logger, error) {
	credBytes, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credBytes, gsheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	return NewWithOptions(ctx, spreadsheetID, sheetName, option.WithHTTPClient(config.Client(ctx)))
}

func NewWithOptions(ctx context.Context, spreadsheetID, sheetName string, opts ...option.ClientOption) (*Logger, error) {
	service, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Sheets client: %w", err)
	}

	return &Logger{
		service:     service,
		spreadsheet: spreadsheetID,
		sheetName:   sheetName,
	}, nil
}

func (l *Logger) Name() string { return "sheets" }

func (l *Logger) Record(ctx context.Context, sub *models.ApplicationSubmission) error {
	valueRange := &gsheets.ValueRange{
		Values: [][]interface{}{Row(sub)},
	}

	_, err := l.service.Spreadsheets.Values.Append(
		l.spreadsheet,
		l.sheetName,
		valueRange,
	).ValueInputOption("RAW").Context(ctx).Do()

	return err
}

// Row: порядок колонок совпадает с шапкой таблицы.
func Row(sub *models.ApplicationSubmission) []interface{} {
	experience := ""
	if sub.Experience != "" {
		experience = sub.Experience.Label()
	}

	return []interface{}{
		sub.Reference.String(),
		sub.SubmittedAt.UTC().Format(timeLayout),
		sub.FullName,
		sub.Email,
		sub.Phone,
		sub.Specialization.Label(),
		sub.Company,
		experience,
		sub.Message,
	}
}
