package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/kpphospital/mch-appointments/internal/appointment"
	"github.com/kpphospital/mch-appointments/internal/upstream"
	"github.com/kpphospital/mch-appointments/pkg/logging"
)

const sheetsAPIUpstream = "sheets-api"

// SheetsAPIConfig controls the direct Google Sheets backend.
type SheetsAPIConfig struct {
	SpreadsheetID   string
	Range           string
	CredentialsJSON string
	Location        *time.Location
	Now             func() time.Time
	Logger          *logging.Logger
	// ClientOptions are appended after the credential options. Tests use
	// them to point at a local server.
	ClientOptions []option.ClientOption
}

// SheetsAPIStore appends one row per registration with spreadsheets.values.append.
type SheetsAPIStore struct {
	values        *sheetsapi.SpreadsheetsValuesService
	spreadsheetID string
	rangeA1       string
	location      *time.Location
	now           func() time.Time
	logger        *logging.Logger
}

// NewSheetsAPIStore creates a Sheets API client for the configured spreadsheet.
func NewSheetsAPIStore(ctx context.Context, cfg SheetsAPIConfig) (*SheetsAPIStore, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("storage: spreadsheet id is required")
	}
	rangeA1 := strings.TrimSpace(cfg.Range)
	if rangeA1 == "" {
		rangeA1 = "Sheet1!A:J"
	}
	var opts []option.ClientOption
	if creds := strings.TrimSpace(cfg.CredentialsJSON); creds != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	}
	opts = append(opts, cfg.ClientOptions...)

	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: create sheets service: %w", err)
	}
	loc := cfg.Location
	if loc == nil {
		loc = appointment.ClinicLocation("Asia/Bangkok")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &SheetsAPIStore{
		values:        sheetsapi.NewSpreadsheetsValuesService(svc),
		spreadsheetID: cfg.SpreadsheetID,
		rangeA1:       rangeA1,
		location:      loc,
		now:           now,
		logger:        logger,
	}, nil
}

// Row lays out a registration in column order.
func Row(req appointment.Request, receivedAt string) []interface{} {
	return []interface{}{
		receivedAt,
		req.FirstName,
		req.LastName,
		req.Phone,
		req.NationalID,
		req.Service,
		req.AppointmentDate,
		req.AppointmentTime,
		req.Notes,
	}
}

type apiReply struct {
	Result       string `json:"result"`
	UpdatedRange string `json:"updatedRange"`
	UpdatedRows  int64  `json:"updatedRows"`
}

// Append implements Store. An append that reports zero updated rows counts
// as a failure.
func (s *SheetsAPIStore) Append(ctx context.Context, req appointment.Request) (json.RawMessage, error) {
	ctx, span := storageTracer.Start(ctx, "storage.sheets_api.append")
	defer span.End()

	row := Row(req, appointment.FormatTimestamp(s.now(), s.location))
	vr := &sheetsapi.ValueRange{Values: [][]interface{}{row}}

	resp, err := s.values.Append(s.spreadsheetID, s.rangeA1, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "append")
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			s.logger.Error("sheets api rejected append", "status", apiErr.Code, "message", apiErr.Message)
			return nil, &upstream.StatusError{Upstream: sheetsAPIUpstream, StatusCode: apiErr.Code, Body: apiErr.Message}
		}
		return nil, &upstream.TransportError{Upstream: sheetsAPIUpstream, Err: err}
	}
	if resp.Updates == nil || resp.Updates.UpdatedRows < 1 {
		span.SetStatus(codes.Error, "no rows")
		return nil, ErrNotSuccess
	}

	raw, err := json.Marshal(apiReply{
		Result:       "success",
		UpdatedRange: resp.Updates.UpdatedRange,
		UpdatedRows:  resp.Updates.UpdatedRows,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: marshal reply: %w", err)
	}
	return raw, nil
}
