package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kpphospital/mch-appointments/internal/appointment"
	"github.com/kpphospital/mch-appointments/internal/upstream"
	"github.com/kpphospital/mch-appointments/pkg/logging"
)

const lineUpstream = "line"

var lineTracer = otel.Tracer("mch.internal.notify.line")

// ErrNotConfigured is returned when the LINE endpoint, token or group is
// missing. It is a server configuration problem and is never retried.
var ErrNotConfigured = errors.New("notify: LINE credentials are not configured")

// LineConfig controls how the LINE push client behaves.
type LineConfig struct {
	Endpoint    string
	AccessToken string
	GroupID     string
	Timeout     time.Duration
	HTTPClient  *http.Client
	Location    *time.Location
	Now         func() time.Time
	Logger      *logging.Logger
}

// Configured reports whether every LINE setting is present.
func (c LineConfig) Configured() bool {
	return strings.TrimSpace(c.Endpoint) != "" &&
		strings.TrimSpace(c.AccessToken) != "" &&
		strings.TrimSpace(c.GroupID) != ""
}

// LineClient pushes Flex messages to a staff LINE group.
type LineClient struct {
	endpoint    string
	accessToken string
	groupID     string
	httpClient  *http.Client
	location    *time.Location
	now         func() time.Time
	logger      *logging.Logger
}

// NewLineClient builds a client, or returns ErrNotConfigured when any
// credential is missing.
func NewLineClient(cfg LineConfig) (*LineClient, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
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
	return &LineClient{
		endpoint:    strings.TrimSpace(cfg.Endpoint),
		accessToken: strings.TrimSpace(cfg.AccessToken),
		groupID:     strings.TrimSpace(cfg.GroupID),
		httpClient:  httpClient,
		location:    loc,
		now:         now,
		logger:      logger,
	}, nil
}

// Push sends the registration card for req to the configured group. Any
// non-2xx reply is an *upstream.StatusError; network failures are an
// *upstream.TransportError.
func (c *LineClient) Push(ctx context.Context, req appointment.Request) error {
	ctx, span := lineTracer.Start(ctx, "notify.line.push")
	defer span.End()
	span.SetAttributes(
		attribute.String("mch.service", req.Service),
		attribute.String("mch.appointment_date", req.AppointmentDate),
	)

	payload := PushRequest{
		To:       c.groupID,
		Messages: []FlexMessage{BuildFlexMessage(req, c.now(), c.location)},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notify: marshal line payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build line request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return &upstream.TransportError{Upstream: lineUpstream, Err: err}
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if !upstream.Success(resp.StatusCode) {
		detail := upstream.ReadDiagnostic(resp)
		c.logger.Error("line api error", "status", resp.StatusCode, "body", detail)
		span.SetStatus(codes.Error, "non-2xx")
		return &upstream.StatusError{Upstream: lineUpstream, StatusCode: resp.StatusCode, Body: detail}
	}
	return nil
}
