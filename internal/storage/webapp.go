package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
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

const (
	webAppUpstream = "sheets-webapp"

	// maxReplyBytes bounds the success body, which echoes the stored row.
	maxReplyBytes = 1 << 20
)

var storageTracer = otel.Tracer("mch.internal.storage")

// WebAppConfig controls the Apps Script web app client.
type WebAppConfig struct {
	URL        string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// WebAppStore posts the request body verbatim to an Apps Script web app.
// The script replies {"result":"success"} once the row is written.
type WebAppStore struct {
	url        string
	httpClient *http.Client
	logger     *logging.Logger
}

type webAppReply struct {
	Result string `json:"result"`
}

// NewWebAppStore builds a web app store. The default HTTP client follows
// redirects, which Apps Script relies on to hand back its response.
func NewWebAppStore(cfg WebAppConfig) (*WebAppStore, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, fmt.Errorf("storage: web app url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &WebAppStore{url: url, httpClient: httpClient, logger: logger}, nil
}

// Append implements Store.
func (s *WebAppStore) Append(ctx context.Context, req appointment.Request) (json.RawMessage, error) {
	ctx, span := storageTracer.Start(ctx, "storage.webapp.append")
	defer span.End()
	span.SetAttributes(attribute.String("mch.service", req.Service))

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("storage: marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("storage: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return nil, &upstream.TransportError{Upstream: webAppUpstream, Err: err}
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if !upstream.Success(resp.StatusCode) {
		detail := upstream.ReadDiagnostic(resp)
		s.logger.Error("error from apps script", "status", resp.StatusCode, "body", detail)
		span.SetStatus(codes.Error, "non-2xx")
		return nil, &upstream.StatusError{Upstream: webAppUpstream, StatusCode: resp.StatusCode, Body: detail}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return nil, &upstream.TransportError{Upstream: webAppUpstream, Err: err}
	}
	raw = bytes.TrimSpace(raw)

	var reply webAppReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		s.logger.Error("undecodable apps script reply", "error", err, "body", upstream.Clip(string(raw)))
		span.SetStatus(codes.Error, "malformed")
		return nil, fmt.Errorf("%w: %v", upstream.ErrMalformedResponse, err)
	}
	if reply.Result != "success" {
		detail := upstream.Clip(string(raw))
		s.logger.Error("non-success response from apps script", "body", detail)
		span.SetStatus(codes.Error, "not success")
		return nil, fmt.Errorf("%w: %s", ErrNotSuccess, detail)
	}
	return json.RawMessage(raw), nil
}
