// Package upstream holds the error types shared by the outbound forwarders.
package upstream

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxDiagnosticBytes caps how much of an upstream body is kept for logs.
const maxDiagnosticBytes = 8192

// ErrMalformedResponse marks a 2xx reply whose body could not be understood.
var ErrMalformedResponse = errors.New("upstream: malformed response")

// StatusError is a completed exchange the upstream did not accept. Body is
// opaque diagnostic text and is never shown to patients.
type StatusError struct {
	Upstream   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: upstream returned status %d", e.Upstream, e.StatusCode)
	}
	return fmt.Sprintf("%s: upstream returned status %d: %s", e.Upstream, e.StatusCode, e.Body)
}

// TransportError is a request that never produced a response.
type TransportError struct {
	Upstream string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Upstream, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is, or wraps, a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// StatusCode extracts the upstream status from err, or 0 if there is none.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// ReadDiagnostic reads up to maxDiagnosticBytes of resp.Body as trimmed text.
func ReadDiagnostic(resp *http.Response) string {
	if resp == nil || resp.Body == nil {
		return ""
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxDiagnosticBytes))
	return strings.TrimSpace(string(raw))
}

// Clip shortens text to maxDiagnosticBytes for logs and error values.
func Clip(text string) string {
	if len(text) <= maxDiagnosticBytes {
		return text
	}
	return text[:maxDiagnosticBytes] + "..."
}

// Success reports whether code is in the 2xx range.
func Success(code int) bool {
	return code >= 200 && code < 300
}
