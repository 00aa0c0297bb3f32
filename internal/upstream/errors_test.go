package upstream

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusError(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &StatusError{Upstream: "line", StatusCode: 401, Body: `{"message":"bad token"}`})
	assert.Equal(t, 401, StatusCode(err))
	assert.False(t, IsTransport(err))
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "bad token")
}

func TestTransportError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &TransportError{Upstream: "sheets", Err: cause}
	assert.True(t, IsTransport(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 0, StatusCode(err))
}

func TestReadDiagnosticTruncates(t *testing.T) {
	resp := &http.Response{Body: io.NopCloser(strings.NewReader("  " + strings.Repeat("x", 9000)))}
	got := ReadDiagnostic(resp)
	assert.Len(t, got, maxDiagnosticBytes-2)
	assert.Equal(t, "", ReadDiagnostic(nil))
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", Clip("short"))
	long := strings.Repeat("a", maxDiagnosticBytes+10)
	clipped := Clip(long)
	assert.Len(t, clipped, maxDiagnosticBytes+3)
	assert.True(t, strings.HasSuffix(clipped, "..."))
}

func TestSuccess(t *testing.T) {
	assert.True(t, Success(200))
	assert.True(t, Success(204))
	assert.False(t, Success(302))
	assert.False(t, Success(500))
}
