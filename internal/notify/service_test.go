package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockEmailSender struct {
	sent   []EmailMessage
	failOn string
}

func (m *mockEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	if m.failOn != "" && msg.To == m.failOn {
		return errors.New("mock email error")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func TestForwarder_NotConfiguredMakesNoCall(t *testing.T) {
	email := &mockEmailSender{}
	f := NewForwarder(nil, email, []string{"nurse@example.com"}, nil)

	err := f.Forward(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, f.Configured())
	assert.Empty(t, email.sent)
}

func TestForwarder_NilReceiver(t *testing.T) {
	var f *Forwarder
	assert.ErrorIs(t, f.Forward(context.Background(), testRequest()), ErrNotConfigured)
}

func TestForwarder_SendsEmailCopyAfterPush(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	email := &mockEmailSender{failOn: "broken@example.com"}
	f := NewForwarder(newTestLineClient(t, srv.URL), email, []string{"broken@example.com", "nurse@example.com"}, nil)

	require.NoError(t, f.Forward(context.Background(), testRequest()))
	assert.Equal(t, int32(1), calls.Load())
	require.Len(t, email.sent, 1)
	assert.Equal(t, "nurse@example.com", email.sent[0].To)
}

func TestForwarder_PushFailureSkipsEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	email := &mockEmailSender{}
	f := NewForwarder(newTestLineClient(t, srv.URL), email, []string{"nurse@example.com"}, nil)

	err := f.Forward(context.Background(), testRequest())
	require.Error(t, err)
	assert.Empty(t, email.sent)
}
