package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpphospital/mch-appointments/internal/appointment"
	"github.com/kpphospital/mch-appointments/internal/upstream"
)

func testRequest() appointment.Request {
	return appointment.Request{
		FirstName:       "สมหญิง",
		LastName:        "ใจดี",
		Phone:           "081-234-5678",
		NationalID:      "1234567890123",
		AppointmentDate: "2026-10-21",
		AppointmentTime: "10:00",
		Service:         string(appointment.ServiceAntenatal),
		Notes:           "มาครั้งแรก",
	}
}

func newWebApp(t *testing.T, url string) *WebAppStore {
	t.Helper()
	store, err := NewWebAppStore(WebAppConfig{URL: url})
	require.NoError(t, err)
	return store
}

func TestNewWebAppStore_RequiresURL(t *testing.T) {
	_, err := NewWebAppStore(WebAppConfig{URL: "  "})
	assert.Error(t, err)
}

func TestWebAppStore_ForwardsVerbatim(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"result":"success","row":12}`)
	}))
	defer srv.Close()

	data, err := newWebApp(t, srv.URL).Append(context.Background(), testRequest())
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":"success","row":12}`, string(data))
	assert.Equal(t, "081-234-5678", got["phone"], "phone is forwarded unnormalized")
	assert.Equal(t, "1234567890123", got["nationalId"])
	assert.Equal(t, "มาครั้งแรก", got["notes"])
	assert.NotContains(t, got, "consent")
}

func TestWebAppStore_LargeSuccessReply(t *testing.T) {
	reply := `{"result":"success","echo":"` + strings.Repeat("x", 9000) + `"}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, reply)
	}))
	defer srv.Close()

	data, err := newWebApp(t, srv.URL).Append(context.Background(), testRequest())
	require.NoError(t, err)
	assert.JSONEq(t, reply, string(data))
}

func TestWebAppStore_FollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/exec", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/echo", http.StatusFound)
	})
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"result":"success"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	_, err := newWebApp(t, srv.URL+"/exec").Append(context.Background(), testRequest())
	assert.NoError(t, err)
}

func TestWebAppStore_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{"server error", http.StatusInternalServerError, "boom", func(t *testing.T, err error) {
			assert.Equal(t, http.StatusInternalServerError, upstream.StatusCode(err))
		}},
		{"error discriminator", http.StatusOK, `{"result":"error","error":"sheet locked"}`, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrNotSuccess)
		}},
		{"missing discriminator", http.StatusOK, `{"ok":true}`, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrNotSuccess)
		}},
		{"html body", http.StatusOK, "<html>login</html>", func(t *testing.T, err error) {
			assert.ErrorIs(t, err, upstream.ErrMalformedResponse)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := newWebApp(t, srv.URL).Append(context.Background(), testRequest())
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestWebAppStore_TransportFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newWebApp(t, url).Append(context.Background(), testRequest())
	var te *upstream.TransportError
	assert.True(t, errors.As(err, &te))
}
