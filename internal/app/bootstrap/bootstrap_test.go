package bootstrap

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/kpphospital/mch-appointments/internal/config"
	httpmiddleware "github.com/kpphospital/mch-appointments/internal/http/middleware"
	"github.com/kpphospital/mch-appointments/internal/notify"
	"github.com/kpphospital/mch-appointments/internal/storage"
	"github.com/kpphospital/mch-appointments/pkg/logging"
)

func quietLogger() *logging.Logger { return logging.NewWithWriter(io.Discard, "error") }

func baseConfig() *appconfig.Config {
	return &appconfig.Config{
		Timezone:           "Asia/Bangkok",
		OutboundTimeout:    time.Second,
		StorageBackend:     "webapp",
		SheetsWebAppURL:    "http://127.0.0.1:1/exec",
		RateLimitPerMinute: 20,
		RateLimitBurst:     5,
	}
}

func TestBuildRedisClientDisabled(t *testing.T) {
	assert.Nil(t, BuildRedisClient(context.Background(), baseConfig(), quietLogger(), true))
}

func TestBuildRedisClientVerifies(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.RedisAddr = mr.Addr()

	client := BuildRedisClient(context.Background(), cfg, quietLogger(), true)
	require.NotNil(t, client)
	t.Cleanup(func() { _ = client.Close() })

	mr.Close()
	assert.Nil(t, BuildRedisClient(context.Background(), cfg, quietLogger(), true))
}

func TestBuildRateLimiterPrefersRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.RedisAddr = mr.Addr()

	limiter, closeFn := BuildRateLimiter(context.Background(), cfg, quietLogger())
	defer closeFn()
	assert.IsType(t, &httpmiddleware.RedisLimiter{}, limiter)
}

func TestBuildRateLimiterFallsBackToMemory(t *testing.T) {
	limiter, closeFn := BuildRateLimiter(context.Background(), baseConfig(), quietLogger())
	defer closeFn()
	assert.IsType(t, &httpmiddleware.RateLimiter{}, limiter)
}

func TestBuildRateLimiterDisabled(t *testing.T) {
	cfg := baseConfig()
	cfg.RateLimitPerMinute = 0

	limiter, closeFn := BuildRateLimiter(context.Background(), cfg, quietLogger())
	defer closeFn()
	assert.Nil(t, limiter)
}

func TestBuildEmailSender(t *testing.T) {
	okLoader := func(context.Context, *appconfig.Config) (aws.Config, error) {
		return aws.Config{Region: "ap-southeast-1"}, nil
	}
	failLoader := func(context.Context, *appconfig.Config) (aws.Config, error) {
		return aws.Config{}, errors.New("no credentials")
	}

	tests := []struct {
		name     string
		mutate   func(*appconfig.Config)
		loader   AWSConfigLoader
		wantType notify.EmailSender
		provider string
	}{
		{name: "no recipients", mutate: func(c *appconfig.Config) { c.NotifyEmailRecipients = nil }},
		{name: "sendgrid without key", mutate: func(c *appconfig.Config) { c.EmailProvider = "sendgrid" }, provider: "sendgrid"},
		{name: "sendgrid", mutate: func(c *appconfig.Config) { c.EmailProvider = "sendgrid"; c.SendGridAPIKey = "key" }, wantType: &notify.SendGridSender{}, provider: "sendgrid"},
		{name: "ses", mutate: func(c *appconfig.Config) { c.EmailProvider = "ses"; c.SESFromEmail = "clinic@example.com" }, loader: okLoader, wantType: &notify.SESSender{}, provider: "ses"},
		{name: "ses loader error", mutate: func(c *appconfig.Config) { c.EmailProvider = "ses"; c.SESFromEmail = "clinic@example.com" }, loader: failLoader, provider: "ses"},
		{name: "stub", mutate: func(c *appconfig.Config) { c.EmailProvider = "stub" }, wantType: &notify.StubEmailSender{}, provider: "stub"},
		{name: "unknown", mutate: func(c *appconfig.Config) { c.EmailProvider = "pigeon" }, provider: "pigeon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			cfg.NotifyEmailRecipients = []string{"nurse@example.com"}
			tt.mutate(cfg)

			sender, provider, reason := BuildEmailSender(context.Background(), cfg, quietLogger(), tt.loader)
			assert.Equal(t, tt.provider, provider)
			if tt.wantType == nil {
				assert.Nil(t, sender)
				assert.NotEmpty(t, reason)
				return
			}
			assert.IsType(t, tt.wantType, sender)
			assert.Empty(t, reason)
		})
	}
}

func TestBuildNotifierWithoutLineIsUnconfigured(t *testing.T) {
	f := BuildNotifier(context.Background(), baseConfig(), quietLogger(), nil)
	assert.False(t, f.Configured())
}

func TestBuildNotifierWithLine(t *testing.T) {
	cfg := baseConfig()
	cfg.LineMessagingAPI = "https://api.line.me/v2/bot/message/push"
	cfg.LineChannelAccessToken = "token"
	cfg.LineGroupID = "group"

	assert.True(t, BuildNotifier(context.Background(), cfg, quietLogger(), nil).Configured())
}

func TestBuildStore(t *testing.T) {
	store, err := BuildStore(context.Background(), baseConfig(), quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &storage.WebAppStore{}, store)

	cfg := baseConfig()
	cfg.StorageBackend = "sheets"
	_, err = BuildStore(context.Background(), cfg, quietLogger())
	assert.Error(t, err, "spreadsheet id is required")

	cfg.StorageBackend = "postgres"
	_, err = BuildStore(context.Background(), cfg, quietLogger())
	assert.ErrorContains(t, err, "unknown STORAGE_BACKEND")
}

func TestBuildRequiresConfig(t *testing.T) {
	_, err := Build(context.Background(), nil, quietLogger(), Options{})
	assert.Error(t, err)
}

func TestBuildServesRoutes(t *testing.T) {
	app, err := Build(context.Background(), baseConfig(), quietLogger(), Options{})
	require.NoError(t, err)
	defer app.Close()

	for _, tc := range []struct {
		path string
		want int
	}{
		{"/health", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/appointments", http.StatusOK},
		{"/api/schedule/window", http.StatusOK},
		{"/missing", http.StatusNotFound},
	} {
		rec := httptest.NewRecorder()
		app.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		assert.Equal(t, tc.want, rec.Code, tc.path)
	}
}
