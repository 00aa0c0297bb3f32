package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/kpphospital/mch-appointments/cmd/mainconfig"
	"github.com/kpphospital/mch-appointments/internal/app/bootstrap"
	appconfig "github.com/kpphospital/mch-appointments/internal/config"
	"github.com/kpphospital/mch-appointments/pkg/logging"
)

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	app, err := bootstrap.Build(context.Background(), cfg, logger, bootstrap.Options{
		LoadAWS: mainconfig.LoadAWSConfig,
	})
	if err != nil {
		panic(err)
	}
	defer app.Close()

	lambda.Start(func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return handle(ctx, app.Handler, evt)
	})
}

// handle replays an API Gateway v2 event through the router in-process.
func handle(ctx context.Context, handler http.Handler, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := strings.TrimSpace(evt.RawPath)
	if path == "" {
		path = strings.TrimSpace(evt.RequestContext.HTTP.Path)
	}
	if path == "" {
		path = "/"
	}
	target := path
	if qs := strings.TrimSpace(evt.RawQueryString); qs != "" {
		target += "?" + qs
	}

	body, err := decodeBody(evt)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusBadRequest, Body: "invalid body"}, nil
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusBadRequest, Body: "invalid request"}, nil
	}
	for k, v := range evt.Headers {
		req.Header.Set(k, v)
	}
	if len(evt.Cookies) > 0 {
		req.Header.Set("Cookie", strings.Join(evt.Cookies, "; "))
	}
	if host := strings.TrimSpace(evt.RequestContext.DomainName); host != "" {
		req.Host = host
	}
	if ip := strings.TrimSpace(evt.RequestContext.HTTP.SourceIP); ip != "" {
		req.RemoteAddr = net.JoinHostPort(ip, "0")
		if headerValue(evt.Headers, "x-real-ip") == "" {
			req.Header.Set("X-Real-Ip", ip)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return toResponse(rec), nil
}

func toResponse(rec *httptest.ResponseRecorder) events.APIGatewayV2HTTPResponse {
	res := rec.Result()
	out := events.APIGatewayV2HTTPResponse{
		StatusCode: res.StatusCode,
		Headers:    map[string]string{},
	}
	for k, values := range res.Header {
		if strings.EqualFold(k, "Set-Cookie") {
			out.Cookies = append(out.Cookies, values...)
			continue
		}
		out.Headers[strings.ToLower(k)] = strings.Join(values, ",")
	}

	raw := rec.Body.Bytes()
	if res.Header.Get("Content-Encoding") != "" || !utf8.Valid(raw) {
		out.Body = base64.StdEncoding.EncodeToString(raw)
		out.IsBase64Encoded = true
		return out
	}
	out.Body = string(raw)
	return out
}

func decodeBody(evt events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if !evt.IsBase64Encoded {
		return []byte(evt.Body), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(evt.Body)
	if err != nil {
		return nil, err
	}
	return decoded, nil
}

func headerValue(headers map[string]string, key string) string {
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
