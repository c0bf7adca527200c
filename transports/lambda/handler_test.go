package main

import (
	"context"
	"encoding/base64"
	"net/http"
	"sync"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/maximhq/geminiproxy/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...any)                      {}
func (nopLogger) Info(msg string, args ...any)                       {}
func (nopLogger) Warn(msg string, args ...any)                       {}
func (nopLogger) Error(msg string, args ...any)                      {}
func (nopLogger) Fatal(msg string, args ...any)                      {}
func (nopLogger) SetLevel(level schemas.LogLevel)                    {}
func (nopLogger) SetOutputType(outputType schemas.LoggerOutputType) {}

type stubProxy struct {
	mu       sync.Mutex
	requests []schemas.InboundRequest
	resp     *schemas.OutboundResponse
}

func (s *stubProxy) Handle(ctx context.Context, req *schemas.InboundRequest) *schemas.OutboundResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, *req)
	return s.resp
}

func TestHandleRequest_MapsEventToProxy(t *testing.T) {
	proxy := &stubProxy{resp: schemas.NewJSONResponse(`{"candidates":[]}`)}
	handler := NewHandler(proxy, nopLogger{})

	resp, err := handler.HandleRequest(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Body:       `{"prompt":"hi"}`,
	})

	require.NoError(t, err)
	require.Len(t, proxy.requests, 1)
	assert.Equal(t, http.MethodPost, proxy.requests[0].Method)
	assert.Equal(t, `{"prompt":"hi"}`, proxy.requests[0].Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"candidates":[]}`, resp.Body)
	assert.Equal(t, map[string]string{"Content-Type": "application/json"}, resp.Headers)
}

func TestHandleRequest_ErrorResponseHasNoHeaders(t *testing.T) {
	proxy := &stubProxy{resp: schemas.MethodNotAllowed()}
	handler := NewHandler(proxy, nopLogger{})

	resp, err := handler.HandleRequest(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet})

	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "Method Not Allowed", resp.Body)
	assert.Nil(t, resp.Headers)
}

func TestHandleRequest_DecodesBase64Body(t *testing.T) {
	proxy := &stubProxy{resp: schemas.NewJSONResponse(`{}`)}
	handler := NewHandler(proxy, nopLogger{})

	_, err := handler.HandleRequest(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Body:            base64.StdEncoding.EncodeToString([]byte(`{"prompt":"encoded"}`)),
		IsBase64Encoded: true,
	})

	require.NoError(t, err)
	require.Len(t, proxy.requests, 1)
	assert.Equal(t, `{"prompt":"encoded"}`, proxy.requests[0].Body)
}

func TestHandleRequest_InvalidBase64IsInternalError(t *testing.T) {
	proxy := &stubProxy{resp: schemas.NewJSONResponse(`{}`)}
	handler := NewHandler(proxy, nopLogger{})

	resp, err := handler.HandleRequest(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Body:            "!!not base64!!",
		IsBase64Encoded: true,
	})

	require.NoError(t, err)
	assert.Empty(t, proxy.requests)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, resp.Body, `"error":"illegal base64 data`)
}

func TestHandleRequest_NonPostSkipsBase64Decoding(t *testing.T) {
	proxy := &stubProxy{resp: schemas.MethodNotAllowed()}
	handler := NewHandler(proxy, nopLogger{})

	resp, err := handler.HandleRequest(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodGet,
		Body:            "%%%",
		IsBase64Encoded: true,
	})

	require.NoError(t, err)
	require.Len(t, proxy.requests, 1)
	assert.Equal(t, http.MethodGet, proxy.requests[0].Method)
	assert.Equal(t, "%%%", proxy.requests[0].Body)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "Method Not Allowed", resp.Body)
}
