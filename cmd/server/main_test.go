package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/baditaflorin/go_ner_combine/internal/core/conll"
)

type mockLogger struct{}

func (l *mockLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (l *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (l *mockLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (l *mockLogger) Error(msg string, keysAndValues ...interface{}) {}
func (l *mockLogger) Close() error                                   { return nil }

func newTestServer(t *testing.T) *server {
	t.Helper()
	n, err := conll.NewNormalizer(conll.DefaultConfig(), &mockLogger{})
	require.NoError(t, err)
	return newServer(n, &mockLogger{})
}

func do(s *server, method, path, body string) *fasthttp.RequestCtx {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	ctx.Request.SetBodyString(body)
	s.requestHandler(&ctx)
	return &ctx
}

func TestHealth(t *testing.T) {
	ctx := do(newTestServer(t), fasthttp.MethodGet, "/health", "")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), `"status":"ok"`)
	assert.NotEmpty(t, ctx.Response.Header.Peek("X-Request-Id"))
}

func TestNormalizeEndpoint(t *testing.T) {
	ctx := do(newTestServer(t), fasthttp.MethodPost, "/normalize", "-DOCSTART- -X- O O\n\nEU NNP B-NP B-ORG\n")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "\nEU\tB-ORG\n", string(ctx.Response.Body()))
}

func TestNormalizeEndpointMalformed(t *testing.T) {
	ctx := do(newTestServer(t), fasthttp.MethodPost, "/normalize", "\nEU NNP\n")
	assert.Equal(t, fasthttp.StatusUnprocessableEntity, ctx.Response.StatusCode())

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, 2, resp.Line)
}

func TestNormalizeEndpointMethod(t *testing.T) {
	ctx := do(newTestServer(t), fasthttp.MethodGet, "/normalize", "")
	assert.Equal(t, fasthttp.StatusMethodNotAllowed, ctx.Response.StatusCode())
}

func TestCombineEndpoint(t *testing.T) {
	body, err := json.Marshal(CombineRequest{
		Normalized: "EU\tB-ORG\n\n",
		Legacy:     "EU NNP B-NP B-ORG\n\n",
	})
	require.NoError(t, err)

	ctx := do(newTestServer(t), fasthttp.MethodPost, "/combine", string(body))
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp CombineResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, "EU\tB-ORG\n\nEU\tB-ORG\n\n", resp.Combined)
	assert.Equal(t, 4, resp.Lines)
	assert.Equal(t, 2, resp.NormalizedLines)
	assert.Equal(t, 2, resp.LegacyLines)
	assert.Len(t, resp.BLAKE3, 64)
}

func TestCombineEndpointBadJSON(t *testing.T) {
	ctx := do(newTestServer(t), fasthttp.MethodPost, "/combine", "{")
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestNotFound(t *testing.T) {
	ctx := do(newTestServer(t), fasthttp.MethodGet, "/length", "")
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}
