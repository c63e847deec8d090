package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/tidytree/pkg/cache"
	"github.com/matzehuels/tidytree/pkg/errors"
	"github.com/matzehuels/tidytree/pkg/graph"
	"github.com/matzehuels/tidytree/pkg/observability"
	"github.com/matzehuels/tidytree/pkg/pipeline"
)

const abcde = `["A", ["B"], ["C", ["D"], ["E"]]]`

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	return New(pipeline.NewRunner(fc, nil, nil), opts...)
}

func do(s *Server, method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var e errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := do(s, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["version"])
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestRequestIDPreserved(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestLayout(t *testing.T) {
	s := newTestServer(t)
	rec := do(s, http.MethodPost, "/v1/layout?width=700&height=600&margin=20", "application/json", abcde)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "miss", rec.Header().Get(CacheHeader))

	l, err := graph.UnmarshalLayout(rec.Body.Bytes())
	require.NoError(t, err)
	a, ok := l.Node("0")
	require.True(t, ok)
	assert.InDelta(t, 240, a.X, 1e-9)
	assert.InDelta(t, 20, a.Y, 1e-9)

	rec = do(s, http.MethodPost, "/v1/layout?width=700&height=600&margin=20", "application/json", abcde)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hit", rec.Header().Get(CacheHeader))
}

func TestLayoutZeroMargin(t *testing.T) {
	s := newTestServer(t, WithDefaults(pipeline.Options{Margin: 40}))
	rec := do(s, http.MethodPost, "/v1/layout?margin=0", "application/json", abcde)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	l, err := graph.UnmarshalLayout(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Zero(t, l.Margin)
	a, ok := l.Node("0")
	require.True(t, ok)
	assert.InDelta(t, 0, a.Y, 1e-9)
}

func TestLayoutInputFormats(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name, target, contentType, body string
	}{
		{"yaml", "/v1/layout", "application/yaml", "- A\n- [B]\n- [C]\n"},
		{"script", "/v1/layout", "text/plain", ":: width 300\n[A, [B], [C]]\n"},
		{"query", "/v1/layout?input=yaml", "", "[A, [B]]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, tt.target, tt.contentType, tt.body)
			assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		})
	}
}

func TestRender(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		format      string
		contentType string
		contains    string
	}{
		{"svg", "image/svg+xml", "<svg"},
		{"dot", "text/vnd.graphviz", "digraph G"},
		{"txt", "text/plain; charset=utf-8", "A"},
		{"json", "application/json", `"viz_type": "tidy"`},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			rec := do(s, http.MethodPost, "/v1/render?format="+tt.format, "", abcde)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}

func TestErrors(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name   string
		target string
		body   string
		status int
		code   errors.Code
	}{
		{"empty forest", "/v1/layout", `null`, http.StatusBadRequest, errors.ErrCodeEmptyForest},
		{"malformed", "/v1/layout", `["A", `, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"structural", "/v1/layout", `["A", []]`, http.StatusBadRequest, errors.ErrCodeStructuralInput},
		{"bad number", "/v1/layout?width=wide", abcde, http.StatusBadRequest, errors.ErrCodeInvalidOption},
		{"bad style", "/v1/layout?style=square", abcde, http.StatusBadRequest, errors.ErrCodeInvalidStyle},
		{"bad format", "/v1/render?format=gif", abcde, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"bad input", "/v1/render?input=xml", abcde, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, tt.target, "", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			e := decodeError(t, rec)
			assert.Equal(t, tt.code, e.Code)
			assert.NotEmpty(t, e.Message)
		})
	}
}

func TestBodyLimit(t *testing.T) {
	s := newTestServer(t)
	rec := do(s, http.MethodPost, "/v1/layout", "", `["`+strings.Repeat("A", MaxBodySize)+`"]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDefaults(t *testing.T) {
	s := newTestServer(t, WithDefaults(pipeline.Options{Width: 300, Height: 200}))
	rec := do(s, http.MethodPost, "/v1/layout?height=250", "", abcde)
	require.Equal(t, http.StatusOK, rec.Code)
	l, err := graph.UnmarshalLayout(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 300.0, l.Width)
	assert.Equal(t, 250.0, l.Height)
}

type recordingHooks struct {
	observability.NoopHTTPHooks
	statuses []int
}

func (h *recordingHooks) OnResponse(_ context.Context, _, _, _ string, status int, _ time.Duration) {
	h.statuses = append(h.statuses, status)
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	s := newTestServer(t)
	do(s, http.MethodGet, "/healthz", "", "")
	do(s, http.MethodPost, "/v1/render?format=gif", "", abcde)
	do(s, http.MethodGet, "/nope", "", "")
	assert.Equal(t, []int{http.StatusOK, http.StatusBadRequest, http.StatusNotFound}, hooks.statuses)
}
