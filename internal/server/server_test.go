package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"docconv/internal/config"
	"docconv/internal/domain"
	"docconv/internal/domain/models"
	"docconv/internal/formats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConverter struct{}

func (stubConverter) Convert(context.Context, *models.ConversionRequest) (*models.Result, error) {
	return nil, &domain.ConversionError{}
}

func (stubConverter) Probe(context.Context) (string, error) {
	return "LibreOffice 7.6.4.1", nil
}

type rejectAll struct{}

func (rejectAll) VerifyToken(string) (*models.Claims, error) { return nil, domain.ErrUnauthorized }
func (rejectAll) Close() error                               { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	return &config.Config{
		Port:              "0",
		CORSOrigins:       "*",
		AllowedFormats:    []string{"pdf"},
		MaxContentLength:  1 << 20,
		ConversionTimeout: time.Second,
	}
}

func testDeps(t *testing.T) Dependencies {
	t.Helper()
	registry, err := formats.New()
	require.NoError(t, err)
	return Dependencies{Converter: stubConverter{}, Formats: registry}
}

func TestNewHandler_Routes(t *testing.T) {
	h := NewHandler(testConfig(), testLogger(), testDeps(t))

	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{method: http.MethodGet, path: "/", wantStatus: http.StatusFound},
		{method: http.MethodGet, path: "/v1/convert", wantStatus: http.StatusOK},
		{method: http.MethodGet, path: "/v1/formats", wantStatus: http.StatusOK},
		{method: http.MethodGet, path: "/health", wantStatus: http.StatusOK},
		{method: http.MethodGet, path: "/nope", wantStatus: http.StatusNotFound},
		{method: http.MethodDelete, path: "/v1/convert", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestNewHandler_AuthExemptsHealth(t *testing.T) {
	deps := testDeps(t)
	deps.Verifier = rejectAll{}
	h := NewHandler(testConfig(), testLogger(), deps)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/formats", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewHandler_CORSPreflight(t *testing.T) {
	deps := testDeps(t)
	deps.Verifier = rejectAll{}
	h := NewHandler(testConfig(), testLogger(), deps)

	r := httptest.NewRequest(http.MethodOptions, "/v1/convert", nil)
	r.Header.Set("Origin", "https://app.example.com")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServe_StopsOnCancel(t *testing.T) {
	cfg := testConfig()
	s := &Server{
		cfg:    cfg,
		logger: testLogger(),
		http:   &http.Server{Handler: NewHandler(cfg, testLogger(), testDeps(t))},
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestAllowsAnyOrigin(t *testing.T) {
	assert.True(t, allowsAnyOrigin("*"))
	assert.True(t, allowsAnyOrigin("https://a.example, *"))
	assert.False(t, allowsAnyOrigin("https://a.example,https://b.example"))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, splitOrigins(" https://a.example , https://b.example,"))
}
