package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"docconv/internal/formats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFormats(t *testing.T) {
	registry, err := formats.New()
	require.NoError(t, err)
	h := NewFormatsHandler(testConfig(), registry, testLogger())

	w := httptest.NewRecorder()
	h.ListFormats(w, httptest.NewRequest(http.MethodGet, "/v1/formats", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Formats []formats.Format `json:"formats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Formats, 3)
	assert.Equal(t, "pdf", body.Formats[0].Name)
	assert.True(t, body.Formats[0].Known)
	assert.Equal(t, "txt:Text (encoded):UTF8", body.Formats[2].Name)
}

type stubProber struct {
	version string
	err     error
}

func (s stubProber) Probe(context.Context) (string, error) {
	return s.version, s.err
}

func TestHealthCheck(t *testing.T) {
	h := NewHealthHandler(stubProber{version: "LibreOffice 7.6.4.1"}, testLogger())

	w := httptest.NewRecorder()
	h.HealthCheck(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","converter":"LibreOffice 7.6.4.1"}`, w.Body.String())
}

func TestHealthCheck_ConverterUnavailable(t *testing.T) {
	h := NewHealthHandler(stubProber{err: errors.New("exec: not found")}, testLogger())

	w := httptest.NewRecorder()
	h.HealthCheck(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"degraded","converter":"unavailable"}`, w.Body.String())
}
