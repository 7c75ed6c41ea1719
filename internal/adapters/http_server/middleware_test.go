package httpserver_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "hotel_catalog/internal/adapters/http_server"
)

func TestTimeout_WritesProblem(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	h := httpserver.Timeout(20 * time.Millisecond)(slow)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/hotels", nil))

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	var p struct {
		Status int    `json:"status"`
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	assert.Equal(t, 503, p.Status)
	assert.Equal(t, "request timed out", p.Detail)
}

func TestObserve_LogsUnmatchedRoute(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	h := httpserver.Observe(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, http.StatusTeapot, rr.Code)
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "unmatched", line["route"])
	assert.EqualValues(t, 418, line["status"])
	assert.Equal(t, "info", line["level"])
}

