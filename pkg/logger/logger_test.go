package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	return entry
}

func TestCriticalLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	log := slog.New(NewHandlerWithWriter(buf, nil))

	log.Log(context.Background(), LevelCritical, "Charged order not persisted", "order_key", "k")

	entry := decode(t, buf)
	assert.Equal(t, "CRITICAL", entry["level"])
	assert.Equal(t, "k", entry["order_key"])
}

func TestRequestIDFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	log := slog.New(NewHandlerWithWriter(buf, nil)).With("svc", "storefront")

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")
	log.InfoContext(ctx, "hello")

	entry := decode(t, buf)
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "storefront", entry["svc"])
}

func TestLoggerMiddleware(t *testing.T) {
	buf := &bytes.Buffer{}
	log := slog.New(NewHandlerWithWriter(buf, nil))

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(NewLoggerMiddleware(log))
	router.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	entry := decode(t, buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "/boom", entry["path"])
	assert.EqualValues(t, http.StatusBadGateway, entry["status"])
	assert.NotEmpty(t, entry["request_id"])
}
