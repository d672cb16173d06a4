package httpserver_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saasway/adminapi/pkg/httpserver"
)

func TestHealthCheckHandler(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.DiscardHandler)

	probe := func(h http.HandlerFunc) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))
		return rr
	}

	t.Run("liveness without checks", func(t *testing.T) {
		t.Parallel()

		rr := probe(httpserver.HealthCheckHandler(log))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "ALIVE", rr.Body.String())
	})

	t.Run("ready when all checks pass", func(t *testing.T) {
		t.Parallel()

		ok := func(context.Context) error { return nil }
		rr := probe(httpserver.HealthCheckHandler(log, ok, ok))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "READY", rr.Body.String())
	})

	t.Run("not ready when any check fails", func(t *testing.T) {
		t.Parallel()

		ok := func(context.Context) error { return nil }
		bad := func(context.Context) error { return errors.New("mongo unreachable") }

		rr := probe(httpserver.HealthCheckHandler(log, ok, bad))
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "NOT_READY", rr.Body.String())
	})
}
