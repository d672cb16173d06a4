package cache

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBurstLogger(t *testing.T) {
	t.Parallel()

	t.Run("logs once per burst", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := slog.New(slog.NewTextHandler(&buf, nil))
		b := newBurstLogger(log, time.Minute)

		err := errors.New("connection refused")
		for range 100 {
			b.failure("get", err)
		}

		assert.Equal(t, 1, strings.Count(buf.String(), "cache backend unavailable"))
	})

	t.Run("reports suppressed count on the next record", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := slog.New(slog.NewTextHandler(&buf, nil))
		b := newBurstLogger(log, 20*time.Millisecond)

		err := errors.New("timeout")
		for range 10 {
			b.failure("set", err)
		}
		time.Sleep(30 * time.Millisecond)
		b.failure("set", err)

		out := buf.String()
		assert.Equal(t, 2, strings.Count(out, "cache backend unavailable"))
		assert.Contains(t, out, "suppressed=9")
	})
}
