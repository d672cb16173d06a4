package tenant_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saasway/adminapi/pkg/tenant"
)

func TestContext(t *testing.T) {
	t.Parallel()

	t.Run("product round trip", func(t *testing.T) {
		t.Parallel()

		p := testProduct("acme", true)
		ctx := tenant.WithProduct(context.Background(), p)

		got, ok := tenant.ProductFromContext(ctx)
		require.True(t, ok)
		assert.Same(t, p, got)
	})

	t.Run("missing product", func(t *testing.T) {
		t.Parallel()

		_, ok := tenant.ProductFromContext(context.Background())
		assert.False(t, ok)
	})

	t.Run("conn round trip", func(t *testing.T) {
		t.Parallel()

		conn := tenant.NewConn("acme")
		ctx := tenant.WithConn(context.Background(), conn)

		got, ok := tenant.ConnFromContext(ctx)
		require.True(t, ok)
		assert.Same(t, conn, got)
		assert.Same(t, conn, tenant.MustConn(ctx))
	})

	t.Run("MustConn panics without middleware", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			tenant.MustConn(context.Background())
		})
	})

	t.Run("logger extractor emits product slug", func(t *testing.T) {
		t.Parallel()

		extract := tenant.LoggerExtractor()

		attr, ok := extract(tenant.WithProduct(context.Background(), testProduct("acme", true)))
		require.True(t, ok)
		assert.Equal(t, "product", attr.Key)
		assert.Equal(t, "acme", attr.Value.String())

		_, ok = extract(context.Background())
		assert.False(t, ok)
	})
}

func TestConnState(t *testing.T) {
	t.Parallel()

	conn := tenant.NewConn("acme")
	assert.Equal(t, tenant.StateConnecting, conn.State())
	assert.Equal(t, "connecting", conn.State().String())

	conn.MarkReady()
	assert.Equal(t, tenant.StateReady, conn.State())
	assert.Equal(t, "ready", conn.State().String())

	conn.MarkDisconnected()
	assert.Equal(t, tenant.StateDisconnected, conn.State())
	assert.Equal(t, "disconnected", conn.State().String())
}
