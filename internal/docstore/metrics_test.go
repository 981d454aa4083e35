package docstore_test

import (
	"context"
	"testing"

	"github.com/ar0311/identity-docstore/internal/docstore"
	"github.com/ar0311/identity-docstore/internal/docstore/memory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrument(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	metrics := docstore.NewMetrics("test")
	reg := prometheus.NewRegistry()
	require.NoError(t, metrics.Register(reg))
	require.NoError(t, metrics.Register(reg), "registering twice is tolerated")

	backend := docstore.Instrument(memory.New(), metrics)
	storeWidgets(t, backend, &widget{ID: "w1"})

	first := docstore.NewSession(backend)
	second := docstore.NewSession(backend)
	a, err := docstore.Load[widget](ctx, first, "w1")
	require.NoError(t, err)
	b, err := docstore.Load[widget](ctx, second, "w1")
	require.NoError(t, err)
	a.Name, b.Name = "a", "b"
	require.NoError(t, first.SaveChanges(ctx))
	require.Error(t, second.SaveChanges(ctx))

	_, err = docstore.Load[widget](ctx, docstore.NewSession(backend), "missing")
	require.ErrorIs(t, err, docstore.ErrNotFound)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Commits.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Commits.WithLabelValues("conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Conflicts))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Reads.WithLabelValues("get", "Widgets", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Reads.WithLabelValues("get", "Widgets", "not_found")))
}
