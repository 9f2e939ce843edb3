package buffer

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/file"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	bp := newTestPool(t, 1)
	bp.SetMetrics(m)
	f := file.NewMemFile("f")
	ids := allocPages(t, f, 2)

	h1, err := bp.Fetch(f, ids[0])
	require.NoError(t, err)
	h2, err := bp.Fetch(f, ids[0])
	require.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Misses))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Hits))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Pinned), "one frame pinned twice")

	_, err = bp.Fetch(f, ids[1])
	require.ErrorIs(t, err, util.ErrResourceExhausted)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Exhausted))

	require.NoError(t, h1.Release(true))
	require.NoError(t, h2.Release(false))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.Pinned))

	fetchRelease(t, bp, f, ids[1], false)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Evictions))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.WriteBacks))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.Misses))

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 6, count)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.hit()
		m.miss()
		m.evicted()
		m.wroteBack()
		m.exhaustedRequest()
		m.pinned(1)
	})

	assert.NotPanics(t, func() { NewMetrics(nil).hit() })
}
