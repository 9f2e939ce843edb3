package buffer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/file"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

func TestNewPageIndex(t *testing.T) {
	tests := []struct {
		capacity int
		slots    int
	}{
		{1, 2},
		{2, 4},
		{3, 8},
		{4, 8},
		{5, 16},
		{1000, 2048},
	}

	for _, tt := range tests {
		pi := newPageIndex(tt.capacity)
		assert.Len(t, pi.slots, tt.slots, "slots for capacity %d", tt.capacity)
		assert.Equal(t, uint64(tt.slots-1), pi.mask, "mask for capacity %d", tt.capacity)
		assert.Equal(t, 0, pi.entries())
	}
}

func TestPageIndexInsertLookup(t *testing.T) {
	f1 := file.NewMemFile("f1")
	f2 := file.NewMemFile("f2")

	t.Run("KeyIncludesFile", func(t *testing.T) {
		pi := newPageIndex(4)
		require.NoError(t, pi.insert(f1, 7, 0))
		require.NoError(t, pi.insert(f2, 7, 1))

		frame, ok := pi.lookup(f1, 7)
		assert.True(t, ok)
		assert.Equal(t, util.FrameID(0), frame)

		frame, ok = pi.lookup(f2, 7)
		assert.True(t, ok)
		assert.Equal(t, util.FrameID(1), frame)

		frame, ok = pi.lookup(f1, 8)
		assert.False(t, ok)
		assert.Equal(t, util.InvalidFrameID, frame)
	})

	t.Run("SameNameDifferentFile", func(t *testing.T) {
		pi := newPageIndex(4)
		twin := file.NewMemFile("f1")
		require.NoError(t, pi.insert(f1, 3, 2))

		_, ok := pi.lookup(twin, 3)
		assert.False(t, ok, "identity, not name, selects the file")
		require.NoError(t, pi.insert(twin, 3, 3))
		assert.Equal(t, 2, pi.entries())
	})

	t.Run("Duplicate", func(t *testing.T) {
		pi := newPageIndex(4)
		require.NoError(t, pi.insert(f1, 1, 0))
		assert.ErrorIs(t, pi.insert(f1, 1, 1), util.ErrPageIndexDuplicate)
		assert.Equal(t, 1, pi.entries())
	})

	t.Run("Full", func(t *testing.T) {
		pi := newPageIndex(1)
		require.NoError(t, pi.insert(f1, 1, 0))
		assert.Panics(t, func() { _ = pi.insert(f1, 2, 0) })
	})
}

func TestPageIndexRemove(t *testing.T) {
	f := file.NewMemFile("f")

	t.Run("Absent", func(t *testing.T) {
		pi := newPageIndex(4)
		assert.False(t, pi.remove(f, 1))
		require.NoError(t, pi.insert(f, 1, 0))
		assert.False(t, pi.remove(f, 2))
		assert.Equal(t, 1, pi.entries())
	})

	// A dense table forces long probe runs that wrap around the end, so
	// removals have to shift entries back across the boundary.
	t.Run("ShiftKeepsRunsReachable", func(t *testing.T) {
		const capacity = 32
		pi := newPageIndex(capacity)
		n := len(pi.slots) - 1

		live := make(map[util.PageID]util.FrameID, n)
		for i := 0; i < n; i++ {
			pageNo := util.PageID(i + 1)
			require.NoError(t, pi.insert(f, pageNo, util.FrameID(i)))
			live[pageNo] = util.FrameID(i)
		}
		require.Equal(t, n, pi.entries())

		rng := rand.New(rand.NewSource(42))
		order := rng.Perm(n)
		for _, k := range order {
			pageNo := util.PageID(k + 1)
			require.True(t, pi.remove(f, pageNo), "remove page %d", pageNo)
			delete(live, pageNo)

			for p, frame := range live {
				got, ok := pi.lookup(f, p)
				require.True(t, ok, "page %d reachable after removing %d", p, pageNo)
				require.Equal(t, frame, got, "frame of page %d", p)
			}
			_, ok := pi.lookup(f, pageNo)
			require.False(t, ok, "page %d removed", pageNo)
		}
		assert.Equal(t, 0, pi.entries())
		for i := range pi.slots {
			assert.False(t, pi.slots[i].used, "slot %d empty", i)
		}
	})

	t.Run("ReinsertAfterRemove", func(t *testing.T) {
		pi := newPageIndex(2)
		require.NoError(t, pi.insert(f, 1, 0))
		require.NoError(t, pi.insert(f, 2, 1))
		require.True(t, pi.remove(f, 1))
		require.NoError(t, pi.insert(f, 1, 1))

		frame, ok := pi.lookup(f, 1)
		assert.True(t, ok)
		assert.Equal(t, util.FrameID(1), frame)
	})
}
