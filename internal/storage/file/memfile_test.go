package file

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

func TestMemFile(t *testing.T) {
	mf := NewMemFile("mem.db")
	assert.Equal(t, "mem.db", mf.Identifier())

	p1, err := mf.AllocatePage()
	require.NoError(t, err)
	p2, err := mf.AllocatePage()
	require.NoError(t, err)
	assert.Equal(t, util.PageID(1), p1.Number())
	assert.Equal(t, util.PageID(2), p2.Number())
	assert.Equal(t, 2, mf.LivePages())

	t.Run("WriteThenRead", func(t *testing.T) {
		copy(p2.Data[:], "second")
		require.NoError(t, mf.WritePage(p2))

		got, err := mf.ReadPage(p2.Number())
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), got.Data[:6])
		assert.Equal(t, 1, mf.WriteCount(p2.Number()))
		assert.Equal(t, 1, mf.ReadCount(p2.Number()))
		assert.Equal(t, 0, mf.WriteCount(p1.Number()), "allocation is not counted as a write")
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, mf.DeletePage(p1.Number()))
		assert.Equal(t, 1, mf.LivePages())

		_, err := mf.ReadPage(p1.Number())
		assert.ErrorIs(t, err, util.ErrPageNotFound)
		assert.ErrorIs(t, mf.WritePage(p1), util.ErrPageNotFound)
		assert.ErrorIs(t, mf.DeletePage(p1.Number()), util.ErrPageNotFound)

		p3, err := mf.AllocatePage()
		require.NoError(t, err)
		assert.Equal(t, util.PageID(3), p3.Number(), "deleted numbers are not reused")
	})

	t.Run("Unallocated", func(t *testing.T) {
		_, err := mf.ReadPage(0)
		assert.ErrorIs(t, err, util.ErrPageNotFound)
		_, err = mf.ReadPage(99)
		assert.ErrorIs(t, err, util.ErrPageNotFound)
	})
}
