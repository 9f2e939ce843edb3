package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bietkhonhungvandi212/bufmgr/internal/config"
	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/buffer"
	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/file"
	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/page"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

var errUnreadable = errors.New("unreadable")

// unreadableFile accepts writes but fails every read.
type unreadableFile struct {
	*file.MemFile
}

func (f *unreadableFile) ReadPage(util.PageID) (*page.Page, error) {
	return nil, errUnreadable
}

func TestWorkload(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		bp := buffer.NewBufferPool(util.Options{BufferPoolSize: 2}, zap.NewNop())
		f := file.NewMemFile("mem")

		var out bytes.Buffer
		require.NoError(t, workload(bp, f, 5, &out))
		assert.Contains(t, out.String(), "Total Number of Valid Frames:2")
		assert.Equal(t, 5, f.LivePages())
	})

	t.Run("FailureStillClosesPool", func(t *testing.T) {
		bp := buffer.NewBufferPool(util.Options{BufferPoolSize: 2}, zap.NewNop())
		f := &unreadableFile{MemFile: file.NewMemFile("mem")}

		// page 1 is evicted while populating, so reading it back fails
		err := workload(bp, f, 3, &bytes.Buffer{})
		require.ErrorIs(t, err, errUnreadable)

		// page 2 is evicted by the failed fetch, page 3 stays until close
		assert.Equal(t, 1, f.WriteCount(2))
		assert.Equal(t, 1, f.WriteCount(3), "dirty page left in the pool is written on close")
		_, err = bp.Fetch(f, 1)
		assert.ErrorIs(t, err, util.ErrPoolClosed)
	})
}

func TestRun(t *testing.T) {
	cfg := config.Default()
	cfg.Pool.BufferPoolSize = 4
	cfg.DataFile = util.TempDataFile(t)
	cfg.InitialPages = 2

	require.NoError(t, run(cfg, 10, zap.NewNop()))

	fm, err := file.NewFileManager(cfg.DataFile, cfg.InitialPages)
	require.NoError(t, err)
	defer fm.Close()

	p, err := fm.ReadPage(10)
	require.NoError(t, err)
	assert.Equal(t, "page-10", string(p.Data[:7]))
}
