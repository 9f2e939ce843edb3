package buffer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/file"
	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/page"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

var errInjected = errors.New("injected write failure")

// failingFile fails WritePage while failWrites is set.
type failingFile struct {
	*file.MemFile
	failWrites bool
}

func (f *failingFile) WritePage(p *page.Page) error {
	if f.failWrites {
		return errInjected
	}
	return f.MemFile.WritePage(p)
}

// renumberingFile returns pages whose header carries a different number
// than the one requested.
type renumberingFile struct {
	*file.MemFile
}

func (f *renumberingFile) ReadPage(pageNo util.PageID) (*page.Page, error) {
	p, err := f.MemFile.ReadPage(pageNo)
	if err != nil {
		return nil, err
	}
	p.Header.PageID = pageNo + 100
	return p, nil
}

func newTestPool(t *testing.T, size int) *BufferPool {
	t.Helper()
	opts := util.DefaultOptions()
	opts.BufferPoolSize = size
	return NewBufferPool(opts, zap.NewNop())
}

// allocPages creates n pages directly in f, bypassing any pool.
func allocPages(t *testing.T, f file.File, n int) []util.PageID {
	t.Helper()
	ids := make([]util.PageID, 0, n)
	for i := 0; i < n; i++ {
		p, err := f.AllocatePage()
		require.NoError(t, err, "allocate page %d", i)
		ids = append(ids, p.Number())
	}
	return ids
}

// fetchRelease brings pageNo into the pool and leaves it unpinned.
func fetchRelease(t *testing.T, bp *BufferPool, f file.File, pageNo util.PageID, dirty bool) util.FrameID {
	t.Helper()
	h, err := bp.Fetch(f, pageNo)
	require.NoError(t, err, "fetch page %d", pageNo)
	require.NoError(t, h.Release(dirty), "release page %d", pageNo)
	return h.Frame()
}

// assertCoherent checks the index and the frame table agree in both directions.
func assertCoherent(t *testing.T, bp *BufferPool) {
	t.Helper()
	valid := 0
	for i := range bp.table {
		rec := &bp.table[i]
		if !rec.valid {
			assert.Nil(t, rec.file, "invalid frame %d has no file", i)
			assert.Equal(t, int32(0), rec.pinCount, "invalid frame %d is not pinned", i)
			assert.False(t, rec.dirty, "invalid frame %d is clean", i)
			continue
		}
		valid++
		frameIdx, ok := bp.index.lookup(rec.file, rec.pageNo)
		assert.True(t, ok, "frame %d is indexed", i)
		assert.Equal(t, util.FrameID(i), frameIdx, "index points back at frame %d", i)
		assert.GreaterOrEqual(t, rec.pinCount, int32(0), "pin count of frame %d", i)
	}
	assert.Equal(t, valid, bp.index.entries(), "index entries match valid frames")
}

func requireDatabaseError(t *testing.T, err error, errType util.ErrorType) *util.DatabaseError {
	t.Helper()
	var dbErr *util.DatabaseError
	require.ErrorAs(t, err, &dbErr)
	require.Equal(t, errType, dbErr.Type, "error type")
	return dbErr
}
