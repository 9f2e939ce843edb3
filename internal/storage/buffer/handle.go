package buffer

import (
	"fmt"

	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/file"
	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/page"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// handleOwner is the pool a handle goes through. SyncBufferPool takes its
// lock around both calls.
type handleOwner interface {
	handleValid(h *PageHandle) bool
	releaseHandle(h *PageHandle, dirty bool) error
}

// PageHandle gives access to one pin on a page. It stays valid until it is
// released, or until the pin count of its frame drops to 0 or the frame is
// reused. Reading through a stale handle is a caller bug; builds tagged
// bufdebug panic on it.
//
// A handle belongs to the goroutine that fetched it. Valid and Release are
// safe against other users of a SyncBufferPool, but must not be called from
// inside SyncBufferPool.Do.
type PageHandle struct {
	bp       *BufferPool
	owner    handleOwner
	frame    util.FrameID
	file     file.File
	pageNo   util.PageID
	epoch    uint64
	released bool
}

func (bp *BufferPool) newHandle(frameIdx util.FrameID) *PageHandle {
	bp.checkFrame(frameIdx)
	rec := &bp.table[frameIdx]
	return &PageHandle{
		bp:     bp,
		owner:  bp,
		frame:  frameIdx,
		file:   rec.file,
		pageNo: rec.pageNo,
		epoch:  rec.epoch,
	}
}

// Valid reports whether the handle still holds its pin on the page.
func (h *PageHandle) Valid() bool {
	return h.owner.handleValid(h)
}

// Page returns the cached page. Writes to it are only persisted when the
// handle is released dirty.
func (h *PageHandle) Page() *page.Page {
	if debugHandles && !h.Valid() {
		panic(fmt.Sprintf("[handle] stale handle for page %d of %s (frame %d)", h.pageNo, h.file.Identifier(), h.frame))
	}
	return &h.bp.frames[h.frame]
}

func (h *PageHandle) Frame() util.FrameID { return h.frame }

func (h *PageHandle) PageNo() util.PageID { return h.pageNo }

func (h *PageHandle) File() file.File { return h.file }

// Release drops the pin this handle was issued for. A second release, or a
// release after the pin was dropped through the pool, fails with
// util.ErrPageNotPinned and leaves other holders' pins alone.
func (h *PageHandle) Release(dirty bool) error {
	return h.owner.releaseHandle(h, dirty)
}

func (bp *BufferPool) handleValid(h *PageHandle) bool {
	if h.released {
		return false
	}
	rec := &bp.table[h.frame]
	return rec.valid && rec.pinCount > 0 && rec.epoch == h.epoch &&
		rec.file == h.file && rec.pageNo == h.pageNo
}

func (bp *BufferPool) releaseHandle(h *PageHandle, dirty bool) error {
	if bp.closed {
		return util.ErrPoolClosed
	}
	if !bp.handleValid(h) {
		return util.NewPageNotPinnedError(h.file.Identifier(), h.pageNo, h.frame)
	}

	if err := bp.Release(h.file, h.pageNo, dirty); err != nil {
		return err
	}
	h.released = true
	return nil
}
