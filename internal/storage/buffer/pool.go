package buffer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/file"
	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/page"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// BufferPool caches pages of File implementations in a fixed set of frames.
//
// A BufferPool is not safe for concurrent use. Callers sharing one instance
// must serialize every call, for example through SyncBufferPool. A page
// returned by Fetch or Allocate stays in its frame while the caller holds a
// pin on it; its contents must not be touched after the matching Release.
type BufferPool struct {
	frames   []page.Page   // Holds page.Page (4KB), addressed by FrameID
	table    []frameRecord // Metadata parallel to frames
	index    *pageIndex    // (file, page) -> frame
	clock    *ClockReplacer
	poolSize int
	logger   *zap.Logger
	metrics  *Metrics
	closed   bool
}

func NewBufferPool(opts util.Options, logger *zap.Logger) *BufferPool {
	size := opts.BufferPoolSize
	if size <= 0 {
		panic(util.ErrInvalidPoolSize)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &BufferPool{
		frames:   make([]page.Page, size),
		table:    make([]frameRecord, size),
		index:    newPageIndex(size),
		clock:    newClockReplacer(size),
		poolSize: size,
		logger:   logger.Named("buffer"),
	}
}

// SetMetrics attaches metrics collectors; nil detaches them.
func (bp *BufferPool) SetMetrics(m *Metrics) {
	bp.metrics = m
}

func (bp *BufferPool) Capacity() int {
	return bp.poolSize
}

/* FETCH */
// Fetch pins pageNo of f, reading it into a frame on a miss.
func (bp *BufferPool) Fetch(f file.File, pageNo util.PageID) (*PageHandle, error) {
	if bp.closed {
		return nil, util.ErrPoolClosed
	}

	if frameIdx, exists := bp.index.lookup(f, pageNo); exists {
		rec := &bp.table[frameIdx]
		rec.refbit = true
		rec.pinCount++
		if rec.pinCount == 1 {
			bp.metrics.pinned(1)
		}
		bp.metrics.hit()
		return bp.newHandle(frameIdx), nil
	}

	bp.metrics.miss()
	frameIdx, err := bp.requestFree()
	if err != nil {
		return nil, err
	}

	p, err := f.ReadPage(pageNo)
	if err != nil {
		return nil, util.NewIOError(fmt.Sprintf("read page %d of %s", pageNo, f.Identifier()), err).
			With("file", f.Identifier()).
			With("page", pageNo).
			With("frame", frameIdx)
	}

	if err := bp.install(frameIdx, f, pageNo, p); err != nil {
		return nil, fmt.Errorf("[pool] [Fetch] %w", err)
	}
	return bp.newHandle(frameIdx), nil
}

/* RELEASE */
// Release drops one pin on pageNo of f. A true dirty flag sticks until the
// page is written back. Releasing a page that is not resident does nothing.
func (bp *BufferPool) Release(f file.File, pageNo util.PageID, dirty bool) error {
	if bp.closed {
		return util.ErrPoolClosed
	}

	frameIdx, exists := bp.index.lookup(f, pageNo)
	if !exists {
		bp.logger.Debug("release of non-resident page",
			zap.String("file", f.Identifier()),
			zap.Uint64("page", uint64(pageNo)),
		)
		return nil
	}

	rec := &bp.table[frameIdx]
	if rec.pinCount == 0 {
		return util.NewPageNotPinnedError(f.Identifier(), pageNo, frameIdx)
	}

	if dirty {
		rec.dirty = true
	}
	rec.pinCount--
	if rec.pinCount == 0 {
		rec.epoch++
		bp.metrics.pinned(-1)
	}
	return nil
}

/* ALLOCATE */
// Allocate creates a new page in f and pins it in a frame. The frame is
// claimed before the file is asked for a page, so an exhausted pool leaves
// the file untouched.
func (bp *BufferPool) Allocate(f file.File) (util.PageID, *PageHandle, error) {
	if bp.closed {
		return 0, nil, util.ErrPoolClosed
	}

	frameIdx, err := bp.requestFree()
	if err != nil {
		return 0, nil, err
	}

	p, err := f.AllocatePage()
	if err != nil {
		return 0, nil, util.NewIOError(fmt.Sprintf("allocate page in %s", f.Identifier()), err).
			With("file", f.Identifier()).
			With("frame", frameIdx)
	}

	pageNo := p.Number()
	if err := bp.install(frameIdx, f, pageNo, p); err != nil {
		return 0, nil, fmt.Errorf("[pool] [Allocate] %w", err)
	}
	return pageNo, bp.newHandle(frameIdx), nil
}

/* DISPOSE */
// Dispose drops pageNo of f from the pool without writing it back and
// deletes it from f. A pinned page is refused. A page that is not resident
// is only deleted from f.
func (bp *BufferPool) Dispose(f file.File, pageNo util.PageID) error {
	if bp.closed {
		return util.ErrPoolClosed
	}

	if frameIdx, exists := bp.index.lookup(f, pageNo); exists {
		if bp.table[frameIdx].pinCount > 0 {
			return util.NewPagePinnedError(f.Identifier(), pageNo, frameIdx)
		}
		bp.discard(frameIdx)
	} else {
		bp.logger.Debug("dispose of non-resident page",
			zap.String("file", f.Identifier()),
			zap.Uint64("page", uint64(pageNo)),
		)
	}

	if err := f.DeletePage(pageNo); err != nil {
		return util.NewIOError(fmt.Sprintf("delete page %d of %s", pageNo, f.Identifier()), err).
			With("file", f.Identifier()).
			With("page", pageNo)
	}
	return nil
}

/* FLUSH */
// Flush writes back every dirty frame of f in ascending frame order and
// drops it from the pool. Clean frames stay cached. Flush stops at the first
// frame that is pinned or corrupt; frames before it have already been
// flushed.
func (bp *BufferPool) Flush(f file.File) error {
	if bp.closed {
		return util.ErrPoolClosed
	}

	for i := range bp.table {
		rec := &bp.table[i]
		if rec.file != f {
			continue
		}
		frameIdx := util.FrameID(i)

		if !rec.valid {
			return util.NewBadBufferError(frameIdx, rec.dirty, rec.valid, rec.refbit)
		}
		if rec.pinCount > 0 {
			return util.NewPagePinnedError(f.Identifier(), rec.pageNo, frameIdx)
		}
		if !rec.dirty {
			continue
		}

		if err := bp.writeBack(frameIdx); err != nil {
			return fmt.Errorf("[pool] [Flush] %w", err)
		}
		rec.dirty = false
		bp.discard(frameIdx)
	}
	return nil
}

/**
* CLOSE FUNCTION
**/
// Close writes back every dirty frame and closes the pool. A failed write
// does not stop the others: every failure is logged and the joined errors
// are returned. Files are not closed.
func (bp *BufferPool) Close() error {
	if bp.closed {
		return nil
	}

	var err error
	for i := range bp.table {
		rec := &bp.table[i]
		if !rec.valid || !rec.dirty {
			continue
		}

		if e := bp.writeBack(util.FrameID(i)); e != nil {
			bp.logger.Error("write back on close failed",
				zap.Int("frame", i),
				zap.String("file", rec.file.Identifier()),
				zap.Uint64("page", uint64(rec.pageNo)),
				zap.Error(e),
			)
			err = errors.Join(err, e)
			continue
		}
		rec.dirty = false
	}

	bp.closed = true
	return err
}

// PinCount reports the pin count of a resident page.
func (bp *BufferPool) PinCount(f file.File, pageNo util.PageID) (int32, bool) {
	frameIdx, exists := bp.index.lookup(f, pageNo)
	if !exists {
		return 0, false
	}
	return bp.table[frameIdx].pinCount, true
}

func (bp *BufferPool) IsResident(f file.File, pageNo util.PageID) bool {
	_, exists := bp.index.lookup(f, pageNo)
	return exists
}

// IsDirty reports the dirty flag of a resident page.
func (bp *BufferPool) IsDirty(f file.File, pageNo util.PageID) (bool, bool) {
	frameIdx, exists := bp.index.lookup(f, pageNo)
	if !exists {
		return false, false
	}
	return bp.table[frameIdx].dirty, true
}

// ===================== HELPER FUNCTION =====================
// install caches p in the claimed frame under the caller's key, pinned once.
func (bp *BufferPool) install(frameIdx util.FrameID, f file.File, pageNo util.PageID, p *page.Page) error {
	if err := bp.index.insert(f, pageNo, frameIdx); err != nil {
		return fmt.Errorf("index page %d of %s in frame %d: %w", pageNo, f.Identifier(), frameIdx, err)
	}
	bp.frames[frameIdx] = *p
	bp.frames[frameIdx].Header.PageID = pageNo
	bp.table[frameIdx].set(f, pageNo)
	bp.metrics.pinned(1)
	return nil
}

func (bp *BufferPool) writeBack(frameIdx util.FrameID) error {
	rec := &bp.table[frameIdx]
	pg := &bp.frames[frameIdx]
	pg.Header.PageID = rec.pageNo

	if err := rec.file.WritePage(pg); err != nil {
		return util.NewIOError(fmt.Sprintf("write back page %d of %s", rec.pageNo, rec.file.Identifier()), err).
			With("file", rec.file.Identifier()).
			With("page", rec.pageNo).
			With("frame", frameIdx)
	}

	bp.logger.Debug("write back page",
		zap.Int("frame", int(frameIdx)),
		zap.String("file", rec.file.Identifier()),
		zap.Uint64("page", uint64(rec.pageNo)),
	)
	bp.metrics.wroteBack()
	return nil
}

// discard removes the frame's index entry and resets it to invalid.
func (bp *BufferPool) discard(frameIdx util.FrameID) {
	rec := &bp.table[frameIdx]
	bp.index.remove(rec.file, rec.pageNo)
	rec.reset()
	bp.frames[frameIdx].Reset()
}

func (bp *BufferPool) checkFrame(frameIdx util.FrameID) {
	if int(frameIdx) >= bp.poolSize || frameIdx < 0 {
		panic(fmt.Sprintf("[pool] frame index out of bound: %d", frameIdx))
	}
}
