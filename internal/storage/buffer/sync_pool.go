package buffer

import (
	"io"

	"github.com/sasha-s/go-deadlock"
	"go.uber.org/zap"

	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/file"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// SyncBufferPool serializes every call to a BufferPool behind one mutex.
// Handles it returns release through the mutex as well.
type SyncBufferPool struct {
	mu deadlock.Mutex
	bp *BufferPool
}

func NewSyncBufferPool(opts util.Options, logger *zap.Logger) *SyncBufferPool {
	return &SyncBufferPool{bp: NewBufferPool(opts, logger)}
}

func (s *SyncBufferPool) SetMetrics(m *Metrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bp.SetMetrics(m)
}

func (s *SyncBufferPool) Capacity() int {
	return s.bp.Capacity()
}

func (s *SyncBufferPool) Fetch(f file.File, pageNo util.PageID) (*PageHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.bp.Fetch(f, pageNo)
	if err != nil {
		return nil, err
	}
	h.owner = s
	return h, nil
}

func (s *SyncBufferPool) Release(f file.File, pageNo util.PageID, dirty bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bp.Release(f, pageNo, dirty)
}

func (s *SyncBufferPool) Allocate(f file.File) (util.PageID, *PageHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pageNo, h, err := s.bp.Allocate(f)
	if err != nil {
		return 0, nil, err
	}
	h.owner = s
	return pageNo, h, nil
}

func (s *SyncBufferPool) Dispose(f file.File, pageNo util.PageID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bp.Dispose(f, pageNo)
}

func (s *SyncBufferPool) Flush(f file.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bp.Flush(f)
}

func (s *SyncBufferPool) Inspect(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bp.Inspect(w)
}

func (s *SyncBufferPool) Frames() []FrameInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bp.Frames()
}

func (s *SyncBufferPool) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bp.Close()
}

func (s *SyncBufferPool) handleValid(h *PageHandle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bp.handleValid(h)
}

func (s *SyncBufferPool) releaseHandle(h *PageHandle, dirty bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bp.releaseHandle(h, dirty)
}

// Do runs fn with the lock held, for callers that need several pool calls
// to happen atomically. fn must not call back into s, directly or through
// a handle s returned.
func (s *SyncBufferPool) Do(fn func(bp *BufferPool) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.bp)
}
