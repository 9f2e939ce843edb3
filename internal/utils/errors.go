package util

import "errors"

var (
	ErrInvalidPageSize     = errors.New("invalid page size")
	ErrChecksumMismatch    = errors.New("checksum mismatch")
	ErrInvalidInitialPages = errors.New("initial pages must be positive")
	ErrMaxMapSizeExceeded  = errors.New("initial size exceeds maximum mapping size")
	ErrPageOutOfBounds     = errors.New("page out of bounds")
	ErrPageNotFound        = errors.New("page not found")
	ErrBadMagic            = errors.New("invalid file format: bad magic number")
	ErrFileManagerNil      = errors.New("file manager is nil")
	ErrFileClosed          = errors.New("file is closed")
	ErrInvalidPoolSize     = errors.New("invalid pool size")
	ErrPageIndexDuplicate  = errors.New("page already present in page index")
	ErrPoolClosed          = errors.New("buffer pool is closed")

	// Kinds of errors returned by the buffer pool.
	ErrResourceExhausted     = errors.New("resource exhausted")
	ErrInvariantViolation    = errors.New("invariant violation")
	ErrPreconditionViolation = errors.New("precondition violation")
	ErrIO                    = errors.New("i/o error")

	// Causes of a precondition violation.
	ErrPageNotPinned   = errors.New("page is not pinned")
	ErrPageStillPinned = errors.New("page is still pinned")
)

// NewResourceExhaustedError reports that no frame could be claimed within steps clock steps.
func NewResourceExhaustedError(capacity int, steps int, pinned int) *DatabaseError {
	return NewDatabaseError(ErrTypeResourceExhausted, "no evictable frame in buffer pool", nil).
		With("capacity", capacity).
		With("steps", steps).
		With("pinned", pinned)
}

// NewBadBufferError reports a frame tagged as owned by a file while not valid.
func NewBadBufferError(frame FrameID, dirty, valid, refbit bool) *DatabaseError {
	return NewDatabaseError(ErrTypeInvariantViolation, "frame owned by file is not valid", nil).
		With("frame", frame).
		With("dirty", dirty).
		With("valid", valid).
		With("refbit", refbit)
}

// NewPageNotPinnedError reports a release of a page whose pin count is already 0.
func NewPageNotPinnedError(file string, pageNo PageID, frame FrameID) *DatabaseError {
	return NewDatabaseError(ErrTypePreconditionViolation, "not pinned", ErrPageNotPinned).
		With("file", file).
		With("page", pageNo).
		With("frame", frame)
}

// NewPagePinnedError reports an operation that requires the page to be unpinned.
func NewPagePinnedError(file string, pageNo PageID, frame FrameID) *DatabaseError {
	return NewDatabaseError(ErrTypePreconditionViolation, "still pinned", ErrPageStillPinned).
		With("file", file).
		With("page", pageNo).
		With("frame", frame)
}

// NewIOError wraps a failure of the file layer.
func NewIOError(message string, cause error) *DatabaseError {
	return NewDatabaseError(ErrTypeIOError, message, cause)
}
