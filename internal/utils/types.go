package util

import (
	"fmt"
)

// PageID represents a page number inside a file
type PageID uint64

// FrameID identifies a slot of the buffer pool, in [0, capacity)
type FrameID int

const InvalidFrameID FrameID = -1

// PageSize represents the standard page size (4KB)
const PageSize = 4096

// MaxMapSize bounds how far a memory-mapped file may grow (1GB)
const MaxMapSize = 1 << 30

// ErrorType represents the kind of a buffer pool error
type ErrorType int

const (
	ErrTypeResourceExhausted ErrorType = iota
	ErrTypeInvariantViolation
	ErrTypePreconditionViolation
	ErrTypeIOError
)

func (t ErrorType) String() string {
	switch t {
	case ErrTypeResourceExhausted:
		return "ResourceExhausted"
	case ErrTypeInvariantViolation:
		return "InvariantViolation"
	case ErrTypePreconditionViolation:
		return "PreconditionViolation"
	case ErrTypeIOError:
		return "IOError"
	default:
		return fmt.Sprintf("ErrorType(%d)", int(t))
	}
}

// DatabaseError represents a buffer pool error crossing the public boundary.
// Context carries the frame/file/page fields describing where it happened.
type DatabaseError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *DatabaseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("bufmgr error [%s]: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("bufmgr error [%s]: %s", e.Type, e.Message)
}

func (e *DatabaseError) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel of the error's kind, so callers can test
// errors.Is(err, ErrPreconditionViolation) without unwrapping Cause.
func (e *DatabaseError) Is(target error) bool {
	switch e.Type {
	case ErrTypeResourceExhausted:
		return target == ErrResourceExhausted
	case ErrTypeInvariantViolation:
		return target == ErrInvariantViolation
	case ErrTypePreconditionViolation:
		return target == ErrPreconditionViolation
	case ErrTypeIOError:
		return target == ErrIO
	}
	return false
}

// NewDatabaseError creates a new database error
func NewDatabaseError(errType ErrorType, message string, cause error) *DatabaseError {
	return &DatabaseError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

func (e *DatabaseError) With(key string, value interface{}) *DatabaseError {
	e.Context[key] = value
	return e
}

// Options represents buffer pool configuration options
type Options struct {
	// BufferPoolSize is the number of frames, the only pool setting.
	BufferPoolSize int `yaml:"buffer_pool_size"`
}

// DefaultOptions returns default buffer pool options
func DefaultOptions() Options {
	return Options{
		BufferPoolSize: 1000, // 4MB default buffer pool
	}
}
