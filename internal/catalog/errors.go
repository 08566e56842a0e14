package catalog

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is matching.
var (
	// ErrFormat marks a structurally invalid store. It is fatal for the store.
	ErrFormat = errors.New("catalog: invalid data file")

	// ErrUnavailable marks a data file that could not be opened at all.
	ErrUnavailable = errors.New("catalog: unable to open data file")

	// ErrAccess marks a failed read of a single star. Callers skip the star.
	ErrAccess = errors.New("catalog: star not available")
)

// FormatKind classifies a structural problem with the store.
type FormatKind int

const (
	// Misaligned means the store length is not a multiple of RecordLength.
	Misaligned FormatKind = iota
	// MissingHeader means the store is shorter than the reserved header records.
	MissingHeader
)

func (k FormatKind) String() string {
	switch k {
	case Misaligned:
		return "misaligned"
	case MissingHeader:
		return "missing header"
	default:
		return "unknown"
	}
}

// FormatError reports a store whose layout cannot be trusted.
type FormatError struct {
	Kind FormatKind
	Size int64
}

func (e *FormatError) Error() string {
	switch e.Kind {
	case Misaligned:
		return fmt.Sprintf("catalog: data file length %d is not a multiple of %d", e.Size, RecordLength)
	case MissingHeader:
		return fmt.Sprintf("catalog: data file length %d is shorter than the %d header records", e.Size, HeaderRecords)
	default:
		return fmt.Sprintf("catalog: data file error (length %d)", e.Size)
	}
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// AccessKind classifies a failed star read.
type AccessKind int

const (
	OutOfRange AccessKind = iota
	SeekFailed
	ShortRead
)

func (k AccessKind) String() string {
	switch k {
	case OutOfRange:
		return "out of range"
	case SeekFailed:
		return "seek failed"
	case ShortRead:
		return "short read"
	default:
		return "unknown"
	}
}

// AccessError reports that one star index could not be read.
type AccessError struct {
	Index int
	Kind  AccessKind
	Err   error
}

func (e *AccessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog: star %d: %s: %v", e.Index, e.Kind, e.Err)
	}
	return fmt.Sprintf("catalog: star %d: %s", e.Index, e.Kind)
}

func (e *AccessError) Unwrap() error { return e.Err }

func (e *AccessError) Is(target error) bool {
	return target == ErrAccess
}
