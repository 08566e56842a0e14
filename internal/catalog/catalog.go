// Package catalog provides random access to fixed-width star data files.
//
// A data file is a sequence of RecordLength-byte text records. The first
// HeaderRecords records are reserved; star index 1 is the record right after
// them. A file whose length is not a whole number of records is rejected as a
// whole rather than read record by record.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Validate checks the structure of a store and returns the number of
// addressable stars. It must succeed before any Read.
func Validate(s io.Seeker) (int, error) {
	size, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("catalog: measure data file: %w", err)
	}
	if size%RecordLength != 0 {
		return 0, &FormatError{Kind: Misaligned, Size: size}
	}
	records := size / RecordLength
	if records < HeaderRecords {
		return 0, &FormatError{Kind: MissingHeader, Size: size}
	}
	return int(records - HeaderRecords), nil
}

// Offset returns the byte offset of a star index.
func Offset(index int) int64 {
	return int64(index+HeaderRecords-1) * RecordLength
}

// Catalog is a validated store. It is not safe for concurrent use: a read
// seeks the shared handle.
type Catalog struct {
	rs     io.ReadSeeker
	closer io.Closer
	count  int
	size   int64
	buf    [RecordLength]byte
}

// New validates rs and wraps it.
func New(rs io.ReadSeeker) (*Catalog, error) {
	count, err := Validate(rs)
	if err != nil {
		return nil, err
	}
	return &Catalog{
		rs:    rs,
		count: count,
		size:  int64(count+HeaderRecords) * RecordLength,
	}, nil
}

// Open opens and validates a data file. The file is closed if validation fails.
func Open(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	c, err := New(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	c.closer = f
	return c, nil
}

// Count returns the number of addressable stars.
func (c *Catalog) Count() int {
	return c.count
}

// Size returns the validated store length in bytes.
func (c *Catalog) Size() int64 {
	return c.size
}

// Fingerprint returns the SHA-256 digest of the whole store, header included.
// Any edit changes it, including one that keeps the length.
func (c *Catalog) Fingerprint() (string, error) {
	if _, err := c.rs.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("catalog: fingerprint: %w", err)
	}
	h := sha256.New()
	if _, err := io.Copy(h, c.rs); err != nil {
		return "", fmt.Errorf("catalog: fingerprint: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Read returns the star at index, 1-based. On error the returned Star is the
// zero value and must not be used.
func (c *Catalog) Read(index int) (Star, error) {
	if index < 1 || index > c.count {
		return Star{}, &AccessError{Index: index, Kind: OutOfRange}
	}
	if _, err := c.rs.Seek(Offset(index), io.SeekStart); err != nil {
		return Star{}, &AccessError{Index: index, Kind: SeekFailed, Err: err}
	}
	if _, err := io.ReadFull(c.rs, c.buf[:]); err != nil {
		return Star{}, &AccessError{Index: index, Kind: ShortRead, Err: err}
	}
	return ParseRecord(c.buf[:]), nil
}

// Close releases the underlying file, if Open created it.
func (c *Catalog) Close() error {
	if c.closer == nil {
		return nil
	}
	err := c.closer.Close()
	c.closer = nil
	return err
}

// Writer produces a data file: header records first, then one record per star.
type Writer struct {
	w       io.Writer
	header  int
	written int
}

// NewWriter returns a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteHeader writes the reserved header records. Missing lines are blank,
// extra lines are an error.
func (w *Writer) WriteHeader(lines ...string) error {
	if w.header > 0 || w.written > 0 {
		return fmt.Errorf("catalog: header already written")
	}
	if len(lines) > HeaderRecords {
		return fmt.Errorf("catalog: %d header lines, at most %d allowed", len(lines), HeaderRecords)
	}
	for i := 0; i < HeaderRecords; i++ {
		text := ""
		if i < len(lines) {
			text = lines[i]
		}
		if _, err := w.w.Write(formatHeader(text)); err != nil {
			return fmt.Errorf("catalog: write header: %w", err)
		}
		w.header++
	}
	return nil
}

// Write appends one star.
func (w *Writer) Write(s Star) error {
	if w.header == 0 {
		if err := w.WriteHeader(); err != nil {
			return err
		}
	}
	rec, err := FormatRecord(s)
	if err != nil {
		return fmt.Errorf("catalog: star %d: %w", w.written+1, err)
	}
	if _, err := w.w.Write(rec); err != nil {
		return fmt.Errorf("catalog: write star %d: %w", w.written+1, err)
	}
	w.written++
	return nil
}

// Count returns the number of stars written so far.
func (w *Writer) Count() int {
	return w.written
}
