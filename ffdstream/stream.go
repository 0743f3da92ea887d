// Package ffdstream defines the byte-stream collaborator the Stream
// Evaluator reads from (§6 "Byte stream collaborator"): an interface
// abstracting file I/O and decompression filters, which are out of scope
// for the core decoder itself.
package ffdstream

import (
	"fmt"
	"io"
)

// Stream is a random-accessible byte source. Read must deliver exactly len(p)
// bytes or return an error; short reads are always fatal (§6, §7 "Stream-
// format mismatch").
type Stream interface {
	Read(p []byte) error
	Tell() int64
	Size() (int64, bool)
	Seek(delta int64) error
	Reset() error
}

// ErrShortRead is wrapped into the error returned by Read when the
// underlying source is exhausted before len(p) bytes are delivered.
var ErrShortRead = fmt.Errorf("ffdstream: short read")

// readSeekStream adapts an io.ReadSeeker to Stream.
type readSeekStream struct {
	rs   io.ReadSeeker
	pos  int64
	size int64
	has  bool
}

// FromReadSeeker wraps an io.ReadSeeker (typically an *os.File or
// bytes.Reader) as a Stream.
func FromReadSeeker(rs io.ReadSeeker) Stream {
	s := &readSeekStream{rs: rs}
	if sz, ok := io.ReadSeeker(rs).(interface{ Size() int64 }); ok {
		s.size, s.has = sz.Size(), true
	} else if cur, err := rs.Seek(0, io.SeekCurrent); err == nil {
		if end, err := rs.Seek(0, io.SeekEnd); err == nil {
			s.size, s.has = end, true
			_, _ = rs.Seek(cur, io.SeekStart)
		}
	}
	return s
}

func (s *readSeekStream) Read(p []byte) error {
	n, err := io.ReadFull(s.rs, p)
	s.pos += int64(n)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrShortRead, err)
	}
	return nil
}

func (s *readSeekStream) Tell() int64 { return s.pos }

func (s *readSeekStream) Size() (int64, bool) { return s.size, s.has }

func (s *readSeekStream) Seek(delta int64) error {
	np, err := s.rs.Seek(delta, io.SeekCurrent)
	if err != nil {
		return err
	}
	s.pos = np
	return nil
}

func (s *readSeekStream) Reset() error {
	np, err := s.rs.Seek(0, io.SeekStart)
	if err != nil {
		return err
	}
	s.pos = np
	return nil
}
