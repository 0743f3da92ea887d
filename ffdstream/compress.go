package ffdstream

import (
	"bufio"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
)

// decompressStream is a transparent forward-only wrapper over a compressed
// backing stream (§6: "Wrappers providing zlib/gzip decompression are
// transparent collaborators: they expose the same interface over a backing
// stream"). Seek(delta) only supports delta >= 0 since compressed streams
// cannot be seeked backward without re-inflating from the origin.
type decompressStream struct {
	open func() (io.Reader, error)
	r    *bufio.Reader
	pos  int64
}

func newDecompressStream(open func() (io.Reader, error)) (Stream, error) {
	s := &decompressStream{open: open}
	if err := s.Reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// Zlib wraps a zlib-compressed backing source as a Stream.
func Zlib(open func() (io.Reader, error)) (Stream, error) {
	return newDecompressStream(func() (io.Reader, error) {
		raw, err := open()
		if err != nil {
			return nil, err
		}
		return zlib.NewReader(raw)
	})
}

// Gzip wraps a gzip-compressed backing source as a Stream.
func Gzip(open func() (io.Reader, error)) (Stream, error) {
	return newDecompressStream(func() (io.Reader, error) {
		raw, err := open()
		if err != nil {
			return nil, err
		}
		return gzip.NewReader(raw)
	})
}

func (s *decompressStream) Read(p []byte) error {
	n, err := io.ReadFull(s.r, p)
	s.pos += int64(n)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrShortRead, err)
	}
	return nil
}

func (s *decompressStream) Tell() int64 { return s.pos }

func (s *decompressStream) Size() (int64, bool) { return 0, false }

func (s *decompressStream) Seek(delta int64) error {
	if delta < 0 {
		return fmt.Errorf("ffdstream: compressed stream cannot seek backward")
	}
	_, err := io.CopyN(io.Discard, s.r, delta)
	s.pos += delta
	return err
}

func (s *decompressStream) Reset() error {
	r, err := s.open()
	if err != nil {
		return err
	}
	s.r = bufio.NewReader(r)
	s.pos = 0
	return nil
}
