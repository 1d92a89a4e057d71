// SPDX-License-Identifier: Unlicense OR MIT

package content

import (
	"errors"
	"io"
)

const (
	// ChunkSize bounds a single platform read.
	ChunkSize = 4096
	// EOFRead is the platform read result at end of stream.
	EOFRead = -1
	// EmptyRead is a platform read that produced nothing. Providers
	// return it only at the end of a stream, so it ends the stream too.
	EmptyRead = 0
)

// ErrClosed is returned by operations on a closed Reader.
var ErrClosed = errors.New("content: reader closed")

// Stream is a platform input stream.
type Stream interface {
	// Read fills at most ChunkSize bytes of p and returns the platform
	// read result: a byte count, EOFRead or EmptyRead.
	Read(p []byte) (int, error)
	Skip(n int64) (int64, error)
	Close() error
}

// Reader adapts a Stream to io.ReadCloser. Each Read fills p with
// successive chunk reads until p is full or the stream ends.
type Reader struct {
	s      Stream
	eof    bool
	closed bool
}

// NewReader returns a Reader over s.
func NewReader(s Stream) *Reader {
	return &Reader{s: s}
}

func (r *Reader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, ErrClosed
	}
	total := 0
	for total < len(p) && !r.eof {
		chunk := p[total:min(len(p), total+ChunkSize)]
		n, err := r.s.Read(chunk)
		if err != nil {
			return total, err
		}
		if n == EOFRead || n == EmptyRead {
			r.eof = true
			break
		}
		total += n
	}
	if total == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return total, nil
}

// Skip discards up to n bytes and returns the number skipped.
func (r *Reader) Skip(n int64) (int64, error) {
	if r.closed {
		return 0, ErrClosed
	}
	return r.s.Skip(n)
}

// Close closes the stream. Only the first call reaches the platform.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.s.Close()
}
