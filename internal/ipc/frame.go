// Package ipc implements the length-prefixed JSON protocol spoken over
// the sandboxed agent's stdin/stdout (or, for the browser bridge and
// chat front-end, a Unix domain socket). Every message is a 4-byte
// big-endian length prefix followed by exactly that many bytes of JSON —
// the same byte-preserving framing idiom the teacher uses for its
// websocket forwarding paths, adapted from length-delimited websocket
// frames to a raw length-prefixed stream since pipes have no built-in
// message boundaries.
package ipc

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// MaxFrameBytes bounds a single message to defend against a compromised
// or buggy sandbox process flooding the host with an unbounded length
// prefix and exhausting memory before the body is even read.
const MaxFrameBytes = 16 << 20 // 16 MiB

// WriteFrame writes a length-prefixed frame to w.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameBytes {
		return fmt.Errorf("ipc: frame of %d bytes exceeds max %d", len(payload), MaxFrameBytes)
	}
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("ipc: write frame header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("ipc: write frame body: %w", err)
	}
	return nil
}

// FrameReader reads length-prefixed frames from an underlying reader.
type FrameReader struct {
	r *bufio.Reader
}

func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: bufio.NewReaderSize(r, 64<<10)}
}

// ReadFrame reads and returns the next frame's payload, or an error —
// io.EOF propagates unwrapped so callers can distinguish a clean
// connection close from a framing error.
func (f *FrameReader) ReadFrame() ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(f.r, hdr[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n > MaxFrameBytes {
		return nil, fmt.Errorf("ipc: frame length %d exceeds max %d", n, MaxFrameBytes)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(f.r, buf); err != nil {
		return nil, fmt.Errorf("ipc: read frame body: %w", err)
	}
	return buf, nil
}
