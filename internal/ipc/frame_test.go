package ipc

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payloads := [][]byte{
		[]byte(`{"id":"1"}`),
		[]byte(`{"id":"2","bigger":"payload here"}`),
		[]byte(`{}`),
	}
	for _, p := range payloads {
		if err := WriteFrame(&buf, p); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}

	r := NewFrameReader(&buf)
	for i, want := range payloads {
		got, err := r.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame %d: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("frame %d = %q, want %q", i, got, want)
		}
	}

	if _, err := r.ReadFrame(); err != io.EOF {
		t.Fatalf("expected io.EOF after last frame, got %v", err)
	}
}

func TestFrameRejectsOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], MaxFrameBytes+1)
	buf.Write(hdr[:])

	r := NewFrameReader(&buf)
	if _, err := r.ReadFrame(); err == nil {
		t.Fatal("expected an error for an oversized frame length")
	}
}

func TestWriteFrameRejectsOversizedPayload(t *testing.T) {
	var buf bytes.Buffer
	huge := make([]byte, MaxFrameBytes+1)
	if err := WriteFrame(&buf, huge); err == nil {
		t.Fatal("expected an error writing a payload larger than MaxFrameBytes")
	}
}

func TestReadFrameTruncatedHeader(t *testing.T) {
	r := NewFrameReader(bytes.NewReader([]byte{0x00, 0x00}))
	if _, err := r.ReadFrame(); err == nil {
		t.Fatal("expected an error reading a truncated header")
	}
}
