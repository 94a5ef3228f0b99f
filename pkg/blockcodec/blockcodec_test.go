package blockcodec

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTripNone(t *testing.T) {
	data := []byte("hello, tablestore")
	encoded, err := Encode(None, data)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if encoded[0] != byte(None) {
		t.Fatalf("expected algorithm tag %d, got %d", None, encoded[0])
	}
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(decoded, data) {
		t.Fatalf("round trip mismatch: got %q want %q", decoded, data)
	}
}

func TestEncodeDecodeRoundTripZstd(t *testing.T) {
	data := bytes.Repeat([]byte("compress me please "), 100)
	encoded, err := Encode(Zstd, data)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if encoded[0] != byte(Zstd) {
		t.Fatalf("expected algorithm tag %d, got %d", Zstd, encoded[0])
	}
	if len(encoded) >= len(data) {
		t.Fatalf("expected zstd to shrink a repetitive payload: got %d bytes from %d", len(encoded), len(data))
	}
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(decoded, data) {
		t.Fatalf("round trip mismatch")
	}
}

func TestDecodeRejectsEmptyBlock(t *testing.T) {
	if _, err := Decode(nil); err == nil {
		t.Fatalf("expected error decoding an empty block")
	}
}

func TestDecodeRejectsUnknownAlgorithm(t *testing.T) {
	if _, err := Decode([]byte{0xff, 1, 2, 3}); err == nil {
		t.Fatalf("expected error decoding an unknown algorithm tag")
	}
}
