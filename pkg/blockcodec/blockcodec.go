// Package blockcodec compresses the binary record blocks written by the SST
// and manifest codecs. Compression is optional and self-describing: every
// compressed block is preceded by a one-byte algorithm tag so a reader never
// needs out-of-band configuration to decode a file another process wrote.
package blockcodec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Algorithm identifies how a block was compressed.
type Algorithm byte

const (
	None Algorithm = iota
	Zstd
)

var (
	encoderPool = newZstdEncoderPool()
)

// Encode compresses data with algo and prefixes the result with algo's tag.
func Encode(algo Algorithm, data []byte) ([]byte, error) {
	switch algo {
	case None:
		out := make([]byte, 1+len(data))
		out[0] = byte(None)
		copy(out[1:], data)
		return out, nil
	case Zstd:
		enc, err := encoderPool.get()
		if err != nil {
			return nil, fmt.Errorf("blockcodec: acquire zstd encoder: %w", err)
		}
		defer encoderPool.put(enc)

		var buf bytes.Buffer
		buf.WriteByte(byte(Zstd))
		compressed := enc.EncodeAll(data, nil)
		buf.Write(compressed)
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("blockcodec: unknown algorithm %d", algo)
	}
}

// Decode reads the algorithm tag off the front of data and decompresses the
// remainder accordingly.
func Decode(data []byte) ([]byte, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("blockcodec: empty block")
	}
	switch Algorithm(data[0]) {
	case None:
		out := make([]byte, len(data)-1)
		copy(out, data[1:])
		return out, nil
	case Zstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("blockcodec: new zstd reader: %w", err)
		}
		defer dec.Close()
		return dec.DecodeAll(data[1:], nil)
	default:
		return nil, fmt.Errorf("blockcodec: unknown algorithm tag %d", data[0])
	}
}

// byteCounter wraps an io.Writer and counts bytes written. Nothing in this
// module uses it: SstFileMeta.FileSize comes from blockfile.Writer's own
// running byte count.
type byteCounter struct {
	w     io.Writer
	count int64
}

func (bc *byteCounter) Write(p []byte) (int, error) {
	n, err := bc.w.Write(p)
	bc.count += int64(n)
	return n, err
}

func (bc *byteCounter) Count() int64 { return bc.count }

// zstdEncoderPool amortizes zstd.NewWriter's setup cost across many small
// block encodes, the way a manifest roll writes many blocks per file.
type zstdEncoderPool struct {
	ch chan *zstd.Encoder
}

func newZstdEncoderPool() *zstdEncoderPool {
	return &zstdEncoderPool{ch: make(chan *zstd.Encoder, 8)}
}

func (p *zstdEncoderPool) get() (*zstd.Encoder, error) {
	select {
	case enc := <-p.ch:
		return enc, nil
	default:
		return zstd.NewWriter(nil)
	}
}

func (p *zstdEncoderPool) put(enc *zstd.Encoder) {
	select {
	case p.ch <- enc:
	default:
		_ = enc.Close()
	}
}
