// Package blockfile implements the length-prefixed, block-oriented binary
// file format shared by SST data files and manifest/manifest-list files: a
// magic-tagged header, a sequence of independently compressed blocks each
// holding a run of records, and a footer that lets a reader recognize
// end-of-file without a separate index pass.
//
// Callers own record framing; blockfile only frames blocks of opaque
// record bytes, keeping the two callers (sst, manifest) from duplicating
// the block/compression/footer bookkeeping.
package blockfile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"tablestore/pkg/blockcodec"
	"tablestore/pkg/tserrors"
)

const (
	version    = 1
	footerMark = 0xFFFFFFFF
)

// Writer accumulates records into fixed-size blocks and flushes each block
// compressed. Call AppendRecord for every record, then Close.
type Writer struct {
	f            *os.File
	bw           *bufio.Writer
	magic        [4]byte
	algo         blockcodec.Algorithm
	maxPerBlock  int
	pending      [][]byte
	blockCount   uint32
	recordCount  uint64
	bytesWritten int64
}

// Create opens path for writing, creating parent directories as needed, and
// writes the format header.
func Create(path string, magic [4]byte, algo blockcodec.Algorithm, maxRecordsPerBlock int) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("blockfile: create dir: %w: %v", tserrors.ErrIoError, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("blockfile: create file: %w: %v", tserrors.ErrIoError, err)
	}
	w := &Writer{
		f:           f,
		bw:          bufio.NewWriter(f),
		magic:       magic,
		algo:        algo,
		maxPerBlock: maxRecordsPerBlock,
	}
	if _, err := w.bw.Write(magic[:]); err != nil {
		return nil, fmt.Errorf("blockfile: write magic: %w: %v", tserrors.ErrIoError, err)
	}
	if err := w.bw.WriteByte(version); err != nil {
		return nil, fmt.Errorf("blockfile: write version: %w: %v", tserrors.ErrIoError, err)
	}
	w.bytesWritten = int64(len(magic)) + 1
	return w, nil
}

// AppendRecord buffers one record, flushing a block when maxPerBlock is
// reached.
func (w *Writer) AppendRecord(record []byte) error {
	w.pending = append(w.pending, record)
	w.recordCount++
	if len(w.pending) >= w.maxPerBlock {
		return w.flushBlock()
	}
	return nil
}

func (w *Writer) flushBlock() error {
	if len(w.pending) == 0 {
		return nil
	}
	var payload []byte
	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(w.pending)))
	payload = append(payload, countBuf[:]...)
	for _, r := range w.pending {
		payload = append(payload, r...)
	}
	w.pending = w.pending[:0]

	compressed, err := blockcodec.Encode(w.algo, payload)
	if err != nil {
		return fmt.Errorf("blockfile: compress block: %w", err)
	}

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(compressed)))
	if _, err := w.bw.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("blockfile: write block length: %w: %v", tserrors.ErrIoError, err)
	}
	if _, err := w.bw.Write(compressed); err != nil {
		return fmt.Errorf("blockfile: write block: %w: %v", tserrors.ErrIoError, err)
	}
	w.bytesWritten += int64(len(lenBuf) + len(compressed))
	w.blockCount++
	return nil
}

// Close flushes any buffered records, writes the footer, and closes the
// file. It returns the total number of bytes written and records appended.
func (w *Writer) Close() (fileSize int64, rowCount int64, err error) {
	if err := w.flushBlock(); err != nil {
		return 0, 0, err
	}

	var footer [4 + 4 + 8]byte
	binary.LittleEndian.PutUint32(footer[0:4], footerMark)
	binary.LittleEndian.PutUint32(footer[4:8], w.blockCount)
	binary.LittleEndian.PutUint64(footer[8:16], w.recordCount)
	if _, err := w.bw.Write(footer[:]); err != nil {
		return 0, 0, fmt.Errorf("blockfile: write footer: %w: %v", tserrors.ErrIoError, err)
	}
	w.bytesWritten += int64(len(footer))

	if err := w.bw.Flush(); err != nil {
		return 0, 0, fmt.Errorf("blockfile: flush: %w: %v", tserrors.ErrIoError, err)
	}
	if err := w.f.Close(); err != nil {
		return 0, 0, fmt.Errorf("blockfile: close: %w: %v", tserrors.ErrIoError, err)
	}
	return w.bytesWritten, int64(w.recordCount), nil
}

// Reader streams blocks of raw record bytes back out of a file written by
// Writer.
type Reader struct {
	f     *os.File
	br    *bufio.Reader
	magic [4]byte
}

// Open validates the header (magic + version) and positions the reader at
// the first block.
func Open(path string, wantMagic [4]byte) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blockfile: open %s: %w", path, tserrors.ErrSnapshotNotFound)
		}
		return nil, fmt.Errorf("blockfile: open %s: %w: %v", path, tserrors.ErrIoError, err)
	}

	r := &Reader{f: f, br: bufio.NewReader(f)}
	var hdr [5]byte
	if _, err := io.ReadFull(r.br, hdr[:]); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("blockfile: read header: %w: %v", tserrors.ErrFormatError, err)
	}
	copy(r.magic[:], hdr[:4])
	if r.magic != wantMagic {
		_ = f.Close()
		return nil, fmt.Errorf("blockfile: bad magic %v (want %v): %w", r.magic, wantMagic, tserrors.ErrFormatError)
	}
	if hdr[4] != version {
		_ = f.Close()
		return nil, fmt.Errorf("blockfile: unsupported version %d: %w", hdr[4], tserrors.ErrFormatError)
	}
	return r, nil
}

// NextBlock reads and decompresses the next block, returning its raw
// payload (a record count followed by concatenated record bytes) and true,
// or false at end of file.
func (r *Reader) NextBlock() ([]byte, bool, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r.br, lenBuf[:]); err != nil {
		return nil, false, fmt.Errorf("blockfile: read block length: %w: %v", tserrors.ErrFormatError, err)
	}
	length := binary.LittleEndian.Uint32(lenBuf[:])
	if length == footerMark {
		// footer: blockCount(4) + recordCount(8), nothing left to read after.
		var rest [12]byte
		if _, err := io.ReadFull(r.br, rest[:]); err != nil {
			return nil, false, fmt.Errorf("blockfile: read footer: %w: %v", tserrors.ErrFormatError, err)
		}
		return nil, false, nil
	}

	compressed := make([]byte, length)
	if _, err := io.ReadFull(r.br, compressed); err != nil {
		return nil, false, fmt.Errorf("blockfile: read block: %w: %v", tserrors.ErrFormatError, err)
	}
	payload, err := blockcodec.Decode(compressed)
	if err != nil {
		return nil, false, fmt.Errorf("blockfile: decompress block: %w: %v", tserrors.ErrFormatError, err)
	}
	return payload, true, nil
}

// RecordCount reads the record count out of a block payload produced by
// NextBlock, returning the count and the offset of the first record.
func RecordCount(payload []byte) (uint32, int, error) {
	if len(payload) < 4 {
		return 0, 0, fmt.Errorf("blockfile: truncated block payload: %w", tserrors.ErrFormatError)
	}
	return binary.LittleEndian.Uint32(payload[:4]), 4, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	if err := r.f.Close(); err != nil {
		return fmt.Errorf("blockfile: close: %w: %v", tserrors.ErrIoError, err)
	}
	return nil
}
