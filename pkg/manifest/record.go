package manifest

import (
	"encoding/binary"
	"fmt"

	"tablestore/pkg/kv"
	"tablestore/pkg/row"
	"tablestore/pkg/tserrors"
)

var (
	entryMagic = [4]byte{'T', 'M', 'F', 'E'}
	listMagic  = [4]byte{'T', 'M', 'F', 'L'}
)

func encodeEntry(e Entry) []byte {
	buf := make([]byte, 0, 128)
	buf = append(buf, byte(e.Kind))
	buf = append(buf, row.Encode(e.Partition)...)
	var bucketBuf [4]byte
	binary.LittleEndian.PutUint32(bucketBuf[:], uint32(e.Bucket))
	buf = append(buf, bucketBuf[:]...)
	buf = appendString(buf, e.File.FileName)
	buf = appendInt64(buf, e.File.FileSize)
	buf = appendInt64(buf, e.File.RowCount)
	buf = append(buf, row.Encode(e.File.MinKey)...)
	buf = append(buf, row.Encode(e.File.MaxKey)...)
	buf = append(buf, row.EncodeStats(e.File.KeyStats)...)
	buf = append(buf, row.EncodeStats(e.File.ValueStats)...)
	buf = appendInt64(buf, int64(e.File.Level))
	return buf
}

func decodeEntry(data []byte) (Entry, int, error) {
	if len(data) < 1 {
		return Entry{}, 0, fmt.Errorf("manifest: truncated entry: %w", tserrors.ErrFormatError)
	}
	kind := kv.Kind(data[0])
	if kind != Add && kind != Delete {
		return Entry{}, 0, fmt.Errorf("manifest: unknown entry kind %d: %w", data[0], tserrors.ErrFormatError)
	}
	offset := 1

	partition, n, err := row.Decode(data[offset:])
	if err != nil {
		return Entry{}, 0, fmt.Errorf("manifest: decode partition: %w: %v", tserrors.ErrFormatError, err)
	}
	offset += n

	if len(data[offset:]) < 4 {
		return Entry{}, 0, fmt.Errorf("manifest: truncated bucket: %w", tserrors.ErrFormatError)
	}
	bucket := int32(binary.LittleEndian.Uint32(data[offset:]))
	offset += 4

	fileName, n, err := decodeString(data[offset:])
	if err != nil {
		return Entry{}, 0, err
	}
	offset += n

	fileSize, n, err := decodeInt64(data[offset:])
	if err != nil {
		return Entry{}, 0, err
	}
	offset += n

	rowCount, n, err := decodeInt64(data[offset:])
	if err != nil {
		return Entry{}, 0, err
	}
	offset += n

	minKey, n, err := row.Decode(data[offset:])
	if err != nil {
		return Entry{}, 0, fmt.Errorf("manifest: decode minKey: %w: %v", tserrors.ErrFormatError, err)
	}
	offset += n

	maxKey, n, err := row.Decode(data[offset:])
	if err != nil {
		return Entry{}, 0, fmt.Errorf("manifest: decode maxKey: %w: %v", tserrors.ErrFormatError, err)
	}
	offset += n

	keyStats, n, err := row.DecodeStats(data[offset:])
	if err != nil {
		return Entry{}, 0, fmt.Errorf("manifest: decode keyStats: %w: %v", tserrors.ErrFormatError, err)
	}
	offset += n

	valueStats, n, err := row.DecodeStats(data[offset:])
	if err != nil {
		return Entry{}, 0, fmt.Errorf("manifest: decode valueStats: %w: %v", tserrors.ErrFormatError, err)
	}
	offset += n

	level, n, err := decodeInt64(data[offset:])
	if err != nil {
		return Entry{}, 0, err
	}
	offset += n

	return Entry{
		Kind:      kind,
		Partition: partition,
		Bucket:    bucket,
		File: kv.SstFileMeta{
			FileName:   fileName,
			FileSize:   fileSize,
			RowCount:   rowCount,
			MinKey:     minKey,
			MaxKey:     maxKey,
			KeyStats:   keyStats,
			ValueStats: valueStats,
			Level:      int(level),
		},
	}, offset, nil
}

func encodeFileMeta(m FileMeta) []byte {
	buf := make([]byte, 0, 64)
	buf = appendString(buf, m.FileName)
	buf = appendInt64(buf, m.FileSize)
	buf = appendInt64(buf, m.NumAddedFiles)
	buf = appendInt64(buf, m.NumDeletedFiles)
	buf = append(buf, row.EncodeStats(m.PartitionStats)...)
	return buf
}

func decodeFileMeta(data []byte) (FileMeta, int, error) {
	fileName, n, err := decodeString(data)
	if err != nil {
		return FileMeta{}, 0, err
	}
	offset := n

	fileSize, n, err := decodeInt64(data[offset:])
	if err != nil {
		return FileMeta{}, 0, err
	}
	offset += n

	numAdded, n, err := decodeInt64(data[offset:])
	if err != nil {
		return FileMeta{}, 0, err
	}
	offset += n

	numDeleted, n, err := decodeInt64(data[offset:])
	if err != nil {
		return FileMeta{}, 0, err
	}
	offset += n

	stats, n, err := row.DecodeStats(data[offset:])
	if err != nil {
		return FileMeta{}, 0, fmt.Errorf("manifest: decode partitionStats: %w: %v", tserrors.ErrFormatError, err)
	}
	offset += n

	return FileMeta{
		FileName:        fileName,
		FileSize:        fileSize,
		NumAddedFiles:   numAdded,
		NumDeletedFiles: numDeleted,
		PartitionStats:  stats,
	}, offset, nil
}

func appendString(buf []byte, s string) []byte {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)))
	buf = append(buf, lenBuf[:]...)
	return append(buf, s...)
}

func decodeString(data []byte) (string, int, error) {
	if len(data) < 4 {
		return "", 0, fmt.Errorf("manifest: truncated string length: %w", tserrors.ErrFormatError)
	}
	length := int(binary.LittleEndian.Uint32(data))
	offset := 4
	if len(data[offset:]) < length {
		return "", 0, fmt.Errorf("manifest: truncated string content: %w", tserrors.ErrFormatError)
	}
	return string(data[offset : offset+length]), offset + length, nil
}

func appendInt64(buf []byte, v int64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	return append(buf, b[:]...)
}

func decodeInt64(data []byte) (int64, int, error) {
	if len(data) < 8 {
		return 0, 0, fmt.Errorf("manifest: truncated int64: %w", tserrors.ErrFormatError)
	}
	return int64(binary.LittleEndian.Uint64(data)), 8, nil
}
