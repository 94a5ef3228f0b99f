package sst

import (
	"fmt"

	"tablestore/pkg/kv"
	"tablestore/pkg/row"
	"tablestore/pkg/tserrors"
)

var magic = [4]byte{'T', 'S', 'S', 'T'}

func encodeRecord(r kv.KeyValue) []byte {
	buf := make([]byte, 0, 64)
	buf = append(buf, byte(r.Kind))
	buf = append(buf, row.Encode(r.Key)...)
	buf = append(buf, row.Encode(r.Value)...)
	return buf
}

func decodeRecord(data []byte) (kv.KeyValue, int, error) {
	if len(data) < 1 {
		return kv.KeyValue{}, 0, fmt.Errorf("sst: truncated record: %w", tserrors.ErrFormatError)
	}
	kind := kv.Kind(data[0])
	if kind != kv.Add && kind != kv.Delete {
		return kv.KeyValue{}, 0, fmt.Errorf("sst: unknown record kind %d: %w", data[0], tserrors.ErrFormatError)
	}
	offset := 1
	key, n, err := row.Decode(data[offset:])
	if err != nil {
		return kv.KeyValue{}, 0, fmt.Errorf("sst: decode key: %w: %v", tserrors.ErrFormatError, err)
	}
	offset += n
	value, n, err := row.Decode(data[offset:])
	if err != nil {
		return kv.KeyValue{}, 0, fmt.Errorf("sst: decode value: %w: %v", tserrors.ErrFormatError, err)
	}
	offset += n
	return kv.KeyValue{Key: key, Value: value, Kind: kind}, offset, nil
}
