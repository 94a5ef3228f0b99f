package row

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeError and DecodeError distinguish malformed row payloads at their
// point of origin, mirroring the file's structured record boundaries.
type EncodeError struct{ Message string }

func (e *EncodeError) Error() string { return "row encode: " + e.Message }

type DecodeError struct{ Message string }

func (e *DecodeError) Error() string { return "row decode: " + e.Message }

// Encode writes a length-prefixed, type-tagged binary form of the row: a
// field count followed by one tagged value per field. This is the wire
// form used for keys and values inside SST records and manifest entries.
func Encode(r Row) []byte {
	buf := make([]byte, 4, 32)
	binary.LittleEndian.PutUint32(buf, uint32(len(r)))
	for _, f := range r {
		buf = appendField(buf, f)
	}
	return buf
}

func appendField(buf []byte, f Field) []byte {
	buf = append(buf, byte(f.Type))
	switch f.Type {
	case TypeNull:
	case TypeInt32:
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], uint32(int32(f.Int)))
		buf = append(buf, tmp[:]...)
	case TypeInt64:
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], uint64(f.Int))
		buf = append(buf, tmp[:]...)
	case TypeFloat64:
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(f.Float))
		buf = append(buf, tmp[:]...)
	case TypeString:
		buf = appendLenPrefixed(buf, []byte(f.String))
	case TypeBytes:
		buf = appendLenPrefixed(buf, f.Bytes)
	}
	return buf
}

func appendLenPrefixed(buf, data []byte) []byte {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(data)))
	buf = append(buf, lenBuf[:]...)
	return append(buf, data...)
}

// Decode reads a row previously produced by Encode, returning the row and
// the number of bytes consumed.
func Decode(data []byte) (Row, int, error) {
	if len(data) < 4 {
		return nil, 0, &DecodeError{Message: "insufficient data for field count"}
	}
	count := int(binary.LittleEndian.Uint32(data))
	offset := 4
	r := make(Row, 0, count)
	for i := 0; i < count; i++ {
		f, n, err := decodeField(data[offset:])
		if err != nil {
			return nil, 0, err
		}
		r = append(r, f)
		offset += n
	}
	return r, offset, nil
}

func decodeField(data []byte) (Field, int, error) {
	if len(data) < 1 {
		return Field{}, 0, &DecodeError{Message: "insufficient data for field tag"}
	}
	typ := FieldType(data[0])
	offset := 1
	switch typ {
	case TypeNull:
		return NullField(), offset, nil
	case TypeInt32:
		if len(data[offset:]) < 4 {
			return Field{}, 0, &DecodeError{Message: "insufficient data for int32"}
		}
		v := int32(binary.LittleEndian.Uint32(data[offset:]))
		return Int32Field(v), offset + 4, nil
	case TypeInt64:
		if len(data[offset:]) < 8 {
			return Field{}, 0, &DecodeError{Message: "insufficient data for int64"}
		}
		v := int64(binary.LittleEndian.Uint64(data[offset:]))
		return Int64Field(v), offset + 8, nil
	case TypeFloat64:
		if len(data[offset:]) < 8 {
			return Field{}, 0, &DecodeError{Message: "insufficient data for float64"}
		}
		bits := binary.LittleEndian.Uint64(data[offset:])
		return Float64Field(math.Float64frombits(bits)), offset + 8, nil
	case TypeString:
		s, n, err := decodeLenPrefixed(data[offset:])
		if err != nil {
			return Field{}, 0, err
		}
		return StringField(string(s)), offset + n, nil
	case TypeBytes:
		b, n, err := decodeLenPrefixed(data[offset:])
		if err != nil {
			return Field{}, 0, err
		}
		return BytesField(b), offset + n, nil
	default:
		return Field{}, 0, &DecodeError{Message: fmt.Sprintf("unknown field type %d", typ)}
	}
}

// EncodeStats writes a per-field Min/Max/NullCount summary, used for
// SstFileMeta.keyStats/valueStats and ManifestFileMeta.PartitionStats.
func EncodeStats(s Stats) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(len(s)))
	for _, cs := range s {
		buf = appendField(buf, cs.Min)
		buf = appendField(buf, cs.Max)
		var nc [8]byte
		binary.LittleEndian.PutUint64(nc[:], uint64(cs.NullCount))
		buf = append(buf, nc[:]...)
	}
	return buf
}

// DecodeStats reads a Stats value previously produced by EncodeStats.
func DecodeStats(data []byte) (Stats, int, error) {
	if len(data) < 4 {
		return nil, 0, &DecodeError{Message: "insufficient data for stats column count"}
	}
	count := int(binary.LittleEndian.Uint32(data))
	offset := 4
	out := make(Stats, 0, count)
	for i := 0; i < count; i++ {
		min, n, err := decodeField(data[offset:])
		if err != nil {
			return nil, 0, err
		}
		offset += n
		max, n, err := decodeField(data[offset:])
		if err != nil {
			return nil, 0, err
		}
		offset += n
		if len(data[offset:]) < 8 {
			return nil, 0, &DecodeError{Message: "insufficient data for null count"}
		}
		nullCount := int64(binary.LittleEndian.Uint64(data[offset:]))
		offset += 8
		out = append(out, ColumnStats{Min: min, Max: max, NullCount: nullCount})
	}
	return out, offset, nil
}

func decodeLenPrefixed(data []byte) ([]byte, int, error) {
	if len(data) < 4 {
		return nil, 0, &DecodeError{Message: "insufficient data for length"}
	}
	length := int(binary.LittleEndian.Uint32(data))
	offset := 4
	if len(data[offset:]) < length {
		return nil, 0, &DecodeError{Message: "insufficient data for content"}
	}
	out := make([]byte, length)
	copy(out, data[offset:offset+length])
	return out, offset + length, nil
}
