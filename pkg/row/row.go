// Package row defines the fixed-schema tuple type shared by keys, values,
// and partition specs across the table store.
package row

import (
	"bytes"
	"fmt"
	"math"
)

// FieldType tags the concrete type carried by a Field.
type FieldType uint8

const (
	TypeNull FieldType = iota
	TypeInt32
	TypeInt64
	TypeFloat64
	TypeString
	TypeBytes
)

func (t FieldType) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeFloat64:
		return "float64"
	case TypeString:
		return "string"
	case TypeBytes:
		return "bytes"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Field is one typed value inside a Row.
type Field struct {
	Type   FieldType
	Int    int64
	Float  float64
	String string
	Bytes  []byte
}

// Null reports whether the field carries no value.
func (f Field) Null() bool { return f.Type == TypeNull }

func NullField() Field                { return Field{Type: TypeNull} }
func Int32Field(v int32) Field        { return Field{Type: TypeInt32, Int: int64(v)} }
func Int64Field(v int64) Field        { return Field{Type: TypeInt64, Int: v} }
func Float64Field(v float64) Field    { return Field{Type: TypeFloat64, Float: v} }
func StringField(v string) Field      { return Field{Type: TypeString, String: v} }
func BytesField(v []byte) Field       { return Field{Type: TypeBytes, Bytes: v} }

// Compare orders two fields of the same declared type. Null sorts before
// every non-null value. Comparing fields of differing types is a caller
// error and panics, since it can only happen when the schema is violated.
func (f Field) Compare(other Field) int {
	if f.Null() && other.Null() {
		return 0
	}
	if f.Null() {
		return -1
	}
	if other.Null() {
		return 1
	}
	if f.Type != other.Type {
		panic(fmt.Sprintf("row: comparing mismatched field types %s and %s", f.Type, other.Type))
	}
	switch f.Type {
	case TypeInt32, TypeInt64:
		switch {
		case f.Int < other.Int:
			return -1
		case f.Int > other.Int:
			return 1
		default:
			return 0
		}
	case TypeFloat64:
		switch {
		case f.Float < other.Float:
			return -1
		case f.Float > other.Float:
			return 1
		default:
			return 0
		}
	case TypeString:
		return bytes.Compare([]byte(f.String), []byte(other.String))
	case TypeBytes:
		return bytes.Compare(f.Bytes, other.Bytes)
	default:
		return 0
	}
}

// AsString renders a field for partition-path encoding and admin output.
func (f Field) AsString() string {
	switch f.Type {
	case TypeNull:
		return ""
	case TypeInt32, TypeInt64:
		return fmt.Sprintf("%d", f.Int)
	case TypeFloat64:
		return fmt.Sprintf("%g", f.Float)
	case TypeString:
		return f.String
	case TypeBytes:
		return fmt.Sprintf("%x", f.Bytes)
	default:
		return ""
	}
}

// Row is an ordered, fixed-arity tuple of typed fields. Keys, values, and
// partition specs are all Rows; arity and field types are defined by the
// table schema and are not self-describing beyond what Field.Type carries.
type Row []Field

// Compare orders two rows lexicographically field by field. Rows of
// differing arity compare the common prefix first, then the shorter row
// sorts first (mirrors the ordering of a truncated tuple).
func (r Row) Compare(other Row) int {
	n := len(r)
	if len(other) < n {
		n = len(other)
	}
	for i := 0; i < n; i++ {
		if c := r[i].Compare(other[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(r) < len(other):
		return -1
	case len(r) > len(other):
		return 1
	default:
		return 0
	}
}

func (r Row) Equal(other Row) bool { return r.Compare(other) == 0 }

// Clone returns a deep-enough copy safe to retain past the lifetime of any
// buffer the fields' Bytes/String slices were sliced from.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for i, f := range r {
		if f.Type == TypeBytes && f.Bytes != nil {
			b := make([]byte, len(f.Bytes))
			copy(b, f.Bytes)
			f.Bytes = b
		}
		out[i] = f
	}
	return out
}

// PartitionPath renders the row as "k1=v1/k2=v2/..." using the given field
// names, matching the path factory's on-disk partition directory layout.
func (r Row) PartitionPath(fieldNames []string) string {
	if len(r) == 0 {
		return ""
	}
	var b bytes.Buffer
	for i, f := range r {
		if i > 0 {
			b.WriteByte('/')
		}
		name := fmt.Sprintf("field%d", i)
		if i < len(fieldNames) {
			name = fieldNames[i]
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(f.AsString())
	}
	return b.String()
}

// CanonicalBytes produces a byte encoding suitable for hashing (bucket
// assignment) that is stable across process runs, unlike fmt.Sprintf("%v").
func (r Row) CanonicalBytes() []byte {
	var b bytes.Buffer
	for _, f := range r {
		b.WriteByte(byte(f.Type))
		switch f.Type {
		case TypeInt32, TypeInt64:
			var tmp [8]byte
			putUint64(tmp[:], uint64(f.Int))
			b.Write(tmp[:])
		case TypeFloat64:
			var tmp [8]byte
			putUint64(tmp[:], math.Float64bits(f.Float))
			b.Write(tmp[:])
		case TypeString:
			b.WriteString(f.String)
		case TypeBytes:
			b.Write(f.Bytes)
		}
		b.WriteByte(0) // field separator, avoids accidental concatenation collisions
	}
	return b.Bytes()
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}
