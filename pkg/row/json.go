package row

import "encoding/json"

// MarshalJSON renders f as its natural JSON value: null, a number, a
// string, or (for TypeBytes) a base64 string via encoding/json's standard
// []byte handling. Used by the admin HTTP surface to render merged rows;
// the binary codec in codec.go is the on-disk representation and does not
// use this.
func (f Field) MarshalJSON() ([]byte, error) {
	switch f.Type {
	case TypeNull:
		return []byte("null"), nil
	case TypeInt32, TypeInt64:
		return json.Marshal(f.Int)
	case TypeFloat64:
		return json.Marshal(f.Float)
	case TypeString:
		return json.Marshal(f.String)
	case TypeBytes:
		return json.Marshal(f.Bytes)
	default:
		return json.Marshal(nil)
	}
}
