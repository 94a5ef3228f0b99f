package row

import "testing"

func TestFieldCompareOrdersNullFirst(t *testing.T) {
	if NullField().Compare(Int64Field(1)) >= 0 {
		t.Fatalf("null field must sort before a non-null field")
	}
	if Int64Field(1).Compare(NullField()) <= 0 {
		t.Fatalf("non-null field must sort after null")
	}
}

func TestRowCompareLexicographic(t *testing.T) {
	a := Row{Int64Field(1), StringField("a")}
	b := Row{Int64Field(1), StringField("b")}
	c := Row{Int64Field(2), StringField("a")}

	if a.Compare(b) >= 0 {
		t.Fatalf("expected a < b")
	}
	if a.Compare(c) >= 0 {
		t.Fatalf("expected a < c on first field")
	}
	if a.Compare(a.Clone()) != 0 {
		t.Fatalf("expected a row to compare equal to its own clone")
	}
}

func TestRowCloneIsIndependentOfSourceBytes(t *testing.T) {
	src := []byte{1, 2, 3}
	r := Row{BytesField(src)}
	cloned := r.Clone()
	src[0] = 0xff
	if cloned[0].Bytes[0] == 0xff {
		t.Fatalf("clone shared the backing array with the source field")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := Row{
		NullField(),
		Int32Field(-7),
		Int64Field(1 << 40),
		Float64Field(3.5),
		StringField("hello"),
		BytesField([]byte{9, 8, 7}),
	}
	encoded := Encode(original)
	decoded, n, err := Decode(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n != len(encoded) {
		t.Fatalf("decode consumed %d bytes, want %d", n, len(encoded))
	}
	if !decoded.Equal(original) {
		t.Fatalf("decoded row %v does not equal original %v", decoded, original)
	}
}

func TestDecodeRejectsTruncatedInput(t *testing.T) {
	encoded := Encode(Row{StringField("hello world")})
	if _, _, err := Decode(encoded[:len(encoded)-2]); err == nil {
		t.Fatalf("expected decode error on truncated payload")
	}
}

func TestStatsObserveAndMerge(t *testing.T) {
	var s Stats
	s = s.Observe(Row{Int64Field(5)})
	s = s.Observe(Row{NullField()})
	s = s.Observe(Row{Int64Field(1)})

	if s[0].Min.Int != 1 || s[0].Max.Int != 5 {
		t.Fatalf("unexpected min/max after Observe: %+v", s[0])
	}
	if s[0].NullCount != 1 {
		t.Fatalf("expected NullCount 1, got %d", s[0].NullCount)
	}

	var t2 Stats
	t2 = t2.Observe(Row{Int64Field(10)})
	merged := Merge(s, t2)
	if merged[0].Min.Int != 1 || merged[0].Max.Int != 10 {
		t.Fatalf("unexpected merged min/max: %+v", merged[0])
	}
	if merged[0].NullCount != 1 {
		t.Fatalf("expected merged NullCount 1, got %d", merged[0].NullCount)
	}
}

func TestStatsEncodeDecodeRoundTrip(t *testing.T) {
	var s Stats
	s = s.Observe(Row{Int64Field(1), StringField("a")})
	s = s.Observe(Row{Int64Field(9), StringField("z")})

	encoded := EncodeStats(s)
	decoded, n, err := DecodeStats(encoded)
	if err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if n != len(encoded) {
		t.Fatalf("decode consumed %d bytes, want %d", n, len(encoded))
	}
	if len(decoded) != len(s) {
		t.Fatalf("decoded %d columns, want %d", len(decoded), len(s))
	}
	for i := range s {
		if decoded[i].Min.Compare(s[i].Min) != 0 || decoded[i].Max.Compare(s[i].Max) != 0 {
			t.Fatalf("column %d round-trip mismatch: got %+v want %+v", i, decoded[i], s[i])
		}
	}
}
