// Package merge is the multi-file k-way merge reader: it consumes a set of
// SST sources restricted to one (partition, bucket), merges them by key
// using the configured key comparator as primary order and merge-tree level
// as secondary order, and folds records sharing a key through an
// accumulator.
package merge

import (
	"fmt"

	"tablestore/pkg/kv"
	"tablestore/pkg/row"
)

// AccumulatorKind selects an Accumulator's fold behavior. Source systems in
// this space dispatch accumulator variants through subclassing; a tagged
// variant with a single concrete type and a kind tag serves the same
// purpose without a type hierarchy.
type AccumulatorKind uint8

const (
	// Deduplicate keeps the newest record for a key; a tombstone as the
	// newest record suppresses the key from merged output.
	Deduplicate AccumulatorKind = iota
	// SumReduce folds every ADD record for a key by adding one field's
	// numeric value; DELETE records are skipped, so a key is emitted when
	// any of its records is an ADD.
	SumReduce
)

// Accumulator runs the per-key state machine IDLE -> ACCUMULATING -> EMIT?
// described by the merge reader's contract: Reset on the first (newest)
// record for a key, Add for every subsequent record in newest-to-oldest
// order, GetResult once no more records for that key remain.
type Accumulator struct {
	kind        AccumulatorKind
	sumFieldIdx int

	value     row.Row
	valueKind kv.Kind
	have      bool
}

// NewDeduplicate builds an Accumulator that keeps the newest value.
func NewDeduplicate() *Accumulator {
	return &Accumulator{kind: Deduplicate}
}

// NewSumReduce builds an Accumulator that sums field fieldIdx of every ADD
// value sharing a key. fieldIdx must be a numeric field (Int32, Int64, or
// Float64) in every value row it is applied to.
func NewSumReduce(fieldIdx int) *Accumulator {
	return &Accumulator{kind: SumReduce, sumFieldIdx: fieldIdx}
}

// Reset starts accumulation for a new key with its newest record.
func (a *Accumulator) Reset(firstValue row.Row, kind kv.Kind) {
	switch a.kind {
	case Deduplicate:
		a.value = firstValue
		a.valueKind = kind
		a.have = true
	case SumReduce:
		a.have = kind == kv.Add
		a.valueKind = kv.Add
		if a.have {
			a.value = firstValue.Clone()
		}
	}
}

// Add folds in the next-newest record sharing the current key.
func (a *Accumulator) Add(value row.Row, kind kv.Kind) {
	switch a.kind {
	case Deduplicate:
		// The newest record already won in Reset; older records for the
		// same key never change the result.
	case SumReduce:
		if kind != kv.Add {
			return
		}
		if !a.have {
			a.value = value.Clone()
			a.have = true
			return
		}
		merged := a.value.Clone()
		merged[a.sumFieldIdx] = sumField(merged[a.sumFieldIdx], value[a.sumFieldIdx])
		a.value = merged
	}
}

// GetResult returns the accumulated value for the key, or ok == false if the
// key produces no output (a Deduplicate tombstone, or a SumReduce key with
// no ADD record).
func (a *Accumulator) GetResult() (value row.Row, kind kv.Kind, ok bool) {
	if !a.have {
		return nil, 0, false
	}
	if a.kind == Deduplicate && a.valueKind == kv.Delete {
		return nil, kv.Delete, false
	}
	return a.value, a.valueKind, true
}

func sumField(a, b row.Field) row.Field {
	if a.Type != b.Type {
		panic(fmt.Sprintf("merge: sum field type mismatch: %s vs %s", a.Type, b.Type))
	}
	switch a.Type {
	case row.TypeInt32:
		return row.Int32Field(int32(a.Int) + int32(b.Int))
	case row.TypeInt64:
		return row.Int64Field(a.Int + b.Int)
	case row.TypeFloat64:
		return row.Float64Field(a.Float + b.Float)
	default:
		panic(fmt.Sprintf("merge: cannot sum non-numeric field type %s", a.Type))
	}
}
