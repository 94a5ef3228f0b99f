// Package predicate is the boolean expression model used to prune
// manifests and manifest entries during a scan: an expression tree over
// partition/key/value fields with both an exact evaluator over a concrete
// row and a conservative evaluator over column statistics.
package predicate

import (
	"fmt"

	"tablestore/pkg/row"
	"tablestore/pkg/tserrors"
)

// Expr is a boolean expression over a row's fields.
type Expr interface {
	// TestRow evaluates the expression exactly against a concrete row.
	TestRow(r row.Row) (bool, error)
	// TestStats conservatively evaluates the expression against a
	// min/max/null-count summary of rowCount rows. It MUST return true
	// whenever any row covered by the stats could satisfy the
	// expression: it never produces a false negative, only false
	// positives.
	TestStats(rowCount int64, stats row.Stats) (bool, error)
}

// Literal is a typed constant.
type Literal struct {
	Value row.Field
}

func (l Literal) TestRow(row.Row) (bool, error) {
	panic("predicate: Literal is not a boolean expression")
}

func (l Literal) TestStats(int64, row.Stats) (bool, error) {
	panic("predicate: Literal is not a boolean expression")
}

// Equal tests that field fieldIdx of a row equals a literal.
type Equal struct {
	FieldIdx int
	Literal  Literal
}

func (e Equal) TestRow(r row.Row) (bool, error) {
	if e.FieldIdx >= len(r) {
		return false, fmt.Errorf("predicate: field index %d out of range for row of arity %d: %w",
			e.FieldIdx, len(r), tserrors.ErrFilterTypeMismatch)
	}
	f := r[e.FieldIdx]
	if !f.Null() && !e.Literal.Value.Null() && f.Type != e.Literal.Value.Type {
		return false, fmt.Errorf("predicate: field %d type %s does not match literal type %s: %w",
			e.FieldIdx, f.Type, e.Literal.Value.Type, tserrors.ErrFilterTypeMismatch)
	}
	return f.Compare(e.Literal.Value) == 0, nil
}

func (e Equal) TestStats(rowCount int64, stats row.Stats) (bool, error) {
	if rowCount == 0 {
		return false, nil
	}
	if e.FieldIdx >= len(stats) {
		// No stats recorded for this field: cannot rule anything out.
		return true, nil
	}
	cs := stats[e.FieldIdx]
	if cs.Min.Null() && cs.Max.Null() {
		// Every value observed was null; Equal against a non-null
		// literal can never be satisfied, unless nulls were also
		// present alongside untracked non-null values (impossible here
		// since Min/Max would then be set), so this is sound.
		return e.Literal.Value.Null() && cs.NullCount > 0, nil
	}
	if e.Literal.Value.Null() {
		// Only a null field equals a null literal.
		return cs.NullCount > 0, nil
	}
	if !cs.Min.Null() && cs.Min.Type != e.Literal.Value.Type {
		return false, fmt.Errorf("predicate: stats field %d type %s does not match literal type %s: %w",
			e.FieldIdx, cs.Min.Type, e.Literal.Value.Type, tserrors.ErrFilterTypeMismatch)
	}
	if e.Literal.Value.Compare(cs.Min) < 0 || e.Literal.Value.Compare(cs.Max) > 0 {
		return false, nil
	}
	return true, nil
}

// And is a logical conjunction.
type And struct{ L, R Expr }

func (a And) TestRow(r row.Row) (bool, error) {
	l, err := a.L.TestRow(r)
	if err != nil || !l {
		return false, err
	}
	return a.R.TestRow(r)
}

func (a And) TestStats(rowCount int64, stats row.Stats) (bool, error) {
	l, err := a.L.TestStats(rowCount, stats)
	if err != nil || !l {
		return false, err
	}
	return a.R.TestStats(rowCount, stats)
}

// Or is a logical disjunction.
type Or struct{ L, R Expr }

func (o Or) TestRow(r row.Row) (bool, error) {
	l, err := o.L.TestRow(r)
	if err != nil {
		return false, err
	}
	if l {
		return true, nil
	}
	return o.R.TestRow(r)
}

func (o Or) TestStats(rowCount int64, stats row.Stats) (bool, error) {
	l, err := o.L.TestStats(rowCount, stats)
	if err != nil {
		return false, err
	}
	if l {
		return true, nil
	}
	return o.R.TestStats(rowCount, stats)
}
