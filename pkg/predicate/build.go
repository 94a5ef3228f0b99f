package predicate

import "tablestore/pkg/row"

// BuildFromRows constructs a disjunction-of-conjunctions predicate from a
// list of explicit partition rows: one Equal per field, And-combined per
// row, Or-combined across rows. Rows of arity zero (unpartitioned tables)
// yield no predicate.
func BuildFromRows(rows []row.Row) Expr {
	var acc Expr
	for _, r := range rows {
		if len(r) == 0 {
			continue
		}
		conj := rowConjunction(r)
		if conj == nil {
			continue
		}
		if acc == nil {
			acc = conj
		} else {
			acc = Or{L: acc, R: conj}
		}
	}
	return acc
}

func rowConjunction(r row.Row) Expr {
	var conj Expr
	for i, f := range r {
		eq := Equal{FieldIdx: i, Literal: Literal{Value: f}}
		if conj == nil {
			conj = eq
		} else {
			conj = And{L: conj, R: eq}
		}
	}
	return conj
}
