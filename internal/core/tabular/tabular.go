// Package tabular provides pure in-memory table operations for the cleaning stage
package tabular

import (
	"slices"

	perr "telescrape/internal/platform/errors"
)

// Table is an in-memory dataset: a header and rows of equal width
type Table struct {
	Header []string
	Rows   [][]string
}

// Clone returns a deep copy so callers can mutate freely without aliasing
func (t Table) Clone() Table {
	out := Table{
		Header: append([]string(nil), t.Header...),
		Rows:   make([][]string, 0, len(t.Rows)),
	}
	for _, r := range t.Rows {
		out.Rows = append(out.Rows, append([]string(nil), r...))
	}
	return out
}

// ColumnIndex returns the position of name in the header, -1 when absent
func (t Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Merge concatenates tables in input order into a fresh table.
// Returns NoDataToMerge when no tables are given and SchemaMismatch
// when headers differ; rows concatenate positionally, so a reordered
// header would silently misalign columns
func Merge(tables ...Table) (Table, error) {
	if len(tables) == 0 {
		return Table{}, perr.NoDataToMergef("no datasets to merge")
	}
	out := tables[0].Clone()
	for _, t := range tables[1:] {
		if !slices.Equal(t.Header, out.Header) {
			return Table{}, perr.SchemaMismatchf("merge: header %v does not match %v", t.Header, out.Header)
		}
		for _, r := range t.Rows {
			out.Rows = append(out.Rows, append([]string(nil), r...))
		}
	}
	return out, nil
}

// KeyFunc derives a dedup key from a row
type KeyFunc func(row []string) string

// DedupBy keeps the first occurrence per key, preserving row order
// applying it twice yields the same result
func DedupBy(t Table, key KeyFunc) Table {
	out := Table{
		Header: append([]string(nil), t.Header...),
		Rows:   make([][]string, 0, len(t.Rows)),
	}
	seen := make(map[string]struct{}, len(t.Rows))
	for _, r := range t.Rows {
		k := key(r)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out.Rows = append(out.Rows, append([]string(nil), r...))
	}
	return out
}

// WholeRowKey joins every cell with a unit separator, useful for full-tuple dedup
func WholeRowKey(row []string) string {
	const sep = "\x1f"
	k := ""
	for i, c := range row {
		if i > 0 {
			k += sep
		}
		k += c
	}
	return k
}

// ColumnKey builds a KeyFunc over a single column index
func ColumnKey(idx int) KeyFunc {
	return func(row []string) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return row[idx]
	}
}
