// Package tensor holds the time-by-cell arrays returned by the analytics
// backend and the client-side time reduction applied before rendering.
package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// TimeCell is a dense array indexed [timeBin][spatialCell]. Cells follow
// the grid package's row-major flat indexing.
type TimeCell struct {
	data  [][]float64
	cells int
}

// New validates and wraps a [time][cell] array. Every time slice must have
// the same length and at least one slice must exist.
func New(data [][]float64) (TimeCell, error) {
	if len(data) == 0 {
		return TimeCell{}, fmt.Errorf("%w: no time slices", ErrBadShape)
	}
	cells := len(data[0])
	for t, row := range data {
		if len(row) != cells {
			return TimeCell{}, fmt.Errorf("%w: slice %d has %d cells, want %d", ErrBadShape, t, len(row), cells)
		}
	}
	cp := make([][]float64, len(data))
	for t, row := range data {
		cp[t] = append([]float64(nil), row...)
	}
	return TimeCell{data: cp, cells: cells}, nil
}

// Times returns the number of time bins.
func (tc TimeCell) Times() int { return len(tc.data) }

// Cells returns the number of spatial cells per time slice.
func (tc TimeCell) Cells() int { return tc.cells }

// Slice returns a copy of the time slice at bin t.
func (tc TimeCell) Slice(t int) ([]float64, error) {
	if t < 0 || t >= len(tc.data) {
		return nil, fmt.Errorf("%w: bin %d of %d", ErrBadTimeBin, t, len(tc.data))
	}
	return append([]float64(nil), tc.data[t]...), nil
}

// SumAll reduces over the time axis by elementwise addition.
func (tc TimeCell) SumAll() []float64 {
	out := make([]float64, tc.cells)
	for _, row := range tc.data {
		floats.Add(out, row)
	}
	return out
}

// Reduce applies the selector: a single bin selects that slice, all sums
// every slice elementwise.
func (tc TimeCell) Reduce(sel TimeSelector) ([]float64, error) {
	if sel.IsAll() {
		return tc.SumAll(), nil
	}
	return tc.Slice(sel.Bin())
}

// ContributionResult pairs the unsigned contribution tensor with the
// signed dominance tensor from one cluster analysis. Positive dominance
// attributes a cell to cluster A, negative to cluster B.
type ContributionResult struct {
	Contribution TimeCell
	Dominance    TimeCell
}

// NewContributionResult validates that both tensors agree on shape.
func NewContributionResult(contrib, dominance [][]float64) (ContributionResult, error) {
	c, err := New(contrib)
	if err != nil {
		return ContributionResult{}, fmt.Errorf("contribution: %w", err)
	}
	d, err := New(dominance)
	if err != nil {
		return ContributionResult{}, fmt.Errorf("dominance: %w", err)
	}
	if c.Times() != d.Times() || c.Cells() != d.Cells() {
		return ContributionResult{}, fmt.Errorf("%w: contribution %dx%d vs dominance %dx%d",
			ErrBadShape, c.Times(), c.Cells(), d.Times(), d.Cells())
	}
	return ContributionResult{Contribution: c, Dominance: d}, nil
}

// Reduce applies the same time selector to both tensors.
func (r ContributionResult) Reduce(sel TimeSelector) (vals, dom []float64, err error) {
	vals, err = r.Contribution.Reduce(sel)
	if err != nil {
		return nil, nil, err
	}
	dom, err = r.Dominance.Reduce(sel)
	if err != nil {
		return nil, nil, err
	}
	return vals, dom, nil
}
