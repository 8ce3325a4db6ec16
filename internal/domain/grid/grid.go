// Package grid defines the spatial binning of the court and the flat
// indexing convention shared by every consumer of flattened spatial arrays.
//
// The convention is row-major: flat index i = row*cols + col, rows ordered
// by y-edges, columns by x-edges. Any consumer iterating a flattened array
// must iterate rows outer, columns inner.
package grid

import (
	"fmt"
	"math"
)

// CellIndex maps a (row, col) pair to the flat row-major index.
func CellIndex(row, col, cols int) int {
	return row*cols + col
}

// CellRowCol is the inverse of CellIndex for a grid with cols columns.
func CellRowCol(i, cols int) (row, col int) {
	return i / cols, i % cols
}

// Grid describes the court binning by its ordered cell edges.
type Grid struct {
	xEdges []float64
	yEdges []float64
}

// New builds a Grid from explicit edge slices. Each slice needs at least
// two strictly increasing values.
func New(xEdges, yEdges []float64) (Grid, error) {
	if err := checkEdges("x", xEdges); err != nil {
		return Grid{}, err
	}
	if err := checkEdges("y", yEdges); err != nil {
		return Grid{}, err
	}
	g := Grid{
		xEdges: append([]float64(nil), xEdges...),
		yEdges: append([]float64(nil), yEdges...),
	}
	return g, nil
}

// NewUniform builds a Grid with evenly spaced edges, xBins columns over
// [xMin, xMax] and yBins rows over [yMin, yMax].
func NewUniform(xMin, xMax float64, xBins int, yMin, yMax float64, yBins int) (Grid, error) {
	if xBins <= 0 || yBins <= 0 {
		return Grid{}, fmt.Errorf("%w: bin counts must be positive", ErrBadEdges)
	}
	if xMax <= xMin || yMax <= yMin {
		return Grid{}, fmt.Errorf("%w: bounds must be increasing", ErrBadEdges)
	}
	g := Grid{
		xEdges: linspace(xMin, xMax, xBins+1),
		yEdges: linspace(yMin, yMax, yBins+1),
	}
	return g, nil
}

func checkEdges(axis string, edges []float64) error {
	if len(edges) < 2 {
		return fmt.Errorf("%w: %s edges need at least two values", ErrBadEdges, axis)
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return fmt.Errorf("%w: %s edges must be strictly increasing", ErrBadEdges, axis)
		}
	}
	return nil
}

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// Rows returns the number of grid rows (y bins); zero for the zero Grid.
func (g Grid) Rows() int { return max(len(g.yEdges)-1, 0) }

// Cols returns the number of grid columns (x bins); zero for the zero Grid.
func (g Grid) Cols() int { return max(len(g.xEdges)-1, 0) }

// Cells returns rows*cols, the length of any flattened spatial array.
func (g Grid) Cells() int { return g.Rows() * g.Cols() }

// XEdges returns a copy of the x cell boundaries.
func (g Grid) XEdges() []float64 { return append([]float64(nil), g.xEdges...) }

// YEdges returns a copy of the y cell boundaries.
func (g Grid) YEdges() []float64 { return append([]float64(nil), g.yEdges...) }

// Center returns the midpoint of cell (row, col).
func (g Grid) Center(row, col int) (x, y float64) {
	x = (g.xEdges[col] + g.xEdges[col+1]) / 2
	y = (g.yEdges[row] + g.yEdges[row+1]) / 2
	return x, y
}

// CenterAt returns the midpoint of the cell with flat index i.
func (g Grid) CenterAt(i int) (x, y float64) {
	row, col := CellRowCol(i, g.Cols())
	return g.Center(row, col)
}

// CellDiagonal returns the diagonal length of cell (0, 0). Fixed-max size
// scaling uses it as the upper bound for a mark that fills its cell.
func (g Grid) CellDiagonal() float64 {
	dx := g.xEdges[1] - g.xEdges[0]
	dy := g.yEdges[1] - g.yEdges[0]
	return math.Hypot(dx, dy)
}

// Valid reports whether i is a flat index inside the grid.
func (g Grid) Valid(i int) bool {
	return i >= 0 && i < g.Cells()
}
