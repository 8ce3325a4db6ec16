package grid_test

import (
	"testing"

	"courtlens/internal/domain/grid"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCellIndexBijection(t *testing.T) {
	Convey("Given a 16x17 grid", t, func() {
		const rows, cols = 16, 17

		Convey("Then CellIndex is a bijection onto [0, rows*cols)", func() {
			seen := make(map[int]bool)
			for r := 0; r < rows; r++ {
				for c := 0; c < cols; c++ {
					i := grid.CellIndex(r, c, cols)
					So(i, ShouldBeGreaterThanOrEqualTo, 0)
					So(i, ShouldBeLessThan, rows*cols)
					So(seen[i], ShouldBeFalse)
					seen[i] = true

					r2, c2 := grid.CellRowCol(i, cols)
					So(r2, ShouldEqual, r)
					So(c2, ShouldEqual, c)
				}
			}
			So(len(seen), ShouldEqual, rows*cols)
		})
	})
}

func TestGridCenters(t *testing.T) {
	Convey("Given a uniform court grid", t, func() {
		g, err := grid.NewUniform(-250, 250, 17, -47.5, 422.5, 16)
		So(err, ShouldBeNil)
		So(g.Rows(), ShouldEqual, 16)
		So(g.Cols(), ShouldEqual, 17)
		So(g.Cells(), ShouldEqual, 272)

		Convey("Then centers are edge midpoints", func() {
			xe, ye := g.XEdges(), g.YEdges()
			x, y := g.Center(0, 0)
			So(x, ShouldAlmostEqual, (xe[0]+xe[1])/2)
			So(y, ShouldAlmostEqual, (ye[0]+ye[1])/2)
		})

		Convey("And CenterAt recovers the same midpoints through the flat index", func() {
			for r := 0; r < g.Rows(); r++ {
				for c := 0; c < g.Cols(); c++ {
					wantX, wantY := g.Center(r, c)
					gotX, gotY := g.CenterAt(grid.CellIndex(r, c, g.Cols()))
					So(gotX, ShouldAlmostEqual, wantX)
					So(gotY, ShouldAlmostEqual, wantY)
				}
			}
		})

		Convey("And flat indices walk rows outer, columns inner", func() {
			// With cols=2 the first four indices cover row 0 then row 1.
			g2, err := grid.NewUniform(0, 2, 2, 0, 2, 2)
			So(err, ShouldBeNil)
			x0, y0 := g2.CenterAt(0)
			x1, y1 := g2.CenterAt(1)
			x2, y2 := g2.CenterAt(2)
			So(y0, ShouldAlmostEqual, y1) // same row
			So(x0, ShouldBeLessThan, x1)  // columns advance first
			So(y2, ShouldBeGreaterThan, y0)
			So(x2, ShouldAlmostEqual, x0) // new row restarts columns
		})
	})
}

func TestGridValidation(t *testing.T) {
	Convey("Given malformed edges", t, func() {
		Convey("Then construction fails", func() {
			_, err := grid.New([]float64{0}, []float64{0, 1})
			So(err, ShouldNotBeNil)

			_, err = grid.New([]float64{0, 1}, []float64{1, 1})
			So(err, ShouldNotBeNil)

			_, err = grid.NewUniform(1, 0, 4, 0, 1, 4)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a valid grid", t, func() {
		g, err := grid.NewUniform(0, 4, 4, 0, 4, 4)
		So(err, ShouldBeNil)

		Convey("Then Valid bounds the flat index", func() {
			So(g.Valid(0), ShouldBeTrue)
			So(g.Valid(15), ShouldBeTrue)
			So(g.Valid(16), ShouldBeFalse)
			So(g.Valid(-1), ShouldBeFalse)
		})

		Convey("And the cell diagonal is positive", func() {
			So(g.CellDiagonal(), ShouldBeGreaterThan, 0)
		})
	})
}
