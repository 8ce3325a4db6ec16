package tensor_test

import (
	"testing"

	"courtlens/internal/domain/tensor"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTimeCell(t *testing.T) {
	Convey("Given a 3-bin, 4-cell tensor", t, func() {
		tc, err := tensor.New([][]float64{
			{1, 0, 2, 0},
			{0, 3, 0, 1},
			{2, 2, 2, 2},
		})
		So(err, ShouldBeNil)
		So(tc.Times(), ShouldEqual, 3)
		So(tc.Cells(), ShouldEqual, 4)

		Convey("When reducing a single bin", func() {
			vals, err := tc.Reduce(tensor.AtBin(1))
			So(err, ShouldBeNil)
			So(vals, ShouldResemble, []float64{0, 3, 0, 1})
		})

		Convey("When reducing over all bins", func() {
			vals, err := tc.Reduce(tensor.AllTime())
			So(err, ShouldBeNil)
			So(vals, ShouldResemble, []float64{3, 5, 4, 3})
		})

		Convey("Then the all reduction is linear: it equals the sum of per-bin reductions", func() {
			all, err := tc.Reduce(tensor.AllTime())
			So(err, ShouldBeNil)

			sum := make([]float64, tc.Cells())
			for b := 0; b < tc.Times(); b++ {
				s, err := tc.Reduce(tensor.AtBin(b))
				So(err, ShouldBeNil)
				for i := range sum {
					sum[i] += s[i]
				}
			}
			So(all, ShouldResemble, sum)
		})

		Convey("And an out-of-range bin fails", func() {
			_, err := tc.Reduce(tensor.AtBin(3))
			So(err, ShouldNotBeNil)
		})

		Convey("And slices are copies, not aliases", func() {
			s, err := tc.Slice(0)
			So(err, ShouldBeNil)
			s[0] = 99
			again, _ := tc.Slice(0)
			So(again[0], ShouldEqual, 1)
		})
	})

	Convey("Given malformed input", t, func() {
		Convey("Then ragged rows are rejected", func() {
			_, err := tensor.New([][]float64{{1, 2}, {1}})
			So(err, ShouldNotBeNil)
		})
		Convey("And empty input is rejected", func() {
			_, err := tensor.New(nil)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestContributionResult(t *testing.T) {
	Convey("Given matching contribution and dominance tensors", t, func() {
		r, err := tensor.NewContributionResult(
			[][]float64{{1, 2}, {3, 4}},
			[][]float64{{0.5, -0.5}, {1, -1}},
		)
		So(err, ShouldBeNil)

		Convey("When reducing with a shared selector", func() {
			vals, dom, err := r.Reduce(tensor.AllTime())
			So(err, ShouldBeNil)
			So(vals, ShouldResemble, []float64{4, 6})
			So(dom, ShouldResemble, []float64{1.5, -1.5})
		})
	})

	Convey("Given tensors of different shapes", t, func() {
		_, err := tensor.NewContributionResult(
			[][]float64{{1, 2, 3}},
			[][]float64{{1, 2}},
		)
		So(err, ShouldNotBeNil)
	})
}

func TestTimeSelector(t *testing.T) {
	Convey("Given selector strings", t, func() {
		Convey("Then all and empty parse to the all selector", func() {
			for _, s := range []string{"all", ""} {
				sel, err := tensor.ParseTimeSelector(s)
				So(err, ShouldBeNil)
				So(sel.IsAll(), ShouldBeTrue)
				So(sel.String(), ShouldEqual, "all")
			}
		})

		Convey("And digits parse to a single bin", func() {
			sel, err := tensor.ParseTimeSelector("2")
			So(err, ShouldBeNil)
			So(sel.IsAll(), ShouldBeFalse)
			So(sel.Bin(), ShouldEqual, 2)
		})

		Convey("And junk fails", func() {
			for _, s := range []string{"-1", "q4", "1.5"} {
				_, err := tensor.ParseTimeSelector(s)
				So(err, ShouldNotBeNil)
			}
		})
	})
}
