package app_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"courtlens/internal/app"
	"courtlens/internal/compute"
	"courtlens/internal/domain/model"
	"courtlens/internal/domain/render"
	"courtlens/internal/domain/tensor"
	"courtlens/pkg/logger"

	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

// countingClient wraps a Client and counts boundary calls.
type countingClient struct {
	compute.Client
	aggregates int64
	analyses   int64
	analyzeErr error
}

func (c *countingClient) Aggregate(ctx context.Context, req compute.AggregateRequest) (compute.AggregateResult, error) {
	atomic.AddInt64(&c.aggregates, 1)
	return c.Client.Aggregate(ctx, req)
}

func (c *countingClient) AnalyzeClusters(ctx context.Context, req compute.ContributionRequest) (compute.ContributionResponse, error) {
	atomic.AddInt64(&c.analyses, 1)
	if c.analyzeErr != nil {
		return compute.ContributionResponse{}, c.analyzeErr
	}
	return c.Client.AnalyzeClusters(ctx, req)
}

func newService(t *testing.T, opts ...app.Option) (*app.Service, *countingClient) {
	t.Helper()
	engine := compute.NewInMemoryEngine(
		compute.WithLatencyRange(0, time.Millisecond),
		compute.WithGames(8),
		compute.WithShape(4, 4, 2),
	)
	cc := &countingClient{Client: engine}
	base := []app.Option{app.WithClient(cc)}
	svc := app.New(append(base, opts...)...)
	if _, err := svc.Initialize(context.Background(), compute.InitializeRequest{}); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return svc, cc
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return false
}

func TestSelectionFlow(t *testing.T) {
	Convey("Given an initialized session", t, func() {
		svc, cc := newService(t)
		ctx := context.Background()

		Convey("When the first cluster is selected", func() {
			view := svc.Select(ctx, []int{1, 3})
			So(view.State, ShouldEqual, "filling_a")
			So(view.ClusterA, ShouldResemble, []int{1, 3})

			Convey("Then no contribution fetch is issued yet", func() {
				time.Sleep(10 * time.Millisecond)
				So(atomic.LoadInt64(&cc.analyses), ShouldEqual, 0)
				So(svc.HasContribution(), ShouldBeFalse)
			})

			Convey("When the second cluster completes the pair", func() {
				view := svc.Select(ctx, []int{0, 2})
				So(view.State, ShouldEqual, "complete")
				So(view.ClusterB, ShouldResemble, []int{0, 2})

				Convey("Then a contribution result is applied", func() {
					So(waitFor(svc.HasContribution), ShouldBeTrue)
					So(atomic.LoadInt64(&cc.analyses), ShouldEqual, 1)

					cells, err := svc.Cells(ctx)
					So(err, ShouldBeNil)
					So(len(cells), ShouldEqual, 16)
				})

				Convey("When a third selection arrives", func() {
					So(waitFor(svc.HasContribution), ShouldBeTrue)
					view := svc.Select(ctx, []int{5})

					Convey("Then the cycle restarts and the display clears", func() {
						So(view.State, ShouldEqual, "filling_a")
						So(view.ClusterA, ShouldResemble, []int{5})
						So(view.ClusterB, ShouldBeEmpty)
						So(svc.HasContribution(), ShouldBeFalse)

						cells, err := svc.Cells(ctx)
						So(err, ShouldBeNil)
						So(cells, ShouldBeEmpty)
					})
				})
			})
		})

		Convey("When an empty selection arrives", func() {
			before := svc.Selection(ctx)
			view := svc.Select(ctx, nil)
			So(view, ShouldResemble, before)
		})

		Convey("When the selection is reset", func() {
			svc.Select(ctx, []int{1})
			svc.Select(ctx, []int{2})
			So(waitFor(svc.HasContribution), ShouldBeTrue)

			view := svc.ResetSelection(ctx)
			So(view.State, ShouldEqual, "empty")
			So(svc.HasContribution(), ShouldBeFalse)
		})
	})
}

func TestStaleResponseDiscarded(t *testing.T) {
	Convey("Given a session with a slow backend", t, func() {
		engine := compute.NewInMemoryEngine(
			compute.WithLatencyRange(40*time.Millisecond, 80*time.Millisecond),
			compute.WithGames(8),
			compute.WithShape(4, 4, 2),
		)
		cc := &countingClient{Client: engine}
		svc := app.New(app.WithClient(cc))
		_, err := svc.Initialize(context.Background(), compute.InitializeRequest{})
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("When the selection changes while a fetch is in flight", func() {
			svc.Select(ctx, []int{1, 3})
			svc.Select(ctx, []int{0, 2}) // launches the fetch
			svc.Select(ctx, []int{5})    // supersedes it before completion

			Convey("Then the superseded result never lands", func() {
				time.Sleep(150 * time.Millisecond)
				So(svc.HasContribution(), ShouldBeFalse)
				cells, err := svc.Cells(ctx)
				So(err, ShouldBeNil)
				So(cells, ShouldBeEmpty)
			})
		})
	})
}

func TestAggregate(t *testing.T) {
	Convey("Given an initialized session", t, func() {
		svc, cc := newService(t)
		ctx := context.Background()

		Convey("When aggregating an empty index set", func() {
			vals, err := svc.Aggregate(ctx, nil, model.ChannelAttempts, nil)

			Convey("Then an empty array returns without a remote call", func() {
				So(err, ShouldBeNil)
				So(vals, ShouldBeEmpty)
				So(atomic.LoadInt64(&cc.aggregates), ShouldEqual, 0)
			})
		})

		Convey("When aggregating a real cluster", func() {
			vals, err := svc.Aggregate(ctx, []int{0, 1, 2}, model.ChannelMakes, nil)
			So(err, ShouldBeNil)
			So(len(vals), ShouldEqual, 16)
			So(atomic.LoadInt64(&cc.aggregates), ShouldEqual, 1)
		})

		Convey("When the channel is invalid", func() {
			_, err := svc.Aggregate(ctx, []int{0}, model.Channel(9), nil)
			So(errors.Is(err, app.ErrBadChannel), ShouldBeTrue)
		})

		Convey("When aggregating percentages", func() {
			vals, attempts, err := svc.AggregatePercent(ctx, []int{0, 1}, false, nil)
			So(err, ShouldBeNil)
			So(len(vals), ShouldEqual, 16)
			So(len(attempts), ShouldEqual, 16)
		})
	})
}

func TestRemoteFailureBecomesNotice(t *testing.T) {
	Convey("Given a session whose analysis backend fails", t, func() {
		svc, cc := newService(t)
		cc.analyzeErr = errors.New("backend unavailable")
		ctx := context.Background()

		Convey("When both clusters are selected", func() {
			svc.Select(ctx, []int{1, 3})
			svc.Select(ctx, []int{0, 2})

			Convey("Then the failure degrades to a notice, not a crash", func() {
				So(waitFor(func() bool { return len(svc.Notices(ctx)) > 0 }), ShouldBeTrue)
				So(svc.HasContribution(), ShouldBeFalse)

				notices := svc.Notices(ctx)
				So(notices[0].Kind, ShouldEqual, "contribution")
				So(notices[0].Message, ShouldContainSubstring, "backend unavailable")

				Convey("And the notice can be dismissed", func() {
					So(svc.DismissNotice(ctx, notices[0].ID), ShouldBeTrue)
					So(svc.Notices(ctx), ShouldBeEmpty)
					So(svc.DismissNotice(ctx, "nope"), ShouldBeFalse)
				})
			})
		})
	})
}

func TestTimeSelectorReduction(t *testing.T) {
	Convey("Given a session with an applied contribution", t, func() {
		svc, cc := newService(t)
		ctx := context.Background()
		svc.Select(ctx, []int{1, 3})
		svc.Select(ctx, []int{0, 2})
		So(waitFor(svc.HasContribution), ShouldBeTrue)

		allCells, err := svc.Cells(ctx)
		So(err, ShouldBeNil)

		Convey("When switching to a single time bin", func() {
			So(svc.SetTimeSelector(ctx, tensor.AtBin(1)), ShouldBeNil)
			binCells, err := svc.Cells(ctx)
			So(err, ShouldBeNil)
			So(len(binCells), ShouldEqual, len(allCells))

			Convey("Then no refetch happened", func() {
				So(atomic.LoadInt64(&cc.analyses), ShouldEqual, 1)
			})
		})

		Convey("When the bin is out of range", func() {
			So(svc.SetTimeSelector(ctx, tensor.AtBin(9)), ShouldNotBeNil)
		})

		Convey("When reducing a single bin for one call", func() {
			binCells, err := svc.CellsAt(ctx, tensor.AtBin(1))
			So(err, ShouldBeNil)
			So(len(binCells), ShouldEqual, len(allCells))

			Convey("Then the stored selector is untouched", func() {
				So(svc.TimeSelector(ctx).IsAll(), ShouldBeTrue)
			})

			Convey("And an out-of-range bin is rejected", func() {
				_, err := svc.CellsAt(ctx, tensor.AtBin(9))
				So(err, ShouldWrap, tensor.ErrBadTimeBin)
			})
		})

		Convey("Then every cell carries a valid color class", func() {
			for _, c := range allCells {
				ok := c.Color == render.ColorNeutral ||
					c.Color == render.ColorClusterA ||
					c.Color == render.ColorClusterB
				So(ok, ShouldBeTrue)
			}
		})
	})
}

func TestStats(t *testing.T) {
	Convey("Given an initialized session", t, func() {
		svc, _ := newService(t)
		ctx := context.Background()
		svc.Select(ctx, []int{1, 2})

		stats := svc.GetStats()
		So(stats["ready"], ShouldEqual, true)
		So(stats["selectionState"], ShouldEqual, "filling_a")
		So(stats["clusterASize"], ShouldEqual, 2)
		So(stats["points"], ShouldEqual, 8)
	})
}
