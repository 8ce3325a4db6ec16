package compute_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"courtlens/internal/compute"
	"courtlens/internal/domain/model"

	. "github.com/smartystreets/goconvey/convey"
)

func fastEngine(opts ...compute.EngineOption) *compute.InMemoryEngine {
	base := []compute.EngineOption{
		compute.WithLatencyRange(0, time.Millisecond),
		compute.WithGames(8),
		compute.WithShape(4, 4, 2),
	}
	return compute.NewInMemoryEngine(append(base, opts...)...)
}

func TestEngineAggregate(t *testing.T) {
	Convey("Given a deterministic engine", t, func() {
		e := fastEngine()
		ctx := context.Background()

		Convey("When aggregating attempts over a cluster", func() {
			res, err := e.Aggregate(ctx, compute.AggregateRequest{
				Indices: []int{0, 1, 2},
				Channel: model.ChannelAttempts,
			})
			So(err, ShouldBeNil)

			Convey("Then the array covers the whole grid", func() {
				So(len(res.Values), ShouldEqual, e.Grid().Cells())
			})

			Convey("And the all-time request equals the sum of per-bin requests", func() {
				sum := make([]float64, len(res.Values))
				for b := 0; b < 2; b++ {
					bin := b
					r, err := e.Aggregate(ctx, compute.AggregateRequest{
						Indices: []int{0, 1, 2},
						Channel: model.ChannelAttempts,
						TimeBin: &bin,
					})
					So(err, ShouldBeNil)
					for i := range sum {
						sum[i] += r.Values[i]
					}
				}
				So(res.Values, ShouldResemble, sum)
			})
		})

		Convey("When the time bin is out of range", func() {
			bad := 7
			_, err := e.Aggregate(ctx, compute.AggregateRequest{
				Indices: []int{0},
				Channel: model.ChannelAttempts,
				TimeBin: &bad,
			})
			So(err, ShouldNotBeNil)
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := e.Aggregate(cctx, compute.AggregateRequest{
				Indices: []int{0},
				Channel: model.ChannelAttempts,
			})
			So(err, ShouldNotBeNil)
		})

		Convey("Then misses equal attempts minus makes per cell", func() {
			att, _ := e.Aggregate(ctx, compute.AggregateRequest{Indices: []int{0, 1}, Channel: model.ChannelAttempts})
			mk, _ := e.Aggregate(ctx, compute.AggregateRequest{Indices: []int{0, 1}, Channel: model.ChannelMakes})
			ms, _ := e.Aggregate(ctx, compute.AggregateRequest{Indices: []int{0, 1}, Channel: model.ChannelMisses})
			for i := range att.Values {
				So(ms.Values[i], ShouldAlmostEqual, att.Values[i]-mk.Values[i])
			}
		})
	})
}

func TestEngineConcurrentCalls(t *testing.T) {
	Convey("Given one engine shared by many goroutines", t, func() {
		e := fastEngine()

		Convey("When aggregates and analyses run in parallel", func() {
			var wg sync.WaitGroup
			errs := make(chan error, 24)
			for g := 0; g < 4; g++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					ctx := context.Background()
					for i := 0; i < 5; i++ {
						if _, err := e.Aggregate(ctx, compute.AggregateRequest{
							Indices: []int{0, 1, 2},
							Channel: model.ChannelAttempts,
						}); err != nil {
							errs <- err
						}
					}
					if _, err := e.AnalyzeClusters(ctx, compute.ContributionRequest{
						ClusterA: []int{1, 3}, ClusterB: []int{0, 2}, ReduceChannels: true,
					}); err != nil {
						errs <- err
					}
				}()
			}
			wg.Wait()
			close(errs)

			Convey("Then every call succeeds", func() {
				for err := range errs {
					So(err, ShouldBeNil)
				}
			})
		})
	})
}

func TestEnginePercent(t *testing.T) {
	Convey("Given a deterministic engine", t, func() {
		e := fastEngine()
		ctx := context.Background()

		Convey("When requesting FG%", func() {
			res, err := e.AggregatePercent(ctx, compute.PercentRequest{Indices: []int{0, 1, 2, 3}})
			So(err, ShouldBeNil)

			Convey("Then probabilities stay in [0,1] and zero-attempt cells are zero", func() {
				for i, v := range res.Values {
					So(v, ShouldBeGreaterThanOrEqualTo, 0)
					So(v, ShouldBeLessThanOrEqualTo, 1)
					if res.Attempts[i] == 0 {
						So(v, ShouldEqual, 0)
					}
				}
			})
		})
	})
}

func TestEngineAnalyzeClusters(t *testing.T) {
	Convey("Given a deterministic engine", t, func() {
		e := fastEngine()
		ctx := context.Background()

		Convey("When analyzing two disjoint clusters", func() {
			resp, err := e.AnalyzeClusters(ctx, compute.ContributionRequest{
				ClusterA:       []int{1, 3},
				ClusterB:       []int{0, 2},
				ReduceChannels: true,
			})
			So(err, ShouldBeNil)

			Convey("Then tensors are [time][cell] with grid-sized slices", func() {
				So(len(resp.Contribution), ShouldEqual, 2)
				So(len(resp.Dominance), ShouldEqual, 2)
				for t := range resp.Contribution {
					So(len(resp.Contribution[t]), ShouldEqual, e.Grid().Cells())
					So(len(resp.Dominance[t]), ShouldEqual, e.Grid().Cells())
				}
			})

			Convey("And contribution is the dominance magnitude", func() {
				for t := range resp.Contribution {
					for i := range resp.Contribution[t] {
						So(resp.Contribution[t][i], ShouldBeGreaterThanOrEqualTo, 0)
						if resp.Dominance[t][i] < 0 {
							So(resp.Contribution[t][i], ShouldAlmostEqual, -resp.Dominance[t][i])
						} else {
							So(resp.Contribution[t][i], ShouldAlmostEqual, resp.Dominance[t][i])
						}
					}
				}
			})

			Convey("And swapping the clusters flips the dominance sign", func() {
				swapped, err := e.AnalyzeClusters(ctx, compute.ContributionRequest{
					ClusterA:       []int{0, 2},
					ClusterB:       []int{1, 3},
					ReduceChannels: true,
				})
				So(err, ShouldBeNil)
				for t := range resp.Dominance {
					for i := range resp.Dominance[t] {
						So(swapped.Dominance[t][i], ShouldAlmostEqual, -resp.Dominance[t][i])
					}
				}
			})
		})

		Convey("When a cluster is empty", func() {
			_, err := e.AnalyzeClusters(ctx, compute.ContributionRequest{ClusterA: nil, ClusterB: []int{1}})
			So(err, ShouldEqual, compute.ErrEmptyCluster)
		})
	})
}

func TestEngineInitialize(t *testing.T) {
	Convey("Given an engine with tagged observations", t, func() {
		e := fastEngine(compute.WithTaggedObservations())
		ctx := context.Background()

		Convey("When initializing", func() {
			res, err := e.Initialize(ctx, compute.InitializeRequest{Seasons: []int{2022}})
			So(err, ShouldBeNil)

			Convey("Then every point carries a decoded season tag", func() {
				So(len(res.Points), ShouldEqual, 8)
				for _, p := range res.Points {
					So(p.Obs.Tagged(), ShouldBeTrue)
				}
			})

			Convey("And the grid metadata matches the engine grid", func() {
				So(res.XEdges, ShouldResemble, e.Grid().XEdges())
				So(res.YEdges, ShouldResemble, e.Grid().YEdges())
				So(res.TimeBins, ShouldEqual, 2)
			})
		})

		Convey("When listing players", func() {
			players, err := e.Players(ctx, []int{2022})
			So(err, ShouldBeNil)
			So(len(players), ShouldBeGreaterThan, 0)
		})
	})

	Convey("Given two engines with the same seed", t, func() {
		a := fastEngine(compute.WithSeed(7))
		b := fastEngine(compute.WithSeed(7))
		ctx := context.Background()

		Convey("Then aggregation results are identical", func() {
			ra, err := a.Aggregate(ctx, compute.AggregateRequest{Indices: []int{0, 1}, Channel: model.ChannelPoints})
			So(err, ShouldBeNil)
			rb, err := b.Aggregate(ctx, compute.AggregateRequest{Indices: []int{0, 1}, Channel: model.ChannelPoints})
			So(err, ShouldBeNil)
			So(ra.Values, ShouldResemble, rb.Values)
		})
	})
}
