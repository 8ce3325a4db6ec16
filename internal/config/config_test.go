package config_test

import (
	"context"
	"testing"

	"courtlens/internal/config"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaults(t *testing.T) {
	Convey("Given a default config", t, func() {
		cfg := config.New(context.Background())

		Convey("Then the court grid matches the backend binning", func() {
			So(cfg.GridXBins, ShouldEqual, 17)
			So(cfg.GridYBins, ShouldEqual, 16)
			So(cfg.TimeBins, ShouldEqual, 4)
		})

		Convey("And the render defaults are sane", func() {
			So(cfg.SizeMode, ShouldEqual, "dynamic")
			So(cfg.DominanceEpsilon, ShouldEqual, 1e-4)
			So(cfg.MaxDiameter, ShouldBeGreaterThan, 0)
		})

		Convey("And the service defaults are set", func() {
			So(cfg.Addr, ShouldEqual, ":9080")
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.ComputeTimeoutMS, ShouldBeGreaterThan, 0)
		})
	})
}
