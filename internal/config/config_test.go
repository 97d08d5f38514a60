package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/resumatch/resumatch/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaults(t *testing.T) {
	Convey("Given a default config", t, func() {
		cfg := config.New(context.Background())

		Convey("Then it carries sane defaults", func() {
			So(cfg.Addr, ShouldEqual, ":8080")
			So(cfg.Embedder, ShouldEqual, "local")
			So(cfg.EmbeddingDim, ShouldEqual, 384)
			So(cfg.DefaultTopN, ShouldEqual, 10)
			So(cfg.TrainSeed, ShouldEqual, 42)
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given a clean environment", t, func() {
		os.Unsetenv("RESUMATCH_CONFIG")

		Convey("When loading with no overrides", func() {
			cfg, err := config.Load(context.Background())
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":8080")
		})

		Convey("When an env override is present", func() {
			So(os.Setenv("RESUMATCH_ADDR", ":9999"), ShouldBeNil)
			defer os.Unsetenv("RESUMATCH_ADDR")

			cfg, err := config.Load(context.Background())
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9999")
		})

		Convey("When the openai embedder is selected without a key", func() {
			So(os.Setenv("RESUMATCH_EMBEDDER", "openai"), ShouldBeNil)
			defer os.Unsetenv("RESUMATCH_EMBEDDER")

			_, err := config.Load(context.Background())
			So(err, ShouldNotBeNil)
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When an unknown embedder is configured", func() {
			So(os.Setenv("RESUMATCH_EMBEDDER", "sbert"), ShouldBeNil)
			defer os.Unsetenv("RESUMATCH_EMBEDDER")

			_, err := config.Load(context.Background())
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}
