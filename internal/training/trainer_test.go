package training_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/resumatch/resumatch/internal/domain/model"
	"github.com/resumatch/resumatch/internal/domain/neural"
	"github.com/resumatch/resumatch/internal/training"
	"github.com/resumatch/resumatch/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// twoCategoryFixture builds a small catalog whose embeddings are linearly
// separable by category, so a short training run has signal to learn from.
func twoCategoryFixture(dim, perCategory int) ([]model.JobPosting, [][]float32) {
	var jobs []model.JobPosting
	var embeddings [][]float32
	for i := 0; i < perCategory; i++ {
		jobs = append(jobs, model.JobPosting{ID: jobID("eng", i), Title: "Engineer", Category: "Engineering"})
		vec := make([]float32, dim)
		vec[0] = 1
		vec[1] = float32(i) * 0.01
		embeddings = append(embeddings, vec)

		jobs = append(jobs, model.JobPosting{ID: jobID("data", i), Title: "Analyst", Category: "Data"})
		vec = make([]float32, dim)
		vec[dim-1] = 1
		vec[dim-2] = float32(i) * 0.01
		embeddings = append(embeddings, vec)
	}
	return jobs, embeddings
}

func jobID(prefix string, i int) string {
	return prefix + "-" + string(rune('a'+i))
}

func quickConfig() training.Config {
	return training.Config{
		SampleSize:   200,
		Epochs:       3,
		BatchSize:    16,
		LearningRate: 0.01,
		Seed:         42,
	}
}

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestRun(t *testing.T) {
	Convey("Given a separable two-category catalog", t, func() {
		ctx := context.Background()
		log := logger.Get()
		jobs, embeddings := twoCategoryFixture(8, 6)

		res, err := training.Run(ctx, log, jobs, embeddings, quickConfig())
		So(err, ShouldBeNil)
		So(res.Matcher, ShouldNotBeNil)
		So(res.Classifier, ShouldNotBeNil)

		Convey("Then the label encoder covers both categories", func() {
			So(res.Encoder.Classes(), ShouldResemble, []string{"Data", "Engineering"})
		})

		Convey("Then the matcher prefers same-category pairs", func() {
			same, err := res.Matcher.Score(embeddings[0], embeddings[2])
			So(err, ShouldBeNil)
			cross, err := res.Matcher.Score(embeddings[0], embeddings[1])
			So(err, ShouldBeNil)
			So(same, ShouldBeGreaterThan, cross)
		})

		Convey("Then the classifier recovers the category of a training row", func() {
			probs, err := res.Classifier.Predict(embeddings[0])
			So(err, ShouldBeNil)
			idx, conf := neural.ArgMax(probs)
			category, err := res.Encoder.Decode(idx)
			So(err, ShouldBeNil)
			So(category, ShouldEqual, "Engineering")
			So(conf, ShouldBeGreaterThan, 0.5)
		})

		Convey("Then the same seed reproduces the same models", func() {
			again, err := training.Run(ctx, log, jobs, embeddings, quickConfig())
			So(err, ShouldBeNil)
			a, err := res.Matcher.Score(embeddings[0], embeddings[3])
			So(err, ShouldBeNil)
			b, err := again.Matcher.Score(embeddings[0], embeddings[3])
			So(err, ShouldBeNil)
			So(b, ShouldEqual, a)
		})
	})

	Convey("Given catalogs that cannot be trained on", t, func() {
		ctx := context.Background()
		log := logger.Get()

		Convey("A single job is rejected", func() {
			jobs := []model.JobPosting{{ID: "j1", Category: "Eng"}}
			_, err := training.Run(ctx, log, jobs, [][]float32{{1, 0}}, quickConfig())
			So(errors.Is(err, training.ErrInsufficientData), ShouldBeTrue)
		})

		Convey("Mismatched jobs and embeddings are rejected", func() {
			jobs := []model.JobPosting{{ID: "j1", Category: "Eng"}, {ID: "j2", Category: "Data"}}
			_, err := training.Run(ctx, log, jobs, [][]float32{{1, 0}}, quickConfig())
			So(errors.Is(err, training.ErrInsufficientData), ShouldBeTrue)
		})
	})

	Convey("Given a catalog with one category", t, func() {
		ctx := context.Background()
		log := logger.Get()
		jobs := []model.JobPosting{
			{ID: "j1", Category: "Eng"},
			{ID: "j2", Category: "Eng"},
			{ID: "j3", Category: "Eng"},
		}
		embeddings := [][]float32{{1, 0, 0, 0}, {0.9, 0.1, 0, 0}, {0.8, 0.2, 0, 0}}

		Convey("Then training still succeeds on positive pairs only", func() {
			cfg := quickConfig()
			cfg.SampleSize = 50
			res, err := training.Run(ctx, log, jobs, embeddings, cfg)
			So(err, ShouldBeNil)
			So(res.Encoder.Len(), ShouldEqual, 1)
		})
	})
}

func TestArtifacts(t *testing.T) {
	Convey("Given a trained result", t, func() {
		ctx := context.Background()
		log := logger.Get()
		jobs, embeddings := twoCategoryFixture(8, 4)
		res, err := training.Run(ctx, log, jobs, embeddings, quickConfig())
		So(err, ShouldBeNil)

		dir := filepath.Join(t.TempDir(), "models")
		arts := training.NewArtifacts(dir)

		Convey("Then artifacts start out missing", func() {
			So(arts.Exist(), ShouldBeFalse)
			_, err := arts.Load(8)
			So(errors.Is(err, training.ErrArtifactsMissing), ShouldBeTrue)
		})

		Convey("When saving and loading", func() {
			So(arts.Save(res), ShouldBeNil)
			So(arts.Exist(), ShouldBeTrue)

			loaded, err := arts.Load(8)
			So(err, ShouldBeNil)

			Convey("Then the restored models score identically", func() {
				want, err := res.Matcher.Score(embeddings[0], embeddings[2])
				So(err, ShouldBeNil)
				got, err := loaded.Matcher.Score(embeddings[0], embeddings[2])
				So(err, ShouldBeNil)
				So(got, ShouldEqual, want)
				So(loaded.Encoder.Classes(), ShouldResemble, res.Encoder.Classes())
			})

			Convey("Then a dimension mismatch is caught on load", func() {
				_, err := arts.Load(16)
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When one artifact file is missing", func() {
			So(arts.Save(res), ShouldBeNil)
			So(os.Remove(filepath.Join(dir, "classifier.gob")), ShouldBeNil)

			Convey("Then the set counts as missing", func() {
				So(arts.Exist(), ShouldBeFalse)
			})
		})
	})
}
