package catalog_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/resumatch/resumatch/internal/adapters/catalog"
	. "github.com/smartystreets/goconvey/convey"
)

const sampleCSV = `job_id,job_title,job_description,job_skill_set,category
j1,Backend Engineer,Build APIs in Go,go sql docker,Engineering
j2,Data Analyst,Analyze product data,sql python tableau,Data
j3,Frontend Engineer,Build web interfaces,typescript react,Engineering
`

func TestParse(t *testing.T) {
	Convey("Given a well-formed catalog CSV", t, func() {
		store, err := catalog.Parse(context.Background(), strings.NewReader(sampleCSV))
		So(err, ShouldBeNil)

		Convey("Then all rows are loaded in order", func() {
			So(store.Len(), ShouldEqual, 3)
			jobs := store.Jobs()
			So(jobs[0].ID, ShouldEqual, "j1")
			So(jobs[1].ID, ShouldEqual, "j2")
			So(jobs[2].ID, ShouldEqual, "j3")
		})

		Convey("Then categories are distinct and sorted", func() {
			So(store.Categories(), ShouldResemble, []string{"Data", "Engineering"})
		})

		Convey("Then combined text is title, then description, then skills", func() {
			So(store.Jobs()[0].CombinedText, ShouldEqual, "Backend Engineer Build APIs in Go go sql docker")
			texts := store.CombinedTexts()
			So(len(texts), ShouldEqual, 3)
			So(texts[0], ShouldEqual, store.Jobs()[0].CombinedText)
		})

		Convey("Then lookup by ID works", func() {
			job, err := store.Get("j2")
			So(err, ShouldBeNil)
			So(job.Title, ShouldEqual, "Data Analyst")

			_, err = store.Get("missing")
			So(errors.Is(err, catalog.ErrNotFound), ShouldBeTrue)
		})
	})

	Convey("Given a CSV with a precomputed combined_text column", t, func() {
		csv := "job_id,job_title,job_description,job_skill_set,category,combined_text\n" +
			"j1,Engineer,desc,skills,Eng,already combined\n"
		store, err := catalog.Parse(context.Background(), strings.NewReader(csv))
		So(err, ShouldBeNil)

		Convey("Then the precomputed text is kept as-is", func() {
			So(store.Jobs()[0].CombinedText, ShouldEqual, "already combined")
		})
	})

	Convey("Given malformed catalogs", t, func() {
		Convey("A missing required column is rejected", func() {
			csv := "job_id,job_title,job_description\nj1,t,d\n"
			_, err := catalog.Parse(context.Background(), strings.NewReader(csv))
			So(errors.Is(err, catalog.ErrBadCatalog), ShouldBeTrue)
		})

		Convey("An empty job_id is rejected", func() {
			csv := "job_id,job_title,job_description,job_skill_set,category\n,t,d,s,c\n"
			_, err := catalog.Parse(context.Background(), strings.NewReader(csv))
			So(errors.Is(err, catalog.ErrBadCatalog), ShouldBeTrue)
		})

		Convey("A duplicate job_id is rejected", func() {
			csv := "job_id,job_title,job_description,job_skill_set,category\n" +
				"j1,t,d,s,c\nj1,t2,d2,s2,c2\n"
			_, err := catalog.Parse(context.Background(), strings.NewReader(csv))
			So(errors.Is(err, catalog.ErrBadCatalog), ShouldBeTrue)
		})

		Convey("An empty file is rejected", func() {
			_, err := catalog.Parse(context.Background(), strings.NewReader(""))
			So(errors.Is(err, catalog.ErrBadCatalog), ShouldBeTrue)
		})

		Convey("A header-only file is rejected", func() {
			csv := "job_id,job_title,job_description,job_skill_set,category\n"
			_, err := catalog.Parse(context.Background(), strings.NewReader(csv))
			So(errors.Is(err, catalog.ErrBadCatalog), ShouldBeTrue)
		})
	})
}

func TestEmbeddings(t *testing.T) {
	Convey("Given a loaded catalog", t, func() {
		store, err := catalog.Parse(context.Background(), strings.NewReader(sampleCSV))
		So(err, ShouldBeNil)

		Convey("Then embeddings start out nil", func() {
			So(store.Embeddings(), ShouldBeNil)
		})

		Convey("When attaching one embedding per job", func() {
			vecs := [][]float32{{1, 0}, {0, 1}, {1, 1}}
			So(store.SetEmbeddings(vecs), ShouldBeNil)

			Convey("Then they are returned in catalog order", func() {
				So(store.Embeddings(), ShouldResemble, vecs)
			})
		})

		Convey("When the embedding count does not match", func() {
			err := store.SetEmbeddings([][]float32{{1}})
			So(errors.Is(err, catalog.ErrBadCatalog), ShouldBeTrue)
		})
	})
}

func TestLoadCSV(t *testing.T) {
	Convey("Given a missing file", t, func() {
		_, err := catalog.LoadCSV(context.Background(), "testdata/does-not-exist.csv")
		So(errors.Is(err, catalog.ErrOpenCatalog), ShouldBeTrue)
	})
}
