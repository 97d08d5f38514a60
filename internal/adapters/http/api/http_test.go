package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/resumatch/resumatch/internal/adapters/extract"
	"github.com/resumatch/resumatch/internal/adapters/http/api"
	"github.com/resumatch/resumatch/internal/domain/model"
	"github.com/resumatch/resumatch/internal/domain/recommend"
	. "github.com/smartystreets/goconvey/convey"
)

const testMaxUpload = 1 << 20

// mockDeps implements api.Dependencies with canned answers.
type mockDeps struct {
	result  recommend.Result
	err     error
	jobs    []model.JobPosting
	cats    []string
	lastReq recommend.Request
}

func (m *mockDeps) ProcessResume(_ context.Context, _ string, r io.Reader, req recommend.Request) (recommend.Result, error) {
	_, _ = io.ReadAll(r)
	m.lastReq = req
	if m.err != nil {
		return recommend.Result{}, m.err
	}
	return m.result, nil
}

func (m *mockDeps) Jobs(_ context.Context, limit int) ([]model.JobPosting, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit > 0 && limit < len(m.jobs) {
		return m.jobs[:limit], nil
	}
	return m.jobs, nil
}

func (m *mockDeps) Categories(_ context.Context) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.cats, nil
}

func (m *mockDeps) SupportedFormats() []string { return []string{".pdf", ".docx", ".txt"} }

func (m *mockDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newTestMux(deps *mockDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, deps, testMaxUpload).Register(context.Background(), mux)
	return mux
}

// multipartResume builds a multipart body with a resume file and the given
// form fields.
func multipartResume(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("resume", filename)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestHandleRecommend(t *testing.T) {
	Convey("Given a recommendations endpoint", t, func() {
		deps := &mockDeps{
			result: recommend.Result{
				Predicted: model.CategoryPrediction{Category: "Engineering", Confidence: 0.91},
				Recommendations: []model.Recommendation{
					{JobID: "j1", Title: "Backend Engineer", Category: "Engineering", Score: 0.88},
				},
			},
		}
		mux := newTestMux(deps)

		Convey("When uploading a text resume", func() {
			body, contentType := multipartResume(t, "resume.txt", "go engineer", map[string]string{
				"top_n": "5", "category": "all", "sort": "desc",
			})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it responds with the ranked recommendations", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["resume_id"], ShouldNotBeEmpty)
				So(resp["filename"], ShouldEqual, "resume.txt")
				So(resp["predicted_category"], ShouldEqual, "Engineering")
				So(resp["confidence"], ShouldAlmostEqual, 0.91, 1e-9)
				So(deps.lastReq.TopN, ShouldEqual, 5)
				So(deps.lastReq.Category, ShouldEqual, "all")
				So(deps.lastReq.SortAscending, ShouldBeFalse)
			})
		})

		Convey("When the sort field asks for ascending order", func() {
			body, contentType := multipartResume(t, "resume.txt", "text", map[string]string{"sort": "asc"})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastReq.SortAscending, ShouldBeTrue)
		})

		Convey("When the resume file is missing", func() {
			body, contentType := multipartResume(t, "", "", map[string]string{"top_n": "5"})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When top_n is not a positive integer", func() {
			for _, bad := range []string{"abc", "0", "-3"} {
				body, contentType := multipartResume(t, "resume.txt", "text", map[string]string{"top_n": bad})
				req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", body)
				req.Header.Set("Content-Type", contentType)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When the sort field is invalid", func() {
			body, contentType := multipartResume(t, "resume.txt", "text", map[string]string{"sort": "sideways"})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the pipeline rejects the file format", func() {
			deps.err = extract.ErrUnsupportedFormat
			body, contentType := multipartResume(t, "resume.exe", "binary", nil)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it responds 415 with the shared error shape", func() {
				So(w.Code, ShouldEqual, http.StatusUnsupportedMediaType)
				var resp map[string]string
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["code"], ShouldEqual, "unsupported_format")
				So(resp["message"], ShouldNotBeEmpty)
			})
		})

		Convey("When extraction fails", func() {
			deps.err = extract.ErrExtraction
			body, contentType := multipartResume(t, "resume.pdf", "garbage", nil)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
		})

		Convey("When the pipeline fails internally", func() {
			deps.err = errors.New("weights went sideways")
			body, contentType := multipartResume(t, "resume.txt", "text", nil)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})

		Convey("When using the wrong method", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestHandleGetJobs(t *testing.T) {
	Convey("Given a jobs endpoint", t, func() {
		deps := &mockDeps{jobs: []model.JobPosting{
			{ID: "j1", Title: "Backend Engineer", Category: "Engineering"},
			{ID: "j2", Title: "Data Analyst", Category: "Data"},
		}}
		mux := newTestMux(deps)

		Convey("When listing jobs", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			var resp struct {
				Jobs  []model.JobPosting `json:"jobs"`
				Count int                `json:"count"`
			}
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Count, ShouldEqual, 2)
		})

		Convey("When limiting the result", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs?limit=1", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"count":1`)
		})

		Convey("When the limit is invalid", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs?limit=zero", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestHandleGetCategories(t *testing.T) {
	Convey("Given a categories endpoint", t, func() {
		deps := &mockDeps{cats: []string{"Data", "Engineering"}}
		mux := newTestMux(deps)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		Convey("Then it returns categories and supported formats", func() {
			So(w.Code, ShouldEqual, http.StatusOK)
			var resp struct {
				Categories []string `json:"categories"`
				Formats    []string `json:"supported_formats"`
			}
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Categories, ShouldResemble, []string{"Data", "Engineering"})
			So(resp.Formats, ShouldContain, ".pdf")
		})
	})
}

func TestOperationalEndpoints(t *testing.T) {
	Convey("Given the operational endpoints", t, func() {
		deps := &mockDeps{}
		mux := newTestMux(deps)

		Convey("Then /healthz reports ok", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("Then /metrics serves the prometheus registry", func() {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then /stats serves provider statistics", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("Then / serves the upload page", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "Resumatch")
			So(strings.ToLower(w.Header().Get("Content-Type")), ShouldContainSubstring, "text/html")
		})

		Convey("Then unknown paths under / are 404", func() {
			req := httptest.NewRequest(http.MethodGet, "/nope", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}
