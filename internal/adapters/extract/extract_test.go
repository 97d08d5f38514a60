package extract_test

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/resumatch/resumatch/internal/adapters/extract"
	. "github.com/smartystreets/goconvey/convey"
)

// buildDOCX assembles a minimal OOXML archive in memory.
func buildDOCX(paragraphs []string) []byte {
	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>`)
		body.WriteString(p)
		body.WriteString(`</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, _ := zw.Create("word/document.xml")
	_, _ = f.Write([]byte(body.String()))
	_ = zw.Close()
	return buf.Bytes()
}

func TestRegistry(t *testing.T) {
	Convey("Given the default registry", t, func() {
		reg := extract.DefaultRegistry()

		Convey("Then pdf, docx and txt are supported", func() {
			supported := strings.Join(reg.Supported(), ",")
			So(supported, ShouldContainSubstring, ".pdf")
			So(supported, ShouldContainSubstring, ".docx")
			So(supported, ShouldContainSubstring, ".txt")
		})

		Convey("When extracting a plain text upload", func() {
			text, err := reg.Extract("resume.txt", strings.NewReader("Go developer, 5 years"))
			So(err, ShouldBeNil)
			So(text, ShouldEqual, "Go developer, 5 years")
		})

		Convey("When the extension casing differs", func() {
			text, err := reg.Extract("RESUME.TXT", strings.NewReader("backend"))
			So(err, ShouldBeNil)
			So(text, ShouldEqual, "backend")
		})

		Convey("When extracting a docx upload", func() {
			docx := buildDOCX([]string{"Jane Doe", "Software Engineer 2 Years"})
			text, err := reg.Extract("resume.docx", bytes.NewReader(docx))
			So(err, ShouldBeNil)
			So(text, ShouldContainSubstring, "Jane Doe")
			So(text, ShouldContainSubstring, "Software Engineer 2 Years")

			Convey("And paragraphs are separated", func() {
				So(text, ShouldContainSubstring, "Jane Doe\nSoftware Engineer 2 Years")
			})
		})

		Convey("When the extension is unsupported", func() {
			_, err := reg.Extract("resume.exe", strings.NewReader("nope"))
			So(errors.Is(err, extract.ErrUnsupportedFormat), ShouldBeTrue)
		})

		Convey("When a docx is corrupt", func() {
			_, err := reg.Extract("resume.docx", strings.NewReader("not a zip"))
			So(errors.Is(err, extract.ErrExtraction), ShouldBeTrue)
		})

		Convey("When a pdf is corrupt", func() {
			_, err := reg.Extract("resume.pdf", strings.NewReader("not a pdf"))
			So(errors.Is(err, extract.ErrExtraction), ShouldBeTrue)
		})

		Convey("When a docx archive lacks the document body", func() {
			var buf bytes.Buffer
			zw := zip.NewWriter(&buf)
			f, _ := zw.Create("word/other.xml")
			_, _ = f.Write([]byte("<x/>"))
			_ = zw.Close()

			_, err := reg.Extract("resume.docx", bytes.NewReader(buf.Bytes()))
			So(errors.Is(err, extract.ErrExtraction), ShouldBeTrue)
		})
	})
}
