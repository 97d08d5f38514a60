package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// documentXMLPath is where OOXML keeps the main document body.
const documentXMLPath = "word/document.xml"

// DOCXExtractor extracts text from DOCX documents. A .docx file is a zip
// archive; the text lives in w:t elements of word/document.xml.
type DOCXExtractor struct{}

// NewDOCXExtractor creates a DOCX extractor.
func NewDOCXExtractor() *DOCXExtractor {
	return &DOCXExtractor{}
}

// Extensions implements Extractor.
func (e *DOCXExtractor) Extensions() []string { return []string{".docx"} }

// Extract implements Extractor.
func (e *DOCXExtractor) Extract(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}

	for _, f := range archive.File {
		if f.Name != documentXMLPath {
			continue
		}
		doc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", documentXMLPath, err)
		}
		defer doc.Close()
		return readDocumentXML(doc)
	}
	return "", fmt.Errorf("docx has no %s", documentXMLPath)
}

// readDocumentXML walks the document stream, collecting text runs and
// turning paragraph ends into newlines.
func readDocumentXML(r io.Reader) (string, error) {
	var sb strings.Builder
	dec := xml.NewDecoder(r)
	inText := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			case "tab":
				sb.WriteString(" ")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}
