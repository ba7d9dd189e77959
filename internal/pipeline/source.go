package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"morphcorpus/internal"
)

type SourceKind string

const (
	SourceLines   SourceKind = "lines"
	SourceRecords SourceKind = "records"
)

// Source is an opened input: either a stream of text lines or legend records.
type Source struct {
	Path    string
	Kind    SourceKind
	Lines   io.ReadCloser
	Records []internal.LegendRecord
}

func (s *Source) Close() error {
	if s.Lines != nil {
		return s.Lines.Close()
	}
	return nil
}

// OpenSource opens input by extension. HTML pages are first converted to a .txt file
// next to them.
func OpenSource(path, htmlCorpusID string) (*Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		txt, err := ConvertHTML(path, htmlCorpusID)
		if err != nil {
			return nil, err
		}
		return openLines(txt)
	case ".pdf":
		text, err := ExtractPDFText(path)
		if err != nil {
			return nil, fmt.Errorf("read pdf %s: %w", path, err)
		}
		return &Source{Path: path, Kind: SourceLines, Lines: io.NopCloser(strings.NewReader(text))}, nil
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		records, err := ReadLegendCSV(f)
		if err != nil {
			return nil, fmt.Errorf("read csv %s: %w", path, err)
		}
		return &Source{Path: path, Kind: SourceRecords, Records: records}, nil
	case ".xlsx":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		records, err := ReadLegendXLSX(f)
		if err != nil {
			return nil, fmt.Errorf("read xlsx %s: %w", path, err)
		}
		return &Source{Path: path, Kind: SourceRecords, Records: records}, nil
	default:
		return openLines(path)
	}
}

func openLines(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Source{Path: path, Kind: SourceLines, Lines: f}, nil
}
