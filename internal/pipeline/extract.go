package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	pdf "github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"morphcorpus/internal"
	"morphcorpus/internal/util"
)

var ErrCorpusNotFound = errors.New("corpus element not found")

// ExtractHTMLText returns the text content of the element with the given id.
func ExtractHTMLText(r io.Reader, corpusID string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}
	corpus := doc.Find("#" + corpusID).First()
	if corpus.Length() == 0 {
		return "", fmt.Errorf("%w: #%s", ErrCorpusNotFound, corpusID)
	}
	return corpus.Text(), nil
}

// ConvertHTML writes the corpus text of an HTML page next to it and returns the .txt path.
func ConvertHTML(path, corpusID string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	text, err := ExtractHTMLText(f, corpusID)
	if err != nil {
		return "", fmt.Errorf("convert %s: %w", path, err)
	}
	out := util.OutputPrefix(path, "") + ".txt"
	if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

// ExtractPDFText returns the plain text of every page, one page after the other.
func ExtractPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		if !strings.HasSuffix(text, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

func ConvertPDF(path string) (string, error) {
	text, err := ExtractPDFText(path)
	if err != nil {
		return "", fmt.Errorf("convert %s: %w", path, err)
	}
	out := util.OutputPrefix(path, "") + ".txt"
	if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

// ReadLegendCSV reads header-keyed legend rows. Both legend columns are required;
// the metadata columns are optional and kept verbatim.
func ReadLegendCSV(r io.Reader) ([]internal.LegendRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	return legendRecordsFromRows(rows)
}

// ReadLegendXLSX reads legend rows from the first sheet of a workbook.
func ReadLegendXLSX(r io.Reader) ([]internal.LegendRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	return legendRecordsFromRows(rows)
}

func legendRecordsFromRows(rows [][]string) ([]internal.LegendRecord, error) {
	if len(rows) == 0 {
		return nil, errors.New("legend table is empty")
	}

	header := map[string]int{}
	for i, h := range rows[0] {
		header[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, required := range legendFields {
		if _, ok := header[required]; !ok {
			return nil, fmt.Errorf("legend table: missing column %s", required)
		}
	}

	cell := func(row []string, name string) string {
		idx, ok := header[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	out := make([]internal.LegendRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		out = append(out, internal.LegendRecord{
			RowNo:         i + 1,
			ReverseLegend: cell(row, internal.LegendReverse),
			ObverseLegend: cell(row, internal.LegendObverse),
			StartDate:     cell(row, "startDate"),
			EndDate:       cell(row, "endDate"),
			MintLabel:     cell(row, "mintLabel"),
			DenLabel:      cell(row, "denLabel"),
		})
	}
	return out, nil
}
