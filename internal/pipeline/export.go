package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"morphcorpus/internal"
)

var OutputColumns = []string{
	"id", "cap", "verse", "line", "index", "word",
	"lang", "form", "lemma", "expandedForm", "pos", "person", "number", "tense", "mood",
	"voice", "dialect", "feature", "case", "gender", "degree", "len",
	"mintLabel", "startDate", "endDate", "legend", "denLabel",
}

// TokenRow renders a token in OutputColumns order; missing attributes are blank.
func TokenRow(tok internal.Token) []string {
	row := make([]string, 0, len(OutputColumns))
	row = append(row, tok.ID)
	if tok.Source == internal.SourceLegend {
		row = append(row, "", "", "")
	} else {
		row = append(row, tok.Cap, tok.Verse, strconv.Itoa(tok.Line))
	}
	row = append(row, strconv.Itoa(tok.Index), tok.Word)

	var a internal.Analysis
	if tok.Analysis != nil {
		a = *tok.Analysis
	}
	for _, field := range internal.AnalysisFields {
		row = append(row, a.Get(field))
	}
	if a.Count > 0 {
		row = append(row, strconv.Itoa(a.Count))
	} else {
		row = append(row, "")
	}

	return append(row, tok.MintLabel, tok.StartDate, tok.EndDate, tok.Legend, tok.DenLabel)
}

func WriteTokensCSV(w io.Writer, tokens []internal.Token) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(OutputColumns); err != nil {
		return err
	}
	for _, tok := range tokens {
		if err := cw.Write(TokenRow(tok)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ExportTokensToCSV(tokens []internal.Token, outputPath string) error {
	return writeFile(outputPath, func(w io.Writer) error {
		return WriteTokensCSV(w, tokens)
	})
}

func ExportTokensToJSON(tokens []internal.Token, outputPath string) error {
	return writeFile(outputPath, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		return enc.Encode(tokens)
	})
}

func ExportTokensToXLSX(tokens []internal.Token, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range OutputColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, tok := range tokens {
		r := i + 2
		for col, value := range TokenRow(tok) {
			cell, _ := excelize.CoordinatesToCellName(col+1, r)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
