package internal

import "encoding/json"

type TokenSource string

const (
	SourceText   TokenSource = "text"
	SourceLegend TokenSource = "legend"
)

const (
	LegendReverse = "reVerseLegend"
	LegendObverse = "obVerseLegend"
)

// AnalysisFields lists the analyzer attributes carried to the tabular output, in column order.
var AnalysisFields = []string{
	"lang", "form", "lemma", "expandedForm", "pos", "person", "number", "tense",
	"mood", "voice", "dialect", "feature", "case", "gender", "degree",
}

type Analysis struct {
	Fields       map[string]string   `json:"fields"`
	Count        int                 `json:"len"`
	Alternatives []map[string]string `json:"alternatives,omitempty"`
}

func (a Analysis) Empty() bool {
	return a.Count == 0 && len(a.Fields) == 0
}

func (a Analysis) Get(field string) string {
	if a.Fields == nil {
		return ""
	}
	return a.Fields[field]
}

type LookupResult struct {
	Analysis    Analysis
	Raw         json.RawMessage
	// Undecodable marks a response body that could not be parsed; Analysis is then empty.
	Undecodable bool
}

type Token struct {
	ID     string      `json:"id"`
	Source TokenSource `json:"source"`

	Cap   string `json:"cap,omitempty"`
	Verse string `json:"verse,omitempty"`
	Line  int    `json:"line"`
	Index int    `json:"index"`
	Word  string `json:"word"`

	Legend    string `json:"legend,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	MintLabel string `json:"mintLabel,omitempty"`
	DenLabel  string `json:"denLabel,omitempty"`

	Analysis *Analysis `json:"analysis,omitempty"`
}

type LegendRecord struct {
	RowNo         int
	ReverseLegend string
	ObverseLegend string
	StartDate     string
	EndDate       string
	MintLabel     string
	DenLabel      string
}

// Legend returns the free text of the named legend field.
func (r LegendRecord) Legend(name string) string {
	switch name {
	case LegendReverse:
		return r.ReverseLegend
	case LegendObverse:
		return r.ObverseLegend
	default:
		return ""
	}
}
