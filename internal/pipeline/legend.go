package pipeline

import (
	"fmt"
	"strings"

	"morphcorpus/internal"
)

var legendFields = []string{internal.LegendReverse, internal.LegendObverse}

// SplitLegends tokenizes the reverse then the obverse legend of every record. Index is
// the 1-based word position inside its legend; ids use a run-wide counter.
func SplitLegends(records []internal.LegendRecord, counter FrequencyCounter) []internal.Token {
	tokens := []internal.Token{}
	n := 0
	for _, rec := range records {
		for _, field := range legendFields {
			for i, word := range strings.Fields(rec.Legend(field)) {
				n++
				counter.Touch(word)
				tokens = append(tokens, internal.Token{
					ID:        fmt.Sprintf("%s-%d", field, n),
					Source:    internal.SourceLegend,
					Index:     i + 1,
					Word:      word,
					Legend:    field,
					StartDate: rec.StartDate,
					EndDate:   rec.EndDate,
					MintLabel: rec.MintLabel,
					DenLabel:  rec.DenLabel,
				})
			}
		}
	}
	return tokens
}
