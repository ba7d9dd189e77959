// Package registry keeps one entry per distinct surface form seen in a run: how often
// the form occurred and, once looked up, its analysis.
//
// The segmenter is the only writer of frequencies (Touch) and the enrichment merger the
// only writer of analyses (StoreAnalysis). The registry is not safe for concurrent use;
// a run processes tokens on a single goroutine.
package registry

import (
	"encoding/json"
	"strings"

	"golang.org/x/text/unicode/norm"

	"morphcorpus/internal"
)

type Entry struct {
	Freq     int                `json:"freq"`
	Analysis *internal.Analysis `json:"analysis,omitempty"`
	Raw      json.RawMessage    `json:"raw,omitempty"`
}

type Registry struct {
	entries map[string]*Entry
}

func New() *Registry {
	return &Registry{entries: map[string]*Entry{}}
}

// Key is the deduplication key of a surface form.
func Key(word string) string {
	return norm.NFC.String(strings.TrimSpace(word))
}

// Touch counts one more occurrence of word and returns the updated entry.
func (r *Registry) Touch(word string) Entry {
	e := r.entry(Key(word))
	e.Freq++
	return *e
}

func (r *Registry) CachedAnalysis(word string) (*internal.Analysis, bool) {
	e, ok := r.entries[Key(word)]
	if !ok || e.Analysis == nil {
		return nil, false
	}
	return e.Analysis, true
}

// StoreAnalysis records the analysis for word. The first stored analysis is kept for
// the rest of the run; later calls leave the entry untouched and return false.
func (r *Registry) StoreAnalysis(word string, analysis internal.Analysis, raw json.RawMessage) bool {
	e := r.entry(Key(word))
	if e.Analysis != nil {
		return false
	}
	a := analysis
	e.Analysis = &a
	e.Raw = raw
	return true
}

func (r *Registry) Get(word string) (Entry, bool) {
	e, ok := r.entries[Key(word)]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

func (r *Registry) Len() int {
	return len(r.entries)
}

func (r *Registry) entry(key string) *Entry {
	e, ok := r.entries[key]
	if !ok {
		e = &Entry{}
		r.entries[key] = e
	}
	return e
}
