package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"morphcorpus/internal"
)

// WriteJSON writes the word-keyed dump: {word: {freq, analysis, raw}}.
func (r *Registry) WriteJSON(w io.Writer) error {
	out := make(map[string]Entry, len(r.entries))
	for k, e := range r.entries {
		out[k] = *e
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}

func (r *Registry) SaveJSON(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.WriteJSON(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write words dump: %w", err)
	}
	return f.Close()
}

// Dump is a registry dump from an earlier run, read back as an analysis source.
type Dump struct {
	entries map[string]Entry
}

func ReadDump(rd io.Reader) (*Dump, error) {
	entries := map[string]Entry{}
	if err := json.NewDecoder(rd).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode words dump: %w", err)
	}
	normalized := make(map[string]Entry, len(entries))
	for k, e := range entries {
		normalized[Key(k)] = e
	}
	return &Dump{entries: normalized}, nil
}

func LoadDump(path string) (*Dump, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadDump(f)
}

func (d *Dump) Len() int {
	return len(d.entries)
}

// GetAnalysis returns the dumped analysis for word. Dumps carry no language, so lang is
// ignored; entries without an analysis are reported as missing.
func (d *Dump) GetAnalysis(_ context.Context, _ string, word string) (*internal.LookupResult, error) {
	e, ok := d.entries[Key(word)]
	if !ok || e.Analysis == nil {
		return nil, nil
	}
	return &internal.LookupResult{Analysis: *e.Analysis, Raw: e.Raw}, nil
}
