package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"morphcorpus/internal"
)

func TestTouchCountsOccurrences(t *testing.T) {
	r := New()
	if e := r.Touch("arma"); e.Freq != 1 {
		t.Fatalf("freq=%d", e.Freq)
	}
	r.Touch("virum")
	if e := r.Touch("arma"); e.Freq != 2 {
		t.Fatalf("freq=%d", e.Freq)
	}
	if r.Len() != 2 {
		t.Fatalf("len=%d", r.Len())
	}
	if e, _ := r.Get("virum"); e.Freq != 1 {
		t.Fatalf("virum freq=%d", e.Freq)
	}
}

func TestKeyNormalizesComposition(t *testing.T) {
	r := New()
	composed := "λόγος"
	decomposed := "λόγος"
	r.Touch(composed)
	r.Touch(decomposed)
	if r.Len() != 1 {
		t.Fatalf("len=%d", r.Len())
	}
	e, ok := r.Get(decomposed)
	if !ok || e.Freq != 2 {
		t.Fatalf("entry=%+v ok=%v", e, ok)
	}
}

func TestStoreAnalysisFirstWriteWins(t *testing.T) {
	r := New()
	r.Touch("cano")
	if _, ok := r.CachedAnalysis("cano"); ok {
		t.Fatal("analysis present before lookup")
	}

	first := internal.Analysis{Fields: map[string]string{"lemma": "cano"}, Count: 1}
	if !r.StoreAnalysis("cano", first, json.RawMessage(`{"analysis":{}}`)) {
		t.Fatal("first store rejected")
	}
	if r.StoreAnalysis("cano", internal.Analysis{Fields: map[string]string{"lemma": "other"}, Count: 1}, nil) {
		t.Fatal("second store accepted")
	}

	got, ok := r.CachedAnalysis("cano")
	if !ok || got.Get("lemma") != "cano" {
		t.Fatalf("analysis=%+v", got)
	}
	if e, _ := r.Get("cano"); e.Freq != 1 {
		t.Fatalf("store changed freq: %d", e.Freq)
	}
}

func TestEmptyAnalysisIsCached(t *testing.T) {
	r := New()
	r.Touch("xyzzy")
	r.StoreAnalysis("xyzzy", internal.Analysis{}, nil)
	if _, ok := r.CachedAnalysis("xyzzy"); !ok {
		t.Fatal("empty analysis not cached")
	}
}

func TestDumpRoundTrip(t *testing.T) {
	r := New()
	r.Touch("arma")
	r.Touch("arma")
	r.Touch("virum")
	r.StoreAnalysis("arma", internal.Analysis{Fields: map[string]string{"lemma": "arma", "pos": "noun"}, Count: 2}, json.RawMessage(`{"x":1}`))

	var buf bytes.Buffer
	if err := r.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}

	var decoded map[string]map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["arma"]["freq"] != float64(2) {
		t.Fatalf("arma=%v", decoded["arma"])
	}
	if _, ok := decoded["virum"]["analysis"]; ok {
		t.Fatalf("virum has analysis: %v", decoded["virum"])
	}

	dump, err := ReadDump(&buf)
	if err != nil {
		t.Fatal(err)
	}
	res, err := dump.GetAnalysis(context.Background(), "la", "arma")
	if err != nil || res == nil {
		t.Fatalf("res=%v err=%v", res, err)
	}
	if res.Analysis.Count != 2 || res.Analysis.Get("pos") != "noun" {
		t.Fatalf("analysis=%+v", res.Analysis)
	}
	if res, _ := dump.GetAnalysis(context.Background(), "la", "virum"); res != nil {
		t.Fatalf("virum should be missing, got %+v", res)
	}
}

func TestSaveAndLoadDump(t *testing.T) {
	r := New()
	r.Touch("cano")
	r.StoreAnalysis("cano", internal.Analysis{Fields: map[string]string{"lemma": "cano"}, Count: 1}, nil)

	path := filepath.Join(t.TempDir(), "nested", "words.json")
	if err := r.SaveJSON(path); err != nil {
		t.Fatal(err)
	}
	dump, err := LoadDump(path)
	if err != nil {
		t.Fatal(err)
	}
	if dump.Len() != 1 {
		t.Fatalf("len=%d", dump.Len())
	}
}
