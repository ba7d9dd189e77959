package analyzer

import (
	"encoding/json"
	"testing"
)

func TestDecodeResponseSingleAnalysis(t *testing.T) {
	body := []byte(`<analyses><analysis><form>virum</form><lemma>vir</lemma><pos>noun</pos><case>acc</case><dialect/></analysis></analyses>`)
	res := DecodeResponse(body, "la")

	if res.Analysis.Count != 1 {
		t.Fatalf("len=%d", res.Analysis.Count)
	}
	if res.Analysis.Get("lemma") != "vir" || res.Analysis.Get("case") != "acc" {
		t.Fatalf("fields=%v", res.Analysis.Fields)
	}
	if v, ok := res.Analysis.Fields["dialect"]; !ok || v != "" {
		t.Fatalf("empty element should map to blank, got %q ok=%v", v, ok)
	}
	if res.Analysis.Get("lang") != "la" {
		t.Fatalf("lang=%q", res.Analysis.Get("lang"))
	}
	if len(res.Analysis.Alternatives) != 0 {
		t.Fatalf("alternatives=%v", res.Analysis.Alternatives)
	}
}

func TestDecodeResponseNoAnalyses(t *testing.T) {
	for _, body := range []string{`<analyses/>`, `<analyses></analyses>`} {
		res := DecodeResponse([]byte(body), "la")
		if !res.Analysis.Empty() {
			t.Fatalf("body %q: analysis=%+v", body, res.Analysis)
		}
		if res.Undecodable {
			t.Fatalf("body %q: empty analyses flagged undecodable", body)
		}
	}
}

func TestDecodeResponseUndecodable(t *testing.T) {
	bodies := []string{``, `not xml`, `<analyses><analysis>`, `<html>maintenance`, `<other><analysis/></other>`}
	for _, body := range bodies {
		res := DecodeResponse([]byte(body), "la")
		if !res.Analysis.Empty() || res.Raw != nil {
			t.Fatalf("body %q: result=%+v", body, res)
		}
		if !res.Undecodable {
			t.Fatalf("body %q: not flagged undecodable", body)
		}
		if res.Analysis.Fields == nil {
			t.Fatalf("body %q: nil fields", body)
		}
	}
}

func TestDecodeResponseFirstOfSeveral(t *testing.T) {
	body := []byte(`<analyses>
<analysis><form>cano</form><lemma>cano</lemma><pos>verb</pos><mood>ind</mood></analysis>
<analysis><form>cano</form><lemma>canus</lemma><pos>adj</pos></analysis>
<analysis><form>cano</form><lemma>canum</lemma><pos>noun</pos></analysis>
</analyses>`)
	res := DecodeResponse(body, "la")

	if res.Analysis.Count != 3 {
		t.Fatalf("len=%d", res.Analysis.Count)
	}
	if res.Analysis.Get("lemma") != "cano" || res.Analysis.Get("pos") != "verb" || res.Analysis.Get("mood") != "ind" {
		t.Fatalf("fields=%v", res.Analysis.Fields)
	}
	alts := res.Analysis.Alternatives
	if len(alts) != 2 {
		t.Fatalf("alternatives=%v", alts)
	}
	if alts[0]["lemma"] != "canus" || alts[1]["lemma"] != "canum" {
		t.Fatalf("alternatives=%v", alts)
	}
	if _, ok := res.Analysis.Fields["pos"]; !ok || alts[0]["mood"] != "" {
		t.Fatalf("alternative leaked into first analysis: %v %v", res.Analysis.Fields, alts[0])
	}
}

func TestDecodeResponseRawIsBadgerfish(t *testing.T) {
	body := []byte(`<analyses><analysis><form lang="greek">lo/gos</form></analysis><analysis><form lang="greek">lo/gos</form></analysis></analyses>`)
	res := DecodeResponse(body, "greek")

	var raw map[string]any
	if err := json.Unmarshal(res.Raw, &raw); err != nil {
		t.Fatal(err)
	}
	list, ok := raw["analysis"].([]any)
	if !ok || len(list) != 2 {
		t.Fatalf("raw=%s", res.Raw)
	}
	form := list[0].(map[string]any)["form"].(map[string]any)
	if form["$"] != "lo/gos" || form["@lang"] != "greek" {
		t.Fatalf("form=%v", form)
	}
	if res.Analysis.Get("lang") != "greek" {
		t.Fatalf("lang=%q", res.Analysis.Get("lang"))
	}
}

func TestDecodeResponseLatin1(t *testing.T) {
	body := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><analyses><analysis><lemma>caf\xe9</lemma></analysis></analyses>")
	res := DecodeResponse(body, "la")
	if res.Analysis.Get("lemma") != "café" {
		t.Fatalf("lemma=%q", res.Analysis.Get("lemma"))
	}
}
