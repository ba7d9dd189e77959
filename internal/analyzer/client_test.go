package analyzer

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"morphcorpus/internal/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(t *testing.T, fn roundTripFunc) *Client {
	t.Helper()
	cfg, _ := config.Load()
	cfg.PerseusBaseURL = "https://example.test/hopper/xmlmorph"
	cfg.PerseusRateLimitRPS = 1000

	client := NewClient(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	client.httpClient = &http.Client{Transport: fn}
	return client
}

func xmlResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

const twoAnalyses = `<?xml version="1.0" encoding="utf-8"?>
<analyses>
  <analysis>
    <form lang="la">arma</form>
    <lemma>arma</lemma>
    <expandedForm>arma</expandedForm>
    <pos>noun</pos>
    <number>pl</number>
    <case>nom</case>
    <gender>neut</gender>
  </analysis>
  <analysis>
    <form lang="la">arma</form>
    <lemma>armo</lemma>
    <pos>verb</pos>
    <person>2nd</person>
    <mood>imperat</mood>
  </analysis>
</analyses>`

func TestLookupSendsQueryAndDecodes(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		calls++
		if r.URL.Path != "/hopper/xmlmorph" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("lang") != "la" || r.URL.Query().Get("lookup") != "arma" {
			t.Fatalf("unexpected query %s", r.URL.RawQuery)
		}
		return xmlResponse(http.StatusOK, twoAnalyses), nil
	})

	res, err := client.Lookup(context.Background(), "arma", "la")
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("calls=%d", calls)
	}
	if res.Analysis.Count != 2 {
		t.Fatalf("len=%d", res.Analysis.Count)
	}
	if res.Analysis.Get("lemma") != "arma" || res.Analysis.Get("case") != "nom" || res.Analysis.Get("lang") != "la" {
		t.Fatalf("fields=%v", res.Analysis.Fields)
	}
	if len(res.Analysis.Alternatives) != 1 || res.Analysis.Alternatives[0]["lemma"] != "armo" {
		t.Fatalf("alternatives=%v", res.Analysis.Alternatives)
	}
	if len(res.Raw) == 0 {
		t.Fatal("raw response not kept")
	}
}

func TestLookupTransliteratesGreek(t *testing.T) {
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if got := r.URL.Query().Get("lookup"); got != "lo/gos" {
			t.Fatalf("lookup=%q", got)
		}
		return xmlResponse(http.StatusOK, `<analyses><analysis><lemma>lo/gos</lemma></analysis></analyses>`), nil
	})

	res, err := client.Lookup(context.Background(), "λόγος", "greek")
	if err != nil {
		t.Fatal(err)
	}
	if res.Analysis.Get("lemma") != "lo/gos" || res.Analysis.Count != 1 {
		t.Fatalf("analysis=%+v", res.Analysis)
	}
}

func TestLookupMalformedBodyIsEmpty(t *testing.T) {
	client := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return xmlResponse(http.StatusOK, `<html><body>Server busy`), nil
	})

	res, err := client.Lookup(context.Background(), "arma", "la")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Analysis.Empty() || !res.Undecodable {
		t.Fatalf("result=%+v", res)
	}
}

func TestLookupStatusError(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(*http.Request) (*http.Response, error) {
		calls++
		return xmlResponse(http.StatusServiceUnavailable, `busy`), nil
	})

	if _, err := client.Lookup(context.Background(), "arma", "la"); err == nil {
		t.Fatal("expected status error")
	}
	if calls != 1 {
		t.Fatalf("lookup retried: calls=%d", calls)
	}
}
