package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"

	"morphcorpus/internal"
	"morphcorpus/internal/registry"
)

type Analyzer interface {
	Lookup(ctx context.Context, word, lang string) (internal.LookupResult, error)
}

// AnalysisCache is the part of the word registry the merger reads and writes.
type AnalysisCache interface {
	CachedAnalysis(word string) (*internal.Analysis, bool)
	StoreAnalysis(word string, analysis internal.Analysis, raw json.RawMessage) bool
}

// AnalysisSource serves analyses kept from earlier runs. A nil result means a miss.
type AnalysisSource interface {
	GetAnalysis(ctx context.Context, lang, word string) (*internal.LookupResult, error)
}

type AnalysisStore interface {
	AnalysisSource
	PutAnalysis(ctx context.Context, lang, word string, res internal.LookupResult) error
}

type EnrichStats struct {
	Tokens    int
	CacheHits int
	SeedHits  int
	StoreHits int
	Lookups   int
	Failures  int
}

// Enricher merges analyses into tokens, consulting the registry first and calling the
// analyzer at most once per distinct surface form.
type Enricher struct {
	analyzer Analyzer
	cache    AnalysisCache
	seed     AnalysisSource
	store    AnalysisStore
	lang     string
	log      *slog.Logger
}

func NewEnricher(analyzer Analyzer, cache AnalysisCache, lang string, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{
		analyzer: analyzer,
		cache:    cache,
		lang:     lang,
		log:      logger.With("component", "enricher"),
	}
}

// WithSeed adds a read-only source consulted before the store and the analyzer.
func (e *Enricher) WithSeed(seed AnalysisSource) *Enricher {
	e.seed = seed
	return e
}

// WithStore adds a persistent cache consulted before the analyzer and filled by it.
func (e *Enricher) WithStore(store AnalysisStore) *Enricher {
	e.store = store
	return e
}

// Enrich sets the Analysis of every token in place, in order.
func (e *Enricher) Enrich(ctx context.Context, tokens []internal.Token) (EnrichStats, error) {
	var stats EnrichStats
	for i := range tokens {
		tok := &tokens[i]
		stats.Tokens++

		if cached, ok := e.cache.CachedAnalysis(tok.Word); ok {
			stats.CacheHits++
			tok.Analysis = cached
			continue
		}

		res, err := e.resolve(ctx, tok.Word, &stats)
		if err != nil {
			return stats, err
		}
		e.cache.StoreAnalysis(tok.Word, res.Analysis, res.Raw)
		tok.Analysis, _ = e.cache.CachedAnalysis(tok.Word)
	}

	e.log.InfoContext(ctx, "enrichment done",
		slog.Int("tokens", stats.Tokens),
		slog.Int("cacheHits", stats.CacheHits),
		slog.Int("seedHits", stats.SeedHits),
		slog.Int("storeHits", stats.StoreHits),
		slog.Int("lookups", stats.Lookups),
		slog.Int("failures", stats.Failures),
	)
	return stats, nil
}

// resolve finds the analysis of a word missing from the registry. Only a cancelled
// context is returned as an error; a failed or undecodable lookup resolves to an empty
// analysis that stays out of the store.
func (e *Enricher) resolve(ctx context.Context, word string, stats *EnrichStats) (internal.LookupResult, error) {
	key := registry.Key(word)

	if e.seed != nil {
		res, err := e.seed.GetAnalysis(ctx, e.lang, key)
		if err != nil {
			e.log.WarnContext(ctx, "seed lookup failed", slog.String("word", word), slog.String("error", err.Error()))
		} else if res != nil {
			stats.SeedHits++
			return *res, nil
		}
	}

	if e.store != nil {
		res, err := e.store.GetAnalysis(ctx, e.lang, key)
		if err != nil {
			e.log.WarnContext(ctx, "store lookup failed", slog.String("word", word), slog.String("error", err.Error()))
		} else if res != nil {
			stats.StoreHits++
			return *res, nil
		}
	}

	stats.Lookups++
	res, err := e.analyzer.Lookup(ctx, word, e.lang)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return internal.LookupResult{}, ctxErr
		}
		stats.Failures++
		e.log.WarnContext(ctx, "analyzer lookup failed", slog.String("word", word), slog.String("error", err.Error()))
		return internal.LookupResult{Analysis: internal.Analysis{Fields: map[string]string{}}}, nil
	}
	if res.Undecodable {
		stats.Failures++
		e.log.WarnContext(ctx, "analyzer response undecodable", slog.String("word", word))
		return res, nil
	}

	if e.store != nil {
		if err := e.store.PutAnalysis(ctx, e.lang, key, res); err != nil {
			e.log.WarnContext(ctx, "store write failed", slog.String("word", word), slog.String("error", err.Error()))
		}
	}
	return res, nil
}
