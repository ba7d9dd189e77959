package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"morphcorpus/internal"
	"morphcorpus/internal/config"
	"morphcorpus/internal/registry"
	"morphcorpus/internal/storage"
	"morphcorpus/internal/util"
)

const (
	SplitterDefault = "default"
	SplitterCoins   = "coins"
)

var ErrMissingInput = errors.New("missing html or txt file")

// RunStore is the persistent side of a run: the analysis cache and the run log.
type RunStore interface {
	AnalysisStore
	InsertRun(ctx context.Context, run storage.RunRecord) error
	SetMetadata(key, value string) error
}

type RunRequest struct {
	Input    string
	Lang     string
	Splitter string
	Seed     string
	XLSX     bool
}

type Outputs struct {
	CSV   string
	Words string
	Dump  string
	XLSX  string
}

type RunResult struct {
	RunID    string
	Splitter string
	Tokens   []internal.Token
	Words    int
	Stats    EnrichStats
	Outputs  Outputs
}

type RunService struct {
	cfg      config.Config
	analyzer Analyzer
	store    RunStore
	log      *slog.Logger
}

// NewRunService wires a run. store may be nil, then nothing outlives the run except
// the output files.
func NewRunService(cfg config.Config, analyzer Analyzer, store RunStore, logger *slog.Logger) *RunService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunService{cfg: cfg, analyzer: analyzer, store: store, log: logger.With("component", "run")}
}

// ResolveSplitter maps a splitter name to a known one; unknown names fall back to default.
func ResolveSplitter(name string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", SplitterDefault:
		return SplitterDefault, true
	case SplitterCoins:
		return SplitterCoins, true
	default:
		return SplitterDefault, false
	}
}

func (s *RunService) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	start := time.Now()
	if strings.TrimSpace(req.Input) == "" {
		return RunResult{}, ErrMissingInput
	}

	lang := util.FirstNonEmpty(strings.TrimSpace(req.Lang), s.cfg.DefaultLang)
	splitter, known := ResolveSplitter(req.Splitter)
	if !known {
		s.log.WarnContext(ctx, "unknown splitter, using default", slog.String("splitter", req.Splitter))
	}

	result := RunResult{RunID: uuid.NewString(), Splitter: splitter}
	reg := registry.New()

	src, err := OpenSource(req.Input, s.cfg.HTMLCorpusID)
	if err != nil {
		return RunResult{}, err
	}
	defer src.Close()

	tokens, err := s.segment(src, splitter, reg)
	if err != nil {
		return RunResult{}, err
	}
	segmented := time.Now()
	s.log.InfoContext(ctx, "segmentation done",
		slog.String("input", req.Input),
		slog.String("splitter", splitter),
		slog.Int("tokens", len(tokens)),
		slog.Int("words", reg.Len()),
	)

	enricher := NewEnricher(s.analyzer, reg, lang, s.log)
	if req.Seed != "" {
		dump, err := registry.LoadDump(req.Seed)
		if err != nil {
			return RunResult{}, fmt.Errorf("load seed %s: %w", req.Seed, err)
		}
		enricher.WithSeed(dump)
	}
	if s.store != nil {
		enricher.WithStore(s.store)
	}

	stats, err := enricher.Enrich(ctx, tokens)
	if err != nil {
		return RunResult{}, err
	}
	enriched := time.Now()

	prefix := util.OutputPrefix(req.Input, s.cfg.OutputDir)
	outputs := Outputs{
		CSV:   prefix + "-output.csv",
		Words: prefix + "-words.json",
		Dump:  prefix + "-dump.json",
	}
	if err := ExportTokensToCSV(tokens, outputs.CSV); err != nil {
		return RunResult{}, fmt.Errorf("write %s: %w", outputs.CSV, err)
	}
	if err := reg.SaveJSON(outputs.Words); err != nil {
		return RunResult{}, fmt.Errorf("write %s: %w", outputs.Words, err)
	}
	if err := ExportTokensToJSON(tokens, outputs.Dump); err != nil {
		return RunResult{}, fmt.Errorf("write %s: %w", outputs.Dump, err)
	}
	if req.XLSX {
		outputs.XLSX = prefix + "-output.xlsx"
		if err := ExportTokensToXLSX(tokens, outputs.XLSX); err != nil {
			return RunResult{}, fmt.Errorf("write %s: %w", outputs.XLSX, err)
		}
	}

	exported := time.Now()

	result.Tokens = tokens
	result.Words = reg.Len()
	result.Stats = stats
	result.Outputs = outputs

	if s.store != nil {
		s.recordRun(ctx, req, lang, result, map[string]float64{
			"segmentMs": float64(segmented.Sub(start).Milliseconds()),
			"enrichMs":  float64(enriched.Sub(segmented).Milliseconds()),
			"exportMs":  float64(exported.Sub(enriched).Milliseconds()),
			"totalMs":   float64(exported.Sub(start).Milliseconds()),
		})
	}
	return result, nil
}

func (s *RunService) segment(src *Source, splitter string, reg *registry.Registry) ([]internal.Token, error) {
	switch splitter {
	case SplitterCoins:
		if src.Kind != SourceRecords {
			return nil, fmt.Errorf("splitter %s needs a csv or xlsx input, got %s", splitter, src.Path)
		}
		return SplitLegends(src.Records, reg), nil
	default:
		if src.Kind != SourceLines {
			return nil, fmt.Errorf("splitter %s needs a text input, got %s", splitter, src.Path)
		}
		seg := NewProseSegmenter(reg, ProseOptions{StartMarker: s.cfg.StartMarker, LineLimit: s.cfg.LineLimit})
		return seg.Segment(src.Lines)
	}
}

func (s *RunService) recordRun(ctx context.Context, req RunRequest, lang string, res RunResult, timings map[string]float64) {
	run := storage.RunRecord{
		RunID:    res.RunID,
		Input:    req.Input,
		Lang:     lang,
		Splitter: res.Splitter,
		Timings:  timings,
		Counts: map[string]int{
			"tokens":    len(res.Tokens),
			"words":     res.Words,
			"lookups":   res.Stats.Lookups,
			"cacheHits": res.Stats.CacheHits,
			"storeHits": res.Stats.StoreHits,
			"seedHits":  res.Stats.SeedHits,
			"failures":  res.Stats.Failures,
		},
	}
	if err := s.store.InsertRun(ctx, run); err != nil {
		s.log.WarnContext(ctx, "record run failed", slog.String("error", err.Error()))
		return
	}
	_ = s.store.SetMetadata("run.last", res.RunID)
}
