package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"morphcorpus/internal/analyzer"
	"morphcorpus/internal/app"
	"morphcorpus/internal/config"
	"morphcorpus/internal/pipeline"
	"morphcorpus/internal/storage"
)

var errUsage = errors.New("unknown command")

func main() {
	cfg, err := config.Load()
	must(err)
	logger := app.NewLogger(cfg)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = dispatch(ctx, cfg, logger, os.Args[1], os.Args[2:])
	cancel()
	if errors.Is(err, errUsage) {
		logger.Debug("unknown command", slog.String("command", os.Args[1]))
		usage()
		os.Exit(1)
	}
	must(err)
}

// dispatch runs one subcommand. Resources opened by a command are closed before it
// returns, so main can exit on the error.
func dispatch(ctx context.Context, cfg config.Config, logger *slog.Logger, cmd string, args []string) error {
	switch cmd {
	case "run":
		return runCmd(ctx, cfg, logger, args)
	case "convert:html":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "html file")
		corpus := fs.String("corpus", cfg.HTMLCorpusID, "id of the element holding the text")
		_ = fs.Parse(args)
		if *input == "" && fs.NArg() > 0 {
			*input = fs.Arg(0)
		}
		if strings.TrimSpace(*input) == "" {
			return fmt.Errorf("--input is required")
		}
		out, err := pipeline.ConvertHTML(*input, *corpus)
		if err != nil {
			return err
		}
		fmt.Printf("converted %s -> %s\n", *input, out)
	case "convert:pdf":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "pdf file")
		_ = fs.Parse(args)
		if *input == "" && fs.NArg() > 0 {
			*input = fs.Arg(0)
		}
		if strings.TrimSpace(*input) == "" {
			return fmt.Errorf("--input is required")
		}
		out, err := pipeline.ConvertPDF(*input)
		if err != nil {
			return err
		}
		fmt.Printf("converted %s -> %s\n", *input, out)
	case "cache:stats":
		return cacheStatsCmd(ctx, cfg)
	default:
		return errUsage
	}
	return nil
}

func runCmd(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	input := fs.String("input", "", "input .txt|.html|.pdf|.csv|.xlsx file")
	lang := fs.String("lang", "", "analyzer language (default DEFAULT_LANG)")
	splitter := fs.String("splitter", "", "default|coins")
	seed := fs.String("seed", "", "words.json from an earlier run")
	xlsx := fs.Bool("xlsx", false, "also write P-output.xlsx")
	cache := fs.Bool("cache", cfg.CacheEnabled, "use the sqlite analysis cache")
	start := fs.String("start", cfg.StartMarker, "line that starts parsing")
	limit := fs.Int("limit", cfg.LineLimit, "stop after this many lines (0 = no limit)")
	_ = fs.Parse(args)

	// run FILE [LANG] [SPLITTER]
	rest := fs.Args()
	if *input == "" && len(rest) > 0 {
		*input = rest[0]
	}
	if *lang == "" && len(rest) > 1 {
		*lang = rest[1]
	}
	if *splitter == "" && len(rest) > 2 {
		*splitter = rest[2]
	}
	if strings.TrimSpace(*input) == "" {
		return pipeline.ErrMissingInput
	}
	if err := cfg.Require("PERSEUS_BASE_URL", cfg.PerseusBaseURL); err != nil {
		return err
	}
	cfg.StartMarker = *start
	cfg.LineLimit = *limit

	var store pipeline.RunStore
	if *cache {
		if err := cfg.Require("CACHE_DB_PATH", cfg.CacheDBPath); err != nil {
			return err
		}
		db, err := storage.Open(cfg.CacheDBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		store = db
	}

	svc := pipeline.NewRunService(cfg, analyzer.NewClient(cfg, logger), store, logger)
	res, err := svc.Run(ctx, pipeline.RunRequest{
		Input:    *input,
		Lang:     *lang,
		Splitter: *splitter,
		Seed:     *seed,
		XLSX:     *xlsx,
	})
	if err != nil {
		return err
	}
	fmt.Printf("parsed %d words in %s\n", len(res.Tokens), *input)
	fmt.Printf("run done id=%s words=%d lookups=%d failures=%d\n", res.RunID, res.Words, res.Stats.Lookups, res.Stats.Failures)
	fmt.Printf("  %s\n  %s\n  %s\n", res.Outputs.CSV, res.Outputs.Words, res.Outputs.Dump)
	if res.Outputs.XLSX != "" {
		fmt.Printf("  %s\n", res.Outputs.XLSX)
	}
	return nil
}

func cacheStatsCmd(ctx context.Context, cfg config.Config) error {
	if err := cfg.Require("CACHE_DB_PATH", cfg.CacheDBPath); err != nil {
		return err
	}
	db, err := storage.Open(cfg.CacheDBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	counts, err := db.CountAnalysesByLang(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("cache %s\n", cfg.CacheDBPath)
	for _, c := range counts {
		fmt.Printf("  lang=%s analyses=%d\n", c.Lang, c.Count)
	}

	lastID, err := db.GetMetadata("run.last")
	if err != nil {
		return err
	}
	if lastID == nil {
		fmt.Println("no runs recorded")
		return nil
	}
	last, err := db.LastRun(ctx)
	if err != nil {
		return err
	}
	if last != nil {
		fmt.Printf("last run id=%s input=%s lang=%s splitter=%s tokens=%d lookups=%d\n",
			last.RunID, last.Input, last.Lang, last.Splitter, last.Counts["tokens"], last.Counts["lookups"])
		if last.RunID != *lastID {
			fmt.Printf("  run.last metadata points at %s\n", *lastID)
		}
	}
	return nil
}

func usage() {
	fmt.Println("usage: morphcorpus <command>")
	fmt.Println("commands:")
	fmt.Println("  run --input=FILE [--lang=la] [--splitter=default|coins] [--seed=words.json] [--xlsx] [--cache]")
	fmt.Println("  run FILE [LANG] [SPLITTER]")
	fmt.Println("  convert:html --input=page.html [--corpus=Matthew]")
	fmt.Println("  convert:pdf --input=text.pdf")
	fmt.Println("  cache:stats")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
