package analyzer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"morphcorpus/internal"
	"morphcorpus/internal/config"
)

// Client looks surface forms up in the Perseus morphology service. Every Lookup makes
// exactly one HTTP request, paced by the limiter.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
	log        *slog.Logger
}

func NewClient(cfg config.Config, logger *slog.Logger) *Client {
	httpClient := &http.Client{}
	if cfg.PerseusTimeoutMs > 0 {
		httpClient.Timeout = time.Duration(cfg.PerseusTimeoutMs) * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		limiter:    NewRateLimiter(cfg.PerseusRateLimitRPS),
		log:        logger.With("component", "analyzer"),
	}
}

// Lookup analyzes one surface form. Greek forms are sent as beta code. A body that
// cannot be decoded produces an empty analysis flagged Undecodable and a nil error;
// transport failures and non-2xx statuses are returned as errors.
func (c *Client) Lookup(ctx context.Context, word, lang string) (internal.LookupResult, error) {
	query := word
	if IsGreek(lang) {
		query = ToBetaCode(word)
	}

	body, err := c.fetch(ctx, lang, query)
	if err != nil {
		return internal.LookupResult{}, err
	}

	res := DecodeResponse(body, lang)
	c.log.DebugContext(ctx, "analyzer response",
		slog.String("word", word),
		slog.String("query", query),
		slog.Int("analyses", res.Analysis.Count),
		slog.Bool("undecodable", res.Undecodable),
	)
	return res, nil
}

func (c *Client) fetch(ctx context.Context, lang, query string) ([]byte, error) {
	u, err := url.Parse(strings.TrimSpace(c.cfg.PerseusBaseURL))
	if err != nil {
		return nil, fmt.Errorf("analyzer: parse base url: %w", err)
	}
	q := u.Query()
	q.Set("lang", lang)
	q.Set("lookup", query)
	u.RawQuery = q.Encode()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("analyzer: create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml, text/xml")

	c.log.DebugContext(ctx, "analyzer request", slog.String("lang", lang), slog.String("lookup", query))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analyzer: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("analyzer: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("analyzer: status=%d", resp.StatusCode)
	}
	return body, nil
}
