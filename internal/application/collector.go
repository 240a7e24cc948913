package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fvsutils/closings/internal/domain"
	"go.uber.org/zap"
)

// maxBatchSize caps the log-grouping batch size; batches only shape
// pacing and progress output, never correctness.
const maxBatchSize = 5

// Pacing holds the collector's timing knobs.
type Pacing struct {
	// BatchSize is the log-grouping chunk size (capped at maxBatchSize).
	BatchSize int
	// InterCodeDelay is slept between consecutive per-code fetches.
	InterCodeDelay time.Duration
	// BatchPause is slept between consecutive batches.
	BatchPause time.Duration
}

// Summary reports the outcome of one collection run.
type Summary struct {
	Total  int
	Stocks int
	Funds  int
	Date   string
}

// CollectionService turns the configured instrument lists into paced,
// individually-fetched API calls and persists the aggregate result.
// All fetching is strictly sequential; the upstream quota is per-account,
// so concurrent calls would violate the pacing invariants.
type CollectionService struct {
	fetcher QuoteFetcher
	repo    ClosingWriter
	pacing  Pacing
	sleeper Sleeper
	log     *zap.Logger
}

type Option func(*CollectionService)

func WithSleeper(s Sleeper) Option    { return func(c *CollectionService) { c.sleeper = s } }
func WithLogger(l *zap.Logger) Option { return func(c *CollectionService) { c.log = l } }

func NewCollectionService(fetcher QuoteFetcher, repo ClosingWriter, pacing Pacing, opts ...Option) *CollectionService {
	c := &CollectionService{
		fetcher: fetcher,
		repo:    repo,
		pacing:  pacing,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sleeper == nil {
		c.sleeper = realSleeper{}
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c
}

// FetchQuotes fetches one quote per code, sequentially and in input order,
// sleeping the inter-code delay between fetches (not after the last). A
// failed code is logged and omitted; it never aborts the rest.
func (c *CollectionService) FetchQuotes(ctx context.Context, codes []string) ([]domain.Quote, error) {
	quotes := make([]domain.Quote, 0, len(codes))
	for i, code := range codes {
		c.log.Info("fetching quote",
			zap.String("code", code),
			zap.Int("position", i+1),
			zap.Int("of", len(codes)),
		)
		q, err := c.fetcher.Fetch(ctx, code)
		if err != nil {
			if ctx.Err() != nil {
				return quotes, ctx.Err()
			}
			c.log.Warn("quote fetch failed", zap.String("code", code), zap.Error(err))
		} else {
			quotes = append(quotes, q)
			c.log.Info("quote fetched", zap.String("code", q.Code), zap.Float64("value", q.Value))
		}
		if i < len(codes)-1 && c.pacing.InterCodeDelay > 0 {
			if err := c.sleeper.Sleep(ctx, c.pacing.InterCodeDelay); err != nil {
				return quotes, err
			}
		}
	}
	return quotes, nil
}

// collectGroup walks one instrument group in fixed-size batches, pausing
// between batches (not after the last). Batch boundaries only group log
// output; the per-code behavior is FetchQuotes'.
func (c *CollectionService) collectGroup(ctx context.Context, codes []string, group string) ([]domain.Quote, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	batchSize := c.pacing.BatchSize
	if batchSize < 1 || batchSize > maxBatchSize {
		batchSize = maxBatchSize
	}
	totalBatches := (len(codes) + batchSize - 1) / batchSize

	c.log.Info("collecting group", zap.String("group", group), zap.Int("codes", len(codes)))

	results := make([]domain.Quote, 0, len(codes))
	for i := 0; i < len(codes); i += batchSize {
		end := i + batchSize
		if end > len(codes) {
			end = len(codes)
		}
		batch := codes[i:end]
		batchNum := i/batchSize + 1

		c.log.Info("batch started",
			zap.String("group", group),
			zap.Int("batch", batchNum),
			zap.Int("of", totalBatches),
			zap.String("codes", strings.Join(batch, ",")),
		)
		quotes, err := c.FetchQuotes(ctx, batch)
		if err != nil {
			return results, err
		}
		results = append(results, quotes...)
		c.log.Info("batch done",
			zap.String("group", group),
			zap.Int("batch", batchNum),
			zap.Int("collected", len(quotes)),
			zap.Int("requested", len(batch)),
		)

		if end < len(codes) && c.pacing.BatchPause > 0 {
			if err := c.sleeper.Sleep(ctx, c.pacing.BatchPause); err != nil {
				return results, err
			}
		}
	}
	return results, nil
}

// Run is the whole collection procedure: store connectivity check, stocks
// then funds, one bulk save, summary. Per-code failures are tolerated;
// connectivity and storage failures abort the run.
func (c *CollectionService) Run(ctx context.Context, stocks, funds []string) (Summary, error) {
	if err := c.repo.Ping(ctx); err != nil {
		return Summary{}, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	c.log.Info("store connectivity ok")

	stockQuotes, err := c.collectGroup(ctx, stocks, "stocks")
	if err != nil {
		return Summary{}, err
	}
	fundQuotes, err := c.collectGroup(ctx, funds, "funds")
	if err != nil {
		return Summary{}, err
	}

	all := append(stockQuotes, fundQuotes...)
	if len(all) == 0 {
		c.log.Warn("no quotes collected, skipping save")
		return Summary{}, nil
	}

	if err := c.repo.Save(ctx, all); err != nil {
		return Summary{}, fmt.Errorf("save closings: %w", err)
	}

	sum := Summary{
		Total:  len(all),
		Stocks: len(stockQuotes),
		Funds:  len(fundQuotes),
		Date:   all[0].Date,
	}
	c.log.Info("collection summary",
		zap.Int("total", sum.Total),
		zap.Int("stocks", sum.Stocks),
		zap.Int("funds", sum.Funds),
		zap.String("date", sum.Date),
	)
	return sum, nil
}

type realSleeper struct{}

func (realSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
