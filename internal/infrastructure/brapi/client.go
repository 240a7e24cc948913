package brapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fvsutils/closings/internal/domain"
	"github.com/fvsutils/closings/internal/infrastructure/ratelimit"
	"go.uber.org/zap"
)

// StatusError is a non-2xx, non-429 response from the quote API.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string { return fmt.Sprintf("brapi: status %d", e.StatusCode) }

// rateLimitError carries the wait the server asked for on a 429.
type rateLimitError struct {
	wait time.Duration
}

func (e *rateLimitError) Error() string { return "brapi: rate limited (429)" }

func (e *rateLimitError) Unwrap() error { return domain.ErrRateLimited }

// Client fetches single-instrument quotes from the brapi API. The free tier
// accepts one code per request, so Fetch takes exactly one code; pacing across
// codes is the caller's job, pacing across attempts is the Limiter's.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
	Limiter *ratelimit.MinInterval

	// Attempts is the per-code attempt ceiling (minimum 1).
	Attempts int
	// RetryDelay is slept between attempts after a generic failure.
	RetryDelay time.Duration
	// RateLimitDelay is slept after a 429 without a usable retry-after header.
	RateLimitDelay time.Duration

	Log *zap.Logger

	// Now and Sleep exist for tests; nil means real clock and real sleep.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

type quoteResponse struct {
	Results []struct {
		Symbol             string  `json:"symbol"`
		RegularMarketPrice float64 `json:"regularMarketPrice"`
	} `json:"results"`
}

// Fetch retrieves today's quote for one instrument code, retrying transient
// failures up to the attempt ceiling. A 429 waits the server-suggested
// duration (or RateLimitDelay) and never re-enters the generic delay path;
// once attempts are spent it surfaces as domain.ErrRateLimited. An empty
// results payload is not retried.
func (c *Client) Fetch(ctx context.Context, code string) (domain.Quote, error) {
	attempts := c.Attempts
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; ; attempt++ {
		if c.Limiter != nil {
			if err := c.Limiter.Acquire(ctx); err != nil {
				return domain.Quote{}, err
			}
		}
		q, err := c.fetchOnce(ctx, code)
		if err == nil {
			return q, nil
		}
		if errors.Is(err, domain.ErrEmptyResult) {
			return domain.Quote{}, err
		}
		var rl *rateLimitError
		if errors.As(err, &rl) {
			if attempt >= attempts {
				return domain.Quote{}, fmt.Errorf("brapi: %w after %d attempts", domain.ErrRateLimited, attempts)
			}
			c.log().Warn("rate limited, backing off",
				zap.String("code", code),
				zap.Duration("wait", rl.wait),
				zap.Int("attempts_left", attempts-attempt),
			)
			if err := c.sleep(ctx, rl.wait); err != nil {
				return domain.Quote{}, err
			}
			continue
		}
		if attempt >= attempts {
			return domain.Quote{}, err
		}
		c.log().Warn("request failed, retrying",
			zap.String("code", code),
			zap.Int("attempts_left", attempts-attempt),
			zap.Error(err),
		)
		if err := c.sleep(ctx, c.RetryDelay); err != nil {
			return domain.Quote{}, err
		}
	}
}

func (c *Client) fetchOnce(ctx context.Context, code string) (domain.Quote, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("brapi: invalid base url: %w", err)
	}
	u.Path += "/quote/" + code
	q := u.Query()
	q.Set("token", c.Token)
	q.Set("interval", "1d")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("brapi: create request: %w", err)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("brapi: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return domain.Quote{}, &rateLimitError{wait: c.retryAfter(resp)}
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Quote{}, &StatusError{StatusCode: resp.StatusCode}
	}

	var body quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Quote{}, fmt.Errorf("brapi: decode response: %w", err)
	}
	if len(body.Results) == 0 {
		return domain.Quote{}, fmt.Errorf("%s: %w", code, domain.ErrEmptyResult)
	}

	r := body.Results[0]
	return domain.Quote{
		Code:  r.Symbol,
		Date:  domain.Today(c.now()),
		Value: r.RegularMarketPrice,
	}, nil
}

// retryAfter reads the server-suggested wait from a 429 response, falling
// back to the configured delay when the header is absent or unparseable.
func (c *Client) retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return c.RateLimitDelay
}

func (c *Client) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	if c.Sleep != nil {
		return c.Sleep(ctx, d)
	}
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

func (c *Client) log() *zap.Logger {
	if c.Log != nil {
		return c.Log
	}
	return zap.NewNop()
}
