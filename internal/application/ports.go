package application

import (
	"context"
	"time"

	"github.com/fvsutils/closings/internal/domain"
)

// QuoteFetcher fetches today's quote for a single instrument code.
type QuoteFetcher interface {
	Fetch(ctx context.Context, code string) (domain.Quote, error)
}

// ClosingWriter is the store surface the collection run needs.
type ClosingWriter interface {
	Ping(ctx context.Context) error
	Save(ctx context.Context, quotes []domain.Quote) error
}

// ClosingReader is the store surface the read API needs.
type ClosingReader interface {
	Latest(ctx context.Context) ([]domain.Closing, error)
	History(ctx context.Context, code string, limit int) ([]domain.Closing, error)
	Stats(ctx context.Context, code string) (domain.Stats, error)
	Codes(ctx context.Context) ([]string, error)
}

// Sleeper suspends the caller; injected so tests can observe pacing
// without waiting for it.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}
