package application

import (
	"context"
	"errors"
	"time"

	"github.com/fvsutils/closings/internal/domain"
)

type fakeFetcher struct {
	quotes  map[string]domain.Quote
	failing map[string]error
	calls   []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, code string) (domain.Quote, error) {
	f.calls = append(f.calls, code)
	if err, ok := f.failing[code]; ok {
		return domain.Quote{}, err
	}
	if q, ok := f.quotes[code]; ok {
		return q, nil
	}
	return domain.Quote{}, errors.New("unexpected code " + code)
}

type fakeRepo struct {
	pingErr error
	saveErr error
	saved   [][]domain.Quote
	pings   int
}

func (r *fakeRepo) Ping(ctx context.Context) error {
	r.pings++
	return r.pingErr
}

func (r *fakeRepo) Save(ctx context.Context, quotes []domain.Quote) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, quotes)
	return nil
}

type fakeSleeper struct {
	slept []time.Duration
}

func (s *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.slept = append(s.slept, d)
	return nil
}

func quoteFor(code string, value float64) domain.Quote {
	return domain.Quote{Code: code, Date: "2025-08-28", Value: value}
}
