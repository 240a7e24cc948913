package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fvsutils/closings/internal/domain"
	"github.com/stretchr/testify/require"
)

func newService(f *fakeFetcher, r *fakeRepo, s *fakeSleeper, pacing Pacing) *CollectionService {
	return NewCollectionService(f, r, pacing, WithSleeper(s))
}

func Test_FetchQuotes_InputOrder(t *testing.T) {
	t.Parallel()
	f := &fakeFetcher{quotes: map[string]domain.Quote{
		"PETR4": quoteFor("PETR4", 30.15),
		"VALE3": quoteFor("VALE3", 68.02),
		"ITUB4": quoteFor("ITUB4", 27.40),
	}}
	sl := &fakeSleeper{}
	svc := newService(f, &fakeRepo{}, sl, Pacing{InterCodeDelay: 5 * time.Second})

	quotes, err := svc.FetchQuotes(context.Background(), []string{"PETR4", "VALE3", "ITUB4"})
	require.NoError(t, err)
	require.Equal(t, []string{"PETR4", "VALE3", "ITUB4"}, f.calls)
	require.Len(t, quotes, 3)
	require.Equal(t, "PETR4", quotes[0].Code)
	require.Equal(t, "ITUB4", quotes[2].Code)

	// inter-code delay between each consecutive pair, not after the last
	require.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, sl.slept)
}

func Test_FetchQuotes_FailedCodeOmitted(t *testing.T) {
	t.Parallel()
	f := &fakeFetcher{
		quotes: map[string]domain.Quote{
			"AAA": quoteFor("AAA", 1.0),
			"CCC": quoteFor("CCC", 3.0),
		},
		failing: map[string]error{"BAD": errors.New("boom")},
	}
	svc := newService(f, &fakeRepo{}, &fakeSleeper{}, Pacing{})

	quotes, err := svc.FetchQuotes(context.Background(), []string{"AAA", "BAD", "CCC"})
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	require.Equal(t, "AAA", quotes[0].Code)
	require.Equal(t, "CCC", quotes[1].Code)
	// the failing code still did not stop the sequence
	require.Equal(t, []string{"AAA", "BAD", "CCC"}, f.calls)
}

func Test_CollectGroup_BatchPauses(t *testing.T) {
	t.Parallel()
	quotes := map[string]domain.Quote{}
	codes := []string{"A1", "A2", "A3", "A4", "A5", "A6", "A7"}
	for _, c := range codes {
		quotes[c] = quoteFor(c, 1.0)
	}
	f := &fakeFetcher{quotes: quotes}
	sl := &fakeSleeper{}
	svc := newService(f, &fakeRepo{}, sl, Pacing{
		BatchSize:      3,
		InterCodeDelay: time.Second,
		BatchPause:     3 * time.Second,
	})

	got, err := svc.collectGroup(context.Background(), codes, "stocks")
	require.NoError(t, err)
	require.Len(t, got, 7)

	// batches of 3,3,1: two inter-batch pauses, inter-code delays inside each batch
	var pauses, delays int
	for _, d := range sl.slept {
		switch d {
		case 3 * time.Second:
			pauses++
		case time.Second:
			delays++
		}
	}
	require.Equal(t, 2, pauses)
	require.Equal(t, 4, delays)
}

func Test_CollectGroup_BatchSizeCapped(t *testing.T) {
	t.Parallel()
	quotes := map[string]domain.Quote{}
	var codes []string
	for _, c := range []string{"B1", "B2", "B3", "B4", "B5", "B6"} {
		quotes[c] = quoteFor(c, 1.0)
		codes = append(codes, c)
	}
	f := &fakeFetcher{quotes: quotes}
	sl := &fakeSleeper{}
	// an oversized batch size still splits into chunks of at most 5
	svc := newService(f, &fakeRepo{}, sl, Pacing{BatchSize: 50, BatchPause: 3 * time.Second})

	got, err := svc.collectGroup(context.Background(), codes, "stocks")
	require.NoError(t, err)
	require.Len(t, got, 6)
	require.Equal(t, []time.Duration{3 * time.Second}, sl.slept)
}

func Test_Run_ConnectivityFailureAbortsBeforeFetch(t *testing.T) {
	t.Parallel()
	f := &fakeFetcher{quotes: map[string]domain.Quote{"PETR4": quoteFor("PETR4", 30.15)}}
	repo := &fakeRepo{pingErr: errors.New("connection refused")}
	svc := newService(f, repo, &fakeSleeper{}, Pacing{})

	_, err := svc.Run(context.Background(), []string{"PETR4"}, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrConnectivity)
	require.Empty(t, f.calls)
	require.Empty(t, repo.saved)
}

func Test_Run_EndToEnd(t *testing.T) {
	t.Parallel()
	f := &fakeFetcher{quotes: map[string]domain.Quote{
		"PETR4": quoteFor("PETR4", 30.15),
		"VALE3": quoteFor("VALE3", 68.02),
	}}
	repo := &fakeRepo{}
	svc := newService(f, repo, &fakeSleeper{}, Pacing{})

	sum, err := svc.Run(context.Background(), []string{"PETR4", "VALE3"}, nil)
	require.NoError(t, err)
	require.Equal(t, Summary{Total: 2, Stocks: 2, Funds: 0, Date: "2025-08-28"}, sum)
	require.Len(t, repo.saved, 1)
	require.Len(t, repo.saved[0], 2)
	require.InDelta(t, 30.15, repo.saved[0][0].Value, 1e-9)
	require.InDelta(t, 68.02, repo.saved[0][1].Value, 1e-9)
}

func Test_Run_StocksThenFunds(t *testing.T) {
	t.Parallel()
	f := &fakeFetcher{quotes: map[string]domain.Quote{
		"PETR4":  quoteFor("PETR4", 30.15),
		"HGLG11": quoteFor("HGLG11", 160.50),
	}}
	repo := &fakeRepo{}
	svc := newService(f, repo, &fakeSleeper{}, Pacing{})

	sum, err := svc.Run(context.Background(), []string{"PETR4"}, []string{"HGLG11"})
	require.NoError(t, err)
	require.Equal(t, []string{"PETR4", "HGLG11"}, f.calls)
	require.Equal(t, 1, sum.Stocks)
	require.Equal(t, 1, sum.Funds)
	require.Equal(t, 2, sum.Total)
}

func Test_Run_NothingCollectedSkipsSave(t *testing.T) {
	t.Parallel()
	f := &fakeFetcher{failing: map[string]error{"PETR4": errors.New("down")}}
	repo := &fakeRepo{}
	svc := newService(f, repo, &fakeSleeper{}, Pacing{})

	sum, err := svc.Run(context.Background(), []string{"PETR4"}, nil)
	require.NoError(t, err)
	require.Zero(t, sum.Total)
	require.Empty(t, repo.saved)
}

func Test_Run_StorageErrorPropagates(t *testing.T) {
	t.Parallel()
	f := &fakeFetcher{quotes: map[string]domain.Quote{"PETR4": quoteFor("PETR4", 30.15)}}
	repo := &fakeRepo{saveErr: errors.New("disk full")}
	svc := newService(f, repo, &fakeSleeper{}, Pacing{})

	_, err := svc.Run(context.Background(), []string{"PETR4"}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "save closings")
}

func Test_FetchQuotes_ContextCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &fakeFetcher{failing: map[string]error{"PETR4": context.Canceled}}
	svc := newService(f, &fakeRepo{}, &fakeSleeper{}, Pacing{})

	_, err := svc.FetchQuotes(ctx, []string{"PETR4", "VALE3"})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, []string{"PETR4"}, f.calls)
}
