package rates

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/kassa/internal/common"
	"github.com/Veraticus/kassa/internal/model"
	"github.com/Veraticus/kassa/internal/service"
	"github.com/Veraticus/kassa/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	table *Table
	err   error
	calls int
}

func (f *stubFetcher) Fetch(_ context.Context, base model.Currency) (*Table, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	t := *f.table
	t.Base = base
	return &t, nil
}

type memoryCache struct {
	tables map[model.Currency]*Table
	mu     sync.Mutex
}

func newMemoryCache() *memoryCache {
	return &memoryCache{tables: make(map[model.Currency]*Table)}
}

func (c *memoryCache) Load(_ context.Context, base model.Currency) (*Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tables[base]
	if !ok {
		return nil, ErrCacheMiss
	}
	return t, nil
}

func (c *memoryCache) Store(_ context.Context, table *Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables[table.Base] = table
	return nil
}

var fastRetry = service.RetryOptions{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}

func liveTable() *Table {
	return &Table{Rates: map[model.Currency]decimal.Decimal{
		model.EUR: decimal.RequireFromString("1.08"),
		model.GEL: decimal.RequireFromString("0.37"),
	}}
}

func TestSyncer_Live(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cache := newMemoryCache()
	syncer := NewSyncer(&stubFetcher{table: liveTable()}, cache, db.Storage, fastRetry)

	result, err := syncer.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OriginLive, result.Origin)
	assert.False(t, result.Stale())
	assert.NoError(t, result.FetchErr)

	stored, err := db.Storage.GetSettings(context.Background())
	require.NoError(t, err)
	assert.True(t, stored.Rates[model.EUR].Equal(decimal.RequireFromString("1.08")))
	assert.True(t, stored.Rates[model.USD].Equal(decimal.NewFromInt(1)))

	_, err = cache.Load(context.Background(), model.USD)
	assert.NoError(t, err, "live rates are cached")
}

func TestSyncer_FallsBackToCache(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cache := newMemoryCache()
	require.NoError(t, cache.Store(context.Background(), &Table{
		Base:  model.USD,
		Rates: map[model.Currency]decimal.Decimal{model.RUB: decimal.RequireFromString("0.011")},
	}))

	fetcher := &stubFetcher{err: &common.RetryableError{Err: common.ErrRateFetch, Retryable: true}}
	result, err := NewSyncer(fetcher, cache, db.Storage, fastRetry).Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, fetcher.calls, "retryable failures are retried")
	assert.Equal(t, OriginCache, result.Origin)
	assert.True(t, result.Stale())
	assert.True(t, errors.Is(result.FetchErr, common.ErrRateFetch))

	stored, err := db.Storage.GetSettings(context.Background())
	require.NoError(t, err)
	assert.True(t, stored.Rates[model.RUB].Equal(decimal.RequireFromString("0.011")))
}

func TestSyncer_FallsBackToStored(t *testing.T) {
	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{
		Ledger: testutil.NewLedger().Rates(model.EUR, "1.1"),
	})

	fetcher := &stubFetcher{err: &common.RetryableError{Err: common.ErrRateFetch}}
	result, err := NewSyncer(fetcher, nil, db.Storage, fastRetry).Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, fetcher.calls, "non-retryable failures stop immediately")
	assert.Equal(t, OriginStored, result.Origin)
	assert.True(t, result.Settings.Rates[model.EUR].Equal(decimal.RequireFromString("1.1")))
}

func TestSyncer_PartialTableKeepsKnownRates(t *testing.T) {
	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{
		Ledger: testutil.NewLedger().
			Rates(model.EUR, "1.08").
			Rates(model.GEL, "0.37"),
	})

	fetcher := &stubFetcher{table: &Table{Rates: map[model.Currency]decimal.Decimal{
		model.EUR: decimal.RequireFromString("1.1"),
	}}}
	result, err := NewSyncer(fetcher, nil, db.Storage, fastRetry).Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OriginLive, result.Origin)

	stored, err := db.Storage.GetSettings(context.Background())
	require.NoError(t, err)
	assert.True(t, stored.Rates[model.EUR].Equal(decimal.RequireFromString("1.1")), "quoted rates are replaced")
	gel, ok := stored.Rate(model.GEL)
	require.True(t, ok, "unquoted currencies keep their rate")
	assert.True(t, gel.Equal(decimal.RequireFromString("0.37")))
}

func TestTable_Apply(t *testing.T) {
	settings := model.DefaultSettings()
	table := &Table{
		Base: model.GEL,
		Rates: map[model.Currency]decimal.Decimal{
			model.GEL: decimal.RequireFromString("7"),
			model.USD: decimal.RequireFromString("2.7"),
		},
	}

	applied := table.Apply(settings)
	assert.Equal(t, model.GEL, applied.BaseCurrency)
	assert.True(t, applied.Rates[model.GEL].Equal(decimal.NewFromInt(1)))
	assert.True(t, applied.Rates[model.USD].Equal(decimal.RequireFromString("2.7")))
	assert.Equal(t, model.USD, settings.BaseCurrency, "input is not modified")
}

func TestTable_ApplyRebasesUnquotedRates(t *testing.T) {
	settings := model.Settings{
		BaseCurrency: model.USD,
		Rates: map[model.Currency]decimal.Decimal{
			model.USD: decimal.NewFromInt(1),
			model.EUR: decimal.RequireFromString("1.2"),
			model.GEL: decimal.RequireFromString("0.4"),
		},
	}
	table := &Table{
		Base:  model.EUR,
		Rates: map[model.Currency]decimal.Decimal{model.USD: decimal.RequireFromString("0.8")},
	}

	applied := table.Apply(settings)
	assert.Equal(t, model.EUR, applied.BaseCurrency)
	assert.True(t, applied.Rates[model.EUR].Equal(decimal.NewFromInt(1)))
	assert.True(t, applied.Rates[model.USD].Equal(decimal.RequireFromString("0.8")))
	assert.True(t, applied.Rates[model.GEL].Equal(decimal.RequireFromString("0.333333333333")),
		"GEL is carried over through the old base")
	assert.True(t, settings.Rates[model.GEL].Equal(decimal.RequireFromString("0.4")), "input is not modified")
}
