package rates

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/kassa/internal/common"
	"github.com/Veraticus/kassa/internal/model"
	"github.com/Veraticus/kassa/internal/service"
)

// Origin says where the rates applied by a sync came from.
type Origin string

// Rate origins, from freshest to stalest.
const (
	OriginLive   Origin = "live"
	OriginCache  Origin = "cache"
	OriginStored Origin = "stored"
)

// SyncResult describes the outcome of a sync.
type SyncResult struct {
	// FetchErr is the reason live rates could not be used, if any.
	FetchErr error
	Settings model.Settings
	Origin   Origin
}

// Stale reports whether the applied rates are not freshly fetched.
func (r *SyncResult) Stale() bool {
	return r.Origin != OriginLive
}

// Syncer refreshes the stored exchange rates.
type Syncer struct {
	fetcher Fetcher
	cache   Cache
	storage service.Storage
	retry   service.RetryOptions
}

// NewSyncer creates a syncer. cache may be nil.
func NewSyncer(fetcher Fetcher, cache Cache, storage service.Storage, retry service.RetryOptions) *Syncer {
	return &Syncer{
		fetcher: fetcher,
		cache:   cache,
		storage: storage,
		retry:   retry,
	}
}

// Sync fetches live rates for the stored base currency and saves them. When
// fetching fails it falls back to the cached table and then to whatever is
// already stored; only storage failures are returned as errors.
func (s *Syncer) Sync(ctx context.Context) (*SyncResult, error) {
	current, err := s.storage.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	base := current.BaseCurrency

	var table *Table
	fetchErr := common.WithRetry(ctx, func(ctx context.Context) error {
		var fetchErr error
		table, fetchErr = s.fetcher.Fetch(ctx, base)
		return fetchErr
	}, s.retry)

	if fetchErr == nil {
		if s.cache != nil {
			if err := s.cache.Store(ctx, table); err != nil {
				slog.Warn("failed to cache exchange rates", "error", err)
			}
		}
		return s.apply(ctx, *current, table, OriginLive, nil)
	}

	common.LogWarn("exchange rate fetch failed, falling back", common.Fields{
		"base":  base,
		"error": fetchErr.Error(),
	})

	if s.cache != nil {
		cached, err := s.cache.Load(ctx, base)
		if err == nil {
			return s.apply(ctx, *current, cached, OriginCache, fetchErr)
		}
		slog.Debug("no cached exchange rates", "base", base, "error", err)
	}

	return &SyncResult{
		Settings: *current,
		Origin:   OriginStored,
		FetchErr: fetchErr,
	}, nil
}

func (s *Syncer) apply(ctx context.Context, current model.Settings, table *Table, origin Origin, fetchErr error) (*SyncResult, error) {
	updated := table.Apply(current)
	if err := s.storage.SaveSettings(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to save exchange rates: %w", err)
	}

	slog.Info("exchange rates updated", "base", updated.BaseCurrency, "currencies", len(updated.Rates), "origin", origin)
	return &SyncResult{
		Settings: updated,
		Origin:   origin,
		FetchErr: fetchErr,
	}, nil
}
