package rates

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Veraticus/kassa/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatesKey(t *testing.T) {
	assert.Equal(t, "kassa:rates:GEL", ratesKey(model.GEL))
}

func TestDecodeTable(t *testing.T) {
	original := &Table{
		Base:      model.EUR,
		FetchedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Rates:     map[model.Currency]decimal.Decimal{model.USD: decimal.RequireFromString("0.925")},
	}
	data, err := json.Marshal(original)
	require.NoError(t, err)

	decoded, err := decodeTable(data)
	require.NoError(t, err)
	assert.Equal(t, model.EUR, decoded.Base)
	assert.True(t, decoded.Rates[model.USD].Equal(decimal.RequireFromString("0.925")))

	_, err = decodeTable([]byte(`{"base":"JPY","rates":{"USD":"1"}}`))
	assert.ErrorIs(t, err, ErrCacheMiss)

	_, err = decodeTable([]byte(`not json`))
	assert.Error(t, err)
}

func TestRedisCache_Unreachable(t *testing.T) {
	// Port 1 on loopback refuses connections, so the client fails fast.
	cache := NewRedisCache("127.0.0.1:1", time.Minute)
	defer func() { _ = cache.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := cache.Load(ctx, model.USD)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)

	assert.Error(t, cache.Store(ctx, &Table{Base: model.USD}))
}
