package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/kassa/internal/common"
	"github.com/Veraticus/kassa/internal/model"
	"github.com/shopspring/decimal"
)

// DefaultTimeout bounds a single rate request.
const DefaultTimeout = 8 * time.Second

// Fetcher retrieves a fresh rate table for base.
type Fetcher interface {
	Fetch(ctx context.Context, base model.Currency) (*Table, error)
}

// HTTPFetcher reads rates from a JSON endpoint shaped like
//
//	{"base": "USD", "date": "2024-05-01", "rates": {"EUR": 0.93, "GEL": 2.68}}
//
// where each rate is the amount of that currency one unit of base buys. The
// base currency is passed as the "base" query parameter.
type HTTPFetcher struct {
	http     *http.Client
	endpoint string
}

// NewHTTPFetcher creates a fetcher for endpoint with the given request timeout.
func NewHTTPFetcher(endpoint string, timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPFetcher{
		http:     &http.Client{Timeout: timeout},
		endpoint: endpoint,
	}
}

type ratesResponse struct {
	Rates map[string]decimal.Decimal `json:"rates"`
	Base  string                     `json:"base"`
	Date  string                     `json:"date"`
}

// Fetch requests the table for base. Currencies outside the supported set and
// non-positive quotes are ignored.
func (f *HTTPFetcher) Fetch(ctx context.Context, base model.Currency) (*Table, error) {
	u, err := url.Parse(f.endpoint)
	if err != nil {
		return nil, &common.RetryableError{Err: fmt.Errorf("%w: bad endpoint: %w", common.ErrRateFetch, err)}
	}
	q := u.Query()
	q.Set("base", string(base))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &common.RetryableError{Err: fmt.Errorf("%w: %w", common.ErrRateFetch, err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "kassa/1.0")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, &common.RetryableError{Err: fmt.Errorf("%w: %w", common.ErrRateFetch, err), Retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &common.RetryableError{
			Err:       fmt.Errorf("%w: %w", common.ErrRateFetch, common.ErrRateLimit),
			Retryable: true,
			After:     retryAfter(resp.Header.Get("Retry-After"), time.Now()),
		}
	case resp.StatusCode >= 500:
		return nil, &common.RetryableError{Err: fmt.Errorf("%w: http %d", common.ErrRateFetch, resp.StatusCode), Retryable: true}
	case resp.StatusCode != http.StatusOK:
		return nil, &common.RetryableError{Err: fmt.Errorf("%w: http %d", common.ErrRateFetch, resp.StatusCode)}
	}

	var raw ratesResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&raw); err != nil {
		return nil, &common.RetryableError{Err: fmt.Errorf("%w: decode: %w", common.ErrRateFetch, err)}
	}

	return tableFromResponse(raw, base)
}

// retryAfter reads a Retry-After header given in seconds or as an HTTP date.
func retryAfter(header string, now time.Time) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}

func tableFromResponse(raw ratesResponse, base model.Currency) (*Table, error) {
	if raw.Base != "" && !strings.EqualFold(raw.Base, string(base)) {
		return nil, &common.RetryableError{Err: fmt.Errorf("%w: asked for base %s, got %s", common.ErrRateFetch, base, raw.Base)}
	}

	table := &Table{
		Base:      base,
		Rates:     map[model.Currency]decimal.Decimal{base: decimal.NewFromInt(1)},
		FetchedAt: time.Now().UTC(),
	}
	for code, quote := range raw.Rates {
		c, ok := model.ParseCurrency(code)
		if !ok || c == base || !quote.IsPositive() {
			continue
		}
		// The endpoint quotes c per base; the ledger stores base per c.
		table.Rates[c] = decimal.NewFromInt(1).DivRound(quote, 12)
	}

	if len(table.Rates) == 1 {
		return nil, &common.RetryableError{Err: errors.Join(common.ErrRateFetch, common.ErrRateUnavailable)}
	}
	return table, nil
}
