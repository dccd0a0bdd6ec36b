package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/iho/golend/internal/domain"
	"github.com/iho/golend/internal/usecase"
)

const (
	sellRateCacheKey = "oracle:sell_rate"
	buyRateCacheKey  = "oracle:buy_rate"

	maxFetchElapsed = 3 * time.Second
)

// rateResponse is the upstream price feed's JSON body. Rates are quoted in
// base-currency cents per 100M sats.
type rateResponse struct {
	SellRateCents int64 `json:"sell_rate_cents"`
	BuyRateCents  int64 `json:"buy_rate_cents"`
}

// HTTPOracle fetches conversion rates from an upstream price feed and caches
// them for a short freshness window. When neither the feed nor the cache can
// produce a rate it returns domain.ErrRateUnavailable: lending decisions are
// never made on a stale or guessed price.
type HTTPOracle struct {
	url      string
	client   *http.Client
	cache    usecase.Cache
	cacheTTL time.Duration
}

// NewHTTPOracle creates a new HTTPOracle. The cache is optional.
func NewHTTPOracle(url string, timeout time.Duration, cache usecase.Cache, cacheTTL time.Duration) *HTTPOracle {
	return &HTTPOracle{
		url:      url,
		client:   &http.Client{Timeout: timeout},
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// SellRate returns the rate at which collateral is valued and sold.
func (o *HTTPOracle) SellRate(ctx context.Context) (int64, error) {
	return o.rate(ctx, sellRateCacheKey, func(r rateResponse) int64 { return r.SellRateCents })
}

// BuyRate returns the rate at which the asset is bought.
func (o *HTTPOracle) BuyRate(ctx context.Context) (int64, error) {
	return o.rate(ctx, buyRateCacheKey, func(r rateResponse) int64 { return r.BuyRateCents })
}

func (o *HTTPOracle) rate(ctx context.Context, cacheKey string, pick func(rateResponse) int64) (int64, error) {
	if o.cache != nil {
		if cached, err := o.cache.Get(ctx, cacheKey); err == nil {
			if rate, err := strconv.ParseInt(cached, 10, 64); err == nil && rate > 0 {
				return rate, nil
			}
		}
	}

	resp, err := o.fetch(ctx)
	if err != nil {
		return 0, domain.ErrRateUnavailable
	}

	rate := pick(resp)
	if rate <= 0 {
		return 0, domain.ErrRateUnavailable
	}

	if o.cache != nil {
		_ = o.cache.Set(ctx, cacheKey, strconv.FormatInt(rate, 10), o.cacheTTL)
	}

	return rate, nil
}

// fetch retrieves the rate document, retrying transient failures with
// exponential backoff for at most a few seconds.
func (o *HTTPOracle) fetch(ctx context.Context) (rateResponse, error) {
	var result rateResponse

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := o.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("price feed returned %d", resp.StatusCode)
		}

		return json.NewDecoder(resp.Body).Decode(&result)
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxFetchElapsed

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return rateResponse{}, err
	}

	return result, nil
}

// FixedOracle serves a constant rate. Development and test use only.
type FixedOracle struct {
	Rate   int64
	Spread int64
}

// NewFixedOracle creates a new FixedOracle.
func NewFixedOracle(rate int64) *FixedOracle {
	return &FixedOracle{Rate: rate}
}

// SellRate returns the fixed rate.
func (o *FixedOracle) SellRate(ctx context.Context) (int64, error) {
	if o.Rate <= 0 {
		return 0, domain.ErrRateUnavailable
	}
	return o.Rate, nil
}

// BuyRate returns the fixed rate plus the configured spread.
func (o *FixedOracle) BuyRate(ctx context.Context) (int64, error) {
	if o.Rate <= 0 {
		return 0, domain.ErrRateUnavailable
	}
	return o.Rate + o.Spread, nil
}
