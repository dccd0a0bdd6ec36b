package oracle

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/iho/golend/internal/domain"
)

type memoryCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string]string)}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", errors.New("cache miss")
	}
	return v, nil
}

func (c *memoryCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func TestHTTPOracle_SellRate(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sell_rate_cents": 9000000, "buy_rate_cents": 9050000}`))
	}))
	defer server.Close()

	cache := newMemoryCache()
	o := NewHTTPOracle(server.URL, time.Second, cache, 30*time.Second)

	rate, err := o.SellRate(context.Background())
	if err != nil {
		t.Fatalf("SellRate() error = %v", err)
	}
	if rate != 9_000_000 {
		t.Errorf("SellRate() = %d, want 9000000", rate)
	}

	// second call is served from cache
	rate, err = o.SellRate(context.Background())
	if err != nil {
		t.Fatalf("SellRate() second call error = %v", err)
	}
	if rate != 9_000_000 {
		t.Errorf("SellRate() second call = %d, want 9000000", rate)
	}
	if calls != 1 {
		t.Errorf("upstream calls = %d, want 1", calls)
	}
}

func TestHTTPOracle_BuyRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sell_rate_cents": 9000000, "buy_rate_cents": 9050000}`))
	}))
	defer server.Close()

	o := NewHTTPOracle(server.URL, time.Second, nil, 0)

	rate, err := o.BuyRate(context.Background())
	if err != nil {
		t.Fatalf("BuyRate() error = %v", err)
	}
	if rate != 9_050_000 {
		t.Errorf("BuyRate() = %d, want 9050000", rate)
	}
}

func TestHTTPOracle_FailsClosed(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "upstream error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			},
		},
		{
			name: "zero rate",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"sell_rate_cents": 0, "buy_rate_cents": 0}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			o := NewHTTPOracle(server.URL, time.Second, nil, 0)

			_, err := o.SellRate(context.Background())
			if !errors.Is(err, domain.ErrRateUnavailable) {
				t.Errorf("SellRate() error = %v, want ErrRateUnavailable", err)
			}
		})
	}
}

func TestHTTPOracle_ServesCacheWhenUpstreamDown(t *testing.T) {
	cache := newMemoryCache()
	_ = cache.Set(context.Background(), sellRateCacheKey, "8500000", 0)

	o := NewHTTPOracle("http://127.0.0.1:1", 100*time.Millisecond, cache, 30*time.Second)

	rate, err := o.SellRate(context.Background())
	if err != nil {
		t.Fatalf("SellRate() error = %v", err)
	}
	if rate != 8_500_000 {
		t.Errorf("SellRate() = %d, want 8500000", rate)
	}
}

func TestFixedOracle(t *testing.T) {
	o := NewFixedOracle(9_000_000)

	sell, err := o.SellRate(context.Background())
	if err != nil {
		t.Fatalf("SellRate() error = %v", err)
	}
	if sell != 9_000_000 {
		t.Errorf("SellRate() = %d, want 9000000", sell)
	}

	o.Spread = 50_000
	buy, err := o.BuyRate(context.Background())
	if err != nil {
		t.Fatalf("BuyRate() error = %v", err)
	}
	if buy != 9_050_000 {
		t.Errorf("BuyRate() = %d, want 9050000", buy)
	}

	zero := NewFixedOracle(0)
	if _, err := zero.SellRate(context.Background()); !errors.Is(err, domain.ErrRateUnavailable) {
		t.Errorf("SellRate() on zero rate error = %v, want ErrRateUnavailable", err)
	}
}
