package main

import (
	"testing"
	"time"

	"github.com/iho/golend/internal/adapter/oracle"
	"github.com/iho/golend/internal/infrastructure/config"
)

func TestNewRateOracle(t *testing.T) {
	fixed := newRateOracle(&config.Config{OracleFixedRate: 9_000_000}, nil)
	if _, ok := fixed.(*oracle.FixedOracle); !ok {
		t.Fatalf("expected FixedOracle when ORACLE_URL is empty, got %T", fixed)
	}

	live := newRateOracle(&config.Config{
		OracleURL:      "http://rates.internal/v1/spot",
		OracleTimeout:  5 * time.Second,
		OracleCacheTTL: 30 * time.Second,
	}, nil)
	if _, ok := live.(*oracle.HTTPOracle); !ok {
		t.Fatalf("expected HTTPOracle when ORACLE_URL is set, got %T", live)
	}
}
