package vamm

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRegistryKeysInstancesByMarketAndMaturity(t *testing.T) {
	reg := NewRegistry(nil)
	cfg := Config{Now: func() uint64 { return testStart }}
	maturity := testStart + secondsPerYear

	if _, err := reg.Create("usdc-lend", maturity, decimal.New(1, 0), 1, cfg); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := reg.Create("usdc-lend", maturity, decimal.New(1, 0), 1, cfg); !errors.Is(err, ErrDuplicateInstance) {
		t.Fatalf("duplicate create: got %v", err)
	}

	// Same market at a different maturity is an independent instance.
	other, err := reg.Create("usdc-lend", maturity+86400, decimal.New(1, 0), 1, cfg)
	if err != nil {
		t.Fatalf("create second maturity: %v", err)
	}
	if other.Maturity() != maturity+86400 {
		t.Fatalf("second instance maturity %d", other.Maturity())
	}

	if !reg.Has("usdc-lend", maturity) {
		t.Fatal("existing pair not found")
	}
	if _, err := reg.Get("usdc-lend", maturity+1); !errors.Is(err, ErrUnknownInstance) {
		t.Fatalf("unknown pair: got %v", err)
	}

	if DeriveInstanceID("usdc-lend", maturity) == DeriveInstanceID("usdc-lend", maturity+86400) {
		t.Fatal("distinct maturities must derive distinct ids")
	}
}
