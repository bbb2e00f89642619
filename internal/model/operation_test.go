package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestOperationJSONRoundTrip(t *testing.T) {
	original := Operation{
		Seq:        42,
		Op:         OpSwap,
		MarketID:   "usdc-lend",
		Maturity:   1735689600,
		AccountID:  "trader-1",
		TickLower:  -120,
		TickUpper:  120,
		Amount:     "150.25",
		PriceLimit: "0.9995",
	}

	b, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded Operation
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round-trip mismatch: %+v != %+v", original, decoded)
	}
}

func TestOperationResultJSONRoundTrip(t *testing.T) {
	original := OperationResult{
		Seq:           42,
		Op:            OpSwap,
		VammID:        "0xabc123",
		MarketID:      "usdc-lend",
		Maturity:      1735689600,
		Status:        StatusOK,
		FixedDelta:    "0.59991",
		VariableDelta: "-0.3",
		Remaining:     "0",
		CurrentPrice:  "0.99970008997300809757",
		CurrentTick:   -6,
		AppliedAt:     1700000000,
	}

	b, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded OperationResult
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round-trip mismatch: %+v != %+v", original, decoded)
	}
}
