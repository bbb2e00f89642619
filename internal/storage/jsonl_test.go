package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"rateVamm/internal/model"
)

func TestJsonlStorageAppendsResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.jsonl")
	store := NewJsonlStorage(path)

	first := []model.OperationResult{
		{Seq: 1, Op: model.OpCreate, Status: model.StatusOK},
		{Seq: 2, Op: model.OpMint, Status: model.StatusOK, Executed: "20000"},
	}
	second := []model.OperationResult{
		{Seq: 3, Op: model.OpSwap, Status: model.StatusError, Error: "zero amount"},
	}

	if err := store.PutResults(first); err != nil {
		t.Fatalf("put first batch: %v", err)
	}
	if err := store.PutResults(second); err != nil {
		t.Fatalf("put second batch: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer file.Close()

	var decoded []model.OperationResult
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var res model.OperationResult
		if err := json.Unmarshal(scanner.Bytes(), &res); err != nil {
			t.Fatalf("parse line: %v", err)
		}
		decoded = append(decoded, res)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan output: %v", err)
	}

	if len(decoded) != 3 {
		t.Fatalf("got %d lines, want 3", len(decoded))
	}
	if decoded[1].Executed != "20000" {
		t.Fatalf("mint line executed %q", decoded[1].Executed)
	}
	if decoded[2].Status != model.StatusError || decoded[2].Error != "zero amount" {
		t.Fatalf("error line not preserved: %+v", decoded[2])
	}
}

func TestJsonlStorageWritesSnapshotsBeside(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results.jsonl")
	store := NewJsonlStorage(path)

	snap := model.VammSnapshot{
		VammID:          "0xabc",
		MarketID:        "usdc-lend",
		Maturity:        1735689600,
		ActiveLiquidity: "1000",
	}
	if err := store.PutSnapshot(snap); err != nil {
		t.Fatalf("put snapshot: %v", err)
	}

	data, err := os.ReadFile(path + ".snapshots")
	if err != nil {
		t.Fatalf("read snapshots: %v", err)
	}
	var decoded model.VammSnapshot
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("parse snapshot: %v", err)
	}
	if decoded.MarketID != snap.MarketID || decoded.ActiveLiquidity != snap.ActiveLiquidity {
		t.Fatalf("snapshot not preserved: %+v", decoded)
	}
}
