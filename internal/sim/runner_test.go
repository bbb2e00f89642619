package sim

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"rateVamm/internal/model"
)

const testStart uint64 = 1_700_000_000

type memoryStorage struct {
	results   []model.OperationResult
	snapshots []model.VammSnapshot
}

func (m *memoryStorage) PutResults(results []model.OperationResult) error {
	m.results = append(m.results, results...)
	return nil
}

func (m *memoryStorage) PutSnapshot(snapshot model.VammSnapshot) error {
	m.snapshots = append(m.snapshots, snapshot)
	return nil
}

func writeScript(t *testing.T, ops []model.Operation) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.jsonl")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create script: %v", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	for _, op := range ops {
		if err := enc.Encode(op); err != nil {
			t.Fatalf("encode op: %v", err)
		}
	}
	return path
}

func testScript() []model.Operation {
	maturity := testStart + 31536000
	return []model.Operation{
		{Seq: 1, Op: model.OpCreate, MarketID: "usdc-lend", Maturity: maturity, InitialPrice: "1", TickSpacing: 1},
		{Seq: 2, Op: model.OpMint, MarketID: "usdc-lend", Maturity: maturity, AccountID: "lp", TickLower: -10, TickUpper: 10, Amount: "20000"},
		{Seq: 2, Op: model.OpMint, MarketID: "usdc-lend", Maturity: maturity, AccountID: "lp", TickLower: -10, TickUpper: 10, Amount: "20000"},
		{Seq: 3, Op: model.OpGrow, MarketID: "usdc-lend", Maturity: maturity, CapacityTarget: 4},
		{Seq: 4, Op: model.OpAdvance, Seconds: 100},
		{Seq: 5, Op: model.OpSwap, MarketID: "usdc-lend", Maturity: maturity, AccountID: "trader", TickLower: -10, TickUpper: 10, Amount: "0.3"},
		{Seq: 6, Op: model.OpTwap, MarketID: "usdc-lend", Maturity: maturity, LookbackSeconds: 100},
		{Seq: 7, Op: model.OpMint, MarketID: "usdc-lend", Maturity: maturity, AccountID: "lp", TickLower: 5, TickUpper: 5, Amount: "1"},
	}
}

func TestRunnerReplaysScript(t *testing.T) {
	sink := &memoryStorage{}
	runner := NewRunner(RunConfig{
		ScriptPath:  writeScript(t, testScript()),
		BatchSize:   3,
		StartTime:   testStart,
		OracleIndex: decimal.New(1, 0),
	}, sink, nil)

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	// The duplicate seq 2 line is skipped, everything else is recorded.
	if len(sink.results) != 7 {
		t.Fatalf("got %d results, want 7", len(sink.results))
	}

	bySeq := make(map[uint64]model.OperationResult, len(sink.results))
	for _, res := range sink.results {
		bySeq[res.Seq] = res
	}

	for _, seq := range []uint64{1, 2, 3, 4, 5, 6} {
		if bySeq[seq].Status != model.StatusOK {
			t.Fatalf("seq %d status %q: %s", seq, bySeq[seq].Status, bySeq[seq].Error)
		}
	}
	if bySeq[7].Status != model.StatusError {
		t.Fatalf("degenerate mint recorded status %q, want error", bySeq[7].Status)
	}

	if got := bySeq[5].VariableDelta; got != "-0.3" {
		t.Fatalf("swap variable delta %q, want -0.3", got)
	}
	if got := bySeq[5].Remaining; got != "0" {
		t.Fatalf("swap remaining %q, want 0", got)
	}
	// Tick 0 held for the whole window before the swap.
	if got := bySeq[6].TwapPrice; got != "1" {
		t.Fatalf("twap price %q, want 1", got)
	}

	if len(sink.snapshots) != 1 {
		t.Fatalf("got %d snapshots, want 1", len(sink.snapshots))
	}
	snap := sink.snapshots[0]
	if snap.MarketID != "usdc-lend" {
		t.Fatalf("snapshot market %q", snap.MarketID)
	}
	if snap.ActiveLiquidity != "1000" {
		t.Fatalf("snapshot active liquidity %q, want 1000", snap.ActiveLiquidity)
	}
	if len(snap.Ticks) != 2 {
		t.Fatalf("snapshot has %d tick entries, want 2", len(snap.Ticks))
	}
	if len(snap.Positions) != 1 {
		t.Fatalf("snapshot has %d positions, want 1", len(snap.Positions))
	}
}

func TestRunnerResumesFromCheckpoint(t *testing.T) {
	script := writeScript(t, testScript())
	checkpoint := filepath.Join(t.TempDir(), "checkpoint.json")
	cfg := RunConfig{
		ScriptPath:        script,
		BatchSize:         3,
		CheckpointPath:    checkpoint,
		CheckpointEnabled: true,
		StartTime:         testStart,
		OracleIndex:       decimal.New(1, 0),
	}

	first := &memoryStorage{}
	if err := NewRunner(cfg, first, nil).Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(first.results) != 7 {
		t.Fatalf("first run recorded %d results", len(first.results))
	}

	cp, ok, err := NewCheckpointStore(checkpoint, true).Load()
	if err != nil || !ok {
		t.Fatalf("load checkpoint: ok=%v err=%v", ok, err)
	}
	if cp.LastAppliedSeq != 7 {
		t.Fatalf("checkpoint at seq %d, want 7", cp.LastAppliedSeq)
	}

	// A rerun over the same script applies nothing new.
	second := &memoryStorage{}
	if err := NewRunner(cfg, second, nil).Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(second.results) != 0 {
		t.Fatalf("resumed run reapplied %d operations", len(second.results))
	}
	if len(second.snapshots) != 0 {
		t.Fatalf("resumed run wrote %d snapshots with no instances", len(second.snapshots))
	}
}

func TestRunnerRejectsBadConfig(t *testing.T) {
	runner := NewRunner(RunConfig{ScriptPath: "nowhere.jsonl", BatchSize: 0}, &memoryStorage{}, nil)
	if err := runner.Run(context.Background()); err == nil {
		t.Fatal("zero batch size must be rejected")
	}

	runner = NewRunner(RunConfig{ScriptPath: filepath.Join(t.TempDir(), "missing.jsonl"), BatchSize: 1}, &memoryStorage{}, nil)
	if err := runner.Run(context.Background()); err == nil {
		t.Fatal("missing script must be rejected")
	}
}

func TestDriftingRateOracle(t *testing.T) {
	clock := NewClock(testStart)
	oracle := DriftingRateOracle{
		Start:     decimal.New(1, 0),
		APY:       decimal.RequireFromString("0.1"),
		StartTime: testStart,
		Clock:     clock,
	}

	index, err := oracle.CurrentIndex()
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if !index.Equal(decimal.New(1, 0)) {
		t.Fatalf("index at start %s, want 1", index)
	}

	clock.Advance(secondsPerYear / 2)
	index, err = oracle.CurrentIndex()
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if !index.Equal(decimal.RequireFromString("1.05")) {
		t.Fatalf("index after half a year %s, want 1.05", index)
	}
}
