package sim

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"rateVamm/internal/model"
	"rateVamm/internal/storage"
	"rateVamm/internal/vamm"
)

// RunConfig holds runtime settings for a replay.
type RunConfig struct {
	ScriptPath        string
	BatchSize         int
	CheckpointPath    string
	CheckpointEnabled bool

	// StartTime seeds the logical clock (unix seconds).
	StartTime uint64

	// Engine parameters applied to every instance the script creates.
	Spread          decimal.Decimal
	PriceImpactPhi  decimal.Decimal
	PriceImpactBeta decimal.Decimal

	// Rate oracle fixture: a start index, drifting at OracleAPY against
	// the logical clock. A zero APY yields a constant index.
	OracleIndex decimal.Decimal
	OracleAPY   decimal.Decimal
}

// Runner replays a JSONL operation script against a VAMM registry and writes
// results to storage.
type Runner struct {
	cfg        RunConfig
	registry   *vamm.Registry
	storage    storage.Storage
	logger     *zap.Logger
	clock      *Clock
	oracle     vamm.RateOracle
	checkpoint *CheckpointStore
	seen       map[uint64]struct{}
	instances  []*vamm.VAMM
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, storageSink storage.Storage, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := NewClock(cfg.StartTime)
	var oracle vamm.RateOracle
	if cfg.OracleAPY.IsZero() {
		oracle = ConstantRateOracle{Index: cfg.OracleIndex}
	} else {
		oracle = DriftingRateOracle{
			Start:     cfg.OracleIndex,
			APY:       cfg.OracleAPY,
			StartTime: cfg.StartTime,
			Clock:     clock,
		}
	}
	return &Runner{
		cfg:        cfg,
		registry:   vamm.NewRegistry(logger),
		storage:    storageSink,
		logger:     logger,
		clock:      clock,
		oracle:     oracle,
		checkpoint: NewCheckpointStore(cfg.CheckpointPath, cfg.CheckpointEnabled),
		seen:       make(map[uint64]struct{}),
	}
}

// Run executes the replay loop.
func (r *Runner) Run(ctx context.Context) error {
	if r.storage == nil {
		return fmt.Errorf("storage is nil")
	}
	if r.cfg.BatchSize <= 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}

	file, err := os.Open(r.cfg.ScriptPath)
	if err != nil {
		return fmt.Errorf("open script: %w", err)
	}
	defer file.Close()

	var resumeAfter uint64
	if cp, ok, err := r.checkpoint.Load(); err != nil {
		return err
	} else if ok {
		resumeAfter = cp.LastAppliedSeq
		r.logger.Info("resume from checkpoint", zap.Uint64("last_applied_seq", resumeAfter))
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)

	batch := make([]model.OperationResult, 0, r.cfg.BatchSize)
	lineNo := 0
	applied := 0

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var op model.Operation
		if err := json.Unmarshal(line, &op); err != nil {
			return fmt.Errorf("parse script line %d: %w", lineNo, err)
		}
		if op.Seq <= resumeAfter || r.isDuplicate(op.Seq) {
			continue
		}

		result := r.apply(op)
		batch = append(batch, result)
		applied++

		if len(batch) >= r.cfg.BatchSize {
			if err := r.flush(batch, op.Seq); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	if len(batch) > 0 {
		if err := r.flush(batch, batch[len(batch)-1].Seq); err != nil {
			return err
		}
	}

	for _, instance := range r.instances {
		if err := r.storage.PutSnapshot(instance.Snapshot()); err != nil {
			return fmt.Errorf("store snapshot: %w", err)
		}
	}

	r.logger.Info("replay complete", zap.Int("applied", applied), zap.Int("instances", len(r.instances)))
	return nil
}

func (r *Runner) flush(batch []model.OperationResult, lastSeq uint64) error {
	if err := r.storage.PutResults(batch); err != nil {
		return fmt.Errorf("store results: %w", err)
	}
	if err := r.checkpoint.Save(lastSeq); err != nil {
		return err
	}
	return nil
}

func (r *Runner) isDuplicate(seq uint64) bool {
	if _, ok := r.seen[seq]; ok {
		return true
	}
	r.seen[seq] = struct{}{}
	return false
}

// apply executes one script operation. Engine-level failures are recorded as
// error results rather than aborting the replay.
func (r *Runner) apply(op model.Operation) model.OperationResult {
	result := model.OperationResult{
		Seq:       op.Seq,
		Op:        op.Op,
		MarketID:  op.MarketID,
		Maturity:  op.Maturity,
		Status:    model.StatusOK,
		AppliedAt: r.clock.Now(),
	}
	if op.MarketID != "" {
		result.VammID = vamm.DeriveInstanceID(op.MarketID, op.Maturity).Hex()
	}

	err := r.applyTo(&result, op)
	if err != nil {
		result.Status = model.StatusError
		result.Error = err.Error()
		r.logger.Warn("operation failed",
			zap.Uint64("seq", op.Seq),
			zap.String("op", op.Op),
			zap.Error(err),
		)
	}
	return result
}

func (r *Runner) applyTo(result *model.OperationResult, op model.Operation) error {
	switch op.Op {
	case model.OpAdvance:
		r.clock.Advance(op.Seconds)
		result.AppliedAt = r.clock.Now()
		return nil

	case model.OpCreate:
		initialPrice, err := decimal.NewFromString(op.InitialPrice)
		if err != nil {
			return fmt.Errorf("parse initial price: %w", err)
		}
		instance, err := r.registry.Create(op.MarketID, op.Maturity, initialPrice, op.TickSpacing, vamm.Config{
			Spread:          r.cfg.Spread,
			PriceImpactPhi:  r.cfg.PriceImpactPhi,
			PriceImpactBeta: r.cfg.PriceImpactBeta,
			RateOracle:      r.oracle,
			Now:             r.clock.Now,
			Logger:          r.logger,
		})
		if err != nil {
			return err
		}
		r.instances = append(r.instances, instance)
		result.CurrentPrice = instance.CurrentPrice().String()
		result.CurrentTick = instance.CurrentTick()
		return nil

	case model.OpMint:
		instance, err := r.registry.Get(op.MarketID, op.Maturity)
		if err != nil {
			return err
		}
		amount, err := decimal.NewFromString(op.Amount)
		if err != nil {
			return fmt.Errorf("parse amount: %w", err)
		}
		executed, err := instance.Mint(op.AccountID, op.TickLower, op.TickUpper, amount)
		if err != nil {
			return err
		}
		result.Executed = executed.String()
		result.CurrentPrice = instance.CurrentPrice().String()
		result.CurrentTick = instance.CurrentTick()
		return nil

	case model.OpSwap:
		instance, err := r.registry.Get(op.MarketID, op.Maturity)
		if err != nil {
			return err
		}
		amount, err := decimal.NewFromString(op.Amount)
		if err != nil {
			return fmt.Errorf("parse amount: %w", err)
		}
		limit := decimal.Zero
		if op.PriceLimit != "" {
			limit, err = decimal.NewFromString(op.PriceLimit)
			if err != nil {
				return fmt.Errorf("parse price limit: %w", err)
			}
		}
		swapResult, err := instance.Swap(vamm.SwapParams{
			TickLower:       op.TickLower,
			TickUpper:       op.TickUpper,
			AmountSpecified: amount,
			PriceLimit:      limit,
		})
		if err != nil {
			return err
		}
		result.FixedDelta = swapResult.FixedDelta.String()
		result.VariableDelta = swapResult.VariableDelta.String()
		result.Remaining = swapResult.AmountRemaining.String()
		result.CurrentPrice = instance.CurrentPrice().String()
		result.CurrentTick = instance.CurrentTick()
		return nil

	case model.OpTwap:
		instance, err := r.registry.Get(op.MarketID, op.Maturity)
		if err != nil {
			return err
		}
		orderSize := decimal.Zero
		if op.OrderSize != "" {
			orderSize, err = decimal.NewFromString(op.OrderSize)
			if err != nil {
				return fmt.Errorf("parse order size: %w", err)
			}
		}
		price, err := instance.Twap(op.LookbackSeconds, orderSize, op.AdjustPriceImpact, op.AdjustSpread)
		if err != nil {
			return err
		}
		result.TwapPrice = price.String()
		return nil

	case model.OpGrow:
		instance, err := r.registry.Get(op.MarketID, op.Maturity)
		if err != nil {
			return err
		}
		instance.IncreaseObservationCapacity(op.CapacityTarget)
		return nil

	default:
		return fmt.Errorf("unknown op %q", op.Op)
	}
}
