package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rateVamm/internal/model"
)

// Store provides Postgres persistence for replay results and snapshots.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// UpsertResults inserts or updates operation results keyed by (vamm_id, seq).
func (s *Store) UpsertResults(ctx context.Context, results []model.OperationResult) error {
	if len(results) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, result := range results {
		batch.Queue(`
			INSERT INTO vamm_results (
				vamm_id, seq, op, market_id, maturity, status, error,
				executed, fixed_delta, variable_delta, remaining, twap_price,
				current_price, current_tick, applied_at, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now(), now())
			ON CONFLICT (vamm_id, seq)
			DO UPDATE SET
				status = EXCLUDED.status,
				error = EXCLUDED.error,
				executed = EXCLUDED.executed,
				fixed_delta = EXCLUDED.fixed_delta,
				variable_delta = EXCLUDED.variable_delta,
				remaining = EXCLUDED.remaining,
				twap_price = EXCLUDED.twap_price,
				current_price = EXCLUDED.current_price,
				current_tick = EXCLUDED.current_tick,
				applied_at = EXCLUDED.applied_at,
				updated_at = now()
		`,
			result.VammID,
			int64(result.Seq),
			result.Op,
			result.MarketID,
			int64(result.Maturity),
			result.Status,
			result.Error,
			result.Executed,
			result.FixedDelta,
			result.VariableDelta,
			result.Remaining,
			result.TwapPrice,
			result.CurrentPrice,
			result.CurrentTick,
			int64(result.AppliedAt),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range results {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertSnapshot inserts or updates a snapshot keyed by (vamm_id, taken_at).
// Ticks and positions are stored as JSONB documents.
func (s *Store) UpsertSnapshot(ctx context.Context, snapshot model.VammSnapshot) error {
	ticks, err := json.Marshal(snapshot.Ticks)
	if err != nil {
		return fmt.Errorf("marshal ticks: %w", err)
	}
	positions, err := json.Marshal(snapshot.Positions)
	if err != nil {
		return fmt.Errorf("marshal positions: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO vamm_snapshots (
			vamm_id, taken_at, market_id, maturity, tick_spacing,
			current_price, current_tick, active_liquidity,
			growth_fixed_global, growth_variable_global,
			ticks, positions, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
		ON CONFLICT (vamm_id, taken_at)
		DO UPDATE SET
			current_price = EXCLUDED.current_price,
			current_tick = EXCLUDED.current_tick,
			active_liquidity = EXCLUDED.active_liquidity,
			growth_fixed_global = EXCLUDED.growth_fixed_global,
			growth_variable_global = EXCLUDED.growth_variable_global,
			ticks = EXCLUDED.ticks,
			positions = EXCLUDED.positions,
			updated_at = now()
	`,
		snapshot.VammID,
		int64(snapshot.TakenAt),
		snapshot.MarketID,
		int64(snapshot.Maturity),
		snapshot.TickSpacing,
		snapshot.CurrentPrice,
		snapshot.CurrentTick,
		snapshot.ActiveLiquidity,
		snapshot.GrowthFixedGlobal,
		snapshot.GrowthVariableGlobal,
		ticks,
		positions,
	)
	return err
}
