package vamm

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
)

// PositionID identifies a position by the hash of (account, tickLower,
// tickUpper); one account may hold many positions over different ranges.
type PositionID = common.Hash

// Position is the liquidity-supplier ledger entry for one tick range.
type Position struct {
	AccountID string
	TickLower int
	TickUpper int

	// BaseAmount is the signed notional the account has supplied over the
	// range, spread evenly per tick.
	BaseAmount decimal.Decimal

	// Growth-between-ticks values captured at the last reconciliation.
	GrowthFixedSnapshot    decimal.Decimal
	GrowthVariableSnapshot decimal.Decimal

	// Realized cash-flow trackers. Only ever updated through
	// reconciliation against global growth; never reset while the
	// position exists.
	AccumulatedFixed    decimal.Decimal
	AccumulatedVariable decimal.Decimal
}

// averagePerTick returns the position's liquidity per tick of range width.
func (p *Position) averagePerTick() decimal.Decimal {
	width := decimal.NewFromInt(int64(p.TickUpper - p.TickLower))
	return p.BaseAmount.Div(width)
}

// applyGrowth folds the growth accrued since the last snapshot into the
// accumulated balances and advances the snapshot. Idempotent when growth has
// not moved.
func (p *Position) applyGrowth(growthFixedInside, growthVariableInside decimal.Decimal) {
	perTick := p.averagePerTick()
	fixedDelta := growthFixedInside.Sub(p.GrowthFixedSnapshot).Mul(perTick)
	variableDelta := growthVariableInside.Sub(p.GrowthVariableSnapshot).Mul(perTick)

	p.AccumulatedFixed = p.AccumulatedFixed.Add(fixedDelta)
	p.AccumulatedVariable = p.AccumulatedVariable.Add(variableDelta)
	p.GrowthFixedSnapshot = growthFixedInside
	p.GrowthVariableSnapshot = growthVariableInside
}

func derivePositionID(accountID string, tickLower, tickUpper int) PositionID {
	var bounds [16]byte
	binary.BigEndian.PutUint64(bounds[0:8], uint64(int64(tickLower)))
	binary.BigEndian.PutUint64(bounds[8:16], uint64(int64(tickUpper)))
	return crypto.Keccak256Hash([]byte(accountID), bounds[:])
}

// positionLedger maps derived position ids to LP state and keeps a per
// account index of position ids.
type positionLedger struct {
	byID      map[PositionID]*Position
	byAccount map[string][]PositionID
}

func newPositionLedger() *positionLedger {
	return &positionLedger{
		byID:      make(map[PositionID]*Position),
		byAccount: make(map[string][]PositionID),
	}
}

// openOrGet returns the position for the triple, creating a zero-amount
// entry and indexing it under the account on first reference.
func (l *positionLedger) openOrGet(accountID string, tickLower, tickUpper int) (PositionID, *Position) {
	id := derivePositionID(accountID, tickLower, tickUpper)
	if pos, ok := l.byID[id]; ok {
		return id, pos
	}
	pos := &Position{
		AccountID: accountID,
		TickLower: tickLower,
		TickUpper: tickUpper,
	}
	l.byID[id] = pos
	l.byAccount[accountID] = append(l.byAccount[accountID], id)
	return id, pos
}

func (l *positionLedger) get(id PositionID) (*Position, bool) {
	pos, ok := l.byID[id]
	return pos, ok
}

// accountPositions returns the positions held by an account, in creation
// order.
func (l *positionLedger) accountPositions(accountID string) []*Position {
	ids := l.byAccount[accountID]
	out := make([]*Position, 0, len(ids))
	for _, id := range ids {
		out = append(out, l.byID[id])
	}
	return out
}
