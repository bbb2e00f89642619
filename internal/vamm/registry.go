package vamm

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InstanceID identifies a VAMM by the hash of its (marketID, maturity) pair.
type InstanceID = common.Hash

// DeriveInstanceID computes the identity of a market/maturity pair.
func DeriveInstanceID(marketID string, maturity uint64) InstanceID {
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], maturity)
	return crypto.Keccak256Hash([]byte(marketID), ts[:])
}

// Registry is the keyed store of VAMM instances. Instances for different
// market/maturity pairs are fully independent.
type Registry struct {
	byID   map[InstanceID]*VAMM
	logger *zap.Logger
}

// NewRegistry builds an empty instance registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		byID:   make(map[InstanceID]*VAMM),
		logger: logger,
	}
}

// Create instantiates and registers the VAMM for a market/maturity pair.
// Fails if the pair already exists.
func (r *Registry) Create(marketID string, maturity uint64, initialPrice decimal.Decimal, tickSpacing int, cfg Config) (*VAMM, error) {
	id := DeriveInstanceID(marketID, maturity)
	if _, ok := r.byID[id]; ok {
		return nil, fmt.Errorf("%w: market %s, maturity %d", ErrDuplicateInstance, marketID, maturity)
	}
	if cfg.Logger == nil {
		cfg.Logger = r.logger
	}
	v, err := NewVAMM(marketID, maturity, initialPrice, tickSpacing, cfg)
	if err != nil {
		return nil, err
	}
	r.byID[id] = v
	return v, nil
}

// Get returns the VAMM for a market/maturity pair.
func (r *Registry) Get(marketID string, maturity uint64) (*VAMM, error) {
	v, ok := r.byID[DeriveInstanceID(marketID, maturity)]
	if !ok {
		return nil, fmt.Errorf("%w: market %s, maturity %d", ErrUnknownInstance, marketID, maturity)
	}
	return v, nil
}

// Has reports whether an instance exists for the pair.
func (r *Registry) Has(marketID string, maturity uint64) bool {
	_, ok := r.byID[DeriveInstanceID(marketID, maturity)]
	return ok
}
