package storage

import "rateVamm/internal/model"

// Storage defines a sink for replay results and state snapshots.
type Storage interface {
	PutResults(results []model.OperationResult) error
	PutSnapshot(snapshot model.VammSnapshot) error
}
