package storage

import (
	"context"

	"hpfold/internal/model"
)

// Store defines persistence operations for folding runs and their results.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SaveConformation(ctx context.Context, conformation model.Conformation) error
	GetConformation(ctx context.Context, runID string) (model.Conformation, bool, error)
	SaveEnergyTrace(ctx context.Context, runID string, trace []model.EnergyPoint) error
	GetEnergyTrace(ctx context.Context, runID string) ([]model.EnergyPoint, bool, error)
	SaveExchangeStats(ctx context.Context, runID string, stats []model.ExchangeStat) error
	GetExchangeStats(ctx context.Context, runID string) ([]model.ExchangeStat, bool, error)
}

// Resetter is implemented by stores that can drop every persisted record.
type Resetter interface {
	Reset(ctx context.Context) error
}
