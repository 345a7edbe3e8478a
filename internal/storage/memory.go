package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"hpfold/internal/model"
)

var errNotInitialized = errors.New("store is not initialized")

type MemoryStore struct {
	mu            sync.RWMutex
	initialized   bool
	runs          map[string]model.RunRecord
	conformations map[string]model.Conformation
	traces        map[string][]model.EnergyPoint
	exchanges     map[string][]model.ExchangeStat
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	s.reset()
	return nil
}

func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	return nil
}

func (s *MemoryStore) reset() {
	s.initialized = true
	s.runs = make(map[string]model.RunRecord)
	s.conformations = make(map[string]model.Conformation)
	s.traces = make(map[string][]model.EnergyPoint)
	s.exchanges = make(map[string][]model.ExchangeStat)
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.runs[run.ID] = copyRun(run)
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return model.RunRecord{}, false, nil
	}
	return copyRun(run), true, nil
}

// ListRuns returns every run, newest first.
func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]model.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, copyRun(run))
	}
	sortRuns(runs)
	return runs, nil
}

func (s *MemoryStore) SaveConformation(_ context.Context, conformation model.Conformation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	conformation.Positions = append([]model.Position(nil), conformation.Positions...)
	s.conformations[conformation.RunID] = conformation
	return nil
}

func (s *MemoryStore) GetConformation(_ context.Context, runID string) (model.Conformation, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conformation, ok := s.conformations[runID]
	if !ok {
		return model.Conformation{}, false, nil
	}
	conformation.Positions = append([]model.Position(nil), conformation.Positions...)
	return conformation, true, nil
}

func (s *MemoryStore) SaveEnergyTrace(_ context.Context, runID string, trace []model.EnergyPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	copied := make([]model.EnergyPoint, len(trace))
	copy(copied, trace)
	s.traces[runID] = copied
	return nil
}

func (s *MemoryStore) GetEnergyTrace(_ context.Context, runID string) ([]model.EnergyPoint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trace, ok := s.traces[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.EnergyPoint, len(trace))
	copy(copied, trace)
	return copied, true, nil
}

func (s *MemoryStore) SaveExchangeStats(_ context.Context, runID string, stats []model.ExchangeStat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	copied := make([]model.ExchangeStat, len(stats))
	copy(copied, stats)
	s.exchanges[runID] = copied
	return nil
}

func (s *MemoryStore) GetExchangeStats(_ context.Context, runID string) ([]model.ExchangeStat, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats, ok := s.exchanges[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.ExchangeStat, len(stats))
	copy(copied, stats)
	return copied, true, nil
}

func copyRun(run model.RunRecord) model.RunRecord {
	if run.EnergyCutoff != nil {
		cutoff := *run.EnergyCutoff
		run.EnergyCutoff = &cutoff
	}
	return run
}

func sortRuns(runs []model.RunRecord) {
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAtUTC == runs[j].CreatedAtUTC {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].CreatedAtUTC > runs[j].CreatedAtUTC
	})
}
