package search

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"hpfold/internal/lattice"
	"hpfold/internal/move"
	"hpfold/internal/protein"
)

// BoltzmannConstant in kcal/(mol·K).
const BoltzmannConstant = 0.0019872041

const ctxCheckInterval = 1024

type MCConfig struct {
	Steps       int
	Temperature float64
	// Rand drives both placement and search. When nil a source seeded with
	// Seed is used.
	Rand *rand.Rand
	Seed int64
	// Placement and Size configure the starting lattice built by FoldMC.
	Placement lattice.Mode
	Size      int
	// TraceEvery samples the current energy every n steps; zero disables it.
	TraceEvery int
	// FrameEvery records the full conformation every n steps; zero disables it.
	FrameEvery int
}

type TracePoint struct {
	Step   int `json:"step"`
	Energy int `json:"energy"`
}

type Frame struct {
	Step      int             `json:"step"`
	Energy    int             `json:"energy"`
	Positions []lattice.Point `json:"positions"`
}

type MCResult struct {
	Steps          int            `json:"steps"`
	Temperature    float64        `json:"temperature"`
	InitialEnergy  int            `json:"initial_energy"`
	FinalEnergy    int            `json:"final_energy"`
	BestEnergy     int            `json:"best_energy"`
	Accepted       int            `json:"accepted"`
	Rejected       int            `json:"rejected"`
	Skipped        int            `json:"skipped"`
	AcceptedByKind map[string]int `json:"accepted_by_kind,omitempty"`
	Trace          []TracePoint   `json:"trace,omitempty"`
	Frames         []Frame        `json:"-"`
}

func (r MCResult) AcceptanceRate() float64 {
	attempts := r.Accepted + r.Rejected
	if attempts == 0 {
		return 0
	}
	return float64(r.Accepted) / float64(attempts)
}

func (cfg MCConfig) validate() error {
	if cfg.Steps <= 0 {
		return fmt.Errorf("steps must be > 0")
	}
	if cfg.Temperature <= 0 || math.IsNaN(cfg.Temperature) || math.IsInf(cfg.Temperature, 0) {
		return fmt.Errorf("temperature must be a positive finite value")
	}
	if cfg.TraceEvery < 0 || cfg.FrameEvery < 0 {
		return fmt.Errorf("trace and frame intervals must be >= 0")
	}
	return nil
}

func (cfg MCConfig) rng() *rand.Rand {
	if cfg.Rand != nil {
		return cfg.Rand
	}
	return rand.New(rand.NewSource(cfg.Seed))
}

// FoldMC places chain according to cfg.Placement and runs a Metropolis search
// on it. The returned lattice is the last accepted state.
func FoldMC(ctx context.Context, chain *protein.Chain, cfg MCConfig) (*lattice.Lattice, MCResult, error) {
	if err := cfg.validate(); err != nil {
		return nil, MCResult{}, err
	}
	rng := cfg.rng()
	l, err := lattice.New(chain, lattice.Config{Mode: cfg.Placement, Size: cfg.Size, Rand: rng})
	if err != nil {
		return nil, MCResult{}, fmt.Errorf("place chain: %w", err)
	}
	res, err := metropolis(ctx, l, cfg, rng)
	if err != nil {
		return nil, MCResult{}, err
	}
	return l, res, nil
}

// RunMC searches a copy of l and leaves l untouched.
func RunMC(ctx context.Context, l *lattice.Lattice, cfg MCConfig) (*lattice.Lattice, MCResult, error) {
	if l == nil {
		return nil, MCResult{}, fmt.Errorf("lattice is required")
	}
	if !l.IsValid() {
		return nil, MCResult{}, fmt.Errorf("lattice does not hold a valid conformation")
	}
	if err := cfg.validate(); err != nil {
		return nil, MCResult{}, err
	}
	work := l.Clone()
	res, err := metropolis(ctx, work, cfg, cfg.rng())
	if err != nil {
		return nil, MCResult{}, err
	}
	return work, res, nil
}

func metropolis(ctx context.Context, l *lattice.Lattice, cfg MCConfig, rng *rand.Rand) (MCResult, error) {
	n := l.Chain().Len()
	energy := l.Energy()
	res := MCResult{
		Steps:          cfg.Steps,
		Temperature:    cfg.Temperature,
		InitialEnergy:  energy,
		BestEnergy:     energy,
		AcceptedByKind: map[string]int{},
	}
	if cfg.TraceEvery > 0 {
		res.Trace = append(res.Trace, TracePoint{Step: 0, Energy: energy})
	}
	if cfg.FrameEvery > 0 {
		res.Frames = append(res.Frames, Frame{Step: 0, Energy: energy, Positions: l.Positions()})
	}

	for step := 1; step <= cfg.Steps; step++ {
		if step%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return MCResult{}, err
			}
		}

		candidates := move.Candidates(l, rng.Intn(n), rng)
		if len(candidates) == 0 {
			res.Skipped++
		} else {
			m := candidates[rng.Intn(len(candidates))]
			delta, previous := move.Apply(l, m)
			if accept(delta, cfg.Temperature, rng) {
				energy += delta
				res.Accepted++
				res.AcceptedByKind[m.Kind.String()]++
				if energy < res.BestEnergy {
					res.BestEnergy = energy
				}
			} else {
				move.Revert(l, m, previous)
				res.Rejected++
			}
		}

		if cfg.TraceEvery > 0 && step%cfg.TraceEvery == 0 {
			res.Trace = append(res.Trace, TracePoint{Step: step, Energy: energy})
		}
		if cfg.FrameEvery > 0 && step%cfg.FrameEvery == 0 {
			res.Frames = append(res.Frames, Frame{Step: step, Energy: energy, Positions: l.Positions()})
		}
	}
	res.FinalEnergy = energy
	return res, nil
}

// MetropolisProbability is the acceptance probability of an energy change
// delta at temperature t.
func MetropolisProbability(delta int, t float64) float64 {
	if delta <= 0 {
		return 1
	}
	return math.Exp(-float64(delta) / (BoltzmannConstant * t))
}

func accept(delta int, t float64, rng *rand.Rand) bool {
	if delta <= 0 {
		return true
	}
	return rng.Float64() < MetropolisProbability(delta, t)
}
