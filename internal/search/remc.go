package search

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"

	"hpfold/internal/lattice"
	"hpfold/internal/protein"
)

type REMCConfig struct {
	Replicas int
	// Steps bounds the number of local/exchange rounds.
	Steps int
	// LocalSteps is the Metropolis budget of every replica per round.
	LocalSteps int
	TMin       float64
	TMax       float64
	// EnergyCutoff stops the search once the best replica reaches it.
	EnergyCutoff *int
	// Workers bounds concurrent local runs. Zero selects
	// min(Replicas, GOMAXPROCS).
	Workers   int
	Seed      int64
	Placement lattice.Mode
	Size      int
	// FrameEvery records the best replica every n rounds; zero disables it.
	FrameEvery int
}

type ExchangeStat struct {
	Pair     int     `json:"pair"`
	TLow     float64 `json:"t_low"`
	THigh    float64 `json:"t_high"`
	Attempts int     `json:"attempts"`
	Accepted int     `json:"accepted"`
}

func (s ExchangeStat) Rate() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Accepted) / float64(s.Attempts)
}

type REMCResult struct {
	Temperatures  []float64      `json:"temperatures"`
	InitialEnergy int            `json:"initial_energy"`
	BestEnergy    int            `json:"best_energy"`
	BestReplica   int            `json:"best_replica"`
	Energies      []int          `json:"energies"`
	Rounds        int            `json:"rounds"`
	CutoffReached bool           `json:"cutoff_reached"`
	Trace         []TracePoint   `json:"trace"`
	Exchanges     []ExchangeStat `json:"exchanges"`
	Frames        []Frame        `json:"-"`
}

func (cfg REMCConfig) validate() error {
	if cfg.Replicas <= 0 {
		return fmt.Errorf("replicas must be > 0")
	}
	if cfg.Steps <= 0 {
		return fmt.Errorf("steps must be > 0")
	}
	if cfg.LocalSteps <= 0 {
		return fmt.Errorf("local steps must be > 0")
	}
	if cfg.TMin <= 0 || cfg.TMax <= 0 {
		return fmt.Errorf("temperatures must be > 0")
	}
	if cfg.TMin > cfg.TMax {
		return fmt.Errorf("tmin must be <= tmax: tmin=%g tmax=%g", cfg.TMin, cfg.TMax)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("workers must be >= 0")
	}
	if cfg.FrameEvery < 0 {
		return fmt.Errorf("frame interval must be >= 0")
	}
	return nil
}

// Temperatures spreads n temperatures evenly over [tMin, tMax].
func Temperatures(tMin, tMax float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = tMin
		return out
	}
	step := (tMax - tMin) / float64(n-1)
	for i := range out {
		out[i] = tMin + float64(i)*step
	}
	out[n-1] = tMax
	return out
}

// ExchangeProbability is the swap probability for an exchange criterion
// delta = (β_j − β_i)(E_i − E_j).
func ExchangeProbability(delta float64) float64 {
	if delta <= 0 {
		return 1
	}
	return math.Exp(-delta)
}

func exchangeDelta(tI, tJ float64, eI, eJ int) float64 {
	betaI := 1 / (BoltzmannConstant * tI)
	betaJ := 1 / (BoltzmannConstant * tJ)
	return (betaJ - betaI) * float64(eI-eJ)
}

func replicaSeed(seed int64, slot int) int64 {
	return seed + int64(slot+1)*7919
}

func exchangeSeed(seed int64) int64 {
	return seed ^ 0x5eed
}

// FoldREMC runs replica exchange Monte Carlo on chain and returns the lowest
// energy replica.
func FoldREMC(ctx context.Context, chain *protein.Chain, cfg REMCConfig) (*lattice.Lattice, REMCResult, error) {
	if err := cfg.validate(); err != nil {
		return nil, REMCResult{}, err
	}
	start, err := lattice.New(chain, lattice.Config{
		Mode: cfg.Placement,
		Size: cfg.Size,
		Rand: rand.New(rand.NewSource(cfg.Seed)),
	})
	if err != nil {
		return nil, REMCResult{}, fmt.Errorf("place chain: %w", err)
	}
	return runREMC(ctx, start, cfg)
}

// RunREMC starts every replica from a copy of l.
func RunREMC(ctx context.Context, l *lattice.Lattice, cfg REMCConfig) (*lattice.Lattice, REMCResult, error) {
	if l == nil || !l.IsValid() {
		return nil, REMCResult{}, fmt.Errorf("lattice does not hold a valid conformation")
	}
	if err := cfg.validate(); err != nil {
		return nil, REMCResult{}, err
	}
	return runREMC(ctx, l, cfg)
}

type replicaSet struct {
	lattices []*lattice.Lattice
	energies []int
	temps    []float64
	rngs     []*rand.Rand
}

func runREMC(ctx context.Context, start *lattice.Lattice, cfg REMCConfig) (*lattice.Lattice, REMCResult, error) {
	n := cfg.Replicas
	set := replicaSet{
		lattices: make([]*lattice.Lattice, n),
		energies: make([]int, n),
		temps:    Temperatures(cfg.TMin, cfg.TMax, n),
		rngs:     make([]*rand.Rand, n),
	}
	initial := start.Energy()
	for slot := 0; slot < n; slot++ {
		set.lattices[slot] = start.Clone()
		set.energies[slot] = initial
		set.rngs[slot] = rand.New(rand.NewSource(replicaSeed(cfg.Seed, slot)))
	}
	exchangeRng := rand.New(rand.NewSource(exchangeSeed(cfg.Seed)))

	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}

	exchanges := make([]ExchangeStat, max(n-1, 0))
	for i := range exchanges {
		exchanges[i] = ExchangeStat{Pair: i, TLow: set.temps[i], THigh: set.temps[i+1]}
	}

	res := REMCResult{
		Temperatures:  set.temps,
		InitialEnergy: initial,
		Trace:         make([]TracePoint, 0, cfg.Steps+1),
	}
	res.Trace = append(res.Trace, TracePoint{Step: 0, Energy: initial})
	if cfg.FrameEvery > 0 {
		res.Frames = append(res.Frames, Frame{Step: 0, Energy: initial, Positions: start.Positions()})
	}

	offset := 0
	for round := 1; round <= cfg.Steps; round++ {
		if err := ctx.Err(); err != nil {
			return nil, REMCResult{}, err
		}
		if err := localPhase(ctx, &set, cfg.LocalSteps, workers); err != nil {
			return nil, REMCResult{}, err
		}
		res.Rounds = round

		best, bestSlot := set.best()
		res.Trace = append(res.Trace, TracePoint{Step: round, Energy: best})
		if cfg.FrameEvery > 0 && round%cfg.FrameEvery == 0 {
			res.Frames = append(res.Frames, Frame{Step: round, Energy: best, Positions: set.lattices[bestSlot].Positions()})
		}
		if cfg.EnergyCutoff != nil && best <= *cfg.EnergyCutoff {
			res.CutoffReached = true
			break
		}

		for i := offset; i+1 < n; i += 2 {
			j := i + 1
			exchanges[i].Attempts++
			delta := exchangeDelta(set.temps[i], set.temps[j], set.energies[i], set.energies[j])
			if delta <= 0 || exchangeRng.Float64() < ExchangeProbability(delta) {
				set.lattices[i], set.lattices[j] = set.lattices[j], set.lattices[i]
				set.energies[i], set.energies[j] = set.energies[j], set.energies[i]
				exchanges[i].Accepted++
			}
		}
		offset = 1 - offset
	}

	res.BestEnergy, res.BestReplica = set.best()
	res.Energies = append([]int(nil), set.energies...)
	res.Exchanges = exchanges
	return set.lattices[res.BestReplica], res, nil
}

func (s *replicaSet) best() (int, int) {
	bestSlot := 0
	for slot, e := range s.energies {
		if e < s.energies[bestSlot] {
			bestSlot = slot
		}
	}
	return s.energies[bestSlot], bestSlot
}

// localPhase runs one Metropolis segment per slot on a bounded worker pool.
// A slot keeps the new conformation only when its energy improved.
func localPhase(ctx context.Context, set *replicaSet, steps, workers int) error {
	type job struct {
		slot int
	}
	type result struct {
		slot    int
		lattice *lattice.Lattice
		energy  int
		err     error
	}

	jobs := make(chan job)
	results := make(chan result, len(set.lattices))

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{slot: j.slot, err: err}
					continue
				}
				work := set.lattices[j.slot].Clone()
				mc, err := metropolis(ctx, work, MCConfig{
					Steps:       steps,
					Temperature: set.temps[j.slot],
				}, set.rngs[j.slot])
				if err != nil {
					results <- result{slot: j.slot, err: err}
					continue
				}
				results <- result{slot: j.slot, lattice: work, energy: mc.FinalEnergy}
			}
		}()
	}

	for slot := range set.lattices {
		jobs <- job{slot: slot}
	}
	close(jobs)

	wg.Wait()
	close(results)

	var firstErr error
	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		if res.energy < set.energies[res.slot] {
			set.lattices[res.slot] = res.lattice
			set.energies[res.slot] = res.energy
		}
	}
	return firstErr
}
