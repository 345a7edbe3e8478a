package search

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"hpfold/internal/lattice"
	"hpfold/internal/protein"
)

const benchmarkSequence = "PHPPHPHPHPPHPPHPPHPHPPHPPHPHPPHP"

func mustChain(t *testing.T, seq string) *protein.Chain {
	t.Helper()
	c, err := protein.NewChain(seq)
	if err != nil {
		t.Fatalf("new chain %q: %v", seq, err)
	}
	return c
}

func TestMetropolisProbability(t *testing.T) {
	if p := MetropolisProbability(0, 300); p != 1 {
		t.Fatalf("expected certain acceptance for zero delta, got %f", p)
	}
	if p := MetropolisProbability(-3, 300); p != 1 {
		t.Fatalf("expected certain acceptance for downhill move, got %f", p)
	}
	want := math.Exp(-1 / (BoltzmannConstant * 300))
	if p := MetropolisProbability(1, 300); math.Abs(p-want) > 1e-12 {
		t.Fatalf("unexpected probability: got=%f want=%f", p, want)
	}
	if MetropolisProbability(2, 300) >= MetropolisProbability(1, 300) {
		t.Fatal("expected larger uphill steps to be less likely")
	}
}

func TestAcceptanceFrequencyMatchesBoltzmannFactor(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	const draws = 200000
	for _, tc := range []struct {
		delta int
		temp  float64
	}{
		{delta: 1, temp: 300},
		{delta: 2, temp: 600},
		{delta: 1, temp: 160},
	} {
		accepted := 0
		for i := 0; i < draws; i++ {
			if accept(tc.delta, tc.temp, rng) {
				accepted++
			}
		}
		got := float64(accepted) / draws
		want := MetropolisProbability(tc.delta, tc.temp)
		if math.Abs(got-want) > 0.01 {
			t.Fatalf("delta=%d T=%g: acceptance frequency=%f want≈%f", tc.delta, tc.temp, got, want)
		}
	}
}

func TestExchangeCriterion(t *testing.T) {
	if p := ExchangeProbability(-0.5); p != 1 {
		t.Fatalf("expected certain swap for negative delta, got %f", p)
	}
	if p := ExchangeProbability(0); p != 1 {
		t.Fatalf("expected certain swap for zero delta, got %f", p)
	}

	// a colder replica holding the higher energy always swaps upwards
	if d := exchangeDelta(160, 220, -2, -5); d > 0 {
		t.Fatalf("expected non-positive delta, got %f", d)
	}
	if d := exchangeDelta(160, 220, -5, -2); d <= 0 {
		t.Fatalf("expected positive delta, got %f", d)
	}

	rng := rand.New(rand.NewSource(3))
	const draws = 200000
	delta := 0.7
	swapped := 0
	for i := 0; i < draws; i++ {
		if rng.Float64() < ExchangeProbability(delta) {
			swapped++
		}
	}
	got := float64(swapped) / draws
	if want := math.Exp(-delta); math.Abs(got-want) > 0.01 {
		t.Fatalf("swap frequency=%f want≈%f", got, want)
	}
}

func TestTemperatures(t *testing.T) {
	got := Temperatures(160, 220, 4)
	want := []float64{160, 180, 200, 220}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("unexpected ladder: %v", got)
		}
	}
	if got := Temperatures(160, 220, 1); len(got) != 1 || got[0] != 160 {
		t.Fatalf("unexpected single-slot ladder: %v", got)
	}
}

func TestFoldMCBenchmarkImproves(t *testing.T) {
	chain := mustChain(t, benchmarkSequence)
	l, res, err := FoldMC(context.Background(), chain, MCConfig{
		Steps:       20000,
		Temperature: 160,
		Seed:        1,
		TraceEvery:  100,
		FrameEvery:  5000,
	})
	if err != nil {
		t.Fatalf("fold mc: %v", err)
	}
	if !l.IsValid() {
		t.Fatal("final conformation is not a valid walk")
	}
	if res.InitialEnergy != 0 {
		t.Fatalf("linear start should have zero energy, got %d", res.InitialEnergy)
	}
	if res.FinalEnergy > 0 || res.FinalEnergy != l.Energy() {
		t.Fatalf("unexpected final energy: result=%d lattice=%d", res.FinalEnergy, l.Energy())
	}
	if res.BestEnergy > -4 || res.BestEnergy > res.FinalEnergy {
		t.Fatalf("expected substantial improvement, best=%d final=%d", res.BestEnergy, res.FinalEnergy)
	}
	if total := res.Accepted + res.Rejected + res.Skipped; total != 20000 {
		t.Fatalf("step accounting mismatch: %d", total)
	}
	if len(res.Trace) != 20000/100+1 {
		t.Fatalf("unexpected trace length: %d", len(res.Trace))
	}
	if last := res.Trace[len(res.Trace)-1]; last.Step != 20000 || last.Energy != res.FinalEnergy {
		t.Fatalf("unexpected last trace point: %+v", last)
	}
	if len(res.Frames) != 5 {
		t.Fatalf("unexpected frame count: %d", len(res.Frames))
	}
	for _, tp := range res.Trace {
		if tp.Energy > 0 {
			t.Fatalf("energy rose above the linear start: %+v", tp)
		}
	}
}

func TestFoldMCIsReproducible(t *testing.T) {
	chain := mustChain(t, benchmarkSequence)
	cfg := MCConfig{Steps: 3000, Temperature: 200, Seed: 77, Placement: lattice.ModeRandom}
	a, resA, err := FoldMC(context.Background(), chain, cfg)
	if err != nil {
		t.Fatalf("fold mc: %v", err)
	}
	b, resB, err := FoldMC(context.Background(), chain, cfg)
	if err != nil {
		t.Fatalf("fold mc: %v", err)
	}
	if !reflect.DeepEqual(a.Positions(), b.Positions()) || resA.FinalEnergy != resB.FinalEnergy {
		t.Fatal("expected identical runs for identical seeds")
	}
}

func TestRunMCLeavesInputUntouched(t *testing.T) {
	chain := mustChain(t, "HPPHHPHH")
	l, err := lattice.New(chain, lattice.Config{})
	if err != nil {
		t.Fatalf("new lattice: %v", err)
	}
	before := l.Positions()
	out, _, err := RunMC(context.Background(), l, MCConfig{Steps: 500, Temperature: 200, Seed: 2})
	if err != nil {
		t.Fatalf("run mc: %v", err)
	}
	if !reflect.DeepEqual(before, l.Positions()) {
		t.Fatal("input lattice was mutated")
	}
	if out == l {
		t.Fatal("expected a separate lattice")
	}
}

func TestConfigValidation(t *testing.T) {
	chain := mustChain(t, "HPH")
	ctx := context.Background()
	for _, cfg := range []MCConfig{
		{Steps: 0, Temperature: 100},
		{Steps: 10, Temperature: 0},
		{Steps: 10, Temperature: math.NaN()},
		{Steps: 10, Temperature: 100, TraceEvery: -1},
	} {
		if _, _, err := FoldMC(ctx, chain, cfg); err == nil {
			t.Fatalf("expected mc config error for %+v", cfg)
		}
	}
	for _, cfg := range []REMCConfig{
		{Replicas: 0, Steps: 1, LocalSteps: 1, TMin: 1, TMax: 2},
		{Replicas: 2, Steps: 0, LocalSteps: 1, TMin: 1, TMax: 2},
		{Replicas: 2, Steps: 1, LocalSteps: 0, TMin: 1, TMax: 2},
		{Replicas: 2, Steps: 1, LocalSteps: 1, TMin: 0, TMax: 2},
		{Replicas: 2, Steps: 1, LocalSteps: 1, TMin: 3, TMax: 2},
		{Replicas: 2, Steps: 1, LocalSteps: 1, TMin: 1, TMax: 2, Workers: -1},
	} {
		if _, _, err := FoldREMC(ctx, chain, cfg); err == nil {
			t.Fatalf("expected remc config error for %+v", cfg)
		}
	}
}

func TestFoldREMCBenchmark(t *testing.T) {
	chain := mustChain(t, benchmarkSequence)
	l, res, err := FoldREMC(context.Background(), chain, REMCConfig{
		Replicas:   4,
		Steps:      50,
		LocalSteps: 500,
		TMin:       160,
		TMax:       220,
		Seed:       1,
	})
	if err != nil {
		t.Fatalf("fold remc: %v", err)
	}
	if !l.IsValid() {
		t.Fatal("best replica is not a valid walk")
	}
	if l.Energy() != res.BestEnergy {
		t.Fatalf("best energy mismatch: lattice=%d result=%d", l.Energy(), res.BestEnergy)
	}
	if res.BestEnergy > -5 {
		t.Fatalf("expected substantial improvement, got %d", res.BestEnergy)
	}
	if res.Rounds != 50 || len(res.Trace) != 51 {
		t.Fatalf("unexpected rounds=%d trace=%d", res.Rounds, len(res.Trace))
	}
	for i := 1; i < len(res.Trace); i++ {
		if res.Trace[i].Energy > res.Trace[i-1].Energy {
			t.Fatalf("best energy rose between rounds: %v", res.Trace)
		}
	}
	if len(res.Exchanges) != 3 {
		t.Fatalf("unexpected exchange pairs: %d", len(res.Exchanges))
	}
	for _, ex := range res.Exchanges {
		if ex.Attempts != 25 || ex.Accepted > ex.Attempts {
			t.Fatalf("unexpected exchange stats: %+v", ex)
		}
	}
}

func TestFoldREMCIndependentOfWorkerCount(t *testing.T) {
	chain := mustChain(t, benchmarkSequence)
	cfg := REMCConfig{Replicas: 5, Steps: 10, LocalSteps: 300, TMin: 160, TMax: 260, Seed: 4, Workers: 1}
	a, resA, err := FoldREMC(context.Background(), chain, cfg)
	if err != nil {
		t.Fatalf("fold remc: %v", err)
	}
	cfg.Workers = 5
	b, resB, err := FoldREMC(context.Background(), chain, cfg)
	if err != nil {
		t.Fatalf("fold remc: %v", err)
	}
	if !reflect.DeepEqual(a.Positions(), b.Positions()) || !reflect.DeepEqual(resA.Energies, resB.Energies) {
		t.Fatal("results depend on worker scheduling")
	}
}

func TestSingleReplicaMatchesGreedyBlockMC(t *testing.T) {
	chain := mustChain(t, benchmarkSequence)
	const (
		rounds = 20
		local  = 200
		temp   = 180.0
		seed   = 9
	)
	got, res, err := FoldREMC(context.Background(), chain, REMCConfig{
		Replicas:   1,
		Steps:      rounds,
		LocalSteps: local,
		TMin:       temp,
		TMax:       temp,
		Seed:       seed,
	})
	if err != nil {
		t.Fatalf("fold remc: %v", err)
	}
	if len(res.Exchanges) != 0 {
		t.Fatalf("single replica must not attempt exchanges: %+v", res.Exchanges)
	}

	cur, err := lattice.New(chain, lattice.Config{})
	if err != nil {
		t.Fatalf("new lattice: %v", err)
	}
	curEnergy := cur.Energy()
	rng := rand.New(rand.NewSource(replicaSeed(seed, 0)))
	for r := 0; r < rounds; r++ {
		work := cur.Clone()
		mc, err := metropolis(context.Background(), work, MCConfig{Steps: local, Temperature: temp}, rng)
		if err != nil {
			t.Fatalf("metropolis: %v", err)
		}
		if mc.FinalEnergy < curEnergy {
			cur, curEnergy = work, mc.FinalEnergy
		}
	}
	if !reflect.DeepEqual(got.Positions(), cur.Positions()) || res.BestEnergy != curEnergy {
		t.Fatalf("single replica diverged from greedy MC: remc=%d greedy=%d", res.BestEnergy, curEnergy)
	}
}

func TestFoldREMCStopsAtEnergyCutoff(t *testing.T) {
	chain := mustChain(t, benchmarkSequence)
	cutoff := 0
	_, res, err := FoldREMC(context.Background(), chain, REMCConfig{
		Replicas:     3,
		Steps:        40,
		LocalSteps:   100,
		TMin:         160,
		TMax:         220,
		EnergyCutoff: &cutoff,
		Seed:         5,
	})
	if err != nil {
		t.Fatalf("fold remc: %v", err)
	}
	if !res.CutoffReached || res.Rounds != 1 {
		t.Fatalf("expected stop after first round, rounds=%d reached=%v", res.Rounds, res.CutoffReached)
	}
	for _, ex := range res.Exchanges {
		if ex.Attempts != 0 {
			t.Fatalf("no exchange should run once the cutoff is reached: %+v", ex)
		}
	}
}

func TestFoldHonorsCancellation(t *testing.T) {
	chain := mustChain(t, benchmarkSequence)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := FoldMC(ctx, chain, MCConfig{Steps: 5000, Temperature: 160}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled mc run, got %v", err)
	}
	if _, _, err := FoldREMC(ctx, chain, REMCConfig{Replicas: 2, Steps: 3, LocalSteps: 10, TMin: 160, TMax: 200}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled remc run, got %v", err)
	}
}

func TestFoldREMCRecordsBestReplicaFrames(t *testing.T) {
	chain := mustChain(t, benchmarkSequence)
	_, res, err := FoldREMC(context.Background(), chain, REMCConfig{
		Replicas:   2,
		Steps:      6,
		LocalSteps: 50,
		TMin:       160,
		TMax:       200,
		Seed:       9,
		FrameEvery: 3,
	})
	if err != nil {
		t.Fatalf("fold remc: %v", err)
	}
	if len(res.Frames) != 3 {
		t.Fatalf("expected frames at rounds 0, 3 and 6, got %d", len(res.Frames))
	}
	for i, frame := range res.Frames {
		if frame.Step != 3*i || len(frame.Positions) != chain.Len() {
			t.Fatalf("unexpected frame %d: step=%d positions=%d", i, frame.Step, len(frame.Positions))
		}
		if frame.Energy != res.Trace[frame.Step].Energy {
			t.Fatalf("frame %d energy %d does not match trace %d", i, frame.Energy, res.Trace[frame.Step].Energy)
		}
	}
}
