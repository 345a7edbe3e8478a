package storage

import (
	"context"
	"reflect"
	"testing"

	"hpfold/internal/model"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []model.EnergyPoint{{Step: 0, Energy: 0}, {Step: 10, Energy: -2}}
	if err := store.SaveEnergyTrace(ctx, "run-1", input); err != nil {
		t.Fatalf("save trace: %v", err)
	}
	input[1].Energy = -99

	output, ok, err := store.GetEnergyTrace(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get trace: ok=%v err=%v", ok, err)
	}
	if output[1].Energy != -2 {
		t.Fatalf("stored trace aliased caller slice: %+v", output)
	}
	output[0].Energy = 7
	again, _, _ := store.GetEnergyTrace(ctx, "run-1")
	if again[0].Energy != 0 {
		t.Fatalf("returned trace aliased stored slice: %+v", again)
	}
}

func TestMemoryStoreRequiresInit(t *testing.T) {
	store := NewMemoryStore()
	if err := store.SaveRun(context.Background(), model.RunRecord{ID: "r"}); err == nil {
		t.Fatal("expected error before init")
	}
}

func TestMemoryStoreReset(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := store.SaveRun(ctx, model.RunRecord{VersionedRecord: Stamp(), ID: "run-1"}); err != nil {
		t.Fatalf("save run: %v", err)
	}
	var resetter Resetter = store
	if err := resetter.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, ok, _ := store.GetRun(ctx, "run-1"); ok {
		t.Fatal("expected run to be dropped by reset")
	}
}

// exerciseStore runs the same persistence checks against any backend.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	cutoff := -7
	older := model.RunRecord{
		VersionedRecord: Stamp(),
		ID:              "run-a",
		Algorithm:       model.AlgorithmMC,
		Sequence:        "HPPH",
		Steps:           100,
		Temperature:     160,
		FinalEnergy:     -1,
		CreatedAtUTC:    "2026-03-01T10:00:00Z",
	}
	newer := model.RunRecord{
		VersionedRecord: Stamp(),
		ID:              "run-b",
		Algorithm:       model.AlgorithmREMC,
		Sequence:        "HPHPPH",
		Replicas:        3,
		EnergyCutoff:    &cutoff,
		CreatedAtUTC:    "2026-03-02T10:00:00Z",
	}
	for _, run := range []model.RunRecord{older, newer} {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("save run %s: %v", run.ID, err)
		}
	}

	loaded, ok, err := store.GetRun(ctx, "run-b")
	if err != nil || !ok {
		t.Fatalf("get run: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(loaded, newer) {
		t.Fatalf("unexpected run:\n got=%+v\nwant=%+v", loaded, newer)
	}
	if _, ok, err := store.GetRun(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing run, ok=%v err=%v", ok, err)
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-b" || runs[1].ID != "run-a" {
		t.Fatalf("expected newest-first listing, got %+v", runs)
	}

	older.FinalEnergy = -2
	if err := store.SaveRun(ctx, older); err != nil {
		t.Fatalf("upsert run: %v", err)
	}
	if got, _, _ := store.GetRun(ctx, "run-a"); got.FinalEnergy != -2 {
		t.Fatalf("expected upserted run, got %+v", got)
	}

	conformation := model.Conformation{
		VersionedRecord: Stamp(),
		RunID:           "run-a",
		Sequence:        "HPPH",
		GridSize:        8,
		Energy:          -1,
		Positions:       []model.Position{{Row: 4, Col: 3}, {Row: 4, Col: 4}, {Row: 5, Col: 4}, {Row: 5, Col: 3}},
	}
	if err := store.SaveConformation(ctx, conformation); err != nil {
		t.Fatalf("save conformation: %v", err)
	}
	gotConformation, ok, err := store.GetConformation(ctx, "run-a")
	if err != nil || !ok {
		t.Fatalf("get conformation: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(gotConformation, conformation) {
		t.Fatalf("unexpected conformation: %+v", gotConformation)
	}

	trace := []model.EnergyPoint{{Step: 0, Energy: 0}, {Step: 50, Energy: -1}}
	if err := store.SaveEnergyTrace(ctx, "run-a", trace); err != nil {
		t.Fatalf("save trace: %v", err)
	}
	gotTrace, ok, err := store.GetEnergyTrace(ctx, "run-a")
	if err != nil || !ok || !reflect.DeepEqual(gotTrace, trace) {
		t.Fatalf("unexpected trace: %+v ok=%v err=%v", gotTrace, ok, err)
	}

	exchanges := []model.ExchangeStat{{Pair: 0, TLow: 160, THigh: 190, Attempts: 5, Accepted: 2}}
	if err := store.SaveExchangeStats(ctx, "run-b", exchanges); err != nil {
		t.Fatalf("save exchange stats: %v", err)
	}
	gotExchanges, ok, err := store.GetExchangeStats(ctx, "run-b")
	if err != nil || !ok || !reflect.DeepEqual(gotExchanges, exchanges) {
		t.Fatalf("unexpected exchange stats: %+v ok=%v err=%v", gotExchanges, ok, err)
	}
	if _, ok, err := store.GetExchangeStats(ctx, "run-a"); err != nil || ok {
		t.Fatalf("expected no exchange stats for mc run, ok=%v err=%v", ok, err)
	}
}
