package hpfold

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"hpfold/internal/export"
	"hpfold/internal/lattice"
	"hpfold/internal/model"
	"hpfold/internal/protein"
	"hpfold/internal/search"
	"hpfold/internal/stats"
	"hpfold/internal/storage"
)

const (
	defaultBenchmarksDir = "benchmarks"
	defaultExportsDir    = "exports"
	defaultDBPath        = "hpfold.db"
)

type Options struct {
	StoreKind     string
	DBPath        string
	BenchmarksDir string
	ExportsDir    string
}

type Client struct {
	store       storage.Store
	initialized bool

	benchmarksDir string
	exportsDir    string
}

// MCRequest configures a single chain Metropolis run. Zero values select the
// defaults documented on each field.
type MCRequest struct {
	Sequence string
	// AminoAcids reduces Sequence from one-letter amino-acid codes.
	AminoAcids bool
	// Input names where the sequence came from, for the run record only.
	Input       string
	Placement   string  // linear
	GridSize    int     // twice the chain length
	Seed        int64
	Steps       int     // 1000
	Temperature float64 // 200
	// TraceEvery defaults to one sample per hundredth of the run.
	TraceEvery int
	FrameEvery int
	Draw       bool
	Plot       bool
}

type REMCRequest struct {
	Sequence   string
	AminoAcids bool
	Input      string
	Placement  string
	GridSize   int
	Seed       int64
	Replicas   int     // 5
	Steps      int     // 1000
	LocalSteps int     // 100
	TMin       float64 // 100
	TMax       float64 // 200
	// EnergyCutoff stops the run early; nil runs every step.
	EnergyCutoff *int
	Workers      int
	FrameEvery   int
	Draw         bool
	Plot         bool
}

type RunSummary struct {
	RunID         string
	Algorithm     string
	Sequence      string
	ArtifactsDir  string
	InitialEnergy int
	FinalEnergy   int
	BestEnergy    int
	Trace         []model.EnergyPoint
	// Acceptance is the Metropolis acceptance rate of an MC run.
	Acceptance    float64
	Rounds        int
	CutoffReached bool
	Exchanges     []model.ExchangeStat
	// InitialDrawing and FinalDrawing are set when Draw was requested.
	InitialDrawing string
	FinalDrawing   string
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID        string
	CreatedAtUTC string
	Algorithm    string
	Sequence     string
	Length       int
	Seed         int64
	Steps        int
	FinalEnergy  int
	BestEnergy   int
}

// RunRef selects a stored run either by id or as the most recent one.
type RunRef struct {
	RunID  string
	Latest bool
}

type TraceRequest struct {
	RunRef
	Limit int
}

type ExportRequest struct {
	RunRef
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

type PDBRequest struct {
	RunRef
	// OutPath defaults to <exports>/<run-id>.pdb.
	OutPath string
}

type BenchmarkRequest struct {
	Algorithm string
	MC        MCRequest
	REMC      REMCRequest
	// Runs repeats the configured request with seeds Seed, Seed+1, ...
	Runs         int
	TargetEnergy *int
	Notes        string
}

type BenchmarkSummary struct {
	ExperimentID string
	ReportDir    string
	Evaluations  stats.BenchmarkEvaluationStats
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	benchmarksDir := opts.BenchmarksDir
	if benchmarksDir == "" {
		benchmarksDir = defaultBenchmarksDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:         store,
		benchmarksDir: benchmarksDir,
		exportsDir:    exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.ensureInit(ctx)
}

func (c *Client) Reset(ctx context.Context) error {
	resetter, ok := c.store.(storage.Resetter)
	if !ok {
		return errors.New("store does not support reset")
	}
	if err := resetter.Reset(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}

func (c *Client) FoldMC(ctx context.Context, req MCRequest) (RunSummary, error) {
	if req.Steps <= 0 {
		req.Steps = 1000
	}
	if req.Temperature <= 0 {
		req.Temperature = 200
	}
	if req.Placement == "" {
		req.Placement = string(lattice.ModeLinear)
	}
	if req.TraceEvery <= 0 {
		req.TraceEvery = max(req.Steps/100, 1)
	}
	if req.FrameEvery < 0 {
		return RunSummary{}, errors.New("frame interval must be >= 0")
	}
	chain, err := protein.Parse(req.Sequence, req.AminoAcids)
	if err != nil {
		return RunSummary{}, err
	}
	mode, err := lattice.ParseMode(req.Placement)
	if err != nil {
		return RunSummary{}, err
	}
	if err := c.ensureInit(ctx); err != nil {
		return RunSummary{}, err
	}

	// Placement and search share one stream, as search.FoldMC does.
	rng := rand.New(rand.NewSource(req.Seed))
	start, err := lattice.New(chain, lattice.Config{Mode: mode, Size: req.GridSize, Rand: rng})
	if err != nil {
		return RunSummary{}, err
	}
	final, res, err := search.RunMC(ctx, start, search.MCConfig{
		Steps:       req.Steps,
		Temperature: req.Temperature,
		Rand:        rng,
		TraceEvery:  req.TraceEvery,
		FrameEvery:  req.FrameEvery,
	})
	if err != nil {
		return RunSummary{}, err
	}

	record := model.RunRecord{
		Algorithm:     model.AlgorithmMC,
		Sequence:      chain.String(),
		Input:         req.Input,
		Placement:     string(mode),
		GridSize:      start.Size(),
		Seed:          req.Seed,
		Steps:         req.Steps,
		Temperature:   req.Temperature,
		InitialEnergy: res.InitialEnergy,
		FinalEnergy:   res.FinalEnergy,
		BestEnergy:    res.BestEnergy,
	}
	out := outcome{
		record: record,
		config: stats.RunConfig{
			TraceEvery: req.TraceEvery,
			FrameEvery: req.FrameEvery,
		},
		start:  start,
		final:  final,
		trace:  energyPoints(res.Trace),
		frames: statsFrames(res.Frames),
		draw:   req.Draw,
		plot:   req.Plot,
	}
	summary, err := c.persist(ctx, out)
	if err != nil {
		return RunSummary{}, err
	}
	summary.Acceptance = res.AcceptanceRate()
	return summary, nil
}

func (c *Client) FoldREMC(ctx context.Context, req REMCRequest) (RunSummary, error) {
	if req.Replicas <= 0 {
		req.Replicas = 5
	}
	if req.Steps <= 0 {
		req.Steps = 1000
	}
	if req.LocalSteps <= 0 {
		req.LocalSteps = 100
	}
	if req.TMin <= 0 {
		req.TMin = 100
	}
	if req.TMax <= 0 {
		req.TMax = 200
	}
	if req.Placement == "" {
		req.Placement = string(lattice.ModeLinear)
	}
	chain, err := protein.Parse(req.Sequence, req.AminoAcids)
	if err != nil {
		return RunSummary{}, err
	}
	mode, err := lattice.ParseMode(req.Placement)
	if err != nil {
		return RunSummary{}, err
	}
	if err := c.ensureInit(ctx); err != nil {
		return RunSummary{}, err
	}

	start, err := lattice.New(chain, lattice.Config{
		Mode: mode,
		Size: req.GridSize,
		Rand: rand.New(rand.NewSource(req.Seed)),
	})
	if err != nil {
		return RunSummary{}, err
	}
	best, res, err := search.RunREMC(ctx, start, search.REMCConfig{
		Replicas:     req.Replicas,
		Steps:        req.Steps,
		LocalSteps:   req.LocalSteps,
		TMin:         req.TMin,
		TMax:         req.TMax,
		EnergyCutoff: req.EnergyCutoff,
		Workers:      req.Workers,
		Seed:         req.Seed,
		FrameEvery:   req.FrameEvery,
	})
	if err != nil {
		return RunSummary{}, err
	}

	exchanges := make([]model.ExchangeStat, len(res.Exchanges))
	for i, ex := range res.Exchanges {
		exchanges[i] = model.ExchangeStat{Pair: ex.Pair, TLow: ex.TLow, THigh: ex.THigh, Attempts: ex.Attempts, Accepted: ex.Accepted}
	}
	record := model.RunRecord{
		Algorithm:     model.AlgorithmREMC,
		Sequence:      chain.String(),
		Input:         req.Input,
		Placement:     string(mode),
		GridSize:      start.Size(),
		Seed:          req.Seed,
		Steps:         req.Steps,
		Replicas:      req.Replicas,
		LocalSteps:    req.LocalSteps,
		TMin:          req.TMin,
		TMax:          req.TMax,
		EnergyCutoff:  req.EnergyCutoff,
		InitialEnergy: res.InitialEnergy,
		FinalEnergy:   res.BestEnergy,
		BestEnergy:    res.BestEnergy,
	}
	out := outcome{
		record:    record,
		config:    stats.RunConfig{Workers: req.Workers, FrameEvery: req.FrameEvery},
		start:     start,
		final:     best,
		trace:     energyPoints(res.Trace),
		frames:    statsFrames(res.Frames),
		exchanges: exchanges,
		draw:      req.Draw,
		plot:      req.Plot,
	}
	summary, err := c.persist(ctx, out)
	if err != nil {
		return RunSummary{}, err
	}
	summary.Rounds = res.Rounds
	summary.CutoffReached = res.CutoffReached
	return summary, nil
}

type outcome struct {
	record    model.RunRecord
	config    stats.RunConfig
	start     *lattice.Lattice
	final     *lattice.Lattice
	trace     []model.EnergyPoint
	frames    []stats.Frame
	exchanges []model.ExchangeStat
	draw      bool
	plot      bool
}

// persist stores the run record, conformation, trace and exchange statistics
// and writes the artifact directory and run index entry.
func (c *Client) persist(ctx context.Context, out outcome) (RunSummary, error) {
	now := time.Now().UTC()
	record := out.record
	record.VersionedRecord = storage.Stamp()
	record.ID = fmt.Sprintf("%s-%s", record.Algorithm, uuid.NewString())
	record.CreatedAtUTC = now.Format(time.RFC3339Nano)

	conformation := model.Conformation{
		VersionedRecord: storage.Stamp(),
		RunID:           record.ID,
		Sequence:        record.Sequence,
		GridSize:        out.final.Size(),
		Energy:          out.final.Energy(),
		Positions:       positions(out.final.Positions()),
	}

	if err := c.store.SaveRun(ctx, record); err != nil {
		return RunSummary{}, fmt.Errorf("save run: %w", err)
	}
	if err := c.store.SaveConformation(ctx, conformation); err != nil {
		return RunSummary{}, fmt.Errorf("save conformation: %w", err)
	}
	if err := c.store.SaveEnergyTrace(ctx, record.ID, out.trace); err != nil {
		return RunSummary{}, fmt.Errorf("save energy trace: %w", err)
	}
	if out.exchanges != nil {
		if err := c.store.SaveExchangeStats(ctx, record.ID, out.exchanges); err != nil {
			return RunSummary{}, fmt.Errorf("save exchange stats: %w", err)
		}
	}

	summary := RunSummary{
		RunID:         record.ID,
		Algorithm:     record.Algorithm,
		Sequence:      record.Sequence,
		InitialEnergy: record.InitialEnergy,
		FinalEnergy:   record.FinalEnergy,
		BestEnergy:    record.BestEnergy,
		Trace:         append([]model.EnergyPoint(nil), out.trace...),
		Exchanges:     out.exchanges,
	}
	rendered, err := draw(out.final)
	if err != nil {
		return RunSummary{}, err
	}
	if out.draw {
		summary.InitialDrawing, err = draw(out.start)
		if err != nil {
			return RunSummary{}, err
		}
		summary.FinalDrawing = rendered
	}

	cfg := out.config
	cfg.RunID = record.ID
	cfg.Algorithm = record.Algorithm
	cfg.Sequence = record.Sequence
	cfg.Input = record.Input
	cfg.Placement = record.Placement
	cfg.GridSize = record.GridSize
	cfg.Seed = record.Seed
	cfg.Steps = record.Steps
	cfg.Temperature = record.Temperature
	cfg.Replicas = record.Replicas
	cfg.LocalSteps = record.LocalSteps
	cfg.TMin = record.TMin
	cfg.TMax = record.TMax
	cfg.EnergyCutoff = record.EnergyCutoff

	runDir, err := stats.WriteRunArtifacts(c.benchmarksDir, stats.RunArtifacts{
		Config: cfg,
		History: stats.EnergyHistory{
			Trace:         out.trace,
			InitialEnergy: record.InitialEnergy,
			FinalEnergy:   record.FinalEnergy,
			BestEnergy:    record.BestEnergy,
		},
		Conformation: conformation,
		Exchanges:    out.exchanges,
		Frames:       out.frames,
		Rendered:     rendered,
		Plot:         out.plot,
	})
	if err != nil {
		return RunSummary{}, err
	}
	if err := stats.AppendRunIndex(c.benchmarksDir, stats.RunIndexEntry{
		RunID:        record.ID,
		Algorithm:    record.Algorithm,
		Sequence:     record.Sequence,
		Length:       len(record.Sequence),
		Seed:         record.Seed,
		Steps:        record.Steps,
		FinalEnergy:  record.FinalEnergy,
		BestEnergy:   record.BestEnergy,
		CreatedAtUTC: record.CreatedAtUTC,
	}); err != nil {
		return RunSummary{}, err
	}
	summary.ArtifactsDir = filepath.Clean(runDir)
	return summary, nil
}

func (c *Client) Runs(_ context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	entries, err := stats.ListRunIndex(c.benchmarksDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	out := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, RunItem{
			RunID:        e.RunID,
			CreatedAtUTC: e.CreatedAtUTC,
			Algorithm:    e.Algorithm,
			Sequence:     e.Sequence,
			Length:       e.Length,
			Seed:         e.Seed,
			Steps:        e.Steps,
			FinalEnergy:  e.FinalEnergy,
			BestEnergy:   e.BestEnergy,
		})
	}
	return out, nil
}

// Run returns the stored record of a run. Runs made by another process with a
// memory store are rebuilt from their artifact directory.
func (c *Client) Run(ctx context.Context, ref RunRef) (model.RunRecord, error) {
	runID, err := c.resolveRunID(ref, "run")
	if err != nil {
		return model.RunRecord{}, err
	}
	if err := c.ensureInit(ctx); err != nil {
		return model.RunRecord{}, err
	}
	record, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return model.RunRecord{}, err
	}
	if ok {
		return record, nil
	}

	cfg, ok, err := stats.ReadRunConfig(c.benchmarksDir, runID)
	if err != nil {
		return model.RunRecord{}, err
	}
	if !ok {
		return model.RunRecord{}, fmt.Errorf("run not found: %s", runID)
	}
	history, _, err := stats.ReadEnergyHistory(c.benchmarksDir, runID)
	if err != nil {
		return model.RunRecord{}, err
	}
	return model.RunRecord{
		VersionedRecord: storage.Stamp(),
		ID:              cfg.RunID,
		Algorithm:       cfg.Algorithm,
		Sequence:        cfg.Sequence,
		Input:           cfg.Input,
		Placement:       cfg.Placement,
		GridSize:        cfg.GridSize,
		Seed:            cfg.Seed,
		Steps:           cfg.Steps,
		Temperature:     cfg.Temperature,
		Replicas:        cfg.Replicas,
		LocalSteps:      cfg.LocalSteps,
		TMin:            cfg.TMin,
		TMax:            cfg.TMax,
		EnergyCutoff:    cfg.EnergyCutoff,
		InitialEnergy:   history.InitialEnergy,
		FinalEnergy:     history.FinalEnergy,
		BestEnergy:      history.BestEnergy,
	}, nil
}

func (c *Client) Conformation(ctx context.Context, ref RunRef) (model.Conformation, error) {
	runID, err := c.resolveRunID(ref, "conformation")
	if err != nil {
		return model.Conformation{}, err
	}
	if err := c.ensureInit(ctx); err != nil {
		return model.Conformation{}, err
	}
	conformation, ok, err := c.store.GetConformation(ctx, runID)
	if err != nil {
		return model.Conformation{}, err
	}
	if !ok {
		conformation, ok, err = stats.ReadConformation(c.benchmarksDir, runID)
		if err != nil {
			return model.Conformation{}, err
		}
	}
	if !ok {
		return model.Conformation{}, fmt.Errorf("conformation not found for run id: %s", runID)
	}
	return conformation, nil
}

func (c *Client) EnergyTrace(ctx context.Context, req TraceRequest) ([]model.EnergyPoint, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	runID, err := c.resolveRunID(req.RunRef, "energy trace")
	if err != nil {
		return nil, err
	}
	if err := c.ensureInit(ctx); err != nil {
		return nil, err
	}
	trace, ok, err := c.store.GetEnergyTrace(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		history, found, err := stats.ReadEnergyHistory(c.benchmarksDir, runID)
		if err != nil {
			return nil, err
		}
		trace, ok = history.Trace, found
	}
	if !ok {
		return nil, fmt.Errorf("energy trace not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(trace) > req.Limit {
		trace = trace[:req.Limit]
	}
	return append([]model.EnergyPoint(nil), trace...), nil
}

// ExchangeStats returns the per-pair swap counts of a replica exchange run.
func (c *Client) ExchangeStats(ctx context.Context, ref RunRef) ([]model.ExchangeStat, error) {
	runID, err := c.resolveRunID(ref, "exchange stats")
	if err != nil {
		return nil, err
	}
	if err := c.ensureInit(ctx); err != nil {
		return nil, err
	}
	exchanges, ok, err := c.store.GetExchangeStats(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		exchanges, ok, err = stats.ReadExchangeStats(c.benchmarksDir, runID)
		if err != nil {
			return nil, err
		}
	}
	if !ok {
		return nil, fmt.Errorf("exchange stats not found for run id: %s", runID)
	}
	return exchanges, nil
}

// Draw renders a stored conformation the way the terminal output shows it.
func (c *Client) Draw(conformation model.Conformation) (string, error) {
	chain, err := protein.NewChain(conformation.Sequence)
	if err != nil {
		return "", err
	}
	points := make([]lattice.Point, len(conformation.Positions))
	for i, p := range conformation.Positions {
		points[i] = lattice.Point{Row: p.Row, Col: p.Col}
	}
	l, err := lattice.FromPositions(chain, conformation.GridSize, points)
	if err != nil {
		return "", err
	}
	return draw(l)
}

func (c *Client) Export(_ context.Context, req ExportRequest) (ExportSummary, error) {
	if req.RunID != "" && req.Latest {
		return ExportSummary{}, errors.New("use either run id or latest")
	}
	if req.RunID == "" && !req.Latest {
		return ExportSummary{}, errors.New("export requires run id or latest")
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}
	runID, err := c.resolveRunID(req.RunRef, "export")
	if err != nil {
		return ExportSummary{}, err
	}

	exportedDir, err := stats.ExportRunArtifacts(c.benchmarksDir, runID, req.OutDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(exportedDir)}, nil
}

// WritePDB writes the stored conformation of a run as a C-alpha trace and
// returns the file path.
func (c *Client) WritePDB(ctx context.Context, req PDBRequest) (string, error) {
	conformation, err := c.Conformation(ctx, req.RunRef)
	if err != nil {
		return "", err
	}
	path := req.OutPath
	if path == "" {
		path = filepath.Join(c.exportsDir, conformation.RunID+".pdb")
	}
	if err := ensureParentDir(path); err != nil {
		return "", err
	}
	if err := export.WritePDBFile(path, conformation); err != nil {
		return "", err
	}
	return filepath.Clean(path), nil
}

// Benchmark repeats one request over consecutive seeds and scores the runs
// against TargetEnergy.
func (c *Client) Benchmark(ctx context.Context, req BenchmarkRequest) (BenchmarkSummary, error) {
	if req.Runs <= 0 {
		req.Runs = 10
	}
	var sequence string
	switch req.Algorithm {
	case "", model.AlgorithmMC:
		req.Algorithm = model.AlgorithmMC
		sequence = req.MC.Sequence
	case model.AlgorithmREMC:
		sequence = req.REMC.Sequence
	default:
		return BenchmarkSummary{}, fmt.Errorf("unsupported algorithm: %s", req.Algorithm)
	}

	exp := stats.BenchmarkExperiment{
		ID:           fmt.Sprintf("bench-%s", uuid.NewString()),
		Notes:        req.Notes,
		Algorithm:    req.Algorithm,
		Sequence:     strings.ToUpper(sequence),
		TargetEnergy: req.TargetEnergy,
		ProgressFlag: stats.ProgressInProgress,
		TotalRuns:    req.Runs,
		StartedAtUTC: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := stats.WriteBenchmarkExperiment(c.benchmarksDir, exp); err != nil {
		return BenchmarkSummary{}, err
	}

	for i := 0; i < req.Runs; i++ {
		var (
			summary RunSummary
			seed    int64
			err     error
		)
		if req.Algorithm == model.AlgorithmMC {
			run := req.MC
			run.Seed += int64(i)
			seed = run.Seed
			summary, err = c.FoldMC(ctx, run)
		} else {
			run := req.REMC
			run.Seed += int64(i)
			seed = run.Seed
			summary, err = c.FoldREMC(ctx, run)
		}
		if err != nil {
			return BenchmarkSummary{}, fmt.Errorf("benchmark run %d: %w", i+1, err)
		}
		exp.Sequence = summary.Sequence
		exp.Record(stats.BenchmarkRun{
			RunID:       summary.RunID,
			Seed:        seed,
			FinalEnergy: summary.FinalEnergy,
			BestEnergy:  summary.BestEnergy,
		})
		if err := stats.WriteBenchmarkExperiment(c.benchmarksDir, exp); err != nil {
			return BenchmarkSummary{}, err
		}
	}
	exp.CompletedAtUTC = time.Now().UTC().Format(time.RFC3339Nano)
	if err := stats.WriteBenchmarkExperiment(c.benchmarksDir, exp); err != nil {
		return BenchmarkSummary{}, err
	}

	evaluations, err := stats.BuildBenchmarkEvaluationStats(c.benchmarksDir, exp, req.TargetEnergy)
	if err != nil {
		return BenchmarkSummary{}, err
	}
	reportDir, err := stats.WriteBenchmarkerReport(c.benchmarksDir, stats.BenchmarkerReport{
		ExperimentID: exp.ID,
		Experiment:   exp,
		Evaluations:  evaluations,
	})
	if err != nil {
		return BenchmarkSummary{}, err
	}
	return BenchmarkSummary{ExperimentID: exp.ID, ReportDir: filepath.Clean(reportDir), Evaluations: evaluations}, nil
}

func (c *Client) ensureInit(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}

func (c *Client) resolveRunID(ref RunRef, what string) (string, error) {
	if ref.RunID != "" && ref.Latest {
		return "", errors.New("use either run id or latest")
	}
	if !ref.Latest {
		if ref.RunID == "" {
			return "", fmt.Errorf("%s requires run id or latest", what)
		}
		return ref.RunID, nil
	}
	entries, err := stats.ListRunIndex(c.benchmarksDir)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", errors.New("no runs available")
	}
	return entries[0].RunID, nil
}
