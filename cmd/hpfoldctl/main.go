package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hpfold/internal/model"
	"hpfold/internal/protein"
	"hpfold/internal/stats"
	"hpfold/internal/storage"
	"hpfold/pkg/hpfold"
)

const (
	benchmarksDir = "benchmarks"
	exportsDir    = "exports"
	defaultDBPath = "hpfold.db"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "mc":
		return runMC(ctx, args[1:])
	case "remc":
		return runREMC(ctx, args[1:])
	case "benchmark":
		return runBenchmark(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "show":
		return runShow(ctx, args[1:])
	case "trace":
		return runTrace(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	case "pdb":
		return runPDB(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Reset(ctx); err != nil {
		return err
	}

	fmt.Printf("reset store=%s\n", *storeKind)
	return nil
}

func runMC(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("mc", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional fold config JSON path")
	registerInputFlags(fs)
	registerMCFlags(fs)
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := resolveFoldConfig(fs, *configPath)
	if err != nil {
		return err
	}
	req, err := mcRequest(cfg)
	if err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.FoldMC(ctx, req)
	if err != nil {
		return err
	}
	printRunSummary(summary, req.Seed)
	fmt.Printf("acceptance_rate=%.4f\n", summary.Acceptance)
	fmt.Printf("artifacts_dir=%s\n", summary.ArtifactsDir)
	return nil
}

func runREMC(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("remc", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional fold config JSON path")
	registerInputFlags(fs)
	registerREMCFlags(fs)
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := resolveFoldConfig(fs, *configPath)
	if err != nil {
		return err
	}
	req, err := remcRequest(cfg)
	if err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.FoldREMC(ctx, req)
	if err != nil {
		return err
	}
	printRunSummary(summary, req.Seed)
	fmt.Printf("rounds=%d cutoff_reached=%t\n", summary.Rounds, summary.CutoffReached)
	printExchanges(summary.Exchanges)
	fmt.Printf("artifacts_dir=%s\n", summary.ArtifactsDir)
	return nil
}

func runBenchmark(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("benchmark", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional fold config JSON path")
	algorithm := fs.String("algorithm", model.AlgorithmMC, "search algorithm: mc|remc")
	runs := fs.Int("runs", 10, "number of runs over consecutive seeds")
	target := fs.String("target", "none", "target energy counted as success, or none")
	notes := fs.String("notes", "", "free-form experiment notes")
	registerInputFlags(fs)
	registerMCFlags(fs)
	registerREMCFlags(fs)
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runs <= 0 {
		return errors.New("runs must be > 0")
	}
	targetEnergy, err := parseEnergyCutoff(*target)
	if err != nil {
		return err
	}
	cfg, err := resolveFoldConfig(fs, *configPath)
	if err != nil {
		return err
	}

	req := hpfold.BenchmarkRequest{
		Algorithm:    *algorithm,
		Runs:         *runs,
		TargetEnergy: targetEnergy,
		Notes:        *notes,
	}
	switch *algorithm {
	case model.AlgorithmMC:
		req.MC, err = mcRequest(cfg)
	case model.AlgorithmREMC:
		req.REMC, err = remcRequest(cfg)
	default:
		return fmt.Errorf("unsupported algorithm: %s", *algorithm)
	}
	if err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Benchmark(ctx, req)
	if err != nil {
		return err
	}
	eval := summary.Evaluations
	for _, r := range eval.Runs {
		fmt.Printf("run_id=%s seed=%d best_energy=%d success=%t steps_to_goal=%d\n", r.RunID, r.Seed, r.BestEnergy, r.Success, r.StepsToGoal)
	}
	fmt.Printf("benchmark completed experiment_id=%s algorithm=%s runs=%d\n", summary.ExperimentID, *algorithm, eval.TotalRuns)
	fmt.Printf("success_runs=%d success_rate=%.4f mean_best=%.4f std_best=%.4f min_best=%.0f max_best=%.0f\n",
		eval.SuccessRuns,
		eval.SuccessRate,
		eval.MeanBest,
		eval.StdBest,
		eval.MinBest,
		eval.MaxBest,
	)
	fmt.Printf("report_dir=%s\n", summary.ReportDir)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := newClient("memory", "")
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	items, err := client.Runs(ctx, hpfold.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	if *jsonOut {
		type runsItem struct {
			RunID        string `json:"run_id"`
			CreatedAtUTC string `json:"created_at_utc"`
			Algorithm    string `json:"algorithm"`
			Sequence     string `json:"sequence"`
			Length       int    `json:"length"`
			Seed         int64  `json:"seed"`
			Steps        int    `json:"steps"`
			FinalEnergy  int    `json:"final_energy"`
			BestEnergy   int    `json:"best_energy"`
		}
		out := make([]runsItem, 0, len(items))
		for _, item := range items {
			out = append(out, runsItem(item))
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for _, item := range items {
		fmt.Printf("run_id=%s created_at=%s algorithm=%s length=%d seed=%d steps=%d final_energy=%d best_energy=%d\n",
			item.RunID,
			item.CreatedAtUTC,
			item.Algorithm,
			item.Length,
			item.Seed,
			item.Steps,
			item.FinalEnergy,
			item.BestEnergy,
		)
	}
	return nil
}

func runShow(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show the most recent run from run index")
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	ref := hpfold.RunRef{RunID: *runID, Latest: *latest}
	record, err := client.Run(ctx, ref)
	if err != nil {
		return err
	}
	conformation, err := client.Conformation(ctx, hpfold.RunRef{RunID: record.ID})
	if err != nil {
		return err
	}
	drawing, err := client.Draw(conformation)
	if err != nil {
		return err
	}

	fmt.Printf("run_id=%s algorithm=%s created_at=%s\n", record.ID, record.Algorithm, record.CreatedAtUTC)
	fmt.Printf("sequence=%s length=%d placement=%s grid_size=%d seed=%d\n", record.Sequence, len(record.Sequence), record.Placement, record.GridSize, record.Seed)
	switch record.Algorithm {
	case model.AlgorithmREMC:
		cutoff := "none"
		if record.EnergyCutoff != nil {
			cutoff = fmt.Sprintf("%d", *record.EnergyCutoff)
		}
		fmt.Printf("replicas=%d steps=%d local_steps=%d tmin=%.2f tmax=%.2f energy_cutoff=%s\n",
			record.Replicas, record.Steps, record.LocalSteps, record.TMin, record.TMax, cutoff)
	default:
		fmt.Printf("steps=%d temperature=%.2f\n", record.Steps, record.Temperature)
	}
	fmt.Printf("initial_energy=%d final_energy=%d best_energy=%d\n", record.InitialEnergy, record.FinalEnergy, record.BestEnergy)
	fmt.Print(drawing)
	if record.Algorithm == model.AlgorithmREMC {
		exchanges, err := client.ExchangeStats(ctx, hpfold.RunRef{RunID: record.ID})
		if err != nil {
			return err
		}
		printExchanges(exchanges)
	}
	return nil
}

func runTrace(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("trace", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "use the most recent run from run index")
	limit := fs.Int("limit", 0, "max trace points to print (0 prints all)")
	jsonOut := fs.Bool("json", false, "emit the trace as JSON")
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit < 0 {
		return errors.New("limit must be >= 0")
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	trace, err := client.EnergyTrace(ctx, hpfold.TraceRequest{
		RunRef: hpfold.RunRef{RunID: *runID, Latest: *latest},
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(trace)
	}
	for _, point := range trace {
		fmt.Printf("step=%d energy=%d\n", point.Step, point.Energy)
	}
	summary, err := stats.SummarizeTrace(trace)
	if err != nil {
		return err
	}
	fmt.Printf("count=%d mean=%.4f std=%.4f min=%.0f max=%.0f improvement=%.0f\n",
		summary.Count, summary.Mean, summary.StdDev, summary.Min, summary.Max, summary.Improvement)
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the most recent run from run index")
	outDir := fs.String("out", exportsDir, "export output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("export requires --run-id or --latest")
	}

	client, err := newClient("memory", "")
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	exported, err := client.Export(ctx, hpfold.ExportRequest{
		RunRef: hpfold.RunRef{RunID: *runID, Latest: *latest},
		OutDir: *outDir,
	})
	if err != nil {
		return err
	}

	fmt.Printf("exported run_id=%s to=%s\n", exported.RunID, exported.Directory)
	return nil
}

func runPDB(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pdb", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "write the most recent run from run index")
	out := fs.String("out", "", "output path (default exports/<run-id>.pdb)")
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	path, err := client.WritePDB(ctx, hpfold.PDBRequest{
		RunRef:  hpfold.RunRef{RunID: *runID, Latest: *latest},
		OutPath: *out,
	})
	if err != nil {
		return err
	}
	fmt.Printf("wrote pdb=%s\n", path)
	return nil
}

func storeFlags(fs *flag.FlagSet) (*string, *string) {
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	return storeKind, dbPath
}

func registerInputFlags(fs *flag.FlagSet) {
	fs.String("p", "", "protein sequence")
	fs.String("f", "", "file holding the protein sequence (raw or FASTA)")
	fs.Bool("aa", false, "classify a one-letter amino-acid sequence into H/P")
	fs.String("i", "linear", "initial placement: linear|random")
	fs.Int("grid-size", 0, "lattice side length (0 uses twice the chain length)")
	fs.Int64("seed", 1, "rng seed")
	fs.Int("frames", 0, "record the conformation every n steps into the trajectory (0 disables)")
	fs.Bool("draw", false, "print the initial and final lattice")
	fs.Bool("plot", false, "write energy.png next to the run artifacts")
}

func registerMCFlags(fs *flag.FlagSet) {
	fs.Int("n", 1000, "number of Monte Carlo steps")
	fs.Float64("t", 200, "temperature")
	fs.Int("trace-every", 0, "energy sampling interval (0 uses steps/100)")
}

func registerREMCFlags(fs *flag.FlagSet) {
	fs.Int("replicas", 5, "number of replicas")
	fs.Int("steps", 1000, "maximum number of exchange rounds")
	fs.Int("local-steps", 100, "Monte Carlo steps per replica and round")
	fs.Float64("tmin", 100, "lowest replica temperature")
	fs.Float64("tmax", 200, "highest replica temperature")
	fs.String("energy-cutoff", "none", "stop once the best energy reaches this value, or none")
	fs.Int("workers", 0, "concurrent replicas (0 uses GOMAXPROCS)")
}

// resolveFoldConfig merges the optional config file with the flags. Without a
// config file every flag default applies first; flags given on the command
// line always win.
func resolveFoldConfig(fs *flag.FlagSet, configPath string) (foldConfig, error) {
	cfg, err := loadOrDefaultFoldConfig(configPath)
	if err != nil {
		return foldConfig{}, err
	}
	defaults := make(map[string]bool)
	values := make(map[string]any)
	fs.VisitAll(func(f *flag.Flag) {
		if getter, ok := f.Value.(flag.Getter); ok {
			values[f.Name] = getter.Get()
			defaults[f.Name] = true
		}
	})
	if configPath == "" {
		if err := overrideFromFlags(&cfg, defaults, values); err != nil {
			return foldConfig{}, err
		}
	}
	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		explicit[f.Name] = true
	})
	if err := overrideFromFlags(&cfg, explicit, values); err != nil {
		return foldConfig{}, err
	}
	return cfg, nil
}

func readSequenceInput(cfg foldConfig) (string, string, error) {
	switch {
	case cfg.Sequence != "" && cfg.File != "":
		return "", "", errors.New("use either -p or -f, not both")
	case cfg.Sequence != "":
		return cfg.Sequence, "", nil
	case cfg.File != "":
		f, err := os.Open(cfg.File)
		if err != nil {
			return "", "", err
		}
		defer f.Close()
		seq, err := protein.ReadSequence(f)
		if err != nil {
			return "", "", fmt.Errorf("read %s: %w", cfg.File, err)
		}
		return seq, filepath.Clean(cfg.File), nil
	default:
		return "", "", usageError("a sequence is required: -p <sequence> or -f <file>")
	}
}

func mcRequest(cfg foldConfig) (hpfold.MCRequest, error) {
	seq, input, err := readSequenceInput(cfg)
	if err != nil {
		return hpfold.MCRequest{}, err
	}
	if cfg.Steps <= 0 {
		return hpfold.MCRequest{}, errors.New("steps must be > 0")
	}
	if cfg.Temperature <= 0 {
		return hpfold.MCRequest{}, errors.New("temperature must be > 0")
	}
	return hpfold.MCRequest{
		Sequence:    seq,
		AminoAcids:  cfg.AminoAcids,
		Input:       input,
		Placement:   cfg.Placement,
		GridSize:    cfg.GridSize,
		Seed:        cfg.Seed,
		Steps:       cfg.Steps,
		Temperature: cfg.Temperature,
		TraceEvery:  cfg.TraceEvery,
		FrameEvery:  cfg.FrameEvery,
		Draw:        cfg.Draw,
		Plot:        cfg.Plot,
	}, nil
}

func remcRequest(cfg foldConfig) (hpfold.REMCRequest, error) {
	seq, input, err := readSequenceInput(cfg)
	if err != nil {
		return hpfold.REMCRequest{}, err
	}
	if cfg.Replicas <= 0 || cfg.Steps <= 0 || cfg.LocalSteps <= 0 {
		return hpfold.REMCRequest{}, errors.New("replicas, steps and local steps must be > 0")
	}
	if cfg.TMin <= 0 || cfg.TMax < cfg.TMin {
		return hpfold.REMCRequest{}, fmt.Errorf("invalid temperature range: tmin=%g tmax=%g", cfg.TMin, cfg.TMax)
	}
	if cfg.Workers < 0 {
		return hpfold.REMCRequest{}, errors.New("workers must be >= 0")
	}
	return hpfold.REMCRequest{
		Sequence:     seq,
		AminoAcids:   cfg.AminoAcids,
		Input:        input,
		Placement:    cfg.Placement,
		GridSize:     cfg.GridSize,
		Seed:         cfg.Seed,
		Replicas:     cfg.Replicas,
		Steps:        cfg.Steps,
		LocalSteps:   cfg.LocalSteps,
		TMin:         cfg.TMin,
		TMax:         cfg.TMax,
		EnergyCutoff: cfg.EnergyCutoff,
		Workers:      cfg.Workers,
		FrameEvery:   cfg.FrameEvery,
		Draw:         cfg.Draw,
		Plot:         cfg.Plot,
	}, nil
}

func newClient(storeKind, dbPath string) (*hpfold.Client, error) {
	return hpfold.New(hpfold.Options{
		StoreKind:     storeKind,
		DBPath:        dbPath,
		BenchmarksDir: benchmarksDir,
		ExportsDir:    exportsDir,
	})
}

func printRunSummary(summary hpfold.RunSummary, seed int64) {
	fmt.Printf("run completed run_id=%s algorithm=%s length=%d seed=%d\n", summary.RunID, summary.Algorithm, len(summary.Sequence), seed)
	if summary.InitialDrawing != "" {
		fmt.Printf("initial conformation energy=%d\n", summary.InitialEnergy)
		fmt.Print(summary.InitialDrawing)
		fmt.Printf("final conformation energy=%d\n", summary.FinalEnergy)
		fmt.Print(summary.FinalDrawing)
	}
	fmt.Printf("initial_energy=%d final_energy=%d best_energy=%d\n", summary.InitialEnergy, summary.FinalEnergy, summary.BestEnergy)
}

func printExchanges(exchanges []model.ExchangeStat) {
	for _, ex := range exchanges {
		rate := 0.0
		if ex.Attempts > 0 {
			rate = float64(ex.Accepted) / float64(ex.Attempts)
		}
		fmt.Printf("pair=%d t_low=%.2f t_high=%.2f attempts=%d accepted=%d rate=%.4f\n", ex.Pair, ex.TLow, ex.THigh, ex.Attempts, ex.Accepted, rate)
	}
	if len(exchanges) == 0 {
		return
	}
	summary := stats.SummarizeExchanges(exchanges)
	fmt.Printf("exchange_attempts=%d exchange_accepted=%d mean_rate=%.4f min_rate=%.4f\n", summary.Attempts, summary.Accepted, summary.MeanRate, summary.MinRate)
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: hpfoldctl <%s> [flags]", msg, strings.Join(commands, "|"))
}

var commands = []string{"init", "reset", "mc", "remc", "benchmark", "runs", "show", "trace", "export", "pdb"}
