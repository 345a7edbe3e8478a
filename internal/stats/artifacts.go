package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"hpfold/internal/model"
)

const (
	runIndexFile        = "run_index.json"
	configFile          = "config.json"
	energyTraceFile     = "energy_trace.json"
	conformationFile    = "conformation.json"
	exchangeStatsFile   = "exchange_stats.json"
	trajectoryFile      = "trajectory.jsonl.zst"
	energyPlotFile      = "energy.png"
	renderedLatticeFile = "lattice.txt"
)

type RunConfig struct {
	RunID        string  `json:"run_id"`
	Algorithm    string  `json:"algorithm"`
	Sequence     string  `json:"sequence"`
	Input        string  `json:"input,omitempty"`
	Placement    string  `json:"placement"`
	GridSize     int     `json:"grid_size"`
	Seed         int64   `json:"seed"`
	Steps        int     `json:"steps"`
	Temperature  float64 `json:"temperature,omitempty"`
	Replicas     int     `json:"replicas,omitempty"`
	LocalSteps   int     `json:"local_steps,omitempty"`
	TMin         float64 `json:"tmin,omitempty"`
	TMax         float64 `json:"tmax,omitempty"`
	EnergyCutoff *int    `json:"energy_cutoff,omitempty"`
	Workers      int     `json:"workers,omitempty"`
	TraceEvery   int     `json:"trace_every,omitempty"`
	FrameEvery   int     `json:"frame_every,omitempty"`
}

type EnergyHistory struct {
	Trace         []model.EnergyPoint `json:"trace"`
	InitialEnergy int                 `json:"initial_energy"`
	FinalEnergy   int                 `json:"final_energy"`
	BestEnergy    int                 `json:"best_energy"`
	Summary       TraceSummary        `json:"summary"`
}

type RunArtifacts struct {
	Config       RunConfig
	History      EnergyHistory
	Conformation model.Conformation
	Exchanges    []model.ExchangeStat
	Frames       []Frame
	// Rendered is the terminal drawing of the final lattice.
	Rendered string
	// Plot requests energy.png next to the JSON artifacts.
	Plot bool
}

type RunIndexEntry struct {
	RunID        string `json:"run_id"`
	Algorithm    string `json:"algorithm"`
	Sequence     string `json:"sequence"`
	Length       int    `json:"length"`
	Seed         int64  `json:"seed"`
	Steps        int    `json:"steps"`
	FinalEnergy  int    `json:"final_energy"`
	BestEnergy   int    `json:"best_energy"`
	CreatedAtUTC string `json:"created_at_utc"`
}

func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if artifacts.History.Summary.Count == 0 && len(artifacts.History.Trace) > 0 {
		summary, err := SummarizeTrace(artifacts.History.Trace)
		if err != nil {
			return "", err
		}
		artifacts.History.Summary = summary
	}

	if err := writeJSON(filepath.Join(runDir, configFile), artifacts.Config); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, energyTraceFile), artifacts.History); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, conformationFile), artifacts.Conformation); err != nil {
		return "", err
	}
	if artifacts.Exchanges != nil {
		if err := writeJSON(filepath.Join(runDir, exchangeStatsFile), artifacts.Exchanges); err != nil {
			return "", err
		}
	}
	if len(artifacts.Frames) > 0 {
		if err := WriteTrajectoryFile(filepath.Join(runDir, trajectoryFile), artifacts.Frames); err != nil {
			return "", err
		}
	}
	if artifacts.Rendered != "" {
		if err := os.WriteFile(filepath.Join(runDir, renderedLatticeFile), []byte(artifacts.Rendered), 0o644); err != nil {
			return "", err
		}
	}
	if artifacts.Plot && len(artifacts.History.Trace) > 0 {
		title := fmt.Sprintf("%s energy (%s)", strings.ToUpper(artifacts.Config.Algorithm), artifacts.Config.RunID)
		if err := WriteEnergyPlot(filepath.Join(runDir, energyPlotFile), title, artifacts.History.Trace); err != nil {
			return "", err
		}
	}

	return runDir, nil
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

func ExportRunArtifacts(baseDir, runID, outDir string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("run id is required")
	}

	src := filepath.Join(baseDir, runID)
	if _, err := os.Stat(src); err != nil {
		return "", err
	}

	dst := filepath.Join(outDir, runID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}

	for _, file := range []string{configFile, energyTraceFile, conformationFile} {
		if err := copyFile(filepath.Join(src, file), filepath.Join(dst, file)); err != nil {
			return "", err
		}
	}
	for _, file := range []string{exchangeStatsFile, trajectoryFile, renderedLatticeFile, energyPlotFile} {
		path := filepath.Join(src, file)
		if _, err := os.Stat(path); err == nil {
			if err := copyFile(path, filepath.Join(dst, file)); err != nil {
				return "", err
			}
		} else if !os.IsNotExist(err) {
			return "", err
		}
	}

	return dst, nil
}

func ReadRunConfig(baseDir, runID string) (RunConfig, bool, error) {
	var cfg RunConfig
	ok, err := readJSON(filepath.Join(baseDir, runID, configFile), &cfg)
	return cfg, ok, err
}

func WriteRunConfig(baseDir, runID string, cfg RunConfig) error {
	if strings.TrimSpace(runID) == "" {
		return fmt.Errorf("run id is required")
	}
	if strings.TrimSpace(cfg.RunID) == "" {
		cfg.RunID = strings.TrimSpace(runID)
	}
	if cfg.RunID != strings.TrimSpace(runID) {
		return fmt.Errorf("run config run id mismatch: got=%s want=%s", cfg.RunID, strings.TrimSpace(runID))
	}
	runDir := filepath.Join(baseDir, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return err
	}
	return writeJSON(filepath.Join(runDir, configFile), cfg)
}

func ReadEnergyHistory(baseDir, runID string) (EnergyHistory, bool, error) {
	var history EnergyHistory
	ok, err := readJSON(filepath.Join(baseDir, runID, energyTraceFile), &history)
	return history, ok, err
}

func ReadConformation(baseDir, runID string) (model.Conformation, bool, error) {
	var conformation model.Conformation
	ok, err := readJSON(filepath.Join(baseDir, runID, conformationFile), &conformation)
	return conformation, ok, err
}

func ReadExchangeStats(baseDir, runID string) ([]model.ExchangeStat, bool, error) {
	var stats []model.ExchangeStat
	ok, err := readJSON(filepath.Join(baseDir, runID, exchangeStatsFile), &stats)
	return stats, ok, err
}

// ReadRunTrajectory loads the compressed frames of a run, if any were kept.
func ReadRunTrajectory(baseDir, runID string) ([]Frame, bool, error) {
	frames, err := ReadTrajectoryFile(filepath.Join(baseDir, runID, trajectoryFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return frames, true, nil
}

func readJSON(path string, value any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, value); err != nil {
		return false, err
	}
	return true, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
