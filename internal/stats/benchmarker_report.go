package stats

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"hpfold/internal/model"
)

type BenchmarkEvaluationRun struct {
	RunID       string `json:"run_id"`
	Seed        int64  `json:"seed"`
	BestEnergy  int    `json:"best_energy"`
	Success     bool   `json:"success"`
	StepsToGoal int    `json:"steps_to_goal,omitempty"`
}

type BenchmarkEvaluationStats struct {
	TotalRuns    int                      `json:"total_runs"`
	SuccessRuns  int                      `json:"success_runs"`
	SuccessRate  float64                  `json:"success_rate"`
	MeanBest     float64                  `json:"mean_best"`
	StdBest      float64                  `json:"std_best"`
	MinBest      float64                  `json:"min_best"`
	MaxBest      float64                  `json:"max_best"`
	MeanSteps    float64                  `json:"mean_steps_to_goal,omitempty"`
	TargetEnergy *int                     `json:"target_energy,omitempty"`
	Runs         []BenchmarkEvaluationRun `json:"runs"`
}

type BenchmarkerReport struct {
	ExperimentID string                   `json:"experiment_id"`
	ReportName   string                   `json:"report_name"`
	GeneratedAt  string                   `json:"generated_at_utc"`
	Experiment   BenchmarkExperiment      `json:"experiment"`
	Evaluations  BenchmarkEvaluationStats `json:"evaluations"`
}

// BuildBenchmarkEvaluationStats scores every run of an experiment against the
// target energy. A run succeeds when its best energy reaches the target; its
// steps-to-goal come from the first stored trace point at or below the target.
// Without a target every run counts as a success.
func BuildBenchmarkEvaluationStats(baseDir string, exp BenchmarkExperiment, target *int) (BenchmarkEvaluationStats, error) {
	result := BenchmarkEvaluationStats{
		TotalRuns:    len(exp.Results),
		TargetEnergy: cloneIntPtr(target),
		Runs:         make([]BenchmarkEvaluationRun, 0, len(exp.Results)),
	}
	bests := make([]float64, 0, len(exp.Results))
	steps := make([]float64, 0, len(exp.Results))
	for _, res := range exp.Results {
		history, ok, err := ReadEnergyHistory(baseDir, res.RunID)
		if err != nil {
			return BenchmarkEvaluationStats{}, err
		}
		if !ok {
			return BenchmarkEvaluationStats{}, fmt.Errorf("energy trace not found for run id: %s", res.RunID)
		}

		run := evaluateBenchmarkTrace(res, history.Trace, target)
		result.Runs = append(result.Runs, run)
		bests = append(bests, float64(run.BestEnergy))
		if run.Success {
			result.SuccessRuns++
			steps = append(steps, float64(run.StepsToGoal))
		}
	}
	if result.TotalRuns == 0 {
		return result, nil
	}
	result.SuccessRate = float64(result.SuccessRuns) / float64(result.TotalRuns)
	result.MinBest = floats.Min(bests)
	result.MaxBest = floats.Max(bests)
	if len(bests) > 1 {
		result.MeanBest, result.StdBest = stat.MeanStdDev(bests, nil)
	} else {
		result.MeanBest = bests[0]
	}
	if target != nil && len(steps) > 0 {
		result.MeanSteps = stat.Mean(steps, nil)
	}
	return result, nil
}

func WriteBenchmarkerReport(baseDir string, report BenchmarkerReport) (string, error) {
	if report.ExperimentID == "" {
		return "", fmt.Errorf("report experiment id is required")
	}
	name := report.ReportName
	if name == "" {
		name = "report"
	}
	reportDir := filepath.Join(baseDir, benchmarkExperimentsDir, report.ExperimentID)
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", err
	}
	if report.GeneratedAt == "" {
		report.GeneratedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if err := writeJSON(filepath.Join(reportDir, name+"_Evaluations.json"), report.Evaluations); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(reportDir, name+"_Report.json"), report); err != nil {
		return "", err
	}
	return reportDir, nil
}

func evaluateBenchmarkTrace(res BenchmarkRun, trace []model.EnergyPoint, target *int) BenchmarkEvaluationRun {
	run := BenchmarkEvaluationRun{
		RunID:      res.RunID,
		Seed:       res.Seed,
		BestEnergy: res.BestEnergy,
	}
	if target == nil {
		run.Success = true
		return run
	}
	for _, point := range trace {
		if point.Energy <= *target {
			run.Success = true
			run.StepsToGoal = point.Step
			return run
		}
	}
	// The best conformation can fall between trace samples.
	if res.BestEnergy <= *target {
		run.Success = true
		if len(trace) > 0 {
			run.StepsToGoal = trace[len(trace)-1].Step
		}
	}
	return run
}

func cloneIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	value := *v
	return &value
}
