package stats

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"hpfold/internal/model"
)

type TraceSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	// Improvement is first minus last sampled energy; positive means the
	// search went downhill.
	Improvement float64 `json:"improvement"`
}

func SummarizeTrace(trace []model.EnergyPoint) (TraceSummary, error) {
	if len(trace) == 0 {
		return TraceSummary{}, fmt.Errorf("energy trace is empty")
	}
	values := traceValues(trace)
	summary := TraceSummary{
		Count:       len(values),
		Min:         floats.Min(values),
		Max:         floats.Max(values),
		Improvement: values[0] - values[len(values)-1],
	}
	if len(values) > 1 {
		summary.Mean, summary.StdDev = stat.MeanStdDev(values, nil)
	} else {
		summary.Mean = values[0]
	}
	return summary, nil
}

type ExchangeSummary struct {
	Pairs    int       `json:"pairs"`
	Attempts int       `json:"attempts"`
	Accepted int       `json:"accepted"`
	Rates    []float64 `json:"rates"`
	MeanRate float64   `json:"mean_rate"`
	MinRate  float64   `json:"min_rate"`
}

// SummarizeExchanges reports per-pair acceptance rates; a ladder whose
// minimum rate is near zero has a gap between neighbouring temperatures.
func SummarizeExchanges(exchanges []model.ExchangeStat) ExchangeSummary {
	summary := ExchangeSummary{Pairs: len(exchanges), Rates: make([]float64, len(exchanges))}
	if len(exchanges) == 0 {
		return summary
	}
	for i, ex := range exchanges {
		summary.Attempts += ex.Attempts
		summary.Accepted += ex.Accepted
		if ex.Attempts > 0 {
			summary.Rates[i] = float64(ex.Accepted) / float64(ex.Attempts)
		}
	}
	summary.MeanRate = stat.Mean(summary.Rates, nil)
	summary.MinRate = floats.Min(summary.Rates)
	return summary
}

func traceValues(trace []model.EnergyPoint) []float64 {
	values := make([]float64, len(trace))
	for i, point := range trace {
		values[i] = float64(point.Energy)
	}
	return values
}

func traceSteps(trace []model.EnergyPoint) []float64 {
	steps := make([]float64, len(trace))
	for i, point := range trace {
		steps[i] = float64(point.Step)
	}
	return steps
}
