package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// foldConfig is the union of every fold parameter the mc, remc and benchmark
// commands accept, whether it comes from a -config file or from flags.
type foldConfig struct {
	Sequence     string
	File         string
	AminoAcids   bool
	Placement    string
	GridSize     int
	Seed         int64
	Steps        int
	Temperature  float64
	TraceEvery   int
	FrameEvery   int
	Replicas     int
	LocalSteps   int
	TMin         float64
	TMax         float64
	EnergyCutoff *int
	Workers      int
	Draw         bool
	Plot         bool
}

func loadFoldConfig(path string) (foldConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return foldConfig{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return foldConfig{}, err
	}

	var cfg foldConfig
	if v, ok := asString(raw["sequence"]); ok {
		cfg.Sequence = v
	}
	if v, ok := asString(raw["file"]); ok {
		cfg.File = v
	}
	if v, ok := asBool(raw["amino_acids"]); ok {
		cfg.AminoAcids = v
	}
	if v, ok := asString(raw["placement"]); ok {
		cfg.Placement = v
	}
	if v, ok := asInt(raw["grid_size"]); ok {
		cfg.GridSize = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		cfg.Seed = v
	}
	if v, ok := asInt(raw["steps"]); ok {
		cfg.Steps = v
	}
	if v, ok := asFloat64(raw["temperature"]); ok {
		cfg.Temperature = v
	}
	if v, ok := asInt(raw["trace_every"]); ok {
		cfg.TraceEvery = v
	}
	if v, ok := asInt(raw["frame_every"]); ok {
		cfg.FrameEvery = v
	}
	if v, ok := asInt(raw["replicas"]); ok {
		cfg.Replicas = v
	}
	if v, ok := asInt(raw["local_steps"]); ok {
		cfg.LocalSteps = v
	}
	if v, ok := asFloat64(raw["tmin"]); ok {
		cfg.TMin = v
	}
	if v, ok := asFloat64(raw["tmax"]); ok {
		cfg.TMax = v
	}
	if v, ok := asInt(raw["energy_cutoff"]); ok {
		cfg.EnergyCutoff = &v
	}
	if v, ok := asInt(raw["workers"]); ok {
		cfg.Workers = v
	}
	if v, ok := asBool(raw["draw"]); ok {
		cfg.Draw = v
	}
	if v, ok := asBool(raw["plot"]); ok {
		cfg.Plot = v
	}
	return cfg, nil
}

func loadOrDefaultFoldConfig(configPath string) (foldConfig, error) {
	if configPath == "" {
		return foldConfig{}, nil
	}
	cfg, err := loadFoldConfig(configPath)
	if err != nil {
		return foldConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

func overrideFromFlags(cfg *foldConfig, set map[string]bool, flagValue map[string]any) error {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "p":
			cfg.Sequence = v.(string)
		case "f":
			cfg.File = v.(string)
		case "aa":
			cfg.AminoAcids = v.(bool)
		case "i":
			cfg.Placement = v.(string)
		case "grid-size":
			cfg.GridSize = v.(int)
		case "seed":
			cfg.Seed = v.(int64)
		case "n", "steps":
			cfg.Steps = v.(int)
		case "t":
			cfg.Temperature = v.(float64)
		case "trace-every":
			cfg.TraceEvery = v.(int)
		case "frames":
			cfg.FrameEvery = v.(int)
		case "replicas":
			cfg.Replicas = v.(int)
		case "local-steps":
			cfg.LocalSteps = v.(int)
		case "tmin":
			cfg.TMin = v.(float64)
		case "tmax":
			cfg.TMax = v.(float64)
		case "energy-cutoff":
			cutoff, err := parseEnergyCutoff(v.(string))
			if err != nil {
				return err
			}
			cfg.EnergyCutoff = cutoff
		case "workers":
			cfg.Workers = v.(int)
		case "draw":
			cfg.Draw = v.(bool)
		case "plot":
			cfg.Plot = v.(bool)
		}
	}
	// A flag naming the sequence replaces the other source from the config.
	if set["p"] && !set["f"] {
		cfg.File = ""
	}
	if set["f"] && !set["p"] {
		cfg.Sequence = ""
	}
	return nil
}

// parseEnergyCutoff accepts an integer energy or "none".
func parseEnergyCutoff(value string) (*int, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "none") {
		return nil, nil
	}
	cutoff, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid energy cutoff %q: %w", value, err)
	}
	return &cutoff, nil
}
