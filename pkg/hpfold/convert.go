package hpfold

import (
	"os"
	"path/filepath"
	"strings"

	"hpfold/internal/lattice"
	"hpfold/internal/model"
	"hpfold/internal/search"
	"hpfold/internal/stats"
)

func positions(points []lattice.Point) []model.Position {
	out := make([]model.Position, len(points))
	for i, p := range points {
		out[i] = model.Position{Row: p.Row, Col: p.Col}
	}
	return out
}

func energyPoints(trace []search.TracePoint) []model.EnergyPoint {
	out := make([]model.EnergyPoint, len(trace))
	for i, p := range trace {
		out[i] = model.EnergyPoint{Step: p.Step, Energy: p.Energy}
	}
	return out
}

func statsFrames(frames []search.Frame) []stats.Frame {
	if len(frames) == 0 {
		return nil
	}
	out := make([]stats.Frame, len(frames))
	for i, f := range frames {
		out[i] = stats.Frame{Step: f.Step, Energy: f.Energy, Positions: positions(f.Positions)}
	}
	return out
}

func draw(l *lattice.Lattice) (string, error) {
	var b strings.Builder
	if err := l.Render(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
