package stats

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	_ "gonum.org/v1/plot/vg/vgimg"

	"hpfold/internal/model"
)

const (
	plotWidth  = 6 * vg.Inch
	plotHeight = 4 * vg.Inch
)

// WriteEnergyPlot draws energy against step. The image format follows the
// file extension: png, jpg or tiff.
func WriteEnergyPlot(path, title string, trace []model.EnergyPoint) error {
	if len(trace) == 0 {
		return fmt.Errorf("energy trace is empty")
	}
	p, err := energyPlot(title, trace)
	if err != nil {
		return err
	}
	return p.Save(plotWidth, plotHeight, path)
}

func energyPlot(title string, trace []model.EnergyPoint) (*plot.Plot, error) {
	steps := traceSteps(trace)
	values := traceValues(trace)
	pts := make(plotter.XYs, len(trace))
	for i := range pts {
		pts[i].X = steps[i]
		pts[i].Y = values[i]
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "step"
	p.Y.Label.Text = "energy"
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("energy line: %w", err)
	}
	line.LineStyle.Width = vg.Points(1)
	line.LineStyle.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	p.Add(line)

	// Pad the range so a flat trace still gets a non-empty axis.
	p.Y.Max = values[0]
	p.Y.Min = values[0]
	for _, v := range values {
		p.Y.Max = max(p.Y.Max, v)
		p.Y.Min = min(p.Y.Min, v)
	}
	p.Y.Max += 0.5
	p.Y.Min -= 0.5
	return p, nil
}
