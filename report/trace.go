// Copyright ©2026 The dsmip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report renders offline diagnostics for a solve: the
// per-iteration dual simplex objective trace and the branch-and-bound
// gap curve. It is grounded on gonum's own
// dsp/window/cmd/leakage/leakage.go, the teacher's one direct caller
// of its own gonum.org/v1/plot dependency -- the plot.New/plotter.NewLine/
// p.Legend.Add/p.Save shape below follows that program's pattern,
// adapted from a DFT spectrum plot to solver convergence curves.
package report

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// IterationPoint is one sample of the dual simplex's progress, taken
// once per iteration (or once per refactor, for a coarser trace).
type IterationPoint struct {
	Iteration int
	Objective float64
}

// NodePoint is one sample of the branch-and-bound search's progress:
// the best dual bound and incumbent objective known after a node is
// resolved.
type NodePoint struct {
	Node      int
	DualBound float64
	Incumbent float64 // math.Inf(1) before any incumbent is found
}

// SimplexTrace renders the dual objective's convergence across
// iterations to an SVG file at path, width/height in centimeters.
func SimplexTrace(points []IterationPoint, path string, width, height float64) error {
	p := plot.New()
	p.Title.Text = "Dual simplex objective trace"
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = "Objective"
	p.Add(plotter.NewGrid())

	xy := make(plotter.XYs, len(points))
	for i, pt := range points {
		xy[i] = plotter.XY{X: float64(pt.Iteration), Y: pt.Objective}
	}
	line, err := plotter.NewLine(xy)
	if err != nil {
		return fmt.Errorf("report: building simplex trace: %w", err)
	}
	line.Color = color.RGBA{R: 0x40, G: 0x80, B: 0xff, A: 0xff}
	p.Add(line)

	return p.Save(vg.Length(width)*vg.Centimeter, vg.Length(height)*vg.Centimeter, path)
}

// GapTrace renders the branch-and-bound search's dual bound and
// incumbent objective curves (the optimality gap narrowing over the
// search) to an SVG file at path.
func GapTrace(points []NodePoint, path string, width, height float64) error {
	p := plot.New()
	p.Title.Text = "Branch-and-bound gap"
	p.X.Label.Text = "Node"
	p.Y.Label.Text = "Objective"
	p.Add(plotter.NewGrid())

	dual := make(plotter.XYs, len(points))
	incumbent := make(plotter.XYs, 0, len(points))
	for i, pt := range points {
		dual[i] = plotter.XY{X: float64(pt.Node), Y: pt.DualBound}
		if !math.IsInf(pt.Incumbent, 1) {
			incumbent = append(incumbent, plotter.XY{X: float64(pt.Node), Y: pt.Incumbent})
		}
	}

	dualLine, err := plotter.NewLine(dual)
	if err != nil {
		return fmt.Errorf("report: building dual bound curve: %w", err)
	}
	dualLine.Color = color.RGBA{R: 0xff, A: 0xff}
	p.Add(dualLine)
	p.Legend.Add("dual bound", dualLine)

	if len(incumbent) > 0 {
		incLine, err := plotter.NewLine(incumbent)
		if err != nil {
			return fmt.Errorf("report: building incumbent curve: %w", err)
		}
		incLine.Color = color.RGBA{G: 0xff, A: 0xff}
		p.Add(incLine)
		p.Legend.Add("incumbent", incLine)
	}
	p.Legend.Top = true

	return p.Save(vg.Length(width)*vg.Centimeter, vg.Length(height)*vg.Centimeter, path)
}
