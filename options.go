// Copyright ©2026 The dsmip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dsmip

import (
	"math"

	"github.com/dsmip/dsmip/logsink"
	"github.com/dsmip/dsmip/modelcheck"
	"github.com/dsmip/dsmip/search"
	"github.com/dsmip/dsmip/simplex"
)

// Sink is the leveled logging interface every engine operation takes,
// re-exported at the facade boundary so a caller populating Options
// never has to import logsink directly.
type Sink = logsink.Sink

// Options controls every tolerance, limit and strategy choice the
// facade's operations draw on, mirroring optimize.Settings/
// linsolve.Settings' shape: a flat, plain-fields configuration struct
// populated directly by the caller, not a builder. There is no file
// format the core parses; an MPS/LP reader is an external collaborator
// that would populate an Options value the same way a caller does.
type Options struct {
	// Model validates the magnitude-band and infinite-cost policy
	// AssessModel applies during PassModel.
	Model modelcheck.Options

	// LP controls the dual simplex driver used both for a pure LP solve
	// and for every relaxation inside branch-and-bound.
	LP simplex.Settings

	// Search controls the branch-and-bound driver; ignored when the
	// model has no integer columns.
	Search search.Settings

	// Heuristics controls RINS/RENS node budgets and fix-set caps.
	Heuristics search.HeuristicSettings

	// Cutoff is an objective bound for pruning; it defaults to +inf (no
	// bound) for minimization. Run does not pass it on: search.Solve
	// prunes against its own incumbent only.
	Cutoff float64

	// TimeLimitSeconds is a wall-clock limit for Run, zero meaning no
	// limit. Run does not read it, and no time limit is enforced.
	TimeLimitSeconds float64

	// ThreadLimit is a thread count for the SIP and PAMI parallel
	// variants. NewOptimizer and Run do not read it: Run always uses the
	// serial simplex.Solve driver, and SolveSIP/SolvePAMI take their
	// parallelism from simplex.Settings (Threads, BatchSize) instead.
	ThreadLimit int

	// EnableCutGeneration turns on single-row cut generation in a
	// root-only pass run once before branch-and-bound begins; no cuts
	// are generated at deeper nodes.
	EnableCutGeneration bool

	// Log is the Sink every engine operation logs through. Nil is
	// treated as logsink.NopSink.
	Log Sink
}

// DefaultOptions returns the tolerances and limits named throughout
// spec.md as typical defaults.
func DefaultOptions() Options {
	return Options{
		Model:               modelcheck.DefaultOptions(),
		LP:                  simplex.DefaultSettings(),
		Search:              search.DefaultSettings(),
		Heuristics:          search.DefaultHeuristicSettings(),
		Cutoff:              math.Inf(1),
		TimeLimitSeconds:    0,
		ThreadLimit:         1,
		EnableCutGeneration: true,
		Log:                 nil,
	}
}
