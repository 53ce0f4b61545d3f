// Copyright ©2026 The dsmip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dsmip

import (
	"errors"
	"fmt"

	"github.com/dsmip/dsmip/modelcheck"
)

// Sentinel errors for the facade's editing operations, in the style of
// lp.ErrInfeasible: a package-level value compared with ==, reserved for
// conditions with no useful payload beyond "this happened".
var (
	// ErrNoModel is returned by any operation other than PassModel when
	// no model has been loaded yet.
	ErrNoModel = errors.New("dsmip: no model loaded, call PassModel first")

	// ErrIndexOutOfRange is returned by a Change*/Delete*/Get* operation
	// given a row or column index outside the current model's range.
	ErrIndexOutOfRange = errors.New("dsmip: row or column index out of range")

	// ErrNotSolved is returned by GetSolution/GetObjectiveValue when the
	// last Run did not reach ModelStatus Optimal (or Run was never
	// called), per spec.md §6's "defined only when status is
	// appropriate" rule.
	ErrNotSolved = errors.New("dsmip: no optimal solution available")

	// ErrDimensionMismatch is returned by an AddCols/AddRows operation
	// whose batch arrays disagree on length.
	ErrDimensionMismatch = errors.New("dsmip: batch argument dimension mismatch")

	// ErrRayUnavailable is returned by GetDualRay/GetPrimalRay: a Farkas
	// certificate needs the leaving row and violated bound the dual
	// simplex driver discovered infeasibility/unboundedness at, and the
	// driver's contract (spec.md §9's engine-context design) discards
	// that per-iteration state once Solve returns a terminal Status,
	// keeping only the basis/factor/weights a caller can warm-start
	// from. Retaining it would mean widening Context's public surface
	// for a certificate this engine does not otherwise need; documented
	// here as a deliberate scope reduction, not a silent one.
	ErrRayUnavailable = errors.New("dsmip: ray/certificate extraction not available")
)

// ValidationError reports the findings AssessModel produced at Error
// severity; returned by PassModel when the model fails validation.
// Modeled on linsolve.BreakdownError's shape: a small struct carrying
// the diagnostic payload, not a bare sentinel, since a caller wants to
// know which findings fired.
type ValidationError struct {
	Findings []modelcheck.Finding
}

func (e *ValidationError) Error() string {
	if len(e.Findings) == 0 {
		return "dsmip: model validation failed"
	}
	return fmt.Sprintf("dsmip: model validation failed: %s (and %d more)",
		e.Findings[0].Message, len(e.Findings)-1)
}

// SingularBasisError reports that refactorization found the basis
// matrix singular after the given number of logical-basis reset
// attempts, per spec.md §7's Singular error kind.
type SingularBasisError struct {
	Attempts int
}

func (e *SingularBasisError) Error() string {
	return fmt.Sprintf("dsmip: basis singular after %d refactorization attempts", e.Attempts)
}

// IllConditionedError reports that refactorization's condition estimate
// exceeded the configured threshold, per spec.md §7.
type IllConditionedError struct {
	Estimate, Threshold float64
}

func (e *IllConditionedError) Error() string {
	return fmt.Sprintf("dsmip: basis condition estimate %g exceeds threshold %g", e.Estimate, e.Threshold)
}

// NotSupportedError reports a disabled feature, per spec.md §7 (e.g. an
// infinite cost submitted while Options.AllowInfiniteCost is false).
type NotSupportedError struct {
	Feature string
}

func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("dsmip: feature not supported by current options: %s", e.Feature)
}
