// Copyright ©2026 The dsmip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dsmip

// Status is the outcome of a single facade operation, per spec.md §6:
// infeasible and unbounded are reported as a ModelStatus, never as this
// kind of status and never as a Go error.
type Status int8

const (
	Ok Status = iota
	Warning
	Error
)

var statusNames = map[Status]string{
	Ok:      "Ok",
	Warning: "Warning",
	Error:   "Error",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Status(invalid)"
}

// ModelStatus is the state of the model after Run, per spec.md §6.
type ModelStatus int8

const (
	NotSet ModelStatus = iota
	LoadError
	ModelError
	PresolveError
	SolveError
	PostsolveError
	ModelEmpty
	Optimal
	Infeasible
	UnboundedOrInfeasible
	Unbounded
	ObjectiveBound
	ObjectiveTarget
	TimeLimit
	IterationLimit
	Unknown
)

var modelStatusNames = map[ModelStatus]string{
	NotSet:                "NotSet",
	LoadError:             "LoadError",
	ModelError:            "ModelError",
	PresolveError:         "PresolveError",
	SolveError:            "SolveError",
	PostsolveError:        "PostsolveError",
	ModelEmpty:            "ModelEmpty",
	Optimal:               "Optimal",
	Infeasible:            "Infeasible",
	UnboundedOrInfeasible: "UnboundedOrInfeasible",
	Unbounded:             "Unbounded",
	ObjectiveBound:        "ObjectiveBound",
	ObjectiveTarget:       "ObjectiveTarget",
	TimeLimit:             "TimeLimit",
	IterationLimit:        "IterationLimit",
	Unknown:               "Unknown",
}

func (m ModelStatus) String() string {
	if name, ok := modelStatusNames[m]; ok {
		return name
	}
	return "ModelStatus(invalid)"
}

// Result is what every facade operation returns: the operation's own
// Status, the resulting ModelStatus (unchanged by operations other than
// Run), and an error when Status is Error.
type Result struct {
	Status      Status
	ModelStatus ModelStatus
	Err         error
}
