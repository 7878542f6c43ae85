package gmod

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNodeNotFound is the recoverable failure tier: a code that simply does
// not exist in the tree. Callers branch on it; it never indicates corruption.
var ErrNodeNotFound = errors.New("node not found")

// ErrInvariantViolated marks the fatal failure tier: corrupt published data
// or a logic defect (inconsistent location sets, broken reconstruction).
// The layer above is expected to translate it into a diagnostic, not retry.
var ErrInvariantViolated = errors.New("invariant violated")

func invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariantViolated, fmt.Sprintf(format, args...))
}

// ParseStage identifies where in path parsing an anomaly was found.
type ParseStage int

const (
	StageSegment ParseStage = iota
	StageNodeLookup
	StageLocation
	StageStructure
	StageLocationSets
)

func (s ParseStage) String() string {
	switch s {
	case StageSegment:
		return "segment"
	case StageNodeLookup:
		return "node"
	case StageLocation:
		return "location"
	case StageStructure:
		return "structure"
	case StageLocationSets:
		return "location-sets"
	}
	return "unknown"
}

// ParseIssue is one (stage, message) pair collected by the parse error sink.
type ParseIssue struct {
	Stage   ParseStage
	Message string
}

func (i ParseIssue) Error() string {
	return fmt.Sprintf("%s: %s", i.Stage, i.Message)
}

// ParseErrors accumulates every anomaly found while parsing a path string,
// for callers that want full diagnostics instead of the first failure.
type ParseErrors []ParseIssue

func (e ParseErrors) Error() string {
	msgs := make([]string, len(e))
	for i, issue := range e {
		msgs[i] = issue.Error()
	}
	return strings.Join(msgs, "; ")
}

func (e *ParseErrors) add(stage ParseStage, format string, args ...any) {
	*e = append(*e, ParseIssue{Stage: stage, Message: fmt.Sprintf(format, args...)})
}
