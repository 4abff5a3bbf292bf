package pipeline

import (
	"errors"
	"fmt"
)

// Stage names a pipeline step. Values double as metric and log labels.
type Stage string

const (
	StageEnsureNamespace Stage = "ensure_namespace"
	StageRead            Stage = "read"
	StageTransform       Stage = "transform"
	StageAggregate       Stage = "aggregate"
	StageWriteCleaned    Stage = "write_cleaned"
	StageWriteSummary    Stage = "write_summary"
)

// Kind classifies a failure so callers can react without parsing messages.
type Kind string

const (
	// KindConnectivity covers a store that cannot be reached or refuses the
	// operation (permissions, network, server errors) outside of writes.
	KindConnectivity Kind = "connectivity"
	// KindMissingSource means the source table does not exist.
	KindMissingSource Kind = "missing_source"
	// KindDataShape means the rows could not be cleaned or summarised, e.g. an
	// unmapped month name or an impossible arrival date.
	KindDataShape Kind = "data_shape"
	// KindWrite means replacing a destination table failed.
	KindWrite Kind = "write"
)

// StageError is the error returned by Run. Every failure is terminal for the
// run; no stage is retried.
type StageError struct {
	Stage Stage
	Kind  Kind
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline: stage=%s kind=%s: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// KindOf returns the Kind of the first StageError in err's chain, or "" when
// there is none.
func KindOf(err error) Kind {
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// StageOf returns the Stage of the first StageError in err's chain, or "".
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
