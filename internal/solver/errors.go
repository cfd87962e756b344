package solver

import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/math-mentor/internal/cas"
)

// #region errors
// PatternMismatchError reports problem text that lacks the phrase shape a
// task requires.
type PatternMismatchError struct {
	Task string
	Msg  string
}

func (e *PatternMismatchError) Error() string { return e.Msg }

// OracleFailure wraps an error raised by the math engine.
type OracleFailure struct {
	Op  string
	Err error
}

func (e *OracleFailure) Error() string { return fmt.Sprintf("%s failed: %v", e.Op, e.Err) }

func (e *OracleFailure) Unwrap() error { return e.Err }

// #endregion errors

// #region classify
func classify(err error) *Failure {
	var pe *cas.ParseError
	var pm *PatternMismatchError
	switch {
	case errors.As(err, &pm):
		return &Failure{Kind: FailurePatternMismatch, Message: err.Error()}
	case errors.As(err, &pe):
		return &Failure{Kind: FailureParse, Message: err.Error()}
	}
	return &Failure{Kind: FailureOracle, Message: err.Error()}
}

// #endregion classify
