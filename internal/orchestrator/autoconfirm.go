package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/fyrsmithlabs/contentd/internal/logging"
	"go.uber.org/zap"
)

// MinAutoConfirmConfidence is the acceptance floor for headless directory
// confirmation. A proposal at exactly this value is accepted.
const MinAutoConfirmConfidence = 0.70

// ErrAutoConfirm is the sentinel every headless confirmation failure
// wraps. All three failure kinds are fatal for the run: no downstream
// phase can function without a working directory.
var ErrAutoConfirm = errors.New("auto-confirm rejected directory selection")

// OracleFailureError reports that the oracle itself failed while
// proposing a directory.
type OracleFailureError struct {
	Reason string
}

func (e *OracleFailureError) Error() string {
	return fmt.Sprintf("auto-confirm enabled but oracle failed: %s", e.Reason)
}

func (e *OracleFailureError) Unwrap() error { return ErrAutoConfirm }

// EmptySelectionError reports a proposal with no working directory.
type EmptySelectionError struct {
	Reason string
}

func (e *EmptySelectionError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "oracle returned empty directory"
	}
	return fmt.Sprintf("auto-confirm enabled but directory selection failed: %s", reason)
}

func (e *EmptySelectionError) Unwrap() error { return ErrAutoConfirm }

// LowConfidenceError reports a proposal below the acceptance floor.
type LowConfidenceError struct {
	Confidence float64
}

func (e *LowConfidenceError) Error() string {
	return fmt.Sprintf("auto-confirm enabled but confidence too low: %.2f", e.Confidence)
}

func (e *LowConfidenceError) Unwrap() error { return ErrAutoConfirm }

// AutoConfirmValidator accepts or rejects a directory proposal without a
// human in the loop. It is the only point where the runner aborts rather
// than degrading to a partial result.
type AutoConfirmValidator struct {
	log *logging.Logger
}

// NewAutoConfirmValidator creates a headless directory confirmer.
func NewAutoConfirmValidator(log *logging.Logger) *AutoConfirmValidator {
	return &AutoConfirmValidator{log: log}
}

// Confirm implements DirectoryConfirmer. Acceptance requires the oracle
// to have succeeded, a non-empty working directory, and confidence of at
// least MinAutoConfirmConfidence. The accepted proposal is returned
// unchanged.
func (v *AutoConfirmValidator) Confirm(ctx context.Context, proposal *DirectoryProposal, structure string, oracleErr error) (*DirectoryProposal, error) {
	if oracleErr != nil {
		v.log.Error(ctx, "directory selection failed in auto-confirm mode", zap.Error(oracleErr))
		return nil, &OracleFailureError{Reason: oracleErr.Error()}
	}

	if proposal == nil || proposal.WorkingDirectory == "" {
		v.log.Error(ctx, "directory selection returned no directory in auto-confirm mode")
		return nil, &EmptySelectionError{}
	}

	if proposal.Confidence < MinAutoConfirmConfidence {
		v.log.Error(ctx, "directory selection confidence too low in auto-confirm mode",
			zap.Float64("confidence", proposal.Confidence),
			zap.String("working_directory", proposal.WorkingDirectory))
		return nil, &LowConfidenceError{Confidence: proposal.Confidence}
	}

	return proposal, nil
}

var _ DirectoryConfirmer = (*AutoConfirmValidator)(nil)

// PassthroughStrategyConfirmer accepts any usable strategy unchanged and
// substitutes an explicit zero-confidence failure strategy when the
// oracle failed. It never returns an error: strategy failures are
// contained at the phase boundary.
type PassthroughStrategyConfirmer struct{}

// Confirm implements StrategyConfirmer.
func (PassthroughStrategyConfirmer) Confirm(ctx context.Context, strategy *ContentStrategy, oracleErr error) (*ContentStrategy, error) {
	if oracleErr != nil || strategy == nil {
		msg := "no strategy produced"
		if oracleErr != nil {
			msg = oracleErr.Error()
		}
		return &ContentStrategy{
			Confidence: 0,
			Summary:    "strategy generation failed",
			Error:      msg,
		}, nil
	}
	return strategy, nil
}

var _ StrategyConfirmer = PassthroughStrategyConfirmer{}
