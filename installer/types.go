package installer

import (
	"context"
	"errors"
)

// ErrCancelled is returned when an operation was cancelled by the user.
var ErrCancelled = errors.New("operation cancelled")

// ErrRebootRequired is returned by RunSteps when every step succeeded but at
// least one needs a restart to complete.
var ErrRebootRequired = errors.New("restart required to complete the operation")

// StepResult represents the outcome of a step execution.
type StepResult struct {
	// Skip indicates the step was skipped (already done, not needed).
	// When Skip is true, the step is counted as successful.
	Skip bool

	// Info contains a success or informational message.
	// For skipped steps, this explains why it was skipped.
	Info string

	// Err contains the error if the step failed.
	Err error

	// Reboot reports that the step succeeded but its changes take effect
	// only after a restart.
	Reboot bool
}

// Success creates a successful StepResult with an optional info message.
func Success(info string) StepResult {
	return StepResult{Info: info}
}

// Skipped creates a StepResult indicating the step was skipped.
func Skipped(reason string) StepResult {
	return StepResult{Skip: true, Info: reason}
}

// Failed creates a StepResult with an error.
func Failed(err error) StepResult {
	return StepResult{Err: err}
}

// Reporter receives a step's own progress. fraction is the share of the
// step that is done; values outside [0, 1] are clamped by the executor.
// An empty status keeps the step name on display.
type Reporter func(fraction float64, status string)

// Step is a named action run by RunSteps.
type Step struct {
	// Name is shown in the progress UI and the log.
	Name string

	// Action executes the step. Long-running actions watch ctx and report
	// progress through report.
	Action func(ctx context.Context, report Reporter) StepResult
}

// SimpleStep creates a Step from a function that only returns an error and
// reports no progress of its own.
//
// Example:
//
//	installer.SimpleStep("Check elevation", func() error {
//	    if !platform.IsElevated() {
//	        return errors.New("administrator rights required")
//	    }
//	    return nil
//	})
func SimpleStep(name string, action func() error) Step {
	return Step{
		Name: name,
		Action: func(context.Context, Reporter) StepResult {
			if err := action(); err != nil {
				return Failed(err)
			}
			return Success("")
		},
	}
}
