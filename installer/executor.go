package installer

import (
	"context"
)

// Sink displays overall progress. percent runs from 0 to 100.
// ui.Window implements Sink; tests and the console use their own.
type Sink interface {
	Update(percent float64, status string)
	Cancelled() bool
}

// RunSteps executes steps sequentially, mapping each step's own progress into
// its equal slice of the overall bar. It returns the first step error, or
// ErrCancelled if ctx is done or the sink reports cancellation between steps.
// When all steps succeed and any of them needs a restart it returns
// ErrRebootRequired. A nil log disables logging.
//
// Example:
//
//	steps := []installer.Step{
//	    installer.StepRemoveRelatedProducts(upgradeCode, opts),
//	    installer.StepInstallPackage(pkg, "REBOOT=ReallySuppress", opts),
//	}
//	if err := installer.RunSteps(ctx, window, steps, log); err != nil {
//	    if errors.Is(err, installer.ErrCancelled) {
//	        return nil
//	    }
//	    return err
//	}
func RunSteps(ctx context.Context, sink Sink, steps []Step, log *Logger) error {
	if sink == nil {
		sink = nopSink{}
	}
	totalSteps := len(steps)
	var reboot bool

	for i, step := range steps {
		if ctx.Err() != nil || sink.Cancelled() {
			log.Warn("Installation cancelled by user")
			return ErrCancelled
		}

		start := float64(i) / float64(totalSteps) * 100
		span := 100 / float64(totalSteps)
		name := step.Name
		sink.Update(start, name)

		log.Step("Starting: %s", name)

		report := func(fraction float64, status string) {
			if status == "" {
				status = name
			}
			sink.Update(start+clampFraction(fraction)*span, status)
		}

		result := step.Action(ctx, report)

		if result.Err != nil {
			log.Error("Step '%s' failed: %v", name, result.Err)
			return result.Err
		}

		switch {
		case result.Skip && result.Info != "":
			log.Info("Step '%s' skipped: %s", name, result.Info)
		case result.Skip:
			log.Info("Step '%s' skipped", name)
		case result.Info != "":
			log.Info("Step '%s' completed: %s", name, result.Info)
		default:
			log.Info("Step '%s' completed", name)
		}
		reboot = reboot || result.Reboot
	}

	if reboot {
		sink.Update(100, "Complete, restart required")
		log.Warn("All steps completed; restart required")
		return ErrRebootRequired
	}
	sink.Update(100, "Complete")
	log.Info("All steps completed successfully")
	return nil
}

// clampFraction keeps a tracker fraction inside the step's slice. Trackers
// report unclamped values.
func clampFraction(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

type nopSink struct{}

func (nopSink) Update(float64, string) {}
func (nopSink) Cancelled() bool        { return false }
