// Package installer runs Windows Installer operations as steps behind a
// progress display.
//
// This package offers reusable components that a setup program can pick from:
//   - Logger: timestamped log with in-memory buffer and file output
//   - Step execution: run steps against any Sink, e.g. a ui.Window
//   - MSI steps: install, advertise and remove packages with live progress
//   - Transcripts: record engine messages and replay them later
//   - Version helpers: compare product versions the way the engine does
//
// # Basic Usage
//
// Create a logger:
//
//	log, err := installer.NewLogger("myapp-install")
//	if err != nil {
//	    return err
//	}
//	defer log.Close()
//
// Build and run installation steps:
//
//	opts := installer.EngineOptions{Log: log}
//	steps := []installer.Step{
//	    installer.StepRemoveRelatedProducts(upgradeCode, opts),
//	    installer.StepInstallPackage(pkg, "", opts),
//	}
//	return installer.RunSteps(ctx, window, steps, log)
//
// # Step Pattern
//
// Steps are simple structs with a name and action function:
//
//	type Step struct {
//	    Name   string
//	    Action func(ctx context.Context, report Reporter) StepResult
//	}
//
// The Reporter takes the step's own progress from 0 to 1; RunSteps maps it
// into the step's share of the overall bar. The StepResult indicates
// success, skip, or failure:
//
//	type StepResult struct {
//	    Skip bool   // Step was skipped (already done, not needed)
//	    Info string // Success/info message
//	    Err  error  // Error (nil = success)
//	}
//
// Use SimpleStep for actions that just return error:
//
//	installer.SimpleStep("Do something", func() error {
//	    return doSomething()
//	})
//
// # Engine Progress
//
// Each MSI step installs a fresh progress.Relay as the engine's external UI
// for the duration of the call and restores the previous handler afterwards.
// Cancelling the context makes the relay answer the engine with Cancel, and
// the step then fails with ErrCancelled.
package installer
