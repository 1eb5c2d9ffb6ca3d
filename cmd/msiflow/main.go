// Command msiflow installs, advertises and removes Windows Installer packages
// with live progress, and replays or decodes the engine's progress messages.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/fatih/color"

	"github.com/crafted-tech/msiflow/installer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		// A pending restart was already reported as a warning.
		if !errors.Is(err, installer.ErrRebootRequired) {
			red := color.New(color.FgRed)
			red.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(exitCode(err))
	}
}

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"
