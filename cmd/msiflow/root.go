package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/crafted-tech/msiflow/installer"
	"github.com/crafted-tech/msiflow/platform"
	"github.com/crafted-tech/msiflow/ui"
)

// Command group IDs for organized help output.
const (
	GroupEngine = "engine"
	GroupQuery  = "query"
	GroupTools  = "tools"
)

// app carries the resolved configuration and output for one invocation.
type app struct {
	configPath string
	cfg        Config
	out        *printer
}

// newRootCmd creates the root command with all subcommands registered.
func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "msiflow",
		Short: "Drive Windows Installer packages with live progress",
		Long: `msiflow installs, advertises and removes Windows Installer packages while
turning the engine's progress messages into a progress bar, either on the
console or in a window.

Examples:
  # Install a package with console progress
  msiflow install app.msi INSTALLDIR=C:\App

  # Install in a progress window, removing older versions first
  msiflow install app.msi --gui --upgrade-code {6F1E...}

  # Apply a patch to an installed product
  msiflow patch fix.msp {6F1E...}

  # Record the engine messages and replay them anywhere, or watch them live
  msiflow install app.msi --record install.txt
  msiflow replay install.txt
  msiflow replay --follow install.txt

  # Decode a single progress message
  msiflow decode "1: 2 2: 25"`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.persistentPreRunE,
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "",
		"Path to config.toml file")
	cmd.PersistentFlags().Bool("gui", false,
		"Show progress in a window")
	cmd.PersistentFlags().String("theme", "",
		"Progress window theme: system, dark, light")
	cmd.PersistentFlags().Bool("no-cancel", false,
		"Hide the Cancel button of the progress window")
	cmd.PersistentFlags().String("record", "",
		"Record engine messages to this transcript file")
	cmd.PersistentFlags().Bool("legacy-scanner", false,
		"Decode fields with raw character codes (protocol compatibility)")
	cmd.PersistentFlags().Bool("accumulate", false,
		"Accumulate progress deltas into the running total")
	cmd.PersistentFlags().Bool("no-color", false,
		"Disable colored output")
	cmd.PersistentFlags().BoolP("verbose", "v", false,
		"Echo the install log to stderr, including debug lines")
	cmd.PersistentFlags().String("ui-level", "",
		"Engine UI level during operations: none, basic, basic-progress, reduced, full")
	cmd.PersistentFlags().String("log-prefix", "",
		"File name prefix of the install log in the temp directory")
	cmd.PersistentFlags().String("log-file", "",
		"Append the install log to this file instead of a new temp file")

	cmd.AddGroup(&cobra.Group{ID: GroupEngine, Title: "Engine Commands:"})
	cmd.AddGroup(&cobra.Group{ID: GroupQuery, Title: "Query Commands:"})
	cmd.AddGroup(&cobra.Group{ID: GroupTools, Title: "Protocol Tools:"})

	registerCommands(cmd, a)

	return cmd
}

// persistentPreRunE resolves configuration and sets up console output.
func (a *app) persistentPreRunE(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, &cfg); err != nil {
		return err
	}
	if _, err := cfg.EngineUILevel(); err != nil {
		return err
	}
	if _, err := cfg.WindowOptions("", ""); err != nil {
		return err
	}

	a.cfg = cfg
	a.out = &printer{out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}
	color.NoColor = cfg.NoColor
	return nil
}

func registerCommands(rootCmd *cobra.Command, a *app) {
	installCmd := newInstallCmd(a)
	installCmd.GroupID = GroupEngine
	advertiseCmd := newAdvertiseCmd(a)
	advertiseCmd.GroupID = GroupEngine
	removeCmd := newRemoveCmd(a)
	removeCmd.GroupID = GroupEngine
	patchCmd := newPatchCmd(a)
	patchCmd.GroupID = GroupEngine

	stateCmd := newStateCmd(a)
	stateCmd.GroupID = GroupQuery
	relatedCmd := newRelatedCmd(a)
	relatedCmd.GroupID = GroupQuery
	versionCmd := newVersionCmd(a)
	versionCmd.GroupID = GroupQuery
	patchesCmd := newPatchesCmd(a)
	patchesCmd.GroupID = GroupQuery

	replayCmd := newReplayCmd(a)
	replayCmd.GroupID = GroupTools
	decodeCmd := newDecodeCmd(a)
	decodeCmd.GroupID = GroupTools

	rootCmd.AddCommand(
		installCmd,
		advertiseCmd,
		removeCmd,
		patchCmd,

		stateCmd,
		relatedCmd,
		versionCmd,
		patchesCmd,

		replayCmd,
		decodeCmd,
	)
}

// sessionLockName serializes engine commands across msiflow processes.
const sessionLockName = "msiflow.engine"

// ErrBusy is returned when another msiflow process is running an engine
// operation.
var ErrBusy = errors.New("another msiflow operation is in progress")

// session holds the per-run resources of an engine command.
type session struct {
	log        *installer.Logger
	transcript *installer.TranscriptWriter
	opts       installer.EngineOptions
	release    func()
}

// openSession takes the session lock and creates the install log and, if
// configured, the transcript. With log_file set the log is appended to that
// file instead of a new one in the temp directory.
func (a *app) openSession() (*session, error) {
	release, ok := platform.AcquireSingleInstance(sessionLockName)
	if !ok {
		return nil, ErrBusy
	}

	var log *installer.Logger
	var err error
	if a.cfg.LogFile != "" {
		log, err = installer.NewLoggerToFile(a.cfg.LogFile)
	} else {
		log, err = installer.NewLogger(a.cfg.LogPrefix)
	}
	if err != nil {
		release()
		return nil, err
	}
	if a.cfg.Verbose {
		log.SetDebug(true)
		log.SetMirror(a.out.errOut)
	}
	if !platform.IsElevated() {
		log.Warn("Not running elevated; per-machine operations may prompt or fail")
	}

	s := &session{log: log, release: release}
	if a.cfg.Record != "" {
		s.transcript, err = installer.CreateTranscript(a.cfg.Record)
		if err != nil {
			log.Close()
			release()
			return nil, err
		}
		log.Info("Recording engine messages to %s", s.transcript.Path())
	}

	level, err := a.cfg.EngineUILevel()
	if err != nil {
		s.close()
		return nil, err
	}
	s.opts = installer.EngineOptions{
		UILevel:    level,
		Progress:   a.cfg.ProgressOptions(),
		Transcript: s.transcript,
		Log:        log,
	}
	return s, nil
}

func (s *session) close() {
	if err := s.transcript.Close(); err != nil {
		s.log.Warn("close transcript: %v", err)
	}
	s.log.Close()
	s.release()
}

// runSteps runs steps against the console or, with --gui, a progress window
// titled title that shows heading above the bar.
func (a *app) runSteps(ctx context.Context, title, heading string, steps []installer.Step, log *installer.Logger) error {
	if a.cfg.GUI {
		if err := ui.Available(); err != nil {
			a.out.Warn("%v; showing progress on the console", err)
			log.Warn("progress window unavailable: %v", err)
			a.cfg.GUI = false
		}
	}
	if !a.cfg.GUI {
		return installer.RunSteps(ctx, newConsoleSink(a.out), steps, log)
	}

	opts, err := a.cfg.WindowOptions(title, heading)
	if err != nil {
		return err
	}
	w, err := ui.New(opts...)
	if err != nil {
		return fmt.Errorf("open progress window: %w", err)
	}
	defer w.Close()

	err = w.Run(ctx, func(ctx context.Context) error {
		return installer.RunSteps(ctx, w, steps, log)
	})
	if err != nil && !errors.Is(err, installer.ErrCancelled) && !errors.Is(err, installer.ErrRebootRequired) {
		ui.ShowError(title, err.Error())
	}
	return err
}

// finish reports the outcome of an engine command. A pending restart is
// still a success; its error is returned so the exit code carries it.
func (a *app) finish(s *session, err error, format string, args ...any) error {
	if err != nil && !errors.Is(err, installer.ErrRebootRequired) {
		return err
	}
	a.out.Success(format, args...)
	a.out.Field("Log", s.log.Path())
	if err != nil {
		a.out.Warn("Restart required to complete the operation")
	}
	return err
}
