package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/crafted-tech/msiflow/installer"
	"github.com/crafted-tech/msiflow/progress"
)

func newReplayCmd(a *app) *cobra.Command {
	var (
		showMessages bool
		follow       bool
		interval     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "replay <transcript>",
		Short: "Feed a recorded transcript through a new relay and print the fractions",
		Long: `Replay reads a transcript written with --record and delivers every message
to a fresh relay, printing each progress fraction the tracker emits. It runs
on any platform and honours --legacy-scanner and --accumulate.

With --follow it keeps reading messages as a running msiflow --record
session appends them, until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if follow && interval <= 0 {
				return fmt.Errorf("--interval must be positive, got %s", interval)
			}
			opts := a.cfg.ProgressOptions()
			if showMessages {
				opts = append(opts, progress.WithMessageFunc(func(kind progress.MessageKind, text string) {
					gray := color.New(color.FgHiBlack)
					gray.Fprintf(a.out.out, "%-12s %s\n", kind, text)
				}))
			}
			relay := progress.NewRelay(func(fraction float64) {
				a.out.Info("%.4f", fraction)
			}, opts...)

			var res *installer.EngineResult
			var err error
			if follow {
				a.out.Info("Following %s, press Ctrl+C to stop", args[0])
				res, err = installer.Follow(cmd.Context(), installer.NewTranscriptReader(args[0]), relay, interval)
			} else {
				res, err = replayFile(args[0], relay)
			}
			if err != nil {
				return err
			}

			stats := relay.Stats()
			a.out.Field("Messages", fmt.Sprint(stats.Delivered))
			a.out.Field("Decoded", fmt.Sprint(stats.Decoded))
			a.out.Field("Dropped", fmt.Sprint(stats.Dropped))
			a.out.Field("Emitted", fmt.Sprint(stats.Emitted))
			if res != nil {
				result := color.GreenString("success")
				if rerr := res.Err(); rerr != nil {
					result = color.RedString(rerr.Error())
				}
				a.out.Field("Result", fmt.Sprintf("%s: %s", res.Op, result))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showMessages, "messages", false, "Also print non-progress messages")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep reading messages appended to the transcript")
	cmd.Flags().DurationVar(&interval, "interval", 200*time.Millisecond, "Poll interval with --follow")
	return cmd
}

func replayFile(path string, relay *progress.Relay) (*installer.EngineResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()
	return installer.Replay(f, relay)
}

func newDecodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <message>...",
		Short: "Decode progress messages and show the resulting fractions",
		Long: `Decode runs each argument through one parser and tracker in order, printing
the decoded record and any fraction emitted. The parser's record is reused,
so fields not present in a message keep the value from an earlier one.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.cfg.ProgressOptions()
			parser := progress.NewParser(opts...)
			var emitted []float64
			tracker := progress.NewTracker(func(f float64) { emitted = append(emitted, f) }, opts...)

			var failed int
			for _, line := range args {
				rec, err := parser.Decode(line)
				if err != nil {
					a.out.Error("%q: %v", line, err)
					failed++
					continue
				}

				emitted = emitted[:0]
				_, err = tracker.Apply(rec)
				switch {
				case errors.Is(err, progress.ErrUninitialized):
					a.out.Info("%-40s %s", rec, color.YellowString("no total"))
				case err != nil:
					return err
				case len(emitted) > 0:
					a.out.Info("%-40s %.4f", rec, emitted[0])
				default:
					a.out.Info("%s", rec)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d messages failed to decode", failed, len(args))
			}
			return nil
		},
	}
}
