// Command mpcoredemo exercises the client API core from the command
// line: create a context, run a command, print a property, and stream
// events. Grounded on a Cobra command-tree shape seen in roach88-nysm's
// internal/cli package, collapsed to a single small command tree for
// this module's narrower surface.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tejashwikalptaru/mpcore"
	"github.com/tejashwikalptaru/mpcore/domain"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "mpcoredemo",
		Short: "Exercise the mpcore client API core from the command line",
	}
	root.AddCommand(newRunCommand())
	root.AddCommand(newEventsCommand())
	root.AddCommand(newVersionCommand())
	return root
}

func newRunCommand() *cobra.Command {
	var track string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Create a client, initialize the engine, load a track, and print its properties",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := mpcore.Create()
			if err != nil {
				return fmt.Errorf("create: %w", err)
			}
			defer mpcore.Destroy(ctx)

			if err := mpcore.Initialize(ctx); err != nil {
				return fmt.Errorf("initialize: %w", err)
			}

			if track == "" {
				track = fmt.Sprintf("demo-track-%s.mp3", uuid.New().String()[:8])
			}

			if err := mpcore.Command(ctx, ctx.Handle, []string{"loadfile", track}); err != nil {
				return fmt.Errorf("loadfile: %w", err)
			}

			for _, name := range []string{"path", "pause", "time-pos", "idle"} {
				val, err := mpcore.GetProperty(ctx, ctx.Handle, name, domain.FormatString)
				if err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: <%v>\n", name, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, val)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&track, "track", "", "path of the track to load (a random demo name if unset)")
	return cmd
}

func newEventsCommand() *cobra.Command {
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Create a client, enable tick events, load a track, and print events as they arrive",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := mpcore.Create()
			if err != nil {
				return fmt.Errorf("create: %w", err)
			}
			defer mpcore.Destroy(ctx)

			if err := mpcore.RequestEvent(ctx.Handle, domain.EventTick, true); err != nil {
				return fmt.Errorf("request_event: %w", err)
			}
			if err := mpcore.Initialize(ctx); err != nil {
				return fmt.Errorf("initialize: %w", err)
			}
			if err := mpcore.Command(ctx, ctx.Handle, []string{"loadfile", "demo.mp3"}); err != nil {
				return fmt.Errorf("loadfile: %w", err)
			}

			deadline := time.Now().Add(duration)
			for time.Now().Before(deadline) {
				rec := mpcore.WaitEvent(ctx.Handle, 500*time.Millisecond)
				if rec.ID == domain.EventNone {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "event: %s\n", mpcore.EventName(rec.ID))
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&duration, "duration", 3*time.Second, "how long to stream events before exiting")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client API version",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := mpcore.ClientAPIVersion()
			fmt.Fprintf(cmd.OutOrStdout(), "%d.%d\n", v>>16, v&0xFFFF)
			return nil
		},
	}
}
