// psusim runs the meter's display loop on the host against a scripted set of
// ADC channels and prints what the 16x2 LCD would show after every poll.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harveysanders/psumeter/sim"
)

var logLevel = "warn"

func newLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

func newCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "psusim",
		Short:         "Simulate the bench supply meter display",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", logLevel, "log level (debug, info, warn, error)")
	cmd.AddCommand(newRunCommand(), newExampleCommand())
	return cmd
}

func newRunCommand() *cobra.Command {
	var (
		steps   int
		changes bool
	)
	cmd := &cobra.Command{
		Use:   "run [scenario.yaml]",
		Short: "Run a scenario and print every frame",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			scenario, err := sim.Load(path)
			if err != nil {
				return err
			}
			if steps > 0 {
				scenario.Steps = steps
			}
			logger.Info("running scenario", "name", scenario.Name, "steps", scenario.Steps)

			out := cmd.OutOrStdout()
			sim.New(scenario, logger).Run(func(f sim.Frame) {
				if changes && f.Step > 0 && f.Changed == 0 {
					return
				}
				printFrame(out, f)
			})
			return nil
		},
	}
	cmd.Flags().IntVarP(&steps, "steps", "n", 0, "override the scenario step count")
	cmd.Flags().BoolVarP(&changes, "changes", "c", false, "only print frames that redrew a field")
	return cmd
}

func newExampleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "example",
		Short: "Print the built-in scenario as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := sim.Default().Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
}

var (
	bezel = color.New(color.FgHiBlack)
	panel = color.New(color.FgHiGreen, color.BgBlack)
	info  = color.New(color.FgCyan)
)

func printFrame(w io.Writer, f sim.Frame) {
	edge := "+" + strings.Repeat("-", len(f.Rows[0])) + "+"
	info.Fprintf(w, "step %d  t=%v  redrawn=%d  chars=%d\n", f.Step, f.Elapsed, f.Changed, f.Chars)
	bezel.Fprintln(w, edge)
	for _, row := range f.Rows {
		bezel.Fprint(w, "|")
		panel.Fprint(w, row)
		bezel.Fprintln(w, "|")
	}
	bezel.Fprintln(w, edge)
}

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
