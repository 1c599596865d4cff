// psumon reads the meter's serial console and prints the readings as they
// change.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.bug.st/serial"

	"github.com/harveysanders/psumeter/logline"
)

const defaultBaudRate = 115200

var (
	value   = color.New(color.FgHiGreen)
	warning = color.New(color.FgYellow)
	failure = color.New(color.FgRed)
)

func newCommand() *cobra.Command {
	var (
		port string
		baud int
		raw  bool
	)
	cmd := &cobra.Command{
		Use:           "psumon",
		Short:         "Monitor the bench supply meter over its serial console",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port == "" {
				return errors.New("no port given, see 'psumon ports'")
			}
			conn, err := serial.Open(port, &serial.Mode{BaudRate: baud})
			if err != nil {
				return fmt.Errorf("open %s: %w", port, err)
			}
			defer conn.Close()
			return monitor(conn, cmd.OutOrStdout(), raw)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "serial port, e.g. /dev/ttyACM0")
	cmd.Flags().IntVarP(&baud, "baud", "b", defaultBaudRate, "baud rate")
	cmd.Flags().BoolVar(&raw, "raw", false, "also echo lines that are not meter records")
	cmd.AddCommand(&cobra.Command{
		Use:   "ports",
		Short: "List serial ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := serial.GetPortsList()
			if err != nil {
				return fmt.Errorf("list serial ports: %w", err)
			}
			for _, p := range ports {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	})
	return cmd
}

// monitor scans r until EOF, printing the display state after every meter
// record and highlighting warnings and errors.
func monitor(r io.Reader, w io.Writer, raw bool) error {
	var d logline.Display
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		l, err := logline.Parse(sc.Text())
		if err != nil {
			if raw {
				fmt.Fprintln(w, sc.Text())
			}
			continue
		}
		switch {
		case d.Apply(l):
			value.Fprintf(w, "V=%6.2fV  I=%5.2fA  limit=%5.2fA  (%d updates)\n",
				d.Voltage, d.Current, d.Limit, d.Updates)
		case l.Level == "ERROR":
			failure.Fprintln(w, l.Msg, l.Attrs)
		case l.Level == "WARN" || raw:
			warning.Fprintln(w, l.Msg, l.Attrs)
		}
	}
	return sc.Err()
}

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
