package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sarchlab/ahblite/config"
	"github.com/sarchlab/ahblite/testbench"
	"github.com/sarchlab/ahblite/tracing"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run generated bursts through a simulated bus.",
	Long: "`simulate` drives generated bursts from a master into a memory " +
		"slave with random wait states for --cycles cycles, then lets the " +
		"outstanding transfers complete. It fails if a checker reports a " +
		"protocol violation or a read data mismatch.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		err := simulate(cfg)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "PASSED")

		return nil
	},
}

func init() {
	d := config.Default()

	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().Uint64("cycles", d.Cycles,
		"Number of cycles transactions are issued for")
	simulateCmd.Flags().Bool("monitor", d.Monitor,
		"Serve the simulation state over HTTP")
	simulateCmd.Flags().Int("monitor-port", d.MonitorPort,
		"Port of the monitoring server; random when 0")
	simulateCmd.Flags().Bool("open-browser", d.OpenBrowser,
		"Open the monitoring dashboard in a browser")
	simulateCmd.Flags().String("record", d.Record,
		"Record the issued transactions into the named SQLite database")
	simulateCmd.Flags().String("preload", d.Preload,
		"Load an Intel HEX image into memory before the run")
}

func simulate(c config.Config) error {
	b := testbench.MakeBuilder().WithConfig(c)

	if c.Record != "" {
		r := tracing.NewSQLiteRecorder(c.Record)

		err := r.Init()
		if err != nil {
			return err
		}

		b = b.WithRecorder(r)
	}

	tb := b.Build("AHB")

	if c.Preload != "" {
		err := tb.LoadIHexFile(c.Preload)
		if err != nil {
			_ = tb.Terminate()
			return errors.Wrap(err, "preloading")
		}
	}

	err := tb.Run()
	terminateErr := tb.Terminate()

	if err != nil {
		return err
	}

	return errors.Wrap(terminateErr, "terminating")
}
