package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sarchlab/ahblite/ahb"
	"github.com/sarchlab/ahblite/config"
	"github.com/sarchlab/ahblite/idgen"
	"github.com/sarchlab/ahblite/tracing"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Print or record generated bursts.",
	Long: "`generate` calls the burst generator --count times for each of " +
		"--workers seeds, starting at --seed, and writes every beat as text, " +
		"CSV or into a SQLite database.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		recorder, err := createRecorder(cfg, cmd.OutOrStdout())
		if err != nil {
			return err
		}

		err = generate(ctx, cfg, recorder)
		closeErr := recorder.Close()

		if err != nil {
			return err
		}

		return closeErr
	},
}

func init() {
	d := config.Default()

	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().Int("count", d.Count,
		"Number of generator calls per worker")
	generateCmd.Flags().Int("workers", d.Workers,
		"Number of generators running in parallel, each with its own seed")
	generateCmd.Flags().String("format", d.Format,
		"Output format: text, csv or sqlite")
	generateCmd.Flags().String("output", d.Output,
		"Output file; standard output when empty. For sqlite, the database "+
			"name without extension")
}

// generate runs one generator per worker and records every unit, worker by
// worker.
func generate(ctx context.Context, c config.Config, r tracing.Recorder) error {
	seeds := make([]int64, c.Workers)
	for i := range seeds {
		seeds[i] = c.Seed + int64(i)
	}

	results, err := ahb.Batch(ctx, c.GeneratorBuilder(), seeds, c.Count)
	if err != nil {
		return err
	}

	ids := idgen.NewSequential()
	for _, res := range results {
		for _, unit := range res.Units {
			tracing.RecordUnit(r, ids, unit)
		}
	}

	return r.Flush()
}

func createRecorder(c config.Config, stdout io.Writer) (tracing.Recorder, error) {
	switch c.Format {
	case "text":
		if c.Output == "" {
			return tracing.NewTextRecorder(stdout), nil
		}

		return tracing.CreateTextRecorder(c.Output)
	case "csv":
		if c.Output == "" {
			return tracing.NewCSVRecorder(stdout), nil
		}

		return tracing.CreateCSVRecorder(c.Output)
	case "sqlite":
		r := tracing.NewSQLiteRecorder(c.Output)

		err := r.Init()
		if err != nil {
			return nil, err
		}

		return r, nil
	}

	return nil, errors.Errorf("unknown format %q", c.Format)
}
