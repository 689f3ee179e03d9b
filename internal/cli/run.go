package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/vinhtrinh326/cpusched/internal/input"
	"github.com/vinhtrinh326/cpusched/internal/metrics"
	"github.com/vinhtrinh326/cpusched/internal/report"
	"github.com/vinhtrinh326/cpusched/internal/scheduler"
	"github.com/vinhtrinh326/cpusched/internal/store"
)

func newRunCmd(o *options) *cobra.Command {
	var algorithms []string

	runCmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Simulate the processes in file, or on stdin.",
		Long: "`run [file]` reads whitespace separated (arrival, burst) pairs from file, " +
			"or from stdin when file is omitted or -, and simulates every discipline.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, args, algorithms)
		},
	}

	f := runCmd.Flags()
	f.StringSliceVarP(&algorithms, "algorithm", "a", nil, "disciplines to run: fcfs, sjf, srtf, rr (default all)")
	f.StringP("format", "f", "summary", "report format: summary, table or json")
	f.String("record", "", "SQLite file to record the runs in")

	return runCmd
}

func (o *options) run(cmd *cobra.Command, args, names []string) error {
	r, closeFile, err := o.source(cmd, args)
	if err != nil {
		return err
	}
	defer closeFile()

	procs, err := input.Parse(r, o.cfg.MaxProcesses)
	if err != nil {
		return err
	}

	algs, err := parseAlgorithms(names)
	if err != nil {
		return err
	}

	sim := scheduler.NewSimulator(o.cfg.Quantum, scheduler.NewLogHook(o.logger))
	results, err := sim.RunEach(algs, procs)
	if err != nil {
		return err
	}
	summaries := metrics.SummarizeAll(results)

	if err := report.Write(cmd.OutOrStdout(), o.cfg.Format, summaries); err != nil {
		return err
	}

	if o.cfg.RecordPath == "" {
		return nil
	}
	return o.record(cmd.ErrOrStderr(), summaries)
}

func (o *options) source(cmd *cobra.Command, args []string) (io.Reader, func(), error) {
	if len(args) == 0 || args[0] == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	return input.Open(args...)
}

func (o *options) record(w io.Writer, summaries []metrics.Summary) error {
	rec, err := store.Open(o.cfg.RecordPath)
	if err != nil {
		return err
	}
	handler := atexit.Register(func() { _ = rec.Close() })
	defer func() {
		_ = handler.Cancel()
		_ = rec.Close()
	}()

	batchID, err := rec.Record(summaries)
	if err != nil {
		return fmt.Errorf("recording runs: %w", err)
	}
	o.logger.Info("runs recorded",
		slog.String("batch_id", batchID),
		slog.String("path", rec.Path()),
	)
	_, err = fmt.Fprintf(w, "recorded batch %s in %s\n", batchID, rec.Path())
	return err
}

func parseAlgorithms(names []string) ([]scheduler.Algorithm, error) {
	if len(names) == 0 {
		return scheduler.Algorithms, nil
	}
	algs := make([]scheduler.Algorithm, 0, len(names))
	for _, name := range names {
		alg, err := scheduler.ParseAlgorithm(name)
		if err != nil {
			return nil, err
		}
		algs = append(algs, alg)
	}
	return algs, nil
}
