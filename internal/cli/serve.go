package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/vinhtrinh326/cpusched/internal/api"
	"github.com/vinhtrinh326/cpusched/internal/logging"
	"github.com/vinhtrinh326/cpusched/internal/store"
)

func newServeCmd(o *options) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the simulator over HTTP.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.serve(cmd)
		},
	}

	f := serveCmd.Flags()
	f.Int("port", 9095, "port to listen on")
	f.String("record", "", "SQLite file to record the runs in")

	return serveCmd
}

func (o *options) serve(cmd *cobra.Command) error {
	opts := api.Options{
		Quantum:      o.cfg.Quantum,
		MaxProcesses: o.cfg.MaxProcesses,
		Logger:       o.logger,
	}
	if o.cfg.RecordPath != "" {
		rec, err := store.Open(o.cfg.RecordPath)
		if err != nil {
			return err
		}
		atexit.Register(func() { _ = rec.Close() })
		opts.Recorder = rec
	}

	server := api.NewServer(opts)
	atexit.Register(func() { _ = server.Shutdown() })

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		if err := server.Shutdown(); err != nil {
			o.logger.Error("shutting down", logging.ErrAttr(err))
		}
	}()

	o.logger.Info("listening",
		slog.String("addr", o.cfg.Addr()),
		slog.Bool("recording", opts.Recorder != nil),
	)
	return server.Listen(o.cfg.Addr())
}
