// Package cli provides the command-line interface of cpusched.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tebeka/atexit"

	"github.com/vinhtrinh326/cpusched/internal/config"
	"github.com/vinhtrinh326/cpusched/internal/logging"
)

// options is the state shared by every command of one invocation.
type options struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	logger     *slog.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	o := &options{v: config.New()}

	rootCmd := &cobra.Command{
		Use:   "cpusched",
		Short: "cpusched simulates CPU scheduling disciplines over a list of processes.",
		Long: `cpusched simulates First Come First Serve, Shortest Job First, ` +
			`Shortest Remaining Time First and Round Robin scheduling over a list of ` +
			`(arrival, burst) pairs and reports average response, turnaround and wait times.`,
		SilenceUsage:      true,
		PersistentPreRunE: o.load,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&o.configFile, "config", "", "config file (default ./config.yaml when present)")
	pf.String("log-level", "info", "log level: debug, info, warn or error")
	pf.Int64("quantum", 100, "round-robin time quantum")
	pf.Int("max-processes", 25, "maximum number of processes accepted")
	o.bind(config.KeyLogLevel, pf.Lookup("log-level"))
	o.bind(config.KeyQuantum, pf.Lookup("quantum"))
	o.bind(config.KeyMaxProcesses, pf.Lookup("max-processes"))

	rootCmd.AddCommand(
		newRunCmd(o),
		newServeCmd(o),
		newShellCmd(o),
	)
	return rootCmd
}

func (o *options) bind(key string, flag *pflag.Flag) {
	if err := o.v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// localFlags maps flags that several commands define to their config key.
var localFlags = map[string]string{
	"format": config.KeyFormat,
	"record": config.KeyRecordPath,
	"port":   config.KeyPort,
}

func (o *options) load(cmd *cobra.Command, _ []string) error {
	for name, key := range localFlags {
		if flag := cmd.Flags().Lookup(name); flag != nil {
			o.bind(key, flag)
		}
	}
	cfg, err := config.Load(o.v, o.configFile)
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.logger = logging.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	o.logger.Debug("configuration loaded",
		slog.Int64("quantum", cfg.Quantum),
		slog.Int("max_processes", cfg.MaxProcesses),
		slog.String("format", cfg.Format),
		slog.String("record_path", cfg.RecordPath),
	)
	return nil
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Registered exit handlers run before the process ends.
func Execute() {
	err := NewRootCmd().Execute()
	if err != nil {
		logging.BuildLogger("error").Error("cpusched failed", logging.ErrAttr(err))
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
