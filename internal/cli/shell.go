package cli

import (
	"github.com/spf13/cobra"

	"github.com/vinhtrinh326/cpusched/internal/shell"
)

func newShellCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Edit a process list and run simulations interactively.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			sh := shell.New(o.cfg.Quantum, o.cfg.MaxProcesses, o.cfg.Format, o.logger)
			exit := make(chan struct{}, 2) // buffer this so there's no deadlock.
			sh.RunLoop(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), exit)
		},
	}
}
