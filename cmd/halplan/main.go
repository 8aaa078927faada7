// halplan checks clock profiles against the MAX7800x clock tree on a
// simulated chip and prints the resulting plans, the tree and the pin mux.
package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"max7800x-hal/x/logx"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:          "halplan",
		Short:        "Plan MAX7800x clock configurations",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logx.SetLogger(logx.New(stderr))
			if verbose {
				logx.SetLevel(slog.LevelDebug)
			}
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	root.AddCommand(newProposeCmd(), newTreeCmd(), newPinsCmd(), newEncodeCmd())
	return root
}
