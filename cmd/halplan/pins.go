package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"max7800x-hal/chip/max7800x"
)

func newPinsCmd() *cobra.Command {
	var signal string
	cmd := &cobra.Command{
		Use:   "pins",
		Short: "Print the alternate-function table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := max7800x.PinMux()
			if signal != "" {
				rows = max7800x.Routes(max7800x.Signal(strings.ToLower(signal)))
				if len(rows) == 0 {
					return fmt.Errorf("no pin carries %s", signal)
				}
			}
			for _, f := range rows {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&signal, "signal", "s", "", "only pins that can carry this signal, e.g. uart0_tx")
	return cmd
}
