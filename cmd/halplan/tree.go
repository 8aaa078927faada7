package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"max7800x-hal/chip/max7800x"
)

func newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the clock tree, parents first",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NODE\tKIND\tINPUTS\tHZ/DIV\tMAX")
			for _, n := range max7800x.Topology().Nodes() {
				var in []string
				for _, i := range n.Inputs {
					in = append(in, string(i))
				}
				detail := "-"
				switch {
				case n.Hz != 0:
					detail = fmt.Sprint(n.Hz)
				case len(n.Divisors) > 0:
					detail = fmt.Sprint(n.Divisors)
				}
				limit := "-"
				if n.MaxHz != 0 {
					limit = fmt.Sprint(n.MaxHz)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", n.ID, n.Kind, strings.Join(in, ","), detail, limit)
			}
			tw.Flush()
		},
	}
}
