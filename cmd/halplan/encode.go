package main

import (
	"os"

	"github.com/spf13/cobra"

	"max7800x-hal/config"
)

func newEncodeCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "encode <profiles.yaml>",
		Short: "Convert a YAML profile file to the CBOR form firmware embeds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			f, err := config.ParseYAML(b)
			if err != nil {
				return err
			}
			blob, err := config.EncodeCBOR(f)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(blob)
				return err
			}
			return os.WriteFile(out, blob, 0o644)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file; stdout when empty")
	return cmd
}
