package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"max7800x-hal/chip/max7800x"
	"max7800x-hal/clock"
	"max7800x-hal/config"
	"max7800x-hal/device"
	"max7800x-hal/gcr"
	"max7800x-hal/pac"
)

func newProposeCmd() *cobra.Command {
	var (
		file  string
		name  string
		chain bool
	)
	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Validate profiles and print their commit order",
		Long: "Propose each profile against a simulated chip and print the ordered steps.\n" +
			"Profiles start from the reset configuration unless --chain applies them in sequence.",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := load(file)
			if err != nil {
				return err
			}
			if err := f.Apply(); err != nil {
				return err
			}
			profiles := f.Profiles
			if name != "" {
				p, ok := f.Lookup(name)
				if !ok {
					return fmt.Errorf("no profile %q", name)
				}
				profiles = []config.Profile{p}
			}
			var tree *clock.Tree
			failed := 0
			for _, p := range profiles {
				if tree == nil || !chain {
					if tree, err = simTree(); err != nil {
						return err
					}
				}
				if err := propose(cmd, tree, p, chain); err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", p.Name, err)
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d profiles invalid", failed, len(profiles))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "profile file (.yaml, .yml or .cbor); built-in profiles when empty")
	cmd.Flags().StringVarP(&name, "profile", "p", "", "only this profile")
	cmd.Flags().BoolVar(&chain, "chain", false, "commit each profile before proposing the next")
	return cmd
}

func load(file string) (*config.File, error) {
	if file == "" {
		return config.DefaultProfiles(), nil
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(file), ".cbor") {
		return config.ParseCBOR(b)
	}
	return config.ParseYAML(b)
}

// simTree is the clock tree of a freshly reset simulated chip.
func simTree() (*clock.Tree, error) {
	p := device.Steal(pac.NewSim().Blocks())
	sys, err := gcr.New(p.GCR)
	if err != nil {
		return nil, err
	}
	return max7800x.NewTree(sys)
}

func propose(cmd *cobra.Command, tree *clock.Tree, p config.Profile, commit bool) error {
	plan, err := tree.Propose(p.Request())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %s\n", p.Name, plan)
	for _, id := range []clock.NodeID{max7800x.Sysclk, max7800x.SysclkDiv, max7800x.PCLK} {
		if hz, ok := plan.Frequency(id); ok {
			fmt.Fprintf(out, "  %-10s %d Hz\n", id, hz)
		}
	}
	if commit {
		return tree.Commit(plan)
	}
	return nil
}
