package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [definitions.yaml]",
		Short: "Build every policy from the behavior definitions and report errors",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			defs, err := loadDefinitions(path)
			if err != nil {
				return err
			}
			trees, machines, utility := defs.Names()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "trees: %s\n", strings.Join(trees, ", "))
			fmt.Fprintf(out, "machines: %s\n", strings.Join(machines, ", "))
			fmt.Fprintf(out, "utility tables: %s\n", strings.Join(utility, ", "))
			fmt.Fprintln(out, "definitions are valid")
			return nil
		},
	}
	return cmd
}
