package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/zeusync/arena/internal/arena"
	"github.com/zeusync/arena/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "arena",
		Short:         "Simulate team arena matches between agent decision engines",
		Long:          `arena pits agents driven by a state machine, a behavior tree or a utility arbiter against each other in a deterministic dodgeball arena.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "YAML configuration file")
	root.AddCommand(newRunCmd(), newValidateCmd())
	return root
}

// loadConfig layers the config file, ARENA_* variables and the flags of cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	l := config.NewLoader()
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if err := l.LoadFile(path); err != nil {
		return nil, err
	}
	if err := l.BindFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	return l.Load()
}

// loadDefinitions reads path, or the embedded definitions when path is empty,
// and validates them.
func loadDefinitions(path string) (*arena.Definitions, error) {
	var (
		defs *arena.Definitions
		err  error
	)
	if path == "" {
		defs, err = arena.DefaultDefinitions()
	} else {
		var f *os.File
		if f, err = os.Open(path); err != nil {
			return nil, err
		}
		defs, err = arena.LoadDefinitions(f)
		_ = f.Close()
	}
	if err != nil {
		return nil, err
	}
	if err := defs.Validate(); err != nil {
		return nil, err
	}
	return defs, nil
}
