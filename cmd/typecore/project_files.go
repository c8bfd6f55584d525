package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"typecore/internal/project"
)

// checkSettings are the effective options after merging typecore.toml with
// command-line flags. Flags win when set explicitly.
type checkSettings struct {
	units          []string
	jobs           int
	maxDiagnostics int
	traceLevel     string
}

// resolveUnits picks the unit files for args. No arguments or a single
// directory means the units of the nearest typecore.toml; explicit files
// are taken as given.
func resolveUnits(args []string) ([]string, project.Config, error) {
	start := "."
	if len(args) == 1 {
		st, err := os.Stat(args[0])
		if err != nil {
			return nil, project.Config{}, fmt.Errorf("failed to stat path: %w", err)
		}
		if st.IsDir() {
			start = args[0]
			args = nil
		}
	}

	cfg, found, err := project.Discover(start)
	if err != nil {
		return nil, project.Config{}, err
	}
	if len(args) > 0 {
		return args, cfg, nil
	}
	if !found {
		cfg.Root = start
	}
	units, err := cfg.UnitFiles()
	if err != nil {
		return nil, project.Config{}, err
	}
	if len(units) == 0 {
		return nil, project.Config{}, fmt.Errorf("no unit files found in %s", cfg.Root)
	}
	return units, cfg, nil
}

func loadCheckSettings(cmd *cobra.Command, args []string) (checkSettings, error) {
	units, cfg, err := resolveUnits(args)
	if err != nil {
		return checkSettings{}, err
	}
	s := checkSettings{
		units:          units,
		jobs:           cfg.Check.Jobs,
		maxDiagnostics: cfg.Check.MaxDiagnostics,
		traceLevel:     cfg.Check.TraceLevel,
	}

	root := cmd.Root().PersistentFlags()
	if root.Changed("max-diagnostics") || s.maxDiagnostics == 0 {
		if s.maxDiagnostics, err = root.GetInt("max-diagnostics"); err != nil {
			return checkSettings{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
	}
	if f := cmd.Flags().Lookup("jobs"); f != nil && (f.Changed || s.jobs == 0) {
		if s.jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
			return checkSettings{}, fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	return s, nil
}
