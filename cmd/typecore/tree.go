package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"typecore/internal/decision"
	"typecore/internal/diagfmt"
	"typecore/internal/driver"
	"typecore/internal/trace"
)

var treeCmd = &cobra.Command{
	Use:   "tree [flags] <unit.toml>",
	Short: "Print or export the decision trees of a unit",
	Args:  cobra.ExactArgs(1),
	RunE:  runTree,
}

func init() {
	treeCmd.Flags().String("match", "", "only the match with this name")
	treeCmd.Flags().String("emit", "", "write the decision table as msgpack to this file (- for stdout)")
}

func runTree(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	only, err := cmd.Flags().GetString("match")
	if err != nil {
		return fmt.Errorf("failed to get match flag: %w", err)
	}
	emit, err := cmd.Flags().GetString("emit")
	if err != nil {
		return fmt.Errorf("failed to get emit flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	cleanup, err := setupTracing(cmd, "")
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "tree", 0)
	session, err := driver.Check(trace.WithSpan(ctx, span), args, driver.Options{MaxDiagnostics: maxDiagnostics})
	span.End("")
	if err != nil {
		return err
	}
	res := &session.Units[0]
	if res.Table == nil {
		color, cerr := useColor(cmd, os.Stderr)
		if cerr != nil {
			return cerr
		}
		bag := visible(session.Diagnostics(), false)
		if err := diagfmt.Pretty(cmd.ErrOrStderr(), bag, session.FileSet, diagfmt.PrettyOpts{Color: color, ShowNotes: true}); err != nil {
			return err
		}
		return fmt.Errorf("%s: unit could not be checked", res.Path)
	}

	table := res.Table
	if only != "" {
		entry, ok := table.Lookup(only)
		if !ok {
			return fmt.Errorf("%s: no match named %q", res.Path, only)
		}
		table = decision.NewTable()
		table.Add(entry.Name, entry.Arms, entry.Columns, entry.Root)
	}

	if emit != "" {
		return emitTable(cmd.OutOrStdout(), emit, table)
	}

	w := bufio.NewWriter(cmd.OutOrStdout())
	for i, e := range table.Entries {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "match %s (%d arms)\n", e.Name, e.Arms)
		if err := decision.Print(w, res.Pool, e.Root); err != nil {
			return err
		}
	}
	return w.Flush()
}

func emitTable(stdout io.Writer, path string, table *decision.Table) error {
	if path == "-" {
		return decision.EncodeTable(stdout, table)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := decision.EncodeTable(f, table); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
