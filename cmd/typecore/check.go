package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"typecore/internal/diag"
	"typecore/internal/diagfmt"
	"typecore/internal/driver"
	"typecore/internal/trace"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [unit.toml...|directory]",
	Short: "Check unit files",
	Long: `Load unit files, declare their types, run every unification query and
compile and check every match. Without arguments the units listed by the
nearest typecore.toml are checked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := runCheck(cmd, args)
		if err != nil {
			return err
		}
		if code != 0 {
			os.Exit(code)
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	checkCmd.Flags().Int("jobs", 0, "max parallel passes per unit (0=auto)")
	checkCmd.Flags().Bool("no-notes", false, "omit diagnostic notes")
	checkCmd.Flags().Bool("info", false, "also show informational diagnostics, such as expected failures")
	checkCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().Bool("disk-cache", false, "reuse results of unchanged units from the user cache directory")
	checkCmd.Flags().Bool("drop-cache", false, "clear the result cache before checking")
	checkCmd.Flags().String("ui", "off", "progress view (auto|on|off)")
}

func runCheck(cmd *cobra.Command, args []string) (int, error) {
	defer dumpTraceOnPanic()

	settings, err := loadCheckSettings(cmd, args)
	if err != nil {
		return 0, err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return 0, fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return 0, fmt.Errorf("unknown format: %s", format)
	}
	noNotes, err := cmd.Flags().GetBool("no-notes")
	if err != nil {
		return 0, fmt.Errorf("failed to get no-notes flag: %w", err)
	}
	showInfo, err := cmd.Flags().GetBool("info")
	if err != nil {
		return 0, fmt.Errorf("failed to get info flag: %w", err)
	}
	warningsAsErrors, err := cmd.Flags().GetBool("warnings-as-errors")
	if err != nil {
		return 0, fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return 0, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return 0, fmt.Errorf("failed to get timings flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return 0, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return 0, fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return 0, err
	}
	cache, err := openCache(cmd)
	if err != nil {
		return 0, err
	}

	cleanup, err := setupTracing(cmd, settings.traceLevel)
	if err != nil {
		return 0, err
	}
	defer cleanup()

	ctx := cmd.Context()
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "check", 0)
	opts := driver.Options{
		Jobs:           settings.jobs,
		MaxDiagnostics: settings.maxDiagnostics,
		Timings:        timings,
		Cache:          cache,
	}
	var session *driver.Session
	if shouldUseTUI(mode, len(settings.units)) {
		session, err = runCheckWithUI(trace.WithSpan(ctx, span), "typecore check", settings.units, opts)
	} else {
		session, err = driver.Check(trace.WithSpan(ctx, span), settings.units, opts)
	}
	span.End(fmt.Sprintf("%d units", len(settings.units)))
	if err != nil {
		return 0, err
	}

	bag := visible(session.Diagnostics(), showInfo)
	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		err = diagfmt.JSON(out, bag, session.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     !noNotes,
		})
	default:
		var color bool
		if color, err = useColor(cmd, os.Stdout); err != nil {
			return 0, err
		}
		err = diagfmt.Pretty(out, bag, session.FileSet, diagfmt.PrettyOpts{
			Color:     color,
			Context:   1,
			PathMode:  pathMode,
			ShowNotes: !noNotes,
		})
		if err == nil && !quiet {
			err = writeCheckSummary(out, session, bag)
		}
	}
	if err != nil {
		return 0, err
	}

	if session.HasErrors() || (warningsAsErrors && bag.HasWarnings()) {
		return 1, nil
	}
	return 0, nil
}

func openCache(cmd *cobra.Command) (*driver.ResultCache, error) {
	enabled, err := cmd.Flags().GetBool("disk-cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get disk-cache flag: %w", err)
	}
	drop, err := cmd.Flags().GetBool("drop-cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get drop-cache flag: %w", err)
	}
	if !enabled && !drop {
		return nil, nil
	}
	cache, err := driver.OpenResultCache("typecore")
	if err != nil {
		return nil, err
	}
	if drop {
		if err := cache.DropAll(); err != nil {
			return nil, fmt.Errorf("failed to drop cache: %w", err)
		}
	}
	if !enabled {
		return nil, nil
	}
	return cache, nil
}

// visible drops informational entries unless asked for; timings stay.
func visible(bag *diag.Bag, showInfo bool) *diag.Bag {
	if showInfo {
		return bag
	}
	out := diag.NewBag(max(bag.Len(), 1))
	for _, d := range bag.Items() {
		if d.Severity == diag.SevInfo && d.Code != diag.ObsTimings {
			continue
		}
		out.Add(d)
	}
	return out
}

func writeCheckSummary(w io.Writer, s *driver.Session, bag *diag.Bag) error {
	var trees, cached int
	for i := range s.Units {
		trees += s.Units[i].Trees
		if s.Units[i].Cached {
			cached++
		}
	}
	if _, err := fmt.Fprintf(w, "checked %d units, %d decision trees", len(s.Units), trees); err != nil {
		return err
	}
	if cached > 0 {
		if _, err := fmt.Fprintf(w, " (%d cached)", cached); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return diagfmt.Summary(w, bag)
}
