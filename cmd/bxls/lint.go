package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bxls/internal/diag"
	"bxls/internal/diagfmt"
	"bxls/internal/observ"
	"bxls/internal/ui"
	"bxls/internal/workspace"
)

var errLintFailed = errors.New("lint found errors")

type lintOptions struct {
	format      string
	ui          uiMode
	timings     bool
	quiet       bool
	color       bool
	minSeverity diag.Severity
	showFixes   bool
	max         int
	settings    string
}

var (
	lintFormat      string
	lintUI          string
	lintTimings     bool
	lintMinSeverity string
	lintFixes       bool
	lintMax         int
)

func init() {
	lintCmd.Flags().StringVar(&lintFormat, "format", "pretty", "output format (pretty|json|patch)")
	lintCmd.Flags().StringVar(&lintUI, "ui", "auto", "scan progress view (auto|on|off)")
	lintCmd.Flags().BoolVar(&lintTimings, "timings", false, "print phase timings to stderr")
	lintCmd.Flags().StringVar(&lintMinSeverity, "severity", "hint", "lowest severity to report (error|warning|information|hint)")
	lintCmd.Flags().BoolVar(&lintFixes, "fixes", false, "show available quick fixes")
	lintCmd.Flags().IntVar(&lintMax, "max-diagnostics", 0, "maximum number of diagnostics in JSON output (0 = all)")
}

var lintCmd = &cobra.Command{
	Use:          "lint [dir]",
	Short:        "Analyze every source file under a directory",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		mode, err := readUIMode(lintUI)
		if err != nil {
			return err
		}
		minSev, err := readSeverity(lintMinSeverity)
		if err != nil {
			return err
		}
		opts := lintOptions{
			format:      strings.ToLower(lintFormat),
			ui:          mode,
			timings:     lintTimings,
			quiet:       globalQuiet,
			color:       useColorFlag(),
			minSeverity: minSev,
			showFixes:   lintFixes,
			max:         lintMax,
			settings:    globalSettingsPath,
		}
		opts.ui = uiModeOff
		if shouldUseTUI(mode, os.Stderr) {
			opts.ui = uiModeOn
		}
		counts, err := runLint(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), dir, opts, logger)
		if err != nil {
			return err
		}
		if counts.Errors > 0 {
			return fmt.Errorf("%w: %d", errLintFailed, counts.Errors)
		}
		return nil
	},
}

func useColorFlag() bool {
	mode, err := readColorMode(globalColor)
	if err != nil {
		return false
	}
	return useColor(mode, os.Stdout)
}

func readSeverity(value string) (diag.Severity, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return diag.SevError, nil
	case "warning":
		return diag.SevWarning, nil
	case "information", "info":
		return diag.SevInformation, nil
	case "", "hint":
		return diag.SevHint, nil
	default:
		return 0, fmt.Errorf("invalid --severity value %q (expected error|warning|information|hint)", value)
	}
}

// runLint scans dir, prints the diagnostics to out and returns their
// counts. Timings and the progress view go to errOut.
func runLint(ctx context.Context, out, errOut io.Writer, dir string, opts lintOptions, log *zap.Logger) (diagfmt.Counts, error) {
	switch opts.format {
	case "pretty", "json", "patch":
	default:
		return diagfmt.Counts{}, fmt.Errorf("unsupported format %q (must be pretty, json or patch)", opts.format)
	}
	if log == nil {
		log = zap.NewNop()
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return diagfmt.Counts{}, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return diagfmt.Counts{}, err
	}
	if !info.IsDir() {
		return diagfmt.Counts{}, fmt.Errorf("%s is not a directory", dir)
	}

	timer := observ.NewTimer()
	settings, err := loadSettings(opts.settings, root)
	if err != nil {
		return diagfmt.Counts{}, err
	}
	settings.EnableBackgroundParsing = true

	var events chan workspace.Event
	var sink workspace.ProgressSink
	if opts.ui == uiModeOn {
		events = make(chan workspace.Event, 256)
		sink = workspace.ChannelSink{Ch: events}
	}
	ws := workspace.New(workspace.Options{
		Root:     root,
		Settings: settings,
		Progress: sink,
		Log:      log.Named("workspace"),
	})

	err = timer.Track("scan", func() error {
		if events == nil {
			return ws.ScanWorkspace(ctx)
		}
		scanErr := make(chan error, 1)
		go func() {
			scanErr <- ws.ScanWorkspace(ctx)
			close(events)
		}()
		uiErr := ui.Run("analyzing "+filepath.Base(root), events, errOut)
		if uiErr != nil {
			go func() {
				for range events {
				}
			}()
		}
		if err := <-scanErr; err != nil {
			return err
		}
		return uiErr
	})
	if err != nil {
		return diagfmt.Counts{}, fmt.Errorf("scan %s: %w", root, err)
	}

	var reports []diagfmt.FileReport
	collect := timer.Begin("collect")
	for _, r := range ws.Reports() {
		if len(r.Diagnostics) == 0 {
			continue
		}
		doc, err := ws.Resolve(r.URI)
		if err != nil {
			log.Warn("report dropped", zap.String("uri", r.URI), zap.Error(err))
			continue
		}
		reports = append(reports, diagfmt.FileReport{File: doc.File, Diagnostics: r.Diagnostics, Actions: doc.Actions})
	}
	timer.End(collect, fmt.Sprintf("%d files", len(reports)))

	counts := diagfmt.Count(reports, opts.minSeverity)
	err = timer.Track("render", func() error {
		switch opts.format {
		case "patch":
			return diagfmt.Patch(out, reports, diagfmt.PatchOpts{BaseDir: root, MinSeverity: opts.minSeverity})
		case "json":
			return diagfmt.JSON(out, reports, diagfmt.JSONOpts{
				BaseDir:      root,
				Max:          opts.max,
				MinSeverity:  opts.minSeverity,
				IncludeFixes: opts.showFixes,
			})
		}
		if err := diagfmt.Pretty(out, reports, diagfmt.PrettyOpts{
			Color:       opts.color,
			Context:     1,
			BaseDir:     root,
			MinSeverity: opts.minSeverity,
			ShowFixes:   opts.showFixes,
			ShowPreview: opts.showFixes,
		}); err != nil {
			return err
		}
		if opts.quiet {
			return nil
		}
		return diagfmt.Summary(out, counts, opts.color)
	})
	if err != nil {
		return counts, err
	}
	if opts.timings {
		if err := timer.WriteSummary(errOut); err != nil {
			return counts, err
		}
	}
	return counts, nil
}
