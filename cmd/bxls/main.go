package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"bxls/internal/prof"
	"bxls/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "bxls",
	Short: "BoxLang and CFML language server",
	Long:  `bxls analyzes BoxLang and CFML workspaces, either as a language server over stdio or as a batch linter`,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		mode, err := readColorMode(globalColor)
		if err != nil {
			return err
		}
		color.NoColor = !useColor(mode, os.Stdout)
		l, err := newLogger(globalLogLevel, globalQuiet, os.Stderr)
		if err != nil {
			return err
		}
		logger = l
		if globalProfiles.Enabled() {
			session, err := prof.Start(globalProfiles)
			if err != nil {
				return err
			}
			profiles = session
		}
		return nil
	},
}

var (
	globalColor        string
	globalQuiet        bool
	globalLogLevel     string
	globalSettingsPath string
	globalProfiles     prof.Options

	logger   = zap.NewNop()
	profiles *prof.Session
)

// main registers the subcommands and persistent flags and runs the root
// command. Any command error exits with status 1.
func main() {
	rootCmd.Version = version.String()

	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVar(&globalColor, "color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().BoolVar(&globalQuiet, "quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().StringVar(&globalLogLevel, "log-level", "warn", "log level written to stderr (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&globalSettingsPath, "settings", "", "path to a bxls.toml settings file")
	rootCmd.PersistentFlags().StringVar(&globalProfiles.CPU, "cpuprofile", "", "write a CPU profile to this file")
	rootCmd.PersistentFlags().StringVar(&globalProfiles.Mem, "memprofile", "", "write a heap profile to this file on exit")
	rootCmd.PersistentFlags().StringVar(&globalProfiles.Trace, "trace", "", "write a runtime trace to this file")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if profErr := profiles.Stop(); profErr != nil {
		logger.Warn("profiles incomplete", zap.Error(profErr))
	}
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
}
