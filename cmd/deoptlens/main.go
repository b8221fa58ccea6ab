package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"deoptlens/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "deoptlens",
	Short: "Overlay V8 deopt, code and IC markers on highlighted source",
	Long: `deoptlens weaves marker anchors for V8 code-creation, deoptimization and
inline-cache events into syntax-highlighted HTML without touching its text.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		traceCleanup = cleanup
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		runTraceCleanup()
	},
}

// main registers subcommands and persistent flags and executes the root
// command, exiting with status 1 on error.
func main() {
	rootCmd.Version = version.Plain()

	rootCmd.AddCommand(annotateCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(orderCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "print only problems")
	rootCmd.PersistentFlags().Bool("timings", false, "show per-file phase timings")
	rootCmd.PersistentFlags().String("config", "", "path to deoptlens.toml (default: search upwards from the working directory)")
	rootCmd.PersistentFlags().String("trace", "", "trace output file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 0, "keep the last N trace events in memory and print them if the run fails")

	err := rootCmd.Execute()
	if err != nil {
		dumpTraceRing(os.Stderr)
	}
	runTraceCleanup()
	if err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// colorEnabled resolves --color against the file output goes to.
func colorEnabled(cmd *cobra.Command, out *os.File) bool {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false
	}
	switch mode {
	case "on", "always":
		return true
	case "off", "never":
		return false
	}
	return out != nil && isTerminal(out) && os.Getenv("NO_COLOR") == ""
}
