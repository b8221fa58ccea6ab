package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"deoptlens/internal/cache"
	"deoptlens/internal/config"
	"deoptlens/internal/diag"
	"deoptlens/internal/driver"
	"deoptlens/internal/report"
	"deoptlens/internal/source"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate [flags] html[=sourceKey]...",
	Short: "Weave markers into highlighted HTML documents",
	Long: `Weave one marker per entry into each highlighted document.

Each argument names a highlighted HTML fragment and, after '=', the key of
its source file in the entries document. Without arguments the [[files]]
tables of deoptlens.toml are used. Without --out-dir a single document is
written to stdout.`,
	RunE: runAnnotate,
}

func init() {
	annotateCmd.Flags().String("entries", "", "entries JSON produced by the trace parser")
	annotateCmd.Flags().String("out-dir", "", "directory for woven documents")
	annotateCmd.Flags().Bool("audit", false, "run self-consistency checks while weaving")
	annotateCmd.Flags().String("columns", "utf16", "unit of entry columns (utf16|rune|byte)")
	annotateCmd.Flags().Int("jobs", 0, "max parallel files (0=auto)")
	annotateCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	annotateCmd.Flags().Bool("strict", false, "exit with status 1 when any marker could not be placed")
	annotateCmd.Flags().String("format", "pretty", "report format (pretty|json)")
	annotateCmd.Flags().String("active", "", "marker id to flag as active")
	annotateCmd.Flags().Bool("no-cache", false, "do not use the decoded entries cache")
	annotateCmd.Flags().Int("max-diagnostics", 0, "maximum diagnostics per file (0=unlimited)")
}

type annotateSettings struct {
	entries  string
	outDir   string
	columns  source.ColumnUnit
	format   report.Format
	ui       uiMode
	strict   bool
	useCache bool
	quiet    bool
	timings  bool
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	set, err := readAnnotateSettings(cmd, cfg)
	if err != nil {
		return err
	}
	if set.entries == "" {
		return errors.New("no entries file: pass --entries or set [run].entries")
	}

	jobs, err := collectJobs(args, cfg, set.outDir)
	if err != nil {
		return err
	}
	stdoutDoc := len(jobs) == 1 && jobs[0].OutPath == ""
	if len(jobs) > 1 {
		for _, j := range jobs {
			if j.OutPath == "" {
				return fmt.Errorf("%s: --out-dir is required when annotating more than one document", j.HTMLPath)
			}
		}
	}

	var dc *cache.Disk
	if set.useCache {
		if dc, err = cache.Open("deoptlens"); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: entries cache disabled: %v\n", err)
			dc = nil
		}
	}
	doc, _, err := driver.LoadEntries(set.entries, dc)
	if err != nil {
		return err
	}
	inputBag := diag.NewBag(0)
	doc.Validate(diag.BagReporter{Bag: inputBag})
	inputBag.Sort()
	if inputBag.Len() > 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), diag.FormatShort(inputBag.Items()))
	}

	active := cfg.Weave.Active
	if cmd.Flags().Changed("active") {
		active, _ = cmd.Flags().GetString("active")
	}
	audit := cfg.Weave.Audit
	if cmd.Flags().Changed("audit") {
		audit, _ = cmd.Flags().GetBool("audit")
	}
	parallel := cfg.Run.Jobs
	if cmd.Flags().Changed("jobs") {
		parallel, _ = cmd.Flags().GetInt("jobs")
	}
	maxDiag := cfg.Run.MaxDiagnostics
	if cmd.Flags().Changed("max-diagnostics") {
		maxDiag, _ = cmd.Flags().GetInt("max-diagnostics")
	}

	req := &driver.Request{
		Entries: doc,
		Files:   jobs,
		Jobs:    parallel,
		Weave: driver.WeaveOptions{
			Audit:    audit,
			Columns:  set.columns,
			ActiveID: active,
		},
		MaxDiagnostics: maxDiag,
	}

	reportOut := os.Stdout
	if stdoutDoc {
		reportOut = os.Stderr
	}

	var res *driver.Result
	if len(jobs) > 1 && !set.quiet && set.format == report.FormatPretty && shouldUseTUI(set.ui) {
		res, err = runAnnotateWithUI(cmd.Context(), "annotate", req)
	} else {
		res, err = driver.Annotate(cmd.Context(), req)
	}
	if err != nil {
		return err
	}

	if stdoutDoc {
		if _, err := io.WriteString(cmd.OutOrStdout(), res.Files[0].Output); err != nil {
			return err
		}
	}

	opts := report.Options{
		Color:   set.format == report.FormatPretty && colorEnabled(cmd, reportOut),
		Quiet:   set.quiet,
		Timings: set.timings,
	}
	w := cmd.OutOrStdout()
	if stdoutDoc {
		w = cmd.ErrOrStderr()
	}
	if err := report.Write(w, set.format, res, opts); err != nil {
		return err
	}
	if set.format == report.FormatJSON && res.Unresolved() > 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), report.UnresolvedSummary(res.Unresolved()))
	}

	if res.HasErrors() {
		return errors.New("annotate finished with errors")
	}
	if set.strict && res.Unresolved() > 0 {
		return fmt.Errorf("strict: %s", report.UnresolvedSummary(res.Unresolved()))
	}
	return nil
}

func readAnnotateSettings(cmd *cobra.Command, cfg *config.Config) (annotateSettings, error) {
	var s annotateSettings
	flags := cmd.Flags()

	s.entries = cfg.Resolve(cfg.Run.Entries)
	if flags.Changed("entries") {
		s.entries, _ = flags.GetString("entries")
	}
	s.outDir = cfg.Resolve(cfg.Run.OutDir)
	if flags.Changed("out-dir") {
		s.outDir, _ = flags.GetString("out-dir")
	}

	columns := cfg.Weave.Columns
	if flags.Changed("columns") {
		columns, _ = flags.GetString("columns")
	}
	unit, err := source.ParseColumnUnit(columns)
	if err != nil {
		return s, err
	}
	s.columns = unit

	formatStr, _ := flags.GetString("format")
	if s.format, err = report.ParseFormat(formatStr); err != nil {
		return s, err
	}
	uiStr, _ := flags.GetString("ui")
	if s.ui, err = readUIMode(uiStr); err != nil {
		return s, err
	}
	s.strict, _ = flags.GetBool("strict")
	noCache, _ := flags.GetBool("no-cache")
	s.useCache = cfg.Run.Cache && !noCache
	s.quiet, _ = cmd.Root().PersistentFlags().GetBool("quiet")
	s.timings, _ = cmd.Root().PersistentFlags().GetBool("timings")
	return s, nil
}

// collectJobs turns CLI arguments, or the config's [[files]] when there are
// none, into driver jobs.
func collectJobs(args []string, cfg *config.Config, outDir string) ([]driver.FileJob, error) {
	var jobs []driver.FileJob
	if len(args) > 0 {
		for _, arg := range args {
			job, err := driver.ParseJob(arg, outDir)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, job)
		}
		return jobs, nil
	}
	for _, f := range cfg.Files {
		job := driver.FileJob{HTMLPath: cfg.Resolve(f.HTML), SourceKey: f.Source}
		switch {
		case f.Out != "":
			job.OutPath = cfg.Resolve(f.Out)
		case outDir != "":
			job.OutPath = filepath.Join(outDir, filepath.Base(job.HTMLPath))
		}
		jobs = append(jobs, job)
	}
	if len(jobs) == 0 {
		return nil, errors.New("no documents: pass html arguments or add [[files]] to deoptlens.toml")
	}
	return jobs, nil
}
