// Package report renders annotate results for people (pretty) and for
// tools (JSON).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"deoptlens/internal/diag"
	"deoptlens/internal/driver"
	"deoptlens/internal/source"
)

// Format selects the output form.
type Format string

const (
	FormatPretty Format = "pretty"
	FormatJSON   Format = "json"
)

// ParseFormat accepts "pretty" and "json"; empty means pretty.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPretty:
		return FormatPretty, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return FormatPretty, fmt.Errorf("invalid format %q (expected pretty|json)", s)
}

// Options configures rendering.
type Options struct {
	Color bool
	// Width truncates diagnostic lines; 0 disables truncation.
	Width int
	// Quiet prints only diagnostics and the unresolved summary.
	Quiet bool
	// PathMode is passed to source.DisplayPath: auto, absolute, relative, basename.
	PathMode string
	BaseDir  string
	// Timings appends per-file phase timings.
	Timings bool
}

type palette struct {
	err, warn, info, ok, dim, bold *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:  color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow, color.Bold),
		info: color.New(color.FgCyan),
		ok:   color.New(color.FgGreen),
		dim:  color.New(color.Faint),
		bold: color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.ok, p.dim, p.bold} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty writes a per-file summary followed by the file's diagnostics:
//
//	gen/a.html -> out/a.html  [/src/a.js #0]  3 placed, 1 unresolved
//	  warning WEV3001 /src/a.js:7:1 ics entry i1 at 7:1 could not be placed
//
// and ends with the unresolved-marker summary when there is one.
func Pretty(w io.Writer, res *driver.Result, opts Options) error {
	p := newPalette(opts.Color)
	var b strings.Builder
	for i := range res.Files {
		f := &res.Files[i]
		if !opts.Quiet {
			writeFileHeader(&b, p, f, opts)
		}
		for _, d := range f.Bag.Items() {
			line := fmt.Sprintf("%s %s %s", d.Code.ID(), d.Primary, strings.ReplaceAll(d.Message, "\n", " "))
			if opts.Width > 0 {
				line = runewidth.Truncate(line, max(opts.Width-len(d.Severity.Label())-3, 10), "...")
			}
			fmt.Fprintf(&b, "  %s %s\n", p.severity(d.Severity).Sprint(d.Severity.Label()), line)
		}
		if n := f.Bag.Dropped(); n > 0 {
			fmt.Fprintf(&b, "  %s\n", p.dim.Sprintf("... %d more diagnostics", n))
		}
		if opts.Timings && !opts.Quiet && len(f.Timing.Phases) > 0 {
			for _, l := range strings.Split(strings.TrimRight(f.Timing.String(), "\n"), "\n") {
				b.WriteString("  " + p.dim.Sprint(l) + "\n")
			}
		}
	}
	if n := res.Unresolved(); n > 0 {
		b.WriteString(p.warn.Sprint(UnresolvedSummary(n)) + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeFileHeader(b *strings.Builder, p palette, f *driver.FileResult, opts Options) {
	b.WriteString(p.bold.Sprint(source.DisplayPath(f.Job.HTMLPath, opts.PathMode, opts.BaseDir)))
	if f.Job.OutPath != "" {
		b.WriteString(" -> " + source.DisplayPath(f.Job.OutPath, opts.PathMode, opts.BaseDir))
	}
	if f.SourceKey != "" {
		b.WriteString("  " + p.dim.Sprintf("[%s #%s]", f.SourceKey, f.FileID))
	}
	placed := p.ok.Sprintf("%d placed", f.Placed())
	if f.Unresolved() > 0 {
		fmt.Fprintf(b, "  %s, %s\n", placed, p.warn.Sprintf("%d unresolved", f.Unresolved()))
		return
	}
	fmt.Fprintf(b, "  %s\n", placed)
}

// UnresolvedSummary is the closing line printed whenever markers are missing.
func UnresolvedSummary(n int) string {
	if n == 1 {
		return "1 marker could not be placed"
	}
	return fmt.Sprintf("%d markers could not be placed", n)
}

// DiagnosticJSON is one diagnostic in JSON output.
type DiagnosticJSON struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	File     string `json:"file,omitempty"`
	Line     uint32 `json:"line,omitempty"`
	Column   uint32 `json:"column,omitempty"`
	Entry    string `json:"entry,omitempty"`
}

// FileJSON is one annotated file in JSON output.
type FileJSON struct {
	HTML        string           `json:"html"`
	Out         string           `json:"out,omitempty"`
	Source      string           `json:"source,omitempty"`
	FileID      string           `json:"file_id,omitempty"`
	Entries     int              `json:"entries"`
	Placed      int              `json:"placed"`
	Unresolved  []string         `json:"unresolved,omitempty"`
	Diagnostics []DiagnosticJSON `json:"diagnostics,omitempty"`
	Dropped     int              `json:"dropped_diagnostics,omitempty"`
	TotalMS     float64          `json:"total_ms,omitempty"`
}

// OutputJSON is the root JSON document.
type OutputJSON struct {
	Files      []FileJSON `json:"files"`
	Placed     int        `json:"placed"`
	Unresolved int        `json:"unresolved"`
	ElapsedMS  float64    `json:"elapsed_ms"`
}

// Build converts a result to its JSON form.
func Build(res *driver.Result, opts Options) OutputJSON {
	out := OutputJSON{
		Files:      make([]FileJSON, 0, len(res.Files)),
		Placed:     res.Placed(),
		Unresolved: res.Unresolved(),
		ElapsedMS:  float64(res.Elapsed.Microseconds()) / 1000,
	}
	for i := range res.Files {
		f := &res.Files[i]
		fj := FileJSON{
			HTML:    source.DisplayPath(f.Job.HTMLPath, opts.PathMode, opts.BaseDir),
			Source:  f.SourceKey,
			FileID:  f.FileID,
			Entries: f.Entries,
			Placed:  f.Placed(),
			Dropped: f.Bag.Dropped(),
			TotalMS: f.Timing.TotalMS,
		}
		if f.Job.OutPath != "" {
			fj.Out = source.DisplayPath(f.Job.OutPath, opts.PathMode, opts.BaseDir)
		}
		if f.Weave != nil {
			for _, e := range f.Weave.Unresolved {
				fj.Unresolved = append(fj.Unresolved, e.ID)
			}
		}
		for _, d := range f.Bag.Items() {
			fj.Diagnostics = append(fj.Diagnostics, DiagnosticJSON{
				Severity: d.Severity.Label(),
				Code:     d.Code.ID(),
				Title:    d.Code.Title(),
				Message:  d.Message,
				File:     d.Primary.File,
				Line:     d.Primary.Line,
				Column:   d.Primary.Col,
				Entry:    d.EntryID,
			})
		}
		out.Files = append(out.Files, fj)
	}
	return out
}

// JSON writes Build(res) as indented JSON.
func JSON(w io.Writer, res *driver.Result, opts Options) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(Build(res, opts))
}

// Write dispatches on format.
func Write(w io.Writer, format Format, res *driver.Result, opts Options) error {
	if format == FormatJSON {
		return JSON(w, res, opts)
	}
	return Pretty(w, res, opts)
}
