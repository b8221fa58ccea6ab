package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"fortio.org/safecast"
	"golang.org/x/sync/errgroup"

	"deoptlens/internal/diag"
	"deoptlens/internal/doctree"
	"deoptlens/internal/entry"
	"deoptlens/internal/observ"
	"deoptlens/internal/source"
	"deoptlens/internal/trace"
	"deoptlens/internal/weave"
)

// FileJob is one highlighted document to annotate.
type FileJob struct {
	// HTMLPath is the highlighted fragment to read.
	HTMLPath string
	// SourceKey selects the entries for this document. When empty and the
	// entries document holds a single file, that file is used.
	SourceKey string
	// OutPath receives the woven document. Empty keeps it in FileResult.Output.
	OutPath string
}

// WeaveOptions are the weave settings shared by every file of a run.
type WeaveOptions struct {
	Audit    bool
	Columns  source.ColumnUnit
	ActiveID string
}

// Request describes an annotate run.
type Request struct {
	Entries *entry.Document
	Files   []FileJob
	// Jobs bounds parallelism; <= 0 means GOMAXPROCS.
	Jobs  int
	Weave WeaveOptions
	// MaxDiagnostics caps each file's bag; <= 0 means unlimited.
	MaxDiagnostics int
	Sink           Sink
}

// FileResult is the outcome for one FileJob.
type FileResult struct {
	Job       FileJob
	SourceKey string
	FileID    string
	Entries   int
	Flags     source.FileFlags
	Weave     *weave.Result
	Bag       *diag.Bag
	// Output holds the rendered document when Job.OutPath is empty.
	Output string
	Timing observ.Report
}

// Placed returns the number of markers inserted.
func (r *FileResult) Placed() int {
	if r == nil || r.Weave == nil {
		return 0
	}
	return len(r.Weave.Placed)
}

// Unresolved returns the number of entries that got no marker.
func (r *FileResult) Unresolved() int {
	if r == nil || r.Weave == nil {
		return 0
	}
	return len(r.Weave.Unresolved)
}

// Result is the outcome of Annotate, one FileResult per job in job order.
type Result struct {
	Files   []FileResult
	Elapsed time.Duration
}

// Placed sums FileResult.Placed.
func (r *Result) Placed() int {
	n := 0
	for i := range r.Files {
		n += r.Files[i].Placed()
	}
	return n
}

// Unresolved sums FileResult.Unresolved.
func (r *Result) Unresolved() int {
	n := 0
	for i := range r.Files {
		n += r.Files[i].Unresolved()
	}
	return n
}

// HasErrors reports whether any file collected an error diagnostic.
func (r *Result) HasErrors() bool {
	for i := range r.Files {
		if r.Files[i].Bag.HasErrors() {
			return true
		}
	}
	return false
}

// ErrNoFiles is returned by Annotate for a request without jobs.
var ErrNoFiles = errors.New("no files to annotate")

// Annotate weaves every job of req in parallel. Files share nothing: each
// goroutine parses its own tree and fills its own result slot. I/O failures
// abort the run; a document that does not parse is skipped with an error
// diagnostic, and weave problems only land in the file's bag.
func Annotate(ctx context.Context, req *Request) (*Result, error) {
	if req == nil || len(req.Files) == 0 {
		return nil, ErrNoFiles
	}
	if err := CheckJobs(req.Files); err != nil {
		return nil, err
	}
	if req.Entries == nil {
		req.Entries = &entry.Document{}
	}
	sink := req.Sink
	if sink == nil {
		sink = NopSink{}
	}
	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "annotate", 0).
		WithExtra("files", fmt.Sprint(len(req.Files)))
	started := time.Now()

	for _, job := range req.Files {
		sink.OnEvent(Event{File: job.HTMLPath, Status: StatusQueued})
	}

	results := make([]FileResult, len(req.Files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(req.Files)))

	for i := range req.Files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			res, err := annotateFile(gctx, req, req.Files[i], sink, span.ID())
			if err != nil {
				sink.OnEvent(Event{File: req.Files[i].HTMLPath, Status: StatusError, Err: err})
				return err
			}
			results[i] = *res
			sink.OnEvent(Event{File: req.Files[i].HTMLPath, Stage: StageRender, Status: StatusDone, Elapsed: time.Since(started)})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.End(err.Error())
		return nil, err
	}
	out := &Result{Files: results, Elapsed: time.Since(started)}
	span.WithExtra("placed", fmt.Sprint(out.Placed())).
		WithExtra("unresolved", fmt.Sprint(out.Unresolved())).
		End("")
	return out, nil
}

func annotateFile(ctx context.Context, req *Request, job FileJob, sink Sink, parent uint64) (*FileResult, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFile, "file:"+job.HTMLPath, parent)
	defer span.End("")

	timer := observ.NewTimer()
	bag := diag.NewBag(req.MaxDiagnostics)
	res := &FileResult{Job: job, Bag: bag}
	stage := func(s Stage) { sink.OnEvent(Event{File: job.HTMLPath, Stage: s, Status: StatusWorking}) }

	stage(StageLoad)
	done := timer.Track("load")
	text, flags, err := source.ReadText(job.HTMLPath)
	if err != nil {
		return nil, err
	}
	res.Flags = flags
	done(byteSize(len(text)))

	stage(StageParse)
	done = timer.Track("parse")
	root, err := doctree.ParseHTML(strings.NewReader(text))
	if err != nil {
		bag.Add(diag.Diagnostic{
			Severity: diag.SevError,
			Code:     diag.InputParseFailed,
			Primary:  source.Pos{File: job.HTMLPath},
			Message:  err.Error(),
		})
		done("failed")
		res.Timing = timer.Report()
		return res, nil
	}
	done("")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stage(StageWeave)
	done = timer.Track("weave")
	key := resolveKey(req.Entries, job.SourceKey)
	res.SourceKey = key
	set, fileID, ok := req.Entries.ForFile(key)
	if !ok {
		bag.Add(diag.Diagnostic{
			Severity: diag.SevWarning,
			Code:     diag.InputFileMissing,
			Primary:  source.Pos{File: job.HTMLPath},
			Message:  missingMessage(job),
		})
	}
	res.FileID = fileID
	res.Entries = set.Len()
	file := key
	if file == "" {
		file = job.HTMLPath
	}
	res.Weave = weave.WeaveSet(root, set, weave.Options{
		FileID:     fileID,
		File:       file,
		ActiveID:   req.Weave.ActiveID,
		Audit:      req.Weave.Audit,
		Columns:    req.Weave.Columns,
		Reporter:   diag.BagReporter{Bag: bag},
		Tracer:     tracer,
		ParentSpan: span.ID(),
	})
	done(fmt.Sprintf("%d placed, %d unresolved", res.Placed(), res.Unresolved()))

	stage(StageRender)
	done = timer.Track("render")
	var buf bytes.Buffer
	if err := doctree.Render(&buf, root); err != nil {
		return nil, fmt.Errorf("%s: %w", job.HTMLPath, err)
	}
	if job.OutPath == "" {
		res.Output = buf.String()
	} else if err := writeFile(job.OutPath, buf.Bytes()); err != nil {
		return nil, err
	}
	done(byteSize(buf.Len()))

	bag.Sort()
	bag.Dedup()
	res.Timing = timer.Report()
	span.WithExtra("placed", fmt.Sprint(res.Placed()))
	return res, nil
}

// resolveKey falls back to the only file of a single-file document.
func resolveKey(doc *entry.Document, key string) string {
	if key != "" || len(doc.Files) != 1 {
		return key
	}
	return doc.Keys()[0]
}

func missingMessage(job FileJob) string {
	if job.SourceKey == "" {
		return "no source key given and the entries document does not hold exactly one file; document left unannotated"
	}
	return fmt.Sprintf("no entries for %q; document left unannotated", job.SourceKey)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func byteSize(n int) string {
	u, err := safecast.Conv[uint64](n)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%d bytes", u)
}
