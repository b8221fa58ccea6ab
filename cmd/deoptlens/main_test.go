package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"deoptlens/internal/config"
	"deoptlens/internal/driver"
	"deoptlens/internal/ic"
	"deoptlens/internal/trace"
)

func TestClassifyArg(t *testing.T) {
	tests := []struct {
		arg     string
		want    []string
		wantErr bool
	}{
		{arg: "^", want: []string{"recompute_handler", "severity 1", "sev1"}},
		{arg: "P", want: []string{"polymorphic", "severity 2", "sev2"}},
		{arg: "X", want: []string{"unknown", "sev-unknown"}},
		{arg: "1>N", want: []string{"monomorphic -> megamorphic", "severity 3", "sev3"}},
		{arg: "Z", wantErr: true},
		{arg: "1>Z", wantErr: true},
		{arg: "PP", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := classifyArg(tt.arg)
			if tt.wantErr {
				if !errors.Is(err, ic.ErrUnknownCode) {
					t.Fatalf("err = %v, want ErrUnknownCode", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("%q missing %q", got, w)
				}
			}
		})
	}
}

func TestCollectJobs(t *testing.T) {
	cfg := &config.Config{
		Root: "/proj",
		Files: []config.File{
			{HTML: "gen/a.html", Source: "/src/a.js", Out: "woven/a.html"},
			{HTML: "gen/b.html", Source: "/src/b.js"},
		},
	}

	jobs, err := collectJobs(nil, cfg, "/out")
	if err != nil {
		t.Fatal(err)
	}
	want := []driver.FileJob{
		{HTMLPath: filepath.Join("/proj", "gen", "a.html"), SourceKey: "/src/a.js", OutPath: filepath.Join("/proj", "woven", "a.html")},
		{HTMLPath: filepath.Join("/proj", "gen", "b.html"), SourceKey: "/src/b.js", OutPath: filepath.Join("/out", "b.html")},
	}
	if len(jobs) != len(want) {
		t.Fatalf("jobs = %+v", jobs)
	}
	for i := range want {
		if jobs[i] != want[i] {
			t.Errorf("job %d = %+v, want %+v", i, jobs[i], want[i])
		}
	}

	jobs, err = collectJobs([]string{"x.html=/src/x.js"}, cfg, "")
	if err != nil || len(jobs) != 1 || jobs[0].SourceKey != "/src/x.js" || jobs[0].OutPath != "" {
		t.Fatalf("args: jobs=%+v err=%v", jobs, err)
	}

	if _, err := collectJobs(nil, &config.Config{}, ""); err == nil {
		t.Fatal("no documents accepted")
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "ON": uiModeOn, " off ": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Errorf("readUIMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := readUIMode("maybe"); err == nil {
		t.Error("maybe accepted")
	}
}

func TestTraceRingDumpedOnFailure(t *testing.T) {
	t.Cleanup(func() { traceRing = nil })
	cmd := &cobra.Command{Use: "deoptlens"}
	cmd.PersistentFlags().String("trace", "", "")
	cmd.PersistentFlags().String("trace-level", "off", "")
	cmd.PersistentFlags().String("trace-format", "auto", "")
	cmd.PersistentFlags().Int("trace-ring-size", 0, "")
	if err := cmd.PersistentFlags().Set("trace-ring-size", "4"); err != nil {
		t.Fatal(err)
	}

	cleanup, err := setupTracing(cmd)
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()
	if traceRing == nil {
		t.Fatal("ring not kept")
	}
	trace.Point(trace.FromContext(cmd.Context()), trace.ScopeFile, "load", "a.html", 0, nil)

	var buf bytes.Buffer
	dumpTraceRing(&buf)
	if !strings.Contains(buf.String(), "last events") || !strings.Contains(buf.String(), "load (a.html)") {
		t.Errorf("dump = %q", buf.String())
	}
}
