package driver

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ParseJob parses a CLI file argument of the form "html[=sourceKey]".
// With a non-empty outDir the output goes to outDir/<basename of html>.
func ParseJob(arg, outDir string) (FileJob, error) {
	htmlPath, key, _ := strings.Cut(arg, "=")
	htmlPath = strings.TrimSpace(htmlPath)
	if htmlPath == "" {
		return FileJob{}, fmt.Errorf("invalid file argument %q: missing html path", arg)
	}
	job := FileJob{HTMLPath: htmlPath, SourceKey: strings.TrimSpace(key)}
	if outDir != "" {
		job.OutPath = filepath.Join(outDir, filepath.Base(htmlPath))
	}
	return job, nil
}

// CheckJobs rejects jobs that would write the same output file twice or
// overwrite an input document.
func CheckJobs(jobs []FileJob) error {
	inputs := make(map[string]string, len(jobs))
	for _, j := range jobs {
		inputs[samePath(j.HTMLPath)] = j.HTMLPath
	}
	outs := make(map[string]string, len(jobs))
	for _, j := range jobs {
		if j.OutPath == "" {
			continue
		}
		key := samePath(j.OutPath)
		if in, ok := inputs[key]; ok {
			return fmt.Errorf("output %s would overwrite input %s", j.OutPath, in)
		}
		if prev, ok := outs[key]; ok {
			return fmt.Errorf("%s and %s both write %s", prev, j.HTMLPath, j.OutPath)
		}
		outs[key] = j.HTMLPath
	}
	return nil
}

func samePath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
