package source

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadText loads a text file, decoding UTF-16 input when a BOM says so and
// dropping a UTF-8 BOM. Line endings are left untouched: column math must see
// the same characters the highlighter saw.
func ReadText(path string) (string, FileFlags, error) {
	// #nosec G304 -- path is provided by the caller
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", 0, err
	}
	return DecodeText(raw)
}

// DecodeText is ReadText for bytes already in memory.
func DecodeText(raw []byte) (string, FileFlags, error) {
	var flags FileFlags
	if bytes.HasPrefix(raw, utf8BOM) {
		flags |= FileHadBOM
	}
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(raw), dec))
	if err != nil {
		return "", flags, fmt.Errorf("decode text: %w", err)
	}
	if bytes.Contains(out, []byte("\r\n")) {
		flags |= FileHadCRLF
	}
	return string(out), flags, nil
}

// NormalizePath gives paths a single form for map keys and cross-platform output.
func NormalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// DisplayPath formats a path for reports.
// mode: "absolute", "relative", "basename", "auto".
func DisplayPath(path, mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := filepath.Abs(path); err == nil {
			return NormalizePath(abs)
		}
		return path
	case "relative":
		if baseDir == "" {
			if wd, err := os.Getwd(); err == nil {
				baseDir = wd
			}
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return path
		}
		rel, err := filepath.Rel(baseDir, abs)
		if err != nil || rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator) {
			return NormalizePath(abs)
		}
		return NormalizePath(rel)
	case "basename":
		return filepath.Base(path)
	case "auto":
		if len(path) < 40 || !filepath.IsAbs(path) {
			return path
		}
		return filepath.Base(path)
	}
	return path
}
