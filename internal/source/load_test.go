package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadText_StripsBOMKeepsCRLF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.html")
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a\r\nb")...)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	text, flags, err := ReadText(path)
	if err != nil {
		t.Fatal(err)
	}
	if text != "a\r\nb" {
		t.Errorf("text = %q", text)
	}
	if flags&FileHadBOM == 0 {
		t.Error("FileHadBOM not set")
	}
	if flags&FileHadCRLF == 0 {
		t.Error("FileHadCRLF not set")
	}
}

func TestDecodeText_Plain(t *testing.T) {
	text, flags, err := DecodeText([]byte("let x = 1;\n"))
	if err != nil {
		t.Fatal(err)
	}
	if text != "let x = 1;\n" || flags != 0 {
		t.Errorf("got %q flags=%d", text, flags)
	}
}

func TestDisplayPath(t *testing.T) {
	if got := DisplayPath("/a/b/c.js", "basename", ""); got != "c.js" {
		t.Errorf("basename = %q", got)
	}
	if got := DisplayPath("src/c.js", "auto", ""); got != "src/c.js" {
		t.Errorf("auto = %q", got)
	}
	base := t.TempDir()
	if got := DisplayPath(filepath.Join(base, "x", "y.js"), "relative", base); got != "x/y.js" {
		t.Errorf("relative = %q", got)
	}
}
