package extract

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestTextReadsPlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte("A. B. C."), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	text, err := Text(path)
	if err != nil {
		t.Fatalf("Text error: %v", err)
	}
	if text != "A. B. C." {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestTextReadsMarkdownFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.md")
	if err := os.WriteFile(path, []byte("# heading\nbody"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	text, err := Text(path)
	if err != nil {
		t.Fatalf("Text error: %v", err)
	}
	if text != "# heading\nbody" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestTextRejectsUnknownExtension(t *testing.T) {
	_, err := Text("slides.pptx")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestSupportedExtensions(t *testing.T) {
	cases := map[string]bool{
		"a.txt":      true,
		"a.md":       true,
		"a.docx":     true,
		"a.DOC":      true,
		"report.pdf": true,
		"a.pptx":     false,
		"noext":      false,
	}
	for path, want := range cases {
		if got := Supported(path); got != want {
			t.Fatalf("Supported(%q) = %v, want %v", path, got, want)
		}
	}
}
