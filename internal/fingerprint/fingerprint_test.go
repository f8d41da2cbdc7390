package fingerprint

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileKnownDigest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.chart")
	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	got, err := File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	const want = "5EB63BBBE01EEED093CB22BB8F5ACDC3"
	if got != want {
		t.Fatalf("File = %q, want %q", got, want)
	}
}

func TestFileMissing(t *testing.T) {
	if _, err := File(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValid(t *testing.T) {
	cases := map[string]bool{
		"5EB63BBBE01EEED093CB22BB8F5ACDC3": true,
		"5eb63bbbe01eeed093cb22bb8f5acdc3": false, // lowercase
		"5EB63BBBE01EEED093CB22BB8F5ACDC":  false, // short
		"ZEB63BBBE01EEED093CB22BB8F5ACDC3": false, // non-hex
		"":                                 false,
	}
	for input, want := range cases {
		if got := Valid(input); got != want {
			t.Errorf("Valid(%q) = %v, want %v", input, got, want)
		}
	}
}
