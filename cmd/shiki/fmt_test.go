package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	messySource     = "= DOUBLE (X)   * X 2  \r\n\r\nDOUBLE\t 5\t \n\n\n"
	formattedSource = "= DOUBLE (X) * X 2\n\nDOUBLE 5\n"
)

func TestFmtCommandRequiresPath(t *testing.T) {
	err := fmtCommand(nil)
	if err == nil {
		t.Fatalf("expected path required error")
	}
	if !strings.Contains(err.Error(), "path required") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFmtCommandCheckDetectsUnformattedFiles(t *testing.T) {
	path := writeSourceFile(t, messySource)
	out, err := captureStdout(t, func() error {
		return fmtCommand([]string{"-check", path})
	})
	if err == nil {
		t.Fatalf("expected formatting check failure")
	}
	if !strings.Contains(err.Error(), "need formatting") {
		t.Fatalf("unexpected check error: %v", err)
	}
	if !strings.Contains(out, "script.shiki") {
		t.Fatalf("check should list the file, got %q", out)
	}
}

func TestFmtCommandWriteFormatsFileInPlace(t *testing.T) {
	path := writeSourceFile(t, messySource)
	if err := fmtCommand([]string{"-w", path}); err != nil {
		t.Fatalf("fmt -w failed: %v", err)
	}

	updated, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read formatted file: %v", err)
	}
	if got := string(updated); got != formattedSource {
		t.Fatalf("unexpected formatted output: %q", got)
	}
}

func TestFmtCommandPrintsFormattedOutput(t *testing.T) {
	path := writeSourceFile(t, messySource)
	out, err := captureStdout(t, func() error {
		return fmtCommand([]string{path})
	})
	if err != nil {
		t.Fatalf("fmt command failed: %v", err)
	}
	if out != formattedSource {
		t.Fatalf("unexpected stdout output: %q", out)
	}
}

func TestFmtCommandFormatsDirectories(t *testing.T) {
	root := t.TempDir()
	first := filepath.Join(root, "a.shiki")
	second := filepath.Join(root, "nested", "b.shiki")
	ignored := filepath.Join(root, "notes.txt")
	if err := os.MkdirAll(filepath.Dir(second), 0o755); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}
	for path, content := range map[string]string{
		first:   "+  1   2  ",
		second:  "-\t3 4\t",
		ignored: "keep   me  ",
	} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}

	if err := fmtCommand([]string{"-w", root}); err != nil {
		t.Fatalf("fmt directory failed: %v", err)
	}
	if err := fmtCommand([]string{"-check", root}); err != nil {
		t.Fatalf("expected no formatting diffs after write, got %v", err)
	}
	untouched, err := os.ReadFile(ignored)
	if err != nil {
		t.Fatalf("read ignored file: %v", err)
	}
	if string(untouched) != "keep   me  " {
		t.Fatalf("non-source file was rewritten: %q", untouched)
	}
}

func TestFormatSourceKeepsStringsAndComments(t *testing.T) {
	tests := map[string]string{
		"+ 'a   b'    ' c'":         "+ 'a   b' ' c'\n",
		`+ "it\"s   x"  1`:          "+ \"it\\\"s   x\" 1\n",
		"+ 1  2   #  keep   this  ": "+ 1 2 #  keep   this\n",
		"    + 1   2":               "    + 1 2\n",
		"":                          "",
		"\n\n":                      "",
	}
	for in, want := range tests {
		if got := formatSource(in); got != want {
			t.Errorf("formatSource(%q) = %q, want %q", in, got, want)
		}
	}
}

func writeSourceFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.shiki")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write source file: %v", err)
	}
	return path
}
