package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dotkeypad/shikigami/shikigami"
)

func TestRunCLIHelp(t *testing.T) {
	if err := runCLI([]string{"shiki", "help"}); err != nil {
		t.Fatalf("runCLI help failed: %v", err)
	}
}

func TestRunCLIInvalidCommand(t *testing.T) {
	err := runCLI([]string{"shiki", "unknown"})
	if err == nil {
		t.Fatalf("expected invalid command error")
	}
	if !strings.Contains(err.Error(), "invalid command") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunCLIWithoutCommand(t *testing.T) {
	err := runCLI([]string{"shiki"})
	if err == nil {
		t.Fatalf("expected invalid command error")
	}
	if !strings.Contains(err.Error(), "invalid command") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunCommandCheckOnly(t *testing.T) {
	scriptPath := writeScript(t, "/ 1 0")

	// Division by zero only happens at run time.
	if err := runCommand([]string{"-check", scriptPath}); err != nil {
		t.Fatalf("runCommand check failed: %v", err)
	}
}

func TestRunCommandCheckReportsParseErrors(t *testing.T) {
	scriptPath := writeScript(t, "+ 1")
	err := runCommand([]string{"-check", scriptPath})
	if !errors.Is(err, shikigami.ErrUnexpectedEndOfInput) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if !strings.Contains(err.Error(), "compile failed") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunCommandPrintsResult(t *testing.T) {
	scriptPath := writeScript(t, "= DOUBLE (X) * X 2\n= A 3/4\nDOUBLE A")

	out, err := captureStdout(t, func() error {
		return runCommand([]string{scriptPath})
	})
	if err != nil {
		t.Fatalf("runCommand failed: %v", err)
	}
	if got := strings.TrimSpace(out); got != "6/4" {
		t.Fatalf("unexpected stdout: %q", got)
	}
}

func TestRunCommandFailsOnRuntimeError(t *testing.T) {
	scriptPath := writeScript(t, "= A 1\n/ A 0")

	out, err := captureStdout(t, func() error {
		return runCommand([]string{scriptPath})
	})
	if !errors.Is(err, shikigami.ErrDivisionByZero) {
		t.Fatalf("expected division error, got %v", err)
	}
	if !strings.Contains(err.Error(), "execution failed") || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "" {
		t.Fatalf("nothing should be printed on failure, got %q", out)
	}
}

func TestRunCommandPreludeFunctionsAreKnown(t *testing.T) {
	prelude := writeScript(t, "= HALF (X) / X 2\n= RATE 3")
	scriptPath := writeScript(t, "HALF RATE")

	out, err := captureStdout(t, func() error {
		return runCommand([]string{"-prelude", prelude, scriptPath})
	})
	if err != nil {
		t.Fatalf("runCommand failed: %v", err)
	}
	if got := strings.TrimSpace(out); got != "3/2" {
		t.Fatalf("unexpected stdout: %q", got)
	}
}

func TestRunCommandCheckParsesWithPreludeFunctions(t *testing.T) {
	prelude := writeScript(t, "= ADD (X, Y) + X Y")

	short := writeScript(t, "ADD 1")
	for _, args := range [][]string{
		{"-check", "-prelude", prelude, short},
		{"-prelude", prelude, short},
	} {
		if err := runCommand(args); !errors.Is(err, shikigami.ErrUnexpectedEndOfInput) {
			t.Fatalf("runCommand(%v): expected end of input error, got %v", args, err)
		}
	}

	full := writeScript(t, "ADD 1 2")
	if err := runCommand([]string{"-check", "-prelude", prelude, full}); err != nil {
		t.Fatalf("check with prelude failed: %v", err)
	}
}

func TestRunCommandHonorsRecursionLimitFlag(t *testing.T) {
	scriptPath := writeScript(t, "= F1 (X) X\n= F2 (X) F1(X)\n= F3 (X) F2(X)\nF3(1)")

	if err := runCommand([]string{"-recursion-limit", "2", scriptPath}); !errors.Is(err, shikigami.ErrRecursionLimitExceeded) {
		t.Fatalf("expected recursion limit error, got %v", err)
	}
	if _, err := captureStdout(t, func() error {
		return runCommand([]string{"-recursion-limit", "3", scriptPath})
	}); err != nil {
		t.Fatalf("limit 3 should be enough: %v", err)
	}
}

func TestRunCommandRejectsNegativeLimits(t *testing.T) {
	scriptPath := writeScript(t, "1")
	err := runCommand([]string{"-step-quota", "-1", scriptPath})
	if err == nil || !strings.Contains(err.Error(), "invalid engine config") {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestRunCommandRequiresScriptPath(t *testing.T) {
	err := runCommand(nil)
	if err == nil {
		t.Fatalf("expected script path error")
	}
	if !strings.Contains(err.Error(), "script path required") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResolvePreludesDedupesAndSkipsScript(t *testing.T) {
	scriptPath := writeScript(t, "1")
	extra := writeScript(t, "= A 1")

	files, err := resolvePreludes(scriptPath, []string{extra, scriptPath, extra})
	if err != nil {
		t.Fatalf("resolvePreludes failed: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 prelude, got %d (%v)", len(files), files)
	}
	want, _ := filepath.Abs(extra)
	if files[0] != want {
		t.Fatalf("expected %q, got %q", want, files[0])
	}
}

func TestResolvePreludesRejectsDirectory(t *testing.T) {
	scriptPath := writeScript(t, "1")
	_, err := resolvePreludes(scriptPath, []string{t.TempDir()})
	if err == nil {
		t.Fatalf("expected directory prelude error")
	}
	if !strings.Contains(err.Error(), "is a directory") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func writeScript(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.shiki")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	runErr := fn()
	_ = w.Close()
	os.Stdout = orig

	var buf bytes.Buffer
	if _, copyErr := io.Copy(&buf, r); copyErr != nil {
		t.Fatalf("read stdout: %v", copyErr)
	}
	_ = r.Close()
	return buf.String(), runErr
}
