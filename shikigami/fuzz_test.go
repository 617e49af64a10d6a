package shikigami

import (
	"context"
	"strings"
	"testing"
)

func FuzzCompileDoesNotPanic(f *testing.F) {
	f.Add("")
	f.Add("+ 1 2")
	f.Add("= F (X, Y) + X Y; F 1 2")
	f.Add("= F (X")
	f.Add("'open")
	f.Add("3/0")

	f.Fuzz(func(t *testing.T, source string) {
		engine := MustNewEngine(Config{})
		_, _ = engine.Compile(source)
	})
}

func FuzzExecuteAlwaysReturnsText(f *testing.F) {
	f.Add("+ 1/2 1/3")
	f.Add("/ 1 0")
	f.Add("= LOOP (X) LOOP(X); LOOP(1)")
	f.Add("+ 'a' > 2 1")

	engine := MustNewEngine(Config{StepQuota: 10_000, RecursionLimit: 32})
	f.Fuzz(func(t *testing.T, source string) {
		out := engine.Execute(source)
		if _, err := engine.Run(context.Background(), source); err != nil && !strings.HasPrefix(out, ErrorPrefix) {
			t.Fatalf("Execute(%q) = %q but Run failed: %v", source, out, err)
		}
	})
}
