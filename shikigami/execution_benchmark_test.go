package shikigami

import (
	"context"
	"strings"
	"testing"
)

func BenchmarkEvalNestedArithmetic(b *testing.B) {
	engine := MustNewEngine(Config{})
	program, err := engine.Compile(strings.Repeat("+ 1/3 ", 200) + "0")
	if err != nil {
		b.Fatalf("compile failed: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Eval(context.Background(), program, NewEnv()); err != nil {
			b.Fatalf("eval failed: %v", err)
		}
	}
}

func BenchmarkEvalFunctionCalls(b *testing.B) {
	engine := MustNewEngine(Config{})
	program, err := engine.Compile("= SQ (X) * X X\n= SUMSQ (A, B) + SQ(A) SQ(B)\n" +
		strings.Repeat("= N SUMSQ 3/4 1/2\n", 50))
	if err != nil {
		b.Fatalf("compile failed: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Eval(context.Background(), program, NewEnv()); err != nil {
			b.Fatalf("eval failed: %v", err)
		}
	}
}

func BenchmarkTokenize(b *testing.B) {
	source := strings.Repeat("= TOTAL + TOTAL * 3/4 'x' # note\n", 100)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Tokenize(source); err != nil {
			b.Fatalf("tokenize failed: %v", err)
		}
	}
}
