package shikigami

import (
	"errors"
	"strings"
	"testing"
)

func parseSource(t *testing.T, source string) *Program {
	t.Helper()
	program, err := MustNewEngine(Config{}).Compile(source)
	if err != nil {
		t.Fatalf("compile %q: %v", source, err)
	}
	return program
}

func TestParseBinaryIsPositional(t *testing.T) {
	program := parseSource(t, "+ * 2 3 - 4 1")
	if len(program.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(program.Statements))
	}
	add, ok := program.Statements[0].(*BinaryExpr)
	if !ok || add.Op != "+" {
		t.Fatalf("expected + at the root, got %#v", program.Statements[0])
	}
	if mul, ok := add.Left.(*BinaryExpr); !ok || mul.Op != "*" {
		t.Fatalf("left operand should be *, got %#v", add.Left)
	}
	if sub, ok := add.Right.(*BinaryExpr); !ok || sub.Op != "-" {
		t.Fatalf("right operand should be -, got %#v", add.Right)
	}
	if add.Next() != 7 {
		t.Fatalf("Next() = %d, want 7", add.Next())
	}
}

func TestParseStatementsWithAndWithoutSemicolons(t *testing.T) {
	for _, source := range []string{"= A 5; + A 3", "= A 5 + A 3", "= A 5;; + A 3;"} {
		program := parseSource(t, source)
		if len(program.Statements) != 2 {
			t.Fatalf("%q: expected 2 statements, got %d", source, len(program.Statements))
		}
		if _, ok := program.Statements[0].(*Assignment); !ok {
			t.Fatalf("%q: first statement should be an assignment", source)
		}
	}
}

func TestParseFunctionDefinition(t *testing.T) {
	program := parseSource(t, "= ADD (X, Y) + X Y")
	def, ok := program.Statements[0].(*FunctionDef)
	if !ok {
		t.Fatalf("expected function definition, got %#v", program.Statements[0])
	}
	if def.Name != "ADD" || strings.Join(def.Params, ",") != "X,Y" {
		t.Fatalf("unexpected definition %s(%v)", def.Name, def.Params)
	}
	if _, ok := def.Body.(*BinaryExpr); !ok {
		t.Fatalf("body should be a binary expression, got %#v", def.Body)
	}
}

func TestParseZeroArityDefinitionAndCall(t *testing.T) {
	program := parseSource(t, "= SEVEN () 7; SEVEN()")
	if _, ok := program.Statements[0].(*FunctionDef); !ok {
		t.Fatalf("expected definition, got %#v", program.Statements[0])
	}
	call, ok := program.Statements[1].(*FunctionCall)
	if !ok || len(call.Args) != 0 || call.Bare {
		t.Fatalf("expected parenthesized zero-argument call, got %#v", program.Statements[1])
	}
}

func TestParseParenthesizedCall(t *testing.T) {
	program := parseSource(t, "F(1, + 2 3, 'x')")
	call, ok := program.Statements[0].(*FunctionCall)
	if !ok {
		t.Fatalf("expected call, got %#v", program.Statements[0])
	}
	if len(call.Args) != 3 || call.Bare {
		t.Fatalf("expected 3 parenthesized args, got %d (bare=%t)", len(call.Args), call.Bare)
	}
}

func TestParseBareCallNeedsEarlierDefinition(t *testing.T) {
	program := parseSource(t, "= DOUBLE (X) * X 2; DOUBLE 5")
	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program.Statements))
	}
	call, ok := program.Statements[1].(*FunctionCall)
	if !ok || !call.Bare || len(call.Args) != 1 {
		t.Fatalf("expected bare call with 1 arg, got %#v", program.Statements[1])
	}

	// Without a prior definition the name is a variable and 5 is a separate
	// statement.
	program = parseSource(t, "DOUBLE 5")
	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program.Statements))
	}
	if _, ok := program.Statements[0].(*VarRef); !ok {
		t.Fatalf("expected variable reference, got %#v", program.Statements[0])
	}
}

func TestParseBareCallIsNotVisibleInsideOwnBody(t *testing.T) {
	program := parseSource(t, "= F (X) F X")
	if len(program.Statements) != 2 {
		t.Fatalf("expected definition followed by a stray statement, got %d statements", len(program.Statements))
	}
	def := program.Statements[0].(*FunctionDef)
	if ref, ok := def.Body.(*VarRef); !ok || ref.Name != "F" {
		t.Fatalf("body should be a reference to F, got %#v", def.Body)
	}
}

func TestParseBareCallConsumesArity(t *testing.T) {
	program := parseSource(t, "= ADD (X, Y) + X Y; ADD 1 ADD 2 3")
	call := program.Statements[1].(*FunctionCall)
	if len(call.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(call.Args))
	}
	inner, ok := call.Args[1].(*FunctionCall)
	if !ok || !inner.Bare || len(inner.Args) != 2 {
		t.Fatalf("second arg should be a nested bare call, got %#v", call.Args[1])
	}
}

func TestParseStringLiteral(t *testing.T) {
	program := parseSource(t, `"a \"quoted\" word"`)
	lit, ok := program.Statements[0].(*StringLit)
	if !ok || lit.Value != `a "quoted" word` {
		t.Fatalf("unexpected string literal %#v", program.Statements[0])
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		source string
		kind   ErrorKind
	}{
		{"+ 1", ErrUnexpectedEndOfInput},
		{"+", ErrUnexpectedEndOfInput},
		{"= DOUBLE (X) ", ErrUnexpectedEndOfInput},
		{")", ErrUnexpectedToken},
		{"+ 1 ,", ErrUnexpectedToken},
		{"abc", ErrUnexpectedToken},
		{"+1 2", ErrUnexpectedToken},
		{"F(1, 2", ErrExpectedCloseParen},
		{"F(1 2)", ErrExpectedCloseParen},
		{"= F (X, Y", ErrExpectedCloseParen},
		{"= F (X Y) 1", ErrExpectedCloseParen},
		{"= F (x) 1", ErrInvalidParameterName},
		{"= F (X, 2) 1", ErrInvalidParameterName},
		{"= A", ErrInvalidAssignmentExpression},
		{"=", ErrInvalidAssignmentExpression},
		{"= 5 5", ErrInvalidAssignmentExpression},
		{"+ 'open 1", ErrUnterminatedString},
	}
	for _, tt := range tests {
		_, err := MustNewEngine(Config{}).Compile(tt.source)
		if err == nil {
			t.Errorf("Compile(%q): expected %s", tt.source, tt.kind)
			continue
		}
		if !errors.Is(err, tt.kind) {
			t.Errorf("Compile(%q): got %v, want %s", tt.source, err, tt.kind)
		}
	}
}

func TestParseErrorIncludesCodeFrame(t *testing.T) {
	_, err := MustNewEngine(Config{}).Compile("= A 5\n+ A )")
	if err == nil {
		t.Fatalf("expected parse error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "parse error at 2:5") {
		t.Fatalf("missing position: %s", msg)
	}
	if !strings.Contains(msg, " 2 | + A )") || !strings.Contains(msg, "^") {
		t.Fatalf("missing code frame: %s", msg)
	}
}

func TestParseWithoutSource(t *testing.T) {
	tokens, err := Tokenize("- 10 4")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	program, err := Parse(tokens)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(program.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(program.Statements))
	}
}

func TestWalkVisitsEveryNode(t *testing.T) {
	program := parseSource(t, "= F (X) + X G(1, 2)")
	count := 0
	Walk(program.Statements[0], func(Node) bool {
		count++
		return true
	})
	// def, +, X, call G, 1, 2
	if count != 6 {
		t.Fatalf("visited %d nodes, want 6", count)
	}
}
