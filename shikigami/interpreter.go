package shikigami

import (
	"context"
	"errors"
	"fmt"
)

// Config controls interpreter execution bounds.
type Config struct {
	// RecursionLimit caps the depth of nested function calls.
	RecursionLimit int
	// StepQuota caps the number of nodes evaluated by one run.
	StepQuota int
	// NestingLimit caps how deeply expressions may nest in source text.
	NestingLimit int
}

const (
	defaultRecursionLimit = 256
	defaultStepQuota      = 1_000_000
	defaultNestingLimit   = 10_000
)

// Engine lexes, parses and evaluates programs under a fixed Config. An Engine
// holds no program state, so one Engine may serve concurrent callers.
type Engine struct {
	config Config
}

// NewEngine constructs an Engine, filling zero limits with defaults.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.RecursionLimit < 0 {
		return nil, fmt.Errorf("recursion limit must not be negative, got %d", cfg.RecursionLimit)
	}
	if cfg.StepQuota < 0 {
		return nil, fmt.Errorf("step quota must not be negative, got %d", cfg.StepQuota)
	}
	if cfg.NestingLimit < 0 {
		return nil, fmt.Errorf("nesting limit must not be negative, got %d", cfg.NestingLimit)
	}
	if cfg.RecursionLimit == 0 {
		cfg.RecursionLimit = defaultRecursionLimit
	}
	if cfg.StepQuota == 0 {
		cfg.StepQuota = defaultStepQuota
	}
	if cfg.NestingLimit == 0 {
		cfg.NestingLimit = defaultNestingLimit
	}
	return &Engine{config: cfg}, nil
}

// MustNewEngine constructs an Engine or panics if the config is invalid.
func MustNewEngine(cfg Config) *Engine {
	engine, err := NewEngine(cfg)
	if err != nil {
		panic(err)
	}
	return engine
}

// Config returns the effective limits.
func (e *Engine) Config() Config {
	return e.config
}

// ConfigSummary provides a human-readable description of the interpreter limits.
func (e *Engine) ConfigSummary() string {
	return fmt.Sprintf("recursion=%d steps=%d nesting=%d", e.config.RecursionLimit, e.config.StepQuota, e.config.NestingLimit)
}

// Compile tokenizes and parses source without evaluating it.
func (e *Engine) Compile(source string) (*Program, error) {
	return compile(source, nil, e.config.NestingLimit)
}

func compile(source string, known map[string]int, maxDepth int) (*Program, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		var te *Error
		if errors.As(err, &te) {
			te.CodeFrame = formatCodeFrame(source, te.Pos)
		}
		return nil, err
	}
	return newParser(tokens, source, known, maxDepth).parseProgram()
}

// Eval evaluates every statement of program in order against env and returns
// the value of the last one. Evaluating the same Program against equal
// environments yields equal results.
func (e *Engine) Eval(ctx context.Context, program *Program, env *Env) (Value, error) {
	exec := e.newExecution(ctx, program)
	result := NewNil()
	for _, stmt := range program.Statements {
		val, err := exec.eval(stmt, env)
		if err != nil {
			return NewNil(), err
		}
		result = val
	}
	return result, nil
}

// Run compiles source and evaluates it in a fresh environment.
func (e *Engine) Run(ctx context.Context, source string) (Value, error) {
	program, err := e.Compile(source)
	if err != nil {
		return NewNil(), err
	}
	return e.Eval(ctx, program, NewEnv())
}

// Execute runs source in a fresh environment and returns the display text of
// the last statement. Failures are returned as text starting with
// ErrorPrefix; Execute never panics on user input.
func (e *Engine) Execute(source string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = fmt.Sprintf("%sinternal error: %v", ErrorPrefix, r)
		}
	}()
	val, err := e.Run(context.Background(), source)
	if err != nil {
		return ErrorText(err)
	}
	return val.String()
}

// Execute runs source on an engine with default limits.
func Execute(source string) string {
	return defaultEngine.Execute(source)
}

var defaultEngine = MustNewEngine(Config{})

// Session evaluates successive inputs against one persistent environment,
// so variables and functions defined by one input are visible to the next.
type Session struct {
	engine *Engine
	env    *Env
}

func (e *Engine) NewSession() *Session {
	return &Session{engine: e, env: NewEnv()}
}

// Eval compiles source with the session's functions known to the parser and
// evaluates it in the session environment. A failed input leaves bindings
// made by its earlier statements in place.
func (s *Session) Eval(ctx context.Context, source string) (Value, error) {
	program, err := s.Compile(source)
	if err != nil {
		return NewNil(), err
	}
	return s.engine.Eval(ctx, program, s.env)
}

// Compile parses source the way Eval would, treating the session's functions
// as already defined.
func (s *Session) Compile(source string) (*Program, error) {
	return compile(source, s.env.arities(), s.engine.config.NestingLimit)
}

// Declare registers every function defined in program without evaluating
// anything, so later inputs parse bare calls to them as Eval would.
func (s *Session) Declare(program *Program) {
	for _, stmt := range program.Statements {
		Walk(stmt, func(node Node) bool {
			if def, ok := node.(*FunctionDef); ok {
				s.env.Define(&Function{Name: def.Name, Params: def.Params, Body: def.Body, Pos: def.Pos()})
			}
			return true
		})
	}
}

func (s *Session) Env() *Env {
	return s.env
}

// Reset discards every binding and definition.
func (s *Session) Reset() {
	s.env = NewEnv()
}
