package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dotkeypad/shikigami/shikigami"
)

const programScope = "<program>"

type lintWarning struct {
	Function string
	Pos      shikigami.Position
	Message  string
}

func analyzeCommand(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		return errors.New("shiki analyze: script path required")
	}

	scriptPath, err := filepath.Abs(remaining[0])
	if err != nil {
		return fmt.Errorf("resolve script path: %w", err)
	}
	input, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	engine := shikigami.MustNewEngine(shikigami.Config{})
	program, err := engine.Compile(string(input))
	if err != nil {
		return fmt.Errorf("analysis compile failed: %w", err)
	}

	warnings := analyzeProgramWarnings(program)
	if len(warnings) == 0 {
		fmt.Println("No issues found")
		return nil
	}

	for _, warning := range warnings {
		line := max(warning.Pos.Line, 1)
		column := max(warning.Pos.Column, 1)
		fmt.Printf("%s:%d:%d: %s (%s)\n", scriptPath, line, column, warning.Message, warning.Function)
	}

	return fmt.Errorf("analysis found %d issue(s)", len(warnings))
}

// analyzeProgramWarnings reports statements whose values are thrown away,
// calls that run before the called function is defined, calls to functions
// defined nowhere in the file, and functions that are never called.
func analyzeProgramWarnings(program *shikigami.Program) []lintWarning {
	warnings := make([]lintWarning, 0)
	add := func(function string, pos shikigami.Position, format string, args ...any) {
		warnings = append(warnings, lintWarning{Function: function, Pos: pos, Message: fmt.Sprintf(format, args...)})
	}

	firstDef := make(map[string]int)
	defs := make(map[string]*shikigami.FunctionDef)
	for i, stmt := range program.Statements {
		if def, ok := stmt.(*shikigami.FunctionDef); ok {
			if _, seen := firstDef[def.Name]; !seen {
				firstDef[def.Name] = i
				defs[def.Name] = def
			}
		}
	}

	called := make(map[string]bool)
	last := len(program.Statements) - 1
	for i, stmt := range program.Statements {
		scope := programScope
		def, isDef := stmt.(*shikigami.FunctionDef)
		if isDef {
			scope = def.Name
		}

		switch stmt.(type) {
		case *shikigami.Assignment, *shikigami.FunctionDef:
		default:
			if i != last {
				add(scope, stmt.Pos(), "value of statement is discarded")
			}
		}

		shikigami.Walk(stmt, func(node shikigami.Node) bool {
			call, ok := node.(*shikigami.FunctionCall)
			if !ok {
				return true
			}
			if !isDef || call.Name != def.Name {
				called[call.Name] = true
			}
			at, defined := firstDef[call.Name]
			switch {
			case !defined:
				add(scope, call.Pos(), "undefined function %s", call.Name)
			case !isDef && at > i:
				add(scope, call.Pos(), "%s is called before it is defined", call.Name)
			}
			return true
		})
	}

	for name, def := range defs {
		if !called[name] {
			add(name, def.Pos(), "function %s is never called", name)
		}
	}

	sort.SliceStable(warnings, func(i, j int) bool {
		if warnings[i].Pos.Line != warnings[j].Pos.Line {
			return warnings[i].Pos.Line < warnings[j].Pos.Line
		}
		if warnings[i].Pos.Column != warnings[j].Pos.Column {
			return warnings[i].Pos.Column < warnings[j].Pos.Column
		}
		return warnings[i].Message < warnings[j].Message
	})

	return warnings
}
