package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
)

func main() {
	if err := runCLI(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCLI(args []string) error {
	if len(args) < 2 {
		return usageError()
	}
	switch args[1] {
	case "run":
		return runCommand(args[2:])
	case "repl":
		return replCommand(args[2:])
	case "fmt":
		return fmtCommand(args[2:])
	case "analyze":
		return analyzeCommand(args[2:])
	case "lsp":
		return runLSP()
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		return usageError()
	}
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	checkOnly := fs.Bool("check", false, "only compile the script without executing")
	var preludes pathList
	fs.Var(&preludes, "prelude", "evaluate a script before the main one (repeatable)")
	var opts engineOptions
	opts.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) == 0 {
		return errors.New("shiki run: script path required")
	}
	scriptPath, err := filepath.Abs(remaining[0])
	if err != nil {
		return fmt.Errorf("resolve script path: %w", err)
	}
	input, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	preludePaths, err := resolvePreludes(scriptPath, preludes)
	if err != nil {
		return err
	}
	engine, err := opts.engine()
	if err != nil {
		return err
	}

	if *checkOnly {
		session := engine.NewSession()
		for _, path := range preludePaths {
			source, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read prelude: %w", err)
			}
			program, err := session.Compile(string(source))
			if err != nil {
				return fmt.Errorf("compile %s failed: %w", path, err)
			}
			session.Declare(program)
		}
		if _, err := session.Compile(string(input)); err != nil {
			return fmt.Errorf("compile failed: %w", err)
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	session := engine.NewSession()
	for _, path := range preludePaths {
		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read prelude: %w", err)
		}
		if _, err := session.Eval(ctx, string(source)); err != nil {
			return fmt.Errorf("prelude %s failed: %w", path, err)
		}
	}
	result, err := session.Eval(ctx, string(input))
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	if !result.IsNil() {
		fmt.Println(result.String())
	}
	return nil
}

func usageError() error {
	printUsage()
	return errors.New("invalid command")
}

func printUsage() {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [flags] [args...]\n", prog)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  run [flags] <script>      evaluate a script and print its result")
	fmt.Fprintln(os.Stderr, "  repl [-line] [flags]      start an interactive session")
	fmt.Fprintln(os.Stderr, "  fmt [-w] [-check] <path>  normalize .shiki source files")
	fmt.Fprintln(os.Stderr, "  analyze <script>          report likely mistakes without running")
	fmt.Fprintln(os.Stderr, "  lsp                       serve the language server protocol on stdio")
	fmt.Fprintln(os.Stderr, "Run flags:")
	fmt.Fprintln(os.Stderr, "  -check")
	fmt.Fprintln(os.Stderr, "    only compile the script without executing")
	fmt.Fprintln(os.Stderr, "  -prelude <file>")
	fmt.Fprintln(os.Stderr, "    evaluate a script first so its functions and variables are visible (repeatable)")
	fmt.Fprintln(os.Stderr, "Engine flags (run, repl):")
	fmt.Fprintln(os.Stderr, "  -config <file.yaml>")
	fmt.Fprintln(os.Stderr, "    load recursion_limit, step_quota and nesting_limit from a YAML file")
	fmt.Fprintln(os.Stderr, "  -recursion-limit int")
	fmt.Fprintln(os.Stderr, "    maximum nested call depth")
	fmt.Fprintln(os.Stderr, "  -step-quota int")
	fmt.Fprintln(os.Stderr, "    maximum evaluation steps per input")
	fmt.Fprintln(os.Stderr, "  -nesting-limit int")
	fmt.Fprintln(os.Stderr, "    maximum expression nesting depth")
}

type flagErrorSink struct{}

func (flagErrorSink) Write(p []byte) (int, error) {
	return len(p), nil
}

type pathList []string

func (l *pathList) String() string {
	return strings.Join(*l, string(os.PathListSeparator))
}

func (l *pathList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

// resolvePreludes returns the absolute prelude paths in flag order, dropping
// duplicates and the script itself.
func resolvePreludes(scriptPath string, extras []string) ([]string, error) {
	seen := map[string]struct{}{scriptPath: {}}
	var files []string
	for _, extra := range extras {
		abs, err := filepath.Abs(extra)
		if err != nil {
			return nil, fmt.Errorf("resolve prelude %q: %w", extra, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("access prelude %q: %w", abs, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("prelude %q is a directory", abs)
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		files = append(files, abs)
	}
	return files, nil
}
