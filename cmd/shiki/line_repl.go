package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/dotkeypad/shikigami/shikigami"
)

const (
	historyFile = ".shikigami_history"
	promptMain  = "shiki> "
	promptCont  = "   ... "
)

func red(s string) string   { return "\x1b[31m" + s + "\x1b[0m" }
func green(s string) string { return "\x1b[32m" + s + "\x1b[0m" }
func blue(s string) string  { return "\x1b[94m" + s + "\x1b[0m" }

func runLineREPL(engine *shikigami.Engine, histPath string) error {
	fmt.Println(blue("shikigami") + " " + engine.ConfigSummary())
	fmt.Println("Ctrl+C cancels input, Ctrl+D exits. Type :help for commands.")

	if histPath == "" {
		home, _ := os.UserHomeDir()
		histPath = filepath.Join(home, historyFile)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	session := engine.NewSession()
	ln.SetWordCompleter(func(line string, pos int) (string, []string, string) {
		runes := []rune(line)
		head := string(runes[:pos])
		start := strings.LastIndexAny(head, " \t(,;") + 1
		return head[:start], sessionCompletions(session, head[start:]), string(runes[pos:])
	})

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		if _, ok := <-sigc; ok {
			ln.Close()
			os.Exit(130)
		}
	}()

	for {
		code, ok := readByParseProbe(ln, session, promptMain, promptCont)
		if !ok {
			fmt.Println()
			return nil
		}
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		if strings.HasPrefix(code, ":") {
			if quit := lineCommand(session, code); quit {
				return nil
			}
			continue
		}

		val, err := session.Eval(context.Background(), code)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			continue
		}
		if !val.IsNil() {
			fmt.Println(green(val.String()))
		}
	}
}

func lineCommand(session *shikigami.Session, input string) bool {
	parts := strings.Fields(input)
	switch parts[0] {
	case ":quit", ":q":
		return true
	case ":reset", ":r":
		session.Reset()
		fmt.Println("Environment reset")
	case ":vars", ":v":
		env := session.Env()
		for _, fn := range env.Functions() {
			fmt.Printf("%s(%s)\n", blue(fn.Name), strings.Join(fn.Params, ", "))
		}
		for _, name := range sessionCompletions(session, "") {
			if val, ok := env.Get(name); ok {
				fmt.Printf("%s = %s\n", blue(name), val.String())
			}
		}
	case ":load", ":l":
		if len(parts) != 2 {
			fmt.Fprintln(os.Stderr, red("usage: :load FILE"))
			return false
		}
		source, err := os.ReadFile(parts[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			return false
		}
		val, err := session.Eval(context.Background(), string(source))
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			return false
		}
		fmt.Println(green(val.String()))
	case ":help", ":h":
		fmt.Println(`REPL commands:
  :vars        List variables and functions
  :load FILE   Evaluate a file into the session
  :reset       Forget all bindings
  :quit        Exit the REPL`)
	default:
		fmt.Println("unknown command. Type :help for commands.")
	}
	return false
}

// readByParseProbe keeps prompting while the collected input ends in the
// middle of an expression, so a definition can span several lines.
func readByParseProbe(ln *liner.State, session *shikigami.Session, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			b.Reset()
			fmt.Println()
			continue
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !incomplete(session, src) {
			return src, true
		}
	}
}

// incomplete reports whether src fails to compile only because it stops
// early. A blank line always ends the input.
func incomplete(session *shikigami.Session, src string) bool {
	if strings.HasSuffix(src, "\n") {
		return false
	}
	_, err := session.Compile(src)
	return errors.Is(err, shikigami.ErrUnexpectedEndOfInput) || errors.Is(err, shikigami.ErrUnterminatedString)
}
