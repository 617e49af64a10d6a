package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/dotkeypad/shikigami/shikigami"
)

const (
	completionKindFunction = 3
	completionKindVariable = 6
	completionKindOperator = 24

	severityError   = 1
	severityWarning = 2
)

var operatorDocs = map[string]string{
	"=":  "assignment: `= NAME EXPR` binds a variable, `= NAME (PARAMS) EXPR` defines a function",
	"+":  "addition, or concatenation when either operand is a string",
	"-":  "subtraction",
	"*":  "multiplication",
	"/":  "division; the quotient keeps its fraction form",
	">":  "greater than",
	">=": "greater than or equal",
	"==": "exact equality of values",
}

type lspInboundMessage struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method,omitempty"`
	Params  json.RawMessage  `json:"params,omitempty"`
}

type lspResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type lspOutboundMessage struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      *json.RawMessage  `json:"id,omitempty"`
	Method  string            `json:"method,omitempty"`
	Params  any               `json:"params,omitempty"`
	Result  any               `json:"result,omitempty"`
	Error   *lspResponseError `json:"error,omitempty"`
}

type lspDidOpenParams struct {
	TextDocument struct {
		URI  string `json:"uri"`
		Text string `json:"text"`
	} `json:"textDocument"`
}

type lspDidChangeParams struct {
	TextDocument struct {
		URI string `json:"uri"`
	} `json:"textDocument"`
	ContentChanges []struct {
		Text string `json:"text"`
	} `json:"contentChanges"`
}

type lspTextDocumentPositionParams struct {
	TextDocument struct {
		URI string `json:"uri"`
	} `json:"textDocument"`
	Position struct {
		Line      int `json:"line"`
		Character int `json:"character"`
	} `json:"position"`
}

type lspServer struct {
	reader *bufio.Reader
	writer *bufio.Writer
	engine *shikigami.Engine
	docs   map[string]string
}

func runLSP() error {
	server := &lspServer{
		reader: bufio.NewReader(os.Stdin),
		writer: bufio.NewWriter(os.Stdout),
		engine: shikigami.MustNewEngine(shikigami.Config{}),
		docs:   make(map[string]string),
	}
	return server.serve()
}

func (s *lspServer) serve() error {
	for {
		payload, err := s.readPayload()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		var incoming lspInboundMessage
		if err := json.Unmarshal(payload, &incoming); err != nil {
			continue
		}

		for _, msg := range s.handleMessage(incoming) {
			if err := s.writePayload(msg); err != nil {
				return err
			}
		}

		if incoming.Method == "exit" {
			return nil
		}
	}
}

func (s *lspServer) handleMessage(incoming lspInboundMessage) []lspOutboundMessage {
	switch incoming.Method {
	case "initialize":
		return []lspOutboundMessage{
			{
				JSONRPC: "2.0",
				ID:      incoming.ID,
				Result: map[string]any{
					"capabilities": map[string]any{
						"textDocumentSync": 1,
						"hoverProvider":    true,
						"completionProvider": map[string]any{
							"resolveProvider": false,
						},
					},
					"serverInfo": map[string]any{"name": "shiki-lsp"},
				},
			},
		}
	case "initialized", "exit":
		return nil
	case "shutdown":
		if incoming.ID == nil {
			return nil
		}
		return []lspOutboundMessage{{JSONRPC: "2.0", ID: incoming.ID, Result: nil}}
	case "textDocument/didOpen":
		var params lspDidOpenParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil {
			return nil
		}
		s.docs[params.TextDocument.URI] = params.TextDocument.Text
		return []lspOutboundMessage{
			s.publishDiagnostics(params.TextDocument.URI, params.TextDocument.Text),
		}
	case "textDocument/didChange":
		var params lspDidChangeParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil {
			return nil
		}
		if len(params.ContentChanges) == 0 {
			return nil
		}
		latest := params.ContentChanges[len(params.ContentChanges)-1].Text
		s.docs[params.TextDocument.URI] = latest
		return []lspOutboundMessage{
			s.publishDiagnostics(params.TextDocument.URI, latest),
		}
	case "textDocument/didClose":
		var params lspDidOpenParams
		if err := json.Unmarshal(incoming.Params, &params); err == nil {
			delete(s.docs, params.TextDocument.URI)
		}
		return nil
	case "textDocument/completion":
		if incoming.ID == nil {
			return nil
		}
		// Without a readable document, only operators are offered.
		source := ""
		var params lspTextDocumentPositionParams
		if err := json.Unmarshal(incoming.Params, &params); err == nil {
			source = s.docs[params.TextDocument.URI]
		}
		return []lspOutboundMessage{
			{
				JSONRPC: "2.0",
				ID:      incoming.ID,
				Result: map[string]any{
					"isIncomplete": false,
					"items":        completionItems(source),
				},
			},
		}
	case "textDocument/hover":
		if incoming.ID == nil {
			return nil
		}
		var params lspTextDocumentPositionParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil {
			return []lspOutboundMessage{
				{
					JSONRPC: "2.0",
					ID:      incoming.ID,
					Error:   &lspResponseError{Code: -32602, Message: "invalid hover params"},
				},
			}
		}
		source := s.docs[params.TextDocument.URI]
		word := wordAtPosition(source, params.Position.Line, params.Position.Character)
		text := hoverText(source, word)
		if text == "" {
			return []lspOutboundMessage{
				{JSONRPC: "2.0", ID: incoming.ID, Result: nil},
			}
		}
		return []lspOutboundMessage{
			{
				JSONRPC: "2.0",
				ID:      incoming.ID,
				Result: map[string]any{
					"contents": map[string]any{
						"kind":  "markdown",
						"value": text,
					},
				},
			},
		}
	default:
		if incoming.ID == nil {
			return nil
		}
		return []lspOutboundMessage{
			{
				JSONRPC: "2.0",
				ID:      incoming.ID,
				Error: &lspResponseError{
					Code:    -32601,
					Message: "method not found",
				},
			},
		}
	}
}

func (s *lspServer) publishDiagnostics(uri, source string) lspOutboundMessage {
	return lspOutboundMessage{
		JSONRPC: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params: map[string]any{
			"uri":         uri,
			"diagnostics": diagnosticsForSource(s.engine, source),
		},
	}
}

// diagnosticsForSource reports the compile error of source, or the analyzer
// warnings when it compiles.
func diagnosticsForSource(engine *shikigami.Engine, source string) []map[string]any {
	program, err := engine.Compile(source)
	if err != nil {
		var e *shikigami.Error
		if !errors.As(err, &e) {
			return []map[string]any{newDiagnostic(0, 0, severityError, err.Error())}
		}
		line := max(0, e.Pos.Line-1)
		column := max(0, e.Pos.Column-1)
		return []map[string]any{newDiagnostic(line, column, severityError, e.Message)}
	}

	warnings := analyzeProgramWarnings(program)
	out := make([]map[string]any, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, newDiagnostic(max(0, w.Pos.Line-1), max(0, w.Pos.Column-1), severityWarning, w.Message))
	}
	return out
}

func newDiagnostic(line, character, severity int, message string) map[string]any {
	return map[string]any{
		"range": map[string]any{
			"start": map[string]any{
				"line":      line,
				"character": character,
			},
			"end": map[string]any{
				"line":      line,
				"character": character + 1,
			},
		},
		"severity": severity,
		"source":   "shiki-lsp",
		"message":  message,
	}
}

type documentSymbols struct {
	functions map[string][]string
	variables map[string]struct{}
}

// scanSymbols collects the names bound by "= NAME" in source. It works from
// tokens alone so a document that does not parse still offers its names.
func scanSymbols(source string) documentSymbols {
	syms := documentSymbols{functions: make(map[string][]string), variables: make(map[string]struct{})}
	tokens, err := shikigami.Tokenize(source)
	if err != nil {
		return syms
	}
	for i := 0; i+1 < len(tokens); i++ {
		if tokens[i].Literal != "=" || !shikigami.IsIdentifier(tokens[i+1].Literal) {
			continue
		}
		name := tokens[i+1].Literal
		if i+2 >= len(tokens) || tokens[i+2].Literal != "(" {
			syms.variables[name] = struct{}{}
			continue
		}
		params := []string{}
		for j := i + 3; j < len(tokens) && tokens[j].Literal != ")"; j++ {
			if shikigami.IsIdentifier(tokens[j].Literal) {
				params = append(params, tokens[j].Literal)
			}
		}
		syms.functions[name] = params
	}
	return syms
}

func completionItems(source string) []map[string]any {
	syms := scanSymbols(source)
	items := make([]map[string]any, 0)
	for _, op := range shikigami.Operators() {
		items = append(items, map[string]any{
			"label":  op,
			"kind":   completionKindOperator,
			"detail": "operator",
		})
	}
	for name, params := range syms.functions {
		items = append(items, map[string]any{
			"label":  name,
			"kind":   completionKindFunction,
			"detail": fmt.Sprintf("%s(%s)", name, strings.Join(params, ", ")),
		})
	}
	for name := range syms.variables {
		if _, isFn := syms.functions[name]; isFn {
			continue
		}
		items = append(items, map[string]any{
			"label":  name,
			"kind":   completionKindVariable,
			"detail": "variable",
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i]["label"].(string) < items[j]["label"].(string)
	})
	return items
}

func hoverText(source, word string) string {
	if word == "" {
		return ""
	}
	if doc, ok := operatorDocs[word]; ok {
		return fmt.Sprintf("`%s`\n\n%s", word, doc)
	}
	syms := scanSymbols(source)
	if params, ok := syms.functions[word]; ok {
		return fmt.Sprintf("`%s(%s)`\n\nfunction, %d argument(s)", word, strings.Join(params, ", "), len(params))
	}
	if _, ok := syms.variables[word]; ok {
		return fmt.Sprintf("`%s`\n\nvariable", word)
	}
	names := make([]string, 0, len(syms.functions))
	for name := range syms.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if slices.Contains(syms.functions[name], word) {
			return fmt.Sprintf("`%s`\n\nparameter of %s", word, name)
		}
	}
	if shikigami.IsIdentifier(word) {
		return fmt.Sprintf("`%s`\n\nundefined name", word)
	}
	return ""
}

// wordAtPosition returns the identifier or operator under the cursor.
// character counts UTF-16 code units, as LSP clients send it.
func wordAtPosition(source string, line, character int) string {
	lines := strings.Split(source, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}

	runes := []rune(lines[line])
	if len(runes) == 0 {
		return ""
	}
	cursor := runeIndexForUTF16(runes, max(character, 0))
	if cursor == len(runes) {
		cursor--
	}
	class := runeClass(runes[cursor])
	if class == 0 {
		if cursor > 0 && runeClass(runes[cursor-1]) != 0 {
			cursor--
			class = runeClass(runes[cursor])
		} else {
			return ""
		}
	}

	start := cursor
	for start > 0 && runeClass(runes[start-1]) == class {
		start--
	}
	end := cursor
	for end < len(runes) && runeClass(runes[end]) == class {
		end++
	}
	return string(runes[start:end])
}

func runeIndexForUTF16(runes []rune, units int) int {
	count := 0
	for i, r := range runes {
		if count >= units {
			return i
		}
		count += utf16.RuneLen(r)
	}
	return len(runes)
}

// runeClass is 1 for identifier runes, 2 for operator runes and 0 otherwise.
func runeClass(r rune) int {
	switch {
	case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
		return 1
	case strings.ContainsRune("=+-*/>", r):
		return 2
	default:
		return 0
	}
}

func (s *lspServer) readPayload() ([]byte, error) {
	contentLength := -1
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length: %w", err)
			}
			contentLength = n
		}
	}

	if contentLength < 0 {
		return nil, errors.New("missing Content-Length header")
	}
	payload := make([]byte, contentLength)
	if _, err := io.ReadFull(s.reader, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *lspServer) writePayload(msg lspOutboundMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.writer, "Content-Length: %d\r\n\r\n", len(data)); err != nil {
		return err
	}
	if _, err := s.writer.Write(data); err != nil {
		return err
	}
	return s.writer.Flush()
}
