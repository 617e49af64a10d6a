package shikigami

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	numberPattern   = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	fractionPattern = regexp.MustCompile(`^-?\d+/\d+$`)
	identPattern    = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
)

type lexer struct {
	input string

	offset int
	line   int
	column int

	buf      strings.Builder
	bufStart Position

	tokens []Token
}

// Tokenize splits source into tokens. Text from '#' to the end of a line is a
// comment, wherever the '#' appears. Words are separated by whitespace and by
// the punctuation characters ( ) , ; and quoted strings are kept verbatim,
// quotes included, as a single token. A fraction literal such as 3/4 stays one
// token because '/' only acts as an operator when it stands alone.
func Tokenize(source string) ([]Token, error) {
	l := &lexer{input: stripComments(source), line: 1}
	if err := l.scan(); err != nil {
		return nil, err
	}
	return l.tokens, nil
}

func stripComments(source string) string {
	if !strings.Contains(source, "#") {
		return source
	}
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			lines[i] = line[:idx]
		}
	}
	return strings.Join(lines, "\n")
}

func (l *lexer) scan() error {
	for l.offset < len(l.input) {
		pos := l.position()
		r := l.readRune()
		switch {
		case unicode.IsSpace(r):
			l.flush()
		case r == '"' || r == '\'':
			l.flush()
			if err := l.readString(r, pos); err != nil {
				return err
			}
		case r == '(' || r == ')' || r == ',' || r == ';':
			l.flush()
			l.emit(string(r), pos)
		default:
			if l.buf.Len() == 0 {
				l.bufStart = pos
			}
			l.buf.WriteRune(r)
		}
	}
	l.flush()
	return nil
}

func (l *lexer) position() Position {
	return Position{Line: l.line, Column: l.column + 1}
}

func (l *lexer) readRune() rune {
	r, w := utf8.DecodeRuneInString(l.input[l.offset:])
	l.offset += w
	if r == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
	return r
}

// readString consumes up to and including the closing quote. A backslash
// escapes the rune after it, so \' does not terminate a '-quoted string.
func (l *lexer) readString(quote rune, start Position) error {
	var sb strings.Builder
	sb.WriteRune(quote)
	for l.offset < len(l.input) {
		r := l.readRune()
		sb.WriteRune(r)
		switch r {
		case '\\':
			if l.offset < len(l.input) {
				sb.WriteRune(l.readRune())
			}
		case quote:
			l.tokens = append(l.tokens, Token{Type: tokenString, Literal: sb.String(), Pos: start})
			return nil
		}
	}
	return newError(ErrUnterminatedString, start, "unterminated string starting at %d:%d", start.Line, start.Column)
}

func (l *lexer) flush() {
	if l.buf.Len() == 0 {
		return
	}
	l.emit(l.buf.String(), l.bufStart)
	l.buf.Reset()
}

func (l *lexer) emit(literal string, pos Position) {
	if literal == "" {
		return
	}
	l.tokens = append(l.tokens, Token{Type: classifyWord(literal), Literal: literal, Pos: pos})
}

func classifyWord(word string) TokenType {
	if tt, ok := operatorTokens[word]; ok {
		return tt
	}
	switch {
	case numberPattern.MatchString(word), fractionPattern.MatchString(word):
		return tokenNumber
	case identPattern.MatchString(word):
		return tokenIdent
	}
	return tokenWord
}

// IsIdentifier reports whether name is a valid variable or function name.
func IsIdentifier(name string) bool {
	return identPattern.MatchString(name)
}

// unquote strips the surrounding quotes of a string token and resolves
// backslash escapes.
func unquote(literal string) string {
	if len(literal) < 2 {
		return ""
	}
	body := literal[1 : len(literal)-1]
	if !strings.Contains(body, "\\") {
		return body
	}
	var sb strings.Builder
	escaped := false
	for _, r := range body {
		if !escaped {
			if r == '\\' {
				escaped = true
				continue
			}
			sb.WriteRune(r)
			continue
		}
		escaped = false
		switch r {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
