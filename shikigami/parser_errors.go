package shikigami

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

func (p *parser) errorAt(kind ErrorKind, pos Position, format string, args ...any) *Error {
	err := newError(kind, pos, format, args...)
	err.Message = fmt.Sprintf("parse error at %d:%d: %s", pos.Line, pos.Column, err.Message)
	err.CodeFrame = formatCodeFrame(p.source, pos)
	return err
}

func (p *parser) errorUnexpected(tok Token) *Error {
	return p.errorAt(ErrUnexpectedToken, tok.Pos, "unexpected token %s", tokenLabel(tok))
}

func (p *parser) errorEndOfInput() *Error {
	return p.errorAt(ErrUnexpectedEndOfInput, p.endPosition(), "unexpected end of input")
}

func (p *parser) errorCloseParen(i int, context string) *Error {
	if i >= len(p.tokens) {
		return p.errorAt(ErrExpectedCloseParen, p.endPosition(), "expected ')' %s, got end of input", context)
	}
	tok := p.tokens[i]
	return p.errorAt(ErrExpectedCloseParen, tok.Pos, "expected ')' %s, got %s", context, tokenLabel(tok))
}

// attach fills in the position of an error raised below the parser, such as
// a malformed numeric literal.
func (p *parser) attach(err error, pos Position) error {
	var e *Error
	if !errors.As(err, &e) {
		return err
	}
	return p.errorAt(e.Kind, pos, "%s", e.Message)
}

// endPosition points just past the last token.
func (p *parser) endPosition() Position {
	if len(p.tokens) == 0 {
		return Position{Line: 1, Column: 1}
	}
	last := p.tokens[len(p.tokens)-1]
	return Position{Line: last.Pos.Line, Column: last.Pos.Column + utf8.RuneCountInString(last.Literal)}
}

func tokenLabel(tok Token) string {
	switch tok.Type {
	case tokenEOF:
		return "end of input"
	case tokenString:
		return "string " + tok.Literal
	case tokenNumber:
		return "number " + tok.Literal
	case tokenIdent:
		return "identifier " + tok.Literal
	default:
		return fmt.Sprintf("%q", tok.Literal)
	}
}
