package shikigami

import "strconv"

type ValueKind int

const (
	KindNil ValueKind = iota
	KindNumber
	KindString
	KindBool
)

func (k ValueKind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	default:
		return "unknown"
	}
}

// Value is the result of evaluating an expression.
type Value struct {
	kind ValueKind
	num  Rational
	str  string
	b    bool
}

func NewNil() Value              { return Value{kind: KindNil} }
func NewNumber(r Rational) Value { return Value{kind: KindNumber, num: r} }
func NewString(s string) Value   { return Value{kind: KindString, str: s} }
func NewBool(b bool) Value       { return Value{kind: KindBool, b: b} }
func (v Value) Kind() ValueKind  { return v.kind }
func (v Value) IsNil() bool      { return v.kind == KindNil }
func (v Value) Number() Rational { return v.num }
func (v Value) Bool() bool       { return v.b }

// String renders the value as display text. Strings render without quotes.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return v.num.String()
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}
