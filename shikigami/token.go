package shikigami

// TokenType identifies the lexical category of a token.
type TokenType string

const (
	tokenEOF TokenType = "EOF"

	tokenNumber TokenType = "NUMBER"
	tokenString TokenType = "STRING"
	tokenIdent  TokenType = "IDENT"
	tokenWord   TokenType = "WORD"

	tokenAssign    TokenType = "="
	tokenPlus      TokenType = "+"
	tokenMinus     TokenType = "-"
	tokenAsterisk  TokenType = "*"
	tokenSlash     TokenType = "/"
	tokenGT        TokenType = ">"
	tokenGTE       TokenType = ">="
	tokenEQ        TokenType = "=="
	tokenLParen    TokenType = "("
	tokenRParen    TokenType = ")"
	tokenComma     TokenType = ","
	tokenSemicolon TokenType = ";"
)

// Token captures lexical information for the parser.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// Position identifies a 1-based line and column in the source text.
type Position struct {
	Line   int
	Column int
}

var operatorTokens = map[string]TokenType{
	"=":  tokenAssign,
	"+":  tokenPlus,
	"-":  tokenMinus,
	"*":  tokenAsterisk,
	"/":  tokenSlash,
	">":  tokenGT,
	">=": tokenGTE,
	"==": tokenEQ,
	"(":  tokenLParen,
	")":  tokenRParen,
	",":  tokenComma,
	";":  tokenSemicolon,
}

func isBinaryOperator(tt TokenType) bool {
	switch tt {
	case tokenPlus, tokenMinus, tokenAsterisk, tokenSlash, tokenGT, tokenGTE, tokenEQ:
		return true
	}
	return false
}

// Operators lists the operator spellings in display order.
func Operators() []string {
	return []string{"=", "+", "-", "*", "/", ">", ">=", "=="}
}
