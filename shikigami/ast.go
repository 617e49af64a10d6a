package shikigami

// Node is an expression tree node. Next is the index of the token that
// follows the node in the token stream it was parsed from.
type Node interface {
	Pos() Position
	Next() int
	exprNode()
}

type span struct {
	position Position
	next     int
}

func (s span) Pos() Position { return s.position }
func (s span) Next() int     { return s.next }

// Program is the parsed form of a whole source text: one node per top-level
// statement.
type Program struct {
	Statements []Node
	source     string
}

// Source returns the text the program was parsed from.
func (p *Program) Source() string { return p.source }

type NumberLit struct {
	Value Rational
	span
}

type StringLit struct {
	Value string
	span
}

type VarRef struct {
	Name string
	span
}

// BinaryExpr applies Op to exactly two operands.
type BinaryExpr struct {
	Op    string
	Left  Node
	Right Node
	span
}

type Assignment struct {
	Name  string
	Value Node
	span
}

type FunctionDef struct {
	Name   string
	Params []string
	Body   Node
	span
}

// FunctionCall is NAME(args...) or, when Bare is set, the parenthesis-free
// prefix form NAME arg1 arg2 ...
type FunctionCall struct {
	Name string
	Args []Node
	Bare bool
	span
}

func (*NumberLit) exprNode()    {}
func (*StringLit) exprNode()    {}
func (*VarRef) exprNode()       {}
func (*BinaryExpr) exprNode()   {}
func (*Assignment) exprNode()   {}
func (*FunctionDef) exprNode()  {}
func (*FunctionCall) exprNode() {}

// Walk calls fn for node and every node below it, depth first. Returning
// false from fn skips the children of that node.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	switch n := node.(type) {
	case *BinaryExpr:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Assignment:
		Walk(n.Value, fn)
	case *FunctionDef:
		Walk(n.Body, fn)
	case *FunctionCall:
		for _, arg := range n.Args {
			Walk(arg, fn)
		}
	}
}
