package ast

type NodeType string

const (
	NodeProgram             NodeType = "Program"
	NodeVariableDeclaration NodeType = "VariableDeclaration"
	NodePrintStatement      NodeType = "PrintStatement"
	NodeInputStatement      NodeType = "InputStatement"
	NodeIfStatement         NodeType = "IfStatement"
	NodeIfBranch            NodeType = "IfBranch"
	NodeWhileStatement      NodeType = "WhileStatement"
	NodeForStatement        NodeType = "ForStatement"
	NodeFunctionDeclaration NodeType = "FunctionDeclaration"
	NodeFunctionCall        NodeType = "FunctionCall"
	NodeReturnStatement     NodeType = "ReturnStatement"
	NodeNumberLiteral       NodeType = "NumberLiteral"
	NodeStringLiteral       NodeType = "StringLiteral"
	NodeIdentifier          NodeType = "Identifier"
	NodeBinaryExpression    NodeType = "BinaryExpression"
)

// Position is a 1-based source location.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Span records where a node starts in the source.
type Span struct {
	Start Position `json:"start"`
}

type Node interface {
	NodeType() NodeType
	Span() Span
	setSpan(Span)
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
	Loc  *Span    `json:"span,omitempty"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (nodeImpl) isNode()              {}

func (n nodeImpl) Span() Span {
	if n.Loc == nil {
		return Span{}
	}
	return *n.Loc
}

func (n *nodeImpl) setSpan(span Span) {
	n.Loc = &span
}

// SetSpan attaches a source location to node. Nil nodes are ignored.
func SetSpan(node Node, span Span) {
	if node == nil {
		return
	}
	node.setSpan(span)
}

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

// Program is the root of a parsed source file.
type Program struct {
	nodeImpl

	Body []Statement `json:"body"`
}

func NewProgram(body []Statement) *Program {
	return &Program{nodeImpl: newNodeImpl(NodeProgram), Body: body}
}

// Expressions

type NumberLiteral struct {
	nodeImpl
	expressionMarker

	Value float64 `json:"value"`
}

func NewNumberLiteral(value float64) *NumberLiteral {
	return &NumberLiteral{nodeImpl: newNodeImpl(NodeNumberLiteral), Value: value}
}

type StringLiteral struct {
	nodeImpl
	expressionMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

type Identifier struct {
	nodeImpl
	expressionMarker

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

type BinaryExpression struct {
	nodeImpl
	expressionMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewBinaryExpression(operator string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: operator, Left: left, Right: right}
}

// FunctionCall is both an expression and a bare statement.
type FunctionCall struct {
	nodeImpl
	expressionMarker
	statementMarker

	Name string       `json:"name"`
	Args []Expression `json:"args"`
}

func NewFunctionCall(name string, args []Expression) *FunctionCall {
	return &FunctionCall{nodeImpl: newNodeImpl(NodeFunctionCall), Name: name, Args: args}
}

// Statements

// VariableDeclaration covers both `dada ei je x = ...;` and `x = ...;`.
// Declared only records which spelling was used.
type VariableDeclaration struct {
	nodeImpl
	statementMarker

	Identifier string     `json:"identifier"`
	Value      Expression `json:"value"`
	Declared   bool       `json:"declared"`
}

func NewVariableDeclaration(identifier string, value Expression, declared bool) *VariableDeclaration {
	return &VariableDeclaration{nodeImpl: newNodeImpl(NodeVariableDeclaration), Identifier: identifier, Value: value, Declared: declared}
}

type PrintStatement struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"expression"`
}

func NewPrintStatement(expr Expression) *PrintStatement {
	return &PrintStatement{nodeImpl: newNodeImpl(NodePrintStatement), Expression: expr}
}

type InputStatement struct {
	nodeImpl
	statementMarker

	Identifier string `json:"identifier"`
}

func NewInputStatement(identifier string) *InputStatement {
	return &InputStatement{nodeImpl: newNodeImpl(NodeInputStatement), Identifier: identifier}
}

// IfBranch is one arm of an if-chain. A nil Condition marks the trailing
// unconditional else.
type IfBranch struct {
	nodeImpl

	Condition Expression  `json:"condition"`
	Body      []Statement `json:"body"`
}

func NewIfBranch(condition Expression, body []Statement) *IfBranch {
	return &IfBranch{nodeImpl: newNodeImpl(NodeIfBranch), Condition: condition, Body: body}
}

type IfStatement struct {
	nodeImpl
	statementMarker

	Branches []*IfBranch `json:"branches"`
}

func NewIfStatement(branches []*IfBranch) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIfStatement), Branches: branches}
}

type WhileStatement struct {
	nodeImpl
	statementMarker

	Condition Expression  `json:"condition"`
	Body      []Statement `json:"body"`
}

func NewWhileStatement(condition Expression, body []Statement) *WhileStatement {
	return &WhileStatement{nodeImpl: newNodeImpl(NodeWhileStatement), Condition: condition, Body: body}
}

type ForStatement struct {
	nodeImpl
	statementMarker

	Init      *VariableDeclaration `json:"init"`
	Condition Expression           `json:"condition"`
	Increment *VariableDeclaration `json:"increment"`
	Body      []Statement          `json:"body"`
}

func NewForStatement(init *VariableDeclaration, condition Expression, increment *VariableDeclaration, body []Statement) *ForStatement {
	return &ForStatement{nodeImpl: newNodeImpl(NodeForStatement), Init: init, Condition: condition, Increment: increment, Body: body}
}

type FunctionDeclaration struct {
	nodeImpl
	statementMarker

	Name   string      `json:"name"`
	Params []string    `json:"params"`
	Body   []Statement `json:"body"`
}

func NewFunctionDeclaration(name string, params []string, body []Statement) *FunctionDeclaration {
	return &FunctionDeclaration{nodeImpl: newNodeImpl(NodeFunctionDeclaration), Name: name, Params: params, Body: body}
}

type ReturnStatement struct {
	nodeImpl
	statementMarker

	Value Expression `json:"value"`
}

func NewReturnStatement(value Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Value: value}
}
