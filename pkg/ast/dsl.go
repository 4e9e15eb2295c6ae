package ast

// Literal and identifier helpers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Num(value float64) *NumberLiteral {
	return NewNumberLiteral(value)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

// Expression helpers.

func Bin(operator string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(operator, left, right)
}

func Call(name string, args ...Expression) *FunctionCall {
	return NewFunctionCall(name, args)
}

// Statement helpers.

func Prog(body ...Statement) *Program {
	return NewProgram(body)
}

func Decl(name string, value Expression) *VariableDeclaration {
	return NewVariableDeclaration(name, value, true)
}

func Assign(name string, value Expression) *VariableDeclaration {
	return NewVariableDeclaration(name, value, false)
}

func Print(expr Expression) *PrintStatement {
	return NewPrintStatement(expr)
}

func Input(name string) *InputStatement {
	return NewInputStatement(name)
}

func Branch(condition Expression, body ...Statement) *IfBranch {
	return NewIfBranch(condition, body)
}

func If(branches ...*IfBranch) *IfStatement {
	return NewIfStatement(branches)
}

func While(condition Expression, body ...Statement) *WhileStatement {
	return NewWhileStatement(condition, body)
}

func For(init *VariableDeclaration, condition Expression, increment *VariableDeclaration, body ...Statement) *ForStatement {
	return NewForStatement(init, condition, increment, body)
}

func Fn(name string, params []string, body ...Statement) *FunctionDeclaration {
	return NewFunctionDeclaration(name, params, body)
}

func Ret(value Expression) *ReturnStatement {
	return NewReturnStatement(value)
}
