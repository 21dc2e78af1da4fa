// Package ast defines the types used to represent the Abstract Syntax Tree (AST)
package ast

import (
	"fmt"

	"github.com/xplshn/rcc/pkg/token"
)

// NodeType defines the kind of a node in the AST
type NodeType int

// Node types enum
const (
	// Expressions
	Num NodeType = iota
	Str
	Ident
	Lvar
	Gvar
	BinOp
	Addr
	Deref
	Logand
	Logor
	Sizeof
	Alignof
	Call
	StmtExpr

	// Statements and declarations
	Vardef
	If
	For
	DoWhile
	Return
	Func
	CompStmt
	ExprStmt
	Null
)

// Node represents a node in the Abstract Syntax Tree. Children are owned
// by exactly one parent; there are no back pointers.
type Node struct {
	Op   NodeType
	Tok  token.Token
	Data interface{}
	Ty   *Type
}

// --- Node Data Structs ---
type NumNode struct{ Value int32 }
type StrNode struct {
	Data string
	Len  int
}
type IdentNode struct{ Name string }
type VardefNode struct {
	Name  string
	Init  *Node
	Scope Scope
}
type LvarNode struct{ Scope Scope }
type GvarNode struct {
	Name string
	Data string
	Len  int
}
type BinOpNode struct {
	Op       token.Type
	Lhs, Rhs *Node
}
type IfNode struct{ Cond, Then, Else *Node }
type ForNode struct{ Init, Cond, Inc, Body *Node }
type DoWhileNode struct{ Body, Cond *Node }
type AddrNode struct{ Expr *Node }
type DerefNode struct{ Expr *Node }
type LogandNode struct{ Lhs, Rhs *Node }
type LogorNode struct{ Lhs, Rhs *Node }
type ReturnNode struct{ Expr *Node }
type SizeofNode struct{ Expr *Node }
type AlignofNode struct{ Expr *Node }
type CallNode struct {
	Name string
	Args []*Node
}
type FuncNode struct {
	Name      string
	Params    []*Node
	Body      *Node
	StackSize int
}
type CompStmtNode struct{ Stmts []*Node }
type ExprStmtNode struct{ Expr *Node }
type StmtExprNode struct{ Body *Node }
type NullNode struct{}

// --- Node Constructors ---

func newNode(tok token.Token, op NodeType, data interface{}) *Node {
	return &Node{Op: op, Tok: tok, Data: data, Ty: NewType(TYPE_INT)}
}

func NewNum(tok token.Token, value int32) *Node {
	return newNode(tok, Num, NumNode{Value: value})
}

// NewStr records the byte length of data and types the literal as a char
// array of that length.
func NewStr(tok token.Token, data string) *Node {
	n := newNode(tok, Str, StrNode{Data: data, Len: len(data)})
	n.Ty = AryOf(NewType(TYPE_CHAR), len(data))
	return n
}
func NewIdent(tok token.Token, name string) *Node {
	return newNode(tok, Ident, IdentNode{Name: name})
}
func NewVardef(tok token.Token, name string, init *Node, scope Scope, ty *Type) *Node {
	n := newNode(tok, Vardef, VardefNode{Name: name, Init: init, Scope: scope})
	n.Ty = ty
	return n
}
func NewLvar(tok token.Token, scope Scope, ty *Type) *Node {
	n := newNode(tok, Lvar, LvarNode{Scope: scope})
	n.Ty = ty
	return n
}
func NewGvar(tok token.Token, name, data string, length int, ty *Type) *Node {
	n := newNode(tok, Gvar, GvarNode{Name: name, Data: data, Len: length})
	n.Ty = ty
	return n
}
func NewBinOp(tok token.Token, op token.Type, lhs, rhs *Node) *Node {
	return newNode(tok, BinOp, BinOpNode{Op: op, Lhs: lhs, Rhs: rhs})
}
func NewIf(tok token.Token, cond, then, els *Node) *Node {
	return newNode(tok, If, IfNode{Cond: cond, Then: then, Else: els})
}
func NewFor(tok token.Token, init, cond, inc, body *Node) *Node {
	return newNode(tok, For, ForNode{Init: init, Cond: cond, Inc: inc, Body: body})
}
func NewDoWhile(tok token.Token, body, cond *Node) *Node {
	return newNode(tok, DoWhile, DoWhileNode{Body: body, Cond: cond})
}
func NewAddr(tok token.Token, expr *Node) *Node {
	return newNode(tok, Addr, AddrNode{Expr: expr})
}
func NewDeref(tok token.Token, expr *Node) *Node {
	return newNode(tok, Deref, DerefNode{Expr: expr})
}
func NewLogand(tok token.Token, lhs, rhs *Node) *Node {
	return newNode(tok, Logand, LogandNode{Lhs: lhs, Rhs: rhs})
}
func NewLogor(tok token.Token, lhs, rhs *Node) *Node {
	return newNode(tok, Logor, LogorNode{Lhs: lhs, Rhs: rhs})
}
func NewReturn(tok token.Token, expr *Node) *Node {
	return newNode(tok, Return, ReturnNode{Expr: expr})
}
func NewSizeof(tok token.Token, expr *Node) *Node {
	return newNode(tok, Sizeof, SizeofNode{Expr: expr})
}
func NewAlignof(tok token.Token, expr *Node) *Node {
	return newNode(tok, Alignof, AlignofNode{Expr: expr})
}
func NewCall(tok token.Token, name string, args []*Node) *Node {
	return newNode(tok, Call, CallNode{Name: name, Args: args})
}
func NewFunc(tok token.Token, name string, params []*Node, body *Node, retType *Type) *Node {
	n := newNode(tok, Func, FuncNode{Name: name, Params: params, Body: body})
	n.Ty = retType
	return n
}
func NewCompStmt(tok token.Token, stmts []*Node) *Node {
	return newNode(tok, CompStmt, CompStmtNode{Stmts: stmts})
}
func NewExprStmt(tok token.Token, expr *Node) *Node {
	return newNode(tok, ExprStmt, ExprStmtNode{Expr: expr})
}
func NewStmtExpr(tok token.Token, body *Node) *Node {
	return newNode(tok, StmtExpr, StmtExprNode{Body: body})
}
func NewNull(tok token.Token) *Node {
	return newNode(tok, Null, NullNode{})
}

var nodeNames = [...]string{
	Num: "num", Str: "str", Ident: "ident", Lvar: "lvar", Gvar: "gvar",
	BinOp: "binop", Addr: "addr", Deref: "deref", Logand: "&&", Logor: "||",
	Sizeof: "sizeof", Alignof: "_Alignof", Call: "call", StmtExpr: "stmt-expr",
	Vardef: "vardef", If: "if", For: "for", DoWhile: "do", Return: "return",
	Func: "func", CompStmt: "block", ExprStmt: "expr", Null: "null",
}

func (t NodeType) String() string {
	if int(t) >= 0 && int(t) < len(nodeNames) {
		return nodeNames[t]
	}
	return fmt.Sprintf("NodeType(%d)", int(t))
}
