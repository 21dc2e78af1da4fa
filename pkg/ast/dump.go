package ast

import (
	"strconv"
	"strings"

	"github.com/xplshn/rcc/pkg/token"
)

// Dump renders n as a single-line S-expression, e.g. (+ 1 (* 2 3)).
func Dump(n *Node) string {
	var sb strings.Builder
	dump(&sb, n)
	return sb.String()
}

// DumpAll renders each top-level node on its own line.
func DumpAll(nodes []*Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		dump(&sb, n)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func dumpList(sb *strings.Builder, head string, children ...*Node) {
	sb.WriteString("(" + head)
	for _, c := range children {
		sb.WriteByte(' ')
		dump(sb, c)
	}
	sb.WriteByte(')')
}

func dump(sb *strings.Builder, n *Node) {
	if n == nil {
		sb.WriteString("nil")
		return
	}
	switch d := n.Data.(type) {
	case NumNode:
		sb.WriteString(strconv.Itoa(int(d.Value)))
	case StrNode:
		sb.WriteString(strconv.Quote(d.Data))
	case IdentNode:
		sb.WriteString(d.Name)
	case VardefNode:
		sb.WriteString("(vardef " + d.Name + " " + n.Ty.String() + " " + d.Scope.String())
		if d.Init != nil {
			sb.WriteByte(' ')
			dump(sb, d.Init)
		}
		sb.WriteByte(')')
	case LvarNode:
		sb.WriteString("(lvar " + d.Scope.String() + ")")
	case GvarNode:
		sb.WriteString("(gvar " + d.Name + ")")
	case BinOpNode:
		dumpList(sb, token.TypeStrings[d.Op], d.Lhs, d.Rhs)
	case IfNode:
		if d.Else == nil {
			dumpList(sb, "if", d.Cond, d.Then)
		} else {
			dumpList(sb, "if", d.Cond, d.Then, d.Else)
		}
	case ForNode:
		dumpList(sb, "for", d.Init, d.Cond, d.Inc, d.Body)
	case DoWhileNode:
		dumpList(sb, "do", d.Body, d.Cond)
	case AddrNode:
		dumpList(sb, "addr", d.Expr)
	case DerefNode:
		dumpList(sb, "deref", d.Expr)
	case LogandNode:
		dumpList(sb, "&&", d.Lhs, d.Rhs)
	case LogorNode:
		dumpList(sb, "||", d.Lhs, d.Rhs)
	case ReturnNode:
		dumpList(sb, "return", d.Expr)
	case SizeofNode:
		dumpList(sb, "sizeof", d.Expr)
	case AlignofNode:
		dumpList(sb, "_Alignof", d.Expr)
	case CallNode:
		dumpList(sb, "call "+d.Name, d.Args...)
	case FuncNode:
		sb.WriteString("(func " + d.Name + " " + n.Ty.String() + " (")
		for i, p := range d.Params {
			if i > 0 {
				sb.WriteByte(' ')
			}
			dump(sb, p)
		}
		sb.WriteString(") ")
		dump(sb, d.Body)
		sb.WriteByte(')')
	case CompStmtNode:
		dumpList(sb, "block", d.Stmts...)
	case ExprStmtNode:
		dumpList(sb, "expr", d.Expr)
	case StmtExprNode:
		dumpList(sb, "stmt-expr", d.Body)
	case NullNode:
		sb.WriteString("null")
	default:
		sb.WriteString("(" + n.Op.String() + "?)")
	}
}
