package token

import "fmt"

type Type int

const (
	EOF Type = iota
	Number
	String
	Ident
	Int
	Char
	If
	Else
	For
	While
	Do
	Return
	Extern
	Sizeof
	Alignof
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Semi
	Colon
	Eq
	Plus
	Minus
	Star
	Slash
	And
	Lt
	Gt
	EqEq
	Neq
	AndAnd
	OrOr
)

var KeywordMap = map[string]Type{
	"int":      Int,
	"char":     Char,
	"if":       If,
	"else":     Else,
	"for":      For,
	"while":    While,
	"do":       Do,
	"return":   Return,
	"extern":   Extern,
	"sizeof":   Sizeof,
	"_Alignof": Alignof,
}

var punctStrings = map[Type]string{
	LParen:   "(",
	RParen:   ")",
	LBrace:   "{",
	RBrace:   "}",
	LBracket: "[",
	RBracket: "]",
	Semi:     ";",
	Colon:    ":",
	Eq:       "=",
	Plus:     "+",
	Minus:    "-",
	Star:     "*",
	Slash:    "/",
	And:      "&",
	Lt:       "<",
	Gt:       ">",
	EqEq:     "==",
	Neq:      "!=",
	AndAnd:   "&&",
	OrOr:     "||",
}

// Reverse mapping from Type to the keyword string
var TypeStrings = make(map[Type]string)

func init() {
	for str, typ := range KeywordMap {
		TypeStrings[typ] = str
	}
	for typ, str := range punctStrings {
		TypeStrings[typ] = str
	}
}

// String describes the token kind the way diagnostics print it.
func (t Type) String() string {
	switch t {
	case EOF:
		return "end of input"
	case Number:
		return "number"
	case String:
		return "string literal"
	case Ident:
		return "identifier"
	}
	if s, ok := TypeStrings[t]; ok {
		return "'" + s + "'"
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// IsTypeKeyword reports whether t starts a base type (`int` or `char`).
func (t Type) IsTypeKeyword() bool { return t == Int || t == Char }

type Token struct {
	Type      Type
	Value     string // raw source text
	Num       int32  // payload of Number
	Str       string // payload of String, escapes decoded
	FileIndex int
	Line      int
	Column    int
	Len       int
}

func NewNumber(n int32) Token {
	return Token{Type: Number, Value: fmt.Sprint(n), Num: n}
}

func NewString(s string) Token {
	return Token{Type: String, Value: fmt.Sprintf("%q", s), Str: s}
}

func NewIdent(name string) Token {
	return Token{Type: Ident, Value: name}
}

// New builds a keyword or punctuation token whose raw text is its spelling.
func New(t Type) Token {
	return Token{Type: t, Value: TypeStrings[t]}
}
