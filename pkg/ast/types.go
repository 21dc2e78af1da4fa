package ast

import "fmt"

// CtypeKind defines the kind of a Type
type CtypeKind int

const (
	TYPE_INT CtypeKind = iota
	TYPE_CHAR
	TYPE_PTR
	TYPE_ARY
)

// Type is a declared C type. Base is the pointee or element type and is
// owned by this Type alone.
type Type struct {
	Kind CtypeKind
	Base *Type
	Len  int // element count of TYPE_ARY
}

func NewType(kind CtypeKind) *Type { return &Type{Kind: kind} }

func PtrTo(base *Type) *Type { return &Type{Kind: TYPE_PTR, Base: base} }

func AryOf(base *Type, length int) *Type { return &Type{Kind: TYPE_ARY, Base: base, Len: length} }

func (t *Type) String() string {
	if t == nil {
		return "int"
	}
	switch t.Kind {
	case TYPE_CHAR:
		return "char"
	case TYPE_PTR:
		return t.Base.String() + "*"
	case TYPE_ARY:
		// int[2][3]: dimensions print outermost first, as declared.
		dims := ""
		for ; t != nil && t.Kind == TYPE_ARY; t = t.Base {
			dims += fmt.Sprintf("[%d]", t.Len)
		}
		return t.String() + dims
	default:
		return "int"
	}
}

// SizeOf returns the storage size in bytes.
func SizeOf(t *Type) int {
	if t == nil {
		return 4
	}
	switch t.Kind {
	case TYPE_CHAR:
		return 1
	case TYPE_PTR:
		return 8
	case TYPE_ARY:
		return SizeOf(t.Base) * t.Len
	default:
		return 4
	}
}

// AlignOf returns the required alignment in bytes. Arrays align like
// their elements.
func AlignOf(t *Type) int {
	if t == nil {
		return 4
	}
	switch t.Kind {
	case TYPE_CHAR:
		return 1
	case TYPE_PTR:
		return 8
	case TYPE_ARY:
		return AlignOf(t.Base)
	default:
		return 4
	}
}
