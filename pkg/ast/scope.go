package ast

import "fmt"

// Scope is the storage location of a variable. The parser emits Unresolved
// for locals; the resolution pass turns it into Local.
type Scope interface {
	isScope()
	String() string
}

type Unresolved struct{}

type Local struct{ Offset int }

type Global struct {
	Data     string
	Size     int
	IsExtern bool
}

func (Unresolved) isScope() {}
func (Local) isScope()      {}
func (Global) isScope()     {}

func (Unresolved) String() string { return "unresolved" }
func (l Local) String() string    { return fmt.Sprintf("local(%d)", l.Offset) }
func (g Global) String() string {
	if g.IsExtern {
		return "extern"
	}
	return fmt.Sprintf("global(%d)", g.Size)
}

// IsResolved reports whether s names a concrete location.
func IsResolved(s Scope) bool {
	_, pending := s.(Unresolved)
	return s != nil && !pending
}

// ResolveLocal assigns a stack offset to a Vardef whose storage is still
// Unresolved. Any other state is rejected.
func ResolveLocal(n *Node, offset int) error {
	if n == nil || n.Op != Vardef {
		return fmt.Errorf("resolve: expected a variable definition")
	}
	d := n.Data.(VardefNode)
	if _, ok := d.Scope.(Unresolved); !ok {
		return fmt.Errorf("resolve: '%s' already has storage %s", d.Name, d.Scope)
	}
	d.Scope = Local{Offset: offset}
	n.Data = d
	return nil
}
