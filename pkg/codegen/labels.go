package codegen

import "fmt"

// LabelAllocator hands out assembly labels. The zero value is ready to use.
// It is not safe for concurrent use; give each goroutine its own.
type LabelAllocator struct {
	next int
}

func NewLabelAllocator() *LabelAllocator { return &LabelAllocator{} }

// New returns the next unused label: .L0, .L1 and so on.
func (a *LabelAllocator) New() string {
	l := fmt.Sprintf(".L%d", a.next)
	a.next++
	return l
}

// Count is the number of labels handed out so far.
func (a *LabelAllocator) Count() int { return a.next }
