package codegen

import (
	"fmt"

	"github.com/xplshn/rcc/pkg/config"
	"github.com/xplshn/rcc/pkg/ir"
	"github.com/xplshn/rcc/pkg/token"
	"github.com/xplshn/rcc/pkg/util"
)

// Backend is the interface that all code generation backends must implement.
type Backend interface {
	// Generate translates one function into assembly lines. Labels are drawn
	// from labels, so functions generated with the same allocator never
	// share a label.
	Generate(fn *ir.Func, labels *LabelAllocator) ([]string, error)
}

// NewBackend returns the backend named by cfg.BackendName.
func NewBackend(cfg *config.Config, rep *util.Reporter) (Backend, error) {
	switch cfg.BackendName {
	case "", "x86":
		return NewX86Backend(cfg, rep), nil
	case "qbe":
		return NewQBEBackend(cfg), nil
	}
	return nil, fmt.Errorf("unsupported backend '%s'", cfg.BackendName)
}

// RegisterError reports a virtual register that has no physical register.
type RegisterError struct {
	Index int // instruction index
	Reg   int
	Limit int
}

func (e *RegisterError) Error() string {
	return fmt.Sprintf("instruction %d: virtual register r%d out of range (only %d registers available)", e.Index, e.Reg, e.Limit)
}

// OperandError reports an instruction that lacks an operand its opcode
// requires, or carries an opcode no backend knows.
type OperandError struct {
	Index   int
	Op      ir.Op
	Operand string // "lhs", "rhs" or "opcode"
}

func (e *OperandError) Error() string {
	if e.Operand == "opcode" {
		return fmt.Sprintf("instruction %d: unknown opcode %d", e.Index, int(e.Op))
	}
	return fmt.Sprintf("instruction %d: %s is missing its %s operand", e.Index, e.Op, e.Operand)
}

// ImmediateError reports an immediate operand the target cannot encode.
type ImmediateError struct {
	Index int
	Op    ir.Op
	Value int
}

func (e *ImmediateError) Error() string {
	return fmt.Sprintf("instruction %d: %s immediate %d does not fit in 32 bits", e.Index, e.Op, e.Value)
}

// validate checks every instruction of fn before anything is emitted. A
// negative limit disables the register bound.
func validate(fn *ir.Func, limit int) error {
	for i, in := range fn.Code {
		if in.Op < ir.OpImm || in.Op > ir.OpKill {
			return &OperandError{Index: i, Op: in.Op, Operand: "opcode"}
		}
		info := in.Op.Info()
		if info.Lhs != ir.KindNone && !in.Lhs.Set {
			return &OperandError{Index: i, Op: in.Op, Operand: "lhs"}
		}
		if info.Rhs != ir.KindNone && !in.Rhs.Set && !info.RhsOptional {
			return &OperandError{Index: i, Op: in.Op, Operand: "rhs"}
		}
		for _, slot := range []struct {
			kind ir.OperandKind
			o    ir.Operand
		}{{info.Lhs, in.Lhs}, {info.Rhs, in.Rhs}} {
			if slot.kind != ir.KindReg || !slot.o.Set {
				continue
			}
			// kill emits nothing, so its register never needs a slot.
			bounded := limit >= 0 && in.Op != ir.OpKill
			if slot.o.Value < 0 || (bounded && slot.o.Value >= limit) {
				return &RegisterError{Index: i, Reg: slot.o.Value, Limit: limit}
			}
		}
	}
	return nil
}

// sourcePos locates instruction i of fn for diagnostics.
func sourcePos(rep *util.Reporter, fn *ir.Func, i int) token.Token {
	return token.Token{FileIndex: rep.FileIndex(fn.File), Line: fn.Line(i), Column: 1, Len: 1}
}
