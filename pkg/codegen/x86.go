package codegen

import (
	"fmt"
	"math"

	"github.com/xplshn/rcc/pkg/config"
	"github.com/xplshn/rcc/pkg/ir"
	"github.com/xplshn/rcc/pkg/util"
)

// X86Regs maps virtual register ids to physical registers. rax is left
// out because mul, div and return use it implicitly.
var X86Regs = [...]string{"rdi", "rsi", "r10", "r11", "r12", "r13", "r14", "r15"}

type x86Backend struct {
	cfg *config.Config
	rep *util.Reporter
	out []string

	defined map[int]bool // registers written so far in the current function
}

// NewX86Backend returns the backend that emits Intel-syntax x86-64. rep may
// be nil, which drops warnings.
func NewX86Backend(cfg *config.Config, rep *util.Reporter) Backend {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &x86Backend{cfg: cfg, rep: rep}
}

func (b *x86Backend) Generate(fn *ir.Func, labels *LabelAllocator) ([]string, error) {
	if err := validate(fn, len(X86Regs)); err != nil {
		return nil, err
	}
	if err := checkImm32(fn); err != nil {
		return nil, err
	}

	b.out = nil
	b.defined = make(map[int]bool)
	ret := labels.New()

	b.ins("push rbp")
	b.ins("mov rbp, rsp")
	for i, in := range fn.Code {
		b.genInstr(fn, i, in, ret)
	}
	b.label(ret)
	b.ins("mov rsp, rbp")
	b.ins("pop rbp")
	b.ins("ret")

	out := b.out
	b.out = nil
	return out, nil
}

func (b *x86Backend) genInstr(fn *ir.Func, i int, in ir.Instruction, ret string) {
	lhs := func() string { return X86Regs[in.Lhs.Value] }
	rhs := func() string { return X86Regs[in.Rhs.Value] }

	switch in.Op {
	case ir.OpImm:
		b.ins("mov %s, %d", lhs(), in.Rhs.Value)
	case ir.OpMov:
		b.ins("mov %s, %s", lhs(), rhs())
	case ir.OpReturn:
		b.ins("mov rax, %s", lhs())
		b.ins("jmp %s", ret)
	case ir.OpAlloca:
		if in.Rhs.Set {
			if in.Rhs.Value%8 != 0 && b.rep != nil {
				b.rep.Warn(config.WarnUnalignedAlloca, sourcePos(b.rep, fn, i),
					"alloca of %d bytes in '%s' leaves the stack misaligned", in.Rhs.Value, fn.Name)
			}
			b.ins("sub rsp, %d", in.Rhs.Value)
		}
		b.ins("mov %s, rsp", lhs())
	case ir.OpLoad:
		b.ins("mov %s, [%s]", lhs(), rhs())
	case ir.OpStore:
		b.ins("mov [%s], %s", lhs(), rhs())
	case ir.OpAdd:
		b.ins("add %s, %s", lhs(), rhs())
	case ir.OpAddImm:
		b.ins("add %s, %d", lhs(), in.Rhs.Value)
	case ir.OpSub:
		b.ins("sub %s, %s", lhs(), rhs())
	case ir.OpMul:
		b.ins("mov rax, %s", rhs())
		b.ins("mul %s", lhs())
		b.ins("mov %s, rax", lhs())
	case ir.OpDiv:
		b.ins("mov rax, %s", lhs())
		b.ins("cqo")
		b.ins("idiv %s", rhs())
		b.ins("mov %s, rax", lhs())
	case ir.OpKill:
		if !b.defined[in.Lhs.Value] && b.rep != nil {
			b.rep.Warn(config.WarnExtra, sourcePos(b.rep, fn, i),
				"kill of r%d in '%s', which is never written before", in.Lhs.Value, fn.Name)
		}
	case ir.OpNop:
	}
	if writesLhs(in.Op) {
		b.defined[in.Lhs.Value] = true
	}
}

// writesLhs reports whether op stores a result in its lhs register.
func writesLhs(op ir.Op) bool {
	switch op {
	case ir.OpStore, ir.OpReturn, ir.OpKill, ir.OpNop:
		return false
	}
	return true
}

// checkImm32 rejects immediates that add and sub cannot encode. mov takes a
// full 64-bit immediate, so imm is exempt.
func checkImm32(fn *ir.Func) error {
	for i, in := range fn.Code {
		if in.Op != ir.OpAddImm && in.Op != ir.OpAlloca {
			continue
		}
		if v := in.Rhs.Value; in.Rhs.Set && (v < math.MinInt32 || v > math.MaxInt32) {
			return &ImmediateError{Index: i, Op: in.Op, Value: v}
		}
	}
	return nil
}

func (b *x86Backend) ins(format string, args ...interface{}) {
	b.out = append(b.out, "  "+fmt.Sprintf(format, args...))
}

func (b *x86Backend) label(l string) { b.out = append(b.out, l+":") }
