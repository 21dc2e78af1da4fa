package codegen

import (
	"fmt"
	"strings"

	"github.com/xplshn/rcc/pkg/config"
	"github.com/xplshn/rcc/pkg/ir"
)

type qbeBackend struct {
	cfg *config.Config
	out *strings.Builder
}

// NewQBEBackend returns a backend that lowers the IR to QBE IL and runs it
// through QBE for cfg.BackendTarget.
func NewQBEBackend(cfg *config.Config) Backend {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &qbeBackend{cfg: cfg}
}

// GenerateIR returns the QBE IL for fn, numbering blocks from a fresh
// allocator.
func GenerateIR(fn *ir.Func) (string, error) {
	b := &qbeBackend{cfg: config.NewConfig()}
	return b.GenerateIR(fn, NewLabelAllocator())
}

func (b *qbeBackend) Generate(fn *ir.Func, labels *LabelAllocator) ([]string, error) {
	il, err := b.GenerateIR(fn, labels)
	if err != nil {
		return nil, err
	}
	asm, err := b.assemble(fn.Name, il)
	if err != nil {
		return nil, err
	}
	return strings.Split(strings.TrimRight(asm, "\n"), "\n"), nil
}

// GenerateIR lowers fn to one exported QBE function returning the word
// type. Every
// return copies into %ret and jumps to the single block that holds ret.
func (b *qbeBackend) GenerateIR(fn *ir.Func, labels *LabelAllocator) (string, error) {
	if err := validate(fn, -1); err != nil {
		return "", err
	}

	var sb strings.Builder
	b.out = &sb
	defer func() { b.out = nil }()

	ret := qbeLabel(labels.New())
	wt := b.wordType()
	fmt.Fprintf(b.out, "export function %s $%s() {\n", wt, fn.Name)
	b.out.WriteString("@start\n")
	b.ins("%%ret =%s copy 0", wt)
	for _, in := range fn.Code {
		b.genInstr(in, ret, labels)
	}
	fmt.Fprintf(b.out, "%s\n", ret)
	b.ins("ret %%ret")
	b.out.WriteString("}\n")
	return sb.String(), nil
}

func (b *qbeBackend) genInstr(in ir.Instruction, ret string, labels *LabelAllocator) {
	lhs := func() string { return fmt.Sprintf("%%r%d", in.Lhs.Value) }
	rhs := func() string { return fmt.Sprintf("%%r%d", in.Rhs.Value) }
	wt := b.wordType()
	arith := func(op, src string) { b.ins("%s =%s %s %s, %s", lhs(), wt, op, lhs(), src) }

	switch in.Op {
	case ir.OpImm:
		b.ins("%s =%s copy %d", lhs(), wt, in.Rhs.Value)
	case ir.OpMov:
		b.ins("%s =%s copy %s", lhs(), wt, rhs())
	case ir.OpReturn:
		b.ins("%%ret =%s copy %s", wt, lhs())
		b.ins("jmp %s", ret)
		// QBE wants a label after a jump before any further instruction.
		fmt.Fprintf(b.out, "%s\n", qbeLabel(labels.New()))
	case ir.OpAlloca:
		size := 0
		if in.Rhs.Set {
			size = in.Rhs.Value
		}
		align := 8
		if wt == "w" {
			align = 4
		}
		// Addresses are always l, whatever the word size.
		b.ins("%s =l alloc%d %d", lhs(), align, size)
	case ir.OpLoad:
		b.ins("%s =%s load%s %s", lhs(), wt, wt, rhs())
	case ir.OpStore:
		b.ins("store%s %s, %s", wt, rhs(), lhs())
	case ir.OpAdd:
		arith("add", rhs())
	case ir.OpAddImm:
		arith("add", fmt.Sprint(in.Rhs.Value))
	case ir.OpSub:
		arith("sub", rhs())
	case ir.OpMul:
		arith("mul", rhs())
	case ir.OpDiv:
		arith("div", rhs())
	case ir.OpNop, ir.OpKill:
	}
}

func (b *qbeBackend) ins(format string, args ...interface{}) {
	fmt.Fprintf(b.out, "\t"+format+"\n", args...)
}

// wordType is the QBE base type of an IR value: w for 4-byte words, l
// otherwise.
func (b *qbeBackend) wordType() string {
	if b.cfg.WordSize == 4 {
		return "w"
	}
	return "l"
}

// qbeLabel turns ".L3" into the block name "@L3".
func qbeLabel(l string) string { return "@" + strings.TrimPrefix(l, ".") }
