package ir

import (
	"fmt"
	"strings"
)

type Op int

const (
	OpImm Op = iota
	OpMov
	OpReturn
	OpAlloca
	OpLoad
	OpStore
	OpAdd
	OpAddImm
	OpSub
	OpMul
	OpDiv
	OpNop
	OpKill
)

// OperandKind says what an instruction slot holds.
type OperandKind int

const (
	KindNone OperandKind = iota
	KindReg
	KindImm
)

// OpInfo describes the operand shape of an opcode.
type OpInfo struct {
	Name        string
	Lhs         OperandKind
	Rhs         OperandKind
	RhsOptional bool
}

var opInfos = [...]OpInfo{
	OpImm:    {"imm", KindReg, KindImm, false},
	OpMov:    {"mov", KindReg, KindReg, false},
	OpReturn: {"ret", KindReg, KindNone, false},
	OpAlloca: {"alloca", KindReg, KindImm, true},
	OpLoad:   {"load", KindReg, KindReg, false},
	OpStore:  {"store", KindReg, KindReg, false},
	OpAdd:    {"add", KindReg, KindReg, false},
	OpAddImm: {"addi", KindReg, KindImm, false},
	OpSub:    {"sub", KindReg, KindReg, false},
	OpMul:    {"mul", KindReg, KindReg, false},
	OpDiv:    {"div", KindReg, KindReg, false},
	OpNop:    {"nop", KindNone, KindNone, false},
	OpKill:   {"kill", KindReg, KindNone, false},
}

var opByName = make(map[string]Op)

func init() {
	for op, info := range opInfos {
		opByName[info.Name] = Op(op)
	}
}

func (op Op) Info() OpInfo {
	if int(op) < 0 || int(op) >= len(opInfos) {
		return OpInfo{Name: fmt.Sprintf("op(%d)", int(op))}
	}
	return opInfos[op]
}

func (op Op) String() string { return op.Info().Name }

// Operand is an optional virtual register id or immediate.
type Operand struct {
	Value int
	Set   bool
}

func R(v int) Operand { return Operand{Value: v, Set: true} }

var None = Operand{}

type Instruction struct {
	Op  Op
	Lhs Operand
	Rhs Operand
}

func Imm(dst, val int) Instruction { return Instruction{OpImm, R(dst), R(val)} }
func Mov(dst, src int) Instruction { return Instruction{OpMov, R(dst), R(src)} }
func Ret(src int) Instruction { return Instruction{OpReturn, R(src), None} }
func Alloca(dst int) Instruction { return Instruction{OpAlloca, R(dst), None} }
func AllocaN(dst, size int) Instruction { return Instruction{OpAlloca, R(dst), R(size)} }
func Load(dst, src int) Instruction { return Instruction{OpLoad, R(dst), R(src)} }
func Store(dst, src int) Instruction { return Instruction{OpStore, R(dst), R(src)} }
func Add(dst, src int) Instruction { return Instruction{OpAdd, R(dst), R(src)} }
func AddImm(dst, val int) Instruction { return Instruction{OpAddImm, R(dst), R(val)} }
func Sub(dst, src int) Instruction { return Instruction{OpSub, R(dst), R(src)} }
func Mul(dst, src int) Instruction { return Instruction{OpMul, R(dst), R(src)} }
func Div(dst, src int) Instruction { return Instruction{OpDiv, R(dst), R(src)} }
func Nop() Instruction { return Instruction{Op: OpNop} }
func Kill(r int) Instruction { return Instruction{OpKill, R(r), None} }

func formatOperand(o Operand, kind OperandKind) string {
	if kind == KindReg {
		return fmt.Sprintf("r%d", o.Value)
	}
	return fmt.Sprint(o.Value)
}

// String renders the instruction in the text form read by Parse.
func (in Instruction) String() string {
	info := in.Op.Info()
	parts := []string{}
	if in.Lhs.Set {
		parts = append(parts, formatOperand(in.Lhs, info.Lhs))
	}
	if in.Rhs.Set {
		kind := info.Rhs
		if kind == KindNone {
			kind = KindImm
		}
		parts = append(parts, formatOperand(in.Rhs, kind))
	}
	if len(parts) == 0 {
		return info.Name
	}
	return info.Name + " " + strings.Join(parts, ", ")
}

// Func is the IR of one function body. File and Lines locate each
// instruction in IR text and are empty for functions built in code.
type Func struct {
	Name  string
	Code  []Instruction
	File  string
	Lines []int
}

// Line returns the source line of instruction i, or 0 if unknown.
func (f *Func) Line(i int) int {
	if i < len(f.Lines) {
		return f.Lines[i]
	}
	return 0
}

func (f *Func) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "func %s\n", f.Name)
	for _, in := range f.Code {
		fmt.Fprintf(&sb, "  %s\n", in)
	}
	return sb.String()
}

// MaxReg returns the highest virtual register id used by f, or -1.
func (f *Func) MaxReg() int {
	highest := -1
	for _, in := range f.Code {
		info := in.Op.Info()
		if info.Lhs == KindReg && in.Lhs.Set {
			highest = max(highest, in.Lhs.Value)
		}
		if info.Rhs == KindReg && in.Rhs.Set {
			highest = max(highest, in.Rhs.Value)
		}
	}
	return highest
}

type Program struct {
	Funcs []*Func
}

func (p *Program) FindFunc(name string) *Func {
	for _, f := range p.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (p *Program) String() string {
	var sb strings.Builder
	for i, f := range p.Funcs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(f.String())
	}
	return sb.String()
}
