package codegen

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xplshn/rcc/pkg/config"
	"github.com/xplshn/rcc/pkg/ir"
)

func TestQBEReturnConstant(t *testing.T) {
	il, err := GenerateIR(&ir.Func{Name: "main", Code: []ir.Instruction{ir.Imm(0, 5), ir.Ret(0)}})
	if err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"export function l $main() {",
		"@start",
		"\t%ret =l copy 0",
		"\t%r0 =l copy 5",
		"\t%ret =l copy %r0",
		"\tjmp @L0",
		"@L1",
		"@L0",
		"\tret %ret",
		"}",
		"",
	}, "\n")
	if diff := cmp.Diff(want, il); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestQBEOpcodes(t *testing.T) {
	tests := []struct {
		in   ir.Instruction
		want []string
	}{
		{ir.Mov(1, 2), []string{"%r1 =l copy %r2"}},
		{ir.Alloca(3), []string{"%r3 =l alloc8 0"}},
		{ir.AllocaN(3, 24), []string{"%r3 =l alloc8 24"}},
		{ir.Load(4, 5), []string{"%r4 =l loadl %r5"}},
		{ir.Store(6, 7), []string{"storel %r7, %r6"}},
		{ir.Add(0, 1), []string{"%r0 =l add %r0, %r1"}},
		{ir.AddImm(0, -8), []string{"%r0 =l add %r0, -8"}},
		{ir.Sub(0, 1), []string{"%r0 =l sub %r0, %r1"}},
		{ir.Mul(0, 1), []string{"%r0 =l mul %r0, %r1"}},
		{ir.Div(0, 1), []string{"%r0 =l div %r0, %r1"}},
		{ir.Nop(), nil},
		{ir.Kill(0), nil},
	}
	for _, tt := range tests {
		il, err := GenerateIR(&ir.Func{Name: "f", Code: []ir.Instruction{tt.in}})
		if err != nil {
			t.Fatalf("%s: %v", tt.in, err)
		}
		lines := strings.Split(strings.TrimSuffix(il, "\n"), "\n")
		// header, @start and %ret init before; @L0, ret and } after.
		var got []string
		for _, l := range lines[3 : len(lines)-3] {
			got = append(got, strings.TrimSpace(l))
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestQBEWordSize(t *testing.T) {
	cfg := config.NewConfig()
	cfg.WordSize = 4
	fn := &ir.Func{Name: "f", Code: []ir.Instruction{
		ir.AllocaN(0, 16), ir.Imm(1, 7), ir.Store(0, 1), ir.Load(2, 0), ir.AddImm(2, 1), ir.Ret(2),
	}}
	il, err := NewQBEBackend(cfg).(*qbeBackend).GenerateIR(fn, NewLabelAllocator())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"export function w $f() {",
		"\t%ret =w copy 0",
		"\t%r0 =l alloc4 16",
		"\t%r1 =w copy 7",
		"\tstorew %r1, %r0",
		"\t%r2 =w loadw %r0",
		"\t%r2 =w add %r2, 1",
		"\t%ret =w copy %r2",
	} {
		if !strings.Contains(il, want+"\n") {
			t.Errorf("missing %q in:\n%s", want, il)
		}
	}
}

func TestQBESharedLabels(t *testing.T) {
	b := NewQBEBackend(nil).(*qbeBackend)
	labels := NewLabelAllocator()
	fn := &ir.Func{Name: "f", Code: []ir.Instruction{ir.Imm(0, 1), ir.Ret(0)}}
	if _, err := b.GenerateIR(fn, labels); err != nil {
		t.Fatal(err)
	}
	second, err := b.GenerateIR(fn, labels)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(second, "jmp @L2\n") || !strings.Contains(second, "\n@L2\n") {
		t.Errorf("second function reused labels:\n%s", second)
	}
}

func TestQBEHasNoRegisterLimit(t *testing.T) {
	fn := &ir.Func{Name: "f", Code: []ir.Instruction{ir.Imm(200, 1), ir.Ret(200)}}
	if _, err := GenerateIR(fn); err != nil {
		t.Errorf("GenerateIR: %v", err)
	}

	bad := &ir.Func{Name: "f", Code: []ir.Instruction{{Op: ir.OpMov, Lhs: ir.R(0)}}}
	var opErr *OperandError
	if _, err := GenerateIR(bad); !errors.As(err, &opErr) {
		t.Errorf("got %v, want *OperandError", err)
	}
}
