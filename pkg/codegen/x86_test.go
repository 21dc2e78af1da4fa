package codegen

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xplshn/rcc/pkg/config"
	"github.com/xplshn/rcc/pkg/ir"
	"github.com/xplshn/rcc/pkg/util"
)

func generate(t *testing.T, labels *LabelAllocator, code ...ir.Instruction) []string {
	t.Helper()
	lines, err := NewX86Backend(nil, nil).Generate(&ir.Func{Name: "f", Code: code}, labels)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return lines
}

func count(lines []string, want string) int {
	n := 0
	for _, l := range lines {
		if strings.TrimSpace(l) == want {
			n++
		}
	}
	return n
}

func TestReturnConstant(t *testing.T) {
	got := generate(t, NewLabelAllocator(), ir.Imm(0, 5), ir.Ret(0))
	want := []string{
		"  push rbp",
		"  mov rbp, rsp",
		"  mov rdi, 5",
		"  mov rax, rdi",
		"  jmp .L0",
		".L0:",
		"  mov rsp, rbp",
		"  pop rbp",
		"  ret",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestOpcodeTable(t *testing.T) {
	tests := []struct {
		in   ir.Instruction
		want []string
	}{
		{ir.Mov(1, 2), []string{"mov rsi, r10"}},
		{ir.Alloca(3), []string{"mov r11, rsp"}},
		{ir.AllocaN(3, 32), []string{"sub rsp, 32", "mov r11, rsp"}},
		{ir.Load(4, 5), []string{"mov r12, [r13]"}},
		{ir.Store(6, 7), []string{"mov [r14], r15"}},
		{ir.Add(0, 1), []string{"add rdi, rsi"}},
		{ir.AddImm(0, -8), []string{"add rdi, -8"}},
		{ir.Sub(1, 0), []string{"sub rsi, rdi"}},
		{ir.Mul(0, 1), []string{"mov rax, rsi", "mul rdi", "mov rdi, rax"}},
		{ir.Div(0, 1), []string{"mov rax, rdi", "cqo", "idiv rsi", "mov rdi, rax"}},
		{ir.Nop(), nil},
		{ir.Kill(2), nil},
	}
	for _, tt := range tests {
		lines := generate(t, NewLabelAllocator(), tt.in)
		// Strip the fixed prologue and epilogue.
		body := lines[2 : len(lines)-4]
		var got []string
		for _, l := range body {
			got = append(got, strings.TrimSpace(l))
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestSingleEpilogue(t *testing.T) {
	lines := generate(t, NewLabelAllocator(),
		ir.Imm(0, 1), ir.Ret(0), ir.Imm(1, 2), ir.Ret(1), ir.Ret(0))
	if n := count(lines, "pop rbp"); n != 1 {
		t.Errorf("%d pop instructions", n)
	}
	if n := count(lines, "ret"); n != 1 {
		t.Errorf("%d ret instructions", n)
	}
	if n := count(lines, "jmp .L0"); n != 3 {
		t.Errorf("%d jumps to the return label, want 3", n)
	}

	empty := generate(t, NewLabelAllocator())
	if count(empty, "pop rbp") != 1 || count(empty, "ret") != 1 {
		t.Errorf("empty function: %q", empty)
	}
}

func TestLabelsAreUniqueAcrossFunctions(t *testing.T) {
	labels := NewLabelAllocator()
	first := generate(t, labels, ir.Imm(0, 1), ir.Ret(0))
	second := generate(t, labels, ir.Imm(0, 2), ir.Ret(0))
	if count(first, ".L0:") != 1 || count(second, ".L1:") != 1 {
		t.Errorf("first=%q second=%q", first, second)
	}
	if labels.Count() != 2 {
		t.Errorf("Count = %d, want 2", labels.Count())
	}

	var zero LabelAllocator
	if l := zero.New(); l != ".L0" {
		t.Errorf("zero value allocator returned %q", l)
	}
}

func TestRegisterOverflow(t *testing.T) {
	for _, in := range []ir.Instruction{
		ir.Imm(len(X86Regs), 1),
		ir.Mov(0, 8),
		ir.Ret(100),
		ir.Imm(-1, 0),
	} {
		fn := &ir.Func{Name: "f", Code: []ir.Instruction{ir.Imm(0, 1), in}}
		for attempt := 0; attempt < 2; attempt++ {
			lines, err := NewX86Backend(nil, nil).Generate(fn, NewLabelAllocator())
			var regErr *RegisterError
			if !errors.As(err, &regErr) {
				t.Fatalf("%s: got %v, want *RegisterError", in, err)
			}
			if regErr.Index != 1 || regErr.Limit != len(X86Regs) {
				t.Errorf("%s: got %+v", in, regErr)
			}
			if lines != nil {
				t.Errorf("%s: partial output %q", in, lines)
			}
		}
	}

	// Immediates are not register ids.
	generate(t, NewLabelAllocator(), ir.Imm(0, 1000), ir.AllocaN(1, 4096))
}

func TestMissingOperand(t *testing.T) {
	tests := []struct {
		in      ir.Instruction
		operand string
	}{
		{ir.Instruction{Op: ir.OpImm, Lhs: ir.R(0)}, "rhs"},
		{ir.Instruction{Op: ir.OpReturn}, "lhs"},
		{ir.Instruction{Op: ir.OpStore, Lhs: ir.R(0)}, "rhs"},
		{ir.Instruction{Op: ir.Op(99), Lhs: ir.R(0)}, "opcode"},
	}
	for _, tt := range tests {
		fn := &ir.Func{Name: "f", Code: []ir.Instruction{tt.in}}
		_, err := NewX86Backend(nil, nil).Generate(fn, NewLabelAllocator())
		var opErr *OperandError
		if !errors.As(err, &opErr) {
			t.Fatalf("%v: got %v, want *OperandError", tt.in, err)
		}
		if opErr.Index != 0 || opErr.Operand != tt.operand {
			t.Errorf("got %+v, want operand %s", opErr, tt.operand)
		}
	}
}

func TestUnalignedAllocaWarning(t *testing.T) {
	src := "func f\n  alloca r0, 12\n  alloca r1, 16\n  ret r0\n"
	prog, err := ir.Parse("f.ir", src)
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.NewConfig()
	var buf bytes.Buffer
	rep := util.NewReporter(&buf, cfg)
	rep.AddSourceFile("f.ir", []rune(src))

	lines, err := NewX86Backend(cfg, rep).Generate(prog.Funcs[0], NewLabelAllocator())
	if err != nil {
		t.Fatal(err)
	}
	if count(lines, "sub rsp, 12") != 1 {
		t.Errorf("alloca size was altered: %q", lines)
	}
	if rep.WarningCount() != 1 {
		t.Errorf("WarningCount = %d, want 1", rep.WarningCount())
	}
	if !strings.HasPrefix(buf.String(), "f.ir:2:1: ") || !strings.Contains(buf.String(), "[-Wunaligned-alloca]") {
		t.Errorf("unexpected diagnostic %q", buf.String())
	}

	cfg.SetWarning(config.WarnUnalignedAlloca, false)
	buf.Reset()
	if _, err := NewX86Backend(cfg, rep).Generate(prog.Funcs[0], NewLabelAllocator()); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("disabled warning printed %q", buf.String())
	}
}

func TestWideImmediates(t *testing.T) {
	for _, in := range []ir.Instruction{ir.AddImm(0, 1<<40), ir.AllocaN(1, 1<<33), ir.AddImm(0, -(1<<31) - 1)} {
		fn := &ir.Func{Name: "f", Code: []ir.Instruction{ir.Imm(0, 1), in}}
		lines, err := NewX86Backend(nil, nil).Generate(fn, NewLabelAllocator())
		var immErr *ImmediateError
		if !errors.As(err, &immErr) {
			t.Fatalf("%s: got %v, want *ImmediateError", in, err)
		}
		if immErr.Index != 1 || immErr.Value != in.Rhs.Value || lines != nil {
			t.Errorf("%s: got %+v, lines %q", in, immErr, lines)
		}
	}

	// mov accepts 64-bit immediates; the 32-bit edges still fit add.
	lines := generate(t, NewLabelAllocator(), ir.Imm(0, 1<<40), ir.AddImm(0, -(1 << 31)), ir.AddImm(0, 1<<31-1))
	if count(lines, "mov rdi, 1099511627776") != 1 || count(lines, "add rdi, 2147483647") != 1 {
		t.Errorf("unexpected output %q", lines)
	}
}

func TestKillIsNotBounded(t *testing.T) {
	lines := generate(t, NewLabelAllocator(), ir.Imm(0, 1), ir.Kill(50), ir.Ret(0))
	if count(lines, "ret") != 1 {
		t.Errorf("unexpected output %q", lines)
	}

	fn := &ir.Func{Name: "f", Code: []ir.Instruction{ir.Kill(-1)}}
	var regErr *RegisterError
	if _, err := NewX86Backend(nil, nil).Generate(fn, NewLabelAllocator()); !errors.As(err, &regErr) {
		t.Errorf("kill r-1: got %v, want *RegisterError", err)
	}
}

func TestKillOfUnwrittenRegister(t *testing.T) {
	src := "func f\n  imm r0, 1\n  kill r0\n  kill r3\n  ret r0\n"
	prog, err := ir.Parse("k.ir", src)
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.NewConfig()
	var buf bytes.Buffer
	rep := util.NewReporter(&buf, cfg)
	rep.AddSourceFile("k.ir", []rune(src))

	if _, err := NewX86Backend(cfg, rep).Generate(prog.Funcs[0], NewLabelAllocator()); err != nil {
		t.Fatal(err)
	}
	if rep.WarningCount() != 1 {
		t.Errorf("WarningCount = %d, want 1", rep.WarningCount())
	}
	if !strings.HasPrefix(buf.String(), "k.ir:4:1: ") || !strings.Contains(buf.String(), "r3") || !strings.Contains(buf.String(), "[-Wextra]") {
		t.Errorf("unexpected diagnostic %q", buf.String())
	}

	cfg.SetWarning(config.WarnExtra, false)
	buf.Reset()
	if _, err := NewX86Backend(cfg, rep).Generate(prog.Funcs[0], NewLabelAllocator()); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("-Wno-extra printed %q", buf.String())
	}
}

func TestNewBackend(t *testing.T) {
	cfg := config.NewConfig()
	if _, err := NewBackend(cfg, nil); err != nil {
		t.Error(err)
	}
	cfg.BackendName = "llvm"
	if _, err := NewBackend(cfg, nil); err == nil {
		t.Error("unknown backend accepted")
	}
}
