package ir

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// SyntaxError reports a malformed line of IR text.
type SyntaxError struct {
	Name string
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("%s:%d: %s", e.Name, e.Line, e.Msg)
}

// Parse reads the text form written by Program.String. Blank lines and
// anything after '#' are ignored. name is used only in error messages.
func Parse(name, src string) (*Program, error) {
	prog := &Program{}
	var cur *Func
	seen := make(map[string]bool)

	sc := bufio.NewScanner(strings.NewReader(src))
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fail := func(format string, args ...interface{}) error {
			return &SyntaxError{Name: name, Line: lineNo, Msg: fmt.Sprintf(format, args...)}
		}

		mnemonic, rest, _ := strings.Cut(line, " ")
		if mnemonic == "func" {
			fname := strings.TrimSpace(rest)
			if fname == "" || strings.ContainsAny(fname, " \t,") {
				return nil, fail("bad function name %q", fname)
			}
			if seen[fname] {
				return nil, fail("function %q redefined", fname)
			}
			seen[fname] = true
			cur = &Func{Name: fname, File: name}
			prog.Funcs = append(prog.Funcs, cur)
			continue
		}
		if cur == nil {
			return nil, fail("instruction outside of a function")
		}

		op, ok := opByName[mnemonic]
		if !ok {
			return nil, fail("unknown instruction %q", mnemonic)
		}
		in, err := parseOperands(op, rest)
		if err != nil {
			return nil, fail("%s: %v", mnemonic, err)
		}
		cur.Code = append(cur.Code, in)
		cur.Lines = append(cur.Lines, lineNo)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return prog, nil
}

func parseOperands(op Op, rest string) (Instruction, error) {
	info := op.Info()
	var fields []string
	if rest = strings.TrimSpace(rest); rest != "" {
		for _, f := range strings.Split(rest, ",") {
			fields = append(fields, strings.TrimSpace(f))
		}
	}

	want := 0
	if info.Lhs != KindNone {
		want++
	}
	if info.Rhs != KindNone {
		want++
	}
	if len(fields) != want && !(info.RhsOptional && len(fields) == want-1) {
		return Instruction{}, fmt.Errorf("expected %d operands, got %d", want, len(fields))
	}

	in := Instruction{Op: op}
	kinds := []OperandKind{info.Lhs, info.Rhs}
	slots := []*Operand{&in.Lhs, &in.Rhs}
	for i, f := range fields {
		v, err := parseOperand(f, kinds[i])
		if err != nil {
			return Instruction{}, err
		}
		*slots[i] = R(v)
	}
	return in, nil
}

func parseOperand(s string, kind OperandKind) (int, error) {
	if kind == KindReg {
		if !strings.HasPrefix(s, "r") {
			return 0, fmt.Errorf("register expected, got %q", s)
		}
		n, err := strconv.Atoi(s[1:])
		if err != nil || n < 0 {
			return 0, fmt.Errorf("bad register %q", s)
		}
		return n, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("immediate expected, got %q", s)
	}
	return n, nil
}
