// Package driver runs the compiler pipeline over named inputs. It is shared
// by cmd/rcc and the cmd/rtest golden runner.
package driver

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xplshn/rcc/pkg/ast"
	"github.com/xplshn/rcc/pkg/codegen"
	"github.com/xplshn/rcc/pkg/config"
	"github.com/xplshn/rcc/pkg/ir"
	"github.com/xplshn/rcc/pkg/lexer"
	"github.com/xplshn/rcc/pkg/parser"
	"github.com/xplshn/rcc/pkg/token"
	"github.com/xplshn/rcc/pkg/util"
)

// ErrFailed is returned once a diagnostic has been reported for an input.
var ErrFailed = errors.New("compilation failed")

type Options struct {
	DumpAST bool // write the AST of C inputs
	DumpIR  bool // write IR inputs back out instead of compiling them
}

// Session compiles any number of inputs into one output. All functions share
// a label allocator so the combined assembly has no duplicate labels.
type Session struct {
	cfg     *config.Config
	rep     *util.Reporter
	out     io.Writer
	opts    Options
	backend codegen.Backend
	labels  *codegen.LabelAllocator
	emitted bool
}

func NewSession(cfg *config.Config, rep *util.Reporter, out io.Writer, opts Options) (*Session, error) {
	backend, err := codegen.NewBackend(cfg, rep)
	if err != nil {
		return nil, err
	}
	return &Session{
		cfg: cfg, rep: rep, out: out, opts: opts,
		backend: backend, labels: codegen.NewLabelAllocator(),
	}, nil
}

// CompileFile dispatches on the file extension: .ir files are compiled,
// anything else is parsed as C.
func (s *Session) CompileFile(name string, content []byte) error {
	fileIndex := s.rep.AddSourceFile(name, []rune(string(content)))
	if filepath.Ext(name) == ".ir" {
		return s.compileIR(name, fileIndex, string(content))
	}
	return s.parseC(fileIndex, string(content))
}

func (s *Session) parseC(fileIndex int, src string) error {
	toks, err := lexer.NewLexer([]rune(src), fileIndex).All()
	if err != nil {
		var lexErr *lexer.Error
		if errors.As(err, &lexErr) {
			s.rep.Error(lexErr.Tok, "%s", lexErr.Msg)
		} else {
			s.rep.Error(token.Token{FileIndex: fileIndex}, "%v", err)
		}
		return ErrFailed
	}

	nodes, err := parser.NewParser(toks, s.cfg, s.rep).Parse()
	if err != nil {
		var perr *parser.Error
		if errors.As(err, &perr) {
			s.rep.Error(perr.Got, "%v", perr)
		} else {
			s.rep.Error(token.Token{FileIndex: fileIndex}, "%v", err)
		}
		return ErrFailed
	}

	if s.opts.DumpAST {
		_, err = io.WriteString(s.out, ast.DumpAll(nodes))
	}
	return err
}

func (s *Session) compileIR(name string, fileIndex int, src string) error {
	prog, err := ir.Parse(name, src)
	if err != nil {
		var serr *ir.SyntaxError
		if errors.As(err, &serr) {
			s.rep.Error(token.Token{FileIndex: fileIndex, Line: serr.Line, Column: 1}, "%s", serr.Msg)
		} else {
			s.rep.Error(token.Token{FileIndex: fileIndex}, "%v", err)
		}
		return ErrFailed
	}

	if s.opts.DumpIR {
		return s.dumpIR(prog)
	}

	for _, fn := range prog.Funcs {
		lines, err := s.backend.Generate(fn, s.labels)
		if err != nil {
			s.reportCodegenError(fileIndex, fn, err)
			return ErrFailed
		}
		if err := s.write(fn, lines); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) dumpIR(prog *ir.Program) error {
	if s.cfg.BackendName != "qbe" {
		_, err := io.WriteString(s.out, prog.String())
		return err
	}
	for _, fn := range prog.Funcs {
		il, err := codegen.GenerateIR(fn)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(s.out, il); err != nil {
			return err
		}
	}
	return nil
}

// write emits one function. QBE output is complete assembly on its own; x86
// output gets the syntax directive once and a global symbol per function.
func (s *Session) write(fn *ir.Func, lines []string) error {
	var sb strings.Builder
	if s.cfg.BackendName != "qbe" {
		if !s.emitted {
			sb.WriteString(".intel_syntax noprefix\n")
		}
		fmt.Fprintf(&sb, ".globl %s\n%s:\n", fn.Name, fn.Name)
	}
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	s.emitted = true
	_, err := io.WriteString(s.out, sb.String())
	return err
}

func (s *Session) reportCodegenError(fileIndex int, fn *ir.Func, err error) {
	tok := token.Token{FileIndex: fileIndex}
	var regErr *codegen.RegisterError
	var opErr *codegen.OperandError
	var immErr *codegen.ImmediateError
	switch {
	case errors.As(err, &regErr):
		tok.Line, tok.Column = fn.Line(regErr.Index), 1
	case errors.As(err, &opErr):
		tok.Line, tok.Column = fn.Line(opErr.Index), 1
	case errors.As(err, &immErr):
		tok.Line, tok.Column = fn.Line(immErr.Index), 1
	}
	s.rep.Error(tok, "in function '%s': %v", fn.Name, err)
}
