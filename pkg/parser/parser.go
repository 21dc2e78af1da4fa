package parser

import (
	"fmt"

	"github.com/xplshn/rcc/pkg/ast"
	"github.com/xplshn/rcc/pkg/config"
	"github.com/xplshn/rcc/pkg/token"
	"github.com/xplshn/rcc/pkg/util"
)

type ErrorKind int

const (
	ErrSyntax   ErrorKind = iota // a specific token was required
	ErrTypename                  // a base type was required
	ErrIdent                     // a variable, parameter or function name was required
	ErrArrayLen                  // an array dimension was not a number literal
	ErrDisabled                  // the construct is turned off in the configuration
)

var errorKindNames = [...]string{
	ErrSyntax:   "syntax error",
	ErrTypename: "missing typename",
	ErrIdent:    "missing identifier",
	ErrArrayLen: "bad array length",
	ErrDisabled: "disabled feature",
}

func (k ErrorKind) String() string { return errorKindNames[k] }

// Error is the first structural mismatch found in the token stream.
type Error struct {
	Kind     ErrorKind
	Expected string
	Got      token.Token
}

func (e *Error) Error() string {
	if e.Kind == ErrDisabled {
		return fmt.Sprintf("%q is not allowed here (enable with -F%s)", e.Got.Value, e.Expected)
	}
	if e.Got.Type == token.EOF {
		return fmt.Sprintf("%s expected, but got %s", e.Expected, e.Got.Type)
	}
	return fmt.Sprintf("%s expected, but got %s %q", e.Expected, e.Got.Type, e.Got.Value)
}

// Parser holds the state for the parsing process
type Parser struct {
	tokens   []token.Token
	pos      int
	current  token.Token
	previous token.Token
	cfg      *config.Config
	rep      *util.Reporter
}

// bailout carries an *Error from the point of failure back to Parse.
type bailout struct{ err *Error }

// NewParser creates and initializes a new Parser from a token stream. A nil
// cfg selects the defaults; a nil rep discards warnings.
func NewParser(tokens []token.Token, cfg *config.Config, rep *util.Reporter) *Parser {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	p := &Parser{tokens: tokens, cfg: cfg, rep: rep}
	p.current = p.at(0)
	return p
}

// Parse parses tokens with the default configuration.
func Parse(tokens []token.Token) ([]*ast.Node, error) {
	return NewParser(tokens, nil, nil).Parse()
}

// Parse reads top-level declarations until the end of input. On error no
// nodes are returned.
func (p *Parser) Parse() ([]*ast.Node, error) {
	return p.run(p.parseToplevel)
}

// ParseStatements reads statements, as found in a function body, until the
// end of input.
func (p *Parser) ParseStatements() ([]*ast.Node, error) {
	return p.run(p.parseStmt)
}

// ParseExpr reads a single expression that must span the whole input.
func (p *Parser) ParseExpr() (*ast.Node, error) {
	if p.check(token.EOF) {
		return nil, &Error{Kind: ErrSyntax, Expected: "expression", Got: p.current}
	}
	nodes, err := p.run(func() *ast.Node {
		n := p.parseAssignExpr()
		if !p.check(token.EOF) {
			p.fail(ErrSyntax, token.EOF.String())
		}
		return n
	})
	if err != nil {
		return nil, err
	}
	return nodes[0], nil
}

func (p *Parser) run(item func() *ast.Node) (nodes []*ast.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			nodes, err = nil, b.err
		}
	}()

	for !p.check(token.EOF) {
		nodes = append(nodes, item())
	}
	return nodes, nil
}

// Parser helpers

// at returns the token at index i, or a synthesized EOF past the end.
func (p *Parser) at(i int) token.Token {
	if i < len(p.tokens) {
		return p.tokens[i]
	}
	eof := token.Token{Type: token.EOF}
	if n := len(p.tokens); n > 0 {
		last := p.tokens[n-1]
		eof.FileIndex, eof.Line, eof.Column = last.FileIndex, last.Line, last.Column+last.Len
	}
	return eof
}

func (p *Parser) advance() {
	p.previous = p.current
	if p.pos < len(p.tokens) {
		p.pos++
	}
	p.current = p.at(p.pos)
}

func (p *Parser) check(tokType token.Type) bool {
	return p.current.Type == tokType
}

func (p *Parser) match(tokType token.Type) bool {
	if !p.check(tokType) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) expect(tokType token.Type) {
	if !p.match(tokType) {
		p.fail(ErrSyntax, tokType.String())
	}
}

func (p *Parser) fail(kind ErrorKind, expected string) {
	panic(bailout{&Error{Kind: kind, Expected: expected, Got: p.current}})
}

func (p *Parser) requireFeature(ft config.Feature) {
	if !p.cfg.IsFeatureEnabled(ft) {
		p.fail(ErrDisabled, p.cfg.Features[ft].Name)
	}
}

func (p *Parser) warn(wt config.Warning, tok token.Token, format string, args ...interface{}) {
	if p.rep != nil {
		p.rep.Warn(wt, tok, format, args...)
	}
}
