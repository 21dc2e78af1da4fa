package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/xplshn/rcc/pkg/token"
)

// Error is a lexical error located at Tok.
type Error struct {
	Tok token.Token
	Msg string
}

func (e *Error) Error() string { return fmt.Sprintf("%d:%d: %s", e.Tok.Line, e.Tok.Column, e.Msg) }

type Lexer struct {
	source    []rune
	fileIndex int
	pos       int
	line      int
	column    int
}

func NewLexer(source []rune, fileIndex int) *Lexer {
	return &Lexer{source: source, fileIndex: fileIndex, line: 1, column: 1}
}

// Tokenize lexes src completely. The result always ends with an EOF token.
func Tokenize(src string) ([]token.Token, error) {
	return NewLexer([]rune(src), 0).All()
}

// All returns the remaining tokens, EOF included.
func (l *Lexer) All() ([]token.Token, error) {
	var toks []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks, nil
		}
	}
}

func (l *Lexer) Next() (token.Token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return token.Token{}, err
	}
	startPos, startCol, startLine := l.pos, l.column, l.line

	if l.isAtEnd() {
		return l.makeToken(token.EOF, startPos, startCol, startLine), nil
	}

	ch := l.peek()
	if unicode.IsLetter(ch) || ch == '_' {
		return l.identifierOrKeyword(startPos, startCol, startLine), nil
	}
	if isDigit(ch) {
		return l.numberLiteral(startPos, startCol, startLine)
	}

	l.advance()
	switch ch {
	case '(':
		return l.makeToken(token.LParen, startPos, startCol, startLine), nil
	case ')':
		return l.makeToken(token.RParen, startPos, startCol, startLine), nil
	case '{':
		return l.makeToken(token.LBrace, startPos, startCol, startLine), nil
	case '}':
		return l.makeToken(token.RBrace, startPos, startCol, startLine), nil
	case '[':
		return l.makeToken(token.LBracket, startPos, startCol, startLine), nil
	case ']':
		return l.makeToken(token.RBracket, startPos, startCol, startLine), nil
	case ';':
		return l.makeToken(token.Semi, startPos, startCol, startLine), nil
	case ':':
		return l.makeToken(token.Colon, startPos, startCol, startLine), nil
	case '+':
		return l.makeToken(token.Plus, startPos, startCol, startLine), nil
	case '-':
		return l.makeToken(token.Minus, startPos, startCol, startLine), nil
	case '*':
		return l.makeToken(token.Star, startPos, startCol, startLine), nil
	case '/':
		return l.makeToken(token.Slash, startPos, startCol, startLine), nil
	case '<':
		return l.makeToken(token.Lt, startPos, startCol, startLine), nil
	case '>':
		return l.makeToken(token.Gt, startPos, startCol, startLine), nil
	case '&':
		return l.matchThen('&', token.AndAnd, token.And, startPos, startCol, startLine), nil
	case '=':
		return l.matchThen('=', token.EqEq, token.Eq, startPos, startCol, startLine), nil
	case '|':
		if l.match('|') {
			return l.makeToken(token.OrOr, startPos, startCol, startLine), nil
		}
	case '!':
		if l.match('=') {
			return l.makeToken(token.Neq, startPos, startCol, startLine), nil
		}
	case '"':
		return l.stringLiteral(startPos, startCol, startLine)
	}

	tok := l.makeToken(token.EOF, startPos, startCol, startLine)
	return tok, &Error{Tok: tok, Msg: fmt.Sprintf("unexpected character: '%c'", ch)}
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekNext() rune {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

func (l *Lexer) advance() rune {
	if l.isAtEnd() {
		return 0
	}
	ch := l.source[l.pos]
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
	return ch
}

func (l *Lexer) match(expected rune) bool {
	if l.isAtEnd() || l.source[l.pos] != expected {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) matchThen(expected rune, then, otherwise token.Type, startPos, startCol, startLine int) token.Token {
	if l.match(expected) {
		return l.makeToken(then, startPos, startCol, startLine)
	}
	return l.makeToken(otherwise, startPos, startCol, startLine)
}

func (l *Lexer) isAtEnd() bool { return l.pos >= len(l.source) }

func (l *Lexer) makeToken(tokType token.Type, startPos, startCol, startLine int) token.Token {
	return token.Token{
		Type: tokType, Value: string(l.source[startPos:l.pos]), FileIndex: l.fileIndex,
		Line: startLine, Column: startCol, Len: l.pos - startPos,
	}
}

func (l *Lexer) skipWhitespaceAndComments() error {
	for {
		switch {
		case unicode.IsSpace(l.peek()):
			l.advance()
		case l.peek() == '/' && l.peekNext() == '/':
			for !l.isAtEnd() && l.peek() != '\n' {
				l.advance()
			}
		case l.peek() == '/' && l.peekNext() == '*':
			if err := l.blockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (l *Lexer) blockComment() error {
	startPos, startCol, startLine := l.pos, l.column, l.line
	l.advance()
	l.advance()
	for !l.isAtEnd() {
		if l.peek() == '*' && l.peekNext() == '/' {
			l.advance()
			l.advance()
			return nil
		}
		l.advance()
	}
	return &Error{Tok: l.makeToken(token.EOF, startPos, startCol, startLine), Msg: "unterminated block comment"}
}

func (l *Lexer) identifierOrKeyword(startPos, startCol, startLine int) token.Token {
	for unicode.IsLetter(l.peek()) || isDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}
	tok := l.makeToken(token.Ident, startPos, startCol, startLine)
	if tokType, isKeyword := token.KeywordMap[tok.Value]; isKeyword {
		tok.Type = tokType
	}
	return tok
}

func (l *Lexer) numberLiteral(startPos, startCol, startLine int) (token.Token, error) {
	for isDigit(l.peek()) {
		l.advance()
	}
	tok := l.makeToken(token.Number, startPos, startCol, startLine)
	val, err := strconv.ParseInt(tok.Value, 10, 32)
	if err != nil {
		return tok, &Error{Tok: tok, Msg: fmt.Sprintf("integer constant out of range: %s", tok.Value)}
	}
	tok.Num = int32(val)
	return tok, nil
}

func (l *Lexer) stringLiteral(startPos, startCol, startLine int) (token.Token, error) {
	var sb strings.Builder
	for !l.isAtEnd() {
		c := l.advance()
		switch c {
		case '"':
			tok := l.makeToken(token.String, startPos, startCol, startLine)
			tok.Str = sb.String()
			return tok, nil
		case '\n':
			return l.unterminated(startPos, startCol, startLine)
		case '\\':
			if l.isAtEnd() {
				return l.unterminated(startPos, startCol, startLine)
			}
			sb.WriteRune(decodeEscape(l.advance()))
		default:
			sb.WriteRune(c)
		}
	}
	return l.unterminated(startPos, startCol, startLine)
}

func (l *Lexer) unterminated(startPos, startCol, startLine int) (token.Token, error) {
	tok := l.makeToken(token.String, startPos, startCol, startLine)
	return tok, &Error{Tok: tok, Msg: "unterminated string literal"}
}

// decodeEscape maps the character after a backslash to the character it
// stands for. Unknown escapes stand for the character itself.
func decodeEscape(c rune) rune {
	switch c {
	case 'a':
		return '\a'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'v':
		return '\v'
	case 'e':
		return 27
	case '0':
		return 0
	}
	return c
}

// isDigit accepts ASCII digits only.
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
