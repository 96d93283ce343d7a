package expr

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/mesh-intelligence/facets/pkg/types"
)

// Parse errors. Every ParseError wraps exactly one of these.
var (
	ErrExpectedOpenParen  = errors.New("expected '('")
	ErrExpectedCloseParen = errors.New("expected ')'")
	ErrExpectedComma      = errors.New("expected ','")
	ErrUnexpectedEnd      = errors.New("unexpected end of input")
	ErrEmptyToken         = errors.New("empty expression")
	ErrInvalidVariable    = errors.New("invalid variable name")
	ErrExpectedVariable   = errors.New("expected a variable")
	ErrTrailingInput      = errors.New("expected end of input")
)

// ParseError reports where parsing stopped. Pos is the byte offset of Token
// in the input, or the input length when the input ended early.
type ParseError struct {
	Pos   int
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("parse error at %d: %v", e.Pos, e.Err)
	}
	return fmt.Sprintf("parse error at %d near %q: %v", e.Pos, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse parses s into an expression tree. The whole input must form one
// expression.
func Parse(s string) (Expr, error) {
	p := &parser{toks: tokenize(s), end: len(s)}
	if len(p.toks) == 0 {
		return nil, &ParseError{Pos: 0, Err: ErrEmptyToken}
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok, ok := p.peek(); ok {
		return nil, &ParseError{Pos: tok.pos, Token: tok.text, Err: ErrTrailingInput}
	}
	return e, nil
}

// MustParse is like Parse but panics on error. It is meant for expressions
// fixed at compile time.
func MustParse(s string) Expr {
	e, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return e
}

type parser struct {
	toks []token
	i    int
	end  int
}

func (p *parser) peek() (token, bool) {
	if p.i >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.i], true
}

func (p *parser) next() (token, bool) {
	tok, ok := p.peek()
	if ok {
		p.i++
	}
	return tok, ok
}

// expect consumes the next token and checks it is want, failing with err
// otherwise.
func (p *parser) expect(want string, err error) error {
	tok, ok := p.next()
	if !ok {
		return &ParseError{Pos: p.end, Err: ErrUnexpectedEnd}
	}
	if tok.text != want {
		return &ParseError{Pos: tok.pos, Token: tok.text, Err: err}
	}
	return nil
}

func (p *parser) parseExpr() (Expr, error) {
	tok, ok := p.next()
	if !ok {
		return nil, &ParseError{Pos: p.end, Err: ErrUnexpectedEnd}
	}

	switch tok.text {
	case kwSum:
		if err := p.expect("(", ErrExpectedOpenParen); err != nil {
			return nil, err
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")", ErrExpectedCloseParen); err != nil {
			return nil, err
		}
		return Sum{Arg: arg}, nil

	case kwAdd:
		if err := p.expect("(", ErrExpectedOpenParen); err != nil {
			return nil, err
		}
		left, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(",", ErrExpectedComma); err != nil {
			return nil, err
		}
		right, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")", ErrExpectedCloseParen); err != nil {
			return nil, err
		}
		return Add{Left: left, Right: right}, nil

	case kwCount:
		if err := p.expect("(", ErrExpectedOpenParen); err != nil {
			return nil, err
		}
		if err := p.expect(")", ErrExpectedCloseParen); err != nil {
			return nil, err
		}
		return Count{}, nil

	case kwValues:
		if err := p.expect("(", ErrExpectedOpenParen); err != nil {
			return nil, err
		}
		argTok, _ := p.peek()
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		v, isVar := arg.(Variable)
		if !isVar {
			return nil, &ParseError{Pos: argTok.pos, Token: argTok.text, Err: ErrExpectedVariable}
		}
		if err := p.expect(")", ErrExpectedCloseParen); err != nil {
			return nil, err
		}
		return Values{Column: v.Name}, nil
	}

	return parseLeaf(tok)
}

// parseLeaf turns a single token into a number or a variable.
func parseLeaf(tok token) (Expr, error) {
	if v := types.ParseValue(tok.text); v.IsNumeric() {
		return Literal{Value: v}, nil
	}
	if !validVariable(tok.text) {
		return nil, &ParseError{Pos: tok.pos, Token: tok.text, Err: ErrInvalidVariable}
	}
	return Variable{Name: tok.text}, nil
}

// validVariable rejects delimiters that appear where an operand is expected.
// Longer names are accepted as written.
func validVariable(s string) bool {
	if s == "" {
		return false
	}
	if utf8.RuneCountInString(s) > 1 {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
