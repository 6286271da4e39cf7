package safecalc

import (
	"io"
	"strconv"
	"strings"
)

// Expr = num | name | Call | Neg | Add | Sub | Mul | Div | Pow | '(' Expr ')'
// Call = name '(' [ Expr { ',' Expr } ] ')'
// Neg = '-' Expr
// Add = Expr '+' Expr
// Sub = Expr '-' Expr
// Mul = Expr '*' Expr
// Div = Expr '/' Expr
// Pow = Expr '^' Expr | Expr '**' Expr

// Expr is a parsed expression that can be evaluated with a context. An Expr is
// never modified after parsing.
type Expr struct {
	// n is the root node of the expression.
	n *node
}

// Parse parses a single expression from src. Every error resulting from
// invalid input implements InputError and matches ErrSyntax. Parse accepts any
// identifier; whether a name means anything is decided during evaluation.
func Parse(src io.RuneScanner) (*Expr, error) {
	scan := lex(src)
	n, err := parseterm(scan, exprprec)
	if err != nil {
		return nil, err
	}
	if tok := scan.must(); tok.kind != tokenEOF {
		return nil, itShouldNotHaveEndedThisWay(tok, false)
	}
	return &Expr{n: n}, nil
}

// ParseString is a shortcut to parse a string expression.
func ParseString(src string) (*Expr, error) {
	return Parse(strings.NewReader(src))
}

// parseterm parses a single term. If there is no error, then parseterm pushes
// the last token it scans, including EOF. If the input is an empty
// subexpression, the result is nil with no error; callers must create an error
// in contexts where empty subexpressions are illegal.
func parseterm(scan *lexer, until operator) (*node, error) {
	n, err := parselhs(scan, until)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}
	for {
		tok, err := scan.next()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenNum, tokenIdent, tokenOpen:
			// A term can only be followed by an operator or the end of its
			// subexpression. There is no implicit multiplication.
			return nil, &TermError{Col: tok.pos, Text: tok.text}
		case tokenOp:
			prec := binop(tok.text)
			if prec.op == nodeNone {
				return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: false}
			}
			if !prec.moreBinding(until) {
				scan.push(tok)
				return n, nil
			}
			rhs, err := parseterm(scan, prec)
			if err != nil {
				return nil, err
			}
			if rhs == nil {
				return nil, noOperand(scan)
			}
			n = &node{kind: prec.op, left: n, right: rhs}
		case tokenClose, tokenSep, tokenEOF:
			// End of expression.
			scan.push(tok)
			return n, nil
		default:
			panic("safecalc: unknown token: " + tok.String())
		}
	}
}

// parselhs parses the first component of a term. I.e., operators are unary and
// any encountered token must be valid as the start of a subexpression.
func parselhs(scan *lexer, until operator) (*node, error) {
	tok, err := scan.next()
	if err != nil {
		return nil, err
	}
	var n *node
	switch tok.kind {
	case tokenNum:
		v, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			// The lexer only produces well-formed numbers, so this is a
			// literal outside the range of float64.
			return nil, &LexError{Text: tok.text, Kind: "number", Col: tok.pos}
		}
		n = &node{kind: nodeNum, name: tok.text, num: v}
	case tokenIdent:
		open, err := scan.next()
		if err != nil {
			return nil, err
		}
		if open.kind != tokenOpen {
			scan.push(open)
			n = &node{kind: nodeName, name: tok.text}
			break
		}
		args, err := parsearglist(scan)
		if err != nil {
			return nil, err
		}
		n = &node{kind: nodeCall, name: tok.text, args: args}
	case tokenOp:
		prec := unop(tok.text)
		if prec.op == nodeNone {
			return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: true}
		}
		if !prec.moreBinding(until) {
			// x^-y -> x^(-y)
			// Just use the new operator's precedence to simplify.
			prec.prec, prec.right = until.prec, until.right
		}
		rhs, err := parseterm(scan, prec)
		if err != nil {
			return nil, err
		}
		if rhs == nil {
			return nil, noOperand(scan)
		}
		n = &node{kind: prec.op, left: rhs}
	case tokenOpen:
		rhs, err := parseterm(scan, exprprec)
		if err != nil {
			return nil, err
		}
		end := scan.must()
		if end.kind != tokenClose {
			return nil, itShouldNotHaveEndedThisWay(end, true)
		}
		if rhs == nil {
			return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
		}
		n = rhs
	case tokenClose:
		// This might be part of f(), so just let the caller decide what to do.
		scan.push(tok)
		return nil, nil
	case tokenSep:
		return nil, &SeparatorError{Col: tok.pos, Sep: tok.text}
	case tokenEOF:
		return nil, &EmptyExpressionError{Col: tok.pos, End: ""}
	default:
		panic("safecalc: unknown token: " + tok.String())
	}
	return n, nil
}

// parsearglist parses a parenthesized list of zero or more args. The open
// parenthesis has already been scanned. The close parenthesis is consumed.
func parsearglist(scan *lexer) ([]*node, error) {
	var args []*node
	for {
		arg, err := parseterm(scan, exprprec)
		if err != nil {
			// As a special case, reporting an unclosed call is more helpful
			// than empty expression, if that's what we'd do here.
			if ee, _ := err.(*EmptyExpressionError); ee != nil && ee.End == "" {
				err = &BracketError{Col: ee.Col, Left: "("}
			}
			return nil, err
		}
		end := scan.must()
		switch end.kind {
		case tokenClose:
			if arg == nil {
				// f() is allowed, but f(a,) isn't.
				if len(args) != 0 {
					return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
				}
				return nil, nil
			}
			return append(args, arg), nil
		case tokenSep:
			args = append(args, arg)
		case tokenEOF:
			return nil, &BracketError{Col: end.pos, Left: "(", Right: ""}
		default:
			panic("safecalc: parseterm ended on non-end token " + end.String())
		}
	}
}

// noOperand returns an error for an operator whose operand turned out to be
// empty, e.g. "(2+)". parseterm pushed the token that ended the operand.
func noOperand(scan *lexer) error {
	end := scan.must()
	return &EmptyExpressionError{Col: end.pos, End: end.text}
}

// itShouldNotHaveEndedThisWay returns an error appropriate for an unexpected
// token at the end of a subexpression. paren is whether the expression should
// have been closed by a parenthesis.
func itShouldNotHaveEndedThisWay(tok lexToken, paren bool) error {
	left := ""
	if paren {
		left = "("
	}
	switch tok.kind {
	case tokenEOF:
		// Unexpected EOF implies an open bracket that was not closed.
		return &BracketError{Col: tok.pos, Left: left, Right: ""}
	case tokenClose:
		return &BracketError{Col: tok.pos, Left: left, Right: tok.text}
	case tokenSep:
		// Separator outside a function call.
		return &SeparatorError{Col: tok.pos, Sep: tok.text}
	default:
		panic("safecalc: it really should not have ended this way: " + tok.String())
	}
}

// String creates a fully parenthesized representation of the parsed
// expression. The result parses to an identical expression.
func (e *Expr) String() string {
	return e.n.String()
}

type operator struct {
	// prec is the precedence value. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
	// op is the node kind to use when this operator is selected.
	op nodeKind
}

func (p operator) moreBinding(than operator) bool {
	if p.prec != than.prec {
		return p.prec > than.prec
	}
	return p.right
}

// binop gets a binary operator for a token string. If there is no such binary
// operator, then the result has an op of nodeNone.
func binop(text string) operator {
	switch text {
	case "+":
		return operator{1, false, nodeAdd}
	case "-":
		return operator{1, false, nodeSub}
	case "*":
		return operator{5, false, nodeMul}
	case "/":
		return operator{5, false, nodeDiv}
	case "^", "**":
		return operator{15, true, nodePow}
	default:
		return operator{}
	}
}

// unop gets a unary operator for a token string. If there is no such unary
// operator, then the result has an op of nodeNone. There is no unary plus.
func unop(text string) operator {
	switch text {
	case "-":
		return operator{10, true, nodeNeg}
	default:
		return operator{}
	}
}

// exprprec is the precedence required to parse an entire subexpression.
var exprprec = operator{-128, true, nodeNone}
