package safecalc

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var nodeCmp = cmp.AllowUnexported(node{})

func TestParseTrees(t *testing.T) {
	cases := []struct {
		name string
		a, b string
	}{
		{"paren", "(x)", "x"},
		{"multi", "((((x))))", "x"},
		{"space", " 2 +\t3 ", "2+3"},

		{"neg", "-x", "(-(x))"},
		{"negnum", "-1", "(-(1))"},
		{"add", "x+y", "((x)+(y))"},
		{"sub", "x-y", "((x)-(y))"},
		{"mul", "x*y", "((x)*(y))"},
		{"div", "x/y", "((x)/(y))"},
		{"pow", "x^y", "((x)^(y))"},
		{"starstar", "x**y", "x^y"},

		{"add4", "w+x+y+z", "((w+x)+y)+z"},
		{"sub4", "w-x-y-z", "((w-x)-y)-z"},
		{"mul4", "w*x*y*z", "((w*x)*y)*z"},
		{"div4", "w/x/y/z", "((w/x)/y)/z"},
		{"pow4", "w^x^y^z", "w^(x^(y^z))"},
		{"mixedpow", "w**x^y", "w^(x^y)"},

		{"negpow", "-1^n", "-(1^n)"},
		{"negmul", "-x*y", "(-x)*y"},
		{"desc", "w^x*y+z", "((w^x)*y)+z"},
		{"asc", "w+x*y^z", "w+(x*(y^z))"},
		{"descasc", "w^x*y+z+a*b^c", "(((w^x)*y)+z)+a*(b^c)"},
		{"ascdesc", "w+x*y^z^a*b+c", "w+((x*(y^(z^a)))*b)+c"},
		{"negneg", "--x", "-(-x)"},
		{"negsub", "-x-x", "(-x)-x"},
		{"subneg", "x--x", "x-(-x)"},
		{"powneg", "x^-1", "x^(-1)"},
		{"pownegadd", "x^-1+y", "(x^(-1))+y"},
		{"pownegpow", "x^-y^-z", "x^(-(y^(-z)))"},
		{"pownegneg", "x^--y", "x^(-(-y))"},

		{"call", "f(x)", "f((x))"},
		{"call0", "f()", "f( )"},
		{"call2", "f(a, b+c)", "f((a), (b+c))"},
		{"callspace", "sin (x)", "sin(x)"},
		{"callnested", "sin(cos(x))+1", "(sin((cos(x))))+1"},
		{"callpow", "f(x)^2", "(f(x))^2"},
		{"negcall", "-f(x)", "-(f(x))"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := ParseString(c.a)
			if err != nil {
				t.Fatalf("failed to parse %q: %v", c.a, err)
			}
			b, err := ParseString(c.b)
			if err != nil {
				t.Fatalf("failed to parse %q: %v", c.b, err)
			}
			if d := cmp.Diff(b.n, a.n, nodeCmp); d != "" {
				t.Errorf("mismatched AST for %q vs %q (-want +got):\n%s", c.a, c.b, d)
			}
		})
	}
}

func TestParseExact(t *testing.T) {
	cases := []struct {
		name string
		src  string
		n    *node
	}{
		{
			name: "num",
			src:  "1.5e3",
			n:    &node{kind: nodeNum, name: "1.5e3", num: 1500},
		},
		{
			name: "dot",
			src:  ".25",
			n:    &node{kind: nodeNum, name: ".25", num: 0.25},
		},
		{
			name: "name",
			src:  "pi",
			n:    &node{kind: nodeName, name: "pi"},
		},
		{
			name: "call0",
			src:  "f()",
			n:    &node{kind: nodeCall, name: "f"},
		},
		{
			name: "call1",
			src:  "sin(x)",
			n: &node{
				kind: nodeCall,
				name: "sin",
				args: []*node{
					{kind: nodeName, name: "x"},
				},
			},
		},
		{
			name: "call3",
			src:  "f(a, 2, -b)",
			n: &node{
				kind: nodeCall,
				name: "f",
				args: []*node{
					{kind: nodeName, name: "a"},
					{kind: nodeNum, name: "2", num: 2},
					{kind: nodeNeg, left: &node{kind: nodeName, name: "b"}},
				},
			},
		},
		{
			name: "powneg",
			src:  "2^-1",
			n: &node{
				kind: nodePow,
				left: &node{kind: nodeNum, name: "2", num: 2},
				right: &node{
					kind: nodeNeg,
					left: &node{kind: nodeNum, name: "1", num: 1},
				},
			},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := ParseString(c.src)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			if d := cmp.Diff(c.n, a.n, nodeCmp); d != "" {
				t.Errorf("mismatched AST for %q (-want +got):\n%s", c.src, d)
			}
		})
	}
}

func TestExprString(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"paren", "(x)"},
		{"neg", "-x"},
		{"negnum", "-1"},
		{"add", "x+y"},
		{"sub", "x-y"},
		{"mul", "x*y"},
		{"div", "x/y"},
		{"pow", "x^y"},
		{"starstar", "x**y"},
		{"call0", "f()"},
		{"call1", "sin(x)"},
		{"call3", "f(a, b, c)"},

		{"add4", "w+x+y+z"},
		{"sub4", "w-x-y-z"},
		{"pow4", "w^x^y^z"},
		{"negpow", "-1^n"},
		{"descasc", "w^x*y+z+a*b^c"},
		{"ascdesc", "w+x*y^z^a*b+c"},
		{"negneg", "--x"},
		{"powneg", "x^-1"},
		{"pownegpow", "x^-y^-z"},
		{"nums", "1.5e-3*2.+.5"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := ParseString(c.src)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			s := a.String()
			b, err := ParseString(s)
			if err != nil {
				t.Fatalf("%q -> %q failed to parse: %v", c.src, s, err)
			}
			if d := cmp.Diff(a.n, b.n, nodeCmp); d != "" {
				t.Errorf("mismatched AST for %q -> %q (-want +got):\n%s", c.src, s, d)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		err  InputError
		res  []string
	}{
		{"empty", "", new(EmptyExpressionError), []string{`(?i)\b(no|empty)\b.*\bexpression\b`}},
		{"blank", "   ", new(EmptyExpressionError), []string{`(?i)\b(no|empty)\b.*\bexpression\b`}},
		{"emptyparen", "()", new(EmptyExpressionError), []string{`(?i)\b(no|empty)\b.*\bexpression\b`, `\)`}},
		{"emptyoperand", "2+", new(EmptyExpressionError), []string{`(?i)\b(no|empty)\b.*\bexpression\b`, `(?i)\bend\b`}},
		{"emptyunary", "2*-", new(EmptyExpressionError), []string{`(?i)\bend\b`}},
		{"op-paren", "(2*)", new(EmptyExpressionError), []string{`\)`}},
		{"neg-paren", "(-)", new(EmptyExpressionError), []string{`\)`}},
		{"left", "(2+3", new(BracketError), []string{`(?i)\bbracket\b`, `\(`}},
		{"right", "2+3)", new(BracketError), []string{`(?i)\bbracket\b`, `\)`}},
		{"rightonly", ")", new(BracketError), []string{`(?i)\bbracket\b`, `\)`}},
		{"terms", "2 3", new(TermError), []string{`"3"`, `(?i)\boperator\b`}},
		{"implicit", "2(3)", new(TermError), []string{`"\("`}},
		{"implicit-after", "(2)3", new(TermError), nil},
		{"idents", "x y", new(TermError), []string{`"y"`}},
		{"callterm", "sin(1)2", new(TermError), nil},
		{"boolean", "1 and 2", new(TermError), []string{`"and"`}},
		{"unaryplus", "+2", new(OperatorError), []string{`(?i)\bunary\b`, `\+`}},
		{"nonunary", "*2", new(OperatorError), []string{`(?i)\bunary\b`, `\*`}},
		{"nonunary-pow", "^2", new(OperatorError), []string{`(?i)\bunary\b`, `\^`}},
		{"doubleplus", "2++3", new(OperatorError), []string{`(?i)\bunary\b`}},
		{"sep", "1, 2", new(SeparatorError), []string{`","`}},
		{"sepparen", "(1, 2)", new(SeparatorError), []string{`","`}},
		{"call-leading-sep", "f(,x)", new(SeparatorError), []string{`","`}},
		{"call-double-sep", "f(a,,b)", new(SeparatorError), []string{`","`}},
		{"call-trailing-sep", "f(x,)", new(EmptyExpressionError), []string{`\)`}},
		{"call-unclosed", "sin(", new(BracketError), []string{`(?i)\bbracket\b`, `\(`}},
		{"call-unclosed-arg", "sin(1", new(BracketError), []string{`(?i)\bbracket\b`, `\(`}},
		{"lexer", "2^exp(-$)", new(LexError), []string{`\$`}},
		{"string", "'os'", new(LexError), []string{`'`}},
		{"import", "__import__('os')", new(LexError), []string{`'`}},
		{"attr", "os.system('x')", new(LexError), []string{`(?i)\bnumber\b`}},
		{"assign", "x = 1", new(LexError), []string{`=`}},
		{"compare", "1 < 2", new(LexError), []string{`<`}},
		{"subscript", "x[0]", new(LexError), []string{`\[`}},
		{"statements", "1; 2", new(LexError), nil},
		{"lambda", "lambda: 1", new(LexError), nil},
		{"number", "1.2.3", new(LexError), []string{`(?i)\bnumber\b`}},
		{"exponent", "1e", new(LexError), []string{`(?i)\bnumber\b`}},
		{"range", "1e999", new(LexError), []string{`1e999`}},
		{"numident", "2x", new(LexError), []string{`(?i)\bnumber\b`}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := ParseString(c.src)
			if a != nil {
				t.Errorf("%q parsed non-nil to %v", c.src, a.n)
			}
			if reflect.TypeOf(err) != reflect.TypeOf(c.err) {
				t.Errorf("wrong error type from %q: want %T, got %T (%v)", c.src, c.err, err, err)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, ErrSyntax) {
				t.Errorf("error %v from %q does not match ErrSyntax", err, c.src)
			}
			var ie InputError
			if !errors.As(err, &ie) || ie.Pos() < 1 {
				t.Errorf("error %v from %q has no position", err, c.src)
			}
			msg := err.Error()
			for _, re := range c.res {
				if !regexp.MustCompile(re).MatchString(msg) {
					t.Errorf("error message %q does not match %s", msg, re)
				}
			}
		})
	}
}

func TestParseReader(t *testing.T) {
	// Parse consumes the whole input, so trailing text is an error rather
	// than the start of another expression.
	src := strings.NewReader("1+2\n3")
	if _, err := Parse(src); err == nil {
		t.Error("parsed two expressions as one")
	}
}

func BenchmarkParse(b *testing.B) {
	cases := []struct {
		name string
		src  string
	}{
		{"descasc", "w^x*y+z+a*b^c"},
		{"descasc-parens", "(((w^x)*y)+z)+a*(b^c)"},
		{"ascdesc", "w+x*y^z^a*b+c"},
		{"ascdesc-parens", "w+((x*(y^(z^a)))*b)+c"},
		{"nums", "1^1.1*1.1e1+1.1e-1+.1*2^3"},
		{"calls", "sin(cos(tan(x)))"},
	}
	for _, c := range cases {
		b.Run(c.name, func(b *testing.B) {
			b.ReportAllocs()
			var src strings.Reader
			for i := 0; i < b.N; i++ {
				src.Reset(c.src)
				Parse(&src)
			}
		})
	}
}
