package safecalc

import (
	"io"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Context is a context for evaluating expressions. It is not safe to use a
// Context concurrently. Use an Evaluator to evaluate from multiple goroutines.
type Context struct {
	stack []*big.Float
	prec  uint
	deg   bool
	busy  bool
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption()
}

type (
	precopt uint
	degopt  bool
)

func (precopt) ctxOption() {}
func (degopt) ctxOption()  {}

// DefaultPrec is the precision in bits of intermediate results when no
// precision is given.
const DefaultPrec = 64

// Prec sets the precision of intermediate calculations. Results are always
// rounded to float64. A precision of 0 selects DefaultPrec.
func Prec(prec uint) ContextOption {
	return precopt(prec)
}

// Degrees sets whether trigonometric functions take their arguments in
// degrees rather than radians.
func Degrees(on bool) ContextOption {
	return degopt(on)
}

// NewContext creates a new evaluation context. By default, the precision is
// DefaultPrec and angles are in radians.
func NewContext(opts ...ContextOption) *Context {
	ctx := Context{prec: DefaultPrec}
	return ctx.Clone(opts...)
}

// Clone creates a copy of a context and applies options to it. The returned
// context is safe to use to evaluate an expression.
func (ctx *Context) Clone(opts ...ContextOption) *Context {
	n := Context{
		prec: ctx.prec,
		deg:  ctx.deg,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case precopt:
			n.prec = uint(opt)
			if n.prec == 0 {
				n.prec = DefaultPrec
			}
		case degopt:
			n.deg = bool(opt)
		default:
			panic("safecalc: unknown option type")
		}
	}
	return &n
}

// Prec returns the precision to which intermediate values are computed.
func (ctx *Context) Prec() uint {
	return ctx.prec
}

// Degrees returns whether trigonometric functions take degrees.
func (ctx *Context) Degrees() bool {
	return ctx.deg
}

// Eval evaluates an expression and returns the result. If an error occurs,
// e.g. an unknown name or an argument outside a function's domain, the
// result is 0 and the error describes the failure. No partial result is ever
// returned.
func (ctx *Context) Eval(e *Expr) (r float64, err error) {
	if ctx.busy {
		panic("safecalc: Eval during Eval")
	}
	ctx.busy = true
	ctx.stack = ctx.stack[:0]
	defer func() {
		ctx.busy = false
		p := recover()
		if p == nil {
			return
		}
		// Values outside the exponent range of big.Float become infinite,
		// and some operations on infinities panic.
		if _, ok := p.(big.ErrNaN); !ok {
			panic(p)
		}
		r, err = 0, &RangeError{}
	}()
	if err := e.n.eval(ctx); err != nil {
		return 0, err
	}
	if len(ctx.stack) != 1 {
		panic("safecalc: inconsistent stack: " + strconv.Itoa(len(ctx.stack)) + " items (bad AST?)")
	}
	f, _ := ctx.stack[0].Float64()
	if math.IsInf(f, 0) {
		return 0, &RangeError{}
	}
	return f, nil
}

// push ensures a settable value on the stack.
func (ctx *Context) push() *big.Float {
	if len(ctx.stack) < cap(ctx.stack) {
		ctx.stack = ctx.stack[:len(ctx.stack)+1]
		if ctx.stack[len(ctx.stack)-1] == nil {
			ctx.stack[len(ctx.stack)-1] = new(big.Float).SetPrec(ctx.prec)
		}
	} else {
		ctx.stack = append(ctx.stack, new(big.Float).SetPrec(ctx.prec))
	}
	return ctx.stack[len(ctx.stack)-1]
}

// pop removes the top from the stack and returns it. The returned value may be
// modified by future node evaluations.
func (ctx *Context) pop() *big.Float {
	r := ctx.stack[len(ctx.stack)-1]
	ctx.stack = ctx.stack[:len(ctx.stack)-1]
	return r
}

// top is a shortcut to get the top element of the stack.
func (ctx *Context) top() *big.Float {
	return ctx.stack[len(ctx.stack)-1]
}

// eval pushes the node's value to the context's stack.
func (n *node) eval(ctx *Context) error {
	switch n.kind {
	case nodeNum:
		ctx.push().SetFloat64(n.num)
	case nodeName:
		b := builtins[n.name]
		switch {
		case b == builtinNone:
			return &NameError{Name: n.name}
		case !b.constant():
			return &CallError{Func: n.name, Len: -1}
		}
		ctx.constant(b, ctx.push())
	case nodeCall:
		b := builtins[n.name]
		switch {
		case b == builtinNone:
			return &FuncError{Func: n.name}
		case b.constant(), len(n.args) != 1:
			return &CallError{Func: n.name, Len: len(n.args)}
		}
		r := ctx.push()
		if err := n.args[0].eval(ctx); err != nil {
			return err
		}
		x := ctx.pop()
		if err := ctx.call(b, x, r); err != nil {
			return err
		}
	case nodeNeg:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
		v := ctx.top()
		v.Neg(v)
	case nodeAdd:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
		if err := n.right.eval(ctx); err != nil {
			return err
		}
		r := ctx.pop()
		l := ctx.top()
		l.Add(l, r)
	case nodeSub:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
		if err := n.right.eval(ctx); err != nil {
			return err
		}
		r := ctx.pop()
		l := ctx.top()
		l.Sub(l, r)
	case nodeMul:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
		if err := n.right.eval(ctx); err != nil {
			return err
		}
		r := ctx.pop()
		l := ctx.top()
		l.Mul(l, r)
	case nodeDiv:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
		if err := n.right.eval(ctx); err != nil {
			return err
		}
		r := ctx.pop()
		l := ctx.top()
		if r.Sign() == 0 {
			return &DivisionError{X: new(big.Float).Copy(l), Op: "/"}
		}
		l.Quo(l, r)
	case nodePow:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
		if err := n.right.eval(ctx); err != nil {
			return err
		}
		r := ctx.pop()
		l := ctx.top()
		if err := ctx.pow(l, l, r); err != nil {
			return err
		}
	default:
		panic("safecalc: invalid AST node " + n.kind.String())
	}
	return nil
}

// Eval is a shortcut to parse an expression and return its result.
func Eval(src io.RuneScanner, opts ...ContextOption) (float64, error) {
	a, err := Parse(src)
	if err != nil {
		return 0, err
	}
	return NewContext(opts...).Eval(a)
}

// EvalString is a shortcut to parse and evaluate a string expression.
func EvalString(src string, opts ...ContextOption) (float64, error) {
	return Eval(strings.NewReader(src), opts...)
}
