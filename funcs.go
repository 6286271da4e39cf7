package safecalc

import (
	"math"
	"math/big"
	"strconv"

	"github.com/zephyrtronium/bigfloat"
)

// builtin is a name the evaluator understands. The set of builtins is closed;
// there is no way to add functions or constants at run time.
type builtin int8

const (
	builtinNone builtin = iota

	// unary functions
	builtinSin
	builtinCos
	builtinTan
	builtinLog
	builtinSqrt
	builtinExp

	// constants
	builtinPi
	builtinE
)

var builtinNames = [...]string{
	builtinNone: "",
	builtinSin:  "sin",
	builtinCos:  "cos",
	builtinTan:  "tan",
	builtinLog:  "log",
	builtinSqrt: "sqrt",
	builtinExp:  "exp",
	builtinPi:   "pi",
	builtinE:    "e",
}

var builtins = func() map[string]builtin {
	m := make(map[string]builtin, len(builtinNames)-1)
	for b, name := range builtinNames {
		if name != "" {
			m[name] = builtin(b)
		}
	}
	return m
}()

func (b builtin) String() string {
	if b < 0 || int(b) >= len(builtinNames) {
		return "builtin(" + strconv.Itoa(int(b)) + ")"
	}
	return builtinNames[b]
}

// constant returns whether b is a constant rather than a unary function.
func (b builtin) constant() bool {
	return b == builtinPi || b == builtinE
}

// trig returns whether b takes an angle.
func (b builtin) trig() bool {
	return b == builtinSin || b == builtinCos || b == builtinTan
}

// Builtins returns the names of the functions and constants understood by the
// evaluator, in sorted order.
func Builtins() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sortstrs(names)
	return names
}

// sortstrs sorts a string slice without using package sort because that has
// reflection and allocation problems.
func sortstrs(names []string) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
}

// degree is one degree in radians.
const degree = math.Pi / 180

// maxBinaryExp bounds the magnitude of the binary exponent of results of exp
// and ^. Computing anything larger would take unbounded work for a value
// that can never become a finite float64.
const maxBinaryExp = 4096

// constant sets r to the value of the constant b.
func (ctx *Context) constant(b builtin, r *big.Float) {
	r.SetPrec(ctx.prec)
	switch b {
	case builtinPi:
		bigfloat.Pi(r)
	case builtinE:
		r.Set(bigfloat.Exp(new(big.Float).SetPrec(ctx.prec), one))
	default:
		panic("safecalc: " + b.String() + " is not a constant")
	}
}

// call sets r to b(x). b must be a unary function. x may be modified.
func (ctx *Context) call(b builtin, x, r *big.Float) (err error) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		nan, ok := p.(big.ErrNaN)
		if !ok {
			panic(p)
		}
		err = &DomainError{X: new(big.Float).Copy(x), Func: b.String(), Reason: nan.Error()}
	}()
	r.SetPrec(ctx.prec)
	switch b {
	case builtinSin, builtinCos, builtinTan:
		f, err := float(x, b.String())
		if err != nil {
			return err
		}
		if ctx.deg {
			f *= degree
		}
		switch b {
		case builtinSin:
			f = math.Sin(f)
		case builtinCos:
			f = math.Cos(f)
		case builtinTan:
			f = math.Tan(f)
		}
		r.SetFloat64(f)
	case builtinLog:
		if x.Sign() <= 0 {
			return &DomainError{X: new(big.Float).Copy(x), Func: "log"}
		}
		r.Set(bigfloat.Log(new(big.Float).SetPrec(ctx.prec), x))
	case builtinSqrt:
		if x.Sign() < 0 {
			return &DomainError{X: new(big.Float).Copy(x), Func: "sqrt"}
		}
		r.Sqrt(x)
	case builtinExp:
		f, _ := x.Float64()
		switch e := f * math.Log2E; {
		case e > maxBinaryExp:
			return &RangeError{Func: "exp"}
		case e < -maxBinaryExp:
			r.SetInt64(0)
			return nil
		}
		r.Set(bigfloat.Exp(new(big.Float).SetPrec(ctx.prec), x))
	default:
		panic("safecalc: cannot call " + b.String())
	}
	return nil
}

// pow sets z to x^y. z may be the same as x or y.
func (ctx *Context) pow(z, x, y *big.Float) error {
	switch {
	case y.Sign() == 0:
		// Anything to the zero is one, including zero.
		z.SetInt64(1)
		return nil
	case x.Sign() == 0:
		if y.Sign() < 0 {
			return &DivisionError{X: new(big.Float).Copy(y), Op: "^"}
		}
		z.SetInt64(0)
		return nil
	}
	neg := false
	if x.Signbit() {
		// A negative base only has a real power for integer exponents.
		if !y.IsInt() {
			return &DomainError{X: new(big.Float).Copy(x), Func: "^"}
		}
		yi, _ := y.Int(nil)
		neg = yi.Bit(0) == 1
	}
	w := new(big.Float).SetPrec(ctx.prec).Abs(x)
	if w.Cmp(one) == 0 {
		z.SetInt64(1)
		if neg {
			z.Neg(z)
		}
		return nil
	}
	switch e := powScale(w, y); {
	case e > maxBinaryExp:
		return &RangeError{Func: "^"}
	case e < -maxBinaryExp:
		z.SetInt64(0)
		return nil
	}
	if n, acc := y.Int64(); acc == big.Exact && -maxBinaryExp <= n && n <= maxBinaryExp {
		powInt(z, w, n)
	} else {
		// Pow may return a different value than its receiver.
		z.Set(bigfloat.Pow(new(big.Float).SetPrec(ctx.prec), w, y))
	}
	if neg {
		z.Neg(z)
	}
	return nil
}

var one = big.NewFloat(1)

// powScale estimates the binary exponent of w^y, i.e. y·log2(w), for positive
// w other than 1. The estimate saturates to ±Inf and stays accurate for w
// close to 1.
func powScale(w, y *big.Float) float64 {
	t := new(big.Float).SetPrec(w.Prec()).Sub(w, one)
	var m big.Float
	// lg is log2 |log2 w|.
	var lg float64
	if ex := t.MantExp(&m); ex <= -10 {
		// log2(1+t) is t/ln 2 to within a factor of 1±2^-10.
		mf, _ := m.Float64()
		lg = float64(ex) + math.Log2(math.Abs(mf)) - math.Log2(math.Ln2)
	} else {
		ex := w.MantExp(&m)
		mf, _ := m.Float64()
		lg = math.Log2(math.Abs(float64(ex) + math.Log2(mf)))
	}
	ey := y.MantExp(&m)
	mf, _ := m.Float64()
	e := math.Exp2(lg + float64(ey) + math.Log2(math.Abs(mf)))
	if t.Signbit() != y.Signbit() {
		e = -e
	}
	return e
}

// powInt sets z to w^n by repeated squaring. z must not be w.
func powInt(z, w *big.Float, n int64) {
	inv := n < 0
	if inv {
		n = -n
	}
	b := new(big.Float).Copy(w)
	z.SetInt64(1)
	for n > 0 {
		if n&1 != 0 {
			z.Mul(z, b)
		}
		n >>= 1
		if n > 0 {
			b.Mul(b, b)
		}
	}
	if inv {
		z.Quo(one, z)
	}
}

// float converts x to a float64 argument for fn.
func float(x *big.Float, fn string) (float64, error) {
	f, _ := x.Float64()
	if math.IsInf(f, 0) {
		return 0, &RangeError{Func: fn}
	}
	return f, nil
}
