package safecalc

import (
	"math"
	"strconv"
	"sync/atomic"
)

// Evaluator evaluates expression strings. Unlike a Context, an Evaluator is
// safe for concurrent use. Each call to Evaluate parses its own expression and
// uses its own Context, and reads the degree mode exactly once, so changing the
// mode while an evaluation is in progress never mixes modes within a result.
type Evaluator struct {
	deg  atomic.Bool
	base *Context
}

// NewEvaluator creates an evaluator with the given degree mode. The options
// apply to every evaluation; a Degrees option there is overridden by the
// evaluator's mode.
func NewEvaluator(degrees bool, opts ...ContextOption) *Evaluator {
	ev := &Evaluator{base: NewContext(opts...)}
	ev.deg.Store(degrees)
	return ev
}

// SetDegreeMode sets whether subsequent evaluations take trigonometric
// arguments in degrees.
func (ev *Evaluator) SetDegreeMode(on bool) {
	ev.deg.Store(on)
}

// DegreeMode returns whether the evaluator is in degree mode.
func (ev *Evaluator) DegreeMode() bool {
	return ev.deg.Load()
}

// Evaluate parses and evaluates an expression.
func (ev *Evaluator) Evaluate(expr string) (float64, error) {
	deg := ev.deg.Load()
	a, err := ParseString(expr)
	if err != nil {
		return 0, err
	}
	return ev.base.Clone(Degrees(deg)).Eval(a)
}

// Format formats a result in a canonical decimal form which parses back to
// exactly the same value. Magnitudes from 1e-4 up to 1e16 are written without
// an exponent.
func Format(x float64) string {
	if a := math.Abs(x); a == 0 || 1e-4 <= a && a < 1e16 {
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return strconv.FormatFloat(x, 'g', -1, 64)
}
