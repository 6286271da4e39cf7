package safecalc

import (
	"math/big"
	"strconv"
)

// NameError is an error from a reference to a bare name that is not a known
// constant.
type NameError struct {
	// Name is the unknown name.
	Name string
}

func (err *NameError) Error() string {
	return "unknown name: " + strconv.Quote(err.Name)
}

// FuncError is an error from a call to a name that is not a known function.
type FuncError struct {
	// Func is the unknown function name.
	Func string
}

func (err *FuncError) Error() string {
	return "unknown function: " + strconv.Quote(err.Func)
}

// CallError is an error indicating a known name used with the wrong number of
// arguments. That includes calling a constant, like "pi()", and referring to
// a function without calling it, like "sin".
type CallError struct {
	// Func is the name that was used.
	Func string
	// Len is the number of arguments supplied, or -1 if the name was not
	// called at all.
	Len int
}

func (err *CallError) Error() string {
	if err.Len < 0 {
		return err.Func + " is a function and must be called with an argument"
	}
	return "cannot call " + err.Func + " with " + strconv.Itoa(err.Len) + " arguments"
}

// DomainError is an error returned when a function or operator is applied to
// an argument outside its domain, e.g. sqrt(-1) or (-8)^(1/3).
type DomainError struct {
	// X is the out-of-domain argument.
	X *big.Float
	// Func is a name identifying the function or operator.
	Func string
	// Reason is an additional explanation, if any.
	Reason string
}

func (err *DomainError) Error() string {
	r := err.X.Text('g', 10) + " outside domain"
	if err.Func != "" {
		r += " of " + err.Func
	}
	if err.Reason != "" {
		r += ": " + err.Reason
	}
	return r
}

// DivisionError is an error returned for division by zero, including zero
// raised to a negative power.
type DivisionError struct {
	// X is the dividend for "/", or the exponent for "^".
	X *big.Float
	// Op is the operator, "/" or "^".
	Op string
}

func (err *DivisionError) Error() string {
	if err.Op == "^" {
		return "division by zero: 0 ^ " + err.X.Text('g', 10)
	}
	return "division by zero: " + err.X.Text('g', 10) + " / 0"
}

// RangeError is an error returned when a result is too large in magnitude to
// be represented as a float64.
type RangeError struct {
	// Func is the function or operator that overflowed, or empty if the
	// overflow happened converting the final result.
	Func string
}

func (err *RangeError) Error() string {
	if err.Func == "" {
		return "result out of range"
	}
	return "result of " + err.Func + " out of range"
}
