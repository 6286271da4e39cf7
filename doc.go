// Package safecalc implements a restricted calculator for untrusted input.
//
// Expressions are ordinary infix arithmetic: "+", "-", "*", "/", and "^" (or
// "**") for exponentiation, unary minus, parentheses, decimal literals, and
// calls like "sqrt(2)". "-2^2^n" is the same as "-(2^(2^n))". Parsing accepts
// any identifier, but evaluation only knows a fixed set of names: the functions
// sin, cos, tan, log, sqrt, and exp, and the constants pi and e. Any other name,
// and any syntax outside this grammar, is an error. There are no variables,
// assignments, or statements.
//
// Trigonometric functions take radians unless degree mode is on, in which case
// their arguments are converted from degrees first. Intermediate results are
// carried as big floats and rounded to float64 at the end.
package safecalc
