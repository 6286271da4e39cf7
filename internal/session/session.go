// Package session holds the state of an interactive calculator: the pending
// expression, the display, the memory register, and the angle mode.
package session

import (
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/zephyrtronium/safecalc"
)

// Keys are the characters accepted from the keyboard by Type.
const Keys = "0123456789+-*/().^"

// ErrorDisplay is shown after a failed evaluation.
const ErrorDisplay = "Error"

// Button labels with special behavior in Press.
const (
	ButtonClear    = "C"
	ButtonDelete   = "DEL"
	ButtonEquals   = "="
	ButtonPi       = "pi"
	ButtonE        = "e"
	ButtonStore    = "M+"
	ButtonRecall   = "MR"
	ButtonMemClear = "MC"
	ButtonDegrees  = "DEG"
	ButtonRadians  = "RAD"
)

// Buttons is the calculator keypad, row by row.
var Buttons = [][]string{
	{"7", "8", "9", "/", "sqrt"},
	{"4", "5", "6", "*", "^"},
	{"1", "2", "3", "-", "log"},
	{"0", ".", "(", ")", "+"},
	{"sin", "cos", "tan", "exp", "pi"},
	{"e", "M+", "MR", "MC", "="},
}

// Session is a single calculator. It is not safe for concurrent use, but
// sessions sharing an Evaluator may run in different goroutines.
type Session struct {
	ev   *safecalc.Evaluator
	log  *slog.Logger
	expr string
	disp string
	mem  float64
}

type options struct {
	ev  *safecalc.Evaluator
	log *slog.Logger
	deg *bool
}

// Option customizes a session at creation.
type Option func(*options)

// WithLogger sets the logger for the session. By default, nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithDegrees sets the initial angle mode. Sessions start in degrees.
func WithDegrees(on bool) Option {
	return func(o *options) {
		o.deg = &on
	}
}

// WithEvaluator sets the evaluator the session uses. Changing the session's
// angle mode changes the evaluator's.
func WithEvaluator(ev *safecalc.Evaluator) Option {
	return func(o *options) {
		o.ev = ev
	}
}

// New creates a session.
func New(opts ...Option) *Session {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	s := &Session{ev: o.ev, log: o.log}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	switch {
	case s.ev == nil:
		s.ev = safecalc.NewEvaluator(o.deg == nil || *o.deg)
	case o.deg != nil:
		s.ev.SetDegreeMode(*o.deg)
	}
	return s
}

// Expression returns the pending expression.
func (s *Session) Expression() string {
	return s.expr
}

// Display returns the text shown to the user.
func (s *Session) Display() string {
	return s.disp
}

// Memory returns the value in the memory register.
func (s *Session) Memory() float64 {
	return s.mem
}

// Degrees returns whether trigonometric functions take degrees.
func (s *Session) Degrees() bool {
	return s.ev.DegreeMode()
}

// Append adds text to the end of the expression.
func (s *Session) Append(text string) {
	s.expr += text
	s.disp = s.expr
}

// Type appends a keyboard character if it is one of Keys and reports whether
// it was accepted.
func (s *Session) Type(r rune) bool {
	if r >= 0x80 || !strings.ContainsRune(Keys, r) {
		return false
	}
	s.Append(string(r))
	return true
}

// Clear empties the expression and the display.
func (s *Session) Clear() {
	s.expr = ""
	s.disp = ""
}

// Backspace removes the last character of the expression, if any.
func (s *Session) Backspace() {
	_, n := utf8.DecodeLastRuneInString(s.expr)
	s.expr = s.expr[:len(s.expr)-n]
	s.disp = s.expr
}

// Press handles a keypad button.
func (s *Session) Press(button string) {
	switch button {
	case ButtonClear:
		s.Clear()
	case ButtonDelete:
		s.Backspace()
	case ButtonEquals:
		s.Evaluate()
	case ButtonPi:
		s.Append(safecalc.Format(math.Pi))
	case ButtonE:
		s.Append(safecalc.Format(math.E))
	case ButtonStore:
		s.MemoryStore()
	case ButtonRecall:
		s.MemoryRecall()
	case ButtonMemClear:
		s.MemoryClear()
	case ButtonDegrees, ButtonRadians:
		s.ToggleMode()
	case "sin", "cos", "tan", "log", "sqrt", "exp":
		s.Append(button + "(")
	default:
		s.Append(button)
	}
}

// Evaluate evaluates the pending expression. On success, the expression and
// display both become the formatted result, so the next input continues from
// it. On failure, the display shows ErrorDisplay and the expression is reset.
func (s *Session) Evaluate() (float64, error) {
	expr := s.expr
	r, err := s.ev.Evaluate(expr)
	if err != nil {
		s.log.Info("evaluation failed", slog.String("expr", expr), slog.String("kind", Classify(err)), slog.Any("err", err))
		s.expr = ""
		s.disp = ErrorDisplay
		return 0, err
	}
	s.expr = safecalc.Format(r)
	s.disp = s.expr
	s.log.Debug("evaluated", slog.String("expr", expr), slog.String("result", s.expr))
	return r, nil
}

// Enter evaluates a line of input as Compose describes.
func (s *Session) Enter(line string) (float64, error) {
	s.expr = s.Compose(line)
	s.disp = s.expr
	return s.Evaluate()
}

// Compose returns the expression Enter would evaluate for a line. A line
// beginning with a binary operator continues the pending expression; any
// other line replaces it.
func (s *Session) Compose(line string) string {
	line = strings.TrimSpace(line)
	if line != "" && strings.IndexByte(safecalc.Operators, line[0]) >= 0 {
		return s.expr + line
	}
	return line
}

// ToggleMode switches between degrees and radians and returns whether the
// session is now in degrees.
func (s *Session) ToggleMode() bool {
	on := !s.ev.DegreeMode()
	s.ev.SetDegreeMode(on)
	s.log.Debug("angle mode", slog.Bool("degrees", on))
	return on
}

// MemoryStore copies the displayed number into memory. If the display is not
// a number, memory is unchanged.
func (s *Session) MemoryStore() {
	f, err := strconv.ParseFloat(strings.TrimSpace(s.disp), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		s.log.Debug("display is not a number", slog.String("display", s.disp))
		return
	}
	s.mem = f
}

// MemoryRecall appends the memory value to the expression.
func (s *Session) MemoryRecall() {
	s.Append(safecalc.Format(s.mem))
}

// MemoryClear sets memory to zero.
func (s *Session) MemoryClear() {
	s.mem = 0
}

// Classify names the kind of an evaluation error.
func Classify(err error) string {
	var (
		name   *safecalc.NameError
		fn     *safecalc.FuncError
		call   *safecalc.CallError
		div    *safecalc.DivisionError
		domain *safecalc.DomainError
		rng    *safecalc.RangeError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, safecalc.ErrSyntax):
		return "syntax"
	case errors.As(err, &name):
		return "name"
	case errors.As(err, &fn):
		return "function"
	case errors.As(err, &call):
		return "call"
	case errors.As(err, &div):
		return "division"
	case errors.As(err, &domain):
		return "domain"
	case errors.As(err, &rng):
		return "range"
	default:
		return "unknown"
	}
}
