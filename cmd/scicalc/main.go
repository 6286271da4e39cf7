package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/zephyrtronium/safecalc"
	"github.com/zephyrtronium/safecalc/internal/session"
)

func main() {
	log.SetFlags(0)
	var (
		inname, verb       string
		rad, echo, verbose bool
		prec               int
	)
	flag.StringVar(&inname, "in", "", "input file, one expression per line (default stdin if no args given)")
	flag.StringVar(&verb, "fmt", "", "result formatting string (default shortest exact decimal)")
	flag.IntVar(&prec, "p", safecalc.DefaultPrec, "precision of intermediate calculations in bits")
	flag.BoolVar(&rad, "rad", false, "start with angles in radians instead of degrees")
	flag.BoolVar(&echo, "echo", false, "print parse trees")
	flag.BoolVar(&verbose, "v", false, "log debug messages")
	flag.Parse()
	if prec <= 0 {
		log.Fatalf("precision (%d) must be positive", prec)
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	ev := safecalc.NewEvaluator(!rad, safecalc.Prec(uint(prec)))
	c := &calc{
		s:    session.New(session.WithEvaluator(ev), session.WithLogger(logger)),
		out:  os.Stdout,
		verb: verb,
		echo: echo,
	}

	if inname != "" {
		quit, err := c.file(inname)
		if err != nil {
			log.Fatal(err)
		}
		if quit {
			return
		}
	}
	for _, arg := range flag.Args() {
		if c.line(arg) {
			return
		}
	}
	if inname != "" || flag.NArg() > 0 {
		return
	}
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		if err := repl(c); err != nil {
			log.Fatal(err)
		}
		return
	}
	if _, err := c.stream(os.Stdin); err != nil {
		log.Fatal(err)
	}
}

// calc runs calculator commands and expressions against a session.
type calc struct {
	s    *session.Session
	out  io.Writer
	verb string
	echo bool
}

// file streams the named file, or stdin if the name is "-".
func (c *calc) file(name string) (quit bool, err error) {
	if name == "-" {
		return c.stream(os.Stdin)
	}
	f, err := os.Open(name)
	if err != nil {
		return false, err
	}
	defer f.Close()
	return c.stream(f)
}

// stream processes each line of r until EOF or a quit command.
func (c *calc) stream(r io.Reader) (quit bool, err error) {
	scan := bufio.NewScanner(r)
	for scan.Scan() {
		if c.line(scan.Text()) {
			return true, nil
		}
	}
	return false, scan.Err()
}

// line processes one line of input and reports whether the user asked to
// quit. Blank lines are ignored.
func (c *calc) line(text string) (quit bool) {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return false
	case text[0] == ':':
		return c.command(text)
	}
	if c.echo {
		if a, err := safecalc.ParseString(c.s.Compose(text)); err == nil {
			fmt.Fprintf(c.out, "%v : ", a)
		}
	}
	r, err := c.s.Enter(text)
	if err != nil {
		fmt.Fprintf(c.out, "%s: %v\n", session.ErrorDisplay, err)
		return false
	}
	c.result(r)
	return false
}

func (c *calc) result(r float64) {
	if c.verb == "" {
		fmt.Fprintln(c.out, safecalc.Format(r))
		return
	}
	fmt.Fprintf(c.out, c.verb+"\n", r)
}

func (c *calc) command(text string) (quit bool) {
	switch cmd := strings.ToLower(strings.TrimSpace(text[1:])); cmd {
	case "q", "quit", "exit":
		return true
	case "deg":
		if !c.s.Degrees() {
			c.s.ToggleMode()
		}
		fmt.Fprintln(c.out, c.mode())
	case "rad":
		if c.s.Degrees() {
			c.s.ToggleMode()
		}
		fmt.Fprintln(c.out, c.mode())
	case "mode":
		fmt.Fprintln(c.out, c.mode())
	case "m+":
		c.s.MemoryStore()
		fmt.Fprintln(c.out, safecalc.Format(c.s.Memory()))
	case "mr":
		c.s.MemoryRecall()
		fmt.Fprintln(c.out, c.s.Expression())
	case "mc":
		c.s.MemoryClear()
	case "c":
		c.s.Clear()
	case "del":
		c.s.Backspace()
		fmt.Fprintln(c.out, c.s.Expression())
	case "help", "h", "?":
		c.help()
	default:
		fmt.Fprintf(c.out, "unknown command %q (try :help)\n", cmd)
	}
	return false
}

func (c *calc) mode() string {
	if c.s.Degrees() {
		return session.ButtonDegrees
	}
	return session.ButtonRadians
}

func (c *calc) help() {
	fmt.Fprintf(c.out, "operators: + - * / ^ ** ( )\n")
	fmt.Fprintf(c.out, "names: %s\n", strings.Join(safecalc.Builtins(), " "))
	fmt.Fprintf(c.out, "a line starting with an operator continues from the last result\n")
	fmt.Fprintf(c.out, "commands: :deg :rad :mode :m+ :mr :mc :c :del :help :q\n")
}
