package main

import (
	"errors"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/zephyrtronium/safecalc"
)

// repl runs an interactive loop on the terminal connected to stdin.
func repl(c *calc) error {
	fd := int(os.Stdin.Fd())
	old, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer term.Restore(fd, old)

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}, prompt(c))
	t.AutoCompleteCallback = complete
	c.out = t
	c.help()
	for {
		line, err := t.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if c.line(line) {
			return nil
		}
		t.SetPrompt(prompt(c))
	}
}

func prompt(c *calc) string {
	return c.mode() + "> "
}

// complete expands the name before the cursor to the builtin it uniquely
// prefixes when the user presses tab. Functions get an opening parenthesis.
func complete(line string, pos int, key rune) (string, int, bool) {
	if key != '\t' {
		return "", 0, false
	}
	start := pos
	for start > 0 && isIdent(line[start-1]) {
		start--
	}
	prefix := line[start:pos]
	if prefix == "" {
		return "", 0, false
	}
	var match string
	for _, name := range safecalc.Builtins() {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if match != "" {
			// Ambiguous.
			return "", 0, false
		}
		match = name
	}
	if match == "" {
		return "", 0, false
	}
	if match != "pi" && match != "e" {
		match += "("
	}
	if match == prefix {
		return "", 0, false
	}
	out := line[:start] + match + line[pos:]
	return out, start + len(match), true
}

func isIdent(b byte) bool {
	return b == '_' || 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z' || '0' <= b && b <= '9'
}
