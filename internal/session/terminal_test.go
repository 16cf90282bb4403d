package session

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestTerminal_Prompt(t *testing.T) {
	numeric := func(s string) (bool, string) {
		for _, r := range s {
			if r < '0' || r > '9' {
				return false, "digits only\n"
			}
		}
		return s != "", "digits only\n"
	}

	tests := map[string]struct {
		input     string
		opts      []promptOption
		exp       string
		expErr    error
		expOutput string
	}{
		"plain answer": {
			input:     "hello\n",
			exp:       "hello",
			expOutput: "? ",
		},
		"trims whitespace and crlf": {
			input:     "  hello \r\n",
			exp:       "hello",
			expOutput: "? ",
		},
		"last line without newline": {
			input:     "hello",
			exp:       "hello",
			expOutput: "? ",
		},
		"retries until valid": {
			input:     "abc\n42\n",
			opts:      []promptOption{withValidator(numeric)},
			exp:       "42",
			expOutput: "? digits only\n? ",
		},
		"gives up after max tries": {
			input:     "a\nb\n42\n",
			opts:      []promptOption{withValidator(numeric), withMaxTries(2)},
			expErr:    ErrTooManyTries,
			expOutput: "? digits only\n? digits only\n",
		},
		"input ends": {
			input:     "",
			expErr:    io.EOF,
			expOutput: "? ",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			term := newTerminal(fakeConn{Reader: strings.NewReader(tt.input), Writer: &out})

			got, err := term.prompt("? ", tt.opts...)
			if tt.expErr != nil {
				if !errors.Is(err, tt.expErr) {
					t.Fatalf("expected error %v, got %v", tt.expErr, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			testutil.AssertEqual(t, "answer", got, tt.exp)
			testutil.AssertEqual(t, "output", out.String(), tt.expOutput)
		})
	}
}

func TestTerminal_PromptYN(t *testing.T) {
	tests := map[string]struct {
		input string
		exp   bool
	}{
		"yes":           {input: "yes\n", exp: true},
		"y upper":       {input: "Y\n", exp: true},
		"no":            {input: "n\n", exp: false},
		"retry then no": {input: "maybe\nno\n", exp: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			term := newTerminal(fakeConn{Reader: strings.NewReader(tt.input), Writer: io.Discard})

			got, err := term.promptYN("Sure? ")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "answer", got, tt.exp)
		})
	}
}

func TestTerminal_SharedBuffer(t *testing.T) {
	term := newTerminal(fakeConn{Reader: strings.NewReader("alice\nwhere bob\n"), Writer: io.Discard})

	name, err := term.prompt("name? ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	line, err := term.readLine()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "name", name, "alice")
	testutil.AssertEqual(t, "line", line, "where bob")
}
