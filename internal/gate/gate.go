// Package gate implements the 4-digit code that guards chapter editing.
//
// The code is a convenience lock for a shared device, not a security
// boundary: it is stored in plain configuration.
package gate

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// DefaultPIN is used when no code is configured.
const DefaultPIN = "1234"

// MaxAttempts is the number of tries Prompt allows.
const MaxAttempts = 3

var (
	// ErrInvalidPIN is returned for codes that are not exactly four digits.
	ErrInvalidPIN = errors.New("PIN must be exactly 4 digits")
	// ErrDenied is returned when the entered code does not match.
	ErrDenied = errors.New("incorrect PIN")
)

// Gate checks entered codes against the configured PIN.
type Gate struct {
	pin string
}

// New creates a gate for pin. An empty pin selects DefaultPIN.
func New(pin string) (*Gate, error) {
	if pin == "" {
		pin = DefaultPIN
	}
	if err := Validate(pin); err != nil {
		return nil, err
	}
	return &Gate{pin: pin}, nil
}

// Validate checks that pin is four ASCII digits.
func Validate(pin string) error {
	if len(pin) != 4 {
		return ErrInvalidPIN
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return ErrInvalidPIN
		}
	}
	return nil
}

// Check compares an entered code with the PIN.
func (g *Gate) Check(code string) error {
	if strings.TrimSpace(code) != g.pin {
		return ErrDenied
	}
	return nil
}

// Prompt asks for the code on out and reads it from in, hiding input when in
// is a terminal. It gives up after MaxAttempts wrong codes.
func (g *Gate) Prompt(in io.Reader, out io.Writer) error {
	f, isFile := in.(*os.File)
	interactive := isFile && term.IsTerminal(int(f.Fd()))
	reader := bufio.NewReader(in)

	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		fmt.Fprint(out, "PIN: ")

		var code string
		if interactive {
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(out)
			if err != nil {
				return fmt.Errorf("failed to read PIN: %w", err)
			}
			code = string(b)
		} else {
			line, err := reader.ReadString('\n')
			if err != nil && (err != io.EOF || line == "") {
				return fmt.Errorf("failed to read PIN: %w", err)
			}
			code = line
		}

		if err := g.Check(code); err == nil {
			return nil
		}
		fmt.Fprintln(out, "Incorrect PIN")
	}
	return ErrDenied
}
