package biometric

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// TerminalConfirm asks the person at the controlling terminal to confirm
// presence by answering a yes/no question. It reports TypePasscode when the
// input is an interactive terminal and TypeNone otherwise.
type TerminalConfirm struct {
	in         io.Reader
	out        io.Writer
	fd         int
	isTerminal func(fd int) bool
	enrollment string
}

// NewTerminalConfirm binds the check to in/out. The enrollment id is derived
// from the host name and the user's home directory, so moving the vault to
// another account or machine invalidates gated secrets.
func NewTerminalConfirm(in *os.File, out io.Writer) *TerminalConfirm {
	host, _ := os.Hostname()
	home, _ := os.UserHomeDir()
	return &TerminalConfirm{
		in:         in,
		out:        out,
		fd:         int(in.Fd()),
		isTerminal: term.IsTerminal,
		enrollment: enrollmentID(host, home),
	}
}

func enrollmentID(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:16])
}

func (t *TerminalConfirm) Type(context.Context) (Type, error) {
	if t.isTerminal(t.fd) {
		return TypePasscode, nil
	}
	return TypeNone, nil
}

func (t *TerminalConfirm) Authenticate(ctx context.Context, prompt Prompt) error {
	if !t.isTerminal(t.fd) {
		return ErrUnavailable
	}

	msg := prompt.Message
	if msg == "" {
		msg = "Confirm it's you"
	}
	if _, err := fmt.Fprintf(t.out, "%s [y/N]: ", msg); err != nil {
		return err
	}

	answer := make(chan string, 1)
	go func() {
		line, _ := bufio.NewReader(t.in).ReadString('\n')
		answer <- strings.ToLower(strings.TrimSpace(line))
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case a := <-answer:
		if a == "y" || a == "yes" {
			return nil
		}
		return ErrCancelled
	}
}

func (t *TerminalConfirm) EnrollmentID(context.Context) (string, error) {
	if !t.isTerminal(t.fd) {
		return "", ErrUnavailable
	}
	return t.enrollment, nil
}
