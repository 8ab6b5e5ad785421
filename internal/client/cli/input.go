package cli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dmitrijs2005/holyculture/internal/common"
)

// maxPasswordInput bounds what we accept from the terminal. Longer input is
// almost certainly a paste accident.
const maxPasswordInput = 1024

var errInputTooLong = errors.New("input too long")

// readPassword is swapped out in tests so they never touch a real terminal.
var readPassword = term.ReadPassword

// GetSimpleText writes prompt followed by "> " and returns the next line from
// reader with surrounding whitespace removed. A final line without a newline
// is still returned.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprintf(w, "%s\n> ", prompt); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetOptionalText returns nil when the answer is empty, meaning "keep the
// current value".
func GetOptionalText(reader *bufio.Reader, prompt string, w io.Writer) (*string, error) {
	s, err := GetSimpleText(reader, prompt+" (empty to keep)", w)
	if err != nil || s == "" {
		return nil, err
	}
	return &s, nil
}

// GetPassword reads a password from stdin without echo. The caller owns the
// returned slice and should wipe it.
func GetPassword(prompt string, w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprintf(w, "%s: ", prompt); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	if len(pw) > maxPasswordInput {
		common.WipeByteArray(pw)
		return nil, errInputTooLong
	}
	// Some terminals leave a carriage return behind.
	return bytes.TrimRight(pw, "\r"), nil
}
