package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	touch()

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	ForgotPassword(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	EditProfile(ctx context.Context) error
	Strength(ctx context.Context) error
	Token(ctx context.Context) error
	EnableBiometrics(ctx context.Context) error
	DisableBiometrics(ctx context.Context) error
	BiometricLogin(ctx context.Context) error
	Status(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, bio-login, forgot, reset, strength, status, exit"
	helpLoggedIn  = "Available commands: whoami, profile, passwd, token, bio-enable, bio-disable, strength, status, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the Holy Culture CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF, when ctx is cancelled, or when the user types
// "exit" or "quit".
//
// Handler errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("hc> %s > ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		a.touch()

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "bio-login":
			cmdErr = a.BiometricLogin(ctx)

		case "forgot":
			cmdErr = a.ForgotPassword(ctx)

		case "reset":
			cmdErr = a.ResetPassword(ctx)

		case "strength":
			cmdErr = a.Strength(ctx)

		case "status":
			cmdErr = a.Status(ctx)

		case "whoami", "profile", "passwd", "token", "bio-enable", "bio-disable", "logout":
			if !a.isLoggedIn() {
				printlnFn("Please log in first")
				continue
			}
			cmdErr = dispatchAuthenticated(ctx, a, cmd)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
	}
}

func dispatchAuthenticated(ctx context.Context, a execIface, cmd string) error {
	switch cmd {
	case "whoami":
		return a.WhoAmI(ctx)
	case "profile":
		return a.EditProfile(ctx)
	case "passwd":
		return a.ChangePassword(ctx)
	case "token":
		return a.Token(ctx)
	case "bio-enable":
		return a.EnableBiometrics(ctx)
	case "bio-disable":
		return a.DisableBiometrics(ctx)
	default:
		return a.Logout(ctx)
	}
}
