package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/clinicauth/internal/client/controller"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	view() controller.View
	input()
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Status(ctx context.Context) error
}

// runREPL reads commands from reader until EOF, "exit" or "quit".
//
//	Signed out:
//	  - help           show available commands
//	  - login          sign in
//	  - register       create an account
//	  - status         report whether a session is present
//
//	Signed in:
//	  - whoami         reload and show the profile
//	  - logout         sign out
//	  - status         report whether a session is present
//
// Errors returned by command handlers are ignored here; the controller
// reports them through its message.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "clinic %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		a.input()
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.view() == controller.ViewAuthenticated {
				fmt.Fprintln(w, "Available commands: whoami, logout, status, exit")
			} else {
				fmt.Fprintln(w, "Available commands: login, register, status, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "register":
			_ = a.Register(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami", "profile":
			_ = a.Whoami(ctx)

		case "status":
			_ = a.Status(ctx)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}
