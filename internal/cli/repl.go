package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
	ListUsers(ctx context.Context) error
	Logout(ctx context.Context) error
	reportError(ctx context.Context, err error)
}

// runREPL reads one command per line from reader and dispatches it to a.
// Command errors are handed to a.reportError and do not stop the loop.
// The loop ends on EOF, on "exit" or "quit", or when ctx is done.
//
//	Not logged in:  help, register, login, exit
//	Logged in:      help, whoami, passwd, delete, users, logout, exit
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	commands := map[string]func(context.Context) error{
		"register": a.Register,
		"login":    a.Login,
		"whoami":   a.WhoAmI,
		"passwd":   a.ChangePassword,
		"delete":   a.DeleteAccount,
		"users":    a.ListUsers,
		"logout":   a.Logout,
	}

	for {
		if ctx.Err() != nil {
			return
		}

		printlnFn(fmt.Sprintf("sj %s> ", statusFn()))
		line, err := readLine(ctx, reader)
		if err != nil && line == "" {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, passwd, delete, users, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			fn, ok := commands[cmd]
			if !ok {
				printlnFn("Unknown command:", cmd)
				continue
			}
			if err := fn(ctx); err != nil {
				a.reportError(ctx, err)
			}
		}
	}
}

type lineResult struct {
	line string
	err  error
}

// readLine reads one line but gives up as soon as ctx is done. The abandoned
// read finishes in the background when the input is closed.
func readLine(ctx context.Context, reader *bufio.Reader) (string, error) {
	ch := make(chan lineResult, 1)
	go func() {
		line, err := reader.ReadString('\n')
		ch <- lineResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		return r.line, r.err
	}
}
