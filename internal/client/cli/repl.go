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
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Status(ctx context.Context) error
	Sync(ctx context.Context) error
	Book(ctx context.Context) error
	Order(ctx context.Context) error
	Cart(ctx context.Context) error
	Review(ctx context.Context) error
	Offline(ctx context.Context, on bool) error
	History(ctx context.Context, entityID string) error
	Track(ctx context.Context, entityID string) error
	Retry(ctx context.Context) error
	Backup(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the BookBite CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("bb %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: status, sync, book, order, cart, review, offline on|off, history <id>, track <id>, retry, backup, logout, exit")
			} else {
				printlnFn("Available commands: login, status, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "status":
			_ = a.Status(ctx)

		case "sync":
			_ = a.Sync(ctx)

		case "book":
			_ = a.Book(ctx)

		case "order":
			_ = a.Order(ctx)

		case "cart":
			_ = a.Cart(ctx)

		case "review":
			_ = a.Review(ctx)

		case "offline":
			if len(args) == 0 || (args[0] != "on" && args[0] != "off") {
				printlnFn("Usage: offline on|off")
				continue
			}
			_ = a.Offline(ctx, args[0] == "on")

		case "history":
			if len(args) == 0 {
				printlnFn("Usage: history <order-or-booking-id>")
				continue
			}
			_ = a.History(ctx, args[0])

		case "track":
			if len(args) == 0 {
				printlnFn("Usage: track <order-or-booking-id>")
				continue
			}
			_ = a.Track(ctx, args[0])

		case "retry":
			_ = a.Retry(ctx)

		case "backup":
			_ = a.Backup(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
