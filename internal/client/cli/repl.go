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
	Ask(ctx context.Context, text string) error
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	History(ctx context.Context) error
	Open(ctx context.Context, id string) error
	Back(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	Search(ctx context.Context, term string) error
	Clear(ctx context.Context) error
	Lang(ctx context.Context) error
	Profile(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
	Speak(ctx context.Context, arg string) error
}

// runREPL starts a simple read–eval–print loop for the chat client.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Lines that are not a known
// command are sent as chat messages. The loop exits on scanner EOF or when
// the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Always:
//	  - help            — show available commands
//	  - lang            — toggle the answer language (english/hindi)
//	  - clear           — clear the current conversation
//	  - speak <n>       — play/pause the assistant message at index n
//	  - exit | quit     — leave the program
//
//	Not logged in:
//	  - register        — create an account (email verification code)
//	  - login           — authenticate
//
//	Logged in:
//	  - history         — list archived conversations
//	  - open <id>       — replay an archived conversation
//	  - back            — return from replay to the live conversation
//	  - search <text>   — search the fetched history locally
//	  - delete <id>     — delete one archived conversation
//	  - deleteall       — delete the whole archive
//	  - profile         — show account details
//	  - deleteaccount   — delete the account (email verification code)
//	  - logout          — log out
//
// Any errors returned by command handlers are ignored here; handlers should
// report their own errors. This keeps the loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("gita> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Commands: history, open <id>, back, search <text>, delete <id>, deleteall, profile, deleteaccount, lang, clear, speak <n>, logout, exit")
			} else {
				printlnFn("Commands: register, login, lang, clear, speak <n>, exit")
			}
			printlnFn("Anything else is sent as a question.")

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "history":
			_ = a.History(ctx)

		case "open":
			if len(args) == 0 {
				printlnFn("Usage: open <id>")
				continue
			}
			_ = a.Open(ctx, args[0])

		case "back":
			_ = a.Back(ctx)

		case "search":
			_ = a.Search(ctx, strings.Join(args, " "))

		case "delete":
			if len(args) == 0 {
				printlnFn("Usage: delete <id>")
				continue
			}
			_ = a.Delete(ctx, args[0])

		case "deleteall":
			_ = a.DeleteAll(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "deleteaccount":
			_ = a.DeleteAccount(ctx)

		case "lang":
			_ = a.Lang(ctx)

		case "clear":
			_ = a.Clear(ctx)

		case "speak":
			if len(args) == 0 {
				printlnFn("Usage: speak <message index>")
				continue
			}
			_ = a.Speak(ctx, args[0])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			_ = a.Ask(ctx, line)
		}
	}
}
