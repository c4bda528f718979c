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
	Verify(ctx context.Context) error
	Resend(ctx context.Context) error
	Login(ctx context.Context) error
	Onboard(ctx context.Context) error
	Recommend(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Profiles(ctx context.Context) error
	Profile(ctx context.Context, args []string) error
	Saved(ctx context.Context) error
	Save(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Recent(ctx context.Context) error
	Health(ctx context.Context) error
	Whoami(ctx context.Context) error
	Logout(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
}

const (
	helpAnonymous = "Available commands: register, verify, resend, login, search <query>, recommend <username>, profiles, profile <username>, show <id>, recent, health, exit"
	helpSignedIn  = "Available commands: onboard, recommend [username], search <query>, (s)aved, save <id>, show <id>, recent, profiles, profile <username>, health, whoami, logout, delete-account, exit"
)

// runREPL starts a simple read–eval–print loop for the Bill Board CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a' with the remaining tokens as arguments.
// Unknown commands are reported back to the user. The loop exits on EOF or
// when the user types "exit" or "quit".
//
// Command handlers print their own outcome; errors they return are ignored
// here to keep the loop going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("bb %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if err != nil {
				return
			}
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpAnonymous)
			}

		case "register":
			_ = a.Register(ctx)

		case "verify":
			_ = a.Verify(ctx)

		case "resend":
			_ = a.Resend(ctx)

		case "login":
			_ = a.Login(ctx)

		case "onboard":
			_ = a.Onboard(ctx)

		case "r", "recommend":
			_ = a.Recommend(ctx, args)

		case "search":
			_ = a.Search(ctx, args)

		case "profiles":
			_ = a.Profiles(ctx)

		case "profile":
			_ = a.Profile(ctx, args)

		case "s", "saved":
			_ = a.Saved(ctx)

		case "save":
			_ = a.Save(ctx, args)

		case "show":
			_ = a.Show(ctx, args)

		case "recent":
			_ = a.Recent(ctx)

		case "health":
			_ = a.Health(ctx)

		case "whoami":
			_ = a.Whoami(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "delete-account":
			_ = a.DeleteAccount(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
