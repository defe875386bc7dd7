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
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	LoginWithGoogle(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Share(ctx context.Context) error
	Drafts(ctx context.Context) error
	Resume(ctx context.Context, arg string) error
	Show(ctx context.Context, arg string) error
	List(ctx context.Context, arg string) error
}

// runREPL starts a simple read–eval–print loop for the testimony CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF or when the user types "exit" or "quit".
// Commands prompt for their own input through the same reader.
//
// Prompt & Commands
//
//	Anyone:
//	  - help               show available commands
//	  - list [page]        browse published testimonies
//	  - show <slug|id>     show one testimony
//	  - share              write a testimony (asks to log in first)
//	  - register | login | google
//	  - exit | quit
//
//	Logged in, additionally:
//	  - whoami             account and session expiry
//	  - drafts             list saved drafts
//	  - resume <id>        continue a saved draft
//	  - logout
//
// Errors returned by command handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("tk %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		arg := ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: share, drafts, resume <id>, (l)ist [page], show <slug>, whoami, logout, exit")
			} else {
				printlnFn("Available commands: register, login, google, share, (l)ist [page], show <slug>, exit")
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "google":
			cmdErr = a.LoginWithGoogle(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "share":
			cmdErr = a.Share(ctx)

		case "drafts":
			cmdErr = a.Drafts(ctx)

		case "resume":
			if arg == "" {
				printlnFn("Usage: resume <id>")
				continue
			}
			cmdErr = a.Resume(ctx, arg)

		case "show":
			if arg == "" {
				printlnFn("Usage: show <slug>")
				continue
			}
			cmdErr = a.Show(ctx, arg)

		case "l", "list":
			cmdErr = a.List(ctx, arg)

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
