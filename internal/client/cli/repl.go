package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/docvault/internal/common"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. App satisfies it.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	GoogleLogin(ctx context.Context, idToken string) error
	Logout(ctx context.Context) error
	Status(ctx context.Context) error
	List(ctx context.Context, query string) error
	Show(ctx context.Context, id string) error
	New(ctx context.Context, title string) error
	Upload(ctx context.Context, id, path string) error
	Expiring(ctx context.Context) error
}

// runREPL reads commands from reader until EOF, "exit" or "quit".
//
//	Not logged in:
//	  register | login | google <id-token> | status | help | exit
//
//	Logged in:
//	  docs [query]        list or search documents
//	  show <id>           document details and versions
//	  new <title>         create a document
//	  upload <id> <path>  upload a file as the current version
//	  expiring            documents expiring soon
//	  status | logout | help | exit
//
// Command errors are reported and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("docvault %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: docs [query], show <id>, new <title>, upload <id> <path>, expiring, status, logout, exit")
			} else {
				printlnFn("Available commands: register, login, google <id-token>, status, exit")
			}

		case "register":
			report(a.Register(ctx))

		case "login":
			report(a.Login(ctx))

		case "google":
			if len(args) != 1 {
				printlnFn("Usage: google <id-token>")
				continue
			}
			report(a.GoogleLogin(ctx, args[0]))

		case "logout":
			report(a.Logout(ctx))

		case "status":
			report(a.Status(ctx))

		case "docs", "l", "list":
			report(a.List(ctx, strings.Join(args, " ")))

		case "show":
			if len(args) != 1 {
				printlnFn("Usage: show <id>")
				continue
			}
			report(a.Show(ctx, args[0]))

		case "new":
			if len(args) == 0 {
				printlnFn("Usage: new <title>")
				continue
			}
			report(a.New(ctx, strings.Join(args, " ")))

		case "upload":
			if len(args) != 2 {
				printlnFn("Usage: upload <id> <path>")
				continue
			}
			report(a.Upload(ctx, args[0], args[1]))

		case "expiring":
			report(a.Expiring(ctx))

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

func report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, common.ErrRenewalFailed), errors.Is(err, common.ErrUnauthorized):
		printlnFn("Session expired, please log in again.")
	case errors.Is(err, common.ErrInvalidCredentials):
		printlnFn("Invalid email or password.")
	case errors.Is(err, common.ErrUnavailable):
		printlnFn("Server unavailable, try again later.")
	default:
		printlnFn("Error:", err)
	}
}
