package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/jobkeeper/internal/common"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Fetch(ctx context.Context, args []string) error
	Jobs(ctx context.Context) error
	Search(ctx context.Context, args []string) error
	Filter(ctx context.Context, args []string) error
	Sort(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Save(ctx context.Context, args []string) error
	Unsave(ctx context.Context, args []string) error
	Saved(ctx context.Context) error
	Apply(ctx context.Context, args []string) error
	Applied(ctx context.Context) error
	Cancel(ctx context.Context, args []string) error
	ClearSaved(ctx context.Context) error
	ClearApplied(ctx context.Context) error
	Stats(ctx context.Context) error
}

const (
	helpGuest = `Available commands:
  fetch [force]           reload the job feed ("force" skips the cache)
  jobs | l                list jobs matching the current search
  search <text>           search titles and companies
  filter [key=v1,v2 ...]  filter by type, model, seniority, salary ("filter clear" resets)
  sort <key> [desc]       sort by title, company, salary or none
  show <n|id>             show job details
  register | login        create an account or sign in
  stats                   show client statistics
  exit | quit             leave the program`

	helpUser = helpGuest + `
  save <n|id>             save a job
  unsave <n|id>           remove a saved job
  saved                   list saved jobs
  apply <n|id>            apply for a job
  applied                 list your applications
  cancel <n|id>           withdraw an application
  clear-saved             remove all your saved jobs
  clear-applied           withdraw all your applications
  whoami                  show the signed-in user
  logout                  sign out`
)

// runREPL starts a simple read–eval–print loop for the jobkeeper CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Errors returned by handlers are printed as
// user-facing messages; the loop keeps going. It exits on EOF, on "exit" or
// "quit", or when ctx is cancelled.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("jk (%s) > ", statusFn()))

		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpUser)
			} else {
				printlnFn(helpGuest)
			}

		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "fetch", "refresh":
			cmdErr = a.Fetch(ctx, args)
		case "l", "jobs", "list":
			cmdErr = a.Jobs(ctx)
		case "search":
			cmdErr = a.Search(ctx, args)
		case "filter":
			cmdErr = a.Filter(ctx, args)
		case "sort":
			cmdErr = a.Sort(ctx, args)
		case "show":
			cmdErr = a.Show(ctx, args)

		case "save":
			cmdErr = a.Save(ctx, args)
		case "unsave":
			cmdErr = a.Unsave(ctx, args)
		case "saved":
			cmdErr = a.Saved(ctx)
		case "apply":
			cmdErr = a.Apply(ctx, args)
		case "applied":
			cmdErr = a.Applied(ctx)
		case "cancel":
			cmdErr = a.Cancel(ctx, args)
		case "clear-saved":
			cmdErr = a.ClearSaved(ctx)
		case "clear-applied":
			cmdErr = a.ClearApplied(ctx)

		case "stats":
			cmdErr = a.Stats(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn(userMessage(cmdErr))
		}
	}
}

// errUsage marks errors that carry a usage hint meant to be shown verbatim.
var errUsage = errors.New("usage")

func usage(text string) error {
	return fmt.Errorf("%w: %s", errUsage, text)
}

// userMessage renders err for the prompt, naming the reason.
func userMessage(err error) string {
	switch {
	case errors.Is(err, errUsage):
		return "Usage: " + strings.TrimPrefix(err.Error(), errUsage.Error()+": ")
	case errors.Is(err, common.ErrAlreadyRegistered):
		return "An account with this email already exists."
	case errors.Is(err, common.ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, common.ErrNotAuthenticated):
		return "Please login or register first."
	case errors.Is(err, common.ErrAlreadyApplied):
		return "You have already applied for this job. See 'applied'."
	case errors.Is(err, common.ErrFeedUnavailable):
		return "Could not load jobs, the feed is unavailable. Try 'fetch' again."
	case errors.Is(err, common.ErrPersistenceRead), errors.Is(err, common.ErrPersistenceWrite):
		return "Local storage error, please try again."
	case errors.Is(err, common.ErrNotFound):
		return "Not found: " + strings.TrimSuffix(err.Error(), ": "+common.ErrNotFound.Error())
	default:
		return "Error: " + err.Error()
	}
}
