package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/todoclient/internal/client/api"
	"github.com/dmitrijs2005/todoclient/internal/client/config"
	"github.com/dmitrijs2005/todoclient/internal/client/session"
)

// printlnFn and printFn are test seams for user-facing output. In tests,
// replace them with stubs.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	activity(ctx context.Context)

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Profile(ctx context.Context) error

	Lists(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	NewList(ctx context.Context) error
	RenameList(ctx context.Context, args []string) error
	DeleteList(ctx context.Context, args []string) error

	Tasks(ctx context.Context, args []string) error
	AddTask(ctx context.Context, args []string) error
	EditTask(ctx context.Context, args []string) error
	Complete(ctx context.Context, args []string) error
	Reopen(ctx context.Context, args []string) error
	DeleteTask(ctx context.Context, args []string) error

	Stats(ctx context.Context) error
	Theme(ctx context.Context, args []string) error
	Prefs(ctx context.Context, args []string) error
	Health(ctx context.Context) error
}

// publicCommands work without a session.
var publicCommands = map[string]bool{
	"help": true, "register": true, "login": true, "theme": true, "health": true,
}

// runREPL starts a simple read-eval-print loop for the todo CLI.
//
// It reads a line from reader, parses the first token as the command and
// the rest as arguments, and dispatches to methods on 'a'. The loop exits on
// EOF or when the user types "exit" or "quit".
//
// Prompt & Commands
//
//	Not logged in:
//	  - help                   show available commands
//	  - register | login       create an account / authenticate
//	  - theme [light|dark]     show or change the theme
//	  - health                 check the backend
//	  - exit | quit            leave the program
//
//	Logged in, additionally:
//	  - whoami | profile       show / edit the account
//	  - lists | show <id>      lists with progress / one list with its tasks
//	  - newlist | renamelist <id> | dellist <id>
//	  - tasks [list-id]        all tasks, or the tasks of one list
//	  - addtask <list-id> | edittask <id> | done <id> | undo <id> | deltask <id>
//	  - stats                  dashboard statistics and recent lists
//	  - prefs [priority <p> | hide on|off]
//	  - logout
//
// Every command counts as user activity. Errors returned by handlers are
// printed as one-line notifications; the loop itself never stops on them.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printFn(fmt.Sprintf("todo%s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if line == "" && err != nil {
			printlnFn()
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		a.activity(ctx)
		if !publicCommands[cmd] && !a.isLoggedIn() {
			printlnFn(config.MsgLoginFirst)
			continue
		}

		if err := dispatch(ctx, a, cmd, args); err != nil {
			printlnFn(errorMessage(err))
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		printHelp(a.isLoggedIn())
		return nil
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "logout":
		return a.Logout(ctx)
	case "whoami":
		return a.WhoAmI(ctx)
	case "profile":
		return a.Profile(ctx)
	case "l", "lists":
		return a.Lists(ctx)
	case "show":
		return a.Show(ctx, args)
	case "newlist":
		return a.NewList(ctx)
	case "renamelist":
		return a.RenameList(ctx, args)
	case "dellist":
		return a.DeleteList(ctx, args)
	case "tasks":
		return a.Tasks(ctx, args)
	case "addtask":
		return a.AddTask(ctx, args)
	case "edittask":
		return a.EditTask(ctx, args)
	case "done":
		return a.Complete(ctx, args)
	case "undo":
		return a.Reopen(ctx, args)
	case "deltask":
		return a.DeleteTask(ctx, args)
	case "stats":
		return a.Stats(ctx)
	case "theme":
		return a.Theme(ctx, args)
	case "prefs":
		return a.Prefs(ctx, args)
	case "health":
		return a.Health(ctx)
	default:
		printlnFn("Unknown command:", cmd)
		return nil
	}
}

func printHelp(loggedIn bool) {
	if !loggedIn {
		printlnFn("Available commands: register, login, theme, health, exit")
		return
	}
	printlnFn("Available commands: whoami, profile, (l)ists, show, newlist, renamelist, dellist, " +
		"tasks, addtask, edittask, done, undo, deltask, stats, theme, prefs, health, logout, exit")
}

// errorMessage turns a command error into the notification shown to the user.
func errorMessage(err error) string {
	var (
		apiErr *api.Error
		usage  usageError
	)
	switch {
	case errors.As(err, &usage):
		return usage.Error()
	case errors.As(err, &apiErr):
		return api.UserMessage(apiErr)
	case errors.Is(err, session.ErrNotAuthenticated):
		return config.MsgLoginFirst
	default:
		return "Error: " + err.Error()
	}
}
