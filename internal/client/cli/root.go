package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// Root runs the REPL until exit or EOF. The prompt shows the resolved
// display name so login state is always visible.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "MindSpend CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Fprintf(a.out, "mindspend (%s)> ", a.navbar.DisplayName(ctx))
		if !scanner.Scan() {
			break
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			a.help(ctx)

		case "register":
			_ = a.Register(ctx)
		case "resume":
			_ = a.Resume(ctx)
		case "login":
			_ = a.Login(ctx)
		case "logout":
			a.Logout(ctx)
		case "whoami":
			a.WhoAmI(ctx)
		case "passwd":
			_ = a.ChangePassword(ctx)
		case "reset":
			_ = a.RequestReset(ctx)
		case "delete-account":
			_ = a.DeleteAccount(ctx)

		case "profile":
			a.Profile(ctx)
		case "setprofile":
			_ = a.SetProfile(ctx)

		case "add":
			_ = a.AddMetric(ctx)
		case "list", "l":
			a.Metrics(ctx, args)
		case "del":
			if len(args) == 0 {
				fmt.Fprintln(a.out, "Usage: del <id>")
				continue
			}
			a.DeleteMetric(ctx, args[0])

		case "summary":
			a.Summary(ctx)
		case "setsummary":
			_ = a.SetSummary(ctx)
		case "analyze":
			a.Analyze(ctx)
		case "export":
			a.Export(ctx)

		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return

		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}
	}
}

func (a *App) help(ctx context.Context) {
	if a.isLoggedIn(ctx) {
		fmt.Fprintln(a.out, "Available commands: whoami, profile, setprofile, add, list, del, summary, setsummary, analyze, export, passwd, delete-account, logout, exit")
	} else {
		fmt.Fprintln(a.out, "Available commands: register, resume, login, reset, exit")
	}
}
