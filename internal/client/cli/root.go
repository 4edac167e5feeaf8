package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = func(args ...any) { fmt.Println(args...) }

func (a *App) getStatus(ctx context.Context) string {
	status, _, err := a.license.Status(ctx)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("(%s)", strings.ToLower(string(status)))
}

// Root runs the command loop until EOF or exit.
func (a *App) Root(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("shopsync %s> ", a.getStatus(ctx))
		if !scanner.Scan() {
			break
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
			if a.isRegistered(ctx) {
				printlnFn("Available commands: additem, items, delitem, sell, debts, newdebt, cleardebt, report, sync, status, setpin, wipe, exit")
			} else {
				printlnFn("Available commands: register, status, exit")
			}

		case "register":
			a.register(ctx)
		case "activate":
			if len(args) == 0 {
				printlnFn("Usage: activate <product-key>")
				continue
			}
			a.activate(ctx, args[0])
		case "renew":
			if len(args) == 0 {
				printlnFn("Usage: renew <product-key>")
				continue
			}
			a.renew(ctx, args[0])
		case "setpin":
			a.setPIN(ctx)
		case "additem":
			a.addItem(ctx)
		case "items":
			category := ""
			if len(args) > 0 {
				category = args[0]
			}
			a.listItems(ctx, category)
		case "delitem":
			if len(args) == 0 {
				printlnFn("Usage: delitem <local-id>")
				continue
			}
			a.deleteItem(ctx, args[0])
		case "sell":
			a.sell(ctx)
		case "debts":
			customer := strings.Join(args, " ")
			a.listDebts(ctx, customer)
		case "newdebt":
			a.newDebt(ctx)
		case "cleardebt":
			if len(args) == 0 {
				printlnFn("Usage: cleardebt <local-id>")
				continue
			}
			a.clearDebt(ctx, args[0])
		case "report":
			a.showReport(ctx, args)
		case "sync":
			a.runSync(ctx)
		case "status":
			a.showStatus(ctx)
		case "wipe":
			a.wipe(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
