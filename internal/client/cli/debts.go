package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/tishanyq/shopsync/internal/client/models"
	"github.com/tishanyq/shopsync/internal/client/repositories/debts"
)

func (a *App) listDebts(ctx context.Context, customer string) {
	var (
		rows []models.Debt
		err  error
	)
	if customer == "" {
		rows, err = a.store.ActiveDebts(ctx)
	} else {
		rows, err = a.store.SearchDebts(ctx, debts.SearchFilter{CustomerName: customer})
	}
	if err != nil {
		printlnFn("Error:", err.Error())
		return
	}
	if len(rows) == 0 {
		printlnFn("No open debts.")
		return
	}
	for _, d := range rows {
		state := "open"
		if d.Cleared {
			state = "cleared"
		}
		printlnFn(fmt.Sprintf("%s  %-20s %-11s USD %-8s ZWG %-10s %s  %s",
			d.LocalID, d.CustomerName, string(d.Type),
			d.AmountUSD.StringFixed(2), d.AmountZWG.StringFixed(2),
			d.CreatedAt.Format("2006-01-02"), state))
	}
}

func (a *App) newDebt(ctx context.Context) {
	customer, err := GetSimpleText(a.reader, "Customer name", os.Stdout)
	if err != nil || customer == "" {
		printlnFn("Customer name is required.")
		return
	}
	amountUSD, err := GetAmount(a.reader, "Amount (USD)", os.Stdout)
	if err != nil {
		printlnFn("Error:", err.Error())
		return
	}
	amountZWG, err := GetAmount(a.reader, "Amount (ZWG)", os.Stdout)
	if err != nil {
		printlnFn("Error:", err.Error())
		return
	}
	notes, err := GetSimpleText(a.reader, "Notes (optional)", os.Stdout)
	if err != nil {
		printlnFn("Error:", err.Error())
		return
	}

	debt, err := a.checkout.RecordDebt(ctx, customer, notes, amountUSD, amountZWG)
	if err != nil {
		printlnFn("Error:", err.Error())
		return
	}
	printlnFn("Debt recorded, id:", debt.LocalID)
}

func (a *App) clearDebt(ctx context.Context, localID string) {
	if err := a.store.ClearDebt(ctx, localID); err != nil {
		printlnFn("Error:", err.Error())
		return
	}
	printlnFn("Debt cleared.")
}
