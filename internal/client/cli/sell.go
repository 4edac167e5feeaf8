package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tishanyq/shopsync/internal/client/models"
	"github.com/tishanyq/shopsync/internal/client/services"
	"github.com/tishanyq/shopsync/internal/common"
)

// sell walks the shopkeeper through one checkout: cart lines, payment method
// and optional debt settlement.
func (a *App) sell(ctx context.Context) {
	in := &services.CheckoutInput{}

	for {
		itemID, err := GetSimpleText(a.reader, "Item id (empty line to finish cart)", os.Stdout)
		if err != nil {
			printlnFn("Error:", err.Error())
			return
		}
		if itemID == "" {
			break
		}
		item, err := a.store.GetItemByLocalID(ctx, itemID)
		if err != nil {
			printlnFn("Error:", err.Error())
			continue
		}
		qtyText, err := GetSimpleText(a.reader, fmt.Sprintf("Quantity of %s (in stock: %d)", item.Name, item.Quantity), os.Stdout)
		if err != nil {
			printlnFn("Error:", err.Error())
			return
		}
		qty, err := strconv.ParseInt(qtyText, 10, 64)
		if err != nil || qty <= 0 {
			printlnFn("Quantity must be a positive number.")
			continue
		}
		in.Lines = append(in.Lines, services.CartLine{ItemID: itemID, Quantity: qty})
	}

	if len(in.Lines) == 0 {
		printlnFn("Cart is empty.")
		return
	}

	method, err := GetSimpleText(a.reader, "Payment method (cash/mobile/debt)", os.Stdout)
	if err != nil {
		printlnFn("Error:", err.Error())
		return
	}
	switch strings.ToLower(method) {
	case "", "cash":
		in.PaymentMethod = models.PaymentCash
	case "mobile":
		in.PaymentMethod = models.PaymentMobile
	case "debt":
		in.PaymentMethod = models.PaymentDebt
	default:
		printlnFn("Unknown payment method:", method)
		return
	}

	customer, err := GetSimpleText(a.reader, "Customer name (optional, needed for debts)", os.Stdout)
	if err != nil {
		printlnFn("Error:", err.Error())
		return
	}
	in.CustomerName = customer

	if customer != "" {
		if debt, err := a.store.ActiveDebtByCustomer(ctx, customer); err == nil {
			printlnFn(fmt.Sprintf("%s has an open debt: USD %s / ZWG %s",
				customer, debt.AmountUSD.StringFixed(2), debt.AmountZWG.StringFixed(2)))
			answer, err := GetSimpleText(a.reader, "Apply it to this sale? (y/n)", os.Stdout)
			if err != nil {
				printlnFn("Error:", err.Error())
				return
			}
			in.ApplyDebt = strings.EqualFold(answer, "y")
		}

		changeUSD, err := GetAmount(a.reader, "Change owed to customer in USD (empty for none)", os.Stdout)
		if err != nil {
			printlnFn("Error:", err.Error())
			return
		}
		changeZWG, err := GetAmount(a.reader, "Change owed to customer in ZWG (empty for none)", os.Stdout)
		if err != nil {
			printlnFn("Error:", err.Error())
			return
		}
		in.ChangeOwedUSD = changeUSD
		in.ChangeOwedZWG = changeZWG
	}

	res, err := a.checkout.Checkout(ctx, in)
	if err != nil {
		if errors.Is(err, common.ErrInsufficientStock) {
			printlnFn("Not enough stock:", err.Error())
		} else {
			printlnFn("Checkout failed:", err.Error())
		}
		return
	}

	printlnFn(fmt.Sprintf("Sale recorded: %d line(s), total USD %s / ZWG %s",
		len(res.Sales), res.TotalUSD.StringFixed(2), res.TotalZWG.StringFixed(2)))
	if res.DebtAppliedUSD.IsPositive() || res.DebtAppliedZWG.IsPositive() {
		printlnFn(fmt.Sprintf("Debt applied: USD %s / ZWG %s",
			res.DebtAppliedUSD.StringFixed(2), res.DebtAppliedZWG.StringFixed(2)))
	}
	if res.ClearedDebtID != "" {
		printlnFn("Customer debt fully settled.")
	}
	if res.ChangeDebt != nil {
		printlnFn(fmt.Sprintf("Change owed recorded as debt: USD %s / ZWG %s",
			res.ChangeDebt.AmountUSD.StringFixed(2), res.ChangeDebt.AmountZWG.StringFixed(2)))
	}
}
