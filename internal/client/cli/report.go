package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// showReport prints a sales and debt summary. An optional first argument
// selects the window in days (default 7).
func (a *App) showReport(ctx context.Context, args []string) {
	days := 7
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			printlnFn("Usage: report [days]")
			return
		}
		days = n
	}

	to := time.Now()
	from := to.AddDate(0, 0, -days)

	sum, err := a.report.SalesSummary(ctx, from, to)
	if err != nil {
		printlnFn("Error:", err.Error())
		return
	}
	printlnFn(fmt.Sprintf("Sales, last %d day(s): %d sale(s), USD %s / ZWG %s",
		days, sum.Count, sum.TotalUSD.StringFixed(2), sum.TotalZWG.StringFixed(2)))
	for method, count := range sum.ByPayment {
		printlnFn(fmt.Sprintf("  %-7s %d", string(method), count))
	}

	top, err := a.report.TopItems(ctx, from, to, 5)
	if err != nil {
		printlnFn("Error:", err.Error())
		return
	}
	if len(top) > 0 {
		printlnFn("Top items:")
		for i, item := range top {
			printlnFn(fmt.Sprintf("  %d. %-20s sold %d  USD %s", i+1, item.ItemName, item.Quantity, item.TotalUSD.StringFixed(2)))
		}
	}

	debts, err := a.report.DebtSummary(ctx)
	if err != nil {
		printlnFn("Error:", err.Error())
		return
	}
	printlnFn(fmt.Sprintf("Open debts: %d, USD %s / ZWG %s",
		debts.Count, debts.TotalUSD.StringFixed(2), debts.TotalZWG.StringFixed(2)))
}

// showStatus prints license and sync state.
func (a *App) showStatus(ctx context.Context) {
	info, err := a.license.Info(ctx)
	if err != nil {
		printlnFn("Error:", err.Error())
		return
	}
	printlnFn("License:", string(info.Status))
	if info.ProductKeyMasked != "" {
		printlnFn("Key:", info.ProductKeyMasked)
	}
	if !info.ExpiresAt.IsZero() {
		printlnFn("Expires:", info.ExpiresAt.Format("2006-01-02"), fmt.Sprintf("(%d day(s) left)", info.DaysRemaining))
	}
	if info.DeviceSlot > 0 {
		printlnFn("Device slot:", info.DeviceSlot)
	}

	st, err := a.report.SyncStatus(ctx)
	if err != nil {
		printlnFn("Error:", err.Error())
		return
	}
	if st.LastSuccess.IsZero() {
		printlnFn("Last sync: never")
	} else {
		printlnFn("Last sync:", st.LastSuccess.Format("2006-01-02 15:04"), fmt.Sprintf("(%d day(s) ago)", st.DaysSince))
	}
	printlnFn("Pending changes:", st.PendingCount)
}
