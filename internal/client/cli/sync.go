package cli

import (
	"context"
	"os"
	"strings"

	"github.com/tishanyq/shopsync/internal/client/services"
)

// runSync triggers one manual sync and reports the outcome in plain words.
func (a *App) runSync(ctx context.Context) {
	printlnFn("Syncing...")
	res := a.sync.Run(ctx)

	switch res.Outcome {
	case services.OutcomeSuccess:
		printlnFn("Sync complete,", res.Uploaded, "record(s) uploaded.")
	case services.OutcomeUpToDate:
		printlnFn("Nothing to sync.")
	case services.OutcomeBusy:
		printlnFn("A sync is already running.")
	case services.OutcomeNotRegistered:
		printlnFn("Register this device first ('register').")
	case services.OutcomeNotActivated:
		printlnFn("Activate your license first ('activate <product-key>').")
	case services.OutcomeLicenseExpired:
		printlnFn("License expired. Renew with 'renew <product-key>'. Your data is safe and will sync after renewal.")
	case services.OutcomeNoNetwork:
		printlnFn("Backend unreachable. Your changes are kept and will sync later.")
	default:
		printlnFn("Sync failed:", res.Err.Error())
	}
}

// wipe deletes all business data after explicit confirmation. The device
// identity and license survive.
func (a *App) wipe(ctx context.Context) {
	answer, err := GetSimpleText(a.reader, "This deletes ALL items, sales and debts on this device. Type 'yes' to confirm", os.Stdout)
	if err != nil {
		printlnFn("Error:", err.Error())
		return
	}
	if !strings.EqualFold(answer, "yes") {
		printlnFn("Cancelled.")
		return
	}
	if err := a.store.WipeBusinessData(ctx); err != nil {
		printlnFn("Error:", err.Error())
		return
	}
	printlnFn("Business data wiped. Device registration kept.")
}
