// Package cli is the interactive terminal front end of the ShopSync client:
// a read-eval-print loop over the application services, gated by the shop PIN.
package cli

import (
	"bufio"
	"context"
	"errors"
	"os"

	"github.com/tishanyq/shopsync/internal/client/api"
	"github.com/tishanyq/shopsync/internal/client/config"
	"github.com/tishanyq/shopsync/internal/client/services"
	"github.com/tishanyq/shopsync/internal/client/store"
	"github.com/tishanyq/shopsync/internal/common"
	"github.com/tishanyq/shopsync/internal/logging"
)

const pinAttempts = 3

type App struct {
	config *config.Config
	log    logging.Logger

	store    *store.Store
	license  *services.LicenseService
	checkout *services.CheckoutService
	sync     *services.SyncService
	report   *services.ReportService

	reader *bufio.Reader
}

func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	db, err := store.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	s := store.NewStore(db)
	backend := api.NewClient(cfg.BackendURL, cfg.SyncTimeout)

	return &App{
		config:   cfg,
		log:      log,
		store:    s,
		license:  services.NewLicenseService(s, backend, log),
		checkout: services.NewCheckoutService(s, log),
		sync:     services.NewSyncService(s, backend, log, cfg.SyncTimeout),
		report:   services.NewReportService(s, cfg.SyncReminderDays),
		reader:   bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	printlnFn("ShopSync POS (type 'help' for commands)")

	if err := a.unlock(ctx); err != nil {
		printlnFn("Access denied.")
		return
	}

	a.printStatusBanner(ctx)
	a.Root(ctx)
}

// unlock enforces the PIN gate. A device without a shop profile has no PIN
// yet and starts unlocked so the owner can register.
func (a *App) unlock(ctx context.Context) error {
	_, err := a.store.Shop(ctx)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	for i := 0; i < pinAttempts; i++ {
		pin, err := GetPIN(os.Stdout)
		if err != nil {
			return err
		}
		err = a.license.VerifyPIN(ctx, string(pin))
		if err == nil {
			return nil
		}
		if !errors.Is(err, common.ErrInvalidPIN) {
			return err
		}
		printlnFn("Wrong PIN.")
	}
	return common.ErrInvalidPIN
}

func (a *App) isRegistered(ctx context.Context) bool {
	auth, err := a.store.Authorization(ctx)
	return err == nil && auth.Registered()
}

// printStatusBanner shows the license state and nags about stale syncs.
func (a *App) printStatusBanner(ctx context.Context) {
	status, auth, err := a.license.Status(ctx)
	if err != nil {
		return
	}
	printlnFn("License:", string(status))
	if auth.Registered() && auth.ProductKeyMasked != "" {
		printlnFn("Key:", auth.ProductKeyMasked)
	}

	st, err := a.report.SyncStatus(ctx)
	if err == nil && st.NeedsReminder {
		if st.LastSuccess.IsZero() {
			printlnFn("Reminder: this device has never synced and has pending changes.")
		} else {
			printlnFn("Reminder: last sync was", st.DaysSince, "days ago with pending changes. Run 'sync'.")
		}
	}
}
