package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tishanyq/shopsync/internal/client/api"
	"github.com/tishanyq/shopsync/internal/client/models"
	"github.com/tishanyq/shopsync/internal/client/store"
	"github.com/tishanyq/shopsync/internal/common"
	"github.com/tishanyq/shopsync/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func setupStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := store.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return store.NewStore(db)
}

// fakeBackend is a configurable in-process backend.
type fakeBackend struct {
	mux *http.ServeMux
	srv *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	f := &fakeBackend{mux: http.NewServeMux()}
	f.srv = httptest.NewServer(f.mux)
	t.Cleanup(f.srv.Close)

	f.mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	f.mux.HandleFunc("POST /api/shops", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"shop_id": "SHOP_1", "app_id": "app-abc", "device_slot": 1})
	})
	f.mux.HandleFunc("POST /api/shops/{shopID}/product-keys/activate", func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		writeJSON(w, map[string]any{
			"activated_at": now.UnixMilli(),
			"expires_at":   now.Add(365 * 24 * time.Hour).UnixMilli(),
		})
	})
	return f
}

func (f *fakeBackend) client() *api.Client {
	return api.NewClient(f.srv.URL, 2*time.Second)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func registerAndActivate(t *testing.T, lic *LicenseService) {
	t.Helper()
	ctx := context.Background()
	_, err := lic.Register(ctx, &RegisterInput{
		ShopName: "Kwik Mart", OwnerName: "Tariro", OwnerSurname: "Moyo",
		PhoneNumber: "+26377000000", PIN: "1234",
	})
	require.NoError(t, err)
	_, err = lic.Activate(ctx, "ab12-cd34-ef56-gh78")
	require.NoError(t, err)
}

// --- License ---

func TestRegister_PersistsShopAndPendingAuthorization(t *testing.T) {
	s := setupStore(t)
	lic := NewLicenseService(s, newFakeBackend(t).client(), testLogger())
	ctx := context.Background()

	auth, err := lic.Register(ctx, &RegisterInput{
		ShopName: "Kwik Mart", OwnerName: "Tariro", OwnerSurname: "Moyo",
		PhoneNumber: "+26377000000", PIN: "1234",
	})
	require.NoError(t, err)
	assert.Equal(t, "app-abc", auth.AppID)
	assert.Equal(t, "SHOP_1", auth.ShopID)

	status, _, err := lic.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingActivation, status)

	shop, err := s.Shop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "SHOP_1", shop.ServerID)
	assert.NotEmpty(t, shop.PINHash)
	assert.NotContains(t, shop.PINHash, "1234")

	assert.NoError(t, lic.VerifyPIN(ctx, "1234"))
	assert.ErrorIs(t, lic.VerifyPIN(ctx, "0000"), common.ErrInvalidPIN)
}

func TestRegister_RejectsInvalidInput(t *testing.T) {
	s := setupStore(t)
	lic := NewLicenseService(s, newFakeBackend(t).client(), testLogger())

	_, err := lic.Register(context.Background(), &RegisterInput{
		ShopName: "Kwik Mart", OwnerName: "Tariro", OwnerSurname: "Moyo",
		PhoneNumber: "+26377000000", PIN: "12", // too short
	})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestActivate_Preconditions(t *testing.T) {
	s := setupStore(t)
	lic := NewLicenseService(s, newFakeBackend(t).client(), testLogger())
	ctx := context.Background()

	_, err := lic.Activate(ctx, "not-a-key")
	assert.ErrorIs(t, err, common.ErrInvalidProductKey)

	_, err = lic.Activate(ctx, "AB12-CD34-EF56-GH78")
	assert.ErrorIs(t, err, common.ErrNotRegistered)
}

func TestActivate_MakesLicenseActive(t *testing.T) {
	s := setupStore(t)
	lic := NewLicenseService(s, newFakeBackend(t).client(), testLogger())
	registerAndActivate(t, lic)

	status, auth, err := lic.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, status)
	assert.Equal(t, "****-****-****-GH78", auth.ProductKeyMasked)
	assert.True(t, auth.DaysRemaining(time.Now()) > 300)
}

// --- Checkout ---

func addItem(t *testing.T, s *store.Store, name string, qty int64, priceUSD string) *models.Item {
	t.Helper()
	item := &models.Item{
		LocalID:  name + "-id",
		Name:     name,
		Category: "General",
		PriceUSD: decimal.RequireFromString(priceUSD),
		PriceZWG: decimal.RequireFromString(priceUSD).Mul(decimal.NewFromInt(27)),
		Quantity: qty, CreatedAt: time.Now(),
	}
	require.NoError(t, s.AddItem(context.Background(), item))
	return item
}

func TestCheckout_SnapshotsPriceAndDecrementsStock(t *testing.T) {
	s := setupStore(t)
	svc := NewCheckoutService(s, testLogger())
	ctx := context.Background()

	item := addItem(t, s, "Bread", 10, "2.00")

	res, err := svc.Checkout(ctx, &CheckoutInput{
		Lines:         []CartLine{{ItemID: item.LocalID, Quantity: 3}},
		PaymentMethod: models.PaymentCash,
	})
	require.NoError(t, err)
	assert.True(t, res.TotalUSD.Equal(decimal.RequireFromString("6.00")))

	got, err := s.GetItemByLocalID(ctx, item.LocalID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.Quantity)

	// Raising the price afterwards must not change the recorded sale.
	got.PriceUSD = decimal.RequireFromString("9.99")
	require.NoError(t, s.UpdateItem(ctx, got))
	rows, err := s.SalesByDateRange(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].TotalUSD.Equal(decimal.RequireFromString("6.00")))
}

func TestCheckout_RejectsOversellAndEmptyCart(t *testing.T) {
	s := setupStore(t)
	svc := NewCheckoutService(s, testLogger())
	ctx := context.Background()

	_, err := svc.Checkout(ctx, &CheckoutInput{PaymentMethod: models.PaymentCash})
	assert.ErrorIs(t, err, common.ErrEmptyCart)

	item := addItem(t, s, "Bread", 2, "2.00")
	_, err = svc.Checkout(ctx, &CheckoutInput{
		Lines:         []CartLine{{ItemID: item.LocalID, Quantity: 5}},
		PaymentMethod: models.PaymentCash,
	})
	assert.ErrorIs(t, err, common.ErrInsufficientStock)
}

func TestCheckout_ChangeOwedCreatesDebt(t *testing.T) {
	s := setupStore(t)
	svc := NewCheckoutService(s, testLogger())
	ctx := context.Background()

	item := addItem(t, s, "Bread", 10, "4.00")

	// $12 sale paid with $15, no change available: the $3 difference becomes
	// a CHANGE_OWED debt.
	res, err := svc.Checkout(ctx, &CheckoutInput{
		Lines:         []CartLine{{ItemID: item.LocalID, Quantity: 3}},
		PaymentMethod: models.PaymentCash,
		CustomerName:  "Tariro",
		ChangeOwedUSD: decimal.RequireFromString("3.00"),
	})
	require.NoError(t, err)
	require.NotNil(t, res.ChangeDebt)
	assert.Equal(t, models.DebtChangeOwed, res.ChangeDebt.Type)
	assert.True(t, res.ChangeDebt.AmountUSD.Equal(decimal.RequireFromString("3.00")))

	active, err := s.ActiveDebts(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Tariro", active[0].CustomerName)
}

func TestCheckout_AppliesDebtAndClearsWhenFullyConsumed(t *testing.T) {
	s := setupStore(t)
	svc := NewCheckoutService(s, testLogger())
	ctx := context.Background()

	item := addItem(t, s, "Bread", 10, "4.00")
	debt, err := svc.RecordDebt(ctx, "Tariro", "", decimal.RequireFromString("3.00"), decimal.Zero)
	require.NoError(t, err)

	// An $8 sale consumes the $3 debt in full.
	res, err := svc.Checkout(ctx, &CheckoutInput{
		Lines:         []CartLine{{ItemID: item.LocalID, Quantity: 2}},
		PaymentMethod: models.PaymentCash,
		CustomerName:  "Tariro",
		ApplyDebt:     true,
	})
	require.NoError(t, err)
	assert.True(t, res.DebtAppliedUSD.Equal(decimal.RequireFromString("3.00")))
	assert.Equal(t, debt.LocalID, res.ClearedDebtID)

	got, err := s.DebtByLocalID(ctx, debt.LocalID)
	require.NoError(t, err)
	assert.True(t, got.Cleared)

	rows, err := s.SalesByDateRange(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].DebtUsedUSD.Equal(decimal.RequireFromString("3.00")))
	assert.Equal(t, debt.LocalID, rows[0].DebtID)
}

func TestCheckout_PartialDebtApplicationDoesNotClear(t *testing.T) {
	s := setupStore(t)
	svc := NewCheckoutService(s, testLogger())
	ctx := context.Background()

	item := addItem(t, s, "Bread", 10, "4.00")
	debt, err := svc.RecordDebt(ctx, "Tariro", "", decimal.RequireFromString("50.00"), decimal.Zero)
	require.NoError(t, err)

	// A $4 sale cannot consume a $50 debt; only $4 is applied and the debt
	// stays open.
	res, err := svc.Checkout(ctx, &CheckoutInput{
		Lines:         []CartLine{{ItemID: item.LocalID, Quantity: 1}},
		PaymentMethod: models.PaymentCash,
		CustomerName:  "Tariro",
		ApplyDebt:     true,
	})
	require.NoError(t, err)
	assert.True(t, res.DebtAppliedUSD.Equal(decimal.RequireFromString("4.00")))
	assert.Empty(t, res.ClearedDebtID)

	got, err := s.DebtByLocalID(ctx, debt.LocalID)
	require.NoError(t, err)
	assert.False(t, got.Cleared)
}

// --- Sync ---

func newSyncFixture(t *testing.T, f *fakeBackend) (*store.Store, *LicenseService, *SyncService) {
	t.Helper()
	s := setupStore(t)
	client := f.client()
	lic := NewLicenseService(s, client, testLogger())
	syn := NewSyncService(s, client, testLogger(), 2*time.Second)
	return s, lic, syn
}

func TestSync_PreconditionOrder(t *testing.T) {
	f := newFakeBackend(t)
	_, lic, syn := newSyncFixture(t, f)
	ctx := context.Background()

	res := syn.Run(ctx)
	assert.Equal(t, OutcomeNotRegistered, res.Outcome)

	_, err := lic.Register(ctx, &RegisterInput{
		ShopName: "Kwik Mart", OwnerName: "Tariro", OwnerSurname: "Moyo",
		PhoneNumber: "+26377000000", PIN: "1234",
	})
	require.NoError(t, err)

	res = syn.Run(ctx)
	assert.Equal(t, OutcomeNotActivated, res.Outcome)
}

func TestSync_UploadsBatchAndCommitsJournal(t *testing.T) {
	f := newFakeBackend(t)

	var gotAppID string
	f.mux.HandleFunc("POST /api/shops/{shopID}/sync", func(w http.ResponseWriter, r *http.Request) {
		gotAppID = r.Header.Get("X-App-Id")
		var req api.SyncRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		itemIDs := map[string]string{}
		for _, it := range req.Items {
			itemIDs[it.LocalID] = "ITEM_" + it.LocalID
		}
		saleIDs := map[string]string{}
		for _, sa := range req.Sales {
			saleIDs[sa.LocalID] = "SALE_" + sa.LocalID
		}
		writeJSON(w, map[string]any{
			"shop_id":   "SHOP_1",
			"item_ids":  itemIDs,
			"sale_ids":  saleIDs,
			"debt_ids":  map[string]string{},
			"sync_time": time.Now().UnixMilli(),
		})
	})

	s, lic, syn := newSyncFixture(t, f)
	ctx := context.Background()
	registerAndActivate(t, lic)

	item := addItem(t, s, "Bread", 10, "2.00")
	checkout := NewCheckoutService(s, testLogger())
	_, err := checkout.Checkout(ctx, &CheckoutInput{
		Lines:         []CartLine{{ItemID: item.LocalID, Quantity: 3}},
		PaymentMethod: models.PaymentCash,
	})
	require.NoError(t, err)

	res := syn.Run(ctx)
	require.NoError(t, res.Err)
	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, "app-abc", gotAppID)

	n, err := s.JournalCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err := s.GetItemByLocalID(ctx, item.LocalID)
	require.NoError(t, err)
	assert.True(t, got.Synced)
	assert.Equal(t, "ITEM_"+item.LocalID, got.ServerID)

	// Second run has nothing left to upload.
	res = syn.Run(ctx)
	assert.Equal(t, OutcomeUpToDate, res.Outcome)
}

func TestSync_PINChangeIsUploadedOnNextRun(t *testing.T) {
	f := newFakeBackend(t)

	var shopPayloads []bool
	f.mux.HandleFunc("POST /api/shops/{shopID}/sync", func(w http.ResponseWriter, r *http.Request) {
		var req api.SyncRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		shopPayloads = append(shopPayloads, req.Shop != nil)
		writeJSON(w, map[string]any{
			"shop_id":  "SHOP_1",
			"item_ids": map[string]string{}, "sale_ids": map[string]string{},
			"debt_ids": map[string]string{}, "sync_time": time.Now().UnixMilli(),
		})
	})

	s, lic, syn := newSyncFixture(t, f)
	ctx := context.Background()
	registerAndActivate(t, lic)

	// First run drains the registration journal; the profile itself already
	// reached the backend during registration.
	res := syn.Run(ctx)
	require.NoError(t, res.Err)
	require.Equal(t, OutcomeSuccess, res.Outcome)

	require.NoError(t, lic.ChangePIN(ctx, "5678"))

	shop, err := s.Shop(ctx)
	require.NoError(t, err)
	require.False(t, shop.Synced)

	res = syn.Run(ctx)
	require.NoError(t, res.Err)
	assert.Equal(t, OutcomeSuccess, res.Outcome)

	// The second batch carried the shop profile.
	require.Len(t, shopPayloads, 2)
	assert.False(t, shopPayloads[0])
	assert.True(t, shopPayloads[1])

	shop, err = s.Shop(ctx)
	require.NoError(t, err)
	assert.True(t, shop.Synced)

	n, err := s.JournalCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// Third run is a no-op.
	res = syn.Run(ctx)
	assert.Equal(t, OutcomeUpToDate, res.Outcome)
}

func TestSync_ExpiredLicenseClearsActivationKeepsJournal(t *testing.T) {
	f := newFakeBackend(t)
	f.mux.HandleFunc("POST /api/shops/{shopID}/sync", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"license expired","expired":true}`))
	})

	s, lic, syn := newSyncFixture(t, f)
	ctx := context.Background()
	registerAndActivate(t, lic)
	addItem(t, s, "Bread", 10, "2.00")

	before, err := s.JournalCount(ctx)
	require.NoError(t, err)
	require.NotZero(t, before)

	res := syn.Run(ctx)
	assert.Equal(t, OutcomeLicenseExpired, res.Outcome)
	assert.ErrorIs(t, res.Err, common.ErrLicenseExpired)

	// Activation dropped, identity and pending batch kept.
	auth, err := s.Authorization(ctx)
	require.NoError(t, err)
	assert.False(t, auth.Activated)
	assert.True(t, auth.Registered())

	after, err := s.JournalCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSync_NoNetworkLeavesStateUntouched(t *testing.T) {
	f := newFakeBackend(t)
	s, lic, syn := newSyncFixture(t, f)
	ctx := context.Background()
	registerAndActivate(t, lic)
	addItem(t, s, "Bread", 10, "2.00")
	f.srv.Close() // backend goes away

	before, err := s.JournalCount(ctx)
	require.NoError(t, err)

	res := syn.Run(ctx)
	assert.Equal(t, OutcomeNoNetwork, res.Outcome)
	assert.ErrorIs(t, res.Err, common.ErrNetworkUnavailable)

	after, err := s.JournalCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSync_SingleFlight(t *testing.T) {
	f := newFakeBackend(t)

	release := make(chan struct{})
	started := make(chan struct{})
	f.mux.HandleFunc("POST /api/shops/{shopID}/sync", func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		writeJSON(w, map[string]any{
			"item_ids": map[string]string{}, "sale_ids": map[string]string{},
			"debt_ids": map[string]string{}, "sync_time": time.Now().UnixMilli(),
		})
	})

	s, lic, syn := newSyncFixture(t, f)
	ctx := context.Background()
	registerAndActivate(t, lic)
	addItem(t, s, "Bread", 10, "2.00")

	done := make(chan *SyncResult, 1)
	go func() { done <- syn.Run(ctx) }()
	<-started

	res := syn.Run(ctx)
	assert.Equal(t, OutcomeBusy, res.Outcome)
	assert.ErrorIs(t, res.Err, common.ErrSyncInProgress)

	close(release)
	first := <-done
	assert.Equal(t, OutcomeSuccess, first.Outcome)
}

// --- Reporting ---

func TestReport_TopItemsAndSummary(t *testing.T) {
	s := setupStore(t)
	checkout := NewCheckoutService(s, testLogger())
	rep := NewReportService(s, 10)
	ctx := context.Background()

	bread := addItem(t, s, "Bread", 100, "1.00")
	milk := addItem(t, s, "Milk", 100, "1.50")

	_, err := checkout.Checkout(ctx, &CheckoutInput{
		Lines:         []CartLine{{ItemID: bread.LocalID, Quantity: 5}, {ItemID: milk.LocalID, Quantity: 2}},
		PaymentMethod: models.PaymentCash,
	})
	require.NoError(t, err)
	_, err = checkout.Checkout(ctx, &CheckoutInput{
		Lines:         []CartLine{{ItemID: bread.LocalID, Quantity: 3}},
		PaymentMethod: models.PaymentMobile,
	})
	require.NoError(t, err)

	from, to := time.Now().Add(-time.Hour), time.Now().Add(time.Hour)

	sum, err := rep.SalesSummary(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Count)
	assert.True(t, sum.TotalUSD.Equal(decimal.RequireFromString("11.00")))
	assert.Equal(t, 2, sum.ByPayment[models.PaymentCash])
	assert.Equal(t, 1, sum.ByPayment[models.PaymentMobile])

	top, err := rep.TopItems(ctx, from, to, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Bread", top[0].ItemName)
	assert.Equal(t, int64(8), top[0].Quantity)
}

func TestReport_SyncStatusReminder(t *testing.T) {
	s := setupStore(t)
	rep := NewReportService(s, 10)
	ctx := context.Background()

	// Nothing pending, never synced: no reminder.
	st, err := rep.SyncStatus(ctx)
	require.NoError(t, err)
	assert.False(t, st.NeedsReminder)

	// Pending changes and never synced: remind.
	addItem(t, s, "Bread", 10, "2.00")
	st, err = rep.SyncStatus(ctx)
	require.NoError(t, err)
	assert.True(t, st.NeedsReminder)
	assert.Equal(t, int64(1), st.PendingCount)

	// A recent successful sync quiets the reminder even with pending rows.
	require.NoError(t, s.RecordSyncAttempt(ctx, time.Now(), true))
	st, err = rep.SyncStatus(ctx)
	require.NoError(t, err)
	assert.False(t, st.NeedsReminder)

	// An old last success (12 days ago) plus pending changes: remind again.
	rep.now = func() time.Time { return time.Now().Add(12 * 24 * time.Hour) }
	st, err = rep.SyncStatus(ctx)
	require.NoError(t, err)
	assert.True(t, st.NeedsReminder)
	assert.Equal(t, 12, st.DaysSince)
}
