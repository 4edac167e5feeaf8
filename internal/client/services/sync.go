package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tishanyq/shopsync/internal/client/api"
	"github.com/tishanyq/shopsync/internal/client/models"
	"github.com/tishanyq/shopsync/internal/client/store"
	"github.com/tishanyq/shopsync/internal/common"
	"github.com/tishanyq/shopsync/internal/logging"
)

// SyncOutcome classifies how a sync attempt ended.
type SyncOutcome string

const (
	OutcomeSuccess        SyncOutcome = "SUCCESS"
	OutcomeUpToDate       SyncOutcome = "UP_TO_DATE"
	OutcomeBusy           SyncOutcome = "BUSY"
	OutcomeNotRegistered  SyncOutcome = "NOT_REGISTERED"
	OutcomeNotActivated   SyncOutcome = "NOT_ACTIVATED"
	OutcomeLicenseExpired SyncOutcome = "LICENSE_EXPIRED"
	OutcomeNoNetwork      SyncOutcome = "NO_NETWORK"
	OutcomeFailed         SyncOutcome = "FAILED"
)

// SyncResult describes one attempt.
type SyncResult struct {
	Outcome  SyncOutcome
	Uploaded int
	Err      error
}

// SyncService uploads unsynced records to the backend and applies the
// acknowledgement. Sync is strictly single-flight: a second call while one is
// running returns OutcomeBusy without touching anything.
type SyncService struct {
	store   *store.Store
	api     Backend
	log     logging.Logger
	timeout time.Duration
	now     func() time.Time

	mu sync.Mutex
}

func NewSyncService(s *store.Store, backend Backend, log logging.Logger, timeout time.Duration) *SyncService {
	return &SyncService{
		store:   s,
		api:     backend,
		log:     log.With("service", "sync"),
		timeout: timeout,
		now:     time.Now,
	}
}

// Run performs one manual sync. Preconditions are checked in order: device
// registered, license active, backend reachable. A failed upload leaves the
// journal and synced flags untouched, so the next attempt retries the same
// batch.
func (s *SyncService) Run(ctx context.Context) *SyncResult {
	if !s.mu.TryLock() {
		return &SyncResult{Outcome: OutcomeBusy, Err: common.ErrSyncInProgress}
	}
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	auth, err := s.store.Authorization(ctx)
	if err != nil {
		return &SyncResult{Outcome: OutcomeFailed, Err: err}
	}
	switch auth.Status(s.now()) {
	case models.StatusUnregistered:
		return &SyncResult{Outcome: OutcomeNotRegistered, Err: common.ErrNotRegistered}
	case models.StatusPendingActivation:
		return &SyncResult{Outcome: OutcomeNotActivated, Err: common.ErrNotActivated}
	case models.StatusExpired:
		return &SyncResult{Outcome: OutcomeLicenseExpired, Err: common.ErrLicenseExpired}
	}

	if err := s.api.Health(ctx); err != nil {
		if errors.Is(err, common.ErrNetworkUnavailable) {
			return &SyncResult{Outcome: OutcomeNoNetwork, Err: err}
		}
		return s.fail(ctx, err)
	}

	req, uploaded, maxJournalID, err := s.buildPayload(ctx)
	if err != nil {
		return &SyncResult{Outcome: OutcomeFailed, Err: err}
	}
	if uploaded == 0 && maxJournalID == 0 {
		return &SyncResult{Outcome: OutcomeUpToDate}
	}

	resp, err := s.api.Sync(ctx, auth.ShopID, auth.AppID, req)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrLicenseExpired):
			// The backend is authoritative on expiry: drop the activation so
			// the UI demands a renewal, but keep the pending batch intact.
			if clearErr := s.store.ClearAuthorization(ctx); clearErr != nil {
				s.log.Error(ctx, "failed to clear expired activation", "error", clearErr)
			}
			_ = s.store.RecordSyncAttempt(ctx, s.now(), false)
			return &SyncResult{Outcome: OutcomeLicenseExpired, Err: err}
		case errors.Is(err, common.ErrNetworkUnavailable):
			_ = s.store.RecordSyncAttempt(ctx, s.now(), false)
			return &SyncResult{Outcome: OutcomeNoNetwork, Err: err}
		default:
			return s.fail(ctx, err)
		}
	}

	at := common.FromUnixMillis(resp.SyncTime)
	if at.IsZero() {
		at = s.now()
	}
	ack := &store.SyncAck{
		ShopSynced:   req.Shop != nil,
		ShopServerID: resp.ShopID,
		ItemIDs:      resp.ItemIDs,
		SaleIDs:      resp.SaleIDs,
		DebtIDs:      resp.DebtIDs,
		MaxJournalID: maxJournalID,
		At:           at,
	}
	if err := s.store.ApplySyncAck(ctx, ack); err != nil {
		return s.fail(ctx, err)
	}

	s.log.Info(ctx, "sync finished", "uploaded", uploaded, "journal_watermark", maxJournalID)
	return &SyncResult{Outcome: OutcomeSuccess, Uploaded: uploaded}
}

func (s *SyncService) fail(ctx context.Context, err error) *SyncResult {
	_ = s.store.RecordSyncAttempt(ctx, s.now(), false)
	s.log.Error(ctx, "sync failed", "error", err)
	return &SyncResult{Outcome: OutcomeFailed, Err: err}
}

// buildPayload collects every unsynced record plus the journal watermark the
// batch covers. The journal drives the commit barrier; the synced flags drive
// record selection. Both are written in the same transactions, so they agree.
func (s *SyncService) buildPayload(ctx context.Context) (*api.SyncRequest, int, int64, error) {
	req := &api.SyncRequest{
		Items: []api.ItemPayload{},
		Sales: []api.SalePayload{},
		Debts: []api.DebtPayload{},
	}
	uploaded := 0

	shop, err := s.store.Shop(ctx)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, 0, 0, err
	}
	if shop != nil && !shop.Synced {
		req.Shop = api.ShopToPayload(shop)
		uploaded++
	}

	itemRows, err := s.store.UnsyncedItems(ctx)
	if err != nil {
		return nil, 0, 0, err
	}
	for i := range itemRows {
		req.Items = append(req.Items, api.ItemToPayload(&itemRows[i]))
	}

	saleRows, err := s.store.UnsyncedSales(ctx)
	if err != nil {
		return nil, 0, 0, err
	}
	for i := range saleRows {
		req.Sales = append(req.Sales, api.SaleToPayload(&saleRows[i]))
	}

	debtRows, err := s.store.UnsyncedDebts(ctx)
	if err != nil {
		return nil, 0, 0, err
	}
	for i := range debtRows {
		req.Debts = append(req.Debts, api.DebtToPayload(&debtRows[i]))
	}
	uploaded += len(itemRows) + len(saleRows) + len(debtRows)

	entries, err := s.store.JournalEntries(ctx)
	if err != nil {
		return nil, 0, 0, err
	}
	var maxJournalID int64
	if len(entries) > 0 {
		maxJournalID = entries[len(entries)-1].ID
	}

	return req, uploaded, maxJournalID, nil
}
