// Package services implements the application layer of the ShopSync client:
// registration and licensing, checkout with debt settlement, manual sync and
// reporting. Services orchestrate the store and the backend API; they hold no
// state of their own beyond the single-flight sync guard.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/tishanyq/shopsync/internal/client/api"
	"github.com/tishanyq/shopsync/internal/client/models"
	"github.com/tishanyq/shopsync/internal/client/store"
	"github.com/tishanyq/shopsync/internal/common"
	"github.com/tishanyq/shopsync/internal/logging"
)

// Backend is the subset of the API client the license service needs.
type Backend interface {
	Health(ctx context.Context) error
	RegisterShop(ctx context.Context, req *api.RegisterShopRequest) (*api.RegisterShopResponse, error)
	ActivateKey(ctx context.Context, shopID string, req *api.ActivateKeyRequest) (*api.ActivationResponse, error)
	Renew(ctx context.Context, shopID, appID string, req *api.RenewRequest) (*api.ActivationResponse, error)
	LicenseInfo(ctx context.Context, shopID, appID string) (*api.LicenseInfoResponse, error)
	Sync(ctx context.Context, shopID, appID string, req *api.SyncRequest) (*api.SyncResponse, error)
}

// LicenseService owns device registration, product-key activation/renewal and
// PIN access control.
type LicenseService struct {
	store    *store.Store
	api      Backend
	log      logging.Logger
	validate *validator.Validate
	now      func() time.Time
}

func NewLicenseService(s *store.Store, backend Backend, log logging.Logger) *LicenseService {
	return &LicenseService{
		store:    s,
		api:      backend,
		log:      log.With("service", "license"),
		validate: validator.New(),
		now:      time.Now,
	}
}

// RegisterInput is the shop profile collected at first run.
type RegisterInput struct {
	ShopName     string `validate:"required,min=2,max=100"`
	OwnerName    string `validate:"required,min=1,max=100"`
	OwnerSurname string `validate:"required,min=1,max=100"`
	PhoneNumber  string `validate:"required,min=5,max=20"`
	Services     string `validate:"max=500"`
	Address      string `validate:"max=200"`
	PIN          string `validate:"required,len=4,numeric"`
}

// Register creates the shop on the backend, then persists the profile and the
// pending device identity locally. The PIN is stored only as a bcrypt hash.
func (s *LicenseService) Register(ctx context.Context, in *RegisterInput) (*models.Authorization, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	auth, err := s.store.Authorization(ctx)
	if err != nil {
		return nil, err
	}
	if auth.Registered() {
		return nil, fmt.Errorf("%w: device already registered to shop %s", common.ErrValidation, auth.ShopID)
	}

	resp, err := s.api.RegisterShop(ctx, &api.RegisterShopRequest{
		ShopName:     in.ShopName,
		OwnerName:    in.OwnerName,
		OwnerSurname: in.OwnerSurname,
		PhoneNumber:  in.PhoneNumber,
		Services:     in.Services,
		Address:      in.Address,
	})
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.PIN), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash pin: %w", err)
	}

	shop := &models.Shop{
		Name:         in.ShopName,
		OwnerName:    in.OwnerName,
		OwnerSurname: in.OwnerSurname,
		PhoneNumber:  in.PhoneNumber,
		Services:     in.Services,
		Address:      in.Address,
		PINHash:      string(hash),
	}
	if err := s.store.SaveShop(ctx, shop); err != nil {
		return nil, err
	}
	if err := s.store.SetShopServerID(ctx, resp.ShopID); err != nil {
		return nil, err
	}

	auth = &models.Authorization{
		AppID:      resp.AppID,
		ShopID:     resp.ShopID,
		DeviceSlot: resp.DeviceSlot,
	}
	if err := s.store.SaveAuthorization(ctx, auth); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "device registered", "shop_id", resp.ShopID, "device_slot", resp.DeviceSlot)
	return auth, nil
}

// Activate redeems a product key for this device. The key's validity is
// decided by the backend; only the format is checked locally.
func (s *LicenseService) Activate(ctx context.Context, key string) (*models.Authorization, error) {
	key = models.NormalizeProductKey(key)
	if !models.ValidProductKey(key) {
		return nil, common.ErrInvalidProductKey
	}

	auth, err := s.store.Authorization(ctx)
	if err != nil {
		return nil, err
	}
	if !auth.Registered() {
		return nil, common.ErrNotRegistered
	}

	resp, err := s.api.ActivateKey(ctx, auth.ShopID, &api.ActivateKeyRequest{
		ProductKey: key,
		AppID:      auth.AppID,
	})
	if err != nil {
		return nil, err
	}

	auth.Activated = true
	auth.ActivatedAt = common.FromUnixMillis(resp.ActivatedAt)
	auth.ExpiresAt = common.FromUnixMillis(resp.ExpiresAt)
	auth.ProductKeyMasked = models.MaskProductKey(key)
	if err := s.store.SaveAuthorization(ctx, auth); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "license activated", "expires_at", auth.ExpiresAt)
	return auth, nil
}

// Renew extends the license with a fresh product key. Unlike Activate it is
// valid on an expired device, which is its main use.
func (s *LicenseService) Renew(ctx context.Context, key string) (*models.Authorization, error) {
	key = models.NormalizeProductKey(key)
	if !models.ValidProductKey(key) {
		return nil, common.ErrInvalidProductKey
	}

	auth, err := s.store.Authorization(ctx)
	if err != nil {
		return nil, err
	}
	if !auth.Registered() {
		return nil, common.ErrNotRegistered
	}

	resp, err := s.api.Renew(ctx, auth.ShopID, auth.AppID, &api.RenewRequest{ProductKey: key})
	if err != nil {
		return nil, err
	}

	auth.Activated = true
	auth.ActivatedAt = common.FromUnixMillis(resp.ActivatedAt)
	auth.ExpiresAt = common.FromUnixMillis(resp.ExpiresAt)
	if resp.DeviceSlot > 0 {
		auth.DeviceSlot = resp.DeviceSlot
	}
	auth.ProductKeyMasked = models.MaskProductKey(key)
	if err := s.store.SaveAuthorization(ctx, auth); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "license renewed", "expires_at", auth.ExpiresAt)
	return auth, nil
}

// Status returns the current license state and the record behind it.
func (s *LicenseService) Status(ctx context.Context) (models.LicenseStatus, *models.Authorization, error) {
	auth, err := s.store.Authorization(ctx)
	if err != nil {
		return "", nil, err
	}
	return auth.Status(s.now()), auth, nil
}

// LicenseInfo combines the local record with the backend's view when the
// backend is reachable. Backend failures degrade to local-only info.
type LicenseInfo struct {
	Status           models.LicenseStatus
	ProductKeyMasked string
	ExpiresAt        time.Time
	DaysRemaining    int
	DeviceSlot       int
}

func (s *LicenseService) Info(ctx context.Context) (*LicenseInfo, error) {
	auth, err := s.store.Authorization(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	info := &LicenseInfo{
		Status:           auth.Status(now),
		ProductKeyMasked: auth.ProductKeyMasked,
		ExpiresAt:        auth.ExpiresAt,
		DaysRemaining:    auth.DaysRemaining(now),
		DeviceSlot:       auth.DeviceSlot,
	}
	if !auth.Registered() {
		return info, nil
	}

	remote, err := s.api.LicenseInfo(ctx, auth.ShopID, auth.AppID)
	if err != nil {
		// Offline or backend down: local state is authoritative enough
		// for display.
		s.log.Warn(ctx, "license info fetch failed, using local state", "error", err)
		return info, nil
	}
	if remote.ProductKeyMasked != "" {
		info.ProductKeyMasked = remote.ProductKeyMasked
	}
	if remote.ExpiresAt > 0 {
		info.ExpiresAt = common.FromUnixMillis(remote.ExpiresAt)
		info.DaysRemaining = remote.DaysRemaining
		if remote.Expired {
			info.Status = models.StatusExpired
		}
	}
	return info, nil
}

// VerifyPIN checks the entered PIN against the stored hash.
func (s *LicenseService) VerifyPIN(ctx context.Context, pin string) error {
	shop, err := s.store.Shop(ctx)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(shop.PINHash), []byte(pin)) != nil {
		return common.ErrInvalidPIN
	}
	return nil
}

// ChangePIN replaces the access PIN after the caller has verified the old one.
func (s *LicenseService) ChangePIN(ctx context.Context, pin string) error {
	if err := s.validate.Var(pin, "required,len=4,numeric"); err != nil {
		return fmt.Errorf("%w: pin must be 4 digits", common.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash pin: %w", err)
	}
	return s.store.UpdateShopPIN(ctx, string(hash))
}
