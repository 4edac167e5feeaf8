package api

import (
	"github.com/shopspring/decimal"
	"github.com/tishanyq/shopsync/internal/client/models"
	"github.com/tishanyq/shopsync/internal/common"
)

// Wire types. Money travels as decimal strings, timestamps as Unix
// milliseconds; both match what the backend stores.

type RegisterShopRequest struct {
	ShopName     string `json:"shop_name"`
	OwnerName    string `json:"owner_name"`
	OwnerSurname string `json:"owner_surname"`
	PhoneNumber  string `json:"phone_number"`
	Services     string `json:"services"`
	Address      string `json:"address"`
}

type RegisterShopResponse struct {
	ShopID     string `json:"shop_id"`
	AppID      string `json:"app_id"`
	DeviceSlot int    `json:"device_slot"`
}

type ActivateKeyRequest struct {
	ProductKey string `json:"product_key"`
	AppID      string `json:"app_id"`
}

type ActivationResponse struct {
	ActivatedAt int64 `json:"activated_at"`
	ExpiresAt   int64 `json:"expires_at"`
	DeviceSlot  int   `json:"device_slot"`
}

type RenewRequest struct {
	ProductKey string `json:"product_key"`
}

type LicenseInfoResponse struct {
	ProductKeyMasked string `json:"product_key_masked"`
	ActivatedAt      int64  `json:"activated_at"`
	ExpiresAt        int64  `json:"expires_at"`
	DaysRemaining    int    `json:"days_remaining"`
	Expired          bool   `json:"expired"`
}

type ShopPayload struct {
	Name         string `json:"name"`
	OwnerName    string `json:"owner_name"`
	OwnerSurname string `json:"owner_surname"`
	PhoneNumber  string `json:"phone_number"`
	Services     string `json:"services"`
	Address      string `json:"address"`
}

type ItemPayload struct {
	LocalID   string          `json:"local_id"`
	ServerID  string          `json:"server_id,omitempty"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	PriceUSD  decimal.Decimal `json:"price_usd"`
	PriceZWG  decimal.Decimal `json:"price_zwg"`
	Quantity  int64           `json:"quantity"`
	CreatedAt int64           `json:"created_at"`
}

type SalePayload struct {
	LocalID       string          `json:"local_id"`
	ItemID        string          `json:"item_id"`
	ItemName      string          `json:"item_name"`
	Quantity      int64           `json:"quantity"`
	TotalUSD      decimal.Decimal `json:"total_usd"`
	TotalZWG      decimal.Decimal `json:"total_zwg"`
	PaymentMethod string          `json:"payment_method"`
	DebtUsedUSD   decimal.Decimal `json:"debt_used_usd"`
	DebtUsedZWG   decimal.Decimal `json:"debt_used_zwg"`
	DebtID        string          `json:"debt_id,omitempty"`
	SaleDate      int64           `json:"sale_date"`
}

type DebtPayload struct {
	LocalID      string          `json:"local_id"`
	ServerID     string          `json:"server_id,omitempty"`
	CustomerName string          `json:"customer_name"`
	AmountUSD    decimal.Decimal `json:"amount_usd"`
	AmountZWG    decimal.Decimal `json:"amount_zwg"`
	Type         string          `json:"type"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    int64           `json:"created_at"`
	Cleared      bool            `json:"cleared"`
	ClearedAt    int64           `json:"cleared_at,omitempty"`
}

// SyncRequest carries every unsynced record in one batch. Records are keyed
// by local_id so the backend can upsert idempotently.
type SyncRequest struct {
	Shop  *ShopPayload  `json:"shop,omitempty"`
	Items []ItemPayload `json:"items"`
	Sales []SalePayload `json:"sales"`
	Debts []DebtPayload `json:"debts"`
}

// SyncResponse maps each uploaded local_id to the server id assigned to it.
type SyncResponse struct {
	ShopID   string            `json:"shop_id,omitempty"`
	ItemIDs  map[string]string `json:"item_ids"`
	SaleIDs  map[string]string `json:"sale_ids"`
	DebtIDs  map[string]string `json:"debt_ids"`
	SyncTime int64             `json:"sync_time"`
}

func ShopToPayload(s *models.Shop) *ShopPayload {
	if s == nil {
		return nil
	}
	return &ShopPayload{
		Name:         s.Name,
		OwnerName:    s.OwnerName,
		OwnerSurname: s.OwnerSurname,
		PhoneNumber:  s.PhoneNumber,
		Services:     s.Services,
		Address:      s.Address,
	}
}

func ItemToPayload(i *models.Item) ItemPayload {
	return ItemPayload{
		LocalID:   i.LocalID,
		ServerID:  i.ServerID,
		Name:      i.Name,
		Category:  i.Category,
		PriceUSD:  i.PriceUSD,
		PriceZWG:  i.PriceZWG,
		Quantity:  i.Quantity,
		CreatedAt: common.UnixMillis(i.CreatedAt),
	}
}

func SaleToPayload(s *models.Sale) SalePayload {
	return SalePayload{
		LocalID:       s.LocalID,
		ItemID:        s.ItemID,
		ItemName:      s.ItemName,
		Quantity:      s.Quantity,
		TotalUSD:      s.TotalUSD,
		TotalZWG:      s.TotalZWG,
		PaymentMethod: string(s.PaymentMethod),
		DebtUsedUSD:   s.DebtUsedUSD,
		DebtUsedZWG:   s.DebtUsedZWG,
		DebtID:        s.DebtID,
		SaleDate:      common.UnixMillis(s.SaleDate),
	}
}

func DebtToPayload(d *models.Debt) DebtPayload {
	return DebtPayload{
		LocalID:      d.LocalID,
		ServerID:     d.ServerID,
		CustomerName: d.CustomerName,
		AmountUSD:    d.AmountUSD,
		AmountZWG:    d.AmountZWG,
		Type:         string(d.Type),
		Notes:        d.Notes,
		CreatedAt:    common.UnixMillis(d.CreatedAt),
		Cleared:      d.Cleared,
		ClearedAt:    common.UnixMillis(d.ClearedAt),
	}
}
