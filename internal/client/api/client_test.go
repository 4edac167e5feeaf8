package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tishanyq/shopsync/internal/common"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, 2*time.Second), srv
}

func TestHealth_OK(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	assert.NoError(t, c.Health(context.Background()))
}

func TestHealth_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on

	c := NewClient(srv.URL, time.Second)
	err := c.Health(context.Background())
	assert.ErrorIs(t, err, common.ErrNetworkUnavailable)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"forbidden expired", http.StatusForbidden, `{"error":"license expired","expired":true}`, common.ErrLicenseExpired},
		{"forbidden", http.StatusForbidden, `{"error":"unknown device"}`, common.ErrAuth},
		{"unauthorized", http.StatusUnauthorized, ``, common.ErrAuth},
		{"not found", http.StatusNotFound, `{"error":"no such shop"}`, common.ErrNotFound},
		{"server error", http.StatusInternalServerError, ``, common.ErrServer},
		{"bad request", http.StatusBadRequest, `{"error":"invalid product key"}`, common.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			defer srv.Close()

			err := c.Health(context.Background())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRegisterShop(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/shops", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"shop_id":"SHOP_7","app_id":"abc123","device_slot":2}`))
	})
	defer srv.Close()

	resp, err := c.RegisterShop(context.Background(), &RegisterShopRequest{ShopName: "Kwik Mart"})
	require.NoError(t, err)
	assert.Equal(t, "SHOP_7", resp.ShopID)
	assert.Equal(t, "abc123", resp.AppID)
	assert.Equal(t, 2, resp.DeviceSlot)
}

func TestActivateKey(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/shops/SHOP_7/product-keys/activate", r.URL.Path)
		_, _ = w.Write([]byte(`{"activated_at":1700000000000,"expires_at":1731536000000}`))
	})
	defer srv.Close()

	resp, err := c.ActivateKey(context.Background(), "SHOP_7", &ActivateKeyRequest{
		ProductKey: "AB12-CD34-EF56-GH78", AppID: "abc123",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), resp.ActivatedAt)
	assert.Equal(t, int64(1731536000000), resp.ExpiresAt)
}

func TestRenew_PathAndDecode(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/shops/SHOP_7/devices/abc123/renew", r.URL.Path)
		_, _ = w.Write([]byte(`{"activated_at":1700000000000,"expires_at":1731536000000,"device_slot":2}`))
	})
	defer srv.Close()

	resp, err := c.Renew(context.Background(), "SHOP_7", "abc123", &RenewRequest{ProductKey: "AB12-CD34-EF56-GH78"})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.DeviceSlot)
}

func TestSync_SendsAppIDHeaderAndDecodesMappings(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/shops/SHOP_7/sync", r.URL.Path)
		assert.Equal(t, "abc123", r.Header.Get("X-App-Id"))
		_, _ = w.Write([]byte(`{
			"item_ids": {"local-1": "ITEM_9"},
			"sale_ids": {},
			"debt_ids": {},
			"sync_time": 1700000000000
		}`))
	})
	defer srv.Close()

	resp, err := c.Sync(context.Background(), "SHOP_7", "abc123", &SyncRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ITEM_9", resp.ItemIDs["local-1"])
	assert.Equal(t, int64(1700000000000), resp.SyncTime)
}

func TestSync_MalformedResponse(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"item_ids": `))
	})
	defer srv.Close()

	_, err := c.Sync(context.Background(), "SHOP_7", "abc123", &SyncRequest{})
	assert.ErrorIs(t, err, common.ErrParse)
}
