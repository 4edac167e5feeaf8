// Package api is the HTTP client for the ShopSync backend. Every method maps
// transport and status failures onto the shared error sentinels so callers
// can branch on errors.Is without inspecting responses.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tishanyq/shopsync/internal/common"
)

const headerAppID = "X-App-Id"

// Client talks to one backend instance. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the backend at baseURL. A trailing slash on
// baseURL is tolerated.
func NewClient(baseURL string, timeout time.Duration) *Client {
	for len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// errorBody is the backend's uniform error envelope.
type errorBody struct {
	Error   string `json:"error"`
	Expired bool   `json:"expired"`
}

// mapStatus converts a non-2xx response into a sentinel-wrapped error.
func mapStatus(status int, body []byte) error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	msg := eb.Error
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch {
	case status == http.StatusForbidden && eb.Expired:
		return fmt.Errorf("%s: %w", msg, common.ErrLicenseExpired)
	case status == http.StatusForbidden || status == http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", msg, common.ErrAuth)
	case status == http.StatusNotFound:
		return fmt.Errorf("%s: %w", msg, common.ErrNotFound)
	case status >= 500:
		return fmt.Errorf("backend error (%d): %s: %w", status, msg, common.ErrServer)
	default:
		return fmt.Errorf("%s: %w", msg, common.ErrValidation)
	}
}

// do sends the request and decodes a 2xx JSON body into out (out may be nil).
func (c *Client) do(ctx context.Context, method, path, appID string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if appID != "" {
		req.Header.Set(headerAppID, appID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%v: %w", err, common.ErrNetworkUnavailable)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%v: %w", err, common.ErrNetworkUnavailable)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapStatus(resp.StatusCode, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %v: %w", err, common.ErrParse)
		}
	}
	return nil
}

// Health probes the backend. A nil return means the backend is reachable and
// willing to accept requests.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", "", nil, nil)
}

// RegisterShop creates the shop on the backend and claims a device slot.
func (c *Client) RegisterShop(ctx context.Context, req *RegisterShopRequest) (*RegisterShopResponse, error) {
	var resp RegisterShopResponse
	if err := c.do(ctx, http.MethodPost, "/api/shops", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ActivateKey redeems a product key for the given shop and device.
func (c *Client) ActivateKey(ctx context.Context, shopID string, req *ActivateKeyRequest) (*ActivationResponse, error) {
	var resp ActivationResponse
	path := fmt.Sprintf("/api/shops/%s/product-keys/activate", url.PathEscape(shopID))
	if err := c.do(ctx, http.MethodPost, path, req.AppID, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Renew extends an existing activation with a fresh product key.
func (c *Client) Renew(ctx context.Context, shopID, appID string, req *RenewRequest) (*ActivationResponse, error) {
	var resp ActivationResponse
	path := fmt.Sprintf("/api/shops/%s/devices/%s/renew", url.PathEscape(shopID), url.PathEscape(appID))
	if err := c.do(ctx, http.MethodPost, path, appID, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LicenseInfo fetches the backend's view of this device's license.
func (c *Client) LicenseInfo(ctx context.Context, shopID, appID string) (*LicenseInfoResponse, error) {
	var resp LicenseInfoResponse
	path := fmt.Sprintf("/api/shops/%s/devices/%s/license", url.PathEscape(shopID), url.PathEscape(appID))
	if err := c.do(ctx, http.MethodGet, path, appID, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Sync uploads one batch of unsynced records and returns the server id
// assignments. The backend authenticates the device from the X-App-Id header.
func (c *Client) Sync(ctx context.Context, shopID, appID string, req *SyncRequest) (*SyncResponse, error) {
	var resp SyncResponse
	path := fmt.Sprintf("/api/shops/%s/sync", url.PathEscape(shopID))
	if err := c.do(ctx, http.MethodPost, path, appID, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
