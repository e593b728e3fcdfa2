package esi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mangodeliveries/backend/internal/domain/identity"
	"github.com/mangodeliveries/backend/internal/domain/pricing"
	"github.com/mangodeliveries/backend/internal/infrastructure/config"
)

// maxResponseSize is the maximum allowed response size from ESI (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Client talks to the EVE SSO and ESI APIs. It implements both
// identity.Provider and pricing.DistanceOracle, which share the same
// HTTP surface upstream.
type Client struct {
	cfg        config.ESIConfig
	httpClient *http.Client
}

var (
	_ identity.Provider     = (*Client)(nil)
	_ pricing.DistanceOracle = (*Client)(nil)
)

// NewClient creates an ESI client from configuration.
func NewClient(cfg config.ESIConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// AuthorizeURL builds the SSO login redirect carrying the state nonce.
func (c *Client) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("redirect_uri", c.cfg.CallbackURL)
	q.Set("client_id", c.cfg.ClientID)
	q.Set("state", state)
	return c.cfg.LoginURL + "/oauth/authorize/?" + q.Encode()
}

// ExchangeCode swaps an authorization code for an access token using
// the client credentials as HTTP basic auth.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.LoginURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("esi: build token request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(req, &payload); err != nil {
		return "", err
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("esi: token response missing access_token")
	}
	return payload.AccessToken, nil
}

// Verify resolves an access token to the owning character id.
func (c *Client) Verify(ctx context.Context, token string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.LoginURL+"/oauth/verify", nil)
	if err != nil {
		return 0, fmt.Errorf("esi: build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var payload struct {
		CharacterID int64 `json:"CharacterID"`
	}
	if err := c.do(req, &payload); err != nil {
		return 0, err
	}
	if payload.CharacterID == 0 {
		return 0, fmt.Errorf("esi: verify response missing CharacterID")
	}
	return payload.CharacterID, nil
}

// Profile fetches the public character record.
func (c *Client) Profile(ctx context.Context, characterID int64) (*identity.Profile, error) {
	var payload struct {
		Name          string    `json:"name"`
		Birthday      time.Time `json:"birthday"`
		CorporationID int64     `json:"corporation_id"`
		AllianceID    *int64    `json:"alliance_id"`
	}
	if err := c.get(ctx, fmt.Sprintf("%s/characters/%d/", c.cfg.BaseURL, characterID), &payload); err != nil {
		return nil, err
	}
	return &identity.Profile{
		ID:            characterID,
		Name:          payload.Name,
		Birthday:      payload.Birthday,
		CorporationID: payload.CorporationID,
		AllianceID:    payload.AllianceID,
	}, nil
}

// Portrait fetches the 64px character portrait URL.
func (c *Client) Portrait(ctx context.Context, characterID int64) (string, error) {
	var payload struct {
		Px64 string `json:"px64x64"`
	}
	if err := c.get(ctx, fmt.Sprintf("%s/characters/%d/portrait/", c.cfg.BaseURL, characterID), &payload); err != nil {
		return "", err
	}
	return forceHTTPS(payload.Px64), nil
}

// Corporation fetches a corporation's name and 64px icon URL.
func (c *Client) Corporation(ctx context.Context, corporationID int64) (string, string, error) {
	return c.nameAndIcon(ctx, fmt.Sprintf("%s/corporations/%d", c.cfg.BaseURL, corporationID))
}

// Alliance fetches an alliance's name and 64px icon URL.
func (c *Client) Alliance(ctx context.Context, allianceID int64) (string, string, error) {
	return c.nameAndIcon(ctx, fmt.Sprintf("%s/alliances/%d", c.cfg.BaseURL, allianceID))
}

func (c *Client) nameAndIcon(ctx context.Context, base string) (string, string, error) {
	var info struct {
		Name string `json:"name"`
	}
	if err := c.get(ctx, base+"/", &info); err != nil {
		return "", "", err
	}
	var icons struct {
		Px64 string `json:"px64x64"`
	}
	if err := c.get(ctx, base+"/icons/", &icons); err != nil {
		return "", "", err
	}
	return info.Name, forceHTTPS(icons.Px64), nil
}

// ResolveSystem maps a solar system name to its id via the bulk name
// resolution endpoint. ok is false when ESI does not know the name.
func (c *Client) ResolveSystem(ctx context.Context, name string) (int64, bool, error) {
	body, err := json.Marshal([]string{name})
	if err != nil {
		return 0, false, fmt.Errorf("esi: marshal name lookup: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/universe/ids/", strings.NewReader(string(body)))
	if err != nil {
		return 0, false, fmt.Errorf("esi: build name lookup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var payload struct {
		Systems []struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"systems"`
	}
	if err := c.do(req, &payload); err != nil {
		return 0, false, err
	}
	if len(payload.Systems) == 0 {
		return 0, false, nil
	}
	return payload.Systems[0].ID, true, nil
}

// Route computes the jump path between two systems. The returned slice
// includes both endpoints; an unreachable pair yields an error from ESI.
func (c *Client) Route(ctx context.Context, originID, destinationID int64, preference pricing.RoutePreference) ([]int64, error) {
	endpoint := fmt.Sprintf("%s/route/%d/%d/?flag=%s",
		c.cfg.BaseURL, originID, destinationID, url.QueryEscape(string(preference)))
	var route []int64
	if err := c.get(ctx, endpoint, &route); err != nil {
		return nil, err
	}
	return route, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("esi: build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("esi: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("esi: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("esi: %s %s: unexpected status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("esi: decode response: %w", err)
	}
	return nil
}

// forceHTTPS rewrites http image URLs; the image server redirects
// plain http and some clients refuse mixed content.
func forceHTTPS(u string) string {
	if strings.HasPrefix(u, "http://") {
		return "https://" + strings.TrimPrefix(u, "http://")
	}
	return u
}
