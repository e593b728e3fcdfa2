package appraisal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mangodeliveries/backend/internal/domain/pricing"
	"github.com/mangodeliveries/backend/internal/infrastructure/config"
)

// maxResponseSize is the maximum allowed response size from the
// appraisal service (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Client fetches cargo appraisals from a Janice-compatible REST API.
type Client struct {
	cfg        config.AppraisalConfig
	httpClient *http.Client
}

var _ pricing.AppraisalClient = (*Client)(nil)

// NewClient creates an appraisal client from configuration.
func NewClient(cfg config.AppraisalConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// appraisalResponse mirrors the Janice v2 appraisal payload, reduced to
// the fields pricing needs.
type appraisalResponse struct {
	Code            string  `json:"code"`
	TotalVolume     float64 `json:"totalVolume"`
	ImmediatePrices struct {
		TotalSellPrice float64 `json:"totalSellPrice"`
	} `json:"immediatePrices"`
	Items []struct {
		Amount          float64 `json:"amount"`
		TotalVolume     float64 `json:"totalVolume"`
		ImmediatePrices struct {
			TotalSellPrice float64 `json:"totalSellPrice"`
		} `json:"immediatePrices"`
		ItemType struct {
			EID           int64   `json:"eid"`
			Name          string  `json:"name"`
			Volume        float64 `json:"volume"`
			MarketGroupID int64   `json:"marketGroupId"`
		} `json:"itemType"`
	} `json:"items"`
}

// Fetch retrieves the appraisal identified by code. Unknown codes come
// back as a fetch error; pricing maps any failure here to its
// invalid-appraisal alert.
func (c *Client) Fetch(ctx context.Context, code string) (*pricing.Appraisal, error) {
	endpoint := fmt.Sprintf("%s/api/rest/v2/appraisal/%s", c.cfg.BaseURL, url.PathEscape(code))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("appraisal: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("X-ApiKey", c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("appraisal: fetch %s: %w", code, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("appraisal: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("appraisal: fetch %s: unexpected status %d", code, resp.StatusCode)
	}

	var payload appraisalResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("appraisal: decode response: %w", err)
	}
	return toDomain(&payload), nil
}

func toDomain(payload *appraisalResponse) *pricing.Appraisal {
	result := &pricing.Appraisal{
		Code:        payload.Code,
		TotalSell:   decimal.NewFromFloat(payload.ImmediatePrices.TotalSellPrice),
		TotalVolume: payload.TotalVolume,
		Items:       make([]pricing.AppraisalItem, 0, len(payload.Items)),
	}
	for _, item := range payload.Items {
		result.Items = append(result.Items, pricing.AppraisalItem{
			TypeID:        item.ItemType.EID,
			MarketGroupID: item.ItemType.MarketGroupID,
			Name:          item.ItemType.Name,
			Quantity:      item.Amount,
			Volume:        item.TotalVolume,
			SellValue:     decimal.NewFromFloat(item.ImmediatePrices.TotalSellPrice),
		})
	}
	return result
}
