package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mangodeliveries/backend/internal/domain/contract"
	"github.com/mangodeliveries/backend/internal/domain/pricing"
)

const (
	colorGold  = 0xF1C40F
	colorBlue  = 0x3498DB
	colorGreen = 0x2ECC71
	colorRed   = 0xE74C3C
	colorGray  = 0x95A5A6
)

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color,omitempty"`
	Fields      []discordField `json:"fields,omitempty"`
	Timestamp   string         `json:"timestamp,omitempty"`
}

type discordMessage struct {
	Username  string         `json:"username"`
	AvatarURL string         `json:"avatar_url,omitempty"`
	Embeds    []discordEmbed `json:"embeds"`
}

// DiscordSink posts contract events to a Discord webhook as embeds. A
// sink with an empty webhook URL silently drops every event.
type DiscordSink struct {
	webhookURL string
	username   string
	avatarURL  string
	httpClient *http.Client
	now        func() time.Time
}

var _ contract.NotificationSink = (*DiscordSink)(nil)

// NewDiscordSink creates a Discord webhook sink.
func NewDiscordSink(webhookURL string, timeout time.Duration) *DiscordSink {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DiscordSink{
		webhookURL: webhookURL,
		username:   "Mango Dispatch",
		avatarURL:  "https://images.evetech.net/corporations/98746847/logo?size=128",
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// NotifyNewContract announces a freshly submitted contract.
func (s *DiscordSink) NotifyNewContract(ctx context.Context, event contract.NewContractEvent) error {
	origin := event.Origin
	if origin == "" {
		origin = "Jita"
	}
	return s.send(ctx, discordEmbed{
		Title: "\U0001F4E6 New Contract Submitted",
		Color: colorGold,
		Fields: []discordField{
			{Name: "Creator", Value: event.Creator, Inline: true},
			{Name: "Route", Value: fmt.Sprintf("%s -> %s", origin, event.Destination), Inline: true},
			{Name: "Volume", Value: formatVolume(event.Volume) + " m³", Inline: true},
			{Name: "Reward", Value: event.Reward + " ISK", Inline: true},
			{Name: "Collateral", Value: event.Collateral + " ISK", Inline: true},
			{Name: "Link", Value: fmt.Sprintf("[Open Contract](%s)", event.Link)},
		},
		Timestamp: s.now().UTC().Format(time.RFC3339),
	})
}

// NotifyStatusChange announces a contract status transition.
func (s *DiscordSink) NotifyStatusChange(ctx context.Context, contractID int64, status contract.Status, actor string) error {
	return s.send(ctx, discordEmbed{
		Title:       fmt.Sprintf("\U0001F4DD Contract #%d Update", contractID),
		Description: fmt.Sprintf("Status changed to **%s** by %s", strings.ToUpper(string(status)), actor),
		Color:       statusColor(status),
		Timestamp:   s.now().UTC().Format(time.RFC3339),
	})
}

func (s *DiscordSink) send(ctx context.Context, embed discordEmbed) error {
	if s.webhookURL == "" {
		return nil
	}

	body, err := json.Marshal(discordMessage{
		Username:  s.username,
		AvatarURL: s.avatarURL,
		Embeds:    []discordEmbed{embed},
	})
	if err != nil {
		return fmt.Errorf("discord: marshal embed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("discord: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discord: post webhook: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("discord: webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func statusColor(status contract.Status) int {
	switch status {
	case contract.StatusOngoing:
		return colorBlue
	case contract.StatusFinalized:
		return colorGreen
	case contract.StatusFailed:
		return colorRed
	default:
		return colorGray
	}
}

func formatVolume(volume float64) string {
	return pricing.Comma(decimal.NewFromFloat(volume))
}
