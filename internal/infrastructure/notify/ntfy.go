package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mangodeliveries/backend/internal/domain/contract"
)

// NtfySink pushes contract events to an ntfy topic. A sink with an
// empty topic URL silently drops every event.
type NtfySink struct {
	topicURL   string
	httpClient *http.Client
}

var _ contract.NotificationSink = (*NtfySink)(nil)

// NewNtfySink creates an ntfy sink. topicURL is the full topic address,
// e.g. "https://ntfy.sh/mango-deliveries".
func NewNtfySink(topicURL string, timeout time.Duration) *NtfySink {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NtfySink{
		topicURL:   topicURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NotifyNewContract announces a freshly submitted contract.
func (s *NtfySink) NotifyNewContract(ctx context.Context, event contract.NewContractEvent) error {
	origin := event.Origin
	if origin == "" {
		origin = "Jita"
	}
	message := fmt.Sprintf("Creator: %s\nRoute: %s -> %s\nVolume: %s m³\nReward: %s ISK\nCollateral: %s ISK\nLink: %s",
		event.Creator, origin, event.Destination,
		formatVolume(event.Volume), event.Reward, event.Collateral, event.Link)
	return s.send(ctx, message, "\U0001F4E6 New Contract Submitted", []string{"package", "new_contract"})
}

// NotifyStatusChange announces a contract status transition.
func (s *NtfySink) NotifyStatusChange(ctx context.Context, contractID int64, status contract.Status, actor string) error {
	message := fmt.Sprintf("Status changed to %s by %s", strings.ToUpper(string(status)), actor)
	title := fmt.Sprintf("\U0001F4DD Contract #%d Update", contractID)
	return s.send(ctx, message, title, statusTags(status))
}

func (s *NtfySink) send(ctx context.Context, message, title string, tags []string) error {
	if s.topicURL == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.topicURL, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("ntfy: build request: %w", err)
	}
	req.Header.Set("Title", title)
	if len(tags) > 0 {
		req.Header.Set("Tags", strings.Join(tags, ","))
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ntfy: post message: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ntfy: topic returned status %d", resp.StatusCode)
	}
	return nil
}

func statusTags(status contract.Status) []string {
	switch status {
	case contract.StatusOngoing:
		return []string{"arrow_right", "ongoing"}
	case contract.StatusFinalized:
		return []string{"white_check_mark", "finalized"}
	case contract.StatusFailed:
		return []string{"x", "failed"}
	default:
		return nil
	}
}
