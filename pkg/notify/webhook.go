// Package notify delivers verdict alerts to an operator-configured
// webhook. Delivery is fire-and-forget: a slow or dead receiver never
// blocks the scoring path.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shri-birje/Phishguard/pkg/httputil"
	"github.com/shri-birje/Phishguard/pkg/ml"
)

// maxInFlight bounds concurrent webhook deliveries.
const maxInFlight = 16

// Alert is the webhook payload for a Medium or High verdict.
type Alert struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	URL       string         `json:"url"`
	RiskLevel ml.RiskLevel   `json:"risk_level"`
	Action    ml.Action      `json:"action"`
	Score     float64        `json:"score"`
	Verdict   *ml.Assessment `json:"verdict"`
}

// Notifier posts alerts to one webhook URL. A Notifier with an empty URL
// is valid and discards everything.
type Notifier struct {
	webhookURL string
	client     *http.Client
	sem        *httputil.Semaphore
}

// NewNotifier creates a notifier for the given webhook URL. Empty
// disables delivery.
func NewNotifier(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     httputil.Client(httputil.TierMedium),
		sem:        httputil.NewSemaphore(maxInFlight),
	}
}

// Enabled reports whether a webhook is configured.
func (n *Notifier) Enabled() bool {
	return n.webhookURL != ""
}

// AlertFor builds the alert payload for a verdict.
func AlertFor(a *ml.Assessment) Alert {
	return Alert{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		URL:       a.URL,
		RiskLevel: a.RiskLevel,
		Action:    a.Action,
		Score:     a.PhishingScore,
		Verdict:   a,
	}
}

// Notify delivers an alert asynchronously. At capacity the alert is
// dropped and counted; scoring latency is never paid for alerting.
func (n *Notifier) Notify(alert Alert) {
	if !n.Enabled() {
		return
	}
	if !n.sem.TryAcquire() {
		log.Printf("[WARN] alert delivery at capacity, dropped alert for %s (total dropped: %d)",
			alert.URL, n.sem.DroppedCount())
		return
	}

	go func() {
		defer n.sem.Release()
		if err := n.deliver(alert); err != nil {
			log.Printf("[WARN] alert webhook delivery failed: %v", err)
		}
	}()
}

// NotifySync delivers an alert on the calling goroutine, for the CLI
// path where the process exits right after the verdict.
func (n *Notifier) NotifySync(ctx context.Context, alert Alert) error {
	if !n.Enabled() {
		return nil
	}
	if err := n.sem.Acquire(ctx); err != nil {
		return err
	}
	defer n.sem.Release()
	return n.deliver(alert)
}

func (n *Notifier) deliver(alert Alert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "phishguard-gateway")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer httputil.DrainAndClose(resp.Body)

	if resp.StatusCode >= 300 {
		body, _ := httputil.ReadResponseBody(resp.Body, 4096)
		log.Printf("[WARN] alert webhook returned %d: %s", resp.StatusCode, body)
	}
	return nil
}

// DroppedCount returns how many alerts were dropped at capacity.
func (n *Notifier) DroppedCount() int64 {
	return n.sem.DroppedCount()
}
