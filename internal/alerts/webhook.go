package alerts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// webhookPayload is the body posted to generic HTTP targets. It flattens
// the alert together with the series snapshot captured at fire time, so a
// receiver can tell which series misbehaved without a follow-up API call.
type webhookPayload struct {
	Rule       string  `json:"rule"`
	Series     string  `json:"series"`
	Severity   string  `json:"severity"`
	State      string  `json:"state"`
	Value      float64 `json:"value"`
	Fill       int     `json:"fill"`
	Spread     float64 `json:"spread"`
	Rejected   uint64  `json:"rejected"`
	Message    string  `json:"message"`
	FiredAt    string  `json:"fired_at"`
	ResolvedAt string  `json:"resolved_at,omitempty"`
}

func newPayload(a *Alert) webhookPayload {
	p := webhookPayload{
		Rule:     a.RuleName,
		Series:   a.Series,
		Severity: a.Severity,
		State:    a.State,
		Value:    a.Value,
		Fill:     a.Fill,
		Spread:   a.Spread,
		Rejected: a.Rejected,
		Message:  a.Message,
		FiredAt:  a.FiredAt.UTC().Format(time.RFC3339),
	}
	if a.ResolvedAt != nil {
		p.ResolvedAt = a.ResolvedAt.UTC().Format(time.RFC3339)
	}
	return p
}

// deliver sends webhook notifications for a to all configured targets.
// Errors are logged but do not affect the caller.
func (e *Engine) deliver(a *Alert) {
	for _, wh := range e.webhooks {
		url := wh.URL()
		if url == "" {
			continue
		}

		var err error
		switch wh.Type {
		case "slack":
			err = e.sendSlack(url, a)
		case "teams":
			err = e.sendTeams(url, a)
		case "http":
			err = e.sendHTTP(url, a)
		default:
			slog.Warn("alerts: unknown webhook type — skipping", "type", wh.Type)
			continue
		}

		if err != nil {
			slog.Error("alerts: webhook delivery failed",
				"type", wh.Type,
				"rule", a.RuleName,
				"series", a.Series,
				"err", err,
			)
		} else {
			slog.Debug("alerts: webhook delivered",
				"type", wh.Type,
				"rule", a.RuleName,
				"series", a.Series,
				"state", a.State,
			)
		}
	}
}

func (e *Engine) sendSlack(url string, a *Alert) error {
	text := fmt.Sprintf("*%s* %s on series `%s` — value %.2f (fill %d, %d rejected)",
		severityLabel(a.Severity), a.RuleName, a.Series, a.Value, a.Fill, a.Rejected)
	if a.State == "resolved" {
		text = fmt.Sprintf("*[RESOLVED]* %s on series `%s`", a.RuleName, a.Series)
	}
	body, _ := json.Marshal(map[string]string{"text": text})
	return e.post(url, body)
}

func (e *Engine) sendTeams(url string, a *Alert) error {
	payload := map[string]interface{}{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": severityColor(a.Severity),
		"summary":    a.RuleName,
		"title":      fmt.Sprintf("Cairn Alert: %s (%s)", a.RuleName, a.Series),
		"text":       a.Message,
		"sections": []map[string]interface{}{{
			"facts": []map[string]string{
				{"name": "Series", "value": a.Series},
				{"name": "Value", "value": fmt.Sprintf("%.2f", a.Value)},
				{"name": "Fill", "value": fmt.Sprintf("%d", a.Fill)},
				{"name": "Spread", "value": fmt.Sprintf("%.2f", a.Spread)},
				{"name": "Rejected", "value": fmt.Sprintf("%d", a.Rejected)},
				{"name": "State", "value": a.State},
			},
		}},
	}
	body, _ := json.Marshal(payload)
	return e.post(url, body)
}

func (e *Engine) sendHTTP(url string, a *Alert) error {
	body, _ := json.Marshal(newPayload(a))
	return e.post(url, body)
}

func (e *Engine) post(url string, body []byte) error {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func severityLabel(s string) string {
	switch s {
	case "critical":
		return "[CRITICAL]"
	case "warning":
		return "[WARNING]"
	default:
		return "[INFO]"
	}
}

func severityColor(s string) string {
	switch s {
	case "critical":
		return "FF4F6A"
	case "warning":
		return "FFAB40"
	default:
		return "00D4FF"
	}
}
