// Package webhook posts access-leak notifications to Slack, adapted
// from the gatewayops teacher's alerting webhook client onto the one
// event baselayer's leak policy needs to report.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SlackClient posts incoming-webhook messages to Slack.
type SlackClient struct {
	httpClient *http.Client
}

// NewSlackClient returns a client with a bounded request timeout.
func NewSlackClient() *SlackClient {
	return &SlackClient{httpClient: &http.Client{Timeout: 10 * time.Second}}
}

type slackMessage struct {
	Username    string            `json:"username,omitempty"`
	IconEmoji   string            `json:"icon_emoji,omitempty"`
	Attachments []slackAttachment `json:"attachments,omitempty"`
}

type slackAttachment struct {
	Color  string       `json:"color,omitempty"`
	Title  string       `json:"title,omitempty"`
	Text   string       `json:"text,omitempty"`
	Fields []slackField `json:"fields,omitempty"`
	Ts     int64        `json:"ts,omitempty"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short,omitempty"`
}

// LeakAlert describes one access-leak event: a principal touched
// row(s) of a type/mode it wasn't entitled to, under a non-strict
// leak policy.
type LeakAlert struct {
	Table          string
	Mode           string
	PrincipalID    string
	InaccessibleID string
	Stack          string
	At             time.Time
}

// SendLeakAlert posts a LeakAlert to a Slack incoming-webhook URL.
func (c *SlackClient) SendLeakAlert(ctx context.Context, webhookURL string, alert LeakAlert) error {
	msg := slackMessage{
		Username:  "baselayer",
		IconEmoji: ":warning:",
		Attachments: []slackAttachment{
			{
				Color: "#ffc107",
				Title: fmt.Sprintf("access leak: %s/%s", alert.Table, alert.Mode),
				Text:  alert.Stack,
				Fields: []slackField{
					{Title: "principal", Value: alert.PrincipalID, Short: true},
					{Title: "row id", Value: alert.InaccessibleID, Short: true},
				},
				Ts: alert.At.Unix(),
			},
		},
	}
	return c.send(ctx, webhookURL, msg)
}

func (c *SlackClient) send(ctx context.Context, webhookURL string, msg slackMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal slack message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send slack webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}
	return nil
}
