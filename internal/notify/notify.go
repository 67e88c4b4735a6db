// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notify pushes run summaries to WeCom and Feishu group
// webhooks. Delivery problems are reported to the caller but are never
// fatal to a run.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/bookwatch/internal/httputil"
	"github.com/pdiddy/bookwatch/pkg/types"
)

// Message size limits. Webhook payloads are capped by the providers, so
// long runs list only the head of each section.
const (
	maxListedAvailable = 10
	maxListedFailures  = 5
)

// Notifier delivers run summaries to the configured channels.
type Notifier struct {
	HTTP *http.Client
	cfg  types.NotifyConfig
}

// New builds a Notifier from the configuration.
func New(cfg types.NotifyConfig) *Notifier {
	return &Notifier{
		HTTP: &http.Client{Timeout: 15 * time.Second},
		cfg:  cfg,
	}
}

// Send pushes the summary to every enabled channel. It returns the
// per-channel failures joined into one error; a nil error means every
// channel accepted the message. Channels without a configured webhook
// are skipped silently.
func (n *Notifier) Send(ctx context.Context, summary types.RunSummary) error {
	var failures []string
	for _, ch := range n.cfg.Channels {
		var err error
		switch ch {
		case "wecom":
			err = n.sendWecom(ctx, summary)
		case "feishu":
			err = n.sendFeishu(ctx, summary)
		default:
			err = fmt.Errorf("unknown channel %q", ch)
		}
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", ch, err))
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("notification failed: %s", strings.Join(failures, "; "))
	}
	return nil
}

func (n *Notifier) sendWecom(ctx context.Context, summary types.RunSummary) error {
	if n.cfg.WecomWebhook == "" {
		return nil
	}
	payload := map[string]any{
		"msgtype": "markdown",
		"markdown": map[string]string{
			"content": buildWecom(summary),
		},
	}
	return n.post(ctx, n.cfg.WecomWebhook, payload, "errcode")
}

func (n *Notifier) sendFeishu(ctx context.Context, summary types.RunSummary) error {
	if n.cfg.FeishuWebhook == "" {
		return nil
	}
	return n.post(ctx, n.cfg.FeishuWebhook, buildFeishu(summary), "code")
}

// post delivers the JSON payload and checks the provider's in-body
// status field, which both providers set to 0 on success even when the
// HTTP status is 200.
func (n *Notifier) post(ctx context.Context, webhook string, payload any, statusField string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(ctx, n.HTTP, req, 0)
	if err != nil {
		return fmt.Errorf("posting webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}

	var status struct {
		Errcode int    `json:"errcode"`
		Code    int    `json:"code"`
		Errmsg  string `json:"errmsg"`
		Msg     string `json:"msg"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("parsing webhook response: %w", err)
	}

	switch statusField {
	case "errcode":
		if status.Errcode != 0 {
			return fmt.Errorf("webhook rejected message: errcode %d (%s)", status.Errcode, status.Errmsg)
		}
	case "code":
		if status.Code != 0 {
			return fmt.Errorf("webhook rejected message: code %d (%s)", status.Code, status.Msg)
		}
	}
	return nil
}

// buildWecom renders the WeCom markdown message.
func buildWecom(summary types.RunSummary) string {
	var b strings.Builder
	b.WriteString("## 书籍上架检查\n")
	fmt.Fprintf(&b, "共检查 %d 本：可读 %d，未上架 %d，失败 %d\n",
		summary.Total, summary.Available, summary.Unavailable, len(summary.Failed))

	if len(summary.NewlyAvailable) > 0 {
		b.WriteString("\n**新上架**\n")
		for i, bv := range summary.NewlyAvailable {
			if i == maxListedAvailable {
				fmt.Fprintf(&b, "> ... 等 %d 本\n", len(summary.NewlyAvailable))
				break
			}
			title := bv.Verdict.MatchedTitle
			if title == "" {
				title = bv.Query.Title
			}
			fmt.Fprintf(&b, "> %s (%.2f)\n", title, bv.Verdict.Confidence)
		}
	}

	if summary.HasFailures() {
		b.WriteString("\n**检查失败**\n")
		for i, bv := range summary.Failed {
			if i == maxListedFailures {
				fmt.Fprintf(&b, "> ... 等 %d 本\n", len(summary.Failed))
				break
			}
			fmt.Fprintf(&b, "> %s: %s\n", bv.Query.Title, bv.Verdict.Error)
		}
	}
	return b.String()
}

// buildFeishu renders the Feishu interactive card payload.
func buildFeishu(summary types.RunSummary) map[string]any {
	var lines []string
	lines = append(lines, fmt.Sprintf("共检查 %d 本：可读 %d，未上架 %d，失败 %d",
		summary.Total, summary.Available, summary.Unavailable, len(summary.Failed)))

	if len(summary.NewlyAvailable) > 0 {
		lines = append(lines, "", "**新上架**")
		for i, bv := range summary.NewlyAvailable {
			if i == maxListedAvailable {
				lines = append(lines, fmt.Sprintf("... 等 %d 本", len(summary.NewlyAvailable)))
				break
			}
			title := bv.Verdict.MatchedTitle
			if title == "" {
				title = bv.Query.Title
			}
			lines = append(lines, fmt.Sprintf("- %s (%.2f)", title, bv.Verdict.Confidence))
		}
	}
	if summary.HasFailures() {
		lines = append(lines, "", "**检查失败**")
		for i, bv := range summary.Failed {
			if i == maxListedFailures {
				lines = append(lines, fmt.Sprintf("... 等 %d 本", len(summary.Failed)))
				break
			}
			lines = append(lines, fmt.Sprintf("- %s: %s", bv.Query.Title, bv.Verdict.Error))
		}
	}

	return map[string]any{
		"msg_type": "interactive",
		"card": map[string]any{
			"header": map[string]any{
				"title": map[string]any{
					"tag":     "plain_text",
					"content": "书籍上架检查",
				},
				"template": "blue",
			},
			"elements": []any{
				map[string]any{
					"tag": "div",
					"text": map[string]any{
						"tag":     "lark_md",
						"content": strings.Join(lines, "\n"),
					},
				},
			},
		},
	}
}
