package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/deusflow/newsagent/internal/logger"
	"github.com/deusflow/newsagent/internal/metrics"
	"github.com/deusflow/newsagent/internal/retry"
)

// TelegramNotifier announces new articles to a Telegram chat/channel.
// Delivery is retried with backoff; a fetch pipeline failure never
// reaches this path, only a computed diff does.
type TelegramNotifier struct {
	token  string
	chatID string
	client *http.Client
}

func NewTelegramNotifier(token, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		token:  token,
		chatID: chatID,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (t *TelegramNotifier) Notify(ctx context.Context, n Notification) error {
	msg := formatMessage(n)

	err := retry.Do(ctx, retry.Config{MaxAttempts: 3, Delay: 2 * time.Second, Backoff: true}, func() error {
		return t.sendMessage(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("send telegram notification: %w", err)
	}

	logger.Info("telegram notification sent", "query", n.Query, "articles", len(n.Articles))
	metrics.Global.IncrementNotificationsSent()
	return nil
}

func formatMessage(n Notification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔔 <b>New articles for %q</b>\n\n", n.Query)

	const maxListed = 10
	for i, a := range n.Articles {
		if i >= maxListed {
			fmt.Fprintf(&b, "… and %d more\n", len(n.Articles)-maxListed)
			break
		}
		fmt.Fprintf(&b, "• <a href=\"%s\">%s</a> — %s\n", html.EscapeString(a.URL), html.EscapeString(a.Title), html.EscapeString(a.Source))
	}
	return b.String()
}

func (t *TelegramNotifier) sendMessage(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.token)

	payload := map[string]interface{}{
		"chat_id":                  t.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API error: status %d", resp.StatusCode)
	}
	return nil
}
