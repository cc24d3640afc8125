package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"SmartRecover/internal/ports"
)

const (
	defaultBaseURL = "https://api.telegram.org"
	// Telegram rejects messages longer than this many characters.
	maxMessageLength = 4096
)

// ErrMisconfigured is returned when the bot token or chat id is missing.
var ErrMisconfigured = errors.New("telegram notifier misconfigured")

// Notifier sends run digests to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  defaultBaseURL,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// WithBaseURL points the notifier at another bot API host.
func (n *Notifier) WithBaseURL(base string) *Notifier {
	n.baseURL = strings.TrimSuffix(base, "/")
	return n
}

// PublishDigest posts a plain-text message to Telegram.
func (n *Notifier) PublishDigest(ctx context.Context, digest string) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return ErrMisconfigured
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", truncate(digest, maxMessageLength))
	form.Set("disable_web_page_preview", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
