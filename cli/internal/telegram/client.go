// Package telegram delivers HTML messages through the Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	applog "github.com/zhaobenny/vnstat-notify/internal/log"
)

// DefaultBaseURL is the public Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

var (
	ErrEmptyMessage     = errors.New("message is empty")
	ErrUnexpectedStatus = errors.New("telegram returned unexpected status")
	ErrDelivery         = errors.New("error sending telegram message")
)

// Client sends messages to one chat
type Client struct {
	Token   string
	ChatID  string
	BaseURL string

	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *applog.Logger
}

// sendMessageRequest is the sendMessage request body
type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// apiResponse is the envelope of every Bot API response
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// NewClient creates a new telegram client
func NewClient(token, chatID, baseURL string, logger *applog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = applog.Discard()
	}
	return &Client{
		Token:   token,
		ChatID:  chatID,
		BaseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		// Bot API allows about one message per second per chat.
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		logger:  logger.WithComponent(applog.ComponentTelegram),
	}
}

// Send delivers text, split into several messages when it is too long.
// It stops at the first part that fails.
func (c *Client) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	start := time.Now()
	parts := Split(text, MaxMessageLength)
	for i, part := range parts {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %w", ErrDelivery, err)
		}
		if err := c.sendMessage(ctx, part); err != nil {
			if len(parts) > 1 {
				return fmt.Errorf("part %d of %d: %w", i+1, len(parts), err)
			}
			return err
		}
	}

	c.logger.InfoContext(ctx, "Message sent successfully",
		applog.FieldParts, len(parts),
		applog.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

func (c *Client) sendMessage(ctx context.Context, text string) error {
	data, err := json.Marshal(sendMessageRequest{
		ChatID:    c.ChatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.BaseURL, c.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDelivery, redact(err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDelivery, redact(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiResp apiResponse
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = json.Unmarshal(body, &apiResp)
		c.logger.WarnContext(ctx, "Telegram API rejected message",
			applog.FieldOperation, applog.OpSend,
			applog.FieldStatusCode, resp.StatusCode,
			"description", apiResp.Description)
		if apiResp.Description != "" {
			return fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, apiResp.Description)
		}
		return fmt.Errorf("%w %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return nil
}

// redact drops the request URL, which carries the bot token.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
