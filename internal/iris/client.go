package iris

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kapu/ai-demo-hub/internal/constants"
	"github.com/kapu/ai-demo-hub/pkg/errors"
	"go.uber.org/zap"
)

// Client talks to the Iris REST bridge that relays KakaoTalk replies.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRunes   int
	logger     *zap.Logger
}

func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		maxRunes: constants.StringLimits.ChatReply,
		logger:   logger,
	}
}

func (c *Client) GetConfig(ctx context.Context) (*Config, error) {
	var config Config
	if err := c.doRequest(ctx, http.MethodGet, "/config", nil, &config); err != nil {
		c.logger.Error("Failed to get Iris config", zap.Error(err))
		return nil, err
	}
	return &config, nil
}

// SendMessage posts a text reply. Long messages are split on line breaks so every part
// stays under the KakaoTalk message limit.
func (c *Client) SendMessage(ctx context.Context, room, message string) error {
	for _, part := range splitMessage(message, c.maxRunes) {
		req := ReplyRequest{
			Type: "text",
			Room: room,
			Data: part,
		}
		if err := c.doRequest(ctx, http.MethodPost, "/reply", req, nil); err != nil {
			c.logger.Error("Failed to send message",
				zap.Error(err),
				zap.String("room", room),
			)
			return err
		}
	}
	return nil
}

func (c *Client) Ping(ctx context.Context) bool {
	_, err := c.GetConfig(ctx)
	return err == nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, reqBody, respBody any) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return errors.NewAPIError("failed to marshal request", "iris", 0, map[string]any{
				"url": url,
			}).WithCause(err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return errors.NewAPIError("failed to create request", "iris", 0, map[string]any{
			"url": url,
		}).WithCause(err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewAPIError("request failed", "iris", 0, map[string]any{
			"url": url,
		}).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, int64(constants.StringLimits.ErrorBody)))
		return errors.NewAPIError(
			fmt.Sprintf("Iris API error: %s", resp.Status),
			"iris",
			resp.StatusCode,
			map[string]any{
				"url":  url,
				"body": string(bodyBytes),
			},
		)
	}

	if respBody != nil {
		if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
			return errors.NewAPIError("failed to decode response", "iris", resp.StatusCode, map[string]any{
				"url": url,
			}).WithCause(err)
		}
	}

	return nil
}

// splitMessage cuts text into parts of at most maxRunes, preferring line boundaries.
func splitMessage(text string, maxRunes int) []string {
	if maxRunes <= 0 || len([]rune(text)) <= maxRunes {
		return []string{text}
	}

	parts := make([]string, 0, 2)
	var current []rune
	flush := func() {
		if part := strings.TrimRight(string(current), "\n"); strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
		current = nil
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		lr := []rune(line)
		for len(lr) > maxRunes {
			flush()
			current = lr[:maxRunes]
			flush()
			lr = lr[maxRunes:]
		}
		if len(current)+len(lr) > maxRunes {
			flush()
		}
		current = append(current, lr...)
	}
	flush()
	return parts
}
