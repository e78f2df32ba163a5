package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// openAIProvider speaks the OpenAI chat-completions wire format, which most
// hosted and local providers accept.
type openAIProvider struct {
	cfg  Config
	http *resty.Client
}

func newOpenAIProvider(cfg Config) *openAIProvider {
	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(60 * time.Second).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json")
	return &openAIProvider{cfg: cfg, http: c}
}

type chatCompletionRequest struct {
	Model       string  `json:"model"`
	Messages    []Turn  `json:"messages"`
	Temperature float32 `json:"temperature,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete implements Provider.
func (p *openAIProvider) Complete(ctx context.Context, turns []Turn) (string, error) {
	if len(turns) == 0 {
		return "", errors.New("gateway: empty request")
	}

	var out chatCompletionResponse
	resp, err := p.http.R().
		SetContext(ctx).
		SetBody(chatCompletionRequest{
			Model:       p.cfg.Model,
			Messages:    turns,
			Temperature: p.cfg.Temperature,
		}).
		SetResult(&out).
		SetError(&out).
		Post("/chat/completions")
	if err != nil {
		return "", errors.Wrap(err, "gateway: completion request failed")
	}
	if resp.IsError() {
		if out.Error != nil {
			return "", errors.Errorf("gateway: completion status %d: %s", resp.StatusCode(), out.Error.Message)
		}
		return "", errors.Errorf("gateway: completion status %d", resp.StatusCode())
	}
	if len(out.Choices) == 0 {
		return "", errors.New("gateway: completion returned no choices")
	}
	content := out.Choices[0].Message.Content
	if content == "" {
		return "", errors.New("gateway: completion returned empty content")
	}
	return content, nil
}

var _ Provider = (*openAIProvider)(nil)

// String identifies the provider in logs.
func (p *openAIProvider) String() string {
	return fmt.Sprintf("openai(%s)", p.cfg.Model)
}
