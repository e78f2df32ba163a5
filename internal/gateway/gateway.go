// Package gateway is the boundary to the external text-completion service.
// Requests are role-tagged turns plus provider options; responses are plain
// text or an error. Callers must treat every failure as "no text produced",
// never as fatal.
package gateway

import (
	"context"
	"fmt"
	"strings"
)

// Role tags a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one role-tagged text turn of the request.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Config selects and configures a completion provider.
type Config struct {
	// Provider is "openai" (any OpenAI-compatible endpoint) or "gemini".
	Provider string `envconfig:"PROVIDER" default:"openai"`
	APIKey   string `envconfig:"API_KEY"`
	Model    string `envconfig:"MODEL" default:"gpt-4o-mini"`
	// BaseURL overrides the OpenAI-compatible endpoint, e.g. for proxies or
	// local servers. Ignored by the gemini provider.
	BaseURL     string  `envconfig:"BASE_URL" default:"https://api.openai.com/v1"`
	Temperature float32 `envconfig:"TEMPERATURE" default:"0.9"`
}

// Provider produces a completion for a sequence of turns. Implementations may
// take arbitrary time and fail for network, auth or rate-limit reasons; they
// must respect ctx cancellation.
type Provider interface {
	Complete(ctx context.Context, turns []Turn) (string, error)
}

// New builds the provider named by cfg.Provider.
func New(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "openai", "":
		return newOpenAIProvider(cfg), nil
	case "gemini":
		return newGeminiProvider(cfg)
	default:
		return nil, fmt.Errorf("gateway: unknown provider %q", cfg.Provider)
	}
}

// StripReply normalizes raw model output before it is stored as a comment:
// surrounding whitespace goes, then at most one leading and one trailing
// quote character (models love to quote their replies), then whitespace again.
func StripReply(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 0 && isQuote(s[0]) {
		s = s[1:]
	}
	if len(s) > 0 && isQuote(s[len(s)-1]) {
		s = s[:len(s)-1]
	}
	return strings.TrimSpace(s)
}

func isQuote(b byte) bool { return b == '"' || b == '\'' }
