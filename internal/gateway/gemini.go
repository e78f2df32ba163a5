package gateway

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"google.golang.org/genai"
)

// geminiProvider calls the Gemini API. The engine only ever sends a single
// synthesized prompt turn, so turns are flattened into one text part.
type geminiProvider struct {
	cfg    Config
	client *genai.Client
}

func newGeminiProvider(cfg Config) (*geminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gateway: gemini requires an API key")
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, errors.Wrap(err, "gateway: gemini client")
	}
	model := cfg.Model
	if model == "" || strings.HasPrefix(model, "gpt-") {
		model = "gemini-2.5-flash"
	}
	cfg.Model = model
	return &geminiProvider{cfg: cfg, client: client}, nil
}

// Complete implements Provider.
func (p *geminiProvider) Complete(ctx context.Context, turns []Turn) (string, error) {
	if len(turns) == 0 {
		return "", errors.New("gateway: empty request")
	}

	var sb strings.Builder
	for i, t := range turns {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(t.Content)
	}

	temp := p.cfg.Temperature
	result, err := p.client.Models.GenerateContent(ctx, p.cfg.Model, genai.Text(sb.String()), &genai.GenerateContentConfig{
		Temperature: &temp,
	})
	if err != nil {
		return "", errors.Wrap(err, "gateway: gemini request failed")
	}
	if result == nil || len(result.Candidates) == 0 ||
		result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gateway: gemini returned no candidates")
	}
	text := result.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", errors.New("gateway: gemini returned empty content")
	}
	return text, nil
}

var _ Provider = (*geminiProvider)(nil)
