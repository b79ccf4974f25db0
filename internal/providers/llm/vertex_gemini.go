package llm

import (
	"context"
	"errors"
	"strings"

	vertexgenai "cloud.google.com/go/vertexai/genai"
)

// VertexGemini is the alternate provider, selected with the
// llm_provider config key. Auth comes from application default
// credentials rather than the stored API key.
type VertexGemini struct {
	client *vertexgenai.Client
	model  *vertexgenai.GenerativeModel
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName string) (*VertexGemini, error) {
	if projectID == "" {
		return nil, errors.New("vertex project id is not configured")
	}

	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	m := c.GenerativeModel(modelName)
	m.SetMaxOutputTokens(2000)
	m.SetTemperature(0.1)
	return &VertexGemini{client: c, model: m}, nil
}

func (v *VertexGemini) Close() error { return v.client.Close() }

func (v *VertexGemini) Analyze(ctx context.Context, system, prompt string) (string, error) {
	// Gemini takes the system prompt as a leading instruction block.
	full := prompt
	if system != "" {
		full = system + "\n\n" + prompt
	}

	resp, err := v.model.GenerateContent(ctx, vertexgenai.Text(full))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(vertexgenai.Text); ok {
				sb.WriteString(string(t))
			}
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", errors.New("empty completion from vertex")
	}
	return sb.String(), nil
}

func (v *VertexGemini) Ping(ctx context.Context) error {
	_, err := v.Analyze(ctx, "", "Reply with the single word: ok")
	return err
}
