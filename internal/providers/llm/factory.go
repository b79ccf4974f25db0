package llm

import (
	"context"
	"fmt"
)

// DefaultFactory wires the concrete providers. Vertex project/location
// come from process env since they are deployment facts, not admin
// settings.
type DefaultFactory struct {
	VertexProject  string
	VertexLocation string
}

func (f DefaultFactory) New(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "", ProviderAnthropic:
		return NewAnthropic(cfg.APIKey, cfg.Model)
	case ProviderVertex:
		return NewVertexGemini(ctx, f.VertexProject, f.VertexLocation, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
