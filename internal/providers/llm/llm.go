package llm

import "context"

const (
	ProviderAnthropic = "anthropic"
	ProviderVertex    = "vertex"
)

// Provider is the external AI completion boundary. Implementations must
// honor ctx deadlines; the caller bounds every call with a timeout.
type Provider interface {
	// Analyze sends a system prompt plus user message and returns the
	// full completion text.
	Analyze(ctx context.Context, system, prompt string) (string, error)
	// Ping performs a lightweight round trip to validate credentials.
	Ping(ctx context.Context) error
	Close() error
}

// Config selects and parameterizes a provider. API keys come from the
// runtime config store, not from process env, so admin updates take
// effect without a restart.
type Config struct {
	Provider string
	APIKey   string
	Model    string
}

// Factory builds providers from runtime config. Kept as an interface so
// the analysis service can be tested against a fake boundary.
type Factory interface {
	New(ctx context.Context, cfg Config) (Provider, error)
}
