package services

import (
	"context"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/stratus-tools/bug-advisor/internal/models"
	pgrepo "github.com/stratus-tools/bug-advisor/internal/repositories/postgres"
	"github.com/stratus-tools/bug-advisor/internal/utils"
)

// Settings is the typed snapshot of the runtime config store. It is
// loaded once and cached; every admin config write invalidates it, so
// there is no ambient global to mutate.
type Settings struct {
	APIKey           string
	LLMProvider      string
	CacheTTL         time.Duration
	RateLimitPerHour int
	MaxQueryLength   int
	MaintenanceMode  bool
}

type SettingsService interface {
	Current(ctx context.Context) (*Settings, error)
	Invalidate()
}

type settingsService struct {
	config pgrepo.ConfigRepo

	mu     sync.RWMutex
	cached *Settings
}

func NewSettingsService(config pgrepo.ConfigRepo) SettingsService {
	return &settingsService{config: config}
}

func (s *settingsService) Current(ctx context.Context) (*Settings, error) {
	const op = "SettingsService.Current"

	s.mu.RLock()
	if s.cached != nil {
		out := *s.cached
		s.mu.RUnlock()
		return &out, nil
	}
	s.mu.RUnlock()

	rows, err := s.config.GetAll(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load config", err)
	}

	st := defaults()
	for _, row := range rows {
		apply(st, row)
	}

	// Bootstrap key from env until the admin stores one.
	if st.APIKey == "" {
		st.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	s.mu.Lock()
	s.cached = st
	out := *st
	s.mu.Unlock()
	return &out, nil
}

func (s *settingsService) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

func defaults() *Settings {
	return &Settings{
		LLMProvider:      "anthropic",
		CacheTTL:         24 * time.Hour,
		RateLimitPerHour: 100,
		MaxQueryLength:   2000,
	}
}

func apply(st *Settings, row models.ConfigEntry) {
	val := strings.TrimSpace(row.Value)
	switch row.Key {
	case models.ConfigKeyAPIKey:
		st.APIKey = val
	case models.ConfigKeyLLMProvider:
		if val != "" {
			st.LLMProvider = val
		}
	case models.ConfigKeyCacheTTLHours:
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			st.CacheTTL = time.Duration(n) * time.Hour
		}
	case models.ConfigKeyRateLimitPerHour:
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			st.RateLimitPerHour = n
		}
	case models.ConfigKeyMaxQueryLength:
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			st.MaxQueryLength = n
		}
	case models.ConfigKeyMaintenanceMode:
		st.MaintenanceMode = val == "true" || val == "1"
	}
}
