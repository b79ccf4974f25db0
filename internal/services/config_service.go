package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/stratus-tools/bug-advisor/internal/models"
	pgrepo "github.com/stratus-tools/bug-advisor/internal/repositories/postgres"
	"github.com/stratus-tools/bug-advisor/internal/utils"
)

const maskedAPIKey = "sk-ant-***"

// ConfigView is what the admin UI sees: the API key value is replaced by
// a presence marker, never returned in plaintext.
type ConfigView struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
	UpdatedBy   string    `json:"updated_by"`
}

type ConfigService interface {
	GetAll(ctx context.Context) ([]ConfigView, error)
	Update(ctx context.Context, updates map[string]string, updatedBy string) error
}

type configService struct {
	config   pgrepo.ConfigRepo
	settings SettingsService
}

func NewConfigService(config pgrepo.ConfigRepo, settings SettingsService) ConfigService {
	return &configService{config: config, settings: settings}
}

var knownKeys = map[string]func(string) bool{
	models.ConfigKeyAPIKey:      func(string) bool { return true },
	models.ConfigKeyLLMProvider: func(v string) bool { return v == "anthropic" || v == "vertex" },
	models.ConfigKeyCacheTTLHours: func(v string) bool {
		n, err := strconv.Atoi(v)
		return err == nil && n > 0
	},
	models.ConfigKeyRateLimitPerHour: func(v string) bool {
		n, err := strconv.Atoi(v)
		return err == nil && n > 0
	},
	models.ConfigKeyMaxQueryLength: func(v string) bool {
		n, err := strconv.Atoi(v)
		return err == nil && n >= 10
	},
	models.ConfigKeyMaintenanceMode: func(v string) bool {
		return v == "true" || v == "false" || v == "1" || v == "0"
	},
}

func (s *configService) GetAll(ctx context.Context) ([]ConfigView, error) {
	const op = "ConfigService.GetAll"

	rows, err := s.config.GetAll(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load config", err)
	}

	out := make([]ConfigView, 0, len(rows))
	for _, row := range rows {
		view := ConfigView{
			Key:         row.Key,
			Value:       row.Value,
			Description: row.Description,
			UpdatedAt:   row.UpdatedAt,
			UpdatedBy:   row.UpdatedBy,
		}
		if row.Key == models.ConfigKeyAPIKey {
			view.Value = ""
			if row.Value != "" {
				view.Value = maskedAPIKey
			}
		}
		out = append(out, view)
	}
	return out, nil
}

// Update persists admin edits. Unlike the aggregation path, a storage
// failure here IS the request failure: saving config is the whole point
// of the call.
func (s *configService) Update(ctx context.Context, updates map[string]string, updatedBy string) error {
	const op = "ConfigService.Update"

	if len(updates) == 0 {
		return utils.E(utils.CodeInvalidArgument, op, "no configuration values provided", nil)
	}

	for key, val := range updates {
		validate, ok := knownKeys[key]
		if !ok {
			return utils.E(utils.CodeInvalidArgument, op, "unknown config key: "+key, nil)
		}
		if !validate(strings.TrimSpace(val)) {
			return utils.E(utils.CodeInvalidArgument, op, "invalid value for "+key, nil)
		}
	}

	now := time.Now().UTC()
	for key, val := range updates {
		entry := &models.ConfigEntry{
			Key:       key,
			Value:     strings.TrimSpace(val),
			UpdatedAt: now,
			UpdatedBy: updatedBy,
		}
		if err := s.config.Upsert(ctx, entry); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to save configuration", err)
		}
	}

	s.settings.Invalidate()
	return nil
}
