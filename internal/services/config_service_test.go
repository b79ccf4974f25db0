package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratus-tools/bug-advisor/internal/models"
	pgrepo "github.com/stratus-tools/bug-advisor/internal/repositories/postgres"
	"github.com/stratus-tools/bug-advisor/internal/utils"
)

func newConfigService(t *testing.T) (ConfigService, SettingsService) {
	t.Helper()
	db := newTestDB(t)
	repo := pgrepo.NewConfigRepo(db)
	settings := NewSettingsService(repo)
	return NewConfigService(repo, settings), settings
}

func TestGetAllMasksAPIKey(t *testing.T) {
	svc, _ := newConfigService(t)
	ctx := context.Background()

	require.NoError(t, svc.Update(ctx, map[string]string{
		models.ConfigKeyAPIKey:      "sk-ant-secret-value",
		models.ConfigKeyLLMProvider: "anthropic",
	}, "admin"))

	views, err := svc.GetAll(ctx)
	require.NoError(t, err)

	for _, v := range views {
		if v.Key == models.ConfigKeyAPIKey {
			assert.Equal(t, "sk-ant-***", v.Value)
		}
		assert.NotContains(t, v.Value, "secret-value")
	}
}

func TestUpdateRejectsUnknownKey(t *testing.T) {
	svc, _ := newConfigService(t)

	err := svc.Update(context.Background(), map[string]string{"not_a_key": "x"}, "admin")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestUpdateRejectsInvalidValue(t *testing.T) {
	svc, _ := newConfigService(t)
	ctx := context.Background()

	cases := map[string]string{
		models.ConfigKeyLLMProvider:     "openai",
		models.ConfigKeyCacheTTLHours:   "-1",
		models.ConfigKeyMaxQueryLength:  "5",
		models.ConfigKeyMaintenanceMode: "maybe",
	}
	for key, val := range cases {
		err := svc.Update(ctx, map[string]string{key: val}, "admin")
		assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument), "key %s value %q", key, val)
	}
}

func TestUpdateInvalidatesSettingsSnapshot(t *testing.T) {
	svc, settings := newConfigService(t)
	ctx := context.Background()

	before, err := settings.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, 24*time.Hour, before.CacheTTL)

	require.NoError(t, svc.Update(ctx, map[string]string{
		models.ConfigKeyCacheTTLHours: "48",
	}, "admin"))

	after, err := settings.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, after.CacheTTL)
}
