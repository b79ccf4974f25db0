package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/stratus-tools/bug-advisor/internal/cache"
	"github.com/stratus-tools/bug-advisor/internal/models"
	"github.com/stratus-tools/bug-advisor/internal/providers/llm"
	pgrepo "github.com/stratus-tools/bug-advisor/internal/repositories/postgres"
	"github.com/stratus-tools/bug-advisor/internal/utils"
)

type fakeProvider struct {
	calls    int
	response string
	err      error
}

func (p *fakeProvider) Analyze(ctx context.Context, system, prompt string) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.response, nil
}

func (p *fakeProvider) Ping(ctx context.Context) error {
	p.calls++
	return p.err
}

func (p *fakeProvider) Close() error { return nil }

type fakeFactory struct {
	provider *fakeProvider
}

func (f fakeFactory) New(ctx context.Context, cfg llm.Config) (llm.Provider, error) {
	return f.provider, nil
}

func seedAPIKey(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&models.ConfigEntry{
		Key:       models.ConfigKeyAPIKey,
		Value:     "sk-ant-test",
		UpdatedAt: time.Now().UTC(),
		UpdatedBy: "test",
	}).Error)
}

func newAnalysisService(t *testing.T, provider *fakeProvider) (AnalysisService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	seedAPIKey(t, db)

	log := logrus.New()
	settings := NewSettingsService(pgrepo.NewConfigRepo(db))
	stats := NewStatsService(pgrepo.NewQueryLogRepo(db), pgrepo.NewStatsRepo(db), pgrepo.NewFeedbackRepo(db), log)

	svc := NewAnalysisService(
		cache.NewNoopCache(),
		pgrepo.NewCacheRepo(db),
		stats,
		settings,
		fakeFactory{provider: provider},
		log,
	)
	return svc, db
}

const solutionText = `## Root Cause Analysis
Geocoding service returned match code 3 for the batch.

## Immediate Solutions
Re-run with address standardization enabled in allocation.config.

## Files/Areas to Check
geocoding.xml, batch_processor.py

## Testing Steps
Replay the failing batch against the staging geocoder.

## Related Historical Issues
TTS-2298`

func TestAnalyzeCacheMissThenHit(t *testing.T) {
	provider := &fakeProvider{response: solutionText}
	svc, db := newAnalysisService(t, provider)
	ctx := context.Background()

	in := AnalyzeInput{
		Product:   "allocator",
		Query:     "TTS-2298 match code 3 geocoding error",
		ClientIP:  "10.0.0.1",
		UserAgent: "test-agent",
	}

	// Miss: exactly one provider call, one cache row, one success log.
	first, err := svc.Analyze(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)
	assert.False(t, first.Cached)
	assert.Equal(t, solutionText, first.Solution)
	assert.Greater(t, first.Confidence, 0.5)
	assert.NotZero(t, first.QueryID)

	var cacheCount int64
	require.NoError(t, db.Model(&models.CachedResponse{}).Count(&cacheCount).Error)
	assert.EqualValues(t, 1, cacheCount)

	var logs []models.QueryLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.True(t, logs[0].Success)
	assert.False(t, logs[0].Cached)

	// Identical normalized query: zero further provider calls.
	in.Query = "  tts-2298 MATCH code 3 geocoding error "
	second, err := svc.Analyze(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)
	assert.True(t, second.Cached)
	assert.Equal(t, solutionText, second.Solution)

	var row models.CachedResponse
	require.NoError(t, db.Take(&row).Error)
	assert.EqualValues(t, 1, row.HitCount)

	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 2)
	assert.True(t, logs[1].Cached)
}

func TestAnalyzeInvalidProductWritesNoLog(t *testing.T) {
	provider := &fakeProvider{response: solutionText}
	svc, db := newAnalysisService(t, provider)

	_, err := svc.Analyze(context.Background(), AnalyzeInput{
		Product: "not-a-real-product",
		Query:   "something long enough to pass length checks",
	})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
	assert.Zero(t, provider.calls)

	var count int64
	require.NoError(t, db.Model(&models.QueryLog{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAnalyzeQueryTooShort(t *testing.T) {
	svc, _ := newAnalysisService(t, &fakeProvider{response: solutionText})

	_, err := svc.Analyze(context.Background(), AnalyzeInput{Product: "allocator", Query: "short"})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestAnalyzeUpstreamFailureLogsDetailReturnsGeneric(t *testing.T) {
	provider := &fakeProvider{err: errors.New("anthropic: 529 overloaded")}
	svc, db := newAnalysisService(t, provider)

	_, err := svc.Analyze(context.Background(), AnalyzeInput{
		Product: "municipal",
		Query:   "jurisdiction mapping import keeps failing",
	})
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeUnavailable))

	// Generic message to the caller, full detail in the log row.
	var ae *utils.AppError
	require.ErrorAs(t, err, &ae)
	assert.NotContains(t, ae.Message, "529")

	var row models.QueryLog
	require.NoError(t, db.Take(&row).Error)
	assert.False(t, row.Success)
	assert.Contains(t, row.ErrorMessage, "529 overloaded")

	var cacheCount int64
	require.NoError(t, db.Model(&models.CachedResponse{}).Count(&cacheCount).Error)
	assert.Zero(t, cacheCount)
}

func TestAnalyzeLengthLimitsCountCharactersNotBytes(t *testing.T) {
	provider := &fakeProvider{response: solutionText}
	svc, db := newAnalysisService(t, provider)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.ConfigEntry{
		Key:       models.ConfigKeyMaxQueryLength,
		Value:     "20",
		UpdatedAt: time.Now().UTC(),
		UpdatedBy: "test",
	}).Error)

	// 15 characters but 30 bytes: inside the limit.
	_, err := svc.Analyze(ctx, AnalyzeInput{Product: "allocator", Query: strings.Repeat("é", 15)})
	require.NoError(t, err)

	var row models.QueryLog
	require.NoError(t, db.Take(&row).Error)
	assert.Equal(t, 15, row.QueryLength)

	_, err = svc.Analyze(ctx, AnalyzeInput{Product: "allocator", Query: strings.Repeat("é", 21)})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestAnalyzeExpiredCacheRowIsMiss(t *testing.T) {
	provider := &fakeProvider{response: solutionText}
	svc, db := newAnalysisService(t, provider)
	ctx := context.Background()

	in := AnalyzeInput{Product: "formsplus", Query: "form tree renders duplicate nodes"}

	_, err := svc.Analyze(ctx, in)
	require.NoError(t, err)
	require.Equal(t, 1, provider.calls)

	// Force the row past its expiry; it stays physically present.
	require.NoError(t, db.Model(&models.CachedResponse{}).
		Where("1 = 1").
		Update("expires_at", time.Now().UTC().Add(-time.Minute)).Error)

	res, err := svc.Analyze(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
	assert.False(t, res.Cached)

	// The store after the miss refreshed the same row, not a second one.
	var count int64
	require.NoError(t, db.Model(&models.CachedResponse{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var row models.CachedResponse
	require.NoError(t, db.Take(&row).Error)
	assert.True(t, row.ExpiresAt.After(time.Now().UTC()))
}
