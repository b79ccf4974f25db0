package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/stratus-tools/bug-advisor/internal/models"
	pgrepo "github.com/stratus-tools/bug-advisor/internal/repositories/postgres"
)

func newStatsService(t *testing.T) (StatsService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	log := logrus.New()
	svc := NewStatsService(
		pgrepo.NewQueryLogRepo(db),
		pgrepo.NewStatsRepo(db),
		pgrepo.NewFeedbackRepo(db),
		log,
	)
	return svc, db
}

func ms(v int64) *int64 { return &v }

func logRow(product string, at time.Time, success bool, rt *int64, ip string) *models.QueryLog {
	return &models.QueryLog{
		Product:        product,
		QueryText:      "geocoding batch failure in allocation run",
		QueryLength:    41,
		QueryHash:      "hash-" + product,
		ResponseTimeMs: rt,
		Success:        success,
		ClientIP:       ip,
		Timestamp:      at,
	}
}

func TestRecordQueryUpsertsSingleDailyRow(t *testing.T) {
	svc, db := newStatsService(t)
	ctx := context.Background()
	day := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)

	require.NoError(t, svc.RecordQuery(ctx, logRow("allocator", day.Add(9*time.Hour), true, ms(120), "10.0.0.1")))
	require.NoError(t, svc.RecordQuery(ctx, logRow("allocator", day.Add(10*time.Hour), true, ms(80), "10.0.0.2")))
	require.NoError(t, svc.RecordQuery(ctx, logRow("formsplus", day.Add(11*time.Hour), false, nil, "10.0.0.1")))

	var count int64
	require.NoError(t, db.Model(&models.DailyUsageStat{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var stat models.DailyUsageStat
	require.NoError(t, db.Where("date = ?", day).Take(&stat).Error)

	assert.EqualValues(t, 3, stat.TotalQueries)
	assert.EqualValues(t, 2, stat.SuccessfulQueries)
	assert.EqualValues(t, 1, stat.TotalErrors)
	assert.EqualValues(t, 2, stat.UniqueUsers)
	// nil response time excluded from the mean, included in totals
	assert.InDelta(t, 100.0, stat.AvgResponseTime, 1e-9)
	assert.InDelta(t, 2.0/3.0*100, stat.SuccessRate, 1e-9)

	var products map[string]int64
	require.NoError(t, json.Unmarshal(stat.TopProducts, &products))
	assert.EqualValues(t, 2, products["allocator"])
	assert.EqualValues(t, 1, products["formsplus"])
}

func TestRecomputeDayIsIdempotent(t *testing.T) {
	svc, db := newStatsService(t)
	ctx := context.Background()
	day := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)

	require.NoError(t, svc.RecordQuery(ctx, logRow("municipal", day.Add(time.Hour), true, ms(200), "10.0.0.9")))

	var first models.DailyUsageStat
	require.NoError(t, db.Where("date = ?", day).Take(&first).Error)

	// Full rescan yields the same row.
	require.NoError(t, svc.RecomputeDay(ctx, day.Add(13*time.Hour)))

	var second models.DailyUsageStat
	require.NoError(t, db.Where("date = ?", day).Take(&second).Error)

	assert.Equal(t, first.TotalQueries, second.TotalQueries)
	assert.Equal(t, first.SuccessfulQueries, second.SuccessfulQueries)
	assert.InDelta(t, first.AvgResponseTime, second.AvgResponseTime, 1e-9)
	assert.InDelta(t, first.SuccessRate, second.SuccessRate, 1e-9)

	var count int64
	require.NoError(t, db.Model(&models.DailyUsageStat{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRecomputeEmptyDayGuardsDivideByZero(t *testing.T) {
	svc, db := newStatsService(t)
	ctx := context.Background()
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	require.NoError(t, svc.RecomputeDay(ctx, day))

	var stat models.DailyUsageStat
	require.NoError(t, db.Where("date = ?", day).Take(&stat).Error)
	assert.EqualValues(t, 0, stat.TotalQueries)
	assert.Zero(t, stat.SuccessRate)
	assert.Zero(t, stat.AvgResponseTime)
}

func TestQueriesSplitAcrossDates(t *testing.T) {
	svc, db := newStatsService(t)
	ctx := context.Background()
	day1 := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	require.NoError(t, svc.RecordQuery(ctx, logRow("allocator", day1.Add(23*time.Hour+59*time.Minute), true, ms(50), "a")))
	require.NoError(t, svc.RecordQuery(ctx, logRow("allocator", day2.Add(time.Minute), true, ms(70), "a")))

	var stats []models.DailyUsageStat
	require.NoError(t, db.Order("date ASC").Find(&stats).Error)
	require.Len(t, stats, 2)
	assert.EqualValues(t, 1, stats[0].TotalQueries)
	assert.EqualValues(t, 1, stats[1].TotalQueries)
}

func TestAnalytics(t *testing.T) {
	svc, db := newStatsService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, svc.RecordQuery(ctx, logRow("allocator", now.Add(-2*time.Hour), true, ms(100), "10.0.0.1")))
	failed := logRow("premium_tax", now.Add(-time.Hour), false, ms(300), "10.0.0.2")
	failed.ErrorMessage = "upstream timeout"
	require.NoError(t, svc.RecordQuery(ctx, failed))

	helpful := true
	require.NoError(t, db.Create(&models.Feedback{Helpful: &helpful, Timestamp: now}).Error)

	got, err := svc.Analytics(ctx, 30)
	require.NoError(t, err)

	assert.EqualValues(t, 2, got.TotalQueries)
	assert.InDelta(t, 50.0, got.SuccessRate, 1e-9)
	assert.EqualValues(t, 2, got.UniqueUsers)
	assert.EqualValues(t, 1, got.PopularProducts["allocator"])
	assert.EqualValues(t, 1, got.PopularProducts["premium_tax"])
	require.Len(t, got.RecentErrors, 1)
	assert.Equal(t, "upstream timeout", got.RecentErrors[0].ErrorMessage)
	assert.EqualValues(t, 1, got.Feedback.Total)
	assert.InDelta(t, 100.0, got.Feedback.HelpfulPercentage, 1e-9)
	assert.NotEmpty(t, got.DailyStats)
}
