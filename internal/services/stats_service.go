package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/stratus-tools/bug-advisor/internal/models"
	pgrepo "github.com/stratus-tools/bug-advisor/internal/repositories/postgres"
	"github.com/stratus-tools/bug-advisor/internal/utils"
)

// RecentError is the trimmed view of a failed query surfaced to the
// admin dashboard. The raw upstream error stays internal to the log row.
type RecentError struct {
	Timestamp    time.Time `json:"timestamp"`
	Product      string    `json:"product"`
	QueryText    string    `json:"query_text"`
	ErrorMessage string    `json:"error_message"`
}

type Analytics struct {
	TotalQueries    int64                   `json:"total_queries"`
	AvgResponseTime float64                 `json:"avg_response_time"`
	SuccessRate     float64                 `json:"success_rate"`
	UniqueUsers     int64                   `json:"unique_users"`
	PopularProducts map[string]int64        `json:"popular_products"`
	DailyStats      []models.DailyUsageStat `json:"daily_stats"`
	RecentErrors    []RecentError           `json:"recent_errors"`
	Feedback        pgrepo.FeedbackSummary  `json:"feedback"`
}

// StatsService owns the query log and the derived daily aggregate.
// Dates are truncated to UTC days everywhere.
type StatsService interface {
	// RecordQuery appends the log row, then recomputes that day's
	// aggregate. The log write is authoritative: a recompute failure is
	// logged and swallowed, never propagated to the caller.
	RecordQuery(ctx context.Context, row *models.QueryLog) error
	// RecomputeDay rescans all log rows for the given UTC date and
	// upserts the single stat row. Idempotent; doubles as the rebuild
	// path.
	RecomputeDay(ctx context.Context, day time.Time) error
	Analytics(ctx context.Context, days int) (*Analytics, error)
}

type statsService struct {
	logs     pgrepo.QueryLogRepo
	stats    pgrepo.StatsRepo
	feedback pgrepo.FeedbackRepo
	log      *logrus.Logger
}

func NewStatsService(logs pgrepo.QueryLogRepo, stats pgrepo.StatsRepo, feedback pgrepo.FeedbackRepo, log *logrus.Logger) StatsService {
	return &statsService{logs: logs, stats: stats, feedback: feedback, log: log}
}

// DayOf truncates t to its UTC calendar date.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *statsService) RecordQuery(ctx context.Context, row *models.QueryLog) error {
	const op = "StatsService.RecordQuery"

	if row.Timestamp.IsZero() {
		row.Timestamp = time.Now().UTC()
	}

	if err := s.logs.Insert(ctx, row); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to write query log", err)
	}

	if err := s.RecomputeDay(ctx, DayOf(row.Timestamp)); err != nil {
		// Stats are a derived cache; the log row already committed.
		s.log.WithError(err).WithField("date", DayOf(row.Timestamp).Format("2006-01-02")).
			Warn("daily stat recompute failed")
	}
	return nil
}

func (s *statsService) RecomputeDay(ctx context.Context, day time.Time) error {
	const op = "StatsService.RecomputeDay"

	day = DayOf(day)
	rows, err := s.logs.ListBetween(ctx, day, day.Add(24*time.Hour))
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to scan query log", err)
	}

	stat := foldDay(day, rows)
	if err := s.stats.Upsert(ctx, stat); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to upsert daily stat", err)
	}
	return nil
}

func foldDay(day time.Time, rows []models.QueryLog) *models.DailyUsageStat {
	stat := &models.DailyUsageStat{
		Date:      day,
		UpdatedAt: time.Now().UTC(),
	}

	var (
		timed    int64
		totalMs  int64
		users    = map[string]struct{}{}
		products = map[string]int64{}
	)

	for _, row := range rows {
		stat.TotalQueries++
		if row.Success {
			stat.SuccessfulQueries++
		} else {
			stat.TotalErrors++
		}
		// Rows without a recorded response time still count toward
		// totals but are excluded from the mean.
		if row.ResponseTimeMs != nil {
			timed++
			totalMs += *row.ResponseTimeMs
		}
		if row.ClientIP != "" {
			users[row.ClientIP] = struct{}{}
		}
		products[row.Product]++
	}

	if timed > 0 {
		stat.AvgResponseTime = float64(totalMs) / float64(timed)
	}
	if stat.TotalQueries > 0 {
		stat.SuccessRate = float64(stat.SuccessfulQueries) / float64(stat.TotalQueries) * 100
	}
	stat.UniqueUsers = int64(len(users))

	if b, err := json.Marshal(products); err == nil {
		stat.TopProducts = datatypes.JSON(b)
	}
	return stat
}

func (s *statsService) Analytics(ctx context.Context, days int) (*Analytics, error) {
	const op = "StatsService.Analytics"

	if days <= 0 {
		days = 30
	}
	now := time.Now().UTC()
	since := now.AddDate(0, 0, -days)

	overview, err := s.logs.Overview(ctx, since)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to compute overview", err)
	}

	counts, err := s.logs.CountByProduct(ctx, since)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to compute product counts", err)
	}
	popular := make(map[string]int64, len(counts))
	for _, c := range counts {
		popular[c.Product] = c.Count
	}

	daily, err := s.stats.ListRecent(ctx, days)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list daily stats", err)
	}

	errRows, err := s.logs.RecentErrors(ctx, now.AddDate(0, 0, -7), 10)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list recent errors", err)
	}
	recent := make([]RecentError, 0, len(errRows))
	for _, row := range errRows {
		recent = append(recent, RecentError{
			Timestamp:    row.Timestamp,
			Product:      row.Product,
			QueryText:    row.QueryText,
			ErrorMessage: row.ErrorMessage,
		})
	}

	fb, err := s.feedback.Summary(ctx, since)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to summarize feedback", err)
	}

	return &Analytics{
		TotalQueries:    overview.TotalQueries,
		AvgResponseTime: overview.AvgResponseTime,
		SuccessRate:     overview.SuccessRate,
		UniqueUsers:     overview.UniqueUsers,
		PopularProducts: popular,
		DailyStats:      daily,
		RecentErrors:    recent,
		Feedback:        *fb,
	}, nil
}
