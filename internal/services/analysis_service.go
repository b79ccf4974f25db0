package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/stratus-tools/bug-advisor/internal/cache"
	"github.com/stratus-tools/bug-advisor/internal/models"
	"github.com/stratus-tools/bug-advisor/internal/providers/llm"
	pgrepo "github.com/stratus-tools/bug-advisor/internal/repositories/postgres"
	"github.com/stratus-tools/bug-advisor/internal/utils"
)

const (
	minQueryLength     = 10
	defaultCallTimeout = 30 * time.Second
	hotCacheKeyPrefix  = "response:"
)

type AnalyzeInput struct {
	Product   string
	Query     string
	ClientIP  string
	UserAgent string
}

type AnalysisResult struct {
	QueryID        int64     `json:"query_id"`
	Solution       string    `json:"solution"`
	Confidence     float64   `json:"confidence"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	Cached         bool      `json:"cached"`
	Timestamp      time.Time `json:"timestamp"`
}

// hotEntry is the Redis-tier payload. The DB tier remains authoritative;
// this one just skips a round trip for hot keys.
type hotEntry struct {
	Solution   string  `json:"solution"`
	Confidence float64 `json:"confidence"`
}

// AnalysisService is the bug-analysis facade: validate, consult the
// cache, call the AI boundary, log the outcome.
type AnalysisService interface {
	Analyze(ctx context.Context, in AnalyzeInput) (*AnalysisResult, error)
	// TestProvider does a lightweight round trip with the configured
	// credentials and reports how long it took.
	TestProvider(ctx context.Context) (time.Duration, error)
}

type analysisService struct {
	hot      cache.Cache
	store    pgrepo.CacheRepo
	stats    StatsService
	settings SettingsService
	factory  llm.Factory
	log      *logrus.Logger

	CallTimeout time.Duration

	mu          sync.Mutex
	provider    llm.Provider
	providerCfg llm.Config

	now func() time.Time
}

func NewAnalysisService(
	hot cache.Cache,
	store pgrepo.CacheRepo,
	stats StatsService,
	settings SettingsService,
	factory llm.Factory,
	log *logrus.Logger,
) AnalysisService {
	return &analysisService{
		hot:         hot,
		store:       store,
		stats:       stats,
		settings:    settings,
		factory:     factory,
		log:         log,
		CallTimeout: defaultCallTimeout,
		now:         time.Now,
	}
}

func (s *analysisService) Analyze(ctx context.Context, in AnalyzeInput) (*AnalysisResult, error) {
	const op = "AnalysisService.Analyze"
	start := s.now()

	st, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}

	product := strings.ToLower(strings.TrimSpace(in.Product))
	query := strings.TrimSpace(in.Query)

	// Invalid requests write no log row.
	if !models.ValidProduct(product) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "product must be one of: allocator, formsplus, premium_tax, municipal", nil)
	}
	// Limits are in characters, not bytes, so multibyte text is not
	// penalized.
	queryLen := utf8.RuneCountInString(query)
	if queryLen < minQueryLength {
		return nil, utils.E(utils.CodeInvalidArgument, op, "query must be at least 10 characters long", nil)
	}
	if queryLen > st.MaxQueryLength {
		return nil, utils.E(utils.CodeInvalidArgument, op, "query exceeds the maximum length", nil)
	}

	hash := utils.QueryHash(product, query)

	if res := s.lookupCache(ctx, hash, product, st); res != nil {
		res.ResponseTimeMs = s.elapsedMs(start)
		res.Timestamp = s.now().UTC()
		res.QueryID = s.logOutcome(ctx, product, query, hash, in, res.ResponseTimeMs, true, true, "")
		return res, nil
	}

	provider, err := s.providerFor(ctx, st)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "AI service is not configured", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.CallTimeout)
	defer cancel()

	solution, err := provider.Analyze(callCtx, SystemPrompt(product), UserMessage(product, query))
	elapsed := s.elapsedMs(start)
	if err != nil {
		// Full detail goes to the log row; the caller gets a generic
		// failure so upstream error text never leaks.
		s.logOutcome(ctx, product, query, hash, in, elapsed, false, false, err.Error())
		return nil, utils.E(utils.CodeUnavailable, op, "analysis failed, please try again", err)
	}

	confidence := scoreConfidence(solution, product)
	s.storeCache(ctx, hash, product, solution, confidence, st.CacheTTL)

	queryID := s.logOutcome(ctx, product, query, hash, in, elapsed, true, false, "")
	return &AnalysisResult{
		QueryID:        queryID,
		Solution:       solution,
		Confidence:     confidence,
		ResponseTimeMs: elapsed,
		Cached:         false,
		Timestamp:      s.now().UTC(),
	}, nil
}

// lookupCache checks the hot tier, then the durable one. Every hit bumps
// the durable hit counter; expired rows behave as misses.
func (s *analysisService) lookupCache(ctx context.Context, hash, product string, st *Settings) *AnalysisResult {
	var entry hotEntry
	if hit, err := s.hot.GetJSON(ctx, hotCacheKeyPrefix+hash, &entry); err == nil && hit {
		if err := s.store.IncrementHit(ctx, hash); err != nil {
			s.log.WithError(err).Warn("cache hit count increment failed")
		}
		return &AnalysisResult{Solution: entry.Solution, Confidence: entry.Confidence, Cached: true}
	}

	row, err := s.store.Lookup(ctx, hash, product, s.now().UTC())
	if err != nil {
		if !errors.Is(err, utils.ErrNotFound) {
			s.log.WithError(err).Warn("cache lookup failed")
		}
		return nil
	}

	if err := s.store.IncrementHit(ctx, hash); err != nil {
		s.log.WithError(err).Warn("cache hit count increment failed")
	}

	// Backfill the hot tier for the remaining lifetime of the row.
	if ttl := row.ExpiresAt.Sub(s.now().UTC()); ttl > 0 {
		payload := hotEntry{Solution: row.ResponseText, Confidence: row.Confidence}
		if err := s.hot.SetJSON(ctx, hotCacheKeyPrefix+hash, payload, ttl); err != nil {
			s.log.WithError(err).Warn("hot cache backfill failed")
		}
	}

	return &AnalysisResult{Solution: row.ResponseText, Confidence: row.Confidence, Cached: true}
}

// storeCache writes both tiers. Cache failures never fail the request;
// the answer already exists.
func (s *analysisService) storeCache(ctx context.Context, hash, product, solution string, confidence float64, ttl time.Duration) {
	now := s.now().UTC()
	row := &models.CachedResponse{
		QueryHash:    hash,
		Product:      product,
		ResponseText: solution,
		Confidence:   confidence,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
		HitCount:     0,
	}
	if err := s.store.Upsert(ctx, row); err != nil {
		s.log.WithError(err).Warn("durable cache store failed")
	}
	if err := s.hot.SetJSON(ctx, hotCacheKeyPrefix+hash, hotEntry{Solution: solution, Confidence: confidence}, ttl); err != nil {
		s.log.WithError(err).Warn("hot cache store failed")
	}
}

// logOutcome appends the query log row (which recomputes the daily
// aggregate). Log storage failure is non-fatal here: the analysis result
// is the purpose of the request, the log is bookkeeping.
func (s *analysisService) logOutcome(ctx context.Context, product, query, hash string, in AnalyzeInput, elapsedMs int64, success, cached bool, errMsg string) int64 {
	ms := elapsedMs
	row := &models.QueryLog{
		Product:        product,
		QueryText:      query,
		QueryLength:    utf8.RuneCountInString(query),
		QueryHash:      hash,
		ResponseTimeMs: &ms,
		Success:        success,
		Cached:         cached,
		ErrorMessage:   errMsg,
		ClientIP:       in.ClientIP,
		UserAgent:      in.UserAgent,
		Timestamp:      s.now().UTC(),
	}
	if err := s.stats.RecordQuery(ctx, row); err != nil {
		s.log.WithError(err).Error("query log write failed")
		return 0
	}
	return row.ID
}

// providerFor reuses the provider until an admin config change alters
// the (provider, key, model) triple, then rebuilds it.
func (s *analysisService) providerFor(ctx context.Context, st *Settings) (llm.Provider, error) {
	cfg := llm.Config{Provider: st.LLMProvider, APIKey: st.APIKey}
	if cfg.Provider == llm.ProviderAnthropic && cfg.APIKey == "" {
		return nil, errors.New("anthropic api key is not configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.provider != nil && s.providerCfg == cfg {
		return s.provider, nil
	}

	p, err := s.factory.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if s.provider != nil {
		_ = s.provider.Close()
	}
	s.provider = p
	s.providerCfg = cfg
	return p, nil
}

func (s *analysisService) TestProvider(ctx context.Context) (time.Duration, error) {
	const op = "AnalysisService.TestProvider"

	st, err := s.settings.Current(ctx)
	if err != nil {
		return 0, err
	}
	provider, err := s.providerFor(ctx, st)
	if err != nil {
		return 0, utils.E(utils.CodeInvalidArgument, op, "AI service is not configured", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.CallTimeout)
	defer cancel()

	start := s.now()
	if err := provider.Ping(callCtx); err != nil {
		return 0, utils.E(utils.CodeUnavailable, op, "connection test failed", err)
	}
	return s.now().Sub(start), nil
}

func (s *analysisService) elapsedMs(start time.Time) int64 {
	ms := s.now().Sub(start).Milliseconds()
	if ms < 0 {
		ms = 0
	}
	return ms
}
