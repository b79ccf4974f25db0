package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/stratus-tools/bug-advisor/internal/services"
)

const version = "1.0.0"

type HealthHandler struct {
	db       *gorm.DB
	rdb      *redis.Client // may be nil
	settings services.SettingsService
}

func NewHealthHandler(db *gorm.DB, rdb *redis.Client, settings services.SettingsService) *HealthHandler {
	return &HealthHandler{db: db, rdb: rdb, settings: settings}
}

func (h *HealthHandler) dbAvailable(c *gin.Context) bool {
	sqlDB, err := h.db.DB()
	if err != nil {
		return false
	}
	return sqlDB.PingContext(c.Request.Context()) == nil
}

func (h *HealthHandler) redisAvailable(c *gin.Context) bool {
	if h.rdb == nil {
		return false
	}
	return h.rdb.Ping(c.Request.Context()).Err() == nil
}

func (h *HealthHandler) llmConfigured(c *gin.Context) bool {
	st, err := h.settings.Current(c.Request.Context())
	if err != nil {
		return false
	}
	// Vertex authenticates via application default credentials, so a
	// missing API key only matters for anthropic.
	return st.LLMProvider == "vertex" || st.APIKey != ""
}

// Health is the public liveness endpoint.
func (h *HealthHandler) Health(c *gin.Context) {
	dbOK := h.dbAvailable(c)
	llmOK := h.llmConfigured(c)

	status := "healthy"
	if !dbOK || !llmOK {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":             status,
		"timestamp":          time.Now().UTC().Format(time.RFC3339),
		"database_available": dbOK,
		"llm_available":      llmOK,
		"redis_available":    h.redisAvailable(c),
		"version":            version,
	})
}

// Status is the admin view: per-component traffic lights. Redis is
// optional, so its absence is a warning rather than an error.
func (h *HealthHandler) Status(c *gin.Context) {
	componentState := func(ok bool) string {
		if ok {
			return "healthy"
		}
		return "error"
	}

	redisState := "warning"
	if h.rdb != nil {
		redisState = componentState(h.redisAvailable(c))
	}

	c.JSON(http.StatusOK, gin.H{
		"database": componentState(h.dbAvailable(c)),
		"llm_api":  componentState(h.llmConfigured(c)),
		"redis":    redisState,
	})
}
