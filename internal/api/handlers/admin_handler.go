package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stratus-tools/bug-advisor/internal/api/middleware"
	"github.com/stratus-tools/bug-advisor/internal/services"
	"github.com/stratus-tools/bug-advisor/internal/utils"
)

type AdminHandler struct {
	auth     services.AuthService
	config   services.ConfigService
	stats    services.StatsService
	analysis services.AnalysisService
}

func NewAdminHandler(auth services.AuthService, config services.ConfigService, stats services.StatsService, analysis services.AnalysisService) *AdminHandler {
	return &AdminHandler{auth: auth, config: config, stats: stats, analysis: analysis}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	Username  string `json:"username"`
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AdminHandler.Login", "username and password are required", err))
		return
	}

	sess, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	c.SetCookie(middleware.SessionCookieName, sess.Token, maxAge, "/", "", false, true)

	c.JSON(http.StatusOK, LoginResponse{
		Token:     sess.Token,
		ExpiresIn: int64(maxAge),
		Username:  sess.Username,
	})
}

// Logout always succeeds: clearing an already-dead session is a no-op.
func (h *AdminHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie(middleware.SessionCookieName)
	if v, ok := c.Get("session_token"); ok {
		if s, ok := v.(string); ok && s != "" {
			token = s
		}
	}

	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		writeError(c, err)
		return
	}

	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *AdminHandler) GetConfig(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	views, err := h.config.GetAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"config": views})
}

func (h *AdminHandler) UpdateConfig(c *gin.Context) {
	username, ok := requireAdmin(c)
	if !ok {
		return
	}

	var updates map[string]string
	if err := c.ShouldBindJSON(&updates); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AdminHandler.UpdateConfig", "configuration data required", err))
		return
	}

	if err := h.config.Update(c.Request.Context(), updates, username); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "configuration updated",
	})
}

func (h *AdminHandler) Stats(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	analytics, err := h.stats.Analytics(c.Request.Context(), 30)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

// TestProvider validates the stored key with a lightweight round trip.
func (h *AdminHandler) TestProvider(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	elapsed, err := h.analysis.TestProvider(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":           "success",
		"message":          "connection successful",
		"response_time_ms": elapsed.Milliseconds(),
	})
}
