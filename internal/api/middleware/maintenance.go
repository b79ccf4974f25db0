package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stratus-tools/bug-advisor/internal/services"
	"github.com/stratus-tools/bug-advisor/internal/utils"
)

// Maintenance rejects public traffic while the maintenance_mode config
// toggle is on. Admin routes stay reachable so the toggle can be
// switched back off.
func Maintenance(settings services.SettingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := settings.Current(c.Request.Context())
		if err == nil && st.MaintenanceMode {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, apiError{
				Code:    utils.CodeUnavailable,
				Message: "service is under maintenance",
			})
			return
		}
		c.Next()
	}
}
