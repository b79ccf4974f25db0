package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/stratus-tools/bug-advisor/internal/api/handlers"
)

type Deps struct {
	Analyze  *handlers.AnalyzeHandler
	Feedback *handlers.FeedbackHandler
	Products *handlers.ProductsHandler
	Health   *handlers.HealthHandler
	Admin    *handlers.AdminHandler

	// Middleware built in main so routes stay declarative.
	RateLimit   gin.HandlerFunc
	Maintenance gin.HandlerFunc
	SessionAuth gin.HandlerFunc
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	api := r.Group("/api")

	api.GET("/health", d.Health.Health)
	api.GET("/products", d.Products.List)

	public := api.Group("/")
	public.Use(d.Maintenance)
	public.POST("/analyze", d.RateLimit, d.Analyze.Analyze)
	public.POST("/feedback", d.Feedback.Submit)

	admin := api.Group("/admin")
	admin.POST("/login", d.Admin.Login)
	// Logout stays outside the gate so it is a no-op when already
	// logged out instead of a 401.
	admin.POST("/logout", d.Admin.Logout)

	gated := admin.Group("/")
	gated.Use(d.SessionAuth)
	gated.GET("/config", d.Admin.GetConfig)
	gated.POST("/config", d.Admin.UpdateConfig)
	gated.GET("/status", d.Health.Status)
	gated.GET("/stats", d.Admin.Stats)
	gated.POST("/test-claude", d.Admin.TestProvider)
}
