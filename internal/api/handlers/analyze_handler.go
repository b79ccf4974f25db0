package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stratus-tools/bug-advisor/internal/services"
	"github.com/stratus-tools/bug-advisor/internal/utils"
)

type AnalyzeHandler struct {
	svc services.AnalysisService
}

func NewAnalyzeHandler(svc services.AnalysisService) *AnalyzeHandler {
	return &AnalyzeHandler{svc: svc}
}

type AnalyzeRequest struct {
	Query   string `json:"query" binding:"required"`
	Product string `json:"product" binding:"required"`
}

type AnalyzeResponse struct {
	Solution       string  `json:"solution"`
	Confidence     float64 `json:"confidence"`
	ResponseTimeMs int64   `json:"response_time_ms"`
	QueryID        int64   `json:"query_id,omitempty"`
	Cached         bool    `json:"cached"`
	Timestamp      string  `json:"timestamp"`
	Status         string  `json:"status"`
}

func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AnalyzeHandler.Analyze", "query and product are required", err))
		return
	}

	res, err := h.svc.Analyze(c.Request.Context(), services.AnalyzeInput{
		Product:   req.Product,
		Query:     req.Query,
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, AnalyzeResponse{
		Solution:       res.Solution,
		Confidence:     res.Confidence,
		ResponseTimeMs: res.ResponseTimeMs,
		QueryID:        res.QueryID,
		Cached:         res.Cached,
		Timestamp:      res.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		Status:         "success",
	})
}
