package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stratus-tools/bug-advisor/internal/services"
	"github.com/stratus-tools/bug-advisor/internal/utils"
)

type FeedbackHandler struct {
	svc services.FeedbackService
}

func NewFeedbackHandler(svc services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{svc: svc}
}

type FeedbackRequest struct {
	QueryID  *int64 `json:"query_id,omitempty"`
	Helpful  *bool  `json:"helpful"`
	Feedback string `json:"feedback,omitempty"`
}

func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "FeedbackHandler.Submit", "invalid request body", err))
		return
	}

	if _, err := h.svc.Submit(c.Request.Context(), req.QueryID, req.Helpful, req.Feedback, c.ClientIP()); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "feedback recorded",
	})
}
