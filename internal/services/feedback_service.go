package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/stratus-tools/bug-advisor/internal/models"
	pgrepo "github.com/stratus-tools/bug-advisor/internal/repositories/postgres"
	"github.com/stratus-tools/bug-advisor/internal/utils"
)

type FeedbackService interface {
	// Submit records one immutable feedback row. When queryID is set it
	// must reference an existing log row at submission time; the
	// reference is weak afterwards.
	Submit(ctx context.Context, queryID *int64, helpful *bool, text, clientIP string) (*models.Feedback, error)
}

type feedbackService struct {
	feedback pgrepo.FeedbackRepo
	logs     pgrepo.QueryLogRepo
}

func NewFeedbackService(feedback pgrepo.FeedbackRepo, logs pgrepo.QueryLogRepo) FeedbackService {
	return &feedbackService{feedback: feedback, logs: logs}
}

func (s *feedbackService) Submit(ctx context.Context, queryID *int64, helpful *bool, text, clientIP string) (*models.Feedback, error) {
	const op = "FeedbackService.Submit"

	if helpful == nil && strings.TrimSpace(text) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "feedback must include a rating or text", nil)
	}

	var queryHash string
	if queryID != nil {
		logRow, err := s.logs.GetByID(ctx, *queryID)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return nil, utils.E(utils.CodeInvalidArgument, op, "query not found", nil)
			}
			return nil, utils.E(utils.CodeInternal, op, "failed to resolve query", err)
		}
		queryHash = logRow.QueryHash
	}

	row := &models.Feedback{
		QueryID:      queryID,
		QueryHash:    queryHash,
		Helpful:      helpful,
		FeedbackText: strings.TrimSpace(text),
		ClientIP:     clientIP,
		Timestamp:    time.Now().UTC(),
	}
	if err := s.feedback.Insert(ctx, row); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to record feedback", err)
	}
	return row, nil
}
