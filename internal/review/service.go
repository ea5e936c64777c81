package review

import (
	"context"
	"strings"

	"velora-api/internal/logger"
	"velora-api/internal/validation"

	"go.uber.org/zap"
)

type Service interface {
	CreateReview(ctx context.Context, input CreateInput) (*Review, error)
	ListRecentReviews(ctx context.Context, limit int) ([]*Review, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateReview(ctx context.Context, input CreateInput) (*Review, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateReview"),
	)

	input.Comment = strings.TrimSpace(input.Comment)
	if err := validation.Struct(input); err != nil {
		log.Warn("review validation failed", zap.Error(err))
		return nil, err
	}

	rv := &Review{
		UserID:  input.User,
		Rating:  *input.Rating,
		Comment: input.Comment,
	}
	if err := s.repo.Create(ctx, rv); err != nil {
		return nil, err
	}

	log.Info("review created", zap.String("review_id", rv.ID.String()), zap.Int("rating", rv.Rating))
	return rv, nil
}

// ListRecentReviews returns the newest reviews first. A non-positive limit
// means DefaultRecentLimit; larger ones are capped at MaxRecentLimit.
func (s *service) ListRecentReviews(ctx context.Context, limit int) ([]*Review, error) {
	switch {
	case limit <= 0:
		limit = DefaultRecentLimit
	case limit > MaxRecentLimit:
		limit = MaxRecentLimit
	}
	return s.repo.ListRecent(ctx, limit)
}
