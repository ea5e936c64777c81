package product

import (
	"context"
	"time"

	"velora-api/internal/logger"
	"velora-api/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	ListProducts(ctx context.Context, filter Filter, sort Sort) ([]*Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	CreateProduct(ctx context.Context, in Input) (*Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, in Input) (*Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo  Repository
	cache Cache
}

func NewService(repo Repository, cache Cache) Service {
	if cache == nil {
		cache = NewNoopCache()
	}
	return &service{repo: repo, cache: cache}
}

func (s *service) ListProducts(ctx context.Context, filter Filter, sort Sort) ([]*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ListProducts"),
	)

	start := time.Now()

	log.Debug("list products requested",
		zap.String("category", filter.Category),
		zap.String("gender", filter.Gender),
		zap.String("search", filter.Search),
		zap.Bool("featured", filter.Featured),
		zap.Bool("new_arrivals", filter.NewArrivals),
		zap.String("sort", string(sort)),
	)

	products, err := s.repo.List(ctx, filter, sort)
	if err != nil {
		log.Error("failed to fetch product list",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, err
	}

	log.Info("list products success",
		zap.Int("count", len(products)),
		zap.Duration("duration", time.Since(start)),
	)

	return products, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	if p, ok := s.cache.Get(ctx, id); ok {
		return p, nil
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, p)
	return p, nil
}

func (s *service) CreateProduct(ctx context.Context, in Input) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateProduct"),
	)

	p, err := FromInput(in)
	if err != nil {
		log.Warn("product input incomplete", zap.Error(err))
		return nil, err
	}
	if err := validation.Struct(p); err != nil {
		log.Warn("product validation failed", zap.Error(err))
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		log.Error("failed to create product", zap.Error(err))
		return nil, err
	}

	log.Info("product created", zap.String("product_id", p.ID.String()), zap.String("name", p.Name))
	return p, nil
}

// UpdateProduct merges in onto the stored product and re-validates the result.
func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, in Input) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateProduct"),
		zap.String("product_id", id.String()),
	)

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ApplyInput(p, in)
	if err := validation.Struct(p); err != nil {
		log.Warn("product validation failed", zap.Error(err))
		return nil, err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		log.Error("failed to update product", zap.Error(err))
		return nil, err
	}
	s.cache.Delete(ctx, id)

	log.Info("product updated", zap.String("name", p.Name))
	return p, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "DeleteProduct"),
		zap.String("product_id", id.String()),
	)

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Delete(ctx, id)

	log.Info("product deleted")
	return nil
}
