// Package admin computes the dashboard figures for the admin console.
package admin

import (
	"context"
	"time"

	"velora-api/internal/auth"
	"velora-api/internal/logger"
	"velora-api/internal/order"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const recentOrdersLimit = 5

type UserCounter interface {
	CountByRole(ctx context.Context, role auth.Role) (int64, error)
}

type ProductCounter interface {
	Count(ctx context.Context) (int64, error)
}

type OrderStats interface {
	Count(ctx context.Context) (int64, error)
	TotalPrices(ctx context.Context) ([]decimal.Decimal, error)
	ListRecent(ctx context.Context, limit int) ([]*order.Order, error)
}

type Stats struct {
	TotalUsers    int64
	TotalOrders   int64
	TotalProducts int64
	TotalRevenue  decimal.Decimal
	RecentOrders  []*order.Order
}

type Service interface {
	GetDashboardStats(ctx context.Context) (*Stats, error)
}

type service struct {
	users    UserCounter
	products ProductCounter
	orders   OrderStats
}

func NewService(users UserCounter, products ProductCounter, orders OrderStats) Service {
	return &service{users: users, products: products, orders: orders}
}

// GetDashboardStats recomputes every figure on each call. Revenue is the
// exact sum of all order totals.
func (s *service) GetDashboardStats(ctx context.Context) (*Stats, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "GetDashboardStats"),
	)

	start := time.Now()

	totalUsers, err := s.users.CountByRole(ctx, auth.RoleCustomer)
	if err != nil {
		log.Error("failed to count customers", zap.Error(err))
		return nil, err
	}

	totalOrders, err := s.orders.Count(ctx)
	if err != nil {
		log.Error("failed to count orders", zap.Error(err))
		return nil, err
	}

	totalProducts, err := s.products.Count(ctx)
	if err != nil {
		log.Error("failed to count products", zap.Error(err))
		return nil, err
	}

	totals, err := s.orders.TotalPrices(ctx)
	if err != nil {
		log.Error("failed to read order totals", zap.Error(err))
		return nil, err
	}

	revenue := decimal.Zero
	for _, t := range totals {
		revenue = revenue.Add(t)
	}

	recent, err := s.orders.ListRecent(ctx, recentOrdersLimit)
	if err != nil {
		log.Error("failed to load recent orders", zap.Error(err))
		return nil, err
	}

	log.Info("stats retrieved",
		zap.Int64("users", totalUsers),
		zap.Int64("orders", totalOrders),
		zap.String("revenue", revenue.StringFixed(2)),
		zap.Duration("duration", time.Since(start)),
	)

	return &Stats{
		TotalUsers:    totalUsers,
		TotalOrders:   totalOrders,
		TotalProducts: totalProducts,
		TotalRevenue:  revenue,
		RecentOrders:  recent,
	}, nil
}
