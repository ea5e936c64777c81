package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"velora-api/internal/auth"
	"velora-api/internal/logger"
	"velora-api/internal/metrics"
	"velora-api/internal/utils"
	"velora-api/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	CreateOrder(ctx context.Context, p auth.Principal, input CreateOrderInput) (*Order, error)
	GetOrder(ctx context.Context, p auth.Principal, id uuid.UUID) (*Order, error)
	ListMyOrders(ctx context.Context, p auth.Principal) ([]*Order, error)
	ListAllOrders(ctx context.Context, p auth.Principal) ([]*Order, error)
	SetOrderStatus(ctx context.Context, p auth.Principal, id uuid.UUID, status Status) (*Order, error)
	SetPaymentStatus(ctx context.Context, p auth.Principal, id uuid.UUID, status PaymentStatus) (*Order, error)
}

type service struct {
	repo    Repository
	metrics *metrics.Registry
	strict  bool
	now     func() time.Time
}

// NewService builds the order lifecycle service. With strict unset any known
// status may overwrite any other.
func NewService(repo Repository, reg *metrics.Registry, strict bool) Service {
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	return &service{
		repo:    repo,
		metrics: reg,
		strict:  strict,
		now:     time.Now,
	}
}

func (s *service) CreateOrder(ctx context.Context, p auth.Principal, input CreateOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
		zap.String("user_id", p.UserID.String()),
	)

	if len(input.OrderItems) == 0 {
		log.Warn("no order items provided")
		return nil, ErrNoOrderItems
	}

	input.ShippingAddress = input.ShippingAddress.Normalize()
	if err := validation.Struct(input); err != nil {
		log.Warn("order validation failed", zap.Error(err))
		return nil, err
	}

	o := &Order{
		OrderNumber:     utils.GenerateOrderNumber(s.now()),
		UserID:          p.UserID,
		Items:           Items(input.OrderItems),
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		ItemsPrice:      input.ItemsPrice,
		ShippingPrice:   input.ShippingPrice,
		TaxPrice:        input.TaxPrice,
		TotalPrice:      input.TotalPrice,
		OrderStatus:     StatusProcessing,
		PaymentStatus:   PaymentPending,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		log.Error("failed to create order", zap.Error(err))
		return nil, err
	}

	s.metrics.OrdersCreated.Inc()
	log.Info("order created",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.Float64("total", o.TotalPrice),
	)

	return o, nil
}

func (s *service) GetOrder(ctx context.Context, p auth.Principal, id uuid.UUID) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "GetOrder"),
		zap.String("order_id", id.String()),
	)

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if o.UserID != p.UserID && !p.IsAdmin() {
		log.Warn("unauthorized access attempt", zap.String("user_id", p.UserID.String()))
		return nil, ErrForbidden
	}

	return o, nil
}

func (s *service) ListMyOrders(ctx context.Context, p auth.Principal) ([]*Order, error) {
	return s.repo.ListByUser(ctx, p.UserID)
}

func (s *service) ListAllOrders(ctx context.Context, p auth.Principal) ([]*Order, error) {
	if err := auth.RequireRole(p, auth.RoleAdmin); err != nil {
		return nil, err
	}
	return s.repo.ListAll(ctx)
}

// SetOrderStatus moves an order to status. The first entry into Delivered
// stamps DeliveredAt; later writes leave it untouched.
func (s *service) SetOrderStatus(ctx context.Context, p auth.Principal, id uuid.UUID, status Status) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "SetOrderStatus"),
		zap.String("order_id", id.String()),
		zap.String("status", string(status)),
	)

	if err := auth.RequireRole(p, auth.RoleAdmin); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.strict && !CanTransition(o.OrderStatus, status) {
		log.Warn("illegal order status transition", zap.String("from", string(o.OrderStatus)))
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.OrderStatus, status)
	}

	deliveredAt := o.DeliveredAt
	if status == StatusDelivered && deliveredAt == nil {
		t := s.now().UTC()
		deliveredAt = &t
	}

	if status == o.OrderStatus && deliveredAt == o.DeliveredAt {
		log.Debug("order status unchanged")
		return o, nil
	}

	updatedAt, err := s.repo.UpdateOrderStatus(ctx, id, o.OrderStatus, status, deliveredAt)
	if err != nil {
		if !errors.Is(err, ErrConcurrentUpdate) {
			log.Error("failed to update order status", zap.Error(err))
		}
		return nil, err
	}

	if deliveredAt != o.DeliveredAt {
		log.Info("order marked as delivered")
	}

	o.OrderStatus = status
	o.DeliveredAt = deliveredAt
	o.UpdatedAt = updatedAt

	log.Info("order status updated")
	return o, nil
}

func (s *service) SetPaymentStatus(ctx context.Context, p auth.Principal, id uuid.UUID, status PaymentStatus) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "SetPaymentStatus"),
		zap.String("order_id", id.String()),
		zap.String("status", string(status)),
	)

	if err := auth.RequireRole(p, auth.RoleAdmin); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.strict && !CanTransitionPayment(o.PaymentStatus, status) {
		log.Warn("illegal payment status transition", zap.String("from", string(o.PaymentStatus)))
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.PaymentStatus, status)
	}

	if status == o.PaymentStatus {
		return o, nil
	}

	updatedAt, err := s.repo.UpdatePaymentStatus(ctx, id, o.PaymentStatus, status)
	if err != nil {
		if !errors.Is(err, ErrConcurrentUpdate) {
			log.Error("failed to update payment status", zap.Error(err))
		}
		return nil, err
	}

	o.PaymentStatus = status
	o.UpdatedAt = updatedAt

	log.Info("payment status updated")
	return o, nil
}
