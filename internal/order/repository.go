package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"velora-api/internal/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error)
	ListAll(ctx context.Context) ([]*Order, error)
	ListRecent(ctx context.Context, limit int) ([]*Order, error)
	// UpdateOrderStatus writes next only if the stored status is still prev.
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, prev, next Status, deliveredAt *time.Time) (time.Time, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, prev, next PaymentStatus) (time.Time, error)
	Count(ctx context.Context) (int64, error)
	TotalPrices(ctx context.Context) ([]decimal.Decimal, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderSelect = `
	SELECT
		o.id,
		o.order_number,
		o.user_id,
		u.name,
		u.email,
		o.items,
		o.shipping_address,
		o.payment_method,
		o.items_price,
		o.shipping_price,
		o.tax_price,
		o.total_price,
		o.order_status,
		o.payment_status,
		o.delivered_at,
		o.created_at,
		o.updated_at
	FROM orders o
	LEFT JOIN users u ON u.id = o.user_id`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var (
		o           Order
		ownerName   sql.NullString
		ownerEmail  sql.NullString
		deliveredAt sql.NullTime
	)

	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.UserID,
		&ownerName,
		&ownerEmail,
		&o.Items,
		&o.ShippingAddress,
		&o.PaymentMethod,
		&o.ItemsPrice,
		&o.ShippingPrice,
		&o.TaxPrice,
		&o.TotalPrice,
		&o.OrderStatus,
		&o.PaymentStatus,
		&deliveredAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if ownerName.Valid || ownerEmail.Valid {
		o.User = &Owner{ID: o.UserID, Name: ownerName.String, Email: ownerEmail.String}
	}
	if deliveredAt.Valid {
		t := deliveredAt.Time
		o.DeliveredAt = &t
	}
	return &o, nil
}

func (r *repository) queryOrders(ctx context.Context, log *zap.Logger, query string, args ...any) ([]*Order, error) {
	log.Debug("executing orders query", zap.String("query", query))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	orders := []*Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		log.Error("rows iteration error", zap.Error(err))
		return nil, err
	}

	log.Info("get orders success", zap.Int("count", len(orders)))
	return orders, nil
}

func (r *repository) Create(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.String("user_id", o.UserID.String()),
	)

	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO orders (
			id, order_number, user_id, items, shipping_address, payment_method,
			items_price, shipping_price, tax_price, total_price,
			order_status, payment_status, delivered_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING items_price, shipping_price, tax_price, total_price, created_at, updated_at`,
		o.ID, o.OrderNumber, o.UserID, o.Items, o.ShippingAddress, o.PaymentMethod,
		o.ItemsPrice, o.ShippingPrice, o.TaxPrice, o.TotalPrice,
		o.OrderStatus, o.PaymentStatus, o.DeliveredAt,
	).Scan(&o.ItemsPrice, &o.ShippingPrice, &o.TaxPrice, &o.TotalPrice, &o.CreatedAt, &o.UpdatedAt)

	if err != nil {
		log.Error("db: failed to insert order", zap.Error(err))
		return err
	}

	log.Info("order inserted", zap.String("order_id", o.ID.String()))
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, orderSelect+" WHERE o.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to get order",
			zap.String("layer", "repository"),
			zap.String("order_id", id.String()),
			zap.Error(err),
		)
		return nil, err
	}
	return o, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListByUser"),
		zap.String("user_id", userID.String()),
	)
	return r.queryOrders(ctx, log, orderSelect+" WHERE o.user_id = $1 ORDER BY o.created_at DESC", userID)
}

func (r *repository) ListAll(ctx context.Context) ([]*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListAll"),
	)
	return r.queryOrders(ctx, log, orderSelect+" ORDER BY o.created_at DESC")
}

func (r *repository) ListRecent(ctx context.Context, limit int) ([]*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListRecent"),
	)
	return r.queryOrders(ctx, log, orderSelect+" ORDER BY o.created_at DESC LIMIT $1", limit)
}

func (r *repository) UpdateOrderStatus(
	ctx context.Context,
	id uuid.UUID,
	prev, next Status,
	deliveredAt *time.Time,
) (time.Time, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdateOrderStatus"),
		zap.String("order_id", id.String()),
	)

	var updatedAt time.Time
	err := r.db.QueryRowContext(ctx, `
		UPDATE orders
		SET order_status = $3,
			delivered_at = $4,
			updated_at = NOW()
		WHERE id = $1 AND order_status = $2
		RETURNING updated_at`,
		id, prev, next, deliveredAt,
	).Scan(&updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		log.Warn("order status changed by another writer", zap.String("expected", string(prev)))
		return time.Time{}, ErrConcurrentUpdate
	}
	if err != nil {
		log.Error("db: failed to update order status", zap.Error(err))
		return time.Time{}, err
	}

	return updatedAt, nil
}

func (r *repository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, prev, next PaymentStatus) (time.Time, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdatePaymentStatus"),
		zap.String("order_id", id.String()),
	)

	var updatedAt time.Time
	err := r.db.QueryRowContext(ctx, `
		UPDATE orders
		SET payment_status = $3,
			updated_at = NOW()
		WHERE id = $1 AND payment_status = $2
		RETURNING updated_at`,
		id, prev, next,
	).Scan(&updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		log.Warn("payment status changed by another writer", zap.String("expected", string(prev)))
		return time.Time{}, ErrConcurrentUpdate
	}
	if err != nil {
		log.Error("db: failed to update payment status", zap.Error(err))
		return time.Time{}, err
	}

	return updatedAt, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders").Scan(&n)
	return n, err
}

// TotalPrices returns every order's total for reduction by the caller.
func (r *repository) TotalPrices(ctx context.Context) ([]decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT total_price FROM orders")
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to read order totals", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	totals := []decimal.Decimal{}
	for rows.Next() {
		var d decimal.Decimal
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		totals = append(totals, d)
	}
	return totals, rows.Err()
}
