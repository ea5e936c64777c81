package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"velora-api/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context, filter Filter, sort Sort) ([]*Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `id, name, description, price, category, gender, sizes, colors, images,
	stock, is_featured, is_new_arrival, rating, num_reviews, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*Product, error) {
	var p Product
	var sizes, colors, images pq.StringArray

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Category,
		&p.Gender,
		&sizes,
		&colors,
		&images,
		&p.Stock,
		&p.IsFeatured,
		&p.IsNewArrival,
		&p.Rating,
		&p.NumReviews,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Sizes = []string(sizes)
	p.Colors = []string(colors)
	p.Images = []string(images)
	normalize(&p)
	return &p, nil
}

// escapeLike makes user input match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *repository) List(ctx context.Context, filter Filter, sort Sort) ([]*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
	)

	query := "SELECT " + productColumns + " FROM products WHERE 1=1"
	args := []any{}
	argIndex := 1

	if filter.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argIndex)
		args = append(args, filter.Category)
		argIndex++
	}

	if filter.Gender != "" {
		query += fmt.Sprintf(" AND gender = $%d", argIndex)
		args = append(args, filter.Gender)
		argIndex++
	}

	if filter.Featured {
		query += " AND is_featured = TRUE"
	}

	if filter.NewArrivals {
		query += " AND is_new_arrival = TRUE"
	}

	if filter.Search != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex)
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		argIndex++
	}

	switch sort {
	case SortPriceLow:
		query += " ORDER BY price ASC, created_at DESC"
	case SortPriceHigh:
		query += " ORDER BY price DESC, created_at DESC"
	default:
		query += " ORDER BY created_at DESC"
	}

	log.Debug("executing product list query", zap.String("query", query), zap.Any("args", args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	products := []*Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			log.Error("failed to scan product row", zap.Error(err))
			return nil, err
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		log.Error("rows iteration error", zap.Error(err))
		return nil, err
	}

	return products, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1",
		id,
	)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to get product", zap.String("product_id", id.String()), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, p *Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	normalize(p)

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (
			id, name, description, price, category, gender, sizes, colors, images,
			stock, is_featured, is_new_arrival, rating, num_reviews
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING price, rating, created_at, updated_at`,
		p.ID, p.Name, p.Description, p.Price, p.Category, p.Gender,
		pq.Array(p.Sizes), pq.Array(p.Colors), pq.Array(p.Images),
		p.Stock, p.IsFeatured, p.IsNewArrival, p.Rating, p.NumReviews,
	).Scan(&p.Price, &p.Rating, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to insert product", zap.String("name", p.Name), zap.Error(err))
		return err
	}
	return nil
}

func (r *repository) Update(ctx context.Context, p *Product) error {
	normalize(p)

	err := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET name = $2,
			description = $3,
			price = $4,
			category = $5,
			gender = $6,
			sizes = $7,
			colors = $8,
			images = $9,
			stock = $10,
			is_featured = $11,
			is_new_arrival = $12,
			rating = $13,
			num_reviews = $14,
			updated_at = NOW()
		WHERE id = $1
		RETURNING price, rating, updated_at`,
		p.ID, p.Name, p.Description, p.Price, p.Category, p.Gender,
		pq.Array(p.Sizes), pq.Array(p.Colors), pq.Array(p.Images),
		p.Stock, p.IsFeatured, p.IsNewArrival, p.Rating, p.NumReviews,
	).Scan(&p.Price, &p.Rating, &p.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to update product", zap.String("product_id", p.ID.String()), zap.Error(err))
		return err
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to delete product", zap.String("product_id", id.String()), zap.Error(err))
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&n)
	return n, err
}
