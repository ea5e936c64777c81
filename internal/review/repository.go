package review

import (
	"context"
	"database/sql"
	"errors"

	"velora-api/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, r *Review) error
	ListRecent(ctx context.Context, limit int) ([]*Review, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, rv *Review) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
	)

	if rv.ID == uuid.Nil {
		rv.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO reviews (id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		rv.ID, rv.UserID, rv.Rating, rv.Comment,
	).Scan(&rv.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == PgForeignKeyViolation {
			log.Warn("db: review user does not exist")
			return ErrUnknownUser
		}
		log.Error("db: failed to insert review", zap.Error(err))
		return err
	}

	return nil
}

func (r *repository) ListRecent(ctx context.Context, limit int) ([]*Review, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.user_id, u.name, r.rating, r.comment, r.created_at
		FROM reviews r
		LEFT JOIN users u ON u.id = r.user_id
		ORDER BY r.created_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to list reviews", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	reviews := []*Review{}
	for rows.Next() {
		var (
			rv       Review
			userID   uuid.NullUUID
			userName sql.NullString
		)
		if err := rows.Scan(&rv.ID, &userID, &userName, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		if userID.Valid {
			id := userID.UUID
			rv.UserID = &id
		}
		rv.UserName = userName.String
		reviews = append(reviews, &rv)
	}

	return reviews, rows.Err()
}
