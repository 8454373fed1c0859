package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/nextdevhq/storefront/internal/purchase/domain"
	"github.com/nextdevhq/storefront/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// Insert writes the purchase row. A unique-constraint violation on
// (order_id, payment_id) is reported as ErrDuplicateRecord so callers can
// keep recording at-most-once.
func (r *repo) Insert(ctx context.Context, conn *gorm.DB, rec *domain.Record) error {
	if err := conn.WithContext(ctx).Create(rec).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ErrDuplicateRecord
		}
		return err
	}
	return nil
}

func (r *repo) ListByUser(ctx context.Context, conn *gorm.DB, userID snowflake.ID, limit int, afterID *snowflake.ID) ([]*domain.Record, error) {
	query := conn.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit)
	if afterID != nil {
		query = query.Where("id < ?", *afterID)
	}

	var records []*domain.Record
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
