// Package domain contains core types for verified purchase recording.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/nextdevhq/storefront/pkg/db/pagination"
	"gorm.io/gorm"
)

const StatusPaid = "paid"

var (
	ErrMissingConfirmation = errors.New("missing payment confirmation details")
	ErrVerificationFailed  = errors.New("payment verification failed")
	ErrRecordingFailed     = errors.New("failed to record purchase")
	ErrDuplicateRecord     = errors.New("purchase already recorded")
)

// Record is the durable row for a completed, verified sale. The composite
// unique index on (order_id, payment_id) is the idempotency key: a second
// insert for the same pair must fail at the storage layer.
type Record struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	UserID      snowflake.ID `json:"user_id" gorm:"column:user_id;not null;index"`
	ProductName string       `json:"product_name" gorm:"type:text;not null"`
	AmountMinor int64        `json:"amount" gorm:"column:amount_minor;not null"`
	OrderID     string       `json:"order_id" gorm:"column:order_id;type:text;not null;uniqueIndex:idx_purchases_order_payment"`
	PaymentID   string       `json:"payment_id" gorm:"column:payment_id;type:text;not null;uniqueIndex:idx_purchases_order_payment"`
	Status      string       `json:"status" gorm:"type:text;not null"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null"`
}

// TableName sets the database table name.
func (Record) TableName() string { return "purchases" }

// Confirmation is the identifier triple delivered by the checkout surface
// after a completed charge. It is transient and never persisted as-is.
type Confirmation struct {
	OrderID   string
	PaymentID string
	Signature string
}

// VerifyRequest carries a confirmation to verify plus the display fields to
// record. UserID comes from the authenticated session, never from the client.
type VerifyRequest struct {
	UserID      snowflake.ID
	Confirm     Confirmation
	ProductName string
	AmountMajor int64
}

type ListRequest struct {
	UserID     snowflake.ID
	Pagination pagination.Pagination
}

type ListResponse struct {
	Records  []*Record            `json:"purchases"`
	PageInfo *pagination.PageInfo `json:"page_info"`
}

type Service interface {
	VerifyAndRecord(ctx context.Context, req VerifyRequest) error
	List(ctx context.Context, req ListRequest) (ListResponse, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, rec *Record) error
	ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, limit int, afterID *snowflake.ID) ([]*Record, error)
}
