// Package seed bootstraps development data so the checkout flow can be
// exercised against a fresh database.
package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/nextdevhq/storefront/internal/auth/domain"
	"gorm.io/gorm"
)

const devBuyerEmail = "buyer@storefront.local"

// EnsureDevBuyer creates the development buyer account if it does not exist.
func EnsureDevBuyer(ctx context.Context, db *gorm.DB, node *snowflake.Node) (*authdomain.User, error) {
	if db == nil {
		return nil, errors.New("seed database handle is required")
	}
	if node == nil {
		return nil, errors.New("seed id node is required")
	}

	var user authdomain.User
	err := db.WithContext(ctx).
		Where("email = ?", devBuyerEmail).
		First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	user = authdomain.User{
		ID:        node.Generate(),
		Email:     strings.ToLower(devBuyerEmail),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
