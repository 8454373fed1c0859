package seed

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/nextdevhq/storefront/internal/auth/domain"
	"github.com/nextdevhq/storefront/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const devSessionTTL = 24 * time.Hour

var Module = fx.Module("seed",
	fx.Invoke(run),
)

func run(cfg config.Config, conn *gorm.DB, node *snowflake.Node, authsvc authdomain.Service, log *zap.Logger) error {
	if !cfg.IsDevelopment() {
		return nil
	}

	ctx := context.Background()
	user, err := EnsureDevBuyer(ctx, conn, node)
	if err != nil {
		return err
	}

	issued, err := authsvc.IssueSession(ctx, user.ID, devSessionTTL)
	if err != nil {
		return err
	}

	// Development only: the token below lets a developer drive the API
	// from curl without a login flow.
	log.Info("dev buyer session ready",
		zap.String("email", user.Email),
		zap.String("token", issued.RawToken),
	)
	return nil
}
