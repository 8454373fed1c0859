package migration

import (
	"strings"

	authdomain "github.com/nextdevhq/storefront/internal/auth/domain"
	purchasedomain "github.com/nextdevhq/storefront/internal/purchase/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB) error {
		if strings.EqualFold(conn.Dialector.Name(), "postgres") {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}

		// Non-postgres dialects (sqlite dev, mysql) take the schema from the
		// models directly.
		return conn.AutoMigrate(
			&authdomain.User{},
			&authdomain.Session{},
			&purchasedomain.Record{},
		)
	}),
)
