package auth

import (
	authdomain "github.com/nextdevhq/storefront/internal/auth/domain"
	authservice "github.com/nextdevhq/storefront/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(authservice.NewService),
	fx.Provide(func(s *authservice.Service) authdomain.Service { return s }),
)
