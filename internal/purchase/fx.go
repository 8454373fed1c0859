package purchase

import (
	purchasedomain "github.com/nextdevhq/storefront/internal/purchase/domain"
	"github.com/nextdevhq/storefront/internal/purchase/repository"
	purchaseservice "github.com/nextdevhq/storefront/internal/purchase/service"
	"go.uber.org/fx"
)

var Module = fx.Module("purchase.service",
	fx.Provide(repository.Provide),
	fx.Provide(purchaseservice.NewService),
	fx.Provide(func(s *purchaseservice.Service) purchasedomain.Service { return s }),
)
