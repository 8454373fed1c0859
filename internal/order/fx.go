package order

import (
	orderdomain "github.com/nextdevhq/storefront/internal/order/domain"
	"github.com/nextdevhq/storefront/internal/order/service"
	"github.com/nextdevhq/storefront/internal/providers/razorpay"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(func(c *razorpay.Client) service.ProviderClient { return c }),
	fx.Provide(service.NewService),
	fx.Provide(func(s *service.Service) orderdomain.Service { return s }),
)
