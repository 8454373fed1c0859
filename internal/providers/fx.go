package providers

import (
	"github.com/nextdevhq/storefront/internal/providers/email"
	"github.com/nextdevhq/storefront/internal/providers/razorpay"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	razorpay.Module,
)
