package razorpay

import "go.uber.org/fx"

var Module = fx.Module("providers.razorpay",
	fx.Provide(NewClient),
)
