// Package shop provides the storefront domain service (catalog, carts,
// pending checkouts, paid orders) and its Fx module.
package shop

import (
	"go.uber.org/fx"
)

// Module provides storefront service dependencies.
var Module = fx.Module("shop",
	fx.Provide(NewService),
)
