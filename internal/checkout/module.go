// Package checkout drives the multi-step purchase conversation, from the
// delivery question to the payment link.
package checkout

import (
	"go.uber.org/fx"
)

// Module provides checkout dependencies.
var Module = fx.Module("checkout",
	fx.Provide(NewFlow),
)
