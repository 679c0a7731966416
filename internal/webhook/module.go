// Package webhook hosts the HTTP endpoint that receives YooKassa payment
// notifications and promotes paid pending orders.
package webhook

import (
	"go.uber.org/fx"
)

// Module provides webhook dependencies.
var Module = fx.Module("webhook",
	fx.Provide(
		NewHandler,
		NewServer,
	),
)
