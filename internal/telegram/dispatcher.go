package telegram

import (
	"context"
	"sync/atomic"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Dispatcher is the bot's default update handler. The router is bound after
// the dependency graph is built, because the router's commands need the bot
// itself for notifications. Updates arriving before Bind are dropped; the
// bot only starts polling after Bind runs.
type Dispatcher struct {
	router atomic.Pointer[Router]
}

// NewDispatcher creates an unbound Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Bind attaches the router that will receive updates.
func (d *Dispatcher) Bind(r *Router) {
	d.router.Store(r)
}

// HandleUpdate implements the bot.HandlerFunc signature.
func (d *Dispatcher) HandleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if r := d.router.Load(); r != nil {
		r.Route(ctx, b, update)
	}
}
