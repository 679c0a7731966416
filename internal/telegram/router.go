package telegram

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"shopbot/internal/checkout"
	"shopbot/internal/commands"
)

// API is the combined Telegram surface the router hands to commands and the
// checkout flow; *bot.Bot satisfies it.
type API interface {
	commands.API
	checkout.API
}

// Router sends incoming updates to the command manager or the checkout flow.
type Router struct {
	logger  *zap.Logger
	manager *commands.Manager
	flow    *checkout.Flow
}

// NewRouter creates a Router.
func NewRouter(logger *zap.Logger, manager *commands.Manager, flow *checkout.Flow) *Router {
	return &Router{
		logger:  logger.Named("telegram"),
		manager: manager,
		flow:    flow,
	}
}

// Route dispatches one update.
func (r *Router) Route(ctx context.Context, api API, update *models.Update) {
	switch {
	case update.CallbackQuery != nil:
		if !r.flow.HandleCallback(ctx, api, update.CallbackQuery) {
			r.logger.Debug("Unhandled callback", zap.String("data", update.CallbackQuery.Data))
		}
	case update.Message != nil:
		r.routeMessage(ctx, api, update.Message)
	}
}

func (r *Router) routeMessage(ctx context.Context, api API, msg *models.Message) {
	if msg.From == nil {
		return
	}
	if strings.HasPrefix(msg.Text, "/") && r.manager.Handle(ctx, api, msg) {
		return
	}
	if r.flow.HandleText(ctx, api, msg) {
		return
	}
	// Only nudge in private chats; group chatter is none of our business.
	if msg.Chat.Type == models.ChatTypePrivate {
		if _, err := api.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: msg.Chat.ID,
			Text:   "I did not get that. Try /catalog or /help.",
		}); err != nil {
			r.logger.Warn("Failed to send fallback reply", zap.Int64("chatID", msg.Chat.ID), zap.Error(err))
		}
	}
}
