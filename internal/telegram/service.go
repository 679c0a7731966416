package telegram

import (
	"context"

	"github.com/go-telegram/bot"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"shopbot/internal/commands"
	"shopbot/internal/config"
)

// NewBot creates the Telegram bot client. Updates go through the Dispatcher
// so the router can be bound after construction.
func NewBot(cfg *config.Config, dispatcher *Dispatcher) (*bot.Bot, error) {
	return bot.New(cfg.Telegram.Token,
		bot.WithDefaultHandler(dispatcher.HandleUpdate),
		bot.WithSkipGetMe(),
	)
}

// Service owns the bot's long-polling loop on the Fx lifecycle.
type Service struct {
	logger     *zap.Logger
	bot        *bot.Bot
	manager    *commands.Manager
	router     *Router
	dispatcher *Dispatcher
	cancel     context.CancelFunc
}

// ServiceParams holds the dependencies for creating a Service.
type ServiceParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Logger     *zap.Logger
	Bot        *bot.Bot
	Manager    *commands.Manager
	Router     *Router
	Dispatcher *Dispatcher
}

// NewService registers the bot on the application lifecycle.
func NewService(params ServiceParams) *Service {
	s := &Service{
		logger:     params.Logger.Named("telegram"),
		bot:        params.Bot,
		manager:    params.Manager,
		router:     params.Router,
		dispatcher: params.Dispatcher,
	}
	params.Lifecycle.Append(fx.Hook{
		OnStart: s.start,
		OnStop:  s.stop,
	})
	return s
}

func (s *Service) start(ctx context.Context) error {
	s.dispatcher.Bind(s.router)
	if err := s.manager.Register(ctx, s.bot); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.bot.Start(runCtx)
	s.logger.Info("Telegram bot polling for updates")
	return nil
}

func (s *Service) stop(_ context.Context) error {
	s.logger.Info("Stopping Telegram bot")
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}
