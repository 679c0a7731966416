package webhook

import (
	"context"
	"net"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"shopbot/internal/config"
)

// Server hosts the payment webhook endpoint.
type Server struct {
	logger *zap.Logger
	srv    *http.Server
	addr   string
}

// NewServer builds the HTTP server and registers it on the Fx lifecycle.
func NewServer(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config, handler *Handler) *Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Webhook.Path, handler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s := &Server{
		logger: logger.Named("webhook"),
		addr:   cfg.Webhook.ListenAddr,
		srv: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	lc.Append(fx.Hook{
		OnStart: s.start,
		OnStop:  s.stop,
	})
	return s
}

func (s *Server) start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.logger.Info("Webhook server listening", zap.String("addr", ln.Addr().String()))
	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Webhook server failed", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) stop(ctx context.Context) error {
	s.logger.Info("Stopping webhook server")
	return s.srv.Shutdown(ctx)
}
