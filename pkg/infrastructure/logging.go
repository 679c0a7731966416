// Package infrastructure provides reusable infrastructure components for Go applications.
package infrastructure

import (
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// FxLoggerAdapter adapts a zap.Logger to the fxevent.Logger interface so Fx's
// own lifecycle logging goes through the application logger.
type FxLoggerAdapter struct {
	logger *zap.Logger
}

// NewFxLoggerAdapter creates a new Fx logger adapter that implements fxevent.Logger.
func NewFxLoggerAdapter(logger *zap.Logger) fxevent.Logger {
	return &FxLoggerAdapter{logger: logger.Named("fx")}
}

// LogEvent implements fxevent.Logger. Routine graph construction events are
// logged at debug level; failures are errors.
func (a *FxLoggerAdapter) LogEvent(event fxevent.Event) {
	switch e := event.(type) {
	case *fxevent.OnStartExecuting:
		a.logger.Debug("OnStart hook executing", zap.String("callee", e.FunctionName), zap.String("caller", e.CallerName))
	case *fxevent.OnStartExecuted:
		if e.Err != nil {
			a.logger.Error("OnStart hook failed", zap.String("callee", e.FunctionName), zap.Error(e.Err))
		} else {
			a.logger.Debug("OnStart hook executed", zap.String("callee", e.FunctionName), zap.String("runtime", e.Runtime.String()))
		}
	case *fxevent.OnStopExecuting:
		a.logger.Debug("OnStop hook executing", zap.String("callee", e.FunctionName), zap.String("caller", e.CallerName))
	case *fxevent.OnStopExecuted:
		if e.Err != nil {
			a.logger.Error("OnStop hook failed", zap.String("callee", e.FunctionName), zap.Error(e.Err))
		} else {
			a.logger.Debug("OnStop hook executed", zap.String("callee", e.FunctionName), zap.String("runtime", e.Runtime.String()))
		}
	case *fxevent.Supplied:
		a.logEventErr("supplied", e.Err, zap.String("type", e.TypeName))
	case *fxevent.Provided:
		a.logEventErr("provided", e.Err, zap.Strings("types", e.OutputTypeNames), zap.String("constructor", e.ConstructorName))
	case *fxevent.Invoking:
		a.logger.Debug("invoking", zap.String("function", e.FunctionName))
	case *fxevent.Invoked:
		a.logEventErr("invoked", e.Err, zap.String("function", e.FunctionName))
	case *fxevent.Started:
		if e.Err != nil {
			a.logger.Error("start failed", zap.Error(e.Err))
		} else {
			a.logger.Info("started")
		}
	case *fxevent.Stopping:
		a.logger.Info("stopping", zap.String("signal", e.Signal.String()))
	case *fxevent.Stopped:
		a.logEventErr("stopped", e.Err)
	case *fxevent.RollingBack:
		a.logger.Error("rolling back", zap.Error(e.StartErr))
	case *fxevent.RolledBack:
		a.logEventErr("rolled back", e.Err)
	case *fxevent.LoggerInitialized:
		a.logEventErr("logger initialized", e.Err, zap.String("constructor", e.ConstructorName))
	}
}

func (a *FxLoggerAdapter) logEventErr(msg string, err error, fields ...zap.Field) {
	if err != nil {
		a.logger.Error(msg, append(fields, zap.Error(err))...)
		return
	}
	a.logger.Debug(msg, fields...)
}
