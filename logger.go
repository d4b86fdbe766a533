package lti

import (
	"sync"

	"github.com/goliatone/go-logger/glog"
)

// Logger is the structured logger used across the package. Messages are
// constant strings and args are key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// LoggerProvider hands out named loggers
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// LoggerProviderFunc adapts a function to LoggerProvider
type LoggerProviderFunc func(name string) Logger

// GetLogger implements LoggerProvider.
func (f LoggerProviderFunc) GetLogger(name string) Logger {
	if f == nil {
		return nil
	}
	return f(name)
}

// ProviderFromGlog exposes a glog base logger as a LoggerProvider
func ProviderFromGlog(base *glog.BaseLogger) LoggerProvider {
	if base == nil {
		return nil
	}
	return LoggerProviderFunc(func(name string) Logger {
		return base.GetLogger(name)
	})
}

// ProviderFromLogger returns a provider that hands out the same logger for
// every name.
func ProviderFromLogger(logger Logger) LoggerProvider {
	return LoggerProviderFunc(func(string) Logger {
		return logger
	})
}

var (
	baseLoggerOnce sync.Once
	baseLogger     *glog.BaseLogger
)

func defaultProvider() LoggerProvider {
	baseLoggerOnce.Do(func() {
		baseLogger = glog.NewLogger(
			glog.WithLoggerTypePretty(),
			glog.WithName("lti"),
			glog.WithAddSource(false),
		)
	})
	return ProviderFromGlog(baseLogger)
}

// ResolveLogger picks the logger for a named component. An explicit logger
// wins over the provider, and the package default glog logger is used when
// neither is set.
func ResolveLogger(name string, provider LoggerProvider, logger Logger) (LoggerProvider, Logger) {
	if logger != nil {
		if provider == nil {
			provider = ProviderFromLogger(logger)
		}
		return provider, logger
	}

	if provider == nil {
		provider = defaultProvider()
	}

	if resolved := provider.GetLogger(name); resolved != nil {
		return provider, resolved
	}

	fallback := defaultProvider().GetLogger(name)
	return provider, fallback
}
