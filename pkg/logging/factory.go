// Package logging provides component-aware loggers with consistent field naming.
package logging

import (
	"strings"

	"github.com/charmbracelet/log"
)

// Factory hands out loggers scoped to a named component. Per-component log
// levels can be raised or lowered without touching the base logger.
type Factory struct {
	baseLogger *log.Logger
	levels     map[string]log.Level
}

// NewFactory creates a new logger factory.
func NewFactory(baseLogger *log.Logger) *Factory {
	return &Factory{
		baseLogger: baseLogger,
		levels:     make(map[string]log.Level),
	}
}

// NewFactoryWithConfig creates a factory and loads component log levels from
// config. Unknown level strings are ignored and the base level applies.
func NewFactoryWithConfig(baseLogger *log.Logger, componentLogLevels map[string]string) *Factory {
	factory := NewFactory(baseLogger)
	for component, levelStr := range componentLogLevels {
		level, err := log.ParseLevel(strings.ToLower(levelStr))
		if err != nil {
			baseLogger.Warn("Unknown log level for component", "component", component, "level", levelStr)
			continue
		}
		factory.levels[component] = level
	}
	return factory
}

// ForComponent creates a logger for a specific component.
func (lf *Factory) ForComponent(id string) *log.Logger {
	logger := lf.baseLogger.With("component", id)
	if level, ok := lf.levels[id]; ok {
		logger.SetLevel(level)
	}
	return logger
}

// ForService creates a logger for service components.
func (lf *Factory) ForService(id string) *log.Logger {
	return lf.ForComponent("service." + id)
}

// ForHandler creates a logger for HTTP handler components.
func (lf *Factory) ForHandler(id string) *log.Logger {
	return lf.ForComponent("handler." + id)
}

// ForClient creates a logger for client components.
func (lf *Factory) ForClient(id string) *log.Logger {
	return lf.ForComponent("client." + id)
}

// ForWorker creates a logger for background worker components.
func (lf *Factory) ForWorker(id string) *log.Logger {
	return lf.ForComponent("worker." + id)
}
