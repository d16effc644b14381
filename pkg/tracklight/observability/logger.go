// Package observability provides structured logging, OpenTelemetry metrics,
// and tracing for the tracklight core.
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// LogStartup logs the orchestrator startup parameters.
func LogStartup(logger *slog.Logger, sessionID, installType, processType string, enabledProcessTypes []string, adaptorCount int) {
	if logger == nil {
		return
	}
	logger.Info("analytics starting",
		slog.String("session_id", sessionID),
		slog.String("install_type", installType),
		slog.String("process_type", processType),
		slog.Any("enabled_process_types", enabledProcessTypes),
		slog.Int("adaptors", adaptorCount),
	)
}

// LogAdaptorStarted logs a successful adaptor start.
func LogAdaptorStarted(logger *slog.Logger, name string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("adaptor started",
		slog.String("adaptor", name),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogAdaptorStartFailed logs an adaptor start failure or timeout.
// The adaptor receives no further calls this process lifetime.
func LogAdaptorStartFailed(logger *slog.Logger, name string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("adaptor failed to start",
		slog.String("adaptor", name),
		slog.String("error", err.Error()),
	)
}

// LogEventDelivered logs one delivery of an event to one adaptor.
func LogEventDelivered(logger *slog.Logger, adaptorName, eventName, params string) {
	if logger == nil {
		return
	}
	if params != "" {
		logger.Info("event delivered",
			slog.String("adaptor", adaptorName),
			slog.String("event", eventName),
			slog.String("params", params),
		)
		return
	}
	logger.Info("event delivered",
		slog.String("adaptor", adaptorName),
		slog.String("event", eventName),
	)
}

// LogDeliveryFailed logs a swallowed adaptor delivery error.
func LogDeliveryFailed(logger *slog.Logger, adaptorName, eventName string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("event delivery failed",
		slog.String("adaptor", adaptorName),
		slog.String("event", eventName),
		slog.String("error", err.Error()),
	)
}

// LogPropertyForwardFailed logs a swallowed adaptor user-property error.
func LogPropertyForwardFailed(logger *slog.Logger, adaptorName, propertyName string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("user property forward failed",
		slog.String("adaptor", adaptorName),
		slog.String("property", propertyName),
		slog.String("error", err.Error()),
	)
}

// LogStorageWarning logs a non-fatal storage problem.
func LogStorageWarning(logger *slog.Logger, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("storage problem",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// LogWatchdogExpired logs a stuck-UI watchdog firing.
func LogWatchdogExpired(logger *slog.Logger, viewName string, delaySeconds float64) {
	if logger == nil {
		return
	}
	logger.Warn("stuck UI watchdog expired",
		slog.String("view", viewName),
		slog.Float64("delay_s", delaySeconds),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
