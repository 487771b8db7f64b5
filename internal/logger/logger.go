package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var current atomic.Pointer[slog.Logger]

// Initialize sets up the process logger on stdout with the configured level and format.
func Initialize(level, format string) {
	Setup(os.Stdout, level, format)
}

// Setup points the process logger at w. Unknown levels fall back to info and
// any format other than "json" produces logfmt-style text.
func Setup(w io.Writer, level, format string) {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	l := slog.New(handler)
	current.Store(l)
	slog.SetDefault(l)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func get() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	return slog.Default()
}

func Debug(msg string, args ...any) { get().Debug(msg, args...) }
func Info(msg string, args ...any)  { get().Info(msg, args...) }
func Warn(msg string, args ...any)  { get().Warn(msg, args...) }
func Error(msg string, args ...any) { get().Error(msg, args...) }

// WithSession scopes log lines to one realtime session.
func WithSession(sessionID string) *slog.Logger {
	return get().With("session", sessionID)
}

// WithTransaction scopes log lines to one weighment serial number.
func WithTransaction(id int64) *slog.Logger {
	return get().With("transaction_id", id)
}

// EnterMethod logs method entry (process tracking)
func EnterMethod(methodName string, args ...any) {
	get().Debug("→ Method entered", withPrefix(args, "method", methodName, "event", "enter")...)
}

// ExitMethod logs method exit (process tracking)
func ExitMethod(methodName string, args ...any) {
	get().Debug("← Method exited", withPrefix(args, "method", methodName, "event", "exit")...)
}

// ExitMethodWithError logs method exit with error (process tracking)
func ExitMethodWithError(methodName string, err error, args ...any) {
	get().Error("← Method exited with error", withPrefix(args, "method", methodName, "event", "exit", "error", err)...)
}

// DatabaseCall logs a statement against table before it runs.
func DatabaseCall(operation, table string, args ...any) {
	get().Debug("→ Database call", withPrefix(args, "operation", operation, "table", table)...)
}

// DatabaseResult logs the outcome of the statement announced by DatabaseCall.
func DatabaseResult(operation string, rowsAffected int64, err error, args ...any) {
	all := withPrefix(args, "operation", operation, "rows_affected", rowsAffected)
	if err != nil {
		get().Error("← Database call failed", append(all, "error", err)...)
		return
	}
	get().Debug("← Database call succeeded", all...)
}

// DeviceEvent logs a weight indicator lifecycle event. Failures are warnings:
// the server keeps running with the weight forced to zero.
func DeviceEvent(path, event string, err error, args ...any) {
	all := withPrefix(args, "device", path, "event", event)
	if err != nil {
		get().Warn("Weight device event", append(all, "error", err)...)
		return
	}
	get().Info("Weight device event", all...)
}

// ExternalServiceCall logs a call to hardware or another process.
func ExternalServiceCall(service, operation string, args ...any) {
	get().Debug("→ External service call", withPrefix(args, "service", service, "operation", operation)...)
}

// ExternalServiceResult logs the outcome of the call announced by ExternalServiceCall.
func ExternalServiceResult(service, operation string, err error, args ...any) {
	all := withPrefix(args, "service", service, "operation", operation)
	if err != nil {
		get().Debug("← External service call failed", append(all, "error", err)...)
		return
	}
	get().Debug("← External service call succeeded", all...)
}

func withPrefix(args []any, prefix ...any) []any {
	return append(prefix, args...)
}
