package clog

import (
	"context"
	"log/slog"
)

// HTTPStatusToLevel picks the log level for an API exchange that ended with
// status. A zero status means no response was received.
func HTTPStatusToLevel(status int) slog.Level {
	switch {
	case status >= 100 && status < 400:
		return slog.LevelDebug
	case status == 401, status == 404, status == 499:
		return slog.LevelInfo
	case status >= 400 && status < 500:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

func logAt(ctx context.Context, level slog.Level, msg string) {
	slog.Default().Log(ctx, level, msg)
}
