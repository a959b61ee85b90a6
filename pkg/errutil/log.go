// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

// Package errutil holds helpers for logging and inspecting oops errors.
package errutil

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs err at error level. Oops errors contribute their code and
// context as structured attributes; extra attrs are appended as-is.
func LogError(logger *slog.Logger, msg string, err error, attrs ...any) {
	logWith(logger, slog.LevelError, msg, err, attrs...)
}

// LogWarn is LogError at warn level, used for per-plugin failures that the
// host skips over.
func LogWarn(logger *slog.Logger, msg string, err error, attrs ...any) {
	logWith(logger, slog.LevelWarn, msg, err, attrs...)
}

func logWith(logger *slog.Logger, level slog.Level, msg string, err error, attrs ...any) {
	if logger == nil {
		logger = slog.Default()
	}
	out := make([]any, 0, len(attrs)+6)
	if oopsErr, ok := oops.AsOops(err); ok {
		out = append(out, "error", oopsErr.Error())
		if code := oopsErr.Code(); code != nil {
			out = append(out, "code", code)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			out = append(out, "context", ctx)
		}
	} else {
		out = append(out, "error", err)
	}
	out = append(out, attrs...)
	logger.Log(context.Background(), level, msg, out...)
}

// Code returns the oops error code of err as a string, or "" when err is not
// an oops error or carries no code.
func Code(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code, ok := oopsErr.Code().(string)
	if !ok {
		return ""
	}
	return code
}
