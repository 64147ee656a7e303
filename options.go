// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package sheetcursor

import "log/slog"

type options struct {
	format Format
	logger *slog.Logger
}

// Option configures a Cursor.
type Option func(*options)

// WithFormatting sets the initial formatting overlay.
func WithFormatting(f Format) Option {
	return func(o *options) { o.format = f.Merge(nil) }
}

// WithLogger sets the logger merges and re-anchors are logged to, at Debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}
