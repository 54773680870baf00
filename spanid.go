// SPDX-License-Identifier: GPL-3.0-or-later

package connspec

import (
	"github.com/bassosimone/runtimex"
	"github.com/google/uuid"
)

// NewSpanID returns a UUIDv7 representing a span.
//
// A span is a sequence of operations that can fail in a single, specific
// way. A [*TLSConnectFunc.Call], covering every fallback attempt made to
// one destination, is a natural span for this package.
//
// Attach the span ID to the logger with [*slog.Logger.With] before
// passing it to [NewTLSConnectFunc]: every attempt's log entries will
// then share the same spanID, enabling correlation across retries.
//
// The span terminology is borrowed from OTel.
//
// This function panics if the system random number generator fails,
// which should only happen under extraordinary circumstances.
func NewSpanID() string {
	return runtimex.PanicOnError1(uuid.NewV7()).String()
}
