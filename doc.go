// SPDX-License-Identifier: GPL-3.0-or-later

// Package connspec selects and applies TLS configurations for outgoing
// secure connections and governs fallback across configurations when a
// handshake fails.
//
// # Core Abstraction
//
// The package is built around three types:
//
//   - [Spec]: an immutable description of the TLS parameters acceptable
//     for one connection attempt (protocol versions, cipher suites,
//     extension support), created with a [Builder];
//
//   - [Transport]: the surface of a TLS socket this package needs:
//     read/write access to the enabled cipher suites and protocol
//     versions, plus read access to the supported-suite superset;
//
//   - [Selector]: a per-destination coordinator that walks an ordered
//     list of candidate specs across connection attempts, applies the
//     first compatible one to each fresh transport, and decides whether
//     a failed handshake warrants a fallback retry.
//
// # Downgrade Protection
//
// A fallback attempt is any attempt configured from a candidate other
// than the most preferred one. When the transport supports it,
// [Spec.ApplyTo] appends the RFC 7507 [CipherSuiteFallbackSCSV] pseudo
// cipher suite to the suites offered by a fallback attempt, so that a
// conforming server can detect and reject a forced downgrade.
//
// The retry decision in [*Selector.ConnectionFailed] is deliberately
// conservative: only a negotiation mismatch ([FailureNegotiation]) is
// retried. Certificate and trust failures are never retried, since a
// weaker configuration cannot fix a trust problem and retrying could
// mask an active attack; plain transport I/O failures are not
// negotiation problems and are not retried either. [ClassifyFailure]
// inspects the whole cause chain, so a handshake error caused by a
// certificate problem can never classify as retryable.
//
// # Predefined Specs
//
// [ModernTLS], [CompatibleTLS] and [Cleartext] are process-wide
// immutable presets. A typical candidate list is
//
//	[]connspec.Spec{connspec.ModernTLS, connspec.CompatibleTLS}
//
// ordered from the strongest configuration to the most compatible one.
//
// # Transports
//
// [ConfigTransport] adapts a [*tls.Config] to the [Transport]
// interface, so specs can configure the standard library TLS engine.
// Other TLS stacks can participate by implementing [Transport].
//
// [TLSConnectFunc] bundles the full sequence: dial a fresh connection
// per attempt, configure it through a [Selector], handshake via a
// [TLSEngine], and fall back when the selector allows it. It follows
// the Call(ctx, input) (output, error) operation shape, so it slots
// into pipelines composed of similar operations.
//
// # Observability
//
// Operations support structured logging via [SLogger] (compatible with
// [log/slog]). By default logging is disabled; pass a custom
// [*slog.Logger] to enable it. Completion events include err and an
// errClass computed by the configured [ErrClassifier].
//
// Use [NewSpanID] to generate a unique, time-ordered identifier
// (UUIDv7) for each connection-attempt sequence and attach it to the
// logger with [*slog.Logger.With] to correlate attempts.
//
// # Concurrency
//
// [Spec] values are immutable and safe to share. A [*Selector] and a
// [*TLSConnectFunc] serve one logical sequence at a time and must not
// be used concurrently without external synchronization.
//
// # Design Boundaries
//
// This package chooses and revises TLS parameters; it does not
// implement the cryptographic protocol, validate certificates, resolve
// names, pool connections, or follow HTTP-level retries. Those belong
// to the transport and to higher-level packages.
package connspec
