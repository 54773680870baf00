// SPDX-License-Identifier: GPL-3.0-or-later

package connspec

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net"
	"net/netip"
	"time"

	"github.com/bassosimone/runtimex"
	"github.com/bassosimone/safeconn"
)

// Dialer abstracts the [*net.Dialer] behavior.
//
// By making [*TLSConnectFunc] depend on an abstract implementation we
// allow for unit testing and for using alternative dialers.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// NewTLSConnectFunc returns a new [*TLSConnectFunc].
//
// The cfg argument contains the common configuration for connspec operations.
//
// The specs argument is the candidate list, most preferred first. The
// same list is walked afresh by each [*TLSConnectFunc.Call].
//
// The tlsConfig argument is the base TLS configuration. Each attempt
// works on its own clone, so the caller's value is never modified.
//
// The logger argument is the [SLogger] to use for structured logging.
func NewTLSConnectFunc(cfg *Config, specs []Spec, tlsConfig *tls.Config, logger SLogger) *TLSConnectFunc {
	runtimex.Assert(tlsConfig != nil)
	runtimex.Assert(len(specs) > 0)
	return &TLSConnectFunc{
		Config:        tlsConfig,
		Dialer:        cfg.Dialer,
		Engine:        TLSEngineStdlib{},
		ErrClassifier: cfg.ErrClassifier,
		Logger:        logger,
		Specs:         specs,
		TimeNow:       cfg.TimeNow,
	}
}

// TLSConnectFunc establishes a TLS connection to a TCP endpoint,
// falling back across candidate [Spec] values on negotiation mismatch.
//
// Each Call runs one logical connection-attempt sequence: it creates a
// [*Selector] over Specs and, per attempt, dials a fresh connection,
// configures a clone of Config through the selector, and handshakes.
// A failed attempt closes its connection; the selector then decides
// whether a further attempt with the next compatible spec is warranted.
// Trust failures and plain I/O failures are never retried.
//
// Returns either a valid [TLSConn] or an error, never both.
//
// All fields are safe to modify after construction but before first use.
// Fields must not be mutated concurrently with calls to [Call].
type TLSConnectFunc struct {
	// Config contains the base [*tls.Config] to clone for each attempt.
	//
	// Set by [NewTLSConnectFunc] to the user-provided [*tls.Config] pointer.
	Config *tls.Config

	// Dialer is the [Dialer] providing a fresh conn per attempt.
	//
	// Set by [NewTLSConnectFunc] from [Config.Dialer].
	Dialer Dialer

	// Engine is the [TLSEngine] to use to handshake.
	//
	// Set by [NewTLSConnectFunc] to [TLSEngineStdlib].
	Engine TLSEngine

	// ErrClassifier classifies errors for structured logging.
	//
	// Set by [NewTLSConnectFunc] from [Config.ErrClassifier].
	ErrClassifier ErrClassifier

	// Logger is the [SLogger] to use (configurable for testing or custom logging).
	//
	// Set by [NewTLSConnectFunc] to the user-provided logger.
	Logger SLogger

	// Specs is the candidate list, most preferred first.
	//
	// Set by [NewTLSConnectFunc] to the user-provided list.
	Specs []Spec

	// TimeNow is the function to get the current time (configurable for testing).
	//
	// Set by [NewTLSConnectFunc] from [Config.TimeNow].
	TimeNow func() time.Time
}

// Call invokes the [*TLSConnectFunc] to connect to the given [netip.AddrPort].
func (op *TLSConnectFunc) Call(ctx context.Context, address netip.AddrPort) (TLSConn, error) {
	selector := NewSelector(op.Specs)
	for attempt := 0; ; attempt++ {
		conn, err := op.Dialer.DialContext(ctx, "tcp", address.String())
		if err != nil {
			return nil, err
		}
		tconn, err := op.attempt(ctx, conn, selector, attempt)
		if err == nil {
			return tconn, nil
		}
		if !selector.ConnectionFailed(err) {
			return nil, err
		}
	}
}

// attempt runs a single connection attempt over conn. It owns conn: on
// error the connection is closed before returning.
func (op *TLSConnectFunc) attempt(
	ctx context.Context, conn net.Conn, selector *Selector, attempt int) (TLSConn, error) {
	transport := NewConfigTransport(op.cloneConfig())
	spec, err := selector.ConfigureTransport(transport)
	if err != nil {
		conn.Close()
		return nil, err
	}
	config := transport.Config()
	if !spec.SupportsTLSExtensions() {
		config.NextProtos = nil
	}
	t0 := op.TimeNow()
	deadline, _ := ctx.Deadline()
	op.logAttemptStart(conn, spec, attempt, t0, deadline, config)
	tconn := op.Engine.Client(conn, config)
	err = tconn.HandshakeContext(ctx)
	op.logAttemptDone(conn, spec, attempt, t0, deadline, config, err)
	if err != nil {
		tconn.Close()
		return nil, err
	}
	return tconn, nil
}

func (op *TLSConnectFunc) cloneConfig() *tls.Config {
	runtimex.Assert(op.Config != nil)
	config := op.Config.Clone()
	config.Time = op.TimeNow
	return config
}

func (op *TLSConnectFunc) logAttemptStart(conn net.Conn,
	spec Spec, attempt int, t0 time.Time, deadline time.Time, config *tls.Config) {
	op.Logger.Info(
		"tlsConnectStart",
		slog.Int("attempt", attempt),
		slog.String("connectionSpec", spec.String()),
		slog.Time("deadline", deadline),
		slog.String("localAddr", safeconn.LocalAddr(conn)),
		slog.String("protocol", safeconn.Network(conn)),
		slog.String("remoteAddr", safeconn.RemoteAddr(conn)),
		slog.Time("t", t0),
		slog.String("tlsEngineName", op.Engine.Name()),
		slog.Any("tlsOfferedProtocols", config.NextProtos),
		slog.String("tlsServerName", config.ServerName),
		slog.Bool("tlsSkipVerify", config.InsecureSkipVerify),
	)
}

func (op *TLSConnectFunc) logAttemptDone(conn net.Conn,
	spec Spec, attempt int, t0 time.Time, deadline time.Time, config *tls.Config, err error) {
	failureKind := ""
	if err != nil {
		failureKind = ClassifyFailure(err).String()
	}
	op.Logger.Info(
		"tlsConnectDone",
		slog.Int("attempt", attempt),
		slog.String("connectionSpec", spec.String()),
		slog.Time("deadline", deadline),
		slog.Any("err", err),
		slog.String("errClass", op.ErrClassifier.Classify(err)),
		slog.String("failureKind", failureKind),
		slog.String("localAddr", safeconn.LocalAddr(conn)),
		slog.String("protocol", safeconn.Network(conn)),
		slog.String("remoteAddr", safeconn.RemoteAddr(conn)),
		slog.Time("t0", t0),
		slog.Time("t", op.TimeNow()),
		slog.String("tlsEngineName", op.Engine.Name()),
		slog.Any("tlsOfferedProtocols", config.NextProtos),
		slog.String("tlsServerName", config.ServerName),
		slog.Bool("tlsSkipVerify", config.InsecureSkipVerify),
	)
}
