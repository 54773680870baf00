// SPDX-License-Identifier: GPL-3.0-or-later

package connspec

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net"
	"slices"

	"github.com/bassosimone/netstub"
	"github.com/bassosimone/slogstub"
	"github.com/bassosimone/tlsstub"
)

// newCapturingLogger returns a logger that captures all log records into the
// returned slice. The caller can inspect the slice after exercising the code
// under test to verify which events were emitted.
func newCapturingLogger() (*slog.Logger, *[]slog.Record) {
	var records []slog.Record
	handler := &slogstub.FuncHandler{
		EnabledFunc: func(ctx context.Context, level slog.Level) bool {
			return true
		},
		HandleFunc: func(ctx context.Context, record slog.Record) error {
			records = append(records, record)
			return nil
		},
	}
	return slog.New(handler), &records
}

// newMinimalConn returns a [*netstub.FuncConn] with only LocalAddrFunc and
// RemoteAddrFunc set. This is the minimum needed for code that calls
// [safeconn.LocalAddr], [safeconn.RemoteAddr], and [safeconn.Network]
// while logging.
func newMinimalConn() *netstub.FuncConn {
	return &netstub.FuncConn{
		LocalAddrFunc:  func() net.Addr { return &net.TCPAddr{} },
		RemoteAddrFunc: func() net.Addr { return &net.TCPAddr{} },
	}
}

// newMockTLSEngine returns a [*tlsstub.FuncTLSEngine] whose ClientFunc
// invokes the given factory for each attempt. The NameFunc returns "mock".
func newMockTLSEngine(factory func(conn net.Conn, config *tls.Config) TLSConn) *tlsstub.FuncTLSEngine[TLSConn] {
	return &tlsstub.FuncTLSEngine[TLSConn]{
		ClientFunc: factory,
		NameFunc: func() string {
			return "mock"
		},
		ParrotFunc: func() string {
			return ""
		},
	}
}

// fakeTransport implements [Transport] in memory. No stub module models
// the enabled/supported cipher-suite surface, hence the local fixture.
type fakeTransport struct {
	// enabledCipherSuites is the mutable enabled cipher-suite list.
	enabledCipherSuites []string

	// enabledTLSVersions is the mutable enabled protocol-version list.
	enabledTLSVersions []string

	// supportedCipherSuites is the fixed supported superset.
	supportedCipherSuites []string

	// setCipherSuiteCalls counts SetEnabledCipherSuites invocations.
	setCipherSuiteCalls int

	// setTLSVersionCalls counts SetEnabledTLSVersions invocations.
	setTLSVersionCalls int
}

var _ Transport = &fakeTransport{}

func (ft *fakeTransport) EnabledCipherSuites() []string {
	return slices.Clone(ft.enabledCipherSuites)
}

func (ft *fakeTransport) EnabledTLSVersions() []string {
	return slices.Clone(ft.enabledTLSVersions)
}

func (ft *fakeTransport) SupportedCipherSuites() []string {
	return slices.Clone(ft.supportedCipherSuites)
}

func (ft *fakeTransport) SetEnabledCipherSuites(names []string) {
	ft.setCipherSuiteCalls++
	ft.enabledCipherSuites = slices.Clone(names)
}

func (ft *fakeTransport) SetEnabledTLSVersions(names []string) {
	ft.setTLSVersionCalls++
	ft.enabledTLSVersions = slices.Clone(names)
}

// serveTLS12Only answers one TLS handshake on conn in a background
// goroutine with the protocol pinned to TLS 1.2 and no certificate
// configured. A client that does not offer TLS 1.2 receives a
// protocol_version alert; one that does receives an alert during
// certificate selection. Either way the handshake never succeeds, which
// is all the mismatch tests need.
func serveTLS12Only(conn net.Conn) {
	go func() {
		server := tls.Server(conn, &tls.Config{
			MinVersion: tls.VersionTLS12,
			MaxVersion: tls.VersionTLS12,
		})
		_ = server.Handshake()
		server.Close()
	}()
}

// newVersionSpec returns a TLS spec accepting any enabled cipher suite
// and exactly the given protocol versions.
func newVersionSpec(versions ...TLSVersion) Spec {
	spec, err := NewBuilderFrom(ModernTLS).
		AllEnabledCipherSuites().
		TLSVersions(versions...).
		Build()
	if err != nil {
		panic(err)
	}
	return spec
}
