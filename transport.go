// SPDX-License-Identifier: GPL-3.0-or-later

package connspec

// TransportView is read access to a transport's negotiable TLS parameters.
//
// By depending on an abstract view we allow for unit testing and for
// adapting transports this package does not know about. The enabled
// sets are ordered: their order is the order offered during the handshake.
type TransportView interface {
	// EnabledCipherSuites returns the cipher suites the transport
	// currently offers, by canonical name, most preferred first.
	EnabledCipherSuites() []string

	// EnabledTLSVersions returns the protocol versions the transport
	// currently offers, by canonical name, most preferred first.
	EnabledTLSVersions() []string
}

// Transport is a [TransportView] whose enabled sets can be replaced and
// that also exposes the superset of cipher suites it could enable.
//
// [Spec.ApplyTo] consumes this interface; the supported set is read only
// to check availability of [CipherSuiteFallbackSCSV].
type Transport interface {
	TransportView

	// SupportedCipherSuites returns every cipher suite the transport is
	// able to enable, by canonical name. This is a superset of
	// EnabledCipherSuites.
	SupportedCipherSuites() []string

	// SetEnabledCipherSuites replaces the enabled cipher suites.
	SetEnabledCipherSuites(names []string)

	// SetEnabledTLSVersions replaces the enabled protocol versions.
	SetEnabledTLSVersions(names []string)
}
