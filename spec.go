// SPDX-License-Identifier: GPL-3.0-or-later

package connspec

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/bassosimone/runtimex"
)

// Errors returned by [*Builder.Build] when an explicit preference list
// is empty. An empty list is always a caller bug: there is nothing to
// negotiate with, so the spec would be compatible with no transport.
var (
	ErrNoCipherSuites = errors.New("At least one cipher suite is required")
	ErrNoTLSVersions  = errors.New("At least one TLS version is required")
)

// Spec describes the TLS parameters acceptable for one connection attempt.
//
// A Spec is an immutable value created with [*Builder.Build]. Values are
// safe to share across goroutines and across [*Selector] instances.
//
// For the cipher-suite and protocol-version dimensions a nil internal
// list is the "all enabled" sentinel: accept whatever the transport
// currently offers, unfiltered and in the transport's own order.
type Spec struct {
	// isTLS indicates whether this spec negotiates TLS at all. When
	// false the remaining fields are meaningless.
	isTLS bool

	// cipherSuites lists acceptable suites by canonical name, most
	// preferred first. Nil means "all enabled".
	cipherSuites []string

	// tlsVersions lists acceptable protocol versions by canonical
	// name, most preferred first. Nil means "all enabled".
	tlsVersions []string

	// supportsTLSExtensions indicates whether protocol extensions
	// such as SNI and ALPN may be offered.
	supportsTLSExtensions bool
}

// Predefined specs, built once at startup and immutable thereafter.
var (
	// ModernTLS is a secure configuration for connecting to current
	// servers: TLS 1.3 and 1.2 with forward-secret or AEAD suites.
	ModernTLS = runtimex.PanicOnError1(NewBuilder(true).
			CipherSuites(
			TLS_AES_128_GCM_SHA256,
			TLS_AES_256_GCM_SHA384,
			TLS_CHACHA20_POLY1305_SHA256,
			TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
			TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
		).
		TLSVersions(VersionTLS13, VersionTLS12).
		SupportsTLSExtensions(true).
		Build())

	// CompatibleTLS extends [ModernTLS] with legacy suites and protocol
	// versions for servers that have not been updated in a while. Use it
	// as a fallback candidate after [ModernTLS], not as the first choice.
	CompatibleTLS = runtimex.PanicOnError1(NewBuilderFrom(ModernTLS).
			CipherSuites(
			TLS_AES_128_GCM_SHA256,
			TLS_AES_256_GCM_SHA384,
			TLS_CHACHA20_POLY1305_SHA256,
			TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
			TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
			TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA,
			TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA,
			TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA,
			TLS_RSA_WITH_AES_128_GCM_SHA256,
			TLS_RSA_WITH_AES_256_GCM_SHA384,
			TLS_RSA_WITH_AES_128_CBC_SHA,
			TLS_RSA_WITH_AES_256_CBC_SHA,
		).
		TLSVersions(VersionTLS13, VersionTLS12, VersionTLS11, VersionTLS10).
		Build())

	// Cleartext is the unencrypted, unauthenticated configuration.
	Cleartext = runtimex.PanicOnError1(NewBuilder(false).Build())
)

// IsTLS returns whether this spec negotiates TLS at all.
func (s Spec) IsTLS() bool {
	return s.isTLS
}

// CipherSuites returns the acceptable cipher suites, most preferred
// first, or nil when the spec accepts all enabled suites.
func (s Spec) CipherSuites() []CipherSuite {
	if s.cipherSuites == nil {
		return nil
	}
	out := make([]CipherSuite, 0, len(s.cipherSuites))
	for _, name := range s.cipherSuites {
		out = append(out, CipherSuiteByName(name))
	}
	return out
}

// TLSVersions returns the acceptable protocol versions, most preferred
// first, or nil when the spec accepts all enabled versions.
func (s Spec) TLSVersions() []TLSVersion {
	if s.tlsVersions == nil {
		return nil
	}
	out := make([]TLSVersion, 0, len(s.tlsVersions))
	for _, name := range s.tlsVersions {
		out = append(out, TLSVersionByName(name))
	}
	return out
}

// SupportsTLSExtensions returns whether protocol extensions may be offered.
func (s Spec) SupportsTLSExtensions() bool {
	return s.supportsTLSExtensions
}

// IsCompatible returns whether a connection attempt using this spec
// could succeed against a transport in the given state.
//
// An explicit dimension is compatible when its intersection with the
// transport's enabled set is non-empty; an "all enabled" dimension is
// compatible regardless of the transport's state. Cleartext specs are
// always compatible.
func (s Spec) IsCompatible(view TransportView) bool {
	if !s.isTLS {
		return true
	}
	if s.tlsVersions != nil && !intersects(s.tlsVersions, view.EnabledTLSVersions()) {
		return false
	}
	if s.cipherSuites != nil && !intersects(s.cipherSuites, view.EnabledCipherSuites()) {
		return false
	}
	return true
}

// ApplyTo configures the transport to offer exactly what this spec allows.
//
// Explicit dimensions are replaced with the intersection between the
// spec's preference list and the transport's enabled set, in the spec's
// preference order. "All enabled" dimensions are left untouched.
//
// When isFallback is true and the transport's supported suites include
// [CipherSuiteFallbackSCSV], the pseudo suite is appended to the offered
// cipher suites so a conforming server can detect a forced downgrade.
// It is never appended when isFallback is false.
//
// The spec must be a TLS spec and should be compatible with the
// transport, otherwise the transport may end up with an empty offer.
func (s Spec) ApplyTo(transport Transport, isFallback bool) {
	runtimex.Assert(s.isTLS)

	if s.tlsVersions != nil {
		transport.SetEnabledTLSVersions(intersect(s.tlsVersions, transport.EnabledTLSVersions()))
	}

	suites := slices.Clone(transport.EnabledCipherSuites())
	explicit := s.cipherSuites != nil
	if explicit {
		suites = intersect(s.cipherSuites, transport.EnabledCipherSuites())
	}
	if isFallback && slices.Contains(transport.SupportedCipherSuites(), CipherSuiteFallbackSCSV.Name()) {
		suites = append(suites, CipherSuiteFallbackSCSV.Name())
		// The sentinel normally leaves the enabled set untouched but the
		// fallback signal must still reach the wire.
		explicit = true
	}
	if explicit {
		transport.SetEnabledCipherSuites(suites)
	}
}

// Equal returns whether the two specs have the same fields. Explicit
// preference lists compare element-wise: the same names in a different
// order are a different spec. All cleartext specs are equal.
func (s Spec) Equal(other Spec) bool {
	if s.isTLS != other.isTLS {
		return false
	}
	if !s.isTLS {
		return true
	}
	return slices.Equal(s.cipherSuites, other.cipherSuites) &&
		slices.Equal(s.tlsVersions, other.tlsVersions) &&
		s.supportsTLSExtensions == other.supportsTLSExtensions
}

// String implements [fmt.Stringer]. The rendering is stable: equal
// specs render identically, so the string doubles as a dedup key.
func (s Spec) String() string {
	if !s.isTLS {
		return "Spec(cleartext)"
	}
	return fmt.Sprintf(
		"Spec(cipherSuites=%s, tlsVersions=%s, supportsTLSExtensions=%t)",
		renderNames(s.cipherSuites), renderNames(s.tlsVersions), s.supportsTLSExtensions,
	)
}

func renderNames(names []string) string {
	if names == nil {
		return "[all enabled]"
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// intersect returns the elements of preferred that also occur in
// enabled, in the order of preferred.
func intersect(preferred, enabled []string) []string {
	out := []string{}
	for _, name := range preferred {
		if slices.Contains(enabled, name) {
			out = append(out, name)
		}
	}
	return out
}

// intersects returns whether preferred and enabled share an element.
func intersects(preferred, enabled []string) bool {
	for _, name := range preferred {
		if slices.Contains(enabled, name) {
			return true
		}
	}
	return false
}

// Builder incrementally assembles a [Spec].
//
// The zero value is not ready to use: create builders with [NewBuilder]
// or [NewBuilderFrom]. Builders are not safe for concurrent use.
type Builder struct {
	// spec is the work-in-progress value.
	spec Spec

	// err records the first setter error, surfaced by [Build].
	err error
}

// NewBuilder returns a [*Builder] for a fresh spec. The isTLS argument
// selects between a TLS spec and a cleartext spec; for cleartext specs
// every other builder operation is meaningless.
func NewBuilder(isTLS bool) *Builder {
	return &Builder{spec: Spec{isTLS: isTLS}}
}

// NewBuilderFrom returns a [*Builder] seeded with the fields of an
// existing spec.
func NewBuilderFrom(seed Spec) *Builder {
	return &Builder{spec: Spec{
		isTLS:                 seed.isTLS,
		cipherSuites:          slices.Clone(seed.cipherSuites),
		tlsVersions:           slices.Clone(seed.tlsVersions),
		supportsTLSExtensions: seed.supportsTLSExtensions,
	}}
}

// CipherSuites sets the acceptable cipher suites, most preferred first.
// Setting zero suites causes [Build] to fail with [ErrNoCipherSuites].
func (b *Builder) CipherSuites(suites ...CipherSuite) *Builder {
	names := make([]string, 0, len(suites))
	for _, suite := range suites {
		names = append(names, suite.Name())
	}
	return b.CipherSuiteNames(names...)
}

// CipherSuiteNames is like [*Builder.CipherSuites] but accepts raw
// canonical names, including names unknown to this package.
func (b *Builder) CipherSuiteNames(names ...string) *Builder {
	runtimex.Assert(b.spec.isTLS)
	if len(names) < 1 {
		b.recordError(ErrNoCipherSuites)
		return b
	}
	b.spec.cipherSuites = slices.Clone(names)
	return b
}

// TLSVersions sets the acceptable protocol versions, most preferred first.
// Setting zero versions causes [Build] to fail with [ErrNoTLSVersions].
func (b *Builder) TLSVersions(versions ...TLSVersion) *Builder {
	names := make([]string, 0, len(versions))
	for _, version := range versions {
		names = append(names, version.Name())
	}
	return b.TLSVersionNames(names...)
}

// TLSVersionNames is like [*Builder.TLSVersions] but accepts raw
// canonical names, including names unknown to this package.
func (b *Builder) TLSVersionNames(names ...string) *Builder {
	runtimex.Assert(b.spec.isTLS)
	if len(names) < 1 {
		b.recordError(ErrNoTLSVersions)
		return b
	}
	b.spec.tlsVersions = slices.Clone(names)
	return b
}

// AllEnabledCipherSuites resets the cipher-suite dimension to the
// "all enabled" sentinel, clearing any explicit list.
func (b *Builder) AllEnabledCipherSuites() *Builder {
	runtimex.Assert(b.spec.isTLS)
	b.spec.cipherSuites = nil
	return b
}

// AllEnabledTLSVersions resets the protocol-version dimension to the
// "all enabled" sentinel, clearing any explicit list.
func (b *Builder) AllEnabledTLSVersions() *Builder {
	runtimex.Assert(b.spec.isTLS)
	b.spec.tlsVersions = nil
	return b
}

// SupportsTLSExtensions sets whether protocol extensions may be offered.
func (b *Builder) SupportsTLSExtensions(value bool) *Builder {
	runtimex.Assert(b.spec.isTLS)
	b.spec.supportsTLSExtensions = value
	return b
}

// Build returns the immutable [Spec] or the first setter error.
func (b *Builder) Build() (Spec, error) {
	if b.err != nil {
		return Spec{}, b.err
	}
	return b.spec, nil
}

func (b *Builder) recordError(err error) {
	if b.err == nil {
		b.err = err
	}
}
