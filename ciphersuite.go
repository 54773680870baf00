// SPDX-License-Identifier: GPL-3.0-or-later

package connspec

// CipherSuite identifies a TLS cipher suite by its canonical wire name.
//
// Two values are equal when their canonical names are equal, so a
// [CipherSuite] can be used directly as a map key.
type CipherSuite struct {
	name string
}

// CipherSuiteByName returns the [CipherSuite] with the given canonical name.
//
// Names unknown to this package are accepted unchanged. This allows callers
// to reference cipher suites supported by their transport before this
// package learns about them.
func CipherSuiteByName(name string) CipherSuite {
	return CipherSuite{name: name}
}

// Name returns the canonical wire name of the cipher suite.
func (c CipherSuite) Name() string {
	return c.name
}

// String implements [fmt.Stringer].
func (c CipherSuite) String() string {
	return c.name
}

// CipherSuiteFallbackSCSV is the reserved downgrade-signaling pseudo
// cipher suite defined by RFC 7507. It is not a real cipher: appending
// it to the suites offered by a fallback connection attempt lets a
// conforming server detect a forced protocol downgrade. Transports
// advertise support for it by exact name match in their supported set.
var CipherSuiteFallbackSCSV = CipherSuiteByName("TLS_FALLBACK_SCSV")

// Cipher suites known to this package, named exactly like their wire
// names following the crypto/tls convention. The set is intentionally
// small: use [CipherSuiteByName] for anything not listed here.
var (
	// TLS 1.3 suites.
	TLS_AES_128_GCM_SHA256       = CipherSuiteByName("TLS_AES_128_GCM_SHA256")
	TLS_AES_256_GCM_SHA384       = CipherSuiteByName("TLS_AES_256_GCM_SHA384")
	TLS_CHACHA20_POLY1305_SHA256 = CipherSuiteByName("TLS_CHACHA20_POLY1305_SHA256")

	// Modern TLS 1.2 suites with forward secrecy.
	TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256       = CipherSuiteByName("TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256")
	TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256         = CipherSuiteByName("TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256")
	TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384       = CipherSuiteByName("TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384")
	TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384         = CipherSuiteByName("TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384")
	TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256 = CipherSuiteByName("TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256")
	TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256   = CipherSuiteByName("TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256")

	// Legacy suites retained for broad compatibility.
	TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA = CipherSuiteByName("TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA")
	TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA   = CipherSuiteByName("TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA")
	TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA   = CipherSuiteByName("TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA")
	TLS_RSA_WITH_AES_128_GCM_SHA256      = CipherSuiteByName("TLS_RSA_WITH_AES_128_GCM_SHA256")
	TLS_RSA_WITH_AES_256_GCM_SHA384      = CipherSuiteByName("TLS_RSA_WITH_AES_256_GCM_SHA384")
	TLS_RSA_WITH_AES_128_CBC_SHA         = CipherSuiteByName("TLS_RSA_WITH_AES_128_CBC_SHA")
	TLS_RSA_WITH_AES_256_CBC_SHA         = CipherSuiteByName("TLS_RSA_WITH_AES_256_CBC_SHA")
	TLS_RSA_WITH_3DES_EDE_CBC_SHA        = CipherSuiteByName("TLS_RSA_WITH_3DES_EDE_CBC_SHA")
)
