// SPDX-License-Identifier: GPL-3.0-or-later

package connspec

// TLSVersion identifies a protocol version by its canonical wire name.
//
// Two values are equal when their canonical names are equal, so a
// [TLSVersion] can be used directly as a map key.
type TLSVersion struct {
	name string
}

// TLSVersionByName returns the [TLSVersion] with the given canonical name.
//
// Like [CipherSuiteByName], names unknown to this package are accepted
// unchanged, so callers can enable protocol versions their transport
// supports before this package learns about them.
func TLSVersionByName(name string) TLSVersion {
	return TLSVersion{name: name}
}

// Name returns the canonical wire name of the protocol version.
func (v TLSVersion) Name() string {
	return v.name
}

// String implements [fmt.Stringer].
func (v TLSVersion) String() string {
	return v.name
}

// Protocol versions known to this package.
var (
	VersionTLS13 = TLSVersionByName("TLSv1.3")
	VersionTLS12 = TLSVersionByName("TLSv1.2")
	VersionTLS11 = TLSVersionByName("TLSv1.1")
	VersionTLS10 = TLSVersionByName("TLSv1")
	VersionSSL30 = TLSVersionByName("SSLv3")
)
