// SPDX-License-Identifier: GPL-3.0-or-later

package connspec

import (
	"crypto/tls"
	"slices"
	"sync"

	"github.com/bassosimone/runtimex"
)

// ConfigTransport adapts a [*tls.Config] to the [Transport] interface,
// letting [Spec.ApplyTo] and [*Selector.ConfigureTransport] operate on
// the standard library TLS engine.
//
// The adapter edits the wrapped config in place. Always wrap a clone
// dedicated to a single connection attempt, never a shared config.
//
// The standard library models enabled protocol versions as a [min, max]
// range, so a non-contiguous version set collapses to its full range.
// TLS 1.3 suite selection is likewise not configurable and the stdlib
// ignores TLS 1.3 entries in the cipher-suite list.
type ConfigTransport struct {
	config *tls.Config
}

var _ Transport = &ConfigTransport{}

// NewConfigTransport returns a [*ConfigTransport] wrapping the given
// config, which must not be nil.
func NewConfigTransport(config *tls.Config) *ConfigTransport {
	runtimex.Assert(config != nil)
	return &ConfigTransport{config: config}
}

// Config returns the wrapped [*tls.Config] with all edits applied.
func (ct *ConfigTransport) Config() *tls.Config {
	return ct.config
}

// stdlibVersions maps canonical version names to stdlib version IDs,
// highest first. SSLv3 is absent: the stdlib cannot enable it.
var stdlibVersions = []struct {
	id   uint16
	name string
}{
	{tls.VersionTLS13, VersionTLS13.Name()},
	{tls.VersionTLS12, VersionTLS12.Name()},
	{tls.VersionTLS11, VersionTLS11.Name()},
	{tls.VersionTLS10, VersionTLS10.Name()},
}

// EnabledTLSVersions implements [Transport].
//
// The result is derived from the config's MinVersion and MaxVersion,
// using the stdlib client defaults where a bound is zero.
func (ct *ConfigTransport) EnabledTLSVersions() []string {
	minVersion, maxVersion := ct.versionBounds()
	out := []string{}
	for _, version := range stdlibVersions {
		if version.id >= minVersion && version.id <= maxVersion {
			out = append(out, version.name)
		}
	}
	return out
}

// SetEnabledTLSVersions implements [Transport].
//
// Names the stdlib cannot map are ignored. When nothing maps the
// config is left untouched.
func (ct *ConfigTransport) SetEnabledTLSVersions(names []string) {
	var lowest, highest uint16
	for _, version := range stdlibVersions {
		if !slices.Contains(names, version.name) {
			continue
		}
		if lowest == 0 || version.id < lowest {
			lowest = version.id
		}
		if version.id > highest {
			highest = version.id
		}
	}
	if lowest == 0 {
		return
	}
	ct.config.MinVersion = lowest
	ct.config.MaxVersion = highest
}

// EnabledCipherSuites implements [Transport].
//
// With a nil CipherSuites list the stdlib uses its default secure
// suites, so that is what we report.
func (ct *ConfigTransport) EnabledCipherSuites() []string {
	if ct.config.CipherSuites == nil {
		out := []string{}
		for _, suite := range tls.CipherSuites() {
			out = append(out, suite.Name)
		}
		return out
	}
	out := []string{}
	for _, id := range ct.config.CipherSuites {
		out = append(out, stdlibSuiteName(id))
	}
	return out
}

// SetEnabledCipherSuites implements [Transport].
//
// Names the stdlib cannot map are silently dropped: an unknown name is
// simply absent from the offer, not an error.
func (ct *ConfigTransport) SetEnabledCipherSuites(names []string) {
	ids := stdlibSuiteIDs()
	out := []uint16{}
	for _, name := range names {
		if id, ok := ids[name]; ok {
			out = append(out, id)
		}
	}
	ct.config.CipherSuites = out
}

// SupportedCipherSuites implements [Transport].
//
// The result covers every suite the stdlib implements, secure and
// insecure, plus [CipherSuiteFallbackSCSV].
func (ct *ConfigTransport) SupportedCipherSuites() []string {
	out := []string{}
	for _, suite := range tls.CipherSuites() {
		out = append(out, suite.Name)
	}
	for _, suite := range tls.InsecureCipherSuites() {
		out = append(out, suite.Name)
	}
	out = append(out, CipherSuiteFallbackSCSV.Name())
	return out
}

func (ct *ConfigTransport) versionBounds() (minVersion, maxVersion uint16) {
	minVersion, maxVersion = ct.config.MinVersion, ct.config.MaxVersion
	if minVersion == 0 {
		minVersion = tls.VersionTLS12
	}
	if maxVersion == 0 {
		maxVersion = tls.VersionTLS13
	}
	return
}

// stdlibSuiteIDs maps canonical suite names to stdlib suite IDs.
var stdlibSuiteIDs = sync.OnceValue(func() map[string]uint16 {
	ids := make(map[string]uint16)
	for _, suite := range tls.CipherSuites() {
		ids[suite.Name] = suite.ID
	}
	for _, suite := range tls.InsecureCipherSuites() {
		ids[suite.Name] = suite.ID
	}
	ids[CipherSuiteFallbackSCSV.Name()] = tls.TLS_FALLBACK_SCSV
	return ids
})

func stdlibSuiteName(id uint16) string {
	if id == tls.TLS_FALLBACK_SCSV {
		return CipherSuiteFallbackSCSV.Name()
	}
	return tls.CipherSuiteName(id)
}
