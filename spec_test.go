// SPDX-License-Identifier: GPL-3.0-or-later

package connspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Build fails with a fixed message when an explicit list is empty.
func TestBuilderEmptyLists(t *testing.T) {
	t.Run("no cipher suites", func(t *testing.T) {
		_, err := NewBuilderFrom(ModernTLS).CipherSuites().Build()
		require.ErrorIs(t, err, ErrNoCipherSuites)
		assert.EqualError(t, err, "At least one cipher suite is required")
	})

	t.Run("no TLS versions", func(t *testing.T) {
		_, err := NewBuilderFrom(ModernTLS).TLSVersions().Build()
		require.ErrorIs(t, err, ErrNoTLSVersions)
		assert.EqualError(t, err, "At least one TLS version is required")
	})

	t.Run("the first setter error wins", func(t *testing.T) {
		_, err := NewBuilderFrom(ModernTLS).TLSVersions().CipherSuites().Build()
		require.ErrorIs(t, err, ErrNoTLSVersions)
	})
}

// NewBuilder(false) produces a cleartext spec.
func TestBuilderCleartext(t *testing.T) {
	spec, err := NewBuilder(false).Build()
	require.NoError(t, err)
	assert.False(t, spec.IsTLS())
	assert.True(t, spec.Equal(Cleartext))
}

// Builder setters populate the spec fields in preference order.
func TestBuilderExplicitFields(t *testing.T) {
	spec, err := NewBuilder(true).
		CipherSuites(TLS_RSA_WITH_AES_128_CBC_SHA).
		TLSVersions(VersionTLS12).
		SupportsTLSExtensions(true).
		Build()
	require.NoError(t, err)

	assert.True(t, spec.IsTLS())
	assert.Equal(t, []CipherSuite{TLS_RSA_WITH_AES_128_CBC_SHA}, spec.CipherSuites())
	assert.Equal(t, []TLSVersion{VersionTLS12}, spec.TLSVersions())
	assert.True(t, spec.SupportsTLSExtensions())
}

// Leaving the cipher dimension unset keeps the "all enabled" sentinel.
func TestBuilderDefaultCipherSuites(t *testing.T) {
	spec, err := NewBuilder(true).
		TLSVersions(VersionTLS12).
		SupportsTLSExtensions(true).
		Build()
	require.NoError(t, err)

	assert.Nil(t, spec.CipherSuites())
	assert.Equal(t, []TLSVersion{VersionTLS12}, spec.TLSVersions())
}

// AllEnabled setters reset a dimension to the sentinel.
func TestBuilderAllEnabled(t *testing.T) {
	spec, err := NewBuilderFrom(ModernTLS).
		AllEnabledCipherSuites().
		AllEnabledTLSVersions().
		Build()
	require.NoError(t, err)

	assert.Nil(t, spec.CipherSuites())
	assert.Nil(t, spec.TLSVersions())
	assert.True(t, spec.SupportsTLSExtensions())
}

// Arbitrary name strings are accepted: this allows enabling suites and
// versions supported by the transport but unknown to this package.
func TestBuilderArbitraryNames(t *testing.T) {
	spec, err := NewBuilderFrom(ModernTLS).
		CipherSuiteNames("MAGIC-CIPHER").
		TLSVersionNames("TLS9k").
		Build()
	require.NoError(t, err)

	assert.Equal(t, []CipherSuite{CipherSuiteByName("MAGIC-CIPHER")}, spec.CipherSuites())
	assert.Equal(t, []TLSVersion{TLSVersionByName("TLS9k")}, spec.TLSVersions())
}

// NewBuilderFrom copies every field of the seed.
func TestNewBuilderFrom(t *testing.T) {
	copied, err := NewBuilderFrom(ModernTLS).Build()
	require.NoError(t, err)
	assert.True(t, copied.Equal(ModernTLS))
}

// IsCompatible requires a non-empty intersection per explicit dimension.
func TestSpecIsCompatible(t *testing.T) {
	spec, err := NewBuilder(true).
		CipherSuites(TLS_RSA_WITH_AES_128_CBC_SHA).
		TLSVersions(VersionTLS12).
		Build()
	require.NoError(t, err)

	tests := []struct {
		// name describes what this test case verifies.
		name string

		// spec is the spec under test.
		spec Spec

		// transport is the transport state to check against.
		transport *fakeTransport

		// want is the expected compatibility answer.
		want bool
	}{
		{
			name: "both dimensions satisfied",
			spec: spec,
			transport: &fakeTransport{
				enabledCipherSuites: []string{
					TLS_RSA_WITH_AES_128_GCM_SHA256.Name(),
					TLS_RSA_WITH_AES_128_CBC_SHA.Name(),
				},
				enabledTLSVersions: []string{"TLSv1.3", "TLSv1.2"},
			},
			want: true,
		},

		{
			name: "required cipher suite missing",
			spec: spec,
			transport: &fakeTransport{
				enabledCipherSuites: []string{TLS_RSA_WITH_AES_128_GCM_SHA256.Name()},
				enabledTLSVersions:  []string{"TLSv1.3", "TLSv1.2"},
			},
			want: false,
		},

		{
			name: "required TLS version missing",
			spec: spec,
			transport: &fakeTransport{
				enabledCipherSuites: []string{TLS_RSA_WITH_AES_128_CBC_SHA.Name()},
				enabledTLSVersions:  []string{"TLSv1.1"},
			},
			want: false,
		},

		{
			name: "all enabled sentinel ignores transport state",
			spec: newVersionSpec(VersionTLS12),
			transport: &fakeTransport{
				enabledCipherSuites: []string{},
				enabledTLSVersions:  []string{"TLSv1.2"},
			},
			want: true,
		},

		{
			name:      "cleartext is always compatible",
			spec:      Cleartext,
			transport: &fakeTransport{},
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.spec.IsCompatible(tt.transport))
		})
	}
}

// ApplyTo reorders explicit dimensions to the spec's preference order,
// restricted to the transport's enabled set.
func TestSpecApplyToExplicit(t *testing.T) {
	spec, err := NewBuilder(true).
		CipherSuiteNames("A", "B", "C").
		TLSVersionNames("TLSv1.3", "TLSv1.2").
		Build()
	require.NoError(t, err)

	transport := &fakeTransport{
		enabledCipherSuites: []string{"C", "X", "A"},
		enabledTLSVersions:  []string{"TLSv1.2", "TLSv1.3", "TLSv1.1"},
	}

	spec.ApplyTo(transport, false)

	assert.Equal(t, []string{"A", "C"}, transport.enabledCipherSuites)
	assert.Equal(t, []string{"TLSv1.3", "TLSv1.2"}, transport.enabledTLSVersions)
}

// ApplyTo leaves an "all enabled" dimension untouched, including its order.
func TestSpecApplyToSentinel(t *testing.T) {
	spec, err := NewBuilderFrom(ModernTLS).
		AllEnabledCipherSuites().
		AllEnabledTLSVersions().
		Build()
	require.NoError(t, err)

	transport := &fakeTransport{
		enabledCipherSuites: []string{"B", "A"},
		enabledTLSVersions:  []string{"TLSv1.2", "TLSv1.3"},
	}

	spec.ApplyTo(transport, false)

	assert.Equal(t, []string{"B", "A"}, transport.enabledCipherSuites)
	assert.Equal(t, []string{"TLSv1.2", "TLSv1.3"}, transport.enabledTLSVersions)
	assert.Equal(t, 0, transport.setCipherSuiteCalls)
	assert.Equal(t, 0, transport.setTLSVersionCalls)
}

// ApplyTo appends the fallback SCSV iff this is a fallback attempt and
// the transport supports the pseudo suite.
func TestSpecApplyToFallbackSignal(t *testing.T) {
	t.Run("fallback with SCSV supported", func(t *testing.T) {
		transport := &fakeTransport{
			enabledCipherSuites:   []string{"A", "B"},
			enabledTLSVersions:    []string{"TLSv1.2"},
			supportedCipherSuites: []string{"A", "B", "TLS_FALLBACK_SCSV"},
		}
		spec, err := NewBuilder(true).
			CipherSuiteNames("A").
			TLSVersionNames("TLSv1.2").
			Build()
		require.NoError(t, err)

		spec.ApplyTo(transport, true)

		assert.Equal(t, []string{"A", "TLS_FALLBACK_SCSV"}, transport.enabledCipherSuites)
	})

	t.Run("fallback with SCSV unsupported", func(t *testing.T) {
		transport := &fakeTransport{
			enabledCipherSuites:   []string{"A", "B"},
			enabledTLSVersions:    []string{"TLSv1.2"},
			supportedCipherSuites: []string{"A", "B"},
		}
		spec, err := NewBuilder(true).
			CipherSuiteNames("A").
			TLSVersionNames("TLSv1.2").
			Build()
		require.NoError(t, err)

		spec.ApplyTo(transport, true)

		assert.Equal(t, []string{"A"}, transport.enabledCipherSuites)
	})

	t.Run("not a fallback never appends", func(t *testing.T) {
		transport := &fakeTransport{
			enabledCipherSuites:   []string{"A", "B"},
			enabledTLSVersions:    []string{"TLSv1.2"},
			supportedCipherSuites: []string{"A", "B", "TLS_FALLBACK_SCSV"},
		}
		spec, err := NewBuilder(true).
			CipherSuiteNames("A").
			TLSVersionNames("TLSv1.2").
			Build()
		require.NoError(t, err)

		spec.ApplyTo(transport, false)

		assert.Equal(t, []string{"A"}, transport.enabledCipherSuites)
	})

	t.Run("sentinel ciphers still carry the signal", func(t *testing.T) {
		transport := &fakeTransport{
			enabledCipherSuites:   []string{"B", "A"},
			enabledTLSVersions:    []string{"TLSv1.2"},
			supportedCipherSuites: []string{"A", "B", "TLS_FALLBACK_SCSV"},
		}
		spec := newVersionSpec(VersionTLS12)

		spec.ApplyTo(transport, true)

		assert.Equal(t, []string{"B", "A", "TLS_FALLBACK_SCSV"}, transport.enabledCipherSuites)
	})
}

// Equal compares all fields; explicit lists are order sensitive.
func TestSpecEqual(t *testing.T) {
	t.Run("identical fields in identical order", func(t *testing.T) {
		first, err := NewBuilder(true).
			CipherSuiteNames("A", "B").
			TLSVersionNames("TLSv1.3", "TLSv1.2").
			SupportsTLSExtensions(true).
			Build()
		require.NoError(t, err)
		second, err := NewBuilder(true).
			CipherSuiteNames("A", "B").
			TLSVersionNames("TLSv1.3", "TLSv1.2").
			SupportsTLSExtensions(true).
			Build()
		require.NoError(t, err)

		assert.True(t, first.Equal(second))
		assert.Equal(t, first.String(), second.String())
	})

	t.Run("different order is a different spec", func(t *testing.T) {
		first, err := NewBuilder(true).
			CipherSuiteNames("A", "B").
			TLSVersionNames("TLSv1.2").
			Build()
		require.NoError(t, err)
		second, err := NewBuilder(true).
			CipherSuiteNames("B", "A").
			TLSVersionNames("TLSv1.2").
			Build()
		require.NoError(t, err)

		assert.False(t, first.Equal(second))
	})

	t.Run("all cleartext specs are equal", func(t *testing.T) {
		first, err := NewBuilder(false).Build()
		require.NoError(t, err)
		assert.True(t, first.Equal(Cleartext))
	})

	t.Run("presets and sentinel variants dedup", func(t *testing.T) {
		allCipherSuites, err := NewBuilderFrom(ModernTLS).AllEnabledCipherSuites().Build()
		require.NoError(t, err)
		allTLSVersions, err := NewBuilderFrom(ModernTLS).AllEnabledTLSVersions().Build()
		require.NoError(t, err)

		specs := []Spec{ModernTLS, CompatibleTLS, Cleartext, allCipherSuites, allTLSVersions}
		for i, left := range specs {
			for j, right := range specs {
				if i == j {
					assert.True(t, left.Equal(right))
					continue
				}
				assert.False(t, left.Equal(right), "specs %d and %d should differ", i, j)
			}
		}
	})
}

// String renders a fixed-field record with "all enabled" for sentinels.
func TestSpecString(t *testing.T) {
	t.Run("all enabled", func(t *testing.T) {
		spec, err := NewBuilderFrom(ModernTLS).
			AllEnabledCipherSuites().
			AllEnabledTLSVersions().
			Build()
		require.NoError(t, err)
		assert.Equal(
			t,
			"Spec(cipherSuites=[all enabled], tlsVersions=[all enabled], supportsTLSExtensions=true)",
			spec.String(),
		)
	})

	t.Run("explicit lists", func(t *testing.T) {
		spec, err := NewBuilderFrom(ModernTLS).
			CipherSuites(TLS_RSA_WITH_AES_128_CBC_SHA).
			TLSVersions(VersionTLS12).
			Build()
		require.NoError(t, err)
		assert.Equal(
			t,
			"Spec(cipherSuites=[TLS_RSA_WITH_AES_128_CBC_SHA], tlsVersions=[TLSv1.2], supportsTLSExtensions=true)",
			spec.String(),
		)
	})

	t.Run("cleartext", func(t *testing.T) {
		assert.Equal(t, "Spec(cleartext)", Cleartext.String())
	})
}

// The presets hold the documented shape.
func TestPredefinedSpecs(t *testing.T) {
	assert.True(t, ModernTLS.IsTLS())
	assert.Equal(t, []TLSVersion{VersionTLS13, VersionTLS12}, ModernTLS.TLSVersions())
	assert.True(t, ModernTLS.SupportsTLSExtensions())

	assert.True(t, CompatibleTLS.IsTLS())
	assert.Equal(
		t,
		[]TLSVersion{VersionTLS13, VersionTLS12, VersionTLS11, VersionTLS10},
		CompatibleTLS.TLSVersions(),
	)

	assert.False(t, Cleartext.IsTLS())
}
