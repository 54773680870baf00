// SPDX-License-Identifier: GPL-3.0-or-later

package connspec

import (
	"fmt"
	"slices"
)

// Selector walks an ordered list of candidate [Spec] values across the
// connection attempts made to a single destination.
//
// Construct one Selector per logical connection-establishment sequence
// with [NewSelector], use it for every retry to the same destination,
// and discard it on success or exhaustion. A Selector must not be
// shared across destinations nor called concurrently: its cursor and
// transport snapshot are mutable, order-dependent state.
//
// The Selector never retries internally and never reuses a failed
// transport. After a failed handshake the TLS parameters of a transport
// cannot be renegotiated in place: the caller must obtain a fresh
// transport and call [*Selector.ConfigureTransport] again.
type Selector struct {
	// candidates is the ordered preference list, most preferred first.
	candidates []Spec

	// nextIndex is the cursor into candidates. It only moves forward:
	// an index is never revisited within one attempt sequence.
	nextIndex int

	// lastView is a snapshot of the enabled sets of the most recently
	// configured transport, or nil before the first configuration. It
	// lets [*Selector.ConnectionFailed] evaluate the remaining
	// candidates without access to the (already closed) transport.
	lastView *transportSnapshot
}

// NewSelector returns a [*Selector] over the given candidates, which
// must be ordered most preferred first.
func NewSelector(candidates []Spec) *Selector {
	return &Selector{
		candidates: slices.Clone(candidates),
		nextIndex:  0,
		lastView:   nil,
	}
}

// ConfigureTransport applies the first remaining candidate compatible
// with the transport and returns it.
//
// Any candidate other than the very first one is applied as a fallback
// attempt, which arms the [CipherSuiteFallbackSCSV] downgrade signal.
// This is positional within the original candidate list: it also holds
// on the first call when earlier candidates were skipped as incompatible.
//
// When no remaining candidate is compatible this returns a
// [*NoCompatibleSpecError]. That failure is fatal for the destination:
// it is pointless to retry through this Selector.
func (s *Selector) ConfigureTransport(transport Transport) (Spec, error) {
	for i := s.nextIndex; i < len(s.candidates); i++ {
		spec := s.candidates[i]
		if !spec.IsCompatible(transport) {
			continue
		}
		s.nextIndex = i + 1
		s.lastView = snapshotTransport(transport)
		if spec.IsTLS() {
			spec.ApplyTo(transport, i > 0)
		}
		return spec, nil
	}
	return Spec{}, &NoCompatibleSpecError{
		IsFallback:          s.nextIndex > 0,
		EnabledCipherSuites: slices.Clone(transport.EnabledCipherSuites()),
		EnabledTLSVersions:  slices.Clone(transport.EnabledTLSVersions()),
	}
}

// ConnectionFailed reports whether the connection attempt that just
// failed with err is worth retrying with the next candidate.
//
// The answer is true only when all of the following hold:
//
//  1. err classifies as [FailureNegotiation]: certificate and trust
//     failures are never retried, because a weaker spec cannot fix a
//     trust problem and retrying could mask an active attack, and
//     plain transport I/O failures are not negotiation problems;
//
//  2. candidates remain beyond the cursor;
//
//  3. at least one remaining candidate was compatible with the
//     transport the way we last saw it, so a retry could actually
//     succeed.
//
// When the answer is true the caller must obtain a fresh transport and
// call [*Selector.ConfigureTransport] again.
func (s *Selector) ConnectionFailed(err error) bool {
	if ClassifyFailure(err) != FailureNegotiation {
		return false
	}
	if s.lastView == nil {
		return false
	}
	for _, spec := range s.candidates[s.nextIndex:] {
		if spec.IsCompatible(s.lastView) {
			return true
		}
	}
	return false
}

// NoCompatibleSpecError is returned by [*Selector.ConfigureTransport]
// when no remaining candidate spec is compatible with the transport.
type NoCompatibleSpecError struct {
	// IsFallback indicates whether earlier candidates had already been
	// consumed by previous attempts.
	IsFallback bool

	// EnabledCipherSuites is the transport's enabled cipher suites at
	// the time of the failure.
	EnabledCipherSuites []string

	// EnabledTLSVersions is the transport's enabled protocol versions
	// at the time of the failure.
	EnabledTLSVersions []string
}

var _ error = &NoCompatibleSpecError{}

// Error implements error.
func (e *NoCompatibleSpecError) Error() string {
	return fmt.Sprintf(
		"connspec: no compatible connection spec: isFallback=%t enabledTLSVersions=%v enabledCipherSuites=%v",
		e.IsFallback, e.EnabledTLSVersions, e.EnabledCipherSuites,
	)
}

// transportSnapshot is a point-in-time copy of a transport's enabled
// sets. It implements [TransportView] so [Spec.IsCompatible] can be
// evaluated after the transport itself is gone.
type transportSnapshot struct {
	enabledCipherSuites []string
	enabledTLSVersions  []string
}

var _ TransportView = &transportSnapshot{}

func snapshotTransport(view TransportView) *transportSnapshot {
	return &transportSnapshot{
		enabledCipherSuites: slices.Clone(view.EnabledCipherSuites()),
		enabledTLSVersions:  slices.Clone(view.EnabledTLSVersions()),
	}
}

// EnabledCipherSuites implements [TransportView].
func (snap *transportSnapshot) EnabledCipherSuites() []string {
	return snap.enabledCipherSuites
}

// EnabledTLSVersions implements [TransportView].
func (snap *transportSnapshot) EnabledTLSVersions() []string {
	return snap.enabledTLSVersions
}
