// SPDX-License-Identifier: GPL-3.0-or-later

package connspec

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"strings"
)

// FailureKind is the retry-relevant category of a connection failure.
type FailureKind int

const (
	// FailureTransport is a non-handshake I/O failure, such as a
	// connection reset. Not a negotiation problem, never retried.
	FailureTransport = FailureKind(iota)

	// FailureNegotiation is a handshake failure caused by a protocol
	// or cipher-suite mismatch. The only retryable kind.
	FailureNegotiation

	// FailureTrust is a certificate or trust-validation failure.
	// Never retried: a weaker spec cannot fix a trust problem, and
	// retrying could mask an active attack.
	FailureTrust
)

// String implements [fmt.Stringer].
func (k FailureKind) String() string {
	switch k {
	case FailureNegotiation:
		return "negotiation"
	case FailureTrust:
		return "trust"
	default:
		return "transport"
	}
}

// ClassifyFailure maps a connection-attempt error to its [FailureKind].
//
// The whole cause chain is inspected and trust markers take precedence
// over negotiation markers, so a handshake alert whose cause is a
// certificate problem can never classify as retryable. A nil error
// classifies as [FailureTransport].
func ClassifyFailure(err error) FailureKind {
	if err == nil {
		return FailureTransport
	}
	if isTrustFailure(err) {
		return FailureTrust
	}
	if isNegotiationFailure(err) {
		return FailureNegotiation
	}
	return FailureTransport
}

// isTrustFailure returns whether the cause chain contains a certificate
// or trust-validation failure.
func isTrustFailure(err error) bool {
	var (
		certVerify    *tls.CertificateVerificationError
		hostname      x509.HostnameError
		certInvalid   x509.CertificateInvalidError
		unknownAuth   x509.UnknownAuthorityError
		systemRoots   x509.SystemRootsError
		insecureAlgo  x509.InsecureAlgorithmError
		unhandledCrit x509.UnhandledCriticalExtension
	)
	return errors.As(err, &certVerify) ||
		errors.As(err, &hostname) ||
		errors.As(err, &certInvalid) ||
		errors.As(err, &unknownAuth) ||
		errors.As(err, &systemRoots) ||
		errors.As(err, &insecureAlgo) ||
		errors.As(err, &unhandledCrit)
}

// isNegotiationFailure returns whether the cause chain contains a
// handshake-level protocol or cipher negotiation failure.
//
// Besides the typed markers ([tls.AlertError], only produced on the
// QUIC path, and [tls.RecordHeaderError]), this recognizes the shapes
// crypto/tls actually produces over TCP: a fatal alert from the peer
// surfaces as a [*net.OpError] with Op "remote error" wrapping an
// unexported alert type, and local rejections of the server's choices
// are untyped errors with fixed messages. The Op check runs after the
// trust inspection in [ClassifyFailure], so an alert whose chain also
// carries a certificate marker still classifies as [FailureTrust].
func isNegotiationFailure(err error) bool {
	var (
		alert        tls.AlertError
		recordHeader tls.RecordHeaderError
	)
	if errors.As(err, &alert) || errors.As(err, &recordHeader) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "remote error" {
		return true
	}
	text := err.Error()
	for _, message := range negotiationMessages {
		if strings.Contains(text, message) {
			return true
		}
	}
	return false
}

// negotiationMessages are the handshake-phase mismatch errors that
// crypto/tls creates with errors.New and never types, so they can only
// be matched by message.
var negotiationMessages = []string{
	"tls: server selected unsupported protocol version",
	"tls: server chose an unconfigured cipher suite",
	"tls: server selected unadvertised ALPN protocol",
}
