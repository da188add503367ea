package webrtcredux

import (
	"strings"
	"time"
)

// EpochTimeStamp is a time in milliseconds since the Unix epoch.
type EpochTimeStamp uint64

// RTCCertificate describes a DTLS certificate by its fingerprints. Key
// material is owned by the transport, not by this package.
type RTCCertificate struct {
	Expires      EpochTimeStamp
	Fingerprints []RTCDtlsFingerprint
}

type RTCDtlsFingerprint struct {
	Algorithm string
	Value     string
}

// NewRTCDtlsFingerprint parses "<hash function> <fingerprint>", the value of
// an a=fingerprint attribute.
func NewRTCDtlsFingerprint(raw string) (RTCDtlsFingerprint, error) {
	algorithm, value, ok := strings.Cut(strings.TrimSpace(raw), " ")
	if !ok || algorithm == "" || value == "" {
		return RTCDtlsFingerprint{}, makeErrorf(ErrSyntax, "bad fingerprint %q", raw)
	}
	return RTCDtlsFingerprint{Algorithm: strings.ToLower(algorithm), Value: strings.ToUpper(value)}, nil
}

func (f RTCDtlsFingerprint) String() string {
	return f.Algorithm + " " + f.Value
}

func (c *RTCCertificate) getFingerprints(now time.Time) ([]RTCDtlsFingerprint, error) {
	if c.Expires != 0 && EpochTimeStamp(now.UnixMilli()) >= c.Expires {
		return nil, makeErrorf(ErrInvalidState, "certificate expired at %d", c.Expires)
	}
	return c.Fingerprints, nil
}
