package webrtcredux

type RTCBundlePolicy string

const (
	// RTCBundlePolicyBalanced offers the first section of each kind with its
	// own transport and marks the rest bundle-only.
	RTCBundlePolicyBalanced RTCBundlePolicy = "balanced"
	// RTCBundlePolicyMaxCompat gives every section its own transport.
	RTCBundlePolicyMaxCompat RTCBundlePolicy = "max-compat"
	// RTCBundlePolicyMaxBundle marks every section but the first bundle-only.
	RTCBundlePolicyMaxBundle RTCBundlePolicy = "max-bundle"
)

// NewRTCBundlePolicy parses a bundle policy name.
func NewRTCBundlePolicy(raw string) (RTCBundlePolicy, error) {
	switch p := RTCBundlePolicy(raw); p {
	case RTCBundlePolicyBalanced, RTCBundlePolicyMaxCompat, RTCBundlePolicyMaxBundle:
		return p, nil
	default:
		return "", makeErrorf(ErrSyntax, "unknown bundle policy %q", raw)
	}
}

type RTCRtcpMuxPolicy string

const (
	// RTCRtcpMuxPolicyRequire rejects sections that do not multiplex RTCP.
	RTCRtcpMuxPolicyRequire RTCRtcpMuxPolicy = "require"
	// RTCRtcpMuxPolicyNegotiate also offers a separate RTCP port.
	RTCRtcpMuxPolicyNegotiate RTCRtcpMuxPolicy = "negotiate"
)

// NewRTCRtcpMuxPolicy parses an rtcp-mux policy name.
func NewRTCRtcpMuxPolicy(raw string) (RTCRtcpMuxPolicy, error) {
	switch p := RTCRtcpMuxPolicy(raw); p {
	case RTCRtcpMuxPolicyRequire, RTCRtcpMuxPolicyNegotiate:
		return p, nil
	default:
		return "", makeErrorf(ErrSyntax, "unknown rtcp-mux policy %q", raw)
	}
}
