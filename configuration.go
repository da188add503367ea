package webrtcredux

import (
	"github.com/nostressdev/webrtcredux/sdp"
	"github.com/pion/logging"
)

// RTCConfiguration controls the descriptions a Negotiator builds. Zero
// values select balanced bundling, required rtcp-mux, CRLF line endings and
// the default pion logger.
type RTCConfiguration struct {
	BundlePolicy  RTCBundlePolicy
	RtcpMuxPolicy RTCRtcpMuxPolicy
	Certificates  []RTCCertificate
	LineEnding    sdp.LineEnding
	LoggerFactory logging.LoggerFactory
}

func (c *RTCConfiguration) setDefaults() error {
	if c.BundlePolicy == "" {
		c.BundlePolicy = RTCBundlePolicyBalanced
	}
	if _, err := NewRTCBundlePolicy(string(c.BundlePolicy)); err != nil {
		return err
	}

	if c.RtcpMuxPolicy == "" {
		c.RtcpMuxPolicy = RTCRtcpMuxPolicyRequire
	}
	if _, err := NewRTCRtcpMuxPolicy(string(c.RtcpMuxPolicy)); err != nil {
		return err
	}

	switch c.LineEnding {
	case "":
		c.LineEnding = sdp.CRLF
	case sdp.LF, sdp.CRLF:
	default:
		return makeErrorf(ErrSyntax, "unknown line ending %q", c.LineEnding)
	}

	if c.LoggerFactory == nil {
		c.LoggerFactory = logging.NewDefaultLoggerFactory()
	}
	return nil
}
