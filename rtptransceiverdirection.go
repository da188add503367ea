package webrtcredux

import "github.com/nostressdev/webrtcredux/sdp"

type RTCRtpTransceiverDirection string

const (
	RTCRtpTransceiverDirectionSendrecv RTCRtpTransceiverDirection = "sendrecv"
	RTCRtpTransceiverDirectionSendonly RTCRtpTransceiverDirection = "sendonly"
	RTCRtpTransceiverDirectionRecvonly RTCRtpTransceiverDirection = "recvonly"
	RTCRtpTransceiverDirectionInactive RTCRtpTransceiverDirection = "inactive"
	RTCRtpTransceiverDirectionStopped  RTCRtpTransceiverDirection = "stopped"
)

// NewRTCRtpTransceiverDirection parses a direction name.
func NewRTCRtpTransceiverDirection(raw string) (RTCRtpTransceiverDirection, error) {
	switch d := RTCRtpTransceiverDirection(raw); d {
	case RTCRtpTransceiverDirectionSendrecv,
		RTCRtpTransceiverDirectionSendonly,
		RTCRtpTransceiverDirectionRecvonly,
		RTCRtpTransceiverDirectionInactive,
		RTCRtpTransceiverDirectionStopped:
		return d, nil
	default:
		return "", makeErrorf(ErrSyntax, "unknown transceiver direction %q", raw)
	}
}

func (d RTCRtpTransceiverDirection) String() string {
	return string(d)
}

// Reverse returns the direction as seen by the remote peer.
func (d RTCRtpTransceiverDirection) Reverse() RTCRtpTransceiverDirection {
	switch d {
	case RTCRtpTransceiverDirectionSendonly:
		return RTCRtpTransceiverDirectionRecvonly
	case RTCRtpTransceiverDirectionRecvonly:
		return RTCRtpTransceiverDirectionSendonly
	default:
		return d
	}
}

func (d RTCRtpTransceiverDirection) sends() bool {
	return d == RTCRtpTransceiverDirectionSendrecv || d == RTCRtpTransceiverDirectionSendonly
}

func (d RTCRtpTransceiverDirection) receives() bool {
	return d == RTCRtpTransceiverDirectionSendrecv || d == RTCRtpTransceiverDirectionRecvonly
}

// intersect keeps only what both d and other allow.
func (d RTCRtpTransceiverDirection) intersect(other RTCRtpTransceiverDirection) RTCRtpTransceiverDirection {
	send := d.sends() && other.sends()
	recv := d.receives() && other.receives()
	switch {
	case send && recv:
		return RTCRtpTransceiverDirectionSendrecv
	case send:
		return RTCRtpTransceiverDirectionSendonly
	case recv:
		return RTCRtpTransceiverDirectionRecvonly
	default:
		return RTCRtpTransceiverDirectionInactive
	}
}

// directionFlag returns the first direction flag among props.
func directionFlag[P any](props []P) (RTCRtpTransceiverDirection, bool) {
	for _, prop := range props {
		a, ok := any(prop).(*sdp.Attribute)
		if !ok || !a.IsFlag() {
			continue
		}
		switch d := RTCRtpTransceiverDirection(a.Key); d {
		case RTCRtpTransceiverDirectionSendrecv,
			RTCRtpTransceiverDirectionSendonly,
			RTCRtpTransceiverDirectionRecvonly,
			RTCRtpTransceiverDirectionInactive:
			return d, true
		}
	}
	return "", false
}

// directionOf reads the direction of a media section, falling back to the
// session-level flag and then to sendrecv.
func directionOf(doc *sdp.Document, m *sdp.Media) RTCRtpTransceiverDirection {
	if d, ok := directionFlag(m.Props); ok {
		return d
	}
	if d, ok := directionFlag(doc.Props); ok {
		return d
	}
	return RTCRtpTransceiverDirectionSendrecv
}
