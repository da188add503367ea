package webrtcredux

import (
	"github.com/nostressdev/webrtcredux/sdp"
	"github.com/pkg/errors"
)

// RTCRtpTransceiver is one negotiated media section.
type RTCRtpTransceiver struct {
	Mid       string
	Kind      sdp.MediaType
	Direction RTCRtpTransceiverDirection
	Codecs    []RTPCodecParameters
	Track     *MediaStreamTrack
	// Stopped is set for sections rejected with port 0.
	Stopped bool
}

// Transceivers describes every media section of the description in order.
func (d *RTCSessionDescription) Transceivers() ([]*RTCRtpTransceiver, error) {
	doc, err := d.Unmarshal()
	if err != nil {
		return nil, err
	}

	var transceivers []*RTCRtpTransceiver
	for i, m := range doc.Media() {
		t := &RTCRtpTransceiver{
			Kind:      m.Type,
			Direction: directionOf(doc, m),
			Stopped:   isRejected(m),
		}
		if mid, ok := m.Attribute("mid"); ok && mid.Value != nil {
			t.Mid = *mid.Value
		}
		if msid, ok := m.Attribute("msid"); ok && msid.Value != nil {
			t.Track = trackFromMsid(m.Type, *msid.Value)
		}

		if isRTP(m) {
			codecs, err := m.Codecs()
			if err != nil {
				return nil, makeError(ErrSyntax, errors.Wrapf(err, "media section %d", i))
			}
			for _, c := range codecs {
				t.Codecs = append(t.Codecs, newRTPCodecParameters(m.Type, c))
			}
		}

		transceivers = append(transceivers, t)
	}
	return transceivers, nil
}

// isRejected reports a zero port on a section that is not bundle-only.
func isRejected(m *sdp.Media) bool {
	if m.Port() != 0 {
		return false
	}
	_, bundleOnly := m.Attribute("bundle-only")
	return !bundleOnly
}

func isRTP(m *sdp.Media) bool {
	return m.Type == sdp.MediaTypeAudio || m.Type == sdp.MediaTypeVideo
}
