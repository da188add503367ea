package webrtcredux

import (
	"strconv"
	"strings"

	"github.com/nostressdev/webrtcredux/sdp"
)

type RTPCodecParameters struct {
	MimeType    string
	PayloadType uint8

	ClockRate    uint32
	Channels     uint16
	SDPFmtpLine  string
	RTCPFeedback []string
}

func newRTPCodecParameters(kind sdp.MediaType, c sdp.Codec) RTPCodecParameters {
	params := RTPCodecParameters{
		MimeType:     kind.String() + "/" + c.Name,
		PayloadType:  c.PayloadType,
		ClockRate:    c.ClockRate,
		SDPFmtpLine:  c.Fmtp,
		RTCPFeedback: c.Feedback,
	}
	if channels, err := strconv.ParseUint(c.EncodingParameters, 10, 16); err == nil {
		params.Channels = uint16(channels)
	}
	return params
}

// encodingName is the MIME subtype, e.g. "opus" for "audio/opus".
func (p RTPCodecParameters) encodingName() string {
	if i := strings.IndexByte(p.MimeType, '/'); i >= 0 {
		return p.MimeType[i+1:]
	}
	return p.MimeType
}

func (p RTPCodecParameters) rtpmap() string {
	rtpmap := strconv.Itoa(int(p.PayloadType)) + " " + p.encodingName() + "/" + strconv.FormatUint(uint64(p.ClockRate), 10)
	if p.Channels > 0 {
		rtpmap += "/" + strconv.Itoa(int(p.Channels))
	}
	return rtpmap
}

// matches compares encoding, clock rate and channel count. Payload types
// and format parameters are not compared.
func (p RTPCodecParameters) matches(other RTPCodecParameters) bool {
	channels := func(c uint16) uint16 {
		if c == 0 {
			return 1
		}
		return c
	}
	return strings.EqualFold(p.MimeType, other.MimeType) &&
		p.ClockRate == other.ClockRate &&
		channels(p.Channels) == channels(other.Channels)
}

func (p RTPCodecParameters) appendTo(m *sdp.Media) {
	pt := strconv.Itoa(int(p.PayloadType))
	m.AddAttribute("rtpmap", p.rtpmap())
	if p.SDPFmtpLine != "" {
		m.AddAttribute("fmtp", pt+" "+p.SDPFmtpLine)
	}
	for _, fb := range p.RTCPFeedback {
		m.AddAttribute("rtcp-fb", pt+" "+fb)
	}
}

func payloadTypes(codecs []RTPCodecParameters) string {
	pts := make([]string, 0, len(codecs))
	for _, c := range codecs {
		pts = append(pts, strconv.Itoa(int(c.PayloadType)))
	}
	return strings.Join(pts, " ")
}
