package sdp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrPayloadTypeNotFound is returned when no media section offers a payload type.
var ErrPayloadTypeNotFound = errors.New("sdp: payload type not found")

// Codec is a payload type mapping collected from rtpmap, fmtp and rtcp-fb
// attributes.
type Codec struct {
	PayloadType        uint8
	Name               string
	ClockRate          uint32
	EncodingParameters string
	Fmtp               string
	Feedback           []string
}

func (c Codec) String() string {
	s := fmt.Sprintf("%d %s/%d", c.PayloadType, c.Name, c.ClockRate)
	if c.EncodingParameters != "" {
		s += "/" + c.EncodingParameters
	}
	return s
}

// PayloadTypes returns the numeric formats of the m= line. Formats that are
// not payload types, such as webrtc-datachannel, are skipped.
func (m *Media) PayloadTypes() []uint8 {
	var pts []uint8
	for _, format := range strings.Fields(m.Format) {
		pt, err := strconv.ParseUint(format, 10, 8)
		if err != nil {
			continue
		}
		pts = append(pts, uint8(pt))
	}
	return pts
}

// Codecs returns one Codec per payload type of the m= line, in format order.
func (m *Media) Codecs() ([]Codec, error) {
	pts := m.PayloadTypes()
	codecs := make([]Codec, 0, len(pts))
	index := make(map[uint8]int, len(pts))
	for _, pt := range pts {
		index[pt] = len(codecs)
		codecs = append(codecs, Codec{PayloadType: pt})
	}

	for _, a := range m.Attributes("rtpmap") {
		pt, rest, err := payloadAttribute(a)
		if err != nil {
			return nil, err
		}
		i, ok := index[pt]
		if !ok {
			continue
		}
		if err := codecs[i].applyRtpmap(rest); err != nil {
			return nil, errors.Wrapf(err, "rtpmap %q", *a.Value)
		}
	}

	for _, a := range m.Attributes("fmtp") {
		pt, rest, err := payloadAttribute(a)
		if err != nil {
			return nil, err
		}
		if i, ok := index[pt]; ok {
			codecs[i].Fmtp = rest
		}
	}

	for _, a := range m.Attributes("rtcp-fb") {
		pt, rest, err := payloadAttribute(a)
		if err != nil {
			// a=rtcp-fb:* applies to every payload type
			if a.Value != nil && strings.HasPrefix(*a.Value, "* ") {
				for i := range codecs {
					codecs[i].Feedback = append(codecs[i].Feedback, (*a.Value)[2:])
				}
			}
			continue
		}
		if i, ok := index[pt]; ok {
			codecs[i].Feedback = append(codecs[i].Feedback, rest)
		}
	}

	return codecs, nil
}

// CodecForPayloadType scans the media sections for payloadType and returns
// the codec of the first section offering it.
func (d *Document) CodecForPayloadType(payloadType uint8) (Codec, error) {
	for _, m := range d.Media() {
		codecs, err := m.Codecs()
		if err != nil {
			return Codec{}, err
		}
		for _, c := range codecs {
			if c.PayloadType == payloadType && c.Name != "" {
				return c, nil
			}
		}
	}
	return Codec{}, ErrPayloadTypeNotFound
}

// payloadAttribute splits "<payload type> <rest>".
func payloadAttribute(a *Attribute) (uint8, string, error) {
	if a.Value == nil {
		return 0, "", malformed(a.Key)
	}
	format, rest, _ := strings.Cut(*a.Value, " ")
	pt, err := strconv.ParseUint(format, 10, 8)
	if err != nil {
		return 0, "", numeric(format, err)
	}
	return uint8(pt), rest, nil
}

// a=rtpmap:<payload type> <encoding name>/<clock rate>[/<encoding parameters>]
func (c *Codec) applyRtpmap(value string) error {
	parts := strings.SplitN(value, "/", 3)
	c.Name = parts[0]
	if len(parts) > 1 {
		rate, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			return numeric(parts[1], err)
		}
		c.ClockRate = uint32(rate)
	}
	if len(parts) > 2 {
		c.EncodingParameters = parts[2]
	}
	return nil
}
