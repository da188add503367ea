package webrtcredux

import (
	"github.com/nostressdev/webrtcredux/sdp"
	"github.com/pkg/errors"
)

// RTCSessionDescription is a typed SDP blob as exchanged over signalling.
type RTCSessionDescription struct {
	Type RTCSdpType `json:"type"`
	SDP  string     `json:"sdp"`

	// set only by NewRTCSessionDescription and never written afterwards
	parsed *sdp.Document
}

// NewRTCSessionDescription renders doc with eol. A rollback carries no
// document and ignores doc.
func NewRTCSessionDescription(sdpType RTCSdpType, doc *sdp.Document, eol sdp.LineEnding) (*RTCSessionDescription, error) {
	if _, err := NewRTCSdpType(string(sdpType)); err != nil {
		return nil, err
	}
	if sdpType == RTCSdpTypeRollback {
		return &RTCSessionDescription{Type: sdpType}, nil
	}
	if doc == nil {
		return nil, makeErrorf(ErrInvalidModification, "%s without a session description", sdpType)
	}

	return &RTCSessionDescription{
		Type:   sdpType,
		SDP:    doc.Marshal(eol),
		parsed: doc,
	}, nil
}

// Unmarshal returns the document a description was created from, or parses
// SDP. It never mutates d, so a description may be shared between goroutines.
func (d *RTCSessionDescription) Unmarshal() (*sdp.Document, error) {
	if d.parsed != nil {
		return d.parsed, nil
	}
	if d.Type == RTCSdpTypeRollback {
		return nil, makeErrorf(ErrInvalidState, "rollback carries no session description")
	}

	doc, err := sdp.Parse(d.SDP)
	if err != nil {
		return nil, makeError(ErrSyntax, errors.Wrapf(err, "parsing %s", d.Type))
	}
	return doc, nil
}
