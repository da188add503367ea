package webrtcredux

import (
	"github.com/nostressdev/webrtcredux/sdp"
	pionsdp "github.com/pion/sdp/v3"
	"github.com/pkg/errors"
)

// PionSession parses the description with github.com/pion/sdp/v3, for code
// that drives a pion stack.
func (d *RTCSessionDescription) PionSession() (*pionsdp.SessionDescription, error) {
	if d.Type == RTCSdpTypeRollback {
		return nil, makeErrorf(ErrInvalidState, "rollback carries no session description")
	}

	parsed := &pionsdp.SessionDescription{}
	if err := parsed.Unmarshal([]byte(d.SDP)); err != nil {
		return nil, makeError(ErrSyntax, errors.Wrap(err, "pion sdp"))
	}
	return parsed, nil
}

// NewRTCSessionDescriptionFromPion renders s and re-reads it into a
// description of type sdpType.
func NewRTCSessionDescriptionFromPion(sdpType RTCSdpType, s *pionsdp.SessionDescription) (*RTCSessionDescription, error) {
	if s == nil {
		return nil, makeErrorf(ErrInvalidModification, "%s without a session description", sdpType)
	}

	raw, err := s.Marshal()
	if err != nil {
		return nil, makeError(ErrOperation, errors.Wrap(err, "pion sdp"))
	}

	doc, err := sdp.Unmarshal(raw)
	if err != nil {
		return nil, makeError(ErrSyntax, err)
	}
	desc, err := NewRTCSessionDescription(sdpType, doc, sdp.CRLF)
	if err != nil {
		return nil, err
	}
	desc.SDP = string(raw)
	return desc, nil
}
