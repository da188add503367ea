package webrtcredux

import (
	"strings"

	"github.com/nostressdev/webrtcredux/sdp"
)

// MediaStreamTrack identifies a track as announced in a=msid.
type MediaStreamTrack struct {
	Kind     sdp.MediaType
	ID       string
	StreamID string
}

// NewMediaStreamTrack returns an audio or video track.
func NewMediaStreamTrack(kind sdp.MediaType, id, streamID string) (*MediaStreamTrack, error) {
	if kind != sdp.MediaTypeAudio && kind != sdp.MediaTypeVideo {
		return nil, makeErrorf(ErrInvalidModification, "track kind must be audio or video, got %s", kind)
	}
	if id == "" {
		return nil, makeErrorf(ErrInvalidModification, "track without id")
	}
	return &MediaStreamTrack{Kind: kind, ID: id, StreamID: streamID}, nil
}

// msid is "<stream id> <track id>"; "-" stands for no stream.
func (t *MediaStreamTrack) msid() string {
	stream := t.StreamID
	if stream == "" {
		stream = "-"
	}
	return stream + " " + t.ID
}

func trackFromMsid(kind sdp.MediaType, value string) *MediaStreamTrack {
	stream, id, ok := strings.Cut(value, " ")
	if !ok {
		return &MediaStreamTrack{Kind: kind, StreamID: stream}
	}
	if stream == "-" {
		stream = ""
	}
	return &MediaStreamTrack{Kind: kind, ID: id, StreamID: stream}
}
