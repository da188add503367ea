package webrtcredux

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Encode renders desc as base64 of its JSON form, optionally gzipped first,
// for copy-paste signalling.
func Encode(desc *RTCSessionDescription, compress bool) (string, error) {
	b, err := json.Marshal(desc)
	if err != nil {
		return "", errors.Wrap(err, "marshaling session description")
	}

	if compress {
		if b, err = zip(b); err != nil {
			return "", err
		}
	}

	return base64.StdEncoding.EncodeToString(b), nil
}

// Decode reverses Encode. Gzipped payloads are detected automatically. A
// payload that is not JSON is taken as SDP text of type fallback, and so is
// input that is not base64 at all but starts with "v=".
func Decode(in string, fallback RTCSdpType) (*RTCSessionDescription, error) {
	in = strings.TrimSpace(in)

	var b []byte
	if strings.HasPrefix(in, "v=") {
		b = []byte(in)
	} else {
		decoded, err := base64.StdEncoding.DecodeString(in)
		if err != nil {
			return nil, makeError(ErrSyntax, errors.Wrap(err, "decoding base64"))
		}
		b = decoded
	}

	if bytes.HasPrefix(b, gzipMagic) {
		unzipped, err := unzip(b)
		if err != nil {
			return nil, makeError(ErrSyntax, err)
		}
		b = unzipped
	}

	desc := &RTCSessionDescription{}
	if trimmed := bytes.TrimSpace(b); len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, desc); err != nil {
			return nil, makeError(ErrSyntax, errors.Wrap(err, "unmarshaling session description"))
		}
		if _, err := NewRTCSdpType(string(desc.Type)); err != nil {
			return nil, err
		}
	} else {
		sdpType, err := NewRTCSdpType(string(fallback))
		if err != nil {
			return nil, err
		}
		desc.Type = sdpType
		desc.SDP = string(b)
	}

	if desc.Type == RTCSdpTypeRollback {
		return desc, nil
	}
	if _, err := desc.Unmarshal(); err != nil {
		return nil, err
	}
	return desc, nil
}

func zip(in []byte) ([]byte, error) {
	var b bytes.Buffer
	gz := gzip.NewWriter(&b)
	if _, err := gz.Write(in); err != nil {
		return nil, errors.Wrap(err, "compressing")
	}
	if err := gz.Close(); err != nil {
		return nil, errors.Wrap(err, "compressing")
	}
	return b.Bytes(), nil
}

func unzip(in []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(in))
	if err != nil {
		return nil, errors.Wrap(err, "decompressing")
	}
	defer r.Close()

	res, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "decompressing")
	}
	return res, nil
}
