package sdp

import "strings"

// NetworkType is the <nettype> token of o= and c= lines.
type NetworkType int

const (
	// NetworkTypeInternet is "IN".
	NetworkTypeInternet NetworkType = iota + 1
)

// ParseNetworkType parses a <nettype> token.
func ParseNetworkType(token string) (NetworkType, error) {
	switch token {
	case "IN":
		return NetworkTypeInternet, nil
	default:
		return 0, unknownToken(token)
	}
}

func (t NetworkType) String() string {
	switch t {
	case NetworkTypeInternet:
		return "IN"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t NetworkType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *NetworkType) UnmarshalText(text []byte) (err error) {
	*t, err = ParseNetworkType(string(text))
	return err
}

// AddressType is the <addrtype> token of o= and c= lines.
type AddressType int

const (
	// AddressTypeIPv4 is "IP4".
	AddressTypeIPv4 AddressType = iota + 1
	// AddressTypeIPv6 is "IP6".
	AddressTypeIPv6
)

// ParseAddressType parses an <addrtype> token.
func ParseAddressType(token string) (AddressType, error) {
	switch token {
	case "IP4":
		return AddressTypeIPv4, nil
	case "IP6":
		return AddressTypeIPv6, nil
	default:
		return 0, unknownToken(token)
	}
}

func (t AddressType) String() string {
	switch t {
	case AddressTypeIPv4:
		return "IP4"
	case AddressTypeIPv6:
		return "IP6"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t AddressType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *AddressType) UnmarshalText(text []byte) (err error) {
	*t, err = ParseAddressType(string(text))
	return err
}

// BandwidthType is the <bwtype> token of a b= line.
type BandwidthType int

const (
	// BandwidthTypeConferenceTotal is "CT".
	BandwidthTypeConferenceTotal BandwidthType = iota + 1
	// BandwidthTypeApplicationSpecific is "AS".
	BandwidthTypeApplicationSpecific
	// BandwidthTypeTransportIndependent is "TIAS", rfc3890.
	BandwidthTypeTransportIndependent
	// BandwidthTypeRTCPSenders is "RS", rfc3556.
	BandwidthTypeRTCPSenders
	// BandwidthTypeRTCPReceivers is "RR", rfc3556.
	BandwidthTypeRTCPReceivers
)

// ParseBandwidthType parses a <bwtype> token.
func ParseBandwidthType(token string) (BandwidthType, error) {
	switch token {
	case "CT":
		return BandwidthTypeConferenceTotal, nil
	case "AS":
		return BandwidthTypeApplicationSpecific, nil
	case "TIAS":
		return BandwidthTypeTransportIndependent, nil
	case "RS":
		return BandwidthTypeRTCPSenders, nil
	case "RR":
		return BandwidthTypeRTCPReceivers, nil
	default:
		return 0, unknownToken(token)
	}
}

func (t BandwidthType) String() string {
	switch t {
	case BandwidthTypeConferenceTotal:
		return "CT"
	case BandwidthTypeApplicationSpecific:
		return "AS"
	case BandwidthTypeTransportIndependent:
		return "TIAS"
	case BandwidthTypeRTCPSenders:
		return "RS"
	case BandwidthTypeRTCPReceivers:
		return "RR"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t BandwidthType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *BandwidthType) UnmarshalText(text []byte) (err error) {
	*t, err = ParseBandwidthType(string(text))
	return err
}

// MediaType is the <media> token of an m= line.
type MediaType int

const (
	MediaTypeAudio MediaType = iota + 1
	MediaTypeVideo
	MediaTypeText
	MediaTypeApplication
	MediaTypeMessage
)

// ParseMediaType parses a <media> token.
func ParseMediaType(token string) (MediaType, error) {
	switch token {
	case "audio":
		return MediaTypeAudio, nil
	case "video":
		return MediaTypeVideo, nil
	case "text":
		return MediaTypeText, nil
	case "application":
		return MediaTypeApplication, nil
	case "message":
		return MediaTypeMessage, nil
	default:
		return 0, unknownToken(token)
	}
}

func (t MediaType) String() string {
	switch t {
	case MediaTypeAudio:
		return "audio"
	case MediaTypeVideo:
		return "video"
	case MediaTypeText:
		return "text"
	case MediaTypeApplication:
		return "application"
	case MediaTypeMessage:
		return "message"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t MediaType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *MediaType) UnmarshalText(text []byte) (err error) {
	*t, err = ParseMediaType(string(text))
	return err
}

// KeyMethod is the method part of a k= line.
type KeyMethod int

const (
	KeyMethodClear KeyMethod = iota + 1
	KeyMethodBase64
	KeyMethodURI
	KeyMethodPrompt
)

// ParseKeyMethod parses the method token of a k= line. "prompt" is the only
// method without a key.
func ParseKeyMethod(token string) (KeyMethod, error) {
	switch token {
	case "clear":
		return KeyMethodClear, nil
	case "base64":
		return KeyMethodBase64, nil
	case "uri":
		return KeyMethodURI, nil
	case "prompt":
		return KeyMethodPrompt, nil
	default:
		return 0, unknownToken(token)
	}
}

func (m KeyMethod) String() string {
	switch m {
	case KeyMethodClear:
		return "clear"
	case KeyMethodBase64:
		return "base64"
	case KeyMethodURI:
		return "uri"
	case KeyMethodPrompt:
		return "prompt"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m KeyMethod) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *KeyMethod) UnmarshalText(text []byte) (err error) {
	*m, err = ParseKeyMethod(string(text))
	return err
}

// Protocol is the <proto> token of an m= line. It is kept as written; Valid
// reports whether it is built from registered transports only.
type Protocol string

const (
	ProtocolRTPAVP         Protocol = "RTP/AVP"
	ProtocolRTPSAVP        Protocol = "RTP/SAVP"
	ProtocolRTPSAVPF       Protocol = "RTP/SAVPF"
	ProtocolUDPTLSRTPSAVPF Protocol = "UDP/TLS/RTP/SAVPF"
	ProtocolDTLSSCTP       Protocol = "DTLS/SCTP"
	ProtocolUDPDTLSSCTP    Protocol = "UDP/DTLS/SCTP"
	ProtocolTCPDTLSSCTP    Protocol = "TCP/DTLS/SCTP"
)

// https://tools.ietf.org/html/rfc4566#section-5.14
// https://tools.ietf.org/html/rfc4975#section-8.1
var registeredTransports = []string{
	"UDP", "RTP", "AVP", "SAVP", "SAVPF", "TLS", "DTLS", "SCTP",
	"AVPF", "TCP", "MSRP", "BFCP", "UDT", "IX", "MRCPv2",
}

// Valid reports whether every /-separated part of p is a registered transport.
func (p Protocol) Valid() bool {
	if p == "" {
		return false
	}
	for _, part := range strings.Split(string(p), "/") {
		if !anyOf(part, registeredTransports...) {
			return false
		}
	}
	return true
}

func (p Protocol) String() string {
	return string(p)
}

func anyOf(element string, data ...string) bool {
	for _, v := range data {
		if element == v {
			return true
		}
	}
	return false
}
