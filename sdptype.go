package webrtcredux

type RTCSdpType string

const (
	RTCSdpTypeOffer    RTCSdpType = "offer"
	RTCSdpTypePranswer RTCSdpType = "pranswer"
	RTCSdpTypeAnswer   RTCSdpType = "answer"
	RTCSdpTypeRollback RTCSdpType = "rollback"
)

// NewRTCSdpType parses one of offer, pranswer, answer or rollback.
func NewRTCSdpType(raw string) (RTCSdpType, error) {
	switch t := RTCSdpType(raw); t {
	case RTCSdpTypeOffer, RTCSdpTypePranswer, RTCSdpTypeAnswer, RTCSdpTypeRollback:
		return t, nil
	default:
		return "", makeErrorf(ErrSyntax, "unknown sdp type %q", raw)
	}
}

func (t RTCSdpType) String() string {
	return string(t)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *RTCSdpType) UnmarshalText(text []byte) (err error) {
	*t, err = NewRTCSdpType(string(text))
	return err
}
