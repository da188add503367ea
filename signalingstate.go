package webrtcredux

type RTCSignalingState string

const (
	RTCSignalingStateStable             RTCSignalingState = "stable"
	RTCSignalingStateHaveLocalOffer     RTCSignalingState = "have-local-offer"
	RTCSignalingStateHaveRemoteOffer    RTCSignalingState = "have-remote-offer"
	RTCSignalingStateHaveLocalPranswer  RTCSignalingState = "have-local-pranswer"
	RTCSignalingStateHaveRemotePranswer RTCSignalingState = "have-remote-pranswer"
	RTCSignalingStateClosed             RTCSignalingState = "closed"
)

func (s RTCSignalingState) String() string {
	return string(s)
}

type stateChangeOp int

const (
	stateChangeOpSetLocal stateChangeOp = iota + 1
	stateChangeOpSetRemote
)

func (op stateChangeOp) String() string {
	if op == stateChangeOpSetLocal {
		return "SetLocal"
	}
	return "SetRemote"
}

// nextSignalingState returns the state reached by applying a description of
// type sdpType in state cur.
//
// https://www.w3.org/TR/webrtc/#rtcsignalingstate-enum
func nextSignalingState(cur RTCSignalingState, op stateChangeOp, sdpType RTCSdpType) (RTCSignalingState, error) {
	if sdpType == RTCSdpTypeRollback {
		switch {
		case op == stateChangeOpSetLocal && cur == RTCSignalingStateHaveLocalOffer,
			op == stateChangeOpSetRemote && cur == RTCSignalingStateHaveRemoteOffer:
			return RTCSignalingStateStable, nil
		}
		return cur, makeErrorf(ErrInvalidState, "cannot %s rollback in state %s", op, cur)
	}

	type key struct {
		cur     RTCSignalingState
		op      stateChangeOp
		sdpType RTCSdpType
	}
	next, ok := map[key]RTCSignalingState{
		{RTCSignalingStateStable, stateChangeOpSetLocal, RTCSdpTypeOffer}:                 RTCSignalingStateHaveLocalOffer,
		{RTCSignalingStateHaveLocalOffer, stateChangeOpSetLocal, RTCSdpTypeOffer}:         RTCSignalingStateHaveLocalOffer,
		{RTCSignalingStateHaveLocalOffer, stateChangeOpSetRemote, RTCSdpTypeAnswer}:       RTCSignalingStateStable,
		{RTCSignalingStateHaveLocalOffer, stateChangeOpSetRemote, RTCSdpTypePranswer}:     RTCSignalingStateHaveRemotePranswer,
		{RTCSignalingStateHaveRemotePranswer, stateChangeOpSetRemote, RTCSdpTypePranswer}: RTCSignalingStateHaveRemotePranswer,
		{RTCSignalingStateHaveRemotePranswer, stateChangeOpSetRemote, RTCSdpTypeAnswer}:   RTCSignalingStateStable,
		{RTCSignalingStateStable, stateChangeOpSetRemote, RTCSdpTypeOffer}:                RTCSignalingStateHaveRemoteOffer,
		{RTCSignalingStateHaveRemoteOffer, stateChangeOpSetRemote, RTCSdpTypeOffer}:       RTCSignalingStateHaveRemoteOffer,
		{RTCSignalingStateHaveRemoteOffer, stateChangeOpSetLocal, RTCSdpTypeAnswer}:       RTCSignalingStateStable,
		{RTCSignalingStateHaveRemoteOffer, stateChangeOpSetLocal, RTCSdpTypePranswer}:     RTCSignalingStateHaveLocalPranswer,
		{RTCSignalingStateHaveLocalPranswer, stateChangeOpSetLocal, RTCSdpTypePranswer}:   RTCSignalingStateHaveLocalPranswer,
		{RTCSignalingStateHaveLocalPranswer, stateChangeOpSetLocal, RTCSdpTypeAnswer}:     RTCSignalingStateStable,
	}[key{cur, op, sdpType}]
	if !ok {
		return cur, makeErrorf(ErrInvalidModification, "cannot %s %s in state %s", op, sdpType, cur)
	}
	return next, nil
}
