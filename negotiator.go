package webrtcredux

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nostressdev/webrtcredux/sdp"
	"github.com/pion/logging"
	"github.com/pion/randutil"
)

const (
	alphaNumCharset = "abcdefghijklmnopqrstuvwxyz" + "ABCDEFGHIJKLMNOPQRSTUVWXYZ" + "0123456789"

	iceUfragLength = 16
	icePwdLength   = 32
	tlsIDLength    = 120

	sctpPort = "5000"
)

// Negotiator builds offer and answer documents for a set of local
// transceivers. It does not gather candidates or run any transport. It is
// safe for concurrent use.
type Negotiator struct {
	mu sync.Mutex

	configuration RTCConfiguration
	log           logging.LeveledLogger
	now           func() time.Time

	sessionID      string
	sessionVersion uint64
	iceUfrag       string
	icePwd         string
	tlsID          string

	signalingState           RTCSignalingState
	isClosed                 bool
	currentLocalDescription  *RTCSessionDescription
	pendingLocalDescription  *RTCSessionDescription
	currentRemoteDescription *RTCSessionDescription
	pendingRemoteDescription *RTCSessionDescription

	rtpTransceivers []*RTCRtpTransceiver
	midCounter      int64
	dataMid         string
}

// NewNegotiator validates configuration and generates the session id and ICE
// credentials reused by every description it creates.
func NewNegotiator(configuration RTCConfiguration) (*Negotiator, error) {
	if err := configuration.setDefaults(); err != nil {
		return nil, err
	}

	id, err := randutil.CryptoUint64()
	if err != nil {
		return nil, makeError(ErrOperation, err)
	}
	n := &Negotiator{
		configuration:  configuration,
		log:            configuration.LoggerFactory.NewLogger("negotiator"),
		now:            time.Now,
		signalingState: RTCSignalingStateStable,
		// the highest bit is zero so the id fits a signed 64-bit integer
		sessionID: strconv.FormatUint(id&^(uint64(1)<<63), 10),
	}

	for _, cred := range []struct {
		dst    *string
		length int
	}{
		{&n.iceUfrag, iceUfragLength},
		{&n.icePwd, icePwdLength},
		{&n.tlsID, tlsIDLength},
	} {
		if *cred.dst, err = randutil.GenerateCryptoRandomString(cred.length, alphaNumCharset); err != nil {
			return nil, makeError(ErrOperation, err)
		}
	}

	return n, nil
}

// AddTransceiver registers a local media section. Audio and video sections
// need at least one codec.
func (n *Negotiator) AddTransceiver(track *MediaStreamTrack, direction RTCRtpTransceiverDirection, codecs []RTPCodecParameters) (*RTCRtpTransceiver, error) {
	if track == nil {
		return nil, makeErrorf(ErrInvalidModification, "transceiver without a track")
	}
	if _, err := NewMediaStreamTrack(track.Kind, track.ID, track.StreamID); err != nil {
		return nil, err
	}
	if _, err := NewRTCRtpTransceiverDirection(string(direction)); err != nil {
		return nil, err
	}
	if len(codecs) == 0 {
		return nil, makeErrorf(ErrInvalidModification, "%s transceiver %s without codecs", track.Kind, track.ID)
	}
	for _, c := range codecs {
		if !strings.HasPrefix(strings.ToLower(c.MimeType), track.Kind.String()+"/") {
			return nil, makeErrorf(ErrInvalidModification, "codec %s on a %s transceiver", c.MimeType, track.Kind)
		}
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.isClosed {
		return nil, makeErrorf(ErrInvalidState, "negotiator is closed")
	}

	t := &RTCRtpTransceiver{
		Kind:      track.Kind,
		Direction: direction,
		Codecs:    append([]RTPCodecParameters(nil), codecs...),
		Track:     track,
	}
	n.rtpTransceivers = append(n.rtpTransceivers, t)
	return t, nil
}

// nextMid returns the lowest counter value not already taken by a transceiver
// or the data section, including mids adopted from a remote offer.
func (n *Negotiator) nextMid() string {
	for {
		mid := strconv.FormatInt(n.midCounter, 10)
		n.midCounter++
		if !n.midTaken(mid) {
			return mid
		}
	}
}

func (n *Negotiator) midTaken(mid string) bool {
	if mid == n.dataMid {
		return true
	}
	for _, transceiver := range n.rtpTransceivers {
		if transceiver.Mid == mid {
			return true
		}
	}
	return false
}

func isBundleOnly(bundlePolicy RTCBundlePolicy, isFirstInGroup map[sdp.MediaType]bool, kind sdp.MediaType) bool {
	switch bundlePolicy {
	case RTCBundlePolicyBalanced:
		isFirst := isFirstInGroup[kind]
		isFirstInGroup[kind] = false
		return !isFirst
	case RTCBundlePolicyMaxBundle:
		isFirst := true
		for _, v := range isFirstInGroup {
			isFirst = isFirst && v
		}
		isFirstInGroup[kind] = false
		return !isFirst
	default:
		return false
	}
}

func (n *Negotiator) fingerprints() ([]RTCDtlsFingerprint, error) {
	var fingerprints []RTCDtlsFingerprint
	for i := range n.configuration.Certificates {
		f, err := n.configuration.Certificates[i].getFingerprints(n.now())
		if err != nil {
			return nil, err
		}
		fingerprints = append(fingerprints, f...)
	}
	return fingerprints, nil
}

func (n *Negotiator) newDocument() *sdp.Document {
	n.sessionVersion++
	return &sdp.Document{Props: []sdp.Prop{
		sdp.Version(0),
		&sdp.Origin{
			Username:       "-",
			SessionID:      n.sessionID,
			SessionVersion: n.sessionVersion,
			NetworkType:    sdp.NetworkTypeInternet,
			AddressType:    sdp.AddressTypeIPv4,
			Address:        "0.0.0.0",
		},
		sdp.SessionName("-"),
		&sdp.Timing{},
	}}
}

func newMedia(kind sdp.MediaType, port uint16, protocol sdp.Protocol, format string) *sdp.Media {
	return &sdp.Media{
		Type:     kind,
		Ports:    []uint16{port},
		Protocol: protocol,
		Format:   format,
		Props: []sdp.MediaProp{
			&sdp.Connection{
				NetworkType: sdp.NetworkTypeInternet,
				AddressType: sdp.AddressTypeIPv4,
				Address:     "0.0.0.0",
			},
		},
	}
}

// addTransport writes the ICE and DTLS attributes of a section that owns its
// transport.
func (n *Negotiator) addTransport(media *sdp.Media, setup string, fingerprints []RTCDtlsFingerprint) {
	media.AddAttribute("ice-ufrag", n.iceUfrag)
	media.AddAttribute("ice-pwd", n.icePwd)
	for _, fingerprint := range fingerprints {
		media.AddAttribute("fingerprint", fingerprint.String())
	}
	media.AddAttribute("setup", setup)
	media.AddAttribute("tls-id", n.tlsID)
}

func (n *Negotiator) addRTCPMux(media *sdp.Media) {
	media.AddProperty("rtcp-mux")
	if n.configuration.RtcpMuxPolicy == RTCRtcpMuxPolicyNegotiate {
		media.AddAttribute("rtcp", "9 IN IP4 0.0.0.0")
	}
	media.AddProperty("rtcp-rsize")
}

// CreateOffer describes every local transceiver plus a data channel section.
func (n *Negotiator) CreateOffer() (*RTCSessionDescription, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.isClosed {
		return nil, makeErrorf(ErrInvalidState, "negotiator is closed")
	}
	if n.signalingState != RTCSignalingStateStable && n.signalingState != RTCSignalingStateHaveLocalOffer {
		return nil, makeErrorf(ErrInvalidState, "cannot create an offer in state %s", n.signalingState)
	}

	fingerprints, err := n.fingerprints()
	if err != nil {
		return nil, err
	}

	doc := n.newDocument()
	doc.AddAttribute("ice-options", "trickle ice2")

	var mids []string
	var sections []*sdp.Media
	streamMids := make(map[string][]string)
	var streamOrder []string

	isFirstInGroup := map[sdp.MediaType]bool{
		sdp.MediaTypeAudio:       true,
		sdp.MediaTypeVideo:       true,
		sdp.MediaTypeApplication: true,
	}

	for _, transceiver := range n.rtpTransceivers {
		if transceiver.Stopped || transceiver.Direction == RTCRtpTransceiverDirectionStopped {
			continue
		}
		if transceiver.Mid == "" {
			transceiver.Mid = n.nextMid()
		}

		var media *sdp.Media
		if isBundleOnly(n.configuration.BundlePolicy, isFirstInGroup, transceiver.Kind) {
			media = newMedia(transceiver.Kind, 0, sdp.ProtocolUDPTLSRTPSAVPF, payloadTypes(transceiver.Codecs))
			media.AddProperty("bundle-only")
		} else {
			media = newMedia(transceiver.Kind, 9, sdp.ProtocolUDPTLSRTPSAVPF, payloadTypes(transceiver.Codecs))
			n.addTransport(media, "actpass", fingerprints)
		}

		media.AddAttribute("mid", transceiver.Mid)
		media.AddProperty(string(transceiver.Direction))
		if track := transceiver.Track; track != nil {
			media.AddAttribute("msid", track.msid())
			if track.StreamID != "" {
				if _, ok := streamMids[track.StreamID]; !ok {
					streamOrder = append(streamOrder, track.StreamID)
				}
				streamMids[track.StreamID] = append(streamMids[track.StreamID], transceiver.Mid)
			}
		}
		n.addRTCPMux(media)
		for _, codec := range transceiver.Codecs {
			codec.appendTo(media)
		}

		mids = append(mids, transceiver.Mid)
		sections = append(sections, media)
	}

	if n.dataMid == "" {
		n.dataMid = n.nextMid()
	}
	media := newMedia(sdp.MediaTypeApplication, 9, sdp.ProtocolUDPDTLSSCTP, "webrtc-datachannel")
	if isBundleOnly(n.configuration.BundlePolicy, isFirstInGroup, sdp.MediaTypeApplication) {
		media.Ports[0] = 0
		media.AddProperty("bundle-only")
	} else {
		n.addTransport(media, "actpass", fingerprints)
	}
	media.AddAttribute("mid", n.dataMid)
	media.AddAttribute("sctp-port", sctpPort)
	mids = append(mids, n.dataMid)
	sections = append(sections, media)

	if len(mids) > 0 {
		doc.AddAttribute("group", "BUNDLE "+strings.Join(mids, " "))
	}
	for _, stream := range streamOrder {
		if len(streamMids[stream]) > 1 {
			doc.AddAttribute("group", "LS "+strings.Join(streamMids[stream], " "))
		}
	}
	for _, section := range sections {
		doc.Props = append(doc.Props, section)
	}

	n.log.Debugf("created offer version %d with %d media sections", n.sessionVersion, len(sections))
	return NewRTCSessionDescription(RTCSdpTypeOffer, doc, n.configuration.LineEnding)
}

// CreateAnswer answers offer section by section, in offer order. Audio and
// video sections are matched with unused local transceivers of the same kind
// and accept only the codecs both sides support. Sections that cannot be
// accepted are rejected with port 0.
func (n *Negotiator) CreateAnswer(offer *RTCSessionDescription) (*RTCSessionDescription, error) {
	if offer == nil || offer.Type != RTCSdpTypeOffer {
		return nil, makeErrorf(ErrInvalidState, "can only answer an offer")
	}
	remote, err := offer.Unmarshal()
	if err != nil {
		return nil, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	switch {
	case n.isClosed:
		return nil, makeErrorf(ErrInvalidState, "negotiator is closed")
	case n.signalingState == RTCSignalingStateHaveLocalOffer, n.signalingState == RTCSignalingStateHaveRemotePranswer:
		return nil, makeErrorf(ErrInvalidState, "cannot create an answer in state %s", n.signalingState)
	}

	fingerprints, err := n.fingerprints()
	if err != nil {
		return nil, err
	}

	doc := n.newDocument()
	offeredBundle := bundleGroup(remote)
	var bundle []string
	var sections []*sdp.Media
	used := make(map[*RTCRtpTransceiver]bool)

	for _, remoteMedia := range remote.Media() {
		mid := ""
		if a, ok := remoteMedia.Attribute("mid"); ok && a.Value != nil {
			mid = *a.Value
		}

		var media *sdp.Media
		switch {
		case isRejected(remoteMedia):
		case isRTP(remoteMedia):
			media = n.answerRTP(remote, remoteMedia, mid, used, fingerprints)
		case remoteMedia.Type == sdp.MediaTypeApplication && strings.HasSuffix(string(remoteMedia.Protocol), "SCTP"):
			media = n.answerData(remoteMedia, mid, fingerprints)
		}

		if media == nil {
			n.log.Debugf("rejecting %s section %q", remoteMedia.Type, mid)
			media = &sdp.Media{
				Type:     remoteMedia.Type,
				Ports:    []uint16{0},
				Protocol: remoteMedia.Protocol,
				Format:   remoteMedia.Format,
			}
			if mid != "" {
				media.AddAttribute("mid", mid)
			}
		} else if offeredBundle[mid] {
			bundle = append(bundle, mid)
		}
		sections = append(sections, media)
	}

	if len(bundle) > 0 {
		doc.AddAttribute("group", "BUNDLE "+strings.Join(bundle, " "))
	}
	for _, section := range sections {
		doc.Props = append(doc.Props, section)
	}

	n.log.Debugf("created answer version %d for %d offered sections", n.sessionVersion, len(remote.Media()))
	return NewRTCSessionDescription(RTCSdpTypeAnswer, doc, n.configuration.LineEnding)
}

// SetLocalDescription applies a description created by this negotiator and
// advances the signalling state.
func (n *Negotiator) SetLocalDescription(desc *RTCSessionDescription) error {
	return n.setDescription(desc, stateChangeOpSetLocal)
}

// SetRemoteDescription validates and applies the peer's description and
// advances the signalling state.
func (n *Negotiator) SetRemoteDescription(desc *RTCSessionDescription) error {
	if desc != nil && desc.Type != RTCSdpTypeRollback {
		if _, err := desc.Unmarshal(); err != nil {
			return err
		}
	}
	return n.setDescription(desc, stateChangeOpSetRemote)
}

func (n *Negotiator) setDescription(desc *RTCSessionDescription, op stateChangeOp) error {
	if desc == nil {
		return makeErrorf(ErrInvalidModification, "missing session description")
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.isClosed {
		return makeErrorf(ErrInvalidState, "negotiator is closed")
	}

	next, err := nextSignalingState(n.signalingState, op, desc.Type)
	if err != nil {
		return err
	}

	local, remote := &n.pendingLocalDescription, &n.pendingRemoteDescription
	if op == stateChangeOpSetRemote {
		local, remote = remote, local
	}
	switch desc.Type {
	case RTCSdpTypeOffer, RTCSdpTypePranswer:
		*local = desc
	case RTCSdpTypeAnswer:
		if op == stateChangeOpSetLocal {
			n.currentLocalDescription, n.currentRemoteDescription = desc, n.pendingRemoteDescription
		} else {
			n.currentRemoteDescription, n.currentLocalDescription = desc, n.pendingLocalDescription
		}
		n.pendingLocalDescription, n.pendingRemoteDescription = nil, nil
	case RTCSdpTypeRollback:
		*local, *remote = nil, nil
	}

	n.log.Debugf("%s %s: signaling state %s -> %s", op, desc.Type, n.signalingState, next)
	n.signalingState = next
	return nil
}

// SignalingState returns the current signalling state.
func (n *Negotiator) SignalingState() RTCSignalingState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.signalingState
}

// LocalDescription returns the pending local description if there is one,
// otherwise the current one.
func (n *Negotiator) LocalDescription() *RTCSessionDescription {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.pendingLocalDescription != nil {
		return n.pendingLocalDescription
	}
	return n.currentLocalDescription
}

// RemoteDescription returns the pending remote description if there is one,
// otherwise the current one.
func (n *Negotiator) RemoteDescription() *RTCSessionDescription {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.pendingRemoteDescription != nil {
		return n.pendingRemoteDescription
	}
	return n.currentRemoteDescription
}

// Close makes every further call fail with InvalidStateError.
func (n *Negotiator) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.isClosed = true
	n.signalingState = RTCSignalingStateClosed
}

func (n *Negotiator) answerRTP(remote *sdp.Document, remoteMedia *sdp.Media, mid string, used map[*RTCRtpTransceiver]bool, fingerprints []RTCDtlsFingerprint) *sdp.Media {
	if _, ok := remoteMedia.Attribute("rtcp-mux"); !ok && n.configuration.RtcpMuxPolicy == RTCRtcpMuxPolicyRequire {
		return nil
	}

	offered, err := remoteMedia.Codecs()
	if err != nil {
		n.log.Warnf("ignoring codecs of section %q: %v", mid, err)
		return nil
	}

	for _, transceiver := range n.rtpTransceivers {
		if used[transceiver] || transceiver.Stopped || transceiver.Kind != remoteMedia.Type {
			continue
		}

		var codecs []RTPCodecParameters
		for _, c := range offered {
			remoteCodec := newRTPCodecParameters(remoteMedia.Type, c)
			for _, local := range transceiver.Codecs {
				if local.matches(remoteCodec) {
					codecs = append(codecs, remoteCodec)
					break
				}
			}
		}
		if len(codecs) == 0 {
			continue
		}

		used[transceiver] = true
		transceiver.Mid = mid
		direction := directionOf(remote, remoteMedia).Reverse().intersect(transceiver.Direction)

		media := newMedia(remoteMedia.Type, 9, remoteMedia.Protocol, payloadTypes(codecs))
		n.addTransport(media, "active", fingerprints)
		if mid != "" {
			media.AddAttribute("mid", mid)
		}
		media.AddProperty(string(direction))
		if transceiver.Track != nil && direction.sends() {
			media.AddAttribute("msid", transceiver.Track.msid())
		}
		media.AddProperty("rtcp-mux")
		for _, codec := range codecs {
			codec.appendTo(media)
		}
		return media
	}
	return nil
}

func (n *Negotiator) answerData(remoteMedia *sdp.Media, mid string, fingerprints []RTCDtlsFingerprint) *sdp.Media {
	media := newMedia(sdp.MediaTypeApplication, 9, remoteMedia.Protocol, remoteMedia.Format)
	n.addTransport(media, "active", fingerprints)
	if mid != "" {
		n.dataMid = mid
		media.AddAttribute("mid", mid)
	}
	port := sctpPort
	if a, ok := remoteMedia.Attribute("sctp-port"); ok && a.Value != nil {
		port = *a.Value
	}
	media.AddAttribute("sctp-port", port)
	if a, ok := remoteMedia.Attribute("max-message-size"); ok && a.Value != nil {
		media.AddAttribute("max-message-size", *a.Value)
	}
	return media
}

// bundleGroup returns the mids of the session-level a=group:BUNDLE.
func bundleGroup(doc *sdp.Document) map[string]bool {
	mids := make(map[string]bool)
	for _, a := range doc.Attributes("group") {
		if a.Value == nil {
			continue
		}
		fields := strings.Fields(*a.Value)
		if len(fields) == 0 || fields[0] != "BUNDLE" {
			continue
		}
		for _, mid := range fields[1:] {
			mids[mid] = true
		}
	}
	return mids
}
