package webrtcredux

import (
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nostressdev/webrtcredux/sdp"
	"github.com/pion/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	opus = RTPCodecParameters{
		MimeType:     "audio/opus",
		PayloadType:  111,
		ClockRate:    48000,
		Channels:     2,
		SDPFmtpLine:  "minptime=10;useinbandfec=1",
		RTCPFeedback: []string{"transport-cc"},
	}
	vp8 = RTPCodecParameters{
		MimeType:     "video/VP8",
		PayloadType:  96,
		ClockRate:    90000,
		RTCPFeedback: []string{"nack", "nack pli"},
	}
	testCertificate = RTCCertificate{
		Fingerprints: []RTCDtlsFingerprint{{Algorithm: "sha-256", Value: "1C:B4:37:B1"}},
	}
)

func newTestNegotiator(t *testing.T, configuration RTCConfiguration) *Negotiator {
	t.Helper()

	if configuration.Certificates == nil {
		configuration.Certificates = []RTCCertificate{testCertificate}
	}
	if configuration.LoggerFactory == nil {
		factory := logging.NewDefaultLoggerFactory()
		factory.DefaultLogLevel = logging.LogLevelDisabled
		configuration.LoggerFactory = factory
	}

	n, err := NewNegotiator(configuration)
	require.NoError(t, err)
	return n
}

func addTracks(t *testing.T, n *Negotiator) {
	t.Helper()

	audio, err := NewMediaStreamTrack(sdp.MediaTypeAudio, "audio0", "stream")
	require.NoError(t, err)
	_, err = n.AddTransceiver(audio, RTCRtpTransceiverDirectionSendrecv, []RTPCodecParameters{opus})
	require.NoError(t, err)

	video, err := NewMediaStreamTrack(sdp.MediaTypeVideo, "video0", "stream")
	require.NoError(t, err)
	_, err = n.AddTransceiver(video, RTCRtpTransceiverDirectionSendonly, []RTPCodecParameters{vp8})
	require.NoError(t, err)
}

func attributeValue(t *testing.T, m *sdp.Media, key string) string {
	t.Helper()

	a, ok := m.Attribute(key)
	require.True(t, ok, "missing a=%s", key)
	require.NotNil(t, a.Value)
	return *a.Value
}

func TestCreateOffer(t *testing.T) {
	n := newTestNegotiator(t, RTCConfiguration{BundlePolicy: RTCBundlePolicyBalanced})
	addTracks(t, n)

	offer, err := n.CreateOffer()
	require.NoError(t, err)
	assert.Equal(t, RTCSdpTypeOffer, offer.Type)
	assert.True(t, strings.HasSuffix(offer.SDP, "\r\n"))

	doc, err := sdp.Parse(offer.SDP)
	require.NoError(t, err)

	origin, ok := doc.Origin()
	require.True(t, ok)
	assert.Equal(t, uint64(1), origin.SessionVersion)
	id, err := strconv.ParseUint(origin.SessionID, 10, 64)
	require.NoError(t, err)
	assert.Less(t, id, uint64(1)<<63)

	var groups []string
	for _, a := range doc.Attributes("group") {
		groups = append(groups, *a.Value)
	}
	assert.Equal(t, []string{"BUNDLE 0 1 2", "LS 0 1"}, groups)

	media := doc.Media()
	require.Len(t, media, 3)
	for i, m := range media {
		assert.Equal(t, uint16(9), m.Port(), "media %d", i)
		assert.Equal(t, strconv.Itoa(i), attributeValue(t, m, "mid"))
		assert.Equal(t, "actpass", attributeValue(t, m, "setup"))
		assert.Equal(t, "sha-256 1C:B4:37:B1", attributeValue(t, m, "fingerprint"))
		assert.Len(t, attributeValue(t, m, "ice-ufrag"), iceUfragLength)
		assert.Len(t, attributeValue(t, m, "ice-pwd"), icePwdLength)
	}
	assert.Equal(t, attributeValue(t, media[0], "ice-pwd"), attributeValue(t, media[2], "ice-pwd"))

	assert.Equal(t, sdp.ProtocolUDPTLSRTPSAVPF, media[0].Protocol)
	assert.Equal(t, "111", media[0].Format)
	assert.Equal(t, "stream audio0", attributeValue(t, media[0], "msid"))
	_, ok = media[0].Attribute("rtcp-mux")
	assert.True(t, ok)
	_, ok = media[0].Attribute("rtcp")
	assert.False(t, ok)

	assert.Equal(t, sdp.ProtocolUDPDTLSSCTP, media[2].Protocol)
	assert.Equal(t, "webrtc-datachannel", media[2].Format)
	assert.Equal(t, "5000", attributeValue(t, media[2], "sctp-port"))

	transceivers, err := offer.Transceivers()
	require.NoError(t, err)
	assert.Equal(t, []RTPCodecParameters{opus}, transceivers[0].Codecs)
	assert.Equal(t, []RTPCodecParameters{vp8}, transceivers[1].Codecs)
	assert.Equal(t, RTCRtpTransceiverDirectionSendonly, transceivers[1].Direction)

	again, err := n.CreateOffer()
	require.NoError(t, err)
	againDoc, err := again.Unmarshal()
	require.NoError(t, err)
	againOrigin, _ := againDoc.Origin()
	assert.Equal(t, origin.SessionID, againOrigin.SessionID)
	assert.Equal(t, uint64(2), againOrigin.SessionVersion)
	assert.Equal(t, "2", attributeValue(t, againDoc.Media()[2], "mid"))
}

func TestCreateOfferBundlePolicy(t *testing.T) {
	testCases := []struct {
		policy RTCBundlePolicy
		ports  []uint16
	}{
		{RTCBundlePolicyBalanced, []uint16{9, 0, 9, 9}},
		{RTCBundlePolicyMaxBundle, []uint16{9, 0, 0, 0}},
		{RTCBundlePolicyMaxCompat, []uint16{9, 9, 9, 9}},
	}

	for _, testCase := range testCases {
		t.Run(string(testCase.policy), func(t *testing.T) {
			n := newTestNegotiator(t, RTCConfiguration{BundlePolicy: testCase.policy})

			for i, kind := range []sdp.MediaType{sdp.MediaTypeAudio, sdp.MediaTypeAudio, sdp.MediaTypeVideo} {
				codec := opus
				if kind == sdp.MediaTypeVideo {
					codec = vp8
				}
				track, err := NewMediaStreamTrack(kind, "track"+strconv.Itoa(i), "")
				require.NoError(t, err)
				_, err = n.AddTransceiver(track, RTCRtpTransceiverDirectionSendrecv, []RTPCodecParameters{codec})
				require.NoError(t, err)
			}

			offer, err := n.CreateOffer()
			require.NoError(t, err)
			doc, err := offer.Unmarshal()
			require.NoError(t, err)

			for i, m := range doc.Media() {
				assert.Equal(t, testCase.ports[i], m.Port(), "media %d", i)

				_, bundleOnly := m.Attribute("bundle-only")
				_, hasCredentials := m.Attribute("ice-ufrag")
				assert.Equal(t, m.Port() == 0, bundleOnly, "media %d", i)
				assert.Equal(t, m.Port() != 0, hasCredentials, "media %d", i)
			}

			transceivers, err := offer.Transceivers()
			require.NoError(t, err)
			for _, transceiver := range transceivers {
				assert.False(t, transceiver.Stopped)
			}
			assert.Equal(t, "- track0", attributeValue(t, doc.Media()[0], "msid"))
			assert.Len(t, doc.Attributes("group"), 1)
		})
	}
}

func TestCreateOfferRtcpMuxNegotiate(t *testing.T) {
	n := newTestNegotiator(t, RTCConfiguration{RtcpMuxPolicy: RTCRtcpMuxPolicyNegotiate, LineEnding: sdp.LF})
	addTracks(t, n)

	offer, err := n.CreateOffer()
	require.NoError(t, err)
	assert.NotContains(t, offer.SDP, "\r")

	doc, err := offer.Unmarshal()
	require.NoError(t, err)
	assert.Equal(t, "9 IN IP4 0.0.0.0", attributeValue(t, doc.Media()[0], "rtcp"))
}

func TestCreateOfferExpiredCertificate(t *testing.T) {
	n := newTestNegotiator(t, RTCConfiguration{
		Certificates: []RTCCertificate{{Expires: EpochTimeStamp(time.Now().Add(-time.Hour).UnixMilli())}},
	})

	_, err := n.CreateOffer()
	assert.Equal(t, ErrInvalidState, ErrorCode(err))
}

func TestNewNegotiatorValidation(t *testing.T) {
	_, err := NewNegotiator(RTCConfiguration{BundlePolicy: "balancded"})
	assert.Equal(t, ErrSyntax, ErrorCode(err))

	_, err = NewNegotiator(RTCConfiguration{RtcpMuxPolicy: "optional"})
	assert.Equal(t, ErrSyntax, ErrorCode(err))

	_, err = NewNegotiator(RTCConfiguration{LineEnding: "\r"})
	assert.Equal(t, ErrSyntax, ErrorCode(err))
}

func TestAddTransceiverValidation(t *testing.T) {
	n := newTestNegotiator(t, RTCConfiguration{})
	audio := &MediaStreamTrack{Kind: sdp.MediaTypeAudio, ID: "a"}

	testCases := []struct {
		name      string
		track     *MediaStreamTrack
		direction RTCRtpTransceiverDirection
		codecs    []RTPCodecParameters
		code      string
	}{
		{"no track", nil, RTCRtpTransceiverDirectionSendrecv, []RTPCodecParameters{opus}, ErrInvalidModification},
		{"data track", &MediaStreamTrack{Kind: sdp.MediaTypeApplication, ID: "d"}, RTCRtpTransceiverDirectionSendrecv, []RTPCodecParameters{opus}, ErrInvalidModification},
		{"bad direction", audio, "up", []RTPCodecParameters{opus}, ErrSyntax},
		{"no codecs", audio, RTCRtpTransceiverDirectionSendrecv, nil, ErrInvalidModification},
		{"wrong kind codec", audio, RTCRtpTransceiverDirectionSendrecv, []RTPCodecParameters{vp8}, ErrInvalidModification},
	}

	for _, testCase := range testCases {
		_, err := n.AddTransceiver(testCase.track, testCase.direction, testCase.codecs)
		assert.Equal(t, testCase.code, ErrorCode(err), testCase.name)
	}
}

const chromeOffer = `v=0
o=- 3551982888046034593 2 IN IP4 127.0.0.1
s=-
t=0 0
a=group:BUNDLE 0 1 2 3
m=video 9 UDP/TLS/RTP/SAVPF 96 97 100
c=IN IP4 0.0.0.0
a=ice-ufrag:17df
a=ice-pwd:IUohGJRpNgFi0H5ryr5To2G9
a=setup:actpass
a=mid:0
a=sendrecv
a=msid:s1 v1
a=rtcp-mux
a=rtpmap:96 H264/90000
a=rtcp-fb:96 nack
a=fmtp:96 level-asymmetry-allowed=1;packetization-mode=1;profile-level-id=42e01f
a=rtpmap:97 rtx/90000
a=fmtp:97 apt=96
a=rtpmap:100 VP8/90000
a=rtcp-fb:100 nack pli
m=audio 9 UDP/TLS/RTP/SAVPF 109 0
c=IN IP4 0.0.0.0
a=mid:1
a=sendonly
a=rtcp-mux
a=rtpmap:109 OPUS/48000/2
a=rtpmap:0 PCMU/8000
m=audio 9 UDP/TLS/RTP/SAVPF 0
c=IN IP4 0.0.0.0
a=mid:2
a=rtcp-mux
a=rtpmap:0 PCMU/8000
m=application 9 UDP/DTLS/SCTP webrtc-datachannel
c=IN IP4 0.0.0.0
a=mid:3
a=sctp-port:5001
a=max-message-size:262144
`

func TestCreateAnswer(t *testing.T) {
	n := newTestNegotiator(t, RTCConfiguration{})
	addTracks(t, n)
	n.rtpTransceivers[1].Direction = RTCRtpTransceiverDirectionSendrecv

	answer, err := n.CreateAnswer(&RTCSessionDescription{Type: RTCSdpTypeOffer, SDP: chromeOffer})
	require.NoError(t, err)
	assert.Equal(t, RTCSdpTypeAnswer, answer.Type)

	doc, err := answer.Unmarshal()
	require.NoError(t, err)

	group, ok := doc.Attribute("group")
	require.True(t, ok)
	assert.Equal(t, "BUNDLE 0 1 3", *group.Value)

	media := doc.Media()
	require.Len(t, media, 4)

	assert.Equal(t, "100", media[0].Format)
	assert.Equal(t, "active", attributeValue(t, media[0], "setup"))
	assert.Equal(t, "stream video0", attributeValue(t, media[0], "msid"))

	assert.Equal(t, "109", media[1].Format)
	_, ok = media[1].Attribute("msid")
	assert.False(t, ok, "a recvonly section announces no track")

	assert.Equal(t, uint16(0), media[2].Port())
	assert.Equal(t, "0", media[2].Format)
	assert.Len(t, media[2].Props, 1)

	assert.Equal(t, "5001", attributeValue(t, media[3], "sctp-port"))
	assert.Equal(t, "262144", attributeValue(t, media[3], "max-message-size"))

	transceivers, err := answer.Transceivers()
	require.NoError(t, err)
	assert.Equal(t, &RTCRtpTransceiver{
		Mid:       "0",
		Kind:      sdp.MediaTypeVideo,
		Direction: RTCRtpTransceiverDirectionSendrecv,
		Codecs: []RTPCodecParameters{
			{MimeType: "video/VP8", PayloadType: 100, ClockRate: 90000, RTCPFeedback: []string{"nack pli"}},
		},
		Track: &MediaStreamTrack{Kind: sdp.MediaTypeVideo, ID: "video0", StreamID: "stream"},
	}, transceivers[0])
	assert.Equal(t, RTCRtpTransceiverDirectionRecvonly, transceivers[1].Direction)
	assert.Equal(t, "audio/OPUS", transceivers[1].Codecs[0].MimeType)
	assert.True(t, transceivers[2].Stopped)
	assert.Equal(t, "3", transceivers[3].Mid)

	assert.Equal(t, "1", n.rtpTransceivers[0].Mid)
	assert.Equal(t, "0", n.rtpTransceivers[1].Mid)
}

func TestCreateAnswerRtcpMuxRequired(t *testing.T) {
	offer := strings.Replace(chromeOffer, "a=mid:1\na=sendonly\na=rtcp-mux\n", "a=mid:1\na=sendonly\n", 1)

	for _, testCase := range []struct {
		policy RTCRtcpMuxPolicy
		port   uint16
	}{
		{RTCRtcpMuxPolicyRequire, 0},
		{RTCRtcpMuxPolicyNegotiate, 9},
	} {
		n := newTestNegotiator(t, RTCConfiguration{RtcpMuxPolicy: testCase.policy})
		addTracks(t, n)

		answer, err := n.CreateAnswer(&RTCSessionDescription{Type: RTCSdpTypeOffer, SDP: offer})
		require.NoError(t, err)
		doc, err := answer.Unmarshal()
		require.NoError(t, err)
		assert.Equal(t, testCase.port, doc.Media()[1].Port(), string(testCase.policy))
	}
}

func TestCreateAnswerErrors(t *testing.T) {
	n := newTestNegotiator(t, RTCConfiguration{})

	_, err := n.CreateAnswer(nil)
	assert.Equal(t, ErrInvalidState, ErrorCode(err))

	_, err = n.CreateAnswer(&RTCSessionDescription{Type: RTCSdpTypeAnswer, SDP: chromeOffer})
	assert.Equal(t, ErrInvalidState, ErrorCode(err))

	_, err = n.CreateAnswer(&RTCSessionDescription{Type: RTCSdpTypeOffer, SDP: "v=0\nt=now"})
	assert.Equal(t, ErrSyntax, ErrorCode(err))
}

func TestOfferAnswerExchange(t *testing.T) {
	offerer := newTestNegotiator(t, RTCConfiguration{})
	answerer := newTestNegotiator(t, RTCConfiguration{})
	addTracks(t, offerer)
	addTracks(t, answerer)

	offer, err := offerer.CreateOffer()
	require.NoError(t, err)
	require.NoError(t, offerer.SetLocalDescription(offer))
	assert.Equal(t, RTCSignalingStateHaveLocalOffer, offerer.SignalingState())

	_, err = offerer.CreateAnswer(offer)
	assert.Equal(t, ErrInvalidState, ErrorCode(err))

	encoded, err := Encode(offer, true)
	require.NoError(t, err)
	received, err := Decode(encoded, RTCSdpTypeAnswer)
	require.NoError(t, err)

	require.NoError(t, answerer.SetRemoteDescription(received))
	assert.Equal(t, RTCSignalingStateHaveRemoteOffer, answerer.SignalingState())

	answer, err := answerer.CreateAnswer(received)
	require.NoError(t, err)
	require.NoError(t, answerer.SetLocalDescription(answer))
	assert.Equal(t, RTCSignalingStateStable, answerer.SignalingState())

	require.NoError(t, offerer.SetRemoteDescription(answer))
	assert.Equal(t, RTCSignalingStateStable, offerer.SignalingState())
	assert.Same(t, offer, offerer.LocalDescription())
	assert.Same(t, answer, offerer.RemoteDescription())

	transceivers, err := answer.Transceivers()
	require.NoError(t, err)
	require.Len(t, transceivers, 3)
	assert.Equal(t, RTCRtpTransceiverDirectionSendrecv, transceivers[0].Direction)
	// both sides only send video
	assert.Equal(t, RTCRtpTransceiverDirectionInactive, transceivers[1].Direction)
	assert.False(t, transceivers[2].Stopped)

	err = offerer.SetRemoteDescription(answer)
	assert.Equal(t, ErrInvalidModification, ErrorCode(err))
}

func TestRenegotiationKeepsRemoteMids(t *testing.T) {
	remote := newTestNegotiator(t, RTCConfiguration{})
	audio, err := NewMediaStreamTrack(sdp.MediaTypeAudio, "remote-audio", "")
	require.NoError(t, err)
	_, err = remote.AddTransceiver(audio, RTCRtpTransceiverDirectionSendrecv, []RTPCodecParameters{opus})
	require.NoError(t, err)

	local := newTestNegotiator(t, RTCConfiguration{})
	addTracks(t, local)

	offer, err := remote.CreateOffer()
	require.NoError(t, err)
	require.NoError(t, local.SetRemoteDescription(offer))
	answer, err := local.CreateAnswer(offer)
	require.NoError(t, err)
	require.NoError(t, local.SetLocalDescription(answer))

	reoffer, err := local.CreateOffer()
	require.NoError(t, err)
	doc, err := reoffer.Unmarshal()
	require.NoError(t, err)

	var mids []string
	for _, m := range doc.Media() {
		mids = append(mids, attributeValue(t, m, "mid"))
	}
	assert.Equal(t, []string{"0", "2", "1"}, mids)

	group, ok := doc.Attribute("group")
	require.True(t, ok)
	assert.Equal(t, "BUNDLE 0 2 1", *group.Value)
}

func TestRollback(t *testing.T) {
	n := newTestNegotiator(t, RTCConfiguration{})

	offer, err := n.CreateOffer()
	require.NoError(t, err)
	require.NoError(t, n.SetLocalDescription(offer))

	err = n.SetRemoteDescription(&RTCSessionDescription{Type: RTCSdpTypeRollback})
	assert.Equal(t, ErrInvalidState, ErrorCode(err))

	require.NoError(t, n.SetLocalDescription(&RTCSessionDescription{Type: RTCSdpTypeRollback}))
	assert.Equal(t, RTCSignalingStateStable, n.SignalingState())
	assert.Nil(t, n.LocalDescription())
}

func TestPranswer(t *testing.T) {
	n := newTestNegotiator(t, RTCConfiguration{})
	offer := &RTCSessionDescription{Type: RTCSdpTypeOffer, SDP: chromeOffer}
	require.NoError(t, n.SetRemoteDescription(offer))

	answer, err := n.CreateAnswer(offer)
	require.NoError(t, err)
	pranswer := &RTCSessionDescription{Type: RTCSdpTypePranswer, SDP: answer.SDP}

	require.NoError(t, n.SetLocalDescription(pranswer))
	assert.Equal(t, RTCSignalingStateHaveLocalPranswer, n.SignalingState())
	assert.Same(t, pranswer, n.LocalDescription())

	require.NoError(t, n.SetLocalDescription(answer))
	assert.Equal(t, RTCSignalingStateStable, n.SignalingState())
	assert.Same(t, answer, n.LocalDescription())
	assert.Same(t, offer, n.RemoteDescription())
}

func TestSetRemoteDescriptionRejectsBadSDP(t *testing.T) {
	n := newTestNegotiator(t, RTCConfiguration{})

	err := n.SetRemoteDescription(&RTCSessionDescription{Type: RTCSdpTypeOffer, SDP: "v=x"})
	assert.Equal(t, ErrSyntax, ErrorCode(err))
	assert.Equal(t, RTCSignalingStateStable, n.SignalingState())

	err = n.SetRemoteDescription(nil)
	assert.Equal(t, ErrInvalidModification, ErrorCode(err))
}

func TestClose(t *testing.T) {
	n := newTestNegotiator(t, RTCConfiguration{})
	n.Close()
	assert.Equal(t, RTCSignalingStateClosed, n.SignalingState())

	_, err := n.CreateOffer()
	assert.Equal(t, ErrInvalidState, ErrorCode(err))
	_, err = n.CreateAnswer(&RTCSessionDescription{Type: RTCSdpTypeOffer, SDP: chromeOffer})
	assert.Equal(t, ErrInvalidState, ErrorCode(err))
	_, err = n.AddTransceiver(&MediaStreamTrack{Kind: sdp.MediaTypeAudio, ID: "a"}, RTCRtpTransceiverDirectionSendrecv, []RTPCodecParameters{opus})
	assert.Equal(t, ErrInvalidState, ErrorCode(err))
	err = n.SetLocalDescription(&RTCSessionDescription{Type: RTCSdpTypeRollback})
	assert.Equal(t, ErrInvalidState, ErrorCode(err))
}

func TestNegotiatorConcurrentUse(t *testing.T) {
	n := newTestNegotiator(t, RTCConfiguration{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			track, err := NewMediaStreamTrack(sdp.MediaTypeAudio, "track"+strconv.Itoa(i), "")
			assert.NoError(t, err)
			_, err = n.AddTransceiver(track, RTCRtpTransceiverDirectionSendrecv, []RTPCodecParameters{opus})
			assert.NoError(t, err)
			_, err = n.CreateOffer()
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	offer, err := n.CreateOffer()
	require.NoError(t, err)
	doc, err := offer.Unmarshal()
	require.NoError(t, err)
	assert.Len(t, doc.Media(), 9)

	origin, _ := doc.Origin()
	assert.Equal(t, uint64(9), origin.SessionVersion)

	mids := make(map[string]bool)
	for _, m := range doc.Media() {
		mids[attributeValue(t, m, "mid")] = true
	}
	assert.Len(t, mids, 9)
}

func TestNegotiatorSharedOffer(t *testing.T) {
	offerer := newTestNegotiator(t, RTCConfiguration{})
	addTracks(t, offerer)
	created, err := offerer.CreateOffer()
	require.NoError(t, err)

	// a decoded description, as received over signalling
	offer := &RTCSessionDescription{Type: created.Type, SDP: created.SDP}
	answerers := []*Negotiator{newTestNegotiator(t, RTCConfiguration{}), newTestNegotiator(t, RTCConfiguration{})}
	for _, answerer := range answerers {
		addTracks(t, answerer)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(answerer *Negotiator) {
			defer wg.Done()

			answer, err := answerer.CreateAnswer(offer)
			if !assert.NoError(t, err) {
				return
			}
			doc, err := answer.Unmarshal()
			if assert.NoError(t, err) {
				assert.Len(t, doc.Media(), 3)
			}
			assert.NoError(t, answerer.SetRemoteDescription(offer))
		}(answerers[i%len(answerers)])
	}
	wg.Wait()

	for _, answerer := range answerers {
		assert.Equal(t, RTCSignalingStateHaveRemoteOffer, answerer.SignalingState())
	}
}
