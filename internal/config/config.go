// Package config loads sdpredux settings with viper.
package config

import (
	"strings"

	"github.com/nostressdev/webrtcredux"
	"github.com/nostressdev/webrtcredux/internal/log"
	"github.com/nostressdev/webrtcredux/sdp"
	"github.com/pion/logging"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. SDPREDUX_LOG_LEVEL.
const EnvPrefix = "SDPREDUX"

type Config struct {
	LineEnding string      `mapstructure:"line_ending"`
	Log        log.Config  `mapstructure:"log"`
	Offer      OfferConfig `mapstructure:"offer"`
}

// OfferConfig describes the local side used by the offer command.
type OfferConfig struct {
	BundlePolicy  string        `mapstructure:"bundle_policy"`
	RtcpMuxPolicy string        `mapstructure:"rtcp_mux_policy"`
	Fingerprints  []string      `mapstructure:"fingerprints"`
	Tracks        []TrackConfig `mapstructure:"tracks"`
}

type TrackConfig struct {
	Kind      string        `mapstructure:"kind"`
	ID        string        `mapstructure:"id"`
	StreamID  string        `mapstructure:"stream_id"`
	Direction string        `mapstructure:"direction"`
	Codecs    []CodecConfig `mapstructure:"codecs"`
}

type CodecConfig struct {
	MimeType     string   `mapstructure:"mime_type"`
	PayloadType  uint8    `mapstructure:"payload_type"`
	ClockRate    uint32   `mapstructure:"clock_rate"`
	Channels     uint16   `mapstructure:"channels"`
	Fmtp         string   `mapstructure:"fmtp"`
	RTCPFeedback []string `mapstructure:"rtcp_feedback"`
}

var defaultTracks = []TrackConfig{
	{
		Kind: "audio", ID: "audio", StreamID: "sdpredux", Direction: "sendrecv",
		Codecs: []CodecConfig{
			{MimeType: "audio/opus", PayloadType: 111, ClockRate: 48000, Channels: 2, Fmtp: "minptime=10;useinbandfec=1", RTCPFeedback: []string{"transport-cc"}},
		},
	},
	{
		Kind: "video", ID: "video", StreamID: "sdpredux", Direction: "sendrecv",
		Codecs: []CodecConfig{
			{MimeType: "video/VP8", PayloadType: 96, ClockRate: 90000, RTCPFeedback: []string{"goog-remb", "ccm fir", "nack", "nack pli"}},
		},
	},
}

// Load reads the optional file at path, then environment overrides, then
// any changed flag in flags bound by FlagKeys.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.Wrapf(err, "failed to bind --%s", name)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}
	return &cfg, nil
}

// FlagKeys maps config keys to the command line flags overriding them.
var FlagKeys = map[string]string{
	"log.level":   "log-level",
	"line_ending": "line-ending",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("line_ending", "crlf")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file.enabled", false)
	v.SetDefault("log.file.path", "sdpredux.log")
	v.SetDefault("log.file.max_size_mb", 10)
	v.SetDefault("log.file.max_backups", 3)
	v.SetDefault("log.file.max_age_days", 7)
	v.SetDefault("log.file.compress", false)

	v.SetDefault("offer.bundle_policy", string(webrtcredux.RTCBundlePolicyMaxBundle))
	v.SetDefault("offer.rtcp_mux_policy", string(webrtcredux.RTCRtcpMuxPolicyRequire))
}

func (cfg *Config) ValidateAndApplyDefaults() error {
	if _, err := sdp.ParseLineEnding(cfg.LineEnding); err != nil {
		return err
	}

	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Log.Level] {
		return errors.Errorf("invalid log level: %s (must be trace/debug/info/warn/error)", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "text" {
		return errors.Errorf("invalid log format: %s (must be json/text)", cfg.Log.Format)
	}
	if cfg.Log.File.Enabled && cfg.Log.File.Path == "" {
		return errors.New("log.file.path is required when log.file.enabled=true")
	}

	if _, err := webrtcredux.NewRTCBundlePolicy(cfg.Offer.BundlePolicy); err != nil {
		return err
	}
	if _, err := webrtcredux.NewRTCRtcpMuxPolicy(cfg.Offer.RtcpMuxPolicy); err != nil {
		return err
	}
	for _, raw := range cfg.Offer.Fingerprints {
		if _, err := webrtcredux.NewRTCDtlsFingerprint(raw); err != nil {
			return err
		}
	}

	if len(cfg.Offer.Tracks) == 0 {
		cfg.Offer.Tracks = append([]TrackConfig(nil), defaultTracks...)
	}
	for i, track := range cfg.Offer.Tracks {
		if track.Direction == "" {
			cfg.Offer.Tracks[i].Direction = string(webrtcredux.RTCRtpTransceiverDirectionSendrecv)
		}
		if _, _, err := cfg.Offer.Tracks[i].transceiver(); err != nil {
			return errors.Wrapf(err, "offer.tracks[%d]", i)
		}
	}
	return nil
}

// EOL returns the configured line ending.
func (cfg *Config) EOL() sdp.LineEnding {
	eol, err := sdp.ParseLineEnding(cfg.LineEnding)
	if err != nil {
		return sdp.CRLF
	}
	return eol
}

func (t TrackConfig) transceiver() (*webrtcredux.MediaStreamTrack, webrtcredux.RTCRtpTransceiverDirection, error) {
	kind, err := sdp.ParseMediaType(t.Kind)
	if err != nil {
		return nil, "", err
	}
	track, err := webrtcredux.NewMediaStreamTrack(kind, t.ID, t.StreamID)
	if err != nil {
		return nil, "", err
	}
	direction, err := webrtcredux.NewRTCRtpTransceiverDirection(t.Direction)
	if err != nil {
		return nil, "", err
	}
	if len(t.Codecs) == 0 {
		return nil, "", errors.Errorf("track %s has no codecs", t.ID)
	}
	return track, direction, nil
}

func (t TrackConfig) codecs() []webrtcredux.RTPCodecParameters {
	codecs := make([]webrtcredux.RTPCodecParameters, 0, len(t.Codecs))
	for _, c := range t.Codecs {
		codecs = append(codecs, webrtcredux.RTPCodecParameters{
			MimeType:     c.MimeType,
			PayloadType:  c.PayloadType,
			ClockRate:    c.ClockRate,
			Channels:     c.Channels,
			SDPFmtpLine:  c.Fmtp,
			RTCPFeedback: c.RTCPFeedback,
		})
	}
	return codecs
}

// Negotiator builds a negotiator holding every configured track.
func (cfg *Config) Negotiator(factory logging.LoggerFactory) (*webrtcredux.Negotiator, error) {
	certificate := webrtcredux.RTCCertificate{}
	for _, raw := range cfg.Offer.Fingerprints {
		fingerprint, err := webrtcredux.NewRTCDtlsFingerprint(raw)
		if err != nil {
			return nil, err
		}
		certificate.Fingerprints = append(certificate.Fingerprints, fingerprint)
	}

	n, err := webrtcredux.NewNegotiator(webrtcredux.RTCConfiguration{
		BundlePolicy:  webrtcredux.RTCBundlePolicy(cfg.Offer.BundlePolicy),
		RtcpMuxPolicy: webrtcredux.RTCRtcpMuxPolicy(cfg.Offer.RtcpMuxPolicy),
		Certificates:  []webrtcredux.RTCCertificate{certificate},
		LineEnding:    cfg.EOL(),
		LoggerFactory: factory,
	})
	if err != nil {
		return nil, err
	}

	for i, t := range cfg.Offer.Tracks {
		track, direction, err := t.transceiver()
		if err != nil {
			return nil, errors.Wrapf(err, "offer.tracks[%d]", i)
		}
		if _, err := n.AddTransceiver(track, direction, t.codecs()); err != nil {
			return nil, errors.Wrapf(err, "offer.tracks[%d]", i)
		}
	}
	return n, nil
}
