package sdp

import (
	"io"
	"strconv"
	"strings"

	"github.com/pion/logging"
	"github.com/pkg/errors"
)

var defaultLoggerFactory logging.LoggerFactory = logging.NewDefaultLoggerFactory()

// Decoder reads a Document from an input stream.
type Decoder struct {
	r   io.Reader
	log logging.LeveledLogger
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithLoggerFactory makes the decoder log through factory.
func WithLoggerFactory(factory logging.LoggerFactory) DecoderOption {
	return func(d *Decoder) {
		if factory != nil {
			d.log = factory.NewLogger("sdp")
		}
	}
}

func NewDecoder(r io.Reader, opts ...DecoderOption) *Decoder {
	d := &Decoder{r: r}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = defaultLoggerFactory.NewLogger("sdp")
	}
	return d
}

// Decode reads the whole input and parses it. Both \n and \r\n line endings
// are accepted. The first failing line aborts the parse.
func (d *Decoder) Decode() (*Document, error) {
	data, err := io.ReadAll(d.r)
	if err != nil {
		return nil, errors.Wrap(err, "sdp: error while reading from reader")
	}
	return d.decode(string(data))
}

func (d *Decoder) decode(text string) (*Document, error) {
	records := groupRecords(text)
	doc := &Document{Props: make([]Prop, 0, len(records))}

	for i, record := range records {
		d.log.Tracef("record %d: %q", i, record)

		prop, err := parseProp(record)
		if err != nil {
			d.log.Debugf("rejecting description at record %d: %v", i, err)
			return nil, err
		}
		doc.Props = append(doc.Props, prop)
	}

	return doc, nil
}

// Parse parses SDP text into a Document.
func Parse(text string) (*Document, error) {
	return NewDecoder(nil).decode(text)
}

// Unmarshal parses SDP bytes into a Document.
func Unmarshal(data []byte) (*Document, error) {
	return Parse(string(data))
}

// groupRecords splits text into records, one per top-level line, with every
// line after an m= line merged into that media record up to the next m= line.
// Lines inside a media record are joined with \n.
func groupRecords(text string) []string {
	var groups [][]string
	inMedia := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}

		if line[0] == 'm' {
			inMedia = true
			groups = append(groups, []string{line})
			continue
		}

		if !inMedia {
			groups = append(groups, []string{line})
			continue
		}

		last := len(groups) - 1
		groups[last] = append(groups[last], line)
	}

	records := make([]string, len(groups))
	for i, lines := range groups {
		records[i] = strings.Join(lines, "\n")
	}
	return records
}

// splitLine splits a line on its first '='. The type must be one character.
func splitLine(line string) (byte, string, error) {
	i := strings.IndexByte(line, '=')
	if i != 1 {
		return 0, "", &ParseError{Kind: ErrMalformedLine, Line: line}
	}
	return line[0], line[2:], nil
}

// fields is a value split on spaces with bounds-checked access.
type fields []string

func splitFields(value string, n int) fields {
	return strings.SplitN(value, " ", n)
}

func (f fields) at(i int) (string, error) {
	if i >= len(f) {
		return "", malformed("")
	}
	return f[i], nil
}

func parseUint(token string, bitSize int) (uint64, error) {
	v, err := strconv.ParseUint(token, 10, bitSize)
	if err != nil {
		return 0, numeric(token, err)
	}
	return v, nil
}

func parseProp(record string) (Prop, error) {
	if record[0] == 'm' {
		return parseMedia(record)
	}

	prop, err := parsePropLine(record)
	if err != nil {
		return nil, withLine(err, record)
	}
	return prop, nil
}

func parsePropLine(line string) (Prop, error) {
	key, value, err := splitLine(line)
	if err != nil {
		return nil, err
	}

	switch key {
	case 'v':
		v, err := parseUint(value, 8)
		if err != nil {
			return nil, err
		}
		return Version(v), nil
	case 'o':
		return parseOrigin(value)
	case 's':
		return SessionName(value), nil
	case 'i':
		return SessionInformation(value), nil
	case 'u':
		return URI(value), nil
	case 'e':
		return Email(value), nil
	case 'p':
		return Phone(value), nil
	case 'c':
		return parseConnection(value)
	case 'b':
		return parseBandwidth(value)
	case 't':
		return parseTiming(value)
	case 'r':
		return parseRepeatTimes(value)
	case 'z':
		return parseTimeZone(value)
	case 'k':
		return parseEncryptionKeys(value)
	case 'a':
		return parseAttribute(value), nil
	default:
		return nil, unknownKey(key, value)
	}
}

func parseMediaProp(line string) (MediaProp, error) {
	key, value, err := splitLine(line)
	if err != nil {
		return nil, err
	}

	switch key {
	case 'i':
		return Title(value), nil
	case 'c':
		return parseConnection(value)
	case 'b':
		return parseBandwidth(value)
	case 'k':
		return parseEncryptionKeys(value)
	case 'a':
		return parseAttribute(value), nil
	default:
		return nil, unknownKey(key, value)
	}
}

// o=<username> <sess-id> <sess-version> <nettype> <addrtype> <unicast-address>
func parseOrigin(value string) (*Origin, error) {
	f := splitFields(value, 6)
	if len(f) < 6 {
		return nil, malformed(value)
	}

	version, err := parseUint(f[2], 64)
	if err != nil {
		return nil, err
	}
	netType, err := ParseNetworkType(f[3])
	if err != nil {
		return nil, err
	}
	addrType, err := ParseAddressType(f[4])
	if err != nil {
		return nil, err
	}

	return &Origin{
		Username:       f[0],
		SessionID:      f[1],
		SessionVersion: version,
		NetworkType:    netType,
		AddressType:    addrType,
		Address:        f[5],
	}, nil
}

// c=<nettype> <addrtype> <connection-address>[/<ttl>[/<number of addresses>]] [suffix]
func parseConnection(value string) (*Connection, error) {
	f := splitFields(value, 4)
	address, err := f.at(2)
	if err != nil {
		return nil, malformed(value)
	}

	conn := &Connection{}
	if conn.NetworkType, err = ParseNetworkType(f[0]); err != nil {
		return nil, err
	}
	if conn.AddressType, err = ParseAddressType(f[1]); err != nil {
		return nil, err
	}

	parts := strings.Split(address, "/")
	switch len(parts) {
	case 3:
		count, err := parseUint(parts[2], 64)
		if err != nil {
			return nil, err
		}
		conn.NumAddresses = &count
		fallthrough
	case 2:
		ttl, err := parseUint(parts[1], 64)
		if err != nil {
			return nil, err
		}
		conn.TTL = &ttl
		fallthrough
	case 1:
		conn.Address = parts[0]
	default:
		return nil, malformed(address)
	}

	if len(f) == 4 {
		suffix := f[3]
		conn.Suffix = &suffix
	}

	return conn, nil
}

// b=<bwtype>:<bandwidth>
func parseBandwidth(value string) (*Bandwidth, error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return nil, malformed(value)
	}

	bwType, err := ParseBandwidthType(parts[0])
	if err != nil {
		return nil, err
	}
	bandwidth, err := parseUint(parts[1], 64)
	if err != nil {
		return nil, err
	}

	return &Bandwidth{Type: bwType, Bandwidth: bandwidth}, nil
}

// t=<start-time> <stop-time>
func parseTiming(value string) (*Timing, error) {
	f := splitFields(value, 2)
	if len(f) != 2 {
		return nil, malformed(value)
	}

	start, err := parseUint(f[0], 64)
	if err != nil {
		return nil, err
	}
	stop, err := parseUint(f[1], 64)
	if err != nil {
		return nil, err
	}

	return &Timing{Start: start, Stop: stop}, nil
}

// r=<repeat interval> <active duration> <offsets from start-time>
func parseRepeatTimes(value string) (*RepeatTimes, error) {
	f := splitFields(value, 3)
	if len(f) < 2 {
		return nil, malformed(value)
	}

	repeat := &RepeatTimes{
		Interval:       f[0],
		ActiveDuration: f[1],
	}
	if len(f) == 3 {
		repeat.StartOffsets = strings.Split(f[2], " ")
	}

	return repeat, nil
}

// z=<adjustment time> <offset> <adjustment time> <offset> ....
func parseTimeZone(value string) (TimeZone, error) {
	f := strings.Split(value, " ")
	if len(f)%2 != 0 {
		return nil, malformed(value)
	}

	zone := make(TimeZone, 0, len(f)/2)
	for i := 0; i < len(f); i += 2 {
		t, err := parseUint(f[i], 64)
		if err != nil {
			return nil, err
		}
		zone = append(zone, TimeZoneAdjustment{Time: t, Offset: f[i+1]})
	}

	return zone, nil
}

// k=<method>
// k=<method>:<encryption key>
func parseEncryptionKeys(value string) (*EncryptionKeys, error) {
	if value == "prompt" {
		return &EncryptionKeys{Method: KeyMethodPrompt}, nil
	}

	method, key, _ := strings.Cut(value, ":")
	m, err := ParseKeyMethod(method)
	if err != nil || m == KeyMethodPrompt {
		return nil, unknownToken(value)
	}
	return &EncryptionKeys{Method: m, Key: key}, nil
}

// a=<attribute>
// a=<attribute>:<value>
func parseAttribute(value string) *Attribute {
	key, rest, found := strings.Cut(value, ":")
	if !found {
		return &Attribute{Key: value}
	}
	return &Attribute{Key: key, Value: &rest}
}

// parseMedia parses a grouped media record: the m= line followed by its
// nested lines separated with \n.
func parseMedia(record string) (*Media, error) {
	header, nested, _ := strings.Cut(record, "\n")

	media, err := parseMediaHeader(header)
	if err != nil {
		return nil, withLine(err, header)
	}

	if nested == "" {
		return media, nil
	}

	lines := strings.Split(nested, "\n")
	media.Props = make([]MediaProp, 0, len(lines))
	for _, line := range lines {
		prop, err := parseMediaProp(line)
		if err != nil {
			return nil, withLine(err, line)
		}
		media.Props = append(media.Props, prop)
	}

	return media, nil
}

// m=<media> <port>[/<port>...] <proto> <fmt> ...
func parseMediaHeader(line string) (*Media, error) {
	key, value, err := splitLine(line)
	if err != nil {
		return nil, err
	}
	if key != 'm' {
		return nil, unknownKey(key, value)
	}

	f := splitFields(value, 4)
	if len(f) < 3 {
		return nil, malformed(value)
	}

	mediaType, err := ParseMediaType(f[0])
	if err != nil {
		return nil, err
	}

	portTokens := strings.Split(f[1], "/")
	ports := make([]uint16, 0, len(portTokens))
	for _, token := range portTokens {
		port, err := parseUint(token, 16)
		if err != nil {
			return nil, err
		}
		ports = append(ports, uint16(port))
	}

	media := &Media{
		Type:     mediaType,
		Ports:    ports,
		Protocol: Protocol(f[2]),
	}
	if len(f) == 4 {
		media.Format = f[3]
	}

	return media, nil
}
