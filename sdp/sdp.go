// Package sdp implements Session Description Protocol (SDP), rfc4566
//
// A Document is the ordered list of records found on the wire. Records keep
// the order they were parsed in, and every media section owns the lines that
// follow its m= line, so a parsed Document renders back to the same text.
package sdp

// Document is an ordered sequence of top-level records.
type Document struct {
	Props []Prop
}

// Prop is a top-level SDP record. It is implemented only by the record types
// of this package.
type Prop interface {
	// Kind returns the line type character, e.g. 'v' or 'm'.
	Kind() byte
	String() string

	appendTo(b *buffer, eol LineEnding)
}

// MediaProp is a record nested under an m= line.
type MediaProp interface {
	Kind() byte
	String() string

	appendTo(b *buffer, eol LineEnding)
	mediaProp()
}

// Version is the v= line.
type Version uint8

// Origin is the o= line.
type Origin struct {
	Username       string
	SessionID      string
	SessionVersion uint64
	NetworkType    NetworkType
	AddressType    AddressType
	Address        string
}

// SessionName is the s= line.
type SessionName string

// SessionInformation is the session-level i= line.
type SessionInformation string

// URI is the u= line.
type URI string

// Email is the e= line.
type Email string

// Phone is the p= line.
type Phone string

// Title is the media-level i= line.
type Title string

// Connection is the c= line. TTL and NumAddresses are the optional /-separated
// suffixes of the address; Suffix keeps any fields after the address verbatim.
type Connection struct {
	NetworkType  NetworkType
	AddressType  AddressType
	Address      string
	TTL          *uint64
	NumAddresses *uint64
	Suffix       *string
}

// Bandwidth is the b= line.
type Bandwidth struct {
	Type      BandwidthType
	Bandwidth uint64
}

// Timing is the t= line.
type Timing struct {
	Start uint64
	Stop  uint64
}

// RepeatTimes is the r= line. Values may carry d/h/m/s unit suffixes and are
// stored as written.
type RepeatTimes struct {
	Interval       string
	ActiveDuration string
	StartOffsets   []string
}

// TimeZoneAdjustment is one <adjustment time> <offset> pair of a z= line.
type TimeZoneAdjustment struct {
	Time   uint64
	Offset string
}

// TimeZone is the z= line.
type TimeZone []TimeZoneAdjustment

// EncryptionKeys is the k= line. Key is empty for KeyMethodPrompt.
type EncryptionKeys struct {
	Method KeyMethod
	Key    string
}

// Attribute is the a= line. Value is nil for flag attributes such as
// a=recvonly.
type Attribute struct {
	Key   string
	Value *string
}

// Media is an m= line together with the records that follow it up to the
// next m= line.
type Media struct {
	Type     MediaType
	Ports    []uint16
	Protocol Protocol
	Format   string
	Props    []MediaProp
}

// NewAttribute returns a key:value attribute.
func NewAttribute(key, value string) *Attribute {
	return &Attribute{Key: key, Value: &value}
}

// NewPropertyAttribute returns a flag attribute.
func NewPropertyAttribute(key string) *Attribute {
	return &Attribute{Key: key}
}

// IsFlag reports whether the attribute carries no value.
func (a *Attribute) IsFlag() bool {
	return a.Value == nil
}

// Kind implementations.

func (Version) Kind() byte            { return 'v' }
func (*Origin) Kind() byte            { return 'o' }
func (SessionName) Kind() byte        { return 's' }
func (SessionInformation) Kind() byte { return 'i' }
func (URI) Kind() byte                { return 'u' }
func (Email) Kind() byte              { return 'e' }
func (Phone) Kind() byte              { return 'p' }
func (Title) Kind() byte              { return 'i' }
func (*Connection) Kind() byte        { return 'c' }
func (*Bandwidth) Kind() byte         { return 'b' }
func (*Timing) Kind() byte            { return 't' }
func (*RepeatTimes) Kind() byte       { return 'r' }
func (TimeZone) Kind() byte           { return 'z' }
func (*EncryptionKeys) Kind() byte    { return 'k' }
func (*Attribute) Kind() byte         { return 'a' }
func (*Media) Kind() byte             { return 'm' }

func (Title) mediaProp()           {}
func (*Connection) mediaProp()     {}
func (*Bandwidth) mediaProp()      {}
func (*EncryptionKeys) mediaProp() {}
func (*Attribute) mediaProp()      {}
