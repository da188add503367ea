package sdp

import (
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// LineEnding terminates every line written by the encoder.
type LineEnding string

const (
	LF   LineEnding = "\n"
	CRLF LineEnding = "\r\n"
)

// ParseLineEnding parses "lf" or "crlf", case-insensitively.
func ParseLineEnding(name string) (LineEnding, error) {
	switch strings.ToLower(name) {
	case "lf":
		return LF, nil
	case "crlf":
		return CRLF, nil
	default:
		return "", errors.Errorf("sdp: unknown line ending %q", name)
	}
}

type buffer struct {
	data []byte
}

func (b *buffer) writeUint(v uint64) *buffer {
	b.data = strconv.AppendUint(b.data, v, 10)
	return b
}

func (b *buffer) writeString(v string) *buffer {
	b.data = append(b.data, v...)
	return b
}

func (b *buffer) writeChar(char byte) *buffer {
	b.data = append(b.data, char)
	return b
}

func (b *buffer) writeSpace() *buffer {
	b.data = append(b.data, ' ')
	return b
}

func (b *buffer) writeKey(key byte) *buffer {
	b.data = append(b.data, key, '=')
	return b
}

var bufferPool = sync.Pool{
	New: func() interface{} { return &buffer{} },
}

type Encoder struct {
	w   io.Writer
	eol LineEnding
}

// NewEncoder returns an encoder terminating lines with eol.
func NewEncoder(w io.Writer, eol LineEnding) *Encoder {
	return &Encoder{w: w, eol: eol}
}

// Encode writes d followed by a single trailing line ending.
func (e *Encoder) Encode(d *Document) error {
	buf := bufferPool.Get().(*buffer)
	defer func() {
		buf.data = buf.data[:0]
		bufferPool.Put(buf)
	}()

	d.appendTo(buf, e.eol)

	written := 0
	for written < len(buf.data) {
		w, err := e.w.Write(buf.data[written:])
		if err != nil {
			return err
		}
		written += w
	}

	return nil
}

// Marshal renders d with eol after every line.
func (d *Document) Marshal(eol LineEnding) string {
	buf := &buffer{}
	d.appendTo(buf, eol)
	return string(buf.data)
}

func (d *Document) String() string {
	return d.Marshal(LF)
}

func (d *Document) appendTo(b *buffer, eol LineEnding) {
	for i, prop := range d.Props {
		if i > 0 {
			b.writeString(string(eol))
		}
		prop.appendTo(b, eol)
	}
	b.writeString(string(eol))
}

func (v Version) appendTo(b *buffer, _ LineEnding) {
	b.writeKey('v').writeUint(uint64(v))
}

func (o *Origin) appendTo(b *buffer, _ LineEnding) {
	b.writeKey('o').
		writeString(o.Username).writeSpace().
		writeString(o.SessionID).writeSpace().
		writeUint(o.SessionVersion).writeSpace().
		writeString(o.NetworkType.String()).writeSpace().
		writeString(o.AddressType.String()).writeSpace().
		writeString(o.Address)
}

func (s SessionName) appendTo(b *buffer, _ LineEnding) {
	b.writeKey('s').writeString(string(s))
}

func (i SessionInformation) appendTo(b *buffer, _ LineEnding) {
	b.writeKey('i').writeString(string(i))
}

func (u URI) appendTo(b *buffer, _ LineEnding) {
	b.writeKey('u').writeString(string(u))
}

func (e Email) appendTo(b *buffer, _ LineEnding) {
	b.writeKey('e').writeString(string(e))
}

func (p Phone) appendTo(b *buffer, _ LineEnding) {
	b.writeKey('p').writeString(string(p))
}

func (t Title) appendTo(b *buffer, _ LineEnding) {
	b.writeKey('i').writeString(string(t))
}

// TTL is written only when present; a connection built without one is not
// given a default.
func (c *Connection) appendTo(b *buffer, _ LineEnding) {
	b.writeKey('c').
		writeString(c.NetworkType.String()).writeSpace().
		writeString(c.AddressType.String()).writeSpace().
		writeString(c.Address)
	if c.TTL != nil {
		b.writeChar('/').writeUint(*c.TTL)
	}
	if c.NumAddresses != nil {
		b.writeChar('/').writeUint(*c.NumAddresses)
	}
	if c.Suffix != nil {
		b.writeSpace().writeString(*c.Suffix)
	}
}

func (bw *Bandwidth) appendTo(b *buffer, _ LineEnding) {
	b.writeKey('b').writeString(bw.Type.String()).writeChar(':').writeUint(bw.Bandwidth)
}

func (t *Timing) appendTo(b *buffer, _ LineEnding) {
	b.writeKey('t').writeUint(t.Start).writeSpace().writeUint(t.Stop)
}

func (r *RepeatTimes) appendTo(b *buffer, _ LineEnding) {
	b.writeKey('r').writeString(r.Interval).writeSpace().writeString(r.ActiveDuration)
	for _, offset := range r.StartOffsets {
		b.writeSpace().writeString(offset)
	}
}

func (z TimeZone) appendTo(b *buffer, _ LineEnding) {
	b.writeKey('z')
	for i, adj := range z {
		if i > 0 {
			b.writeSpace()
		}
		b.writeUint(adj.Time).writeSpace().writeString(adj.Offset)
	}
}

func (k *EncryptionKeys) appendTo(b *buffer, _ LineEnding) {
	b.writeKey('k').writeString(k.Method.String())
	if k.Method != KeyMethodPrompt {
		b.writeChar(':').writeString(k.Key)
	}
}

func (a *Attribute) appendTo(b *buffer, _ LineEnding) {
	b.writeKey('a').writeString(a.Key)
	if a.Value != nil {
		b.writeChar(':').writeString(*a.Value)
	}
}

func (m *Media) appendTo(b *buffer, eol LineEnding) {
	b.writeKey('m').writeString(m.Type.String()).writeSpace()
	for i, port := range m.Ports {
		if i > 0 {
			b.writeChar('/')
		}
		b.writeUint(uint64(port))
	}
	b.writeSpace().writeString(string(m.Protocol))
	if m.Format != "" {
		b.writeSpace().writeString(m.Format)
	}

	for _, prop := range m.Props {
		b.writeString(string(eol))
		prop.appendTo(b, eol)
	}
}

func render(p interface{ appendTo(*buffer, LineEnding) }) string {
	b := &buffer{}
	p.appendTo(b, LF)
	return string(b.data)
}

func (v Version) String() string            { return render(v) }
func (o *Origin) String() string            { return render(o) }
func (s SessionName) String() string        { return render(s) }
func (i SessionInformation) String() string { return render(i) }
func (u URI) String() string                { return render(u) }
func (e Email) String() string              { return render(e) }
func (p Phone) String() string              { return render(p) }
func (t Title) String() string              { return render(t) }
func (c *Connection) String() string        { return render(c) }
func (bw *Bandwidth) String() string        { return render(bw) }
func (t *Timing) String() string            { return render(t) }
func (r *RepeatTimes) String() string       { return render(r) }
func (z TimeZone) String() string           { return render(z) }
func (k *EncryptionKeys) String() string    { return render(k) }
func (a *Attribute) String() string         { return render(a) }
func (m *Media) String() string             { return render(m) }
