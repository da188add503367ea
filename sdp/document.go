package sdp

// Media returns the media sections of d in order.
func (d *Document) Media() []*Media {
	var media []*Media
	for _, prop := range d.Props {
		if m, ok := prop.(*Media); ok {
			media = append(media, m)
		}
	}
	return media
}

// Attribute returns the first session-level attribute named key.
func (d *Document) Attribute(key string) (*Attribute, bool) {
	for _, prop := range d.Props {
		if a, ok := prop.(*Attribute); ok && a.Key == key {
			return a, true
		}
	}
	return nil, false
}

// Attributes returns every session-level attribute named key.
func (d *Document) Attributes(key string) []*Attribute {
	var attrs []*Attribute
	for _, prop := range d.Props {
		if a, ok := prop.(*Attribute); ok && a.Key == key {
			attrs = append(attrs, a)
		}
	}
	return attrs
}

// Origin returns the o= record, if any.
func (d *Document) Origin() (*Origin, bool) {
	for _, prop := range d.Props {
		if o, ok := prop.(*Origin); ok {
			return o, true
		}
	}
	return nil, false
}

// Attribute returns the first attribute of the media section named key.
func (m *Media) Attribute(key string) (*Attribute, bool) {
	for _, prop := range m.Props {
		if a, ok := prop.(*Attribute); ok && a.Key == key {
			return a, true
		}
	}
	return nil, false
}

// Attributes returns every attribute of the media section named key.
func (m *Media) Attributes(key string) []*Attribute {
	var attrs []*Attribute
	for _, prop := range m.Props {
		if a, ok := prop.(*Attribute); ok && a.Key == key {
			attrs = append(attrs, a)
		}
	}
	return attrs
}

// Connection returns the media-level c= record, if any.
func (m *Media) Connection() (*Connection, bool) {
	for _, prop := range m.Props {
		if c, ok := prop.(*Connection); ok {
			return c, true
		}
	}
	return nil, false
}

// Port returns the first port of the section.
func (m *Media) Port() uint16 {
	if len(m.Ports) == 0 {
		return 0
	}
	return m.Ports[0]
}

// AddAttribute appends a session-level key:value attribute.
func (d *Document) AddAttribute(key, value string) {
	d.Props = append(d.Props, NewAttribute(key, value))
}

// AddProperty appends a session-level flag attribute.
func (d *Document) AddProperty(key string) {
	d.Props = append(d.Props, NewPropertyAttribute(key))
}

// AddAttribute appends a key:value attribute to the media section.
func (m *Media) AddAttribute(key, value string) {
	m.Props = append(m.Props, NewAttribute(key, value))
}

// AddProperty appends a flag attribute to the media section.
func (m *Media) AddProperty(key string) {
	m.Props = append(m.Props, NewPropertyAttribute(key))
}
