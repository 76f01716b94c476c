// Package catalog reads, sorts and writes gettext PO/POT translation catalogs.
//
// A catalog is parsed into a header (file comments, header flags and the
// metadata fields carried by the empty-msgid entry) and an ordered list of
// entries. Entries are reordered by SortEntries and written back with
// Render or SaveCatalog; every field of every entry round-trips.
package catalog

// Occurrence is a source reference from a "#:" comment line.
type Occurrence struct {
	File string
	Line string // empty when the reference has no line number
}

// String renders the reference as it appears in a "#:" line.
func (o Occurrence) String() string {
	if o.Line == "" {
		return o.File
	}
	return o.File + ":" + o.Line
}

// Entry is one translatable unit of a catalog.
type Entry struct {
	Msgid        string
	Msgctxt      *string // nil when the entry has no context
	MsgidPlural  string
	Msgstr       string
	MsgstrPlural map[int]string

	TranslatorComments []string // "# " lines
	ExtractedComments  []string // "#." lines
	Occurrences        []Occurrence
	Flags              []string

	PreviousMsgctxt     *string // "#| msgctxt"
	PreviousMsgid       *string // "#| msgid"
	PreviousMsgidPlural *string // "#| msgid_plural"

	Obsolete bool // "#~" entry
}

// HasContext reports whether the entry carries a msgctxt, including an empty one.
func (e *Entry) HasContext() bool {
	return e.Msgctxt != nil
}

// Context returns the entry's msgctxt, or "" when it has none.
func (e *Entry) Context() string {
	if e.Msgctxt == nil {
		return ""
	}
	return *e.Msgctxt
}

// IsPlural reports whether the entry has plural forms.
func (e *Entry) IsPlural() bool {
	return e.MsgidPlural != "" || len(e.MsgstrPlural) > 0
}

// Field is a single "Key: Value" line of the header entry.
type Field struct {
	Key   string
	Value string
}

// Metadata is the ordered set of header fields.
// Keys keep the position of their first occurrence.
type Metadata struct {
	fields []Field
}

// Get returns the value for key and whether it was present.
func (m *Metadata) Get(key string) (string, bool) {
	for _, f := range m.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Set replaces the value of an existing key in place or appends a new field.
func (m *Metadata) Set(key, value string) {
	for i := range m.fields {
		if m.fields[i].Key == key {
			m.fields[i].Value = value
			return
		}
	}
	m.fields = append(m.fields, Field{Key: key, Value: value})
}

// Keys returns the field names in order.
func (m *Metadata) Keys() []string {
	keys := make([]string, len(m.fields))
	for i, f := range m.fields {
		keys[i] = f.Key
	}
	return keys
}

// Fields returns a copy of the fields in order.
func (m *Metadata) Fields() []Field {
	out := make([]Field, len(m.fields))
	copy(out, m.fields)
	return out
}

// Len returns the number of fields.
func (m *Metadata) Len() int {
	return len(m.fields)
}

// Catalog is a parsed PO/POT file.
type Catalog struct {
	// Header holds the comment lines attached to the header entry,
	// without their leading "# ".
	Header      []string
	HeaderFlags []string
	Metadata    Metadata
	Entries     []*Entry

	// Charset is the encoding declared by the Content-Type field.
	// Empty means UTF-8.
	Charset string
}

// Live returns the non-obsolete entries in order.
func (c *Catalog) Live() []*Entry {
	out := make([]*Entry, 0, len(c.Entries))
	for _, e := range c.Entries {
		if !e.Obsolete {
			out = append(out, e)
		}
	}
	return out
}

// ObsoleteEntries returns the "#~" entries in order.
func (c *Catalog) ObsoleteEntries() []*Entry {
	var out []*Entry
	for _, e := range c.Entries {
		if e.Obsolete {
			out = append(out, e)
		}
	}
	return out
}
