package catalog

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultWrapWidth is the line width gettext tools wrap string fields at.
const DefaultWrapWidth = 78

// WriteOptions controls serialization.
type WriteOptions struct {
	// WrapWidth is the maximum line width for string fields and "#:" lines.
	// Zero or negative disables wrapping.
	WrapWidth int
}

// DefaultWriteOptions returns the gettext-compatible defaults.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{WrapWidth: DefaultWrapWidth}
}

// Render serializes the catalog header followed by entries, in the order
// given, except that obsolete entries are moved after all live entries.
// Lines are terminated by "\n".
func (c *Catalog) Render(entries []*Entry, opts WriteOptions) string {
	w := &writer{width: opts.WrapWidth}

	w.writeHeader(c)

	for _, e := range outputOrder(entries) {
		w.b.WriteByte('\n')
		w.writeEntry(e)
	}

	return w.b.String()
}

// outputOrder returns entries with the obsolete ones moved to the end,
// keeping the relative order within each group.
func outputOrder(entries []*Entry) []*Entry {
	out := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		if !e.Obsolete {
			out = append(out, e)
		}
	}
	for _, e := range entries {
		if e.Obsolete {
			out = append(out, e)
		}
	}
	return out
}

// String renders the catalog with its current entry order and default options.
func (c *Catalog) String() string {
	return c.Render(c.Entries, DefaultWriteOptions())
}

type writer struct {
	b     strings.Builder
	width int
}

func (w *writer) line(parts ...string) {
	for _, p := range parts {
		w.b.WriteString(p)
	}
	w.b.WriteByte('\n')
}

func (w *writer) writeHeader(c *Catalog) {
	w.writeComments("#", c.Header)
	if len(c.HeaderFlags) > 0 {
		w.line("#, ", strings.Join(c.HeaderFlags, ", "))
	}

	var msgstr strings.Builder
	for _, f := range c.Metadata.fields {
		msgstr.WriteString(f.Key)
		msgstr.WriteString(": ")
		msgstr.WriteString(f.Value)
		msgstr.WriteByte('\n')
	}

	w.writeField("", "msgid", "", "")
	if msgstr.Len() == 0 {
		w.writeField("", "msgstr", "", "")
		return
	}
	// Header fields always go one per line, as gettext tools write them.
	w.line(`msgstr ""`)
	for _, s := range splitAfterNewlines(msgstr.String()) {
		w.line(`"`, escape(s), `"`)
	}
}

func (w *writer) writeEntry(e *Entry) {
	w.writeComments("#.", e.ExtractedComments)
	w.writeComments("#", e.TranslatorComments)
	w.writeOccurrences(e.Occurrences)
	if len(e.Flags) > 0 {
		w.line("#, ", strings.Join(e.Flags, ", "))
	}

	prefix, prevPrefix := "", "#| "
	if e.Obsolete {
		prefix, prevPrefix = "#~ ", "#~| "
	}

	if e.PreviousMsgctxt != nil {
		w.writeField(prevPrefix, "msgctxt", "", *e.PreviousMsgctxt)
	}
	if e.PreviousMsgid != nil {
		w.writeField(prevPrefix, "msgid", "", *e.PreviousMsgid)
	}
	if e.PreviousMsgidPlural != nil {
		w.writeField(prevPrefix, "msgid_plural", "", *e.PreviousMsgidPlural)
	}

	if e.Msgctxt != nil {
		w.writeField(prefix, "msgctxt", "", *e.Msgctxt)
	}
	w.writeField(prefix, "msgid", "", e.Msgid)
	if e.MsgidPlural != "" {
		w.writeField(prefix, "msgid_plural", "", e.MsgidPlural)
	}

	if len(e.MsgstrPlural) == 0 {
		w.writeField(prefix, "msgstr", "", e.Msgstr)
		return
	}
	indexes := make([]int, 0, len(e.MsgstrPlural))
	for i := range e.MsgstrPlural {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	for _, i := range indexes {
		w.writeField(prefix, "msgstr", "["+strconv.Itoa(i)+"]", e.MsgstrPlural[i])
	}
}

// writeComments writes one comment line per element. Empty comments are
// written as the bare marker.
func (w *writer) writeComments(marker string, comments []string) {
	for _, c := range comments {
		if c == "" {
			w.line(marker)
			continue
		}
		w.line(marker, " ", c)
	}
}

func (w *writer) writeOccurrences(refs []Occurrence) {
	if len(refs) == 0 {
		return
	}
	const lead = "#: "

	cur := lead
	for _, ref := range refs {
		s := ref.String()
		switch {
		case cur == lead:
			cur += s
		case w.width > 0 && runeLen(cur)+1+runeLen(s) > w.width:
			w.line(cur)
			cur = lead + s
		default:
			cur += " " + s
		}
	}
	w.line(cur)
}

// writeField writes `keyword "value"`, switching to the multi-line form when
// the value contains newlines or does not fit on one line.
func (w *writer) writeField(prefix, keyword, index, value string) {
	head := prefix + keyword + index + " "

	segments := splitAfterNewlines(value)
	if len(segments) > 1 {
		w.line(head, `""`)
		for _, s := range segments {
			w.line(prefix, `"`, escape(s), `"`)
		}
		return
	}

	escaped := escape(value)
	if w.width > 0 && escaped != "" && runeLen(keyword+index)+3+runeLen(escaped) > w.width {
		w.line(head, `""`)
		for _, chunk := range wrapWords(escaped, w.width-2) {
			w.line(prefix, `"`, chunk, `"`)
		}
		return
	}

	w.line(head, `"`, escaped, `"`)
}

// splitAfterNewlines splits s after every "\n", keeping the separators.
func splitAfterNewlines(s string) []string {
	parts := strings.SplitAfter(s, "\n")
	if len(parts) > 1 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

var escaper = strings.NewReplacer(
	"\\", "\\\\",
	"\"", "\\\"",
	"\n", "\\n",
	"\t", "\\t",
	"\r", "\\r",
	"\a", "\\a",
	"\b", "\\b",
	"\f", "\\f",
	"\v", "\\v",
)

func escape(s string) string {
	return escaper.Replace(s)
}

// wrapWords splits an escaped string into chunks of at most width runes,
// breaking only between runs of spaces and non-spaces. Whitespace is kept
// and words longer than width are not broken.
func wrapWords(s string, width int) []string {
	var (
		lines []string
		cur   string
	)
	for _, tok := range tokenize(s) {
		switch {
		case cur == "":
			cur = tok
		case runeLen(cur)+runeLen(tok) <= width:
			cur += tok
		default:
			lines = append(lines, cur)
			cur = tok
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

// tokenize splits s into alternating runs of spaces and non-spaces.
func tokenize(s string) []string {
	var tokens []string
	start := 0
	for i, r := range s {
		if i == 0 {
			continue
		}
		prev, _ := utf8.DecodeLastRuneInString(s[:i])
		if (prev == ' ') != (r == ' ') {
			tokens = append(tokens, s[start:i])
			start = i
		}
	}
	if start < len(s) {
		tokens = append(tokens, s[start:])
	}
	return tokens
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
