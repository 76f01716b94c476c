package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports malformed catalog content.
type ParseError struct {
	Line int // 1-based; 0 when the error is not tied to a line
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return e.Msg
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// target identifies which string field continuation lines extend.
type target int

const (
	targetNone target = iota
	targetMsgctxt
	targetMsgid
	targetMsgidPlural
	targetMsgstr
	targetMsgstrPlural
	targetPrevMsgctxt
	targetPrevMsgid
	targetPrevMsgidPlural
)

// pending is the entry under construction.
type pending struct {
	entry       *Entry
	startLine   int
	hasMsgid    bool
	hasMsgstr   bool
	hasComments bool
	target      target
	pluralIndex int
}

type parser struct {
	cat     *Catalog
	cur     *pending
	line    int
	sawBody bool // an entry other than the header has been emitted
}

// Parse parses UTF-8 catalog text. Lines may end in "\n" or "\r\n".
func Parse(text string) (*Catalog, error) {
	p := &parser{cat: &Catalog{}}

	lines := strings.Split(text, "\n")
	for i, raw := range lines {
		p.line = i + 1
		if err := p.parseLine(strings.TrimSpace(raw)); err != nil {
			return nil, err
		}
	}
	if err := p.flush(); err != nil {
		return nil, err
	}
	return p.cat, nil
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &ParseError{Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) parseLine(line string) error {
	switch {
	case line == "":
		return nil
	case strings.HasPrefix(line, "#~"):
		return p.parseObsolete(strings.TrimSpace(line[2:]))
	case strings.HasPrefix(line, "#|"):
		return p.parsePrevious(strings.TrimSpace(line[2:]), false)
	case strings.HasPrefix(line, "#"):
		return p.parseComment(line)
	case strings.HasPrefix(line, `"`):
		return p.appendContinuation(line)
	default:
		return p.parseKeyword(line, false)
	}
}

// begin returns the entry that the next comment or keyword belongs to,
// starting a new one when the current entry is complete.
func (p *parser) begin() (*pending, error) {
	if p.cur != nil && p.cur.hasMsgstr {
		if err := p.flush(); err != nil {
			return nil, err
		}
	}
	if p.cur == nil {
		p.cur = &pending{entry: &Entry{}, startLine: p.line}
	}
	return p.cur, nil
}

func (p *parser) parseComment(line string) error {
	cur, err := p.begin()
	if err != nil {
		return err
	}
	if cur.hasMsgid {
		return p.errorf("comment inside entry started at line %d", cur.startLine)
	}
	cur.hasComments = true
	cur.target = targetNone
	e := cur.entry

	switch {
	case strings.HasPrefix(line, "#."):
		e.ExtractedComments = append(e.ExtractedComments, strings.TrimSpace(line[2:]))
	case strings.HasPrefix(line, "#:"):
		for _, ref := range strings.Fields(line[2:]) {
			e.Occurrences = append(e.Occurrences, parseOccurrence(ref))
		}
	case strings.HasPrefix(line, "#,"):
		for _, flag := range strings.Split(line[2:], ",") {
			if flag = strings.TrimSpace(flag); flag != "" {
				e.Flags = append(e.Flags, flag)
			}
		}
	default:
		e.TranslatorComments = append(e.TranslatorComments, strings.TrimPrefix(line[1:], " "))
	}
	return nil
}

func parseOccurrence(ref string) Occurrence {
	if i := strings.LastIndex(ref, ":"); i > 0 {
		if _, err := strconv.ParseUint(ref[i+1:], 10, 64); err == nil {
			return Occurrence{File: ref[:i], Line: ref[i+1:]}
		}
	}
	return Occurrence{File: ref}
}

func (p *parser) parseObsolete(rest string) error {
	if rest == "" {
		return nil
	}
	if strings.HasPrefix(rest, "|") {
		return p.parsePrevious(strings.TrimSpace(rest[1:]), true)
	}
	if strings.HasPrefix(rest, `"`) {
		if p.cur == nil || !p.cur.entry.Obsolete {
			return p.errorf("obsolete continuation outside an obsolete entry")
		}
		return p.appendContinuation(rest)
	}
	return p.parseKeyword(rest, true)
}

func (p *parser) parsePrevious(rest string, obsolete bool) error {
	if strings.HasPrefix(rest, `"`) {
		if p.cur == nil {
			return p.errorf("continuation line without a field")
		}
		switch p.cur.target {
		case targetPrevMsgctxt, targetPrevMsgid, targetPrevMsgidPlural:
			return p.appendContinuation(rest)
		}
		return p.errorf("previous-value continuation without a previous field")
	}

	cur, err := p.begin()
	if err != nil {
		return err
	}
	if cur.hasMsgid {
		return p.errorf("previous field inside entry started at line %d", cur.startLine)
	}
	if obsolete {
		cur.entry.Obsolete = true
	}
	cur.hasComments = true

	keyword, value, err := p.splitKeyword(rest)
	if err != nil {
		return err
	}
	e := cur.entry
	switch keyword {
	case "msgctxt":
		e.PreviousMsgctxt = &value
		cur.target = targetPrevMsgctxt
	case "msgid":
		e.PreviousMsgid = &value
		cur.target = targetPrevMsgid
	case "msgid_plural":
		e.PreviousMsgidPlural = &value
		cur.target = targetPrevMsgidPlural
	default:
		return p.errorf("unknown previous field %q", keyword)
	}
	return nil
}

func (p *parser) parseKeyword(line string, obsolete bool) error {
	keyword, value, err := p.splitKeyword(line)
	if err != nil {
		return err
	}

	switch {
	case keyword == "msgctxt", keyword == "msgid":
		cur, err := p.begin()
		if err != nil {
			return err
		}
		if cur.hasMsgid {
			return p.errorf("unexpected %s: entry started at line %d has no msgstr", keyword, cur.startLine)
		}
		if obsolete {
			if cur.entry.Msgctxt != nil && !cur.entry.Obsolete {
				return p.errorf("obsolete %s after live msgctxt", keyword)
			}
			cur.entry.Obsolete = true
		} else if cur.entry.Obsolete {
			return p.errorf("live %s in obsolete entry", keyword)
		}
		if keyword == "msgctxt" {
			if cur.entry.Msgctxt != nil {
				return p.errorf("duplicate msgctxt")
			}
			cur.entry.Msgctxt = &value
			cur.target = targetMsgctxt
			return nil
		}
		cur.entry.Msgid = value
		cur.hasMsgid = true
		cur.target = targetMsgid
		return nil
	}

	cur := p.cur
	if cur == nil || !cur.hasMsgid {
		return p.errorf("%s without msgid", keyword)
	}
	if cur.entry.Obsolete != obsolete {
		return p.errorf("%s mixes obsolete and live lines", keyword)
	}

	switch {
	case keyword == "msgid_plural":
		if cur.hasMsgstr || cur.target != targetMsgid {
			return p.errorf("msgid_plural must directly follow msgid")
		}
		cur.entry.MsgidPlural = value
		cur.target = targetMsgidPlural
	case keyword == "msgstr":
		if cur.hasMsgstr {
			return p.errorf("duplicate msgstr")
		}
		cur.entry.Msgstr = value
		cur.hasMsgstr = true
		cur.target = targetMsgstr
	case strings.HasPrefix(keyword, "msgstr[") && strings.HasSuffix(keyword, "]"):
		idx, err := strconv.Atoi(keyword[len("msgstr[") : len(keyword)-1])
		if err != nil || idx < 0 {
			return p.errorf("invalid plural index in %q", keyword)
		}
		if cur.hasMsgstr && len(cur.entry.MsgstrPlural) == 0 {
			return p.errorf("%s after msgstr", keyword)
		}
		if cur.entry.MsgstrPlural == nil {
			cur.entry.MsgstrPlural = make(map[int]string)
		}
		if _, dup := cur.entry.MsgstrPlural[idx]; dup {
			return p.errorf("duplicate %s", keyword)
		}
		cur.entry.MsgstrPlural[idx] = value
		cur.hasMsgstr = true
		cur.target = targetMsgstrPlural
		cur.pluralIndex = idx
	default:
		return p.errorf("unknown keyword %q", keyword)
	}
	return nil
}

// splitKeyword splits `keyword "value"` and unquotes the value.
func (p *parser) splitKeyword(line string) (string, string, error) {
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return "", "", p.errorf("unexpected line %q", line)
	}
	keyword := line[:i]
	value, err := unquote(strings.TrimSpace(line[i+1:]))
	if err != nil {
		return "", "", p.errorf("%s: %v", keyword, err)
	}
	return keyword, value, nil
}

func (p *parser) appendContinuation(line string) error {
	if p.cur == nil || p.cur.target == targetNone {
		return p.errorf("continuation line without a field")
	}
	s, err := unquote(line)
	if err != nil {
		return p.errorf("%v", err)
	}

	e := p.cur.entry
	switch p.cur.target {
	case targetMsgctxt:
		*e.Msgctxt += s
	case targetMsgid:
		e.Msgid += s
	case targetMsgidPlural:
		e.MsgidPlural += s
	case targetMsgstr:
		e.Msgstr += s
	case targetMsgstrPlural:
		e.MsgstrPlural[p.cur.pluralIndex] += s
	case targetPrevMsgctxt:
		*e.PreviousMsgctxt += s
	case targetPrevMsgid:
		*e.PreviousMsgid += s
	case targetPrevMsgidPlural:
		*e.PreviousMsgidPlural += s
	}
	return nil
}

// flush finishes the pending entry and hands it to the catalog.
func (p *parser) flush() error {
	cur := p.cur
	if cur == nil {
		return nil
	}
	p.cur = nil

	if !cur.hasMsgid {
		return &ParseError{Line: cur.startLine, Msg: "comment block is not followed by an entry"}
	}
	if !cur.hasMsgstr {
		return &ParseError{Line: cur.startLine, Msg: "entry has no msgstr"}
	}

	e := cur.entry
	if !p.sawBody && e.Msgid == "" && e.Msgctxt == nil && !e.Obsolete {
		p.cat.Header = e.TranslatorComments
		p.cat.HeaderFlags = e.Flags
		parseMetadata(&p.cat.Metadata, e.Msgstr)
		p.sawBody = true
		return nil
	}

	p.sawBody = true
	p.cat.Entries = append(p.cat.Entries, e)
	return nil
}

// parseMetadata reads "Key: Value" lines. A line without a colon continues
// the previous value.
func parseMetadata(md *Metadata, msgstr string) {
	var lastKey string
	for _, line := range strings.Split(msgstr, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if ok {
			lastKey = key
			md.Set(key, strings.TrimSpace(value))
			continue
		}
		if lastKey != "" {
			prev, _ := md.Get(lastKey)
			md.Set(lastKey, prev+"\n"+strings.TrimSpace(line))
		}
	}
}

var unescapes = map[byte]byte{
	'n':  '\n',
	't':  '\t',
	'r':  '\r',
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'v':  '\v',
	'"':  '"',
	'\\': '\\',
}

// unquote strips the surrounding double quotes and resolves escapes.
func unquote(s string) (string, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", fmt.Errorf("expected quoted string, got %q", s)
	}
	s = s[1 : len(s)-1]

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			if i+1 >= len(s) {
				return "", fmt.Errorf("dangling backslash")
			}
			r, ok := unescapes[s[i+1]]
			if !ok {
				return "", fmt.Errorf("invalid escape sequence \\%c", s[i+1])
			}
			b.WriteByte(r)
			i++
		case '"':
			return "", fmt.Errorf("unescaped quote inside string")
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}
