package nativeinjector

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// textValue locates a value inside the project file. For dictionaries entries holds the
// key/value pairs, for arrays items holds the elements.
type textValue struct {
	start, end    int
	entries       []textEntry
	items         []textValue
	trailingComma bool
}

// textEntry spans a dictionary entry from the first byte of its key to the terminating ';'.
type textEntry struct {
	key   string
	start int
	end   int
	value textValue
}

func (v textValue) entry(key string) (textEntry, bool) {
	for _, e := range v.entries {
		if e.key == key {
			return e, true
		}
	}
	return textEntry{}, false
}

type textScanner struct {
	src []byte
	pos int
}

func scanText(src []byte) (textValue, error) {
	s := &textScanner{src: src}
	return s.value()
}

func (s *textScanner) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("offset %d: %s", s.pos, fmt.Sprintf(format, args...))
}

func (s *textScanner) skip() {
	for s.pos < len(s.src) {
		switch {
		case strings.ContainsRune(" \t\r\n", rune(s.src[s.pos])):
			s.pos++
		case s.hasPrefix("/*"):
			end := strings.Index(string(s.src[s.pos+2:]), "*/")
			if end < 0 {
				s.pos = len(s.src)
				return
			}
			s.pos += end + 4
		case s.hasPrefix("//"):
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.pos++
			}
		default:
			return
		}
	}
}

func (s *textScanner) hasPrefix(prefix string) bool {
	return strings.HasPrefix(string(s.src[s.pos:]), prefix)
}

func (s *textScanner) expect(c byte) error {
	s.skip()
	if s.pos >= len(s.src) || s.src[s.pos] != c {
		return s.errorf("expected %q", c)
	}
	s.pos++
	return nil
}

func (s *textScanner) value() (textValue, error) {
	s.skip()
	if s.pos >= len(s.src) {
		return textValue{}, s.errorf("unexpected end of file")
	}
	switch s.src[s.pos] {
	case '{':
		return s.dict()
	case '(':
		return s.array()
	case '<':
		start := s.pos
		for s.pos < len(s.src) && s.src[s.pos] != '>' {
			s.pos++
		}
		if err := s.expect('>'); err != nil {
			return textValue{}, err
		}
		return textValue{start: start, end: s.pos}, nil
	}
	start := s.pos
	if _, err := s.str(); err != nil {
		return textValue{}, err
	}
	return textValue{start: start, end: s.pos}, nil
}

func (s *textScanner) dict() (textValue, error) {
	v := textValue{start: s.pos}
	s.pos++
	for {
		s.skip()
		if s.pos >= len(s.src) {
			return v, s.errorf("unterminated dictionary")
		}
		if s.src[s.pos] == '}' {
			s.pos++
			v.end = s.pos
			return v, nil
		}
		e := textEntry{start: s.pos}
		key, err := s.str()
		if err != nil {
			return v, err
		}
		e.key = key
		if err := s.expect('='); err != nil {
			return v, err
		}
		if e.value, err = s.value(); err != nil {
			return v, err
		}
		if err := s.expect(';'); err != nil {
			return v, err
		}
		e.end = s.pos
		v.entries = append(v.entries, e)
	}
}

func (s *textScanner) array() (textValue, error) {
	v := textValue{start: s.pos}
	s.pos++
	for {
		s.skip()
		if s.pos >= len(s.src) {
			return v, s.errorf("unterminated array")
		}
		if s.src[s.pos] == ')' {
			s.pos++
			v.end = s.pos
			return v, nil
		}
		item, err := s.value()
		if err != nil {
			return v, err
		}
		v.items = append(v.items, item)
		v.trailingComma = false
		s.skip()
		if s.pos < len(s.src) && s.src[s.pos] == ',' {
			s.pos++
			v.trailingComma = true
		}
	}
}

func (s *textScanner) str() (string, error) {
	if s.src[s.pos] == '"' {
		s.pos++
		var b strings.Builder
		for s.pos < len(s.src) {
			c := s.src[s.pos]
			switch {
			case c == '"':
				s.pos++
				return b.String(), nil
			case c == '\\' && s.pos+1 < len(s.src):
				b.WriteByte(s.src[s.pos+1])
				s.pos += 2
			default:
				b.WriteByte(c)
				s.pos++
			}
		}
		return "", s.errorf("unterminated string")
	}
	start := s.pos
	for s.pos < len(s.src) && isUnquotedChar(s.src[s.pos]) && !s.hasPrefix("/*") && !s.hasPrefix("//") {
		s.pos++
	}
	if start == s.pos {
		return "", s.errorf("unexpected %q", s.src[s.pos])
	}
	return string(s.src[start:s.pos]), nil
}

func isUnquotedChar(c byte) bool {
	return c > ' ' && strings.IndexByte(`{}()<>=;,"`, c) < 0
}

// quoteText renders s the way Xcode does: bare when possible, otherwise quoted with
// non-ASCII characters kept as UTF-8.
func quoteText(s string) string {
	bare := s != ""
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || strings.IndexByte("_$./", c) >= 0) {
			bare = false
			break
		}
	}
	if bare {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)
	return `"` + r.Replace(s) + `"`
}

// textEdit replaces src[start:end] with text, an insertion has start == end.
type textEdit struct {
	start, end int
	text       string
}

func applyEdits(src []byte, edits []textEdit) []byte {
	sort.SliceStable(edits, func(i, j int) bool {
		return edits[i].start > edits[j].start
	})
	out := string(src)
	for _, e := range edits {
		out = out[:e.start] + e.text + out[e.end:]
	}
	return []byte(out)
}

// lineIndent returns the whitespace between the start of the line holding pos and pos.
func lineIndent(src []byte, pos int) string {
	start := pos
	for start > 0 && (src[start-1] == ' ' || src[start-1] == '\t') {
		start--
	}
	if start > 0 && src[start-1] != '\n' {
		return ""
	}
	return string(src[start:pos])
}

// lineStart returns the start of the line holding pos when only whitespace precedes pos on it.
func lineStart(src []byte, pos int) (int, bool) {
	start := pos
	for start > 0 && (src[start-1] == ' ' || src[start-1] == '\t') {
		start--
	}
	return start, start > 0 && src[start-1] == '\n'
}

// comment is the annotation Xcode writes after an object id.
func (p *XcodeProject) comment(id string) string {
	obj, ok := p.object(id)
	if !ok {
		return ""
	}
	var c string
	switch obj["isa"] {
	case isaBuildFile:
		if ref := p.comment(fmt.Sprint(obj["fileRef"])); ref != "" {
			c = ref + " in Resources"
		}
	case isaResourcesPhase:
		c = resourcesGroupName
	case isaProject:
		c = "Project object"
	default:
		if name, ok := obj["name"].(string); ok {
			c = name
		} else if path, ok := obj["path"].(string); ok {
			c = path
		}
	}
	return strings.ReplaceAll(c, "*/", "* /")
}

func (p *XcodeProject) idText(id string) string {
	if c := p.comment(id); c != "" {
		return id + " /* " + c + " */"
	}
	return id
}

func (p *XcodeProject) valueText(v interface{}, indent string) string {
	switch v := v.(type) {
	case string:
		if _, ok := p.object(v); ok {
			return p.idText(v)
		}
		return quoteText(v)
	case []byte:
		return "<" + hex.EncodeToString(v) + ">"
	case []interface{}:
		var b strings.Builder
		b.WriteString("(\n")
		for _, item := range v {
			b.WriteString(indent + "\t" + p.valueText(item, indent+"\t") + ",\n")
		}
		b.WriteString(indent + ")")
		return b.String()
	case map[string]interface{}:
		var b strings.Builder
		b.WriteString("{\n")
		for _, key := range sortedKeys(v) {
			b.WriteString(indent + "\t" + quoteText(key) + " = " + p.valueText(v[key], indent+"\t") + ";\n")
		}
		b.WriteString(indent + "}")
		return b.String()
	}
	return quoteText(fmt.Sprint(v))
}

// sortedKeys orders keys alphabetically with isa first.
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == "isa" || keys[j] == "isa" {
			return keys[i] == "isa"
		}
		return keys[i] < keys[j]
	})
	return keys
}

// objectText renders the objects entry of id, from the id up to the closing ';'.
func (p *XcodeProject) objectText(id, indent string) string {
	obj, _ := p.object(id)
	return p.idText(id) + " = " + p.valueText(obj, indent) + ";"
}

// listInsertion appends ids to the array list without touching the rest of the file.
func (p *XcodeProject) listInsertion(src []byte, list textValue, ids []string) []textEdit {
	closing := list.end - 1
	var edits []textEdit
	if start, ok := lineStart(src, closing); ok {
		if len(list.items) > 0 && !list.trailingComma {
			last := start - 1
			for last > 0 && (src[last-1] == ' ' || src[last-1] == '\t') {
				last--
			}
			edits = append(edits, textEdit{start: last, end: last, text: ","})
		}
		indent := lineIndent(src, closing) + "\t"
		var b strings.Builder
		for _, id := range ids {
			b.WriteString(indent + p.idText(id) + ",\n")
		}
		return append(edits, textEdit{start: start, end: start, text: b.String()})
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = p.idText(id)
	}
	if len(list.items) > 0 && !list.trailingComma {
		return []textEdit{{start: closing, end: closing, text: ", " + strings.Join(parts, ", ")}}
	}
	return []textEdit{{start: closing, end: closing, text: strings.Join(parts, ", ") + ", "}}
}

// edits turns the recorded changes into splices of the original file.
func (p *XcodeProject) edits() ([]textEdit, error) {
	doc, err := scanText(p.raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Path, err)
	}
	objectsEntry, ok := doc.entry("objects")
	if !ok {
		return nil, fmt.Errorf("%s has no objects section", p.Path)
	}
	objects := objectsEntry.value

	rewrite := map[string]bool{}
	for id := range p.rewritten {
		rewrite[id] = true
	}
	var edits []textEdit
	for _, a := range p.appended {
		if p.isNew(a.objectID) || rewrite[a.objectID] {
			continue
		}
		entry, ok := objects.entry(a.objectID)
		if !ok {
			return nil, fmt.Errorf("%s: object %s is missing", p.Path, a.objectID)
		}
		list, ok := entry.value.entry(a.key)
		if !ok || p.raw[list.value.start] != '(' {
			rewrite[a.objectID] = true
			continue
		}
		edits = append(edits, p.listInsertion(p.raw, list.value, a.ids)...)
	}
	for id := range rewrite {
		entry, ok := objects.entry(id)
		if !ok {
			return nil, fmt.Errorf("%s: object %s is missing", p.Path, id)
		}
		indent := lineIndent(p.raw, entry.start)
		edits = append(edits, textEdit{start: entry.start, end: entry.end, text: p.objectText(id, indent)})
	}
	if len(p.added) > 0 {
		closing := objects.end - 1
		pos, ok := lineStart(p.raw, closing)
		indent := lineIndent(p.raw, closing) + "\t"
		var b strings.Builder
		if !ok {
			pos = closing
			b.WriteString("\n")
		}
		for _, id := range p.added {
			b.WriteString(indent + p.objectText(id, indent) + "\n")
		}
		edits = append(edits, textEdit{start: pos, end: pos, text: b.String()})
	}
	return edits, nil
}
