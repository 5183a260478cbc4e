package ini

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Document is an ordered mapping from section name to section.
type Document struct {
	File     string
	sections []*Section
	index    map[string]*Section
	defaults *Section
}

// Section is an ordered mapping from lower-cased key to raw string value.
type Section struct {
	Name     string
	Line     int
	keys     []string
	values   map[string]string
	lines    map[string]int
	defaults *Section
}

func newDocument(file string) *Document {
	return &Document{
		File:  file,
		index: make(map[string]*Section),
	}
}

func newSection(name string, line int) *Section {
	return &Section{
		Name:   name,
		Line:   line,
		values: make(map[string]string),
		lines:  make(map[string]int),
	}
}

func (d *Document) addSection(name string, line int) *Section {
	s := newSection(name, line)
	d.index[name] = s
	if name == DefaultSection {
		d.defaults = s
		for _, other := range d.sections {
			other.defaults = s
		}
		return s
	}
	s.defaults = d.defaults
	d.sections = append(d.sections, s)
	return s
}

// Sections returns every section except DEFAULT, in file order.
func (d *Document) Sections() []*Section {
	out := make([]*Section, len(d.sections))
	copy(out, d.sections)
	return out
}

// Section looks up a section by its exact name.
func (d *Document) Section(name string) (*Section, bool) {
	s, ok := d.index[name]
	if !ok || name == DefaultSection {
		return nil, false
	}
	return s, true
}

// Has reports whether the document declares the named section.
func (d *Document) Has(name string) bool {
	_, ok := d.Section(name)
	return ok
}

// Collection returns the ordered entries of a numbered-section collection:
// the bare section `base` first, then `base_1`, `base_2` and so on. A gap in
// the suffix sequence, an explicit `_0` suffix, or a non-canonical suffix
// such as `_01` is a CollectionError. A missing bare section is allowed when
// numbered entries exist.
func (d *Document) Collection(base string) ([]*Section, error) {
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(base) + `_(\d+)$`)

	numbered := make(map[int]*Section)
	for _, s := range d.sections {
		m := pattern.FindStringSubmatch(s.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || strconv.Itoa(n) != m[1] {
			return nil, &CollectionError{File: d.File, Base: base, Section: s.Name, Msg: "non-canonical numeric suffix"}
		}
		if n == 0 {
			return nil, &CollectionError{File: d.File, Base: base, Section: s.Name, Msg: fmt.Sprintf("suffix 0 is implicit; use [%s]", base)}
		}
		numbered[n] = s
	}

	var out []*Section
	if s, ok := d.Section(base); ok {
		out = append(out, s)
	}

	suffixes := make([]int, 0, len(numbered))
	for n := range numbered {
		suffixes = append(suffixes, n)
	}
	sort.Ints(suffixes)
	for i, n := range suffixes {
		if n != i+1 {
			return nil, &CollectionError{
				File:    d.File,
				Base:    base,
				Section: numbered[n].Name,
				Msg:     fmt.Sprintf("gap in section suffixes: [%s_%d] is missing", base, i+1),
			}
		}
		out = append(out, numbered[n])
	}
	return out, nil
}

func (s *Section) set(key, value string, line int) {
	s.keys = append(s.keys, key)
	s.values[key] = value
	s.lines[key] = line
}

func (s *Section) appendValue(key, line string) {
	if s.values[key] == "" {
		s.values[key] = line
		return
	}
	s.values[key] += "\n" + line
}

// Get returns the raw value for key, falling back to the DEFAULT section.
func (s *Section) Get(key string) (string, bool) {
	key = strings.ToLower(key)
	if v, ok := s.values[key]; ok {
		return v, true
	}
	if s.defaults != nil {
		if v, ok := s.defaults.values[key]; ok {
			return v, true
		}
	}
	return "", false
}

// Has reports whether key is set in this section or in DEFAULT.
func (s *Section) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// String returns the value for key or fallback when it is absent.
func (s *Section) String(key, fallback string) string {
	if v, ok := s.Get(key); ok {
		return v
	}
	return fallback
}

// Bool parses key as a boolean using configparser's vocabulary
// (1/yes/true/on and 0/no/false/off). An absent key yields fallback.
func (s *Section) Bool(key string, fallback bool) (bool, error) {
	v, ok := s.Get(key)
	if !ok {
		return fallback, nil
	}
	b, err := ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("[%s] %s: %w", s.Name, strings.ToLower(key), err)
	}
	return b, nil
}

// List splits the value for key into a ListValue. An absent key yields nil.
func (s *Section) List(key string) []string {
	v, ok := s.Get(key)
	if !ok {
		return nil
	}
	return SplitList(v)
}

// Keys returns the section's own keys in file order followed by keys only
// inherited from DEFAULT.
func (s *Section) Keys() []string {
	out := make([]string, 0, len(s.keys))
	out = append(out, s.keys...)
	if s.defaults != nil {
		for _, k := range s.defaults.keys {
			if _, own := s.values[k]; !own {
				out = append(out, k)
			}
		}
	}
	return out
}

// KeyLine returns the line a key was declared on, or the section's own line
// if the key is inherited or absent.
func (s *Section) KeyLine(key string) int {
	if l, ok := s.lines[strings.ToLower(key)]; ok {
		return l
	}
	return s.Line
}

// ParseBool parses configparser boolean spellings.
func ParseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "yes", "true", "on":
		return true, nil
	case "0", "no", "false", "off":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", v)
}

// SplitList resolves a ListValue: the raw value is split on commas and
// newlines, items are trimmed, empty items are dropped. Order and duplicates
// are preserved.
func SplitList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
