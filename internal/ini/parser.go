package ini

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultSection is the name of the section whose keys are inherited by all
// other sections.
const DefaultSection = "DEFAULT"

// Load reads and parses the configuration file at path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()
	return Parse(path, f)
}

// ParseString parses configuration text held in memory. The file name is
// only used for error messages.
func ParseString(file, text string) (*Document, error) {
	return Parse(file, strings.NewReader(text))
}

// Parse reads configuration text from r and returns the parsed document.
// It performs no I/O beyond reading r.
func Parse(file string, r io.Reader) (*Document, error) {
	doc := newDocument(file)

	var (
		cur     *Section
		lastKey string
		lineNo  int
	)

	fail := func(format string, args ...any) error {
		return &SyntaxError{File: file, Line: lineNo, Msg: fmt.Sprintf(format, args...)}
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lineNo++
		raw := strings.TrimRight(sc.Text(), "\r")
		trimmed := strings.TrimSpace(raw)

		if trimmed == "" {
			continue
		}
		if trimmed[0] == '#' || trimmed[0] == ';' {
			continue
		}

		indented := raw[0] == ' ' || raw[0] == '\t'
		if indented && cur != nil && lastKey != "" {
			cur.appendValue(lastKey, trimmed)
			continue
		}

		if trimmed[0] == '[' {
			if !strings.HasSuffix(trimmed, "]") {
				return nil, fail("malformed section header %q", trimmed)
			}
			name := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
			if name == "" || strings.ContainsAny(name, "[]") {
				return nil, fail("malformed section header %q", trimmed)
			}
			if _, exists := doc.index[name]; exists {
				return nil, fail("duplicate section [%s]", name)
			}
			cur = doc.addSection(name, lineNo)
			lastKey = ""
			continue
		}

		if cur == nil {
			return nil, fail("key/value line before any section header")
		}

		sep := strings.IndexAny(trimmed, "=:")
		if sep < 0 {
			return nil, fail("expected 'key = value' in section [%s], got %q", cur.Name, trimmed)
		}
		key := strings.ToLower(strings.TrimSpace(trimmed[:sep]))
		if key == "" {
			return nil, fail("empty key in section [%s]", cur.Name)
		}
		if _, exists := cur.values[key]; exists {
			return nil, fail("duplicate key %q in section [%s]", key, cur.Name)
		}
		cur.set(key, strings.TrimSpace(trimmed[sep+1:]), lineNo)
		lastKey = key
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}

	return doc, nil
}
