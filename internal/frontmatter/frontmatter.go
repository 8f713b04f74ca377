// Package frontmatter splits YAML front matter from Markdown bodies and
// decodes the recognized keys into a typed Matter.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Delimiter is the line that opens and closes a front matter block.
const Delimiter = "---"

// ErrMissingClosingDelimiter indicates the document started with a front
// matter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("front matter opening delimiter found but closing delimiter is missing")

// Matter holds the recognized front matter keys of a content file. Keys not
// listed here are preserved in Params.
type Matter struct {
	Layout      string         `yaml:"layout"`
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Categories  StringList     `yaml:"categories"`
	Permalink   string         `yaml:"permalink"`
	Params      map[string]any `yaml:"-"`
}

// StringList decodes a YAML value that may be either a single string or a
// sequence of strings. `categories: blog` and `categories: [blog, hw]` are
// both accepted.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var single string
		if err := value.Decode(&single); err != nil {
			return err
		}
		if single == "" {
			*s = nil
			return nil
		}
		*s = StringList{single}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*s = StringList(list)
		return nil
	default:
		return fmt.Errorf("expected string or list of strings, got yaml kind %d", value.Kind)
	}
}

// Split separates a `---` delimited front matter block from the body.
//
// If the document does not start with the delimiter, had is false and body is
// the full input. An opening delimiter without a closing one is an error; an
// immediately closed block yields an empty front matter slice with had true.
func Split(content []byte) (matter []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)

	open := []byte(Delimiter + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	matterStart := len(open)
	if bytes.HasPrefix(content[matterStart:], open) {
		bodyStart := matterStart + len(open)
		return []byte{}, content[bodyStart:], true, nil
	}

	closeSeq := []byte(nl + Delimiter + nl)
	idx := bytes.Index(content[matterStart:], closeSeq)
	if idx < 0 {
		// A closing delimiter at EOF without a trailing newline still closes
		// the block.
		tail := []byte(nl + Delimiter)
		if bytes.HasSuffix(content[matterStart:], tail) {
			end := len(content) - len(tail)
			return content[matterStart : end+len(nl)], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	matterEnd := matterStart + idx + len(nl)
	bodyStart := matterStart + idx + len(closeSeq)
	return content[matterStart:matterEnd], content[bodyStart:], true, nil
}

// Parse decodes a raw front matter block (without delimiters) into a Matter.
// Unrecognized keys land in Params. An empty block yields a zero Matter.
func Parse(raw []byte) (Matter, error) {
	var m Matter
	if len(raw) == 0 {
		return m, nil
	}

	if err := yaml.Unmarshal(raw, &m); err != nil {
		return Matter{}, err
	}

	var all map[string]any
	if err := yaml.Unmarshal(raw, &all); err != nil {
		return Matter{}, err
	}
	for _, known := range []string{"layout", "title", "description", "categories", "permalink"} {
		delete(all, known)
	}
	if len(all) > 0 {
		m.Params = all
	}
	return m, nil
}

func detectNewline(content []byte) string {
	for i := 0; i < len(content); i++ {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			return "\r\n"
		}
		if content[i] == '\n' {
			return "\n"
		}
	}
	return "\n"
}
