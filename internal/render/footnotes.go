package render

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	sgerrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

// footnote is an ordered, body-local reference. index is the 1-based display
// number assigned by first reference occurrence, not by definition order.
type footnote struct {
	label string
	index int
	text  string
}

var (
	refPattern = regexp.MustCompile(`\[\^([^\]\s]+)\]`)
	defPattern = regexp.MustCompile(`^\[\^([^\]\s]+)\]:[ \t]*(.*)$`)
)

// extractFootnotes runs the two footnote passes over a Markdown body.
//
// Pass one collects reference markers in document order and assigns display
// indices by first occurrence. Pass two strips definition lines and replaces
// each marker with an anchor link. Fenced code blocks and inline code spans
// are opaque: markers inside them are neither collected nor replaced.
//
// A reference without a definition fails the document. A definition without a
// reference is logged as a warning and reported in unused.
func extractFootnotes(path string, body []byte) (notes []footnote, cleaned []byte, unused []string, err error) {
	lines := strings.Split(string(body), "\n")
	fenced := fenceMask(lines)

	// Collect definitions first so pass one can detect unresolved references.
	defs := map[string]string{}
	var defOrder []string
	isDefLine := make([]bool, len(lines))
	for i := 0; i < len(lines); i++ {
		if fenced[i] {
			continue
		}
		m := defPattern.FindStringSubmatch(strings.TrimRight(lines[i], "\r"))
		if m == nil {
			continue
		}
		label, text := m[1], m[2]
		isDefLine[i] = true
		// Indented lines directly below a definition continue its text.
		for i+1 < len(lines) && !fenced[i+1] && isContinuation(lines[i+1]) {
			i++
			isDefLine[i] = true
			text += " " + strings.TrimSpace(lines[i])
		}
		if _, dup := defs[label]; !dup {
			defs[label] = text
			defOrder = append(defOrder, label)
		}
	}

	// Pass one: assign display indices by first reference occurrence.
	indexOf := map[string]int{}
	var order []string
	for i, line := range lines {
		if fenced[i] || isDefLine[i] {
			continue
		}
		masked := codeSpanMask(line)
		for _, loc := range refPattern.FindAllStringSubmatchIndex(line, -1) {
			if masked[loc[0]] {
				continue
			}
			label := line[loc[2]:loc[3]]
			if _, ok := defs[label]; !ok {
				return nil, nil, nil, sgerrors.UnresolvedFootnote(path, label)
			}
			if _, seen := indexOf[label]; !seen {
				indexOf[label] = len(order) + 1
				order = append(order, label)
			}
		}
	}

	// Pass two: drop definition lines and replace markers with anchors.
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		if isDefLine[i] {
			continue
		}
		if fenced[i] {
			out = append(out, line)
			continue
		}
		out = append(out, replaceRefs(line, indexOf))
	}

	for _, label := range defOrder {
		if _, seen := indexOf[label]; !seen {
			slog.Warn("Unused footnote definition", logfields.Document(path), logfields.Footnote(label))
			unused = append(unused, label)
		}
	}

	for _, label := range order {
		notes = append(notes, footnote{label: label, index: indexOf[label], text: defs[label]})
	}
	return notes, []byte(strings.Join(out, "\n")), unused, nil
}

// replaceRefs replaces footnote markers outside inline code spans with sup
// anchor links carrying the assigned display index.
func replaceRefs(line string, indexOf map[string]int) string {
	locs := refPattern.FindAllStringSubmatchIndex(line, -1)
	if len(locs) == 0 {
		return line
	}
	masked := codeSpanMask(line)

	var sb strings.Builder
	last := 0
	for _, loc := range locs {
		if masked[loc[0]] {
			continue
		}
		label := line[loc[2]:loc[3]]
		idx, ok := indexOf[label]
		if !ok {
			continue
		}
		sb.WriteString(line[last:loc[0]])
		sb.WriteString(fmt.Sprintf(`<sup id="fnref:%s"><a href="#fn:%s" class="footnote-ref">%d</a></sup>`, label, label, idx))
		last = loc[1]
	}
	sb.WriteString(line[last:])
	return sb.String()
}

// fenceMask marks every line belonging to a fenced code block, including the
// fence lines themselves.
func fenceMask(lines []string) []bool {
	mask := make([]bool, len(lines))
	inFence := false
	var fenceChar byte
	fenceLen := 0

	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		if inFence {
			mask[i] = true
			if n := runLen(trimmed, fenceChar); n >= fenceLen && strings.TrimSpace(trimmed[n:]) == "" {
				inFence = false
			}
			continue
		}
		for _, ch := range []byte{'`', '~'} {
			if n := runLen(trimmed, ch); n >= 3 {
				inFence = true
				fenceChar = ch
				fenceLen = n
				mask[i] = true
				break
			}
		}
	}
	return mask
}

func runLen(s string, ch byte) int {
	n := 0
	for n < len(s) && s[n] == ch {
		n++
	}
	return n
}

func isContinuation(line string) bool {
	return strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t")
}

// codeSpanMask marks byte positions inside inline code spans. A span opens at
// a backtick run and closes at the next run of the same length, per
// CommonMark.
func codeSpanMask(line string) []bool {
	mask := make([]bool, len(line))
	i := 0
	for i < len(line) {
		if line[i] != '`' {
			i++
			continue
		}
		open := runLen(line[i:], '`')
		j := i + open
		closed := false
		for j < len(line) {
			if line[j] == '`' {
				n := runLen(line[j:], '`')
				if n == open {
					for k := i; k < j+n; k++ {
						mask[k] = true
					}
					j += n
					closed = true
					break
				}
				j += n
				continue
			}
			j++
		}
		if !closed {
			// Unclosed run is literal backticks, not a span.
			i += open
			continue
		}
		i = j
	}
	return mask
}
