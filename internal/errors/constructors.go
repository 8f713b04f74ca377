package errors

import "fmt"

// MalformedFrontMatter reports a document whose front matter block opened
// without a matching closing delimiter, or whose YAML failed to decode.
func MalformedFrontMatter(document string, cause error) *BuildError {
	return &BuildError{
		Kind:     KindMalformedFrontMatter,
		Severity: SeverityFatal,
		Message:  "front matter is malformed",
		Document: document,
		Cause:    cause,
	}
}

// UnresolvedFootnote reports a footnote reference with no matching definition.
func UnresolvedFootnote(document, label string) *BuildError {
	return &BuildError{
		Kind:     KindUnresolvedFootnote,
		Severity: SeverityFatal,
		Message:  fmt.Sprintf("footnote reference [^%s] has no definition", label),
		Document: document,
		Ref:      label,
	}
}

// UnknownLayout reports a document naming a layout that is not registered.
func UnknownLayout(document, layout string) *BuildError {
	return &BuildError{
		Kind:     KindUnknownLayout,
		Severity: SeverityFatal,
		Message:  fmt.Sprintf("layout %q is not defined", layout),
		Document: document,
		Ref:      layout,
	}
}

// LayoutCycle reports a layout parent chain that revisits a layout name.
func LayoutCycle(document string, chain []string) *BuildError {
	return &BuildError{
		Kind:     KindLayoutCycle,
		Severity: SeverityFatal,
		Message:  fmt.Sprintf("layout chain forms a cycle: %v", chain),
		Document: document,
		Ref:      chain[len(chain)-1],
	}
}

// OutputPathCollision reports two documents resolving to the same output path.
func OutputPathCollision(document, other, outputPath string) *BuildError {
	return &BuildError{
		Kind:     KindOutputPathCollision,
		Severity: SeverityFatal,
		Message:  fmt.Sprintf("output path %q already claimed by %s", outputPath, other),
		Document: document,
		Ref:      outputPath,
	}
}

// Config wraps a configuration loading or validation failure.
func Config(message string, cause error) *BuildError {
	return &BuildError{
		Kind:     KindConfig,
		Severity: SeverityFatal,
		Message:  message,
		Cause:    cause,
	}
}

// FileSystem wraps a filesystem failure with the path it occurred on.
func FileSystem(path, message string, cause error) *BuildError {
	return &BuildError{
		Kind:     KindFileSystem,
		Severity: SeverityFatal,
		Message:  message,
		Document: path,
		Cause:    cause,
	}
}
