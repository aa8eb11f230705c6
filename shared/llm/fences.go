package llm

import "strings"

// StripFences removes a leading and trailing markdown fence line from code,
// if present, and trims surrounding whitespace.
func StripFences(code string) string {
	lines := strings.Split(strings.TrimSpace(code), "\n")
	if len(lines) > 0 && (strings.HasPrefix(lines[0], "```") || strings.HasPrefix(lines[0], "~~~")) {
		lines = lines[1:]
	}
	if len(lines) > 0 && (strings.HasPrefix(lines[len(lines)-1], "```") || strings.HasPrefix(lines[len(lines)-1], "~~~")) {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
