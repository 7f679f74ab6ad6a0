package logging

import "strings"

// FormatSubject builds the source/split/stage subject string used in console output.
func FormatSubject(source, split, stage string) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{source, split, stage} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " · ")
}
