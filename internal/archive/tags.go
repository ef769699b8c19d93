package archive

import (
	"regexp"
	"strings"
)

// tagPattern matches #word tokens; \p{L}\p{N}_ mirrors unicode word
// characters so non-latin tags survive extraction.
var tagPattern = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)

// ExtractTags splits hashtags out of a message text.
//
// A single-line text is scanned in full: tag tokens are removed from the
// displayed text, so a line of nothing but tags becomes empty. A
// multi-line text is scanned on its last line only: when that line carries
// tags the entire line is stripped and the rest of the text is kept;
// otherwise the text is returned unchanged.
func ExtractTags(text string) (string, []string) {
	if text == "" {
		return text, nil
	}

	if !strings.Contains(text, "\n") {
		tags := findTags(text)
		if len(tags) == 0 {
			return text, nil
		}
		return strings.TrimSpace(tagPattern.ReplaceAllString(text, "")), tags
	}

	lines := strings.Split(strings.TrimSpace(text), "\n")
	lastLine := lines[len(lines)-1]
	if tags := findTags(lastLine); len(tags) > 0 {
		return strings.Join(lines[:len(lines)-1], "\n"), tags
	}
	return text, nil
}

func findTags(line string) []string {
	matches := tagPattern.FindAllStringSubmatch(line, -1)
	if len(matches) == 0 {
		return nil
	}
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return tags
}
