package logparse

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultFramePrefixes are the two-letter frame families recognised on the
// equipment floor.
var DefaultFramePrefixes = []string{
	"FU", "FR", "FA", "FW", "FN", "FJ",
	"F1", "F2", "F3", "F4", "F5", "F6", "F7", "F8", "F9", "F0",
}

// FrameMatcher extracts a frame identifier (prefix followed by a fixed number
// of word characters) from anywhere inside a frame token.
type FrameMatcher struct {
	re *regexp.Regexp
}

// NewFrameMatcher compiles a matcher for the given prefixes.
func NewFrameMatcher(prefixes []string, suffixLen int) (*FrameMatcher, error) {
	if len(prefixes) == 0 {
		return nil, fmt.Errorf("frame matcher needs at least one prefix")
	}
	if suffixLen <= 0 {
		return nil, fmt.Errorf("frame suffix length must be positive, got %d", suffixLen)
	}

	quoted := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(p))
	}
	if len(quoted) == 0 {
		return nil, fmt.Errorf("frame matcher needs at least one non-empty prefix")
	}

	re, err := regexp.Compile(fmt.Sprintf(`(?:%s)\w{%d}`, strings.Join(quoted, "|"), suffixLen))
	if err != nil {
		return nil, fmt.Errorf("failed to compile frame pattern: %w", err)
	}
	return &FrameMatcher{re: re}, nil
}

// Extract returns the first frame identifier in token, or "".
func (m *FrameMatcher) Extract(token string) string {
	return m.re.FindString(token)
}
