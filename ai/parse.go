package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var jsonSpan = regexp.MustCompile("(?s)```json\\s*\\n(.*?)\\n\\s*```|(\\{.*\\})")

// extractJSON returns the fenced json block or the outermost {...} span of
// content, or content itself when neither is present.
func extractJSON(content string) string {
	m := jsonSpan.FindStringSubmatch(content)
	if m == nil {
		return strings.TrimSpace(content)
	}
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}

func decodeJSON(content string, out any) error {
	if err := json.Unmarshal([]byte(extractJSON(content)), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// decodeTitle accepts JSON {"title": ...}, a bare JSON string, or plain text.
func decodeTitle(content string) GeneratedContent {
	var gc GeneratedContent
	if err := json.Unmarshal([]byte(extractJSON(content)), &gc); err == nil && gc.Title != "" {
		return GeneratedContent{Title: gc.Title}
	}
	var s string
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &s); err == nil {
		return GeneratedContent{Title: strings.TrimSpace(s)}
	}
	return GeneratedContent{Title: strings.TrimSpace(content)}
}
