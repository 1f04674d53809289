package judge

import "strings"

// CleanJSON applies the minimal transport-level repair for model output that
// should be a single JSON document: surrounding whitespace and markdown code
// fences are removed. Anything beyond that is left for the caller's parser to
// reject.
func CleanJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
