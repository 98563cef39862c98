package utils

import "strings"

// ExtractJSONObject pulls a JSON object out of a possibly-wrapped text blob.
// Generative models frequently wrap their JSON in markdown code fences, sometimes
// with a language tag, or surround it with prose. The returned slice runs from the
// first '{' to the last '}' after fence markers are stripped; ok is false when no
// object-shaped region exists.
func ExtractJSONObject(raw string) (string, bool) {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Drop a leading language tag such as "json"
		if newline := strings.IndexByte(text, '\n'); newline >= 0 {
			first := strings.TrimSpace(text[:newline])
			if first != "" && !strings.ContainsAny(first, "{}") {
				text = text[newline+1:]
			}
		}
		text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
	}

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return "", false
	}
	return text[start : end+1], true
}
