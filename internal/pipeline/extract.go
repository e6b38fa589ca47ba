package pipeline

import "strings"

// ExtractJSON pulls the JSON object out of a model answer. Models often wrap
// it in a markdown fence or add a sentence before or after it.
func ExtractJSON(content string) string {
	content = strings.TrimSpace(content)

	// Handle markdown-wrapped JSON
	if strings.HasPrefix(content, "```") {
		lines := strings.Split(content, "\n")
		var jsonLines []string
		in := false
		for _, line := range lines {
			if strings.HasPrefix(strings.TrimSpace(line), "```") {
				in = !in
				continue
			}
			if in {
				jsonLines = append(jsonLines, line)
			}
		}
		content = strings.TrimSpace(strings.Join(jsonLines, "\n"))
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		return content[start : end+1]
	}
	return content
}
