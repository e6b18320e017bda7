package provider

import "strings"

// CleanOutput normalizes model output that is about to be handed to another
// node as a prompt. It unwraps a single fenced code block and trims
// surrounding whitespace, leaving everything else untouched.
func CleanOutput(text string) string {
	text = strings.TrimSpace(text)

	if !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if strings.HasPrefix(lines[0], "```") {
		lines = lines[1:]
	}

	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
