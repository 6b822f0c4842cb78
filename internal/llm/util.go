package llm

import "strings"

// CleanJSONBlock returns the outermost JSON object in a model answer, dropping
// markdown fences and any prose around it. Text without an object is returned trimmed and unfenced.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return stripFence(text)
}

// CleanText strips code fences and wrapping quotes from a plain-text answer.
func CleanText(text string) string {
	text = stripFence(strings.TrimSpace(text))
	if len(text) >= 2 && strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) {
		text = strings.TrimSpace(text[1 : len(text)-1])
	}
	return text
}

// stripFence removes a surrounding ``` fence, including a language tag on the opening line.
func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 && !strings.ContainsAny(text[:nl], " {\"") {
		text = text[nl+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
