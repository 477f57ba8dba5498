package script

import (
	"fmt"
	"strings"
)

// Speaking rate used to size the monologue to the background clip.
const wordsPerSecond = 2.25

const (
	minWords = 30
	maxWords = 120
)

// TargetWordCount sizes the monologue so narration roughly matches one
// playthrough of the background clip.
func TargetWordCount(videoSec float64) int {
	n := int(videoSec * wordsPerSecond)
	return max(minWords, min(maxWords, n))
}

func Prompt(topic, language string, words int) string {
	topic = strings.TrimSpace(topic)
	language = strings.TrimSpace(language)
	if language == "" {
		language = "English"
	}
	return fmt.Sprintf(
		"Create a concise first-person monologue about '%s' in %s. Max %d words. Use short sentences. Reply with the monologue text only.",
		topic, language, words,
	)
}

// Clean strips wrapping quotes and blank lines that chat models tend to add.
func Clean(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := lines[:0]
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		out = append(out, ln)
	}
	text := strings.Join(out, "\n")
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		text = strings.TrimSpace(text[1 : len(text)-1])
	}
	return text
}
