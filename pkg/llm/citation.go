package llm

import (
	"regexp"
)

// citationPattern matches retrieval markers such as "[doc1]" or "[doc12]". It stops at the
// first closing bracket so text between two markers is preserved.
var citationPattern = regexp.MustCompile(`\[doc[^\]]*\]`)

// StripCitations removes every citation marker from text and returns the markers in the
// order they appeared.
func StripCitations(text string) (string, []string) {
	markers := citationPattern.FindAllString(text, -1)
	if len(markers) == 0 {
		return text, nil
	}
	return citationPattern.ReplaceAllString(text, ""), markers
}
