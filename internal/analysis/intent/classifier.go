// Package intent decides which assistant persona should answer a message.
package intent

import "strings"

// codeKeywords trigger the coding-assistant persona. Matching is a plain
// case-insensitive substring sweep; extending the rule set means editing
// this table, not the code.
var codeKeywords = []string{
	"write a", "create a", "implement", "code", "function", "class",
	"script", "program", "algorithm", "syntax", "example code",
	"how to code", "how to implement", "write code", "coding example",
	"code sample", "programming", "debug", "fix code", "error in code",
}

// IsCodeRequest reports whether the message looks like a request for code.
// The first matching keyword short-circuits.
func IsCodeRequest(message string) bool {
	normalized := strings.ToLower(message)
	for _, keyword := range codeKeywords {
		if strings.Contains(normalized, keyword) {
			return true
		}
	}
	return false
}
