package validators

import "strings"

// CleanText trims input, collapses inner whitespace runs to one space and
// cuts the result to maxRunes characters. maxRunes <= 0 disables the cut.
func CleanText(input string, maxRunes int) string {
	cleaned := strings.Join(strings.Fields(input), " ")
	if maxRunes <= 0 {
		return cleaned
	}
	runes := []rune(cleaned)
	if len(runes) <= maxRunes {
		return cleaned
	}
	return strings.TrimSpace(string(runes[:maxRunes]))
}
