package utils

import "unicode/utf8"

// Elide shortens the string to at most length runes, marking the cut
// with "...".
func Elide(in string, length int) string {
	if length <= 0 || utf8.RuneCountInString(in) <= length {
		return in
	}

	runes := []rune(in)
	if length <= 3 {
		return string(runes[:length])
	}
	return string(runes[:length-3]) + "..."
}

func Uniquify(in []string) []string {
	result := make([]string, 0, len(in))
	seen := make(map[string]bool)
	for _, i := range in {
		_, pres := seen[i]
		if pres {
			continue
		}
		seen[i] = true
		result = append(result, i)
	}
	return result
}
