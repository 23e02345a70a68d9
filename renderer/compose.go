package renderer

import (
	"strings"

	"www.velocidex.com/golang/eventfmt/formatters"
)

// Separates the surviving fragments of a conditional template.
const FRAGMENT_SEPARATOR = " "

// Returns the fragments whose placeholders are all present, in their
// declared order. A fragment without placeholders is always kept.
func SelectFragments(
	fragments []*formatters.Fragment,
	present func(name string) bool) []*formatters.Fragment {

	result := make([]*formatters.Fragment, 0, len(fragments))
	for _, fragment := range fragments {
		if allPresent(fragment.Placeholders(), present) {
			result = append(result, fragment)
		}
	}
	return result
}

func allPresent(names []string, present func(name string) bool) bool {
	for _, name := range names {
		if !present(name) {
			return false
		}
	}
	return true
}

// Expands the fragments and joins them with a single space. The
// result is trimmed so dropped leading or trailing fragments leave no
// whitespace behind.
func JoinFragments(
	fragments []*formatters.Fragment,
	resolve func(name string) string) string {

	pieces := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		pieces = append(pieces, fragment.Expand(resolve))
	}
	return strings.TrimSpace(strings.Join(pieces, FRAGMENT_SEPARATOR))
}
