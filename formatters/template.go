package formatters

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	identifierRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// A template piece is either literal text or a named placeholder.
type token struct {
	literal     string
	placeholder string
}

// A fragment is a single template string such as "by {user_sid}". A
// basic template has one fragment, a conditional template has many.
//
// Placeholders are written {name}. Literal braces are written {{ and
// }}.
type Fragment struct {
	text         string
	tokens       []token
	placeholders []string
}

func ParseFragment(text string) (*Fragment, error) {
	result := &Fragment{text: text}
	literal := &strings.Builder{}
	seen := make(map[string]bool)

	flush := func() {
		if literal.Len() > 0 {
			result.tokens = append(result.tokens, token{literal: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '{':
			if i+1 < len(text) && text[i+1] == '{' {
				literal.WriteByte('{')
				i++
				continue
			}

			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 {
				return nil, fmt.Errorf("unterminated placeholder at offset %v in %q",
					i, text)
			}

			name := text[i+1 : i+1+end]
			if !identifierRegex.MatchString(name) {
				return nil, fmt.Errorf("invalid placeholder name {%v} in %q",
					name, text)
			}

			flush()
			result.tokens = append(result.tokens, token{placeholder: name})
			if !seen[name] {
				seen[name] = true
				result.placeholders = append(result.placeholders, name)
			}
			i += end + 1

		case '}':
			if i+1 < len(text) && text[i+1] == '}' {
				literal.WriteByte('}')
				i++
				continue
			}
			return nil, fmt.Errorf("unmatched '}' at offset %v in %q", i, text)

		default:
			literal.WriteByte(text[i])
		}
	}
	flush()

	return result, nil
}

// The template source exactly as written in the definition.
func (self *Fragment) Text() string {
	return self.text
}

// Unique placeholder names in order of first appearance.
func (self *Fragment) Placeholders() []string {
	return append([]string{}, self.placeholders...)
}

func (self *Fragment) HasPlaceholders() bool {
	return len(self.placeholders) > 0
}

// Substitute every placeholder with the string returned by resolve.
func (self *Fragment) Expand(resolve func(name string) string) string {
	result := &strings.Builder{}
	for _, t := range self.tokens {
		if t.placeholder == "" {
			result.WriteString(t.literal)
			continue
		}
		result.WriteString(resolve(t.placeholder))
	}
	return result.String()
}
