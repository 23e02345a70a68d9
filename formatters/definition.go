package formatters

import (
	"fmt"
)

type Kind string

const (
	// A single template string. Missing fields render as empty
	// strings.
	BASIC Kind = "basic"

	// An ordered list of fragments. A fragment is dropped entirely
	// when any of its fields is missing.
	CONDITIONAL Kind = "conditional"
)

func ParseKind(in string) (Kind, error) {
	switch Kind(in) {
	case BASIC, CONDITIONAL:
		return Kind(in), nil
	}
	return "", fmt.Errorf("invalid type %q: must be %v or %v", in, BASIC, CONDITIONAL)
}

// A Template is one of *BasicTemplate or *ConditionalTemplate.
type Template interface {
	Kind() Kind

	// The fragments in declared order.
	Fragments() []*Fragment

	// Unique placeholder names over all fragments.
	Placeholders() []string

	sealed()
}

type BasicTemplate struct {
	fragment *Fragment
}

func NewBasicTemplate(text string) (*BasicTemplate, error) {
	fragment, err := ParseFragment(text)
	if err != nil {
		return nil, err
	}
	return &BasicTemplate{fragment: fragment}, nil
}

func (self *BasicTemplate) Kind() Kind {
	return BASIC
}

func (self *BasicTemplate) Fragment() *Fragment {
	return self.fragment
}

func (self *BasicTemplate) Fragments() []*Fragment {
	return []*Fragment{self.fragment}
}

func (self *BasicTemplate) Placeholders() []string {
	return self.fragment.Placeholders()
}

func (self *BasicTemplate) sealed() {}

type ConditionalTemplate struct {
	fragments []*Fragment
}

func NewConditionalTemplate(pieces []string) (*ConditionalTemplate, error) {
	result := &ConditionalTemplate{fragments: make([]*Fragment, 0, len(pieces))}
	for idx, piece := range pieces {
		fragment, err := ParseFragment(piece)
		if err != nil {
			return nil, fmt.Errorf("fragment %v: %w", idx, err)
		}
		result.fragments = append(result.fragments, fragment)
	}
	return result, nil
}

func (self *ConditionalTemplate) Kind() Kind {
	return CONDITIONAL
}

func (self *ConditionalTemplate) Fragments() []*Fragment {
	return append([]*Fragment{}, self.fragments...)
}

func (self *ConditionalTemplate) Placeholders() []string {
	var result []string
	seen := make(map[string]bool)
	for _, fragment := range self.fragments {
		for _, name := range fragment.placeholders {
			if !seen[name] {
				seen[name] = true
				result = append(result, name)
			}
		}
	}
	return result
}

func (self *ConditionalTemplate) sealed() {}

// Create a template of the given kind from its raw strings. A basic
// template takes exactly one string.
func NewTemplate(kind Kind, pieces []string) (Template, error) {
	switch kind {
	case BASIC:
		if len(pieces) != 1 {
			return nil, fmt.Errorf("a basic template has a single string, not %v",
				len(pieces))
		}
		return NewBasicTemplate(pieces[0])

	case CONDITIONAL:
		return NewConditionalTemplate(pieces)
	}
	return nil, fmt.Errorf("invalid type %q", kind)
}

func templateStrings(template Template) []string {
	var result []string
	for _, fragment := range template.Fragments() {
		result = append(result, fragment.Text())
	}
	return result
}

type FormatterDefinition struct {
	DataType string
	Type     Kind

	Message Template

	// Nil when the definition has no short_message.
	ShortMessage Template

	ShortSource string
	Source      string

	// Where the definition was loaded from.
	Filename string
	Line     int
}

// Structural checks. A definition produced by the loader always
// passes.
func (self *FormatterDefinition) Validate() error {
	if self == nil {
		return malformed("", "", 0, "nil definition")
	}

	if self.DataType == "" {
		return malformed("", self.Filename, self.Line, "missing data_type")
	}

	_, err := ParseKind(string(self.Type))
	if err != nil {
		return malformed(self.DataType, self.Filename, self.Line, "%v", err)
	}

	if self.Message == nil {
		return malformed(self.DataType, self.Filename, self.Line, "missing message")
	}

	if !isValidTemplate(self.Type, self.Message) {
		return malformed(self.DataType, self.Filename, self.Line,
			"message is not a %v template", self.Type)
	}

	if self.ShortMessage != nil && !isValidTemplate(self.Type, self.ShortMessage) {
		return malformed(self.DataType, self.Filename, self.Line,
			"short_message is not a %v template", self.Type)
	}

	return nil
}

func isValidTemplate(kind Kind, template Template) bool {
	switch t := template.(type) {
	case *BasicTemplate:
		return kind == BASIC && t != nil && t.fragment != nil
	case *ConditionalTemplate:
		return kind == CONDITIONAL && t != nil
	}
	return false
}

type NamedTemplate struct {
	// The YAML key: message or short_message
	Name     string
	Template Template
}

func (self *FormatterDefinition) Templates() []NamedTemplate {
	result := []NamedTemplate{{Name: "message", Template: self.Message}}
	if self.ShortMessage != nil {
		result = append(result, NamedTemplate{
			Name: "short_message", Template: self.ShortMessage})
	}
	return result
}
