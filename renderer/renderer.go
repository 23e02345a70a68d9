package renderer

import (
	"fmt"

	"www.velocidex.com/golang/eventfmt/formatters"
)

// Renders one kind of template.
type Strategy interface {
	Render(template formatters.Template, fields Fields) (string, error)
}

var (
	strategies = map[formatters.Kind]Strategy{
		formatters.BASIC:       BasicStrategy{},
		formatters.CONDITIONAL: ConditionalStrategy{},
	}
)

// Every placeholder is substituted. Missing fields become empty
// strings.
type BasicStrategy struct{}

func (self BasicStrategy) Render(
	template formatters.Template, fields Fields) (string, error) {
	basic, ok := template.(*formatters.BasicTemplate)
	if !ok || basic == nil {
		return "", fmt.Errorf("%w: expected a basic template, not %T",
			formatters.ErrMalformedDefinition, template)
	}

	return basic.Fragment().Expand(resolver(fields)), nil
}

// Fragments with any missing placeholder are dropped entirely.
type ConditionalStrategy struct{}

func (self ConditionalStrategy) Render(
	template formatters.Template, fields Fields) (string, error) {
	conditional, ok := template.(*formatters.ConditionalTemplate)
	if !ok || conditional == nil {
		return "", fmt.Errorf("%w: expected a conditional template, not %T",
			formatters.ErrMalformedDefinition, template)
	}

	selected := SelectFragments(conditional.Fragments(),
		func(name string) bool {
			return IsPresent(fields, name)
		})

	return JoinFragments(selected, resolver(fields)), nil
}

// Produces the long and short message of an event. The short message
// is empty when the definition has none. Missing fields never cause an
// error, only a definition which fails validation does.
func Render(definition *formatters.FormatterDefinition, fields Fields) (
	message string, short_message string, err error) {

	err = definition.Validate()
	if err != nil {
		return "", "", err
	}

	strategy, pres := strategies[definition.Type]
	if !pres {
		return "", "", fmt.Errorf("%w: no renderer for type %q",
			formatters.ErrMalformedDefinition, definition.Type)
	}

	message, err = strategy.Render(definition.Message, fields)
	if err != nil {
		return "", "", err
	}

	if definition.ShortMessage != nil {
		short_message, err = strategy.Render(definition.ShortMessage, fields)
		if err != nil {
			return "", "", err
		}
	}

	return message, short_message, nil
}
