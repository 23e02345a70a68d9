package formatters

import (
	"bytes"

	errors "github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Serializes definitions into a multi document YAML stream. Keys are
// emitted in canonical order and conditional fragments keep their
// declared order so the output loads back into identical
// definitions.
func MarshalYaml(definitions []*FormatterDefinition) ([]byte, error) {
	buf := &bytes.Buffer{}
	encoder := yaml.NewEncoder(buf)
	encoder.SetIndent(2)

	for _, definition := range definitions {
		err := definition.Validate()
		if err != nil {
			return nil, err
		}

		err = encoder.Encode(definitionToNode(definition))
		if err != nil {
			return nil, errors.WithStack(err)
		}
	}

	err := encoder.Close()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return buf.Bytes(), nil
}

// Serialize all the definitions in the registry ordered by data type.
func (self *Registry) MarshalYaml() ([]byte, error) {
	definitions := make([]*FormatterDefinition, 0, len(self.names))
	for _, name := range self.names {
		definitions = append(definitions, self.definitions[name])
	}
	return MarshalYaml(definitions)
}

func definitionToNode(definition *FormatterDefinition) *yaml.Node {
	result := &yaml.Node{Kind: yaml.MappingNode}

	add := func(key string, value *yaml.Node) {
		result.Content = append(result.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Value: key,
		}, value)
	}

	add("type", stringNode(string(definition.Type)))
	add("data_type", stringNode(definition.DataType))
	add("message", templateToNode(definition.Message))
	if definition.ShortMessage != nil {
		add("short_message", templateToNode(definition.ShortMessage))
	}
	add("short_source", stringNode(definition.ShortSource))
	add("source", stringNode(definition.Source))

	return result
}

func templateToNode(template Template) *yaml.Node {
	pieces := templateStrings(template)
	if template.Kind() == BASIC && len(pieces) == 1 {
		return stringNode(pieces[0])
	}

	result := &yaml.Node{Kind: yaml.SequenceNode}
	for _, piece := range pieces {
		result.Content = append(result.Content, stringNode(piece))
	}
	return result
}

// The explicit tag makes the encoder quote values such as "yes" or
// "{name}" which would otherwise not load back as the same string.
func stringNode(value string) *yaml.Node {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!str",
		Value: value,
	}
}
