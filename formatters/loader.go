package formatters

import (
	"bytes"
	"io"

	errors "github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"www.velocidex.com/golang/eventfmt/utils"
)

var (
	// The keys a definition document may contain in their canonical
	// order.
	definitionKeys = []string{
		"type", "data_type", "message", "short_message",
		"short_source", "source",
	}

	requiredKeys = []string{
		"type", "data_type", "message", "short_source", "source",
	}
)

// Parses a stream of YAML definition documents. Each document is
// checked independently: a malformed document ends up in doc_errors
// and parsing continues with the next one. A YAML syntax error stops
// parsing altogether and is returned as err.
func ParseYaml(data []byte, filename string) (
	result []*FormatterDefinition, doc_errors []error, err error) {

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	for {
		node := &yaml.Node{}
		err := decoder.Decode(node)
		if errors.Is(err, io.EOF) {
			return result, doc_errors, nil
		}

		if err != nil {
			return result, doc_errors, malformed("", filename, 0, "%v", err)
		}

		root := node
		if node.Kind == yaml.DocumentNode {
			if len(node.Content) == 0 {
				continue
			}
			root = node.Content[0]
		}

		// An empty document between two separators.
		if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
			continue
		}

		definition, err := parseDefinition(root, filename)
		if err != nil {
			doc_errors = append(doc_errors, err)
			continue
		}
		result = append(result, definition)
	}
}

func parseDefinition(node *yaml.Node, filename string) (*FormatterDefinition, error) {
	if node.Kind != yaml.MappingNode {
		return nil, malformed("", filename, node.Line,
			"a definition must be a mapping")
	}

	raw := make(map[string]*yaml.Node)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		value := node.Content[i+1]

		if !utils.InString(definitionKeys, key.Value) {
			return nil, malformed(dataTypeHint(node), filename, key.Line,
				"unknown key %q", key.Value)
		}

		_, pres := raw[key.Value]
		if pres {
			return nil, malformed(dataTypeHint(node), filename, key.Line,
				"key %q is repeated", key.Value)
		}
		raw[key.Value] = value
	}

	data_type := dataTypeHint(node)
	for _, key := range requiredKeys {
		_, pres := raw[key]
		if !pres {
			return nil, malformed(data_type, filename, node.Line,
				"missing required key %q", key)
		}
	}

	result := &FormatterDefinition{
		Filename: filename,
		Line:     node.Line,
	}

	var err error
	for _, field := range []struct {
		key    string
		target *string
	}{
		{"data_type", &result.DataType},
		{"short_source", &result.ShortSource},
		{"source", &result.Source},
	} {
		*field.target, err = scalarString(raw[field.key])
		if err != nil {
			return nil, malformed(data_type, filename, raw[field.key].Line,
				"%v %v", field.key, err)
		}
	}

	if result.DataType == "" {
		return nil, malformed("", filename, node.Line, "data_type is empty")
	}

	type_name, err := scalarString(raw["type"])
	if err != nil {
		return nil, malformed(data_type, filename, raw["type"].Line,
			"type %v", err)
	}

	result.Type, err = ParseKind(type_name)
	if err != nil {
		return nil, malformed(data_type, filename, raw["type"].Line, "%v", err)
	}

	result.Message, err = parseTemplate(result.Type, raw["message"])
	if err != nil {
		return nil, malformed(data_type, filename, raw["message"].Line,
			"message: %v", err)
	}

	short_node, pres := raw["short_message"]
	if pres {
		result.ShortMessage, err = parseTemplate(result.Type, short_node)
		if err != nil {
			return nil, malformed(data_type, filename, short_node.Line,
				"short_message: %v", err)
		}
	}

	return result, nil
}

// A basic template is a single string and a conditional template is
// a list of strings. Anything else is inconsistent with the type.
func parseTemplate(kind Kind, node *yaml.Node) (Template, error) {
	switch kind {
	case BASIC:
		if node.Kind != yaml.ScalarNode {
			return nil, errors.New("a basic template must be a single string")
		}
		text, err := scalarString(node)
		if err != nil {
			return nil, err
		}
		return NewBasicTemplate(text)

	case CONDITIONAL:
		if node.Kind != yaml.SequenceNode {
			return nil, errors.New("a conditional template must be a list of strings")
		}

		pieces := make([]string, 0, len(node.Content))
		for idx, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, errors.Errorf("fragment %v is not a string", idx)
			}
			text, err := scalarString(item)
			if err != nil {
				return nil, errors.Errorf("fragment %v %v", idx, err)
			}
			pieces = append(pieces, text)
		}
		return NewConditionalTemplate(pieces)
	}

	return nil, errors.Errorf("invalid type %q", kind)
}

func scalarString(node *yaml.Node) (string, error) {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}

	if node.Kind != yaml.ScalarNode {
		return "", errors.New("must be a string")
	}

	switch node.Tag {
	case "!!null":
		return "", errors.New("must not be null")
	case "!!str":
		return node.Value, nil
	}

	// Numbers, booleans and timestamps need quoting.
	return "", errors.Errorf("must be a string, not %v", node.Tag)
}

// Used to name the definition in error messages before it is fully
// parsed.
func dataTypeHint(node *yaml.Node) string {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "data_type" &&
			node.Content[i+1].Kind == yaml.ScalarNode {
			return node.Content[i+1].Value
		}
	}
	return ""
}
