package formatters

import (
	"fmt"

	"www.velocidex.com/golang/eventfmt/config"
	"www.velocidex.com/golang/eventfmt/utils"
)

// The result of checking a single definition. Errors fail a
// validation pass, warnings are only reported.
type AnalysisState struct {
	DataType string
	Filename string
	Errors   []string
	Warnings []string

	// Also reported in Errors.
	UnknownPlaceholders []*UnknownPlaceholderError
}

func (self *AnalysisState) SetError(err error) {
	self.Errors = append(self.Errors, err.Error())
}

func (self *AnalysisState) SetWarning(format string, args ...interface{}) {
	self.Warnings = append(self.Warnings, fmt.Sprintf(format, args...))
}

func (self *AnalysisState) OK() bool {
	return len(self.Errors) == 0
}

func NewAnalysisState(definition *FormatterDefinition) *AnalysisState {
	return &AnalysisState{
		DataType: definition.DataType,
		Filename: definition.Filename,
	}
}

// Checks the definition structure and dry-runs every template against
// the fields declared in the config.
func VerifyDefinition(
	definition *FormatterDefinition,
	config_obj *config.FormattersConfig) *AnalysisState {
	state := NewAnalysisState(definition)

	err := definition.Validate()
	if err != nil {
		state.SetError(err)
		return state
	}

	declared, pres := config_obj.DeclaredFields(definition.DataType)
	if !pres {
		state.SetWarning("%v: no fields are declared, placeholders are not checked",
			definition.DataType)
	}

	for _, named := range definition.Templates() {
		verifyTemplate(state, definition.DataType, named, declared, pres)
	}

	return state
}

func verifyTemplate(state *AnalysisState, data_type string,
	named NamedTemplate, declared []string, check bool) {
	fragments := named.Template.Fragments()

	if named.Template.Kind() == CONDITIONAL {
		if len(fragments) == 0 {
			state.SetWarning("%v: %v has no fragments and always renders empty",
				data_type, named.Name)
		} else if len(named.Template.Placeholders()) == 0 {
			state.SetWarning("%v: %v has no placeholders so no fragment is ever dropped",
				data_type, named.Name)
		}
	}

	if !check {
		return
	}

	reported := make(map[string]bool)
	for _, fragment := range fragments {
		fragment.Expand(func(name string) string {
			if !utils.InString(declared, name) && !reported[name] {
				reported[name] = true
				err := &UnknownPlaceholderError{
					DataType: data_type,
					Field:    name,
					Template: named.Name,
				}
				state.UnknownPlaceholders = append(state.UnknownPlaceholders, err)
				state.SetError(err)
			}
			return ""
		})
	}
}

// Verify all the definitions in the registry ordered by data type.
func (self *Registry) Verify(config_obj *config.FormattersConfig) []*AnalysisState {
	result := make([]*AnalysisState, 0, len(self.names))
	for _, name := range self.names {
		result = append(result, VerifyDefinition(self.definitions[name], config_obj))
	}
	return result
}
