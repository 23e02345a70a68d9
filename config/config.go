package config

import (
	"fmt"
	"strings"

	"www.velocidex.com/golang/eventfmt/utils"
)

const (
	// Policies applied when a definition fails structural
	// validation.
	ON_ERROR_REJECT = "reject"
	ON_ERROR_SKIP   = "skip"

	DEFAULT_SHORT_MESSAGE_LENGTH = 80
)

type Config struct {
	Formatters *FormattersConfig `yaml:"formatters,omitempty"`
	Logging    *LoggingConfig    `yaml:"logging,omitempty"`

	// Set by the loader, not read from the file.
	Verbose bool `yaml:"-"`
}

type FormattersConfig struct {
	DefinitionDirectories []string `yaml:"definition_directories,omitempty"`

	// Either "reject" (the whole load fails) or "skip" (the bad
	// definition is logged and ignored).
	OnError string `yaml:"on_error,omitempty"`

	// Templates referencing undeclared fields fail the load instead
	// of just warning.
	StrictPlaceholders bool `yaml:"strict_placeholders,omitempty"`

	ShortMessageLength int `yaml:"short_message_length,omitempty"`

	// Declared field names. Common fields are valid for every data
	// type.
	CommonFields []string            `yaml:"common_fields,omitempty"`
	Fields       map[string][]string `yaml:"fields,omitempty"`
}

type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`
	OutputFile string `yaml:"output_file,omitempty"`
}

func GetDefaultConfig() *Config {
	result := &Config{}
	_ = ValidateConfig(result)
	return result
}

// Fill in defaults and reject invalid settings.
func ValidateConfig(config_obj *Config) error {
	if config_obj.Formatters == nil {
		config_obj.Formatters = &FormattersConfig{}
	}

	if config_obj.Logging == nil {
		config_obj.Logging = &LoggingConfig{}
	}

	formatters := config_obj.Formatters
	formatters.OnError = strings.ToLower(formatters.OnError)
	switch formatters.OnError {
	case "":
		formatters.OnError = ON_ERROR_REJECT

	case ON_ERROR_REJECT, ON_ERROR_SKIP:

	default:
		return fmt.Errorf("%w: formatters.on_error must be one of %v or %v, not %q",
			utils.InvalidConfigError, ON_ERROR_REJECT, ON_ERROR_SKIP,
			formatters.OnError)
	}

	if formatters.ShortMessageLength < 0 {
		return fmt.Errorf("%w: formatters.short_message_length can not be negative",
			utils.InvalidConfigError)
	}

	if formatters.ShortMessageLength == 0 {
		formatters.ShortMessageLength = DEFAULT_SHORT_MESSAGE_LENGTH
	}

	if config_obj.Logging.Level == "" {
		config_obj.Logging.Level = "info"
	}

	return nil
}

// The field names a template of this data type may reference. Data
// types without their own entry may use any field declared for any
// data type. Returns false when no fields are declared at all.
func (self *FormattersConfig) DeclaredFields(data_type string) ([]string, bool) {
	if self == nil || (len(self.CommonFields) == 0 && len(self.Fields) == 0) {
		return nil, false
	}

	result := append([]string{}, self.CommonFields...)
	specific, pres := self.Fields[data_type]
	if pres {
		result = append(result, specific...)

	} else {
		for _, k := range utils.Sort(utils.Keys(self.Fields)) {
			result = append(result, self.Fields[k]...)
		}
	}

	return utils.Uniquify(result), true
}
