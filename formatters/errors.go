package formatters

import (
	"fmt"
	"strings"

	errors "github.com/pkg/errors"
	"www.velocidex.com/golang/eventfmt/utils"
)

var (
	ErrMalformedDefinition = errors.New("MalformedDefinition")
	ErrUnknownPlaceholder  = errors.New("UnknownPlaceholder")
	ErrNotFound            = fmt.Errorf("%w: formatter definition", utils.NotFoundError)
)

// A structural problem with a definition discovered at load time.
type MalformedDefinitionError struct {
	DataType string
	Filename string
	Line     int
	Reason   string
}

func (self *MalformedDefinitionError) Error() string {
	name := self.DataType
	if name == "" {
		name = "<unknown>"
	}
	return fmt.Sprintf("%v: %v%v: %v", ErrMalformedDefinition, name,
		location(self.Filename, self.Line), self.Reason)
}

func (self *MalformedDefinitionError) Is(target error) bool {
	return target == ErrMalformedDefinition
}

// A template references a field that is not declared for its data
// type.
type UnknownPlaceholderError struct {
	DataType string
	Field    string

	// Either message or short_message
	Template string
}

func (self *UnknownPlaceholderError) Error() string {
	return fmt.Sprintf("%v: %v: %v references undeclared field {%v}",
		ErrUnknownPlaceholder, self.DataType, self.Template, self.Field)
}

func (self *UnknownPlaceholderError) Is(target error) bool {
	return target == ErrUnknownPlaceholder
}

// Collects all the problems found during a single load.
type LoadError struct {
	Errors []error
}

func (self *LoadError) Error() string {
	messages := make([]string, 0, len(self.Errors))
	for _, err := range self.Errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

func (self *LoadError) Unwrap() []error {
	return self.Errors
}

func location(filename string, line int) string {
	switch {
	case filename != "" && line > 0:
		return fmt.Sprintf(" (%v:%v)", filename, line)
	case filename != "":
		return fmt.Sprintf(" (%v)", filename)
	case line > 0:
		return fmt.Sprintf(" (line %v)", line)
	}
	return ""
}

func malformed(data_type, filename string, line int,
	format string, args ...interface{}) *MalformedDefinitionError {
	return &MalformedDefinitionError{
		DataType: data_type,
		Filename: filename,
		Line:     line,
		Reason:   fmt.Sprintf(format, args...),
	}
}
