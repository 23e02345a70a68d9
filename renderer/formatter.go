package renderer

import (
	"strings"

	"github.com/Velocidex/ordereddict"
	errors "github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"www.velocidex.com/golang/eventfmt/config"
	"www.velocidex.com/golang/eventfmt/constants"
	"www.velocidex.com/golang/eventfmt/formatters"
	"www.velocidex.com/golang/eventfmt/logging"
	"www.velocidex.com/golang/eventfmt/utils"
)

const (
	DEFAULT_SOURCE       = "DEFAULT"
	DEFAULT_SHORT_SOURCE = "LOG"

	DEFAULT_MESSAGE_PREFIX       = "<WARNING DEFAULT FORMATTER> Attributes: "
	DEFAULT_SHORT_MESSAGE_PREFIX = "<DEFAULT> "
)

var (
	renderFallback = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formatter_render_fallback",
			Help: "Number of rendered events which used a fallback message.",
		},
		[]string{"reason"},
	)
)

// Anything that can resolve a data type to its definition.
// *formatters.Registry is the usual implementation.
type DefinitionLookup interface {
	Lookup(data_type string) (*formatters.FormatterDefinition, error)
}

// What the timeline display receives for each event.
type Message struct {
	DataType     string `json:"data_type"`
	Source       string `json:"source"`
	ShortSource  string `json:"short_source"`
	Message      string `json:"message"`
	ShortMessage string `json:"short_message"`
}

func (self *Message) ToDict() *ordereddict.Dict {
	return ordereddict.NewDict().
		Set("data_type", self.DataType).
		Set("source", self.Source).
		Set("short_source", self.ShortSource).
		Set("message", self.Message).
		Set("short_message", self.ShortMessage)
}

// Formats events using the definitions in the registry, falling back
// to a field dump for data types without a definition.
type Formatter struct {
	registry             DefinitionLookup
	short_message_length int
	logger               *logging.LogContext
}

func NewFormatter(
	registry DefinitionLookup, config_obj *config.FormattersConfig) *Formatter {
	length := config.DEFAULT_SHORT_MESSAGE_LENGTH
	if config_obj != nil && config_obj.ShortMessageLength > 0 {
		length = config_obj.ShortMessageLength
	}

	return &Formatter{
		registry:             registry,
		short_message_length: length,
		logger:               logging.GetLogger(&logging.RendererComponent),
	}
}

func (self *Formatter) Format(data_type string, fields Fields) (*Message, error) {
	definition, err := self.registry.Lookup(data_type)
	if errors.Is(err, formatters.ErrNotFound) {
		renderFallback.WithLabelValues("not_found").Inc()
		self.logger.Debug("No formatter for %v, using the default formatter",
			data_type)
		return self.defaultMessage(data_type, fields), nil
	}

	if err != nil {
		return nil, err
	}

	message, short_message, err := Render(definition, fields)
	if err != nil {
		return nil, err
	}

	if message == "" {
		renderFallback.WithLabelValues("empty_message").Inc()
		message = definition.Source
	}

	if short_message == "" {
		renderFallback.WithLabelValues("empty_short_message").Inc()
		short_message = utils.Elide(message, self.short_message_length)
	}

	return &Message{
		DataType:     data_type,
		Source:       definition.Source,
		ShortSource:  definition.ShortSource,
		Message:      message,
		ShortMessage: short_message,
	}, nil
}

// The event's data type is taken from its data_type field.
func (self *Formatter) FormatEvent(event *ordereddict.Dict) (*Message, error) {
	data_type, pres := event.GetString(constants.DATA_TYPE_FIELD)
	if !pres || data_type == "" {
		return nil, errors.Wrap(utils.InvalidArgError, "event has no data_type")
	}
	return self.Format(data_type, NewDictFields(event))
}

func (self *Formatter) defaultMessage(data_type string, fields Fields) *Message {
	attributes := DefaultAttributes(fields)
	return &Message{
		DataType:    data_type,
		Source:      DEFAULT_SOURCE,
		ShortSource: DEFAULT_SHORT_SOURCE,
		Message:     DEFAULT_MESSAGE_PREFIX + attributes,
		ShortMessage: utils.Elide(DEFAULT_SHORT_MESSAGE_PREFIX+attributes,
			self.short_message_length),
	}
}

// A "name: value" dump of all present fields sorted by name. The
// data_type field is left out.
func DefaultAttributes(fields Fields) string {
	if utils.IsNil(fields) {
		return ""
	}

	var pieces []string
	for _, name := range utils.Sort(append([]string{}, fields.Keys()...)) {
		if name == constants.DATA_TYPE_FIELD || !IsPresent(fields, name) {
			continue
		}
		value, _ := fields.Get(name)
		pieces = append(pieces, name+": "+ToDisplayString(value))
	}
	return strings.Join(pieces, " ")
}
