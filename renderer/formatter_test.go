package renderer

import (
	"strings"
	"sync"
	"testing"

	"github.com/Velocidex/ordereddict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"www.velocidex.com/golang/eventfmt/config"
	"www.velocidex.com/golang/eventfmt/formatters"
	"www.velocidex.com/golang/eventfmt/utils"
)

func loadTestRegistry(t *testing.T) *formatters.Registry {
	builder := formatters.NewBuilder(config.GetDefaultConfig().Formatters)
	_, err := builder.LoadDirectory("../formatters/test_data/definitions")
	require.NoError(t, err)

	registry, err := builder.Build()
	require.NoError(t, err)
	return registry
}

type FormatterTestSuite struct {
	suite.Suite
	registry *formatters.Registry
}

func (self *FormatterTestSuite) SetupSuite() {
	self.registry = loadTestRegistry(self.T())
}

func (self *FormatterTestSuite) TestFormat() {
	formatter := NewFormatter(self.registry, nil)

	message, err := formatter.Format("macos:application:entry", MapFields{
		"application": "Safari",
		"app_version": "16.0",
	})
	require.NoError(self.T(), err)
	assert.Equal(self.T(), &Message{
		DataType:     "macos:application:entry",
		Source:       "macOS Application",
		ShortSource:  "LOG",
		Message:      "Safari v.16.0",
		ShortMessage: "Safari",
	}, message)
}

// An unknown data type gets a dump of its fields.
func (self *FormatterTestSuite) TestDefaultFormatter() {
	formatter := NewFormatter(self.registry, nil)

	event := ordereddict.NewDict().
		Set("data_type", "no:such:type").
		Set("zeta", 2).
		Set("alpha", "first").
		Set("empty", "").
		Set("missing", nil)

	message, err := formatter.FormatEvent(event)
	require.NoError(self.T(), err)
	assert.Equal(self.T(), "no:such:type", message.DataType)
	assert.Equal(self.T(), DEFAULT_SOURCE, message.Source)
	assert.Equal(self.T(), DEFAULT_SHORT_SOURCE, message.ShortSource)
	assert.Equal(self.T(),
		"<WARNING DEFAULT FORMATTER> Attributes: alpha: first zeta: 2",
		message.Message)
	assert.Equal(self.T(), "<DEFAULT> alpha: first zeta: 2", message.ShortMessage)
}

func (self *FormatterTestSuite) TestShortMessageFallback() {
	formatter := NewFormatter(self.registry, &config.FormattersConfig{
		ShortMessageLength: 20,
	})

	message, err := formatter.Format("windows:volume:creation", MapFields{
		"path":     "/a/very/long/path/name",
		"user_sid": "S-1-5-21",
	})
	require.NoError(self.T(), err)
	assert.Equal(self.T(), "(/a/very/long/path/name) by S-1-5-21", message.Message)
	assert.Equal(self.T(), "(/a/very/long/pat...", message.ShortMessage)
	assert.Equal(self.T(), 20, len([]rune(message.ShortMessage)))
}

func (self *FormatterTestSuite) TestEmptyMessageFallback() {
	formatter := NewFormatter(self.registry, nil)

	message, err := formatter.Format("macos:keychain:application", MapFields{})
	require.NoError(self.T(), err)
	assert.Equal(self.T(), "Keychain Application password", message.Message)
	assert.Equal(self.T(), "Keychain Application password", message.ShortMessage)
}

func (self *FormatterTestSuite) TestEventWithoutDataType() {
	formatter := NewFormatter(self.registry, nil)

	_, err := formatter.FormatEvent(ordereddict.NewDict().Set("name", "x"))
	assert.ErrorIs(self.T(), err, utils.InvalidArgError)
}

func (self *FormatterTestSuite) TestConcurrentFormat() {
	formatter := NewFormatter(self.registry, nil)
	fields := MapFields{"name": "doc.txt", "user_sid": "S-1-5"}

	wg := &sync.WaitGroup{}
	results := make([]string, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			message, err := formatter.Format("windows:volume:creation", fields)
			if err == nil {
				results[i] = message.Message
			}
		}(i)
	}
	wg.Wait()

	for _, result := range results {
		assert.Equal(self.T(), "Version of [doc.txt] by S-1-5", result)
	}
}

type brokenLookup struct{}

func (self brokenLookup) Lookup(data_type string) (*formatters.FormatterDefinition, error) {
	return &formatters.FormatterDefinition{DataType: data_type, Type: "other"}, nil
}

func (self *FormatterTestSuite) TestInvalidDefinition() {
	formatter := NewFormatter(brokenLookup{}, nil)
	_, err := formatter.Format("broken", MapFields{})
	assert.ErrorIs(self.T(), err, formatters.ErrMalformedDefinition)
}

func TestFormatter(t *testing.T) {
	suite.Run(t, &FormatterTestSuite{})
}

func TestDefaultAttributes(t *testing.T) {
	assert.Equal(t, "", DefaultAttributes(nil))
	assert.Equal(t, "a: 1 b: true", DefaultAttributes(MapFields{
		"b": true, "a": 1, "data_type": "x",
	}))

	long := DefaultAttributes(MapFields{"text": strings.Repeat("x", 100)})
	assert.Equal(t, 106, len(long))
}
