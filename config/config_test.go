package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"www.velocidex.com/golang/eventfmt/utils"
)

type LoaderTestSuite struct {
	suite.Suite
}

func (self *LoaderTestSuite) TestFileLoader() {
	config_obj, err := new(Loader).
		WithFileLoader("test_data/eventfmt.config.yaml").
		LoadAndValidate()
	require.NoError(self.T(), err)

	formatters := config_obj.Formatters
	assert.Equal(self.T(), ON_ERROR_SKIP, formatters.OnError)
	assert.True(self.T(), formatters.StrictPlaceholders)
	assert.Equal(self.T(), 60, formatters.ShortMessageLength)
	assert.Equal(self.T(), []string{"../formatters/test_data/definitions"},
		formatters.DefinitionDirectories)
	assert.Equal(self.T(), "warn", config_obj.Logging.Level)
}

func (self *LoaderTestSuite) TestMissingFileIsHardError() {
	_, err := new(Loader).
		WithFileLoader("test_data/does_not_exist.yaml").
		WithNullLoader().
		LoadAndValidate()
	require.Error(self.T(), err)

	_, ok := err.(HardError)
	assert.True(self.T(), ok)
}

func (self *LoaderTestSuite) TestEnvLoaderFallsBack() {
	self.T().Setenv("EVENTFMT_TEST_CONFIG", "")

	config_obj, err := new(Loader).
		WithEnvLoader("EVENTFMT_TEST_CONFIG").
		WithNullLoader().
		LoadAndValidate()
	require.NoError(self.T(), err)

	// Defaults are applied to the empty config.
	assert.Equal(self.T(), ON_ERROR_REJECT, config_obj.Formatters.OnError)
	assert.Equal(self.T(), DEFAULT_SHORT_MESSAGE_LENGTH,
		config_obj.Formatters.ShortMessageLength)
	assert.Equal(self.T(), "info", config_obj.Logging.Level)
}

func (self *LoaderTestSuite) TestEnvLoader() {
	self.T().Setenv("EVENTFMT_TEST_CONFIG", "test_data/eventfmt.config.yaml")

	config_obj, err := new(Loader).
		WithEnvLoader("EVENTFMT_TEST_CONFIG").
		WithNullLoader().
		LoadAndValidate()
	require.NoError(self.T(), err)
	assert.Equal(self.T(), ON_ERROR_SKIP, config_obj.Formatters.OnError)
}

func (self *LoaderTestSuite) TestInvalidPolicy() {
	_, err := new(Loader).
		WithFileLoader("test_data/invalid.config.yaml").
		LoadAndValidate()
	require.Error(self.T(), err)
	assert.True(self.T(), errors.Is(err, utils.InvalidConfigError))
}

func (self *LoaderTestSuite) TestUnknownKeysRejected() {
	_, err := new(Loader).
		WithLiteralLoader([]byte("formatters:\n  no_such_key: 1\n")).
		LoadAndValidate()
	assert.Error(self.T(), err)
}

func (self *LoaderTestSuite) TestDefinitionDirectories() {
	config_obj, err := new(Loader).
		WithLiteralLoader([]byte("formatters:\n  definition_directories: [a]\n")).
		WithDefinitionDirectories([]string{"b", "c"}).
		LoadAndValidate()
	require.NoError(self.T(), err)
	assert.Equal(self.T(), []string{"a", "b", "c"},
		config_obj.Formatters.DefinitionDirectories)
}

func (self *LoaderTestSuite) TestCustomValidator() {
	_, err := new(Loader).
		WithNullLoader().
		WithCustomValidator("RequireDirectories", func(config_obj *Config) error {
			if len(config_obj.Formatters.DefinitionDirectories) == 0 {
				return errors.New("No definition directories")
			}
			return nil
		}).
		LoadAndValidate()
	assert.Error(self.T(), err)
}

func (self *LoaderTestSuite) TestLogFile() {
	log_file := filepath.Join(self.T().TempDir(), "eventfmt.log")

	config_obj, err := new(Loader).
		WithLiteralLoader([]byte("logging:\n  level: info\n")).
		WithLogFile(log_file).
		LoadAndValidate()
	require.NoError(self.T(), err)
	assert.Equal(self.T(), log_file, config_obj.Logging.OutputFile)

	_, err = os.Stat(log_file)
	assert.NoError(self.T(), err)
}

func (self *LoaderTestSuite) TestRequiredLogging() {
	log_file := filepath.Join(self.T().TempDir(), "missing", "eventfmt.log")
	loader := new(Loader).
		WithLiteralLoader([]byte("logging:\n  level: info\n")).
		WithLogFile(log_file)

	// Without the requirement a broken log file is only logged.
	_, err := loader.LoadAndValidate()
	assert.NoError(self.T(), err)

	_, err = loader.WithRequiredLogging().LoadAndValidate()
	assert.ErrorContains(self.T(), err, "Unable to open log file")
}

func TestLoader(t *testing.T) {
	suite.Run(t, &LoaderTestSuite{})
}

func TestDeclaredFields(t *testing.T) {
	formatters := &FormattersConfig{
		CommonFields: []string{"filename"},
		Fields: map[string][]string{
			"b": {"y", "filename"},
			"a": {"x"},
		},
	}

	fields, pres := formatters.DeclaredFields("a")
	assert.True(t, pres)
	assert.Equal(t, []string{"filename", "x"}, fields)

	// Undeclared data types may use any declared field.
	fields, pres = formatters.DeclaredFields("c")
	assert.True(t, pres)
	assert.Equal(t, []string{"filename", "x", "y"}, fields)

	_, pres = (&FormattersConfig{}).DeclaredFields("a")
	assert.False(t, pres)
}
