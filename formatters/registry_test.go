package formatters

import (
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"www.velocidex.com/golang/eventfmt/config"
	"www.velocidex.com/golang/eventfmt/logging"
	"www.velocidex.com/golang/eventfmt/utils"
	"www.velocidex.com/golang/eventfmt/vtesting"
)

type RegistryTestSuite struct {
	suite.Suite
	config_obj *config.FormattersConfig
}

func (self *RegistryTestSuite) SetupTest() {
	self.config_obj = config.GetDefaultConfig().Formatters
	logging.ClearMemoryLogs()
}

func (self *RegistryTestSuite) TestLoadDirectory() {
	builder := NewBuilder(self.config_obj)
	count, err := builder.LoadDirectory("test_data/definitions")
	require.NoError(self.T(), err)
	assert.Equal(self.T(), 4, count)

	// Loading the same directory again is a noop.
	count, err = builder.LoadDirectory("test_data/definitions/")
	require.NoError(self.T(), err)
	assert.Equal(self.T(), 0, count)

	registry, err := builder.Build()
	require.NoError(self.T(), err)

	assert.Equal(self.T(), []string{
		"macos:application:entry",
		"macos:keychain:application",
		"windows:shell_item:file_entry",
		"windows:volume:creation",
	}, registry.List())

	definition, err := registry.Lookup("windows:volume:creation")
	require.NoError(self.T(), err)
	assert.Equal(self.T(), CONDITIONAL, definition.Type)
	assert.Equal(self.T(), "Windows Volume", definition.Source)
	assert.Equal(self.T(), "LOG", definition.ShortSource)
	assert.Equal(self.T(), []string{"Version of [{name}]", "({path})", "by {user_sid}"},
		templateStrings(definition.Message))
	assert.Equal(self.T(), []string{"[{name}]"},
		templateStrings(definition.ShortMessage))
	assert.Equal(self.T(), filepath.Join("test_data", "definitions", "windows.yml"),
		definition.Filename)
	assert.Equal(self.T(), 1, definition.Line)

	definition, err = registry.Lookup("windows:shell_item:file_entry")
	require.NoError(self.T(), err)
	assert.Equal(self.T(), BASIC, definition.Type)
	assert.Nil(self.T(), definition.ShortMessage)
	assert.Equal(self.T(), 12, definition.Line)
}

func (self *RegistryTestSuite) TestLoadRegistry() {
	self.config_obj.DefinitionDirectories = []string{"test_data/definitions"}
	registry, err := LoadRegistry(self.config_obj)
	require.NoError(self.T(), err)
	assert.Equal(self.T(), 4, registry.Len())

	self.config_obj.DefinitionDirectories = []string{"test_data/no_such_dir"}
	_, err = LoadRegistry(self.config_obj)
	assert.Error(self.T(), err)
}

func (self *RegistryTestSuite) TestLookupNotFound() {
	registry, err := Load(strings.NewReader(""), self.config_obj)
	require.NoError(self.T(), err)
	assert.Equal(self.T(), 0, registry.Len())

	definition, err := registry.Lookup("macos:application:entry")
	assert.Nil(self.T(), definition)
	assert.ErrorIs(self.T(), err, ErrNotFound)
	assert.ErrorIs(self.T(), err, utils.NotFoundError)

	_, pres := registry.Get("macos:application:entry")
	assert.False(self.T(), pres)
}

// Definitions handed out by the registry can not change it.
func (self *RegistryTestSuite) TestLookupReturnsCopy() {
	registry := self.loadRegistry("test_data/definitions")

	definition, err := registry.Lookup("macos:application:entry")
	require.NoError(self.T(), err)
	definition.Source = "Changed"
	definition.DataType = "changed"

	definition, err = registry.Lookup("macos:application:entry")
	require.NoError(self.T(), err)
	assert.Equal(self.T(), "macOS Application", definition.Source)
	assert.Equal(self.T(), "macos:application:entry", definition.DataType)
}

func (self *RegistryTestSuite) TestDuplicateDataType() {
	for _, policy := range []string{config.ON_ERROR_REJECT, config.ON_ERROR_SKIP} {
		self.config_obj.OnError = policy

		builder := NewBuilder(self.config_obj)
		_, err := builder.LoadFile("test_data/malformed/duplicate.yaml")
		require.NoError(self.T(), err, policy)

		// Neither of the duplicates is kept.
		_, pres := builder.definitions["test:duplicate"]
		assert.False(self.T(), pres, policy)
		assert.Equal(self.T(), 2, len(builder.duplicates["test:duplicate"]))

		registry, err := builder.Build()
		assert.Nil(self.T(), registry, policy)
		assert.ErrorIs(self.T(), err, ErrMalformedDefinition, policy)
		assert.Contains(self.T(), err.Error(), "test:duplicate")
		assert.Contains(self.T(), err.Error(), "duplicate.yaml:1")
		assert.Contains(self.T(), err.Error(), "duplicate.yaml:13")
	}
}

// A third definition with the same key is also dropped.
func (self *RegistryTestSuite) TestDuplicateAcrossFiles() {
	data := vtesting.ReadFile(self.T(), "test_data/definitions/macos.yaml")

	builder := NewBuilder(self.config_obj)
	for _, name := range []string{"a.yaml", "b.yaml", "c.yaml"} {
		_, err := builder.LoadYaml(data, name)
		require.NoError(self.T(), err)
	}

	assert.Equal(self.T(), 0, len(builder.definitions))
	assert.Equal(self.T(), 3, len(builder.duplicates["macos:application:entry"]))

	_, err := builder.Build()
	require.Error(self.T(), err)

	load_err, ok := err.(*LoadError)
	require.True(self.T(), ok)
	assert.Equal(self.T(), 2, len(load_err.Errors))
}

func (self *RegistryTestSuite) TestRejectPolicy() {
	builder := NewBuilder(self.config_obj)
	_, err := builder.LoadFile("test_data/malformed/shapes.yaml")
	assert.ErrorIs(self.T(), err, ErrMalformedDefinition)
	assert.Contains(self.T(), err.Error(), "test:basic_list")

	registry, err := builder.Build()
	assert.Nil(self.T(), registry)
	assert.ErrorIs(self.T(), err, ErrMalformedDefinition)
}

func (self *RegistryTestSuite) TestSkipPolicy() {
	self.config_obj.OnError = config.ON_ERROR_SKIP

	builder := NewBuilder(self.config_obj)
	count, err := builder.LoadFile("test_data/malformed/shapes.yaml")
	require.NoError(self.T(), err)
	assert.Equal(self.T(), 1, count)

	registry, err := builder.Build()
	require.NoError(self.T(), err)
	assert.Equal(self.T(), []string{"test:good"}, registry.List())

	vtesting.MemoryLogsContain(self.T(), "Skipping: MalformedDefinition: test:basic_list")
	vtesting.MemoryLogsContain(self.T(), "Skipping: MalformedDefinition: test:conditional_string")
	vtesting.MemoryLogsContain(self.T(), "Skipping: MalformedDefinition: test:bad_type")
}

func (self *RegistryTestSuite) TestSkipPolicyMissingFile() {
	self.config_obj.OnError = config.ON_ERROR_SKIP

	builder := NewBuilder(self.config_obj)
	_, err := builder.LoadFile("test_data/no_such_file.yaml")
	require.NoError(self.T(), err)

	registry, err := builder.Build()
	require.NoError(self.T(), err)
	assert.Equal(self.T(), 0, registry.Len())
}

func (self *RegistryTestSuite) TestStrictPlaceholders() {
	self.config_obj.CommonFields = []string{"filename"}
	self.config_obj.Fields = map[string][]string{
		"macos:application:entry": {"application"},
	}

	// Not strict: the unknown placeholder is only a warning.
	registry := self.loadRegistry("test_data/definitions")
	assert.Equal(self.T(), 4, registry.Len())
	vtesting.MemoryLogsContain(self.T(),
		`UnknownPlaceholder: macos:application:entry: message references undeclared field \{app_version\}`)

	self.config_obj.StrictPlaceholders = true
	builder := NewBuilder(self.config_obj)
	_, err := builder.LoadDirectory("test_data/definitions")
	require.NoError(self.T(), err)

	registry, err = builder.Build()
	assert.Nil(self.T(), registry)
	assert.ErrorIs(self.T(), err, ErrUnknownPlaceholder)
}

func (self *RegistryTestSuite) TestConcurrentLookup() {
	registry := self.loadRegistry("test_data/definitions")

	wg := &sync.WaitGroup{}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, name := range registry.List() {
				_, err := registry.Lookup(name)
				assert.NoError(self.T(), err)
			}
		}()
	}
	wg.Wait()
}

func (self *RegistryTestSuite) loadRegistry(dirname string) *Registry {
	builder := NewBuilder(self.config_obj)
	_, err := builder.LoadDirectory(dirname)
	require.NoError(self.T(), err)

	registry, err := builder.Build()
	require.NoError(self.T(), err)
	return registry
}

func TestRegistry(t *testing.T) {
	suite.Run(t, &RegistryTestSuite{})
}
