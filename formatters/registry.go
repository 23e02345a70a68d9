package formatters

/*
   Velociraptor - Hunting Evil
   Copyright (C) 2019 Velocidex Innovations.

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU Affero General Public License as published
   by the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU Affero General Public License for more details.

   You should have received a copy of the GNU Affero General Public License
   along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	errors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"www.velocidex.com/golang/eventfmt/config"
	"www.velocidex.com/golang/eventfmt/logging"
	"www.velocidex.com/golang/eventfmt/utils"
)

// Holds the formatter definitions keyed by data type. A Registry is
// only created by Builder.Build() and never changes afterwards so it
// may be shared between goroutines without locking.
type Registry struct {
	definitions map[string]*FormatterDefinition
	names       []string
}

// Returns a copy of the definition so callers can not modify the
// registry.
func (self *Registry) Lookup(data_type string) (*FormatterDefinition, error) {
	definition, pres := self.definitions[data_type]
	if !pres {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, data_type)
	}

	result := *definition
	return &result, nil
}

func (self *Registry) Get(data_type string) (*FormatterDefinition, bool) {
	result, err := self.Lookup(data_type)
	return result, err == nil
}

// Sorted data types.
func (self *Registry) List() []string {
	return append([]string{}, self.names...)
}

func (self *Registry) Len() int {
	return len(self.names)
}

// Collects definitions from YAML sources. Build() validates the
// collection as a whole and freezes it into a Registry.
type Builder struct {
	config_obj *config.FormattersConfig

	definitions map[string]*FormatterDefinition

	// Data types seen more than once. These are never registered.
	duplicates map[string][]*FormatterDefinition

	errors      []error
	loaded_dirs []string

	logger *logging.LogContext
}

func NewBuilder(config_obj *config.FormattersConfig) *Builder {
	if config_obj == nil {
		config_obj = config.GetDefaultConfig().Formatters
	}

	return &Builder{
		config_obj:  config_obj,
		definitions: make(map[string]*FormatterDefinition),
		duplicates:  make(map[string][]*FormatterDefinition),
		logger:      logging.GetLogger(&logging.FormatterComponent),
	}
}

func (self *Builder) skipErrors() bool {
	return self.config_obj.OnError == config.ON_ERROR_SKIP
}

// Apply the error policy to a malformed definition. Returns the error
// when the load must fail.
func (self *Builder) reject(err error, filename string) error {
	definitionsRejected.Inc()
	return self.fail(err, filename)
}

func (self *Builder) fail(err error, filename string) error {
	if self.skipErrors() {
		self.logger.WithFields(logrus.Fields{
			"filename": filename,
		}).Error("Skipping: %v", err)
		return nil
	}

	self.errors = append(self.errors, err)
	return err
}

// Load all the definition documents in data. Returns the number of
// definitions added.
func (self *Builder) LoadYaml(data []byte, filename string) (int, error) {
	definitions, doc_errors, err := ParseYaml(data, filename)
	for _, doc_err := range doc_errors {
		reject_err := self.reject(doc_err, filename)
		if reject_err != nil {
			return 0, reject_err
		}
	}

	count := 0
	for _, definition := range definitions {
		if self.AddDefinition(definition) == nil {
			count++
		}
	}

	// Syntax errors end the document stream so the definitions
	// before the error are still loaded under the skip policy.
	if err != nil {
		return count, self.reject(err, filename)
	}

	return count, nil
}

func (self *Builder) Load(reader io.Reader, filename string) (int, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return self.LoadYaml(data, filename)
}

func (self *Builder) LoadFile(filename string) (int, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return 0, self.fail(errors.WithStack(err), filename)
	}

	count, err := self.LoadYaml(data, filename)
	if err == nil {
		self.logger.Debug("Loaded %v definitions from %s", count, filename)
	}
	return count, err
}

// Load every .yaml or .yml file below dirname.
func (self *Builder) LoadDirectory(dirname string) (int, error) {
	dirname = filepath.Clean(dirname)
	if utils.InString(self.loaded_dirs, dirname) {
		return 0, nil
	}
	self.loaded_dirs = append(self.loaded_dirs, dirname)

	count := 0
	err := filepath.Walk(dirname,
		func(file_path string, info os.FileInfo, err error) error {
			if err != nil {
				return self.fail(errors.WithStack(err), file_path)
			}

			if info.IsDir() || !isYamlFile(info.Name()) {
				return nil
			}

			// Errors are already recorded by LoadFile and are
			// nil under the skip policy.
			n, err := self.LoadFile(file_path)
			count += n
			return err
		})

	return count, err
}

// Adds a single definition. A repeated data type removes every
// definition with that key.
func (self *Builder) AddDefinition(definition *FormatterDefinition) error {
	err := definition.Validate()
	if err != nil {
		return self.reject(err, definition.Filename)
	}

	data_type := definition.DataType
	previous, pres := self.duplicates[data_type]
	if pres {
		self.duplicates[data_type] = append(previous, definition)
		return self.duplicateError(data_type)
	}

	existing, pres := self.definitions[data_type]
	if pres {
		delete(self.definitions, data_type)
		self.duplicates[data_type] = []*FormatterDefinition{existing, definition}
		return self.duplicateError(data_type)
	}

	self.definitions[data_type] = definition
	return nil
}

func (self *Builder) duplicateError(data_type string) error {
	var locations []string
	for _, definition := range self.duplicates[data_type] {
		locations = append(locations,
			strings.TrimSpace(location(definition.Filename, definition.Line)))
	}

	return malformed(data_type, "", 0, "data_type is defined more than once %v",
		strings.Join(locations, ", "))
}

// Checks the collection and freezes it. Duplicate data types always
// fail the build regardless of the error policy.
func (self *Builder) Build() (*Registry, error) {
	errs := append([]error{}, self.errors...)

	for _, data_type := range utils.Sort(duplicateKeys(self.duplicates)) {
		errs = append(errs, self.duplicateError(data_type))
	}

	names := make([]string, 0, len(self.definitions))
	for data_type := range self.definitions {
		names = append(names, data_type)
	}
	sort.Strings(names)

	for _, data_type := range names {
		state := VerifyDefinition(self.definitions[data_type], self.config_obj)
		for _, err := range state.UnknownPlaceholders {
			if self.config_obj.StrictPlaceholders {
				errs = append(errs, err)
				continue
			}
			self.logger.WithFields(logrus.Fields{
				"data_type": data_type,
			}).Warn("%v", err)
		}
	}

	if len(errs) > 0 {
		definitionsRejected.Add(float64(len(self.definitions)))
		return nil, &LoadError{Errors: errs}
	}

	result := &Registry{
		definitions: make(map[string]*FormatterDefinition, len(names)),
		names:       names,
	}
	for _, data_type := range names {
		result.definitions[data_type] = self.definitions[data_type]
	}

	definitionsLoaded.Add(float64(len(names)))
	self.logger.Info("Loaded %v formatter definitions", len(names))

	return result, nil
}

// Load a single stream of definition documents into a new registry.
func Load(reader io.Reader, config_obj *config.FormattersConfig) (*Registry, error) {
	builder := NewBuilder(config_obj)
	_, err := builder.Load(reader, "")
	if err != nil {
		return nil, err
	}
	return builder.Build()
}

// Load all the configured definition directories.
func LoadRegistry(config_obj *config.FormattersConfig) (*Registry, error) {
	builder := NewBuilder(config_obj)
	for _, dirname := range config_obj.DefinitionDirectories {
		_, err := builder.LoadDirectory(dirname)
		if err != nil {
			return nil, err
		}
	}
	return builder.Build()
}

func isYamlFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

func duplicateKeys(in map[string][]*FormatterDefinition) []string {
	result := make([]string, 0, len(in))
	for k := range in {
		result = append(result, k)
	}
	return result
}
