package config

import (
	"fmt"
	"os"

	"github.com/Velocidex/yaml/v2"
	"github.com/go-errors/errors"
	"www.velocidex.com/golang/eventfmt/logging"
)

// A hard error causes the loader to stop immediately.
type HardError struct {
	Err error
}

func (self HardError) Error() string {
	return self.Err.Error()
}

func (self HardError) Unwrap() error {
	return self.Err
}

type loaderFunction struct {
	name        string
	loader_func func(self *Loader) (*Config, error)
}

type validatorFunction struct {
	name      string
	validator func(self *Loader, config_obj *Config) error
}

type Loader struct {
	verbose          bool
	required_logging bool
	log_file         string

	loaders    []loaderFunction
	validators []validatorFunction

	logger *logging.LogContext
}

func (self *Loader) WithVerbose(verbose bool) *Loader {
	self = self.Copy()
	self.verbose = verbose
	return self
}

// Overrides the log file in the config.
func (self *Loader) WithLogFile(filename string) *Loader {
	self = self.Copy()
	self.log_file = filename
	return self
}

// If this is set a broken logging configuration is an error. Without
// this logging falls back to stderr only.
func (self *Loader) WithRequiredLogging() *Loader {
	self = self.Copy()
	self.required_logging = true
	return self
}

func (self *Loader) WithCustomValidator(
	name string, validator func(config_obj *Config) error) *Loader {
	self = self.Copy()
	self.validators = append(self.validators, validatorFunction{
		name: name,
		validator: func(self *Loader, config_obj *Config) error {
			return validator(config_obj)
		}})
	return self
}

// Extra definition directories given on the command line are added to
// the ones in the config file.
func (self *Loader) WithDefinitionDirectories(dirs []string) *Loader {
	if len(dirs) == 0 {
		return self
	}

	self = self.Copy()
	self.validators = append(self.validators, validatorFunction{
		name: "WithDefinitionDirectories",
		validator: func(self *Loader, config_obj *Config) error {
			for _, dir := range dirs {
				self.Log("Adding definition directory %v", dir)
				config_obj.Formatters.DefinitionDirectories = append(
					config_obj.Formatters.DefinitionDirectories, dir)
			}
			return nil
		}})
	return self
}

func (self *Loader) WithNullLoader() *Loader {
	self = self.Copy()
	self.loaders = append(self.loaders, loaderFunction{
		name: "WithNullLoader",
		loader_func: func(self *Loader) (*Config, error) {
			self.Log("Setting empty config")
			return &Config{}, nil
		}})
	return self
}

func (self *Loader) WithFileLoader(filename string) *Loader {
	if filename != "" {
		self = self.Copy()
		self.loaders = append(self.loaders, loaderFunction{
			name: "WithFileLoader",
			loader_func: func(self *Loader) (*Config, error) {
				self.Log("Loading config from file %v", filename)
				result, err := read_config_from_file(filename)
				if err != nil {
					// If a filename is specified but it
					// does not exist or invalid stop
					// searching immediately.
					return result, HardError{err}
				}
				return result, nil
			}})
	}

	return self
}

func (self *Loader) WithLiteralLoader(serialized []byte) *Loader {
	if len(serialized) > 0 {
		self = self.Copy()
		self.loaders = append(self.loaders, loaderFunction{
			name: "WithLiteralLoader",
			loader_func: func(self *Loader) (*Config, error) {
				self.Log("Loading constant config")
				result := &Config{}
				err := yaml.UnmarshalStrict(serialized, result)
				if err != nil {
					return nil, HardError{errors.Wrap(err, 0)}
				}
				return result, nil
			}})
	}
	return self
}

func (self *Loader) WithEnvLoader(env_var string) *Loader {
	self = self.Copy()
	self.loaders = append(self.loaders, loaderFunction{
		name: "WithEnvLoader",
		loader_func: func(self *Loader) (*Config, error) {
			env_config := os.Getenv(env_var)
			if env_config != "" {
				self.Log("Loading config from env %v (%v)", env_var, env_config)
				result, err := read_config_from_file(env_config)
				if err != nil {
					return nil, HardError{err}
				}
				return result, nil
			}
			return nil, fmt.Errorf("Env var %v is not set", env_var)
		}})

	return self
}

func (self *Loader) Copy() *Loader {
	return &Loader{
		verbose:          self.verbose,
		required_logging: self.required_logging,
		log_file:         self.log_file,
		logger:           self.logger,
		loaders:          append([]loaderFunction{}, self.loaders...),
		validators:       append([]validatorFunction{}, self.validators...),
	}
}

func (self *Loader) Log(format string, v ...interface{}) {
	if self.logger == nil {
		logging.Prelog(format, v...)
	} else {
		self.logger.Info(format, v...)
	}
}

func (self *Loader) Validate(config_obj *Config) error {
	config_obj.Verbose = self.verbose

	err := ValidateConfig(config_obj)
	if err != nil {
		return err
	}

	if self.log_file != "" {
		config_obj.Logging.OutputFile = self.log_file
	}

	level := config_obj.Logging.Level
	if self.verbose {
		level = "debug"
	}

	// Initialize the logging and dump early messages into the
	// correct log destination.
	err = logging.InitLogging(level, config_obj.Logging.OutputFile)
	if err != nil && self.required_logging {
		return err
	}

	// Set the logger for the rest of the loading process.
	self.logger = logging.GetLogger(&logging.ToolComponent)

	for _, validator := range self.validators {
		err = validator.validator(self, config_obj)
		if err != nil {
			self.Log("%v: %v", validator.name, err)
			return err
		}
	}

	return nil
}

func (self *Loader) LoadAndValidate() (*Config, error) {
	for _, loader := range self.loaders {
		result, err := loader.loader_func(self)
		if err == nil {
			return result, self.Validate(result)
		}

		// Stop on hard errors.
		_, ok := err.(HardError)
		if ok {
			return nil, err
		}
		self.Log("%v", err)
	}
	return nil, errors.New("Unable to load config from any source.")
}

func read_config_from_file(filename string) (*Config, error) {
	result := &Config{}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	err = yaml.UnmarshalStrict(data, result)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	return result, nil
}
