package main

import (
	"fmt"

	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/eventfmt/config"
	"www.velocidex.com/golang/eventfmt/formatters"
	"www.velocidex.com/golang/eventfmt/logging"
)

func makeDefaultConfigLoader() *config.Loader {
	loader := new(config.Loader).
		WithVerbose(*verbose_flag).
		WithFileLoader(*config_path).
		WithLogFile(*log_file_flag).
		WithDefinitionDirectories(*definitions_flag)

	// A log file asked for on the command line must be writable.
	if *log_file_flag != "" {
		loader = loader.WithRequiredLogging()
	}
	return loader
}

// Loads the config and the registry from the configured definition
// directories.
func loadRegistry() (*config.Config, *formatters.Registry, error) {
	config_obj, err := makeDefaultConfigLoader().
		WithNullLoader().
		LoadAndValidate()
	if err != nil {
		return nil, nil, fmt.Errorf("Unable to load config: %w", err)
	}

	if len(config_obj.Formatters.DefinitionDirectories) == 0 {
		return nil, nil, fmt.Errorf(
			"No definition directories: use --definitions or the config file")
	}

	registry, err := formatters.LoadRegistry(config_obj.Formatters)
	if err != nil {
		return nil, nil, err
	}

	return config_obj, registry, nil
}

func FatalIfError(command *kingpin.CmdClause, cb func() error) {
	err := cb()
	if err != nil {
		logging.GetLogger(&logging.ToolComponent).Error("%v", err)
		kingpin.FatalIfError(err, command.FullCommand())
	}
}
