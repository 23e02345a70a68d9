package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	errors "github.com/go-errors/errors"
	"www.velocidex.com/golang/eventfmt/config"
	"www.velocidex.com/golang/eventfmt/formatters"
	logging "www.velocidex.com/golang/eventfmt/logging"
)

var (
	verify             = app.Command("verify", "Verify a set of formatter definitions")
	verify_args        = verify.Arg("paths", "Paths to definition yaml files or directories").Required().Strings()
	verify_issues_only = verify.Flag("issues_only", "If set, we only emit warning and error messages").Bool()
)

// Expand directories into the yaml files they contain.
func collectDefinitionFiles(paths []string) ([]string, error) {
	var result []string
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("could not get absolute path for %v: %w", path, err)
		}

		err = filepath.Walk(abs,
			func(file_path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}

				if info.IsDir() {
					return nil
				}

				// Explicitly named files are always checked.
				ext := filepath.Ext(file_path)
				if file_path == abs || ext == ".yaml" || ext == ".yml" {
					result = append(result, file_path)
				}
				return nil
			})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(result)
	return result, nil
}

// Checks every definition in the files and reports all problems
// rather than stopping on the first one.
func verifyDefinitions(
	config_obj *config.FormattersConfig, paths []string) (
	map[string][]*formatters.AnalysisState, error) {
	logger := logging.GetLogger(&logging.ToolComponent)

	files, err := collectDefinitionFiles(paths)
	if err != nil {
		return nil, err
	}

	var ret error
	result := make(map[string][]*formatters.AnalysisState)
	by_data_type := make(map[string][]*formatters.AnalysisState)

	for _, filename := range files {
		data, err := os.ReadFile(filename)
		if err != nil {
			logger.Error("%v: %v", filename, err)
			ret = errors.New(err)
			continue
		}

		definitions, doc_errors, err := formatters.ParseYaml(data, filename)
		if err != nil {
			doc_errors = append(doc_errors, err)
		}

		for _, doc_err := range doc_errors {
			logger.Error("%v: %v", filename, doc_err)
			ret = errors.New(doc_err)
		}

		for _, definition := range definitions {
			state := formatters.VerifyDefinition(definition, config_obj)
			result[filename] = append(result[filename], state)
			by_data_type[definition.DataType] = append(
				by_data_type[definition.DataType], state)
		}
	}

	for data_type, states := range by_data_type {
		if len(states) < 2 {
			continue
		}
		for _, state := range states {
			state.SetError(fmt.Errorf(
				"%w: %v: data_type is defined %v times",
				formatters.ErrMalformedDefinition, data_type, len(states)))
		}
	}

	for _, filename := range files {
		for _, state := range result[filename] {
			if state.OK() && !*verify_issues_only {
				logger.Info("Verified %v %v: OK", filename, state.DataType)
			}
			for _, msg := range state.Errors {
				logger.Error("%v: %v", filename, msg)
				ret = errors.New(msg)
			}
			for _, msg := range state.Warnings {
				logger.Warn("%v: %v", filename, msg)
			}
		}
	}

	return result, ret
}

func doVerify() error {
	config_obj, err := makeDefaultConfigLoader().
		WithNullLoader().LoadAndValidate()
	if err != nil {
		return fmt.Errorf("Unable to create config: %w", err)
	}

	_, err = verifyDefinitions(config_obj.Formatters, *verify_args)
	return err
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case verify.FullCommand():
			FatalIfError(verify, doVerify)

		default:
			return false
		}
		return true
	})
}
