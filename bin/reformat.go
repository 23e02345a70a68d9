package main

import (
	"fmt"
	"os"

	"www.velocidex.com/golang/eventfmt/formatters"
	logging "www.velocidex.com/golang/eventfmt/logging"
)

var (
	reformat         = app.Command("reformat", "Rewrite definition files in canonical form")
	reformat_args    = reformat.Arg("paths", "Paths to definition yaml files or directories").Required().Strings()
	reformat_dry_run = reformat.Flag("dry_run", "Print the result instead of rewriting the files").Bool()
)

// Returns the canonical serialization of a definition file. Files
// with malformed definitions are not reformatted.
func reformatFile(filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	definitions, doc_errors, err := formatters.ParseYaml(data, filename)
	if err != nil {
		return nil, err
	}

	if len(doc_errors) > 0 {
		return nil, &formatters.LoadError{Errors: doc_errors}
	}

	return formatters.MarshalYaml(definitions)
}

func doReformat() error {
	_, err := makeDefaultConfigLoader().
		WithNullLoader().LoadAndValidate()
	if err != nil {
		return fmt.Errorf("loading config file: %w", err)
	}

	logger := logging.GetLogger(&logging.ToolComponent)

	files, err := collectDefinitionFiles(*reformat_args)
	if err != nil {
		return err
	}

	// Report all errors and keep going as much as possible.
	returned_errs := make(map[string]error)
	for _, filename := range files {
		serialized, err := reformatFile(filename)
		if err != nil {
			returned_errs[filename] = err
			continue
		}

		if *reformat_dry_run {
			fmt.Printf("# %v\n%s", filename, serialized)
			continue
		}

		err = os.WriteFile(filename, serialized, 0600)
		if err != nil {
			returned_errs[filename] = err
			continue
		}
		logger.Info("Reformatted %v", filename)
	}

	var ret error
	for filename, err := range returned_errs {
		logger.Error("%v: %v", filename, err)
		ret = fmt.Errorf("%v: %w", filename, err)
	}
	return ret
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case reformat.FullCommand():
			FatalIfError(reformat, doReformat)

		default:
			return false
		}
		return true
	})
}
