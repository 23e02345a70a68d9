package main

import (
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/olekukonko/tablewriter"
	"www.velocidex.com/golang/eventfmt/formatters"
	"www.velocidex.com/golang/eventfmt/utils"
)

var (
	list_command = app.Command("list", "List the loaded formatter definitions")
	list_regex   = list_command.Arg("regex", "Regex of data types to match.").String()
)

func listDefinitionsToTable(
	registry *formatters.Registry, re *regexp.Regexp, out io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Data Type", "Type", "Source", "Short Source", "Fields"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	for _, name := range registry.List() {
		if re != nil && !re.MatchString(name) {
			continue
		}

		definition, err := registry.Lookup(name)
		if err != nil {
			continue
		}

		var fields []string
		for _, named := range definition.Templates() {
			fields = append(fields, named.Template.Placeholders()...)
		}

		table.Append([]string{
			definition.DataType,
			string(definition.Type),
			definition.Source,
			definition.ShortSource,
			strings.Join(utils.Uniquify(fields), ", "),
		})
	}

	return table
}

func doList() error {
	_, registry, err := loadRegistry()
	if err != nil {
		return err
	}

	var re *regexp.Regexp
	if *list_regex != "" {
		re, err = regexp.Compile(*list_regex)
		if err != nil {
			return err
		}
	}

	listDefinitionsToTable(registry, re, os.Stdout).Render()
	return nil
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case list_command.FullCommand():
			FatalIfError(list_command, doList)

		default:
			return false
		}
		return true
	})
}
