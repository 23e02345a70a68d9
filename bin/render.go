/*
Velociraptor - Dig Deeper
Copyright (C) 2019-2025 Rapid7 Inc.

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
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/Velocidex/ordereddict"
	errors "github.com/pkg/errors"
	"www.velocidex.com/golang/eventfmt/json"
	logging "www.velocidex.com/golang/eventfmt/logging"
	"www.velocidex.com/golang/eventfmt/renderer"
	"www.velocidex.com/golang/eventfmt/utils"
)

var (
	render_command = app.Command("render", "Render JSONL event records into messages")
	render_args    = render_command.Arg("events", "JSONL files with one event per line (default stdin)").Strings()
	render_output  = render_command.Flag("output", "Write rows to this file instead of stdout").String()
)

// Each event is rendered independently. An event which can not be
// rendered is logged and skipped.
func renderEvents(
	formatter *renderer.Formatter, reader io.Reader, out io.Writer) (int, error) {
	logger := logging.GetLogger(&logging.ToolComponent)

	count := 0
	err := utils.ReadJsonlToDicts(reader,
		func(line int, event *ordereddict.Dict) error {
			message, err := formatter.FormatEvent(event)
			if err != nil {
				logger.Error("line %v: %v", line, err)
				return nil
			}

			serialized, err := json.MarshalJsonLine(message.ToDict())
			if err != nil {
				return err
			}

			_, err = out.Write(serialized)
			if err != nil {
				return errors.WithStack(err)
			}
			count++
			return nil
		})
	return count, err
}

func doRender() error {
	config_obj, registry, err := loadRegistry()
	if err != nil {
		return err
	}

	out := bufio.NewWriter(os.Stdout)
	if *render_output != "" {
		fd, err := os.OpenFile(*render_output,
			os.O_TRUNC|os.O_WRONLY|os.O_CREATE, 0600)
		if err != nil {
			return fmt.Errorf("Unable to open output: %w", err)
		}
		defer fd.Close()
		out = bufio.NewWriter(fd)
	}
	defer out.Flush()

	formatter := renderer.NewFormatter(registry, config_obj.Formatters)
	logger := logging.GetLogger(&logging.ToolComponent)

	if len(*render_args) == 0 {
		_, err := renderEvents(formatter, os.Stdin, out)
		return err
	}

	for _, filename := range *render_args {
		fd, err := os.Open(filename)
		if err != nil {
			return errors.WithStack(err)
		}

		count, err := renderEvents(formatter, fd, out)
		fd.Close()
		if err != nil {
			return fmt.Errorf("%v: %w", filename, err)
		}
		logger.Info("Rendered %v events from %v", count, filename)
	}

	return nil
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case render_command.FullCommand():
			FatalIfError(render_command, doRender)

		default:
			return false
		}
		return true
	})
}
