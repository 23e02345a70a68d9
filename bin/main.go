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
package main

import (
	"os"

	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/eventfmt/constants"
	"www.velocidex.com/golang/eventfmt/logging"
)

type CommandHandler func(command string) bool

var (
	app = kingpin.New("eventfmt",
		"Render forensic event records into timeline messages.")

	config_path = app.Flag("config", "The configuration file.").Short('c').
			Envar(constants.EVENTFMT_CONFIG).String()

	definitions_flag = app.Flag(
		"definitions", "A directory containing formatter definitions").Strings()

	verbose_flag = app.Flag(
		"verbose", "Enabled verbose logging.").Short('v').
		Default("false").Bool()

	log_file_flag = app.Flag(
		"log_file", "Also write logs to this file.").String()

	quiet_flag = app.Flag(
		"quiet", "Do not log to the console.").Short('q').Bool()

	command_handlers []CommandHandler
)

func main() {
	app.HelpFlag.Short('h')
	app.UsageTemplate(kingpin.CompactUsageTemplate)

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// The log file still receives all messages.
	if *quiet_flag {
		logging.DisableLogging()
	}

	for _, command_handler := range command_handlers {
		if command_handler(command) {
			break
		}
	}
}
