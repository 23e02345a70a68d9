package utils

import (
	"bufio"
	"bytes"
	"io"

	"github.com/Velocidex/ordereddict"
	errors "github.com/pkg/errors"
	"www.velocidex.com/golang/eventfmt/json"
)

// ReadJsonlToDicts reads newline delimited JSON objects. Blank lines
// are ignored. The callback receives the line number of each row.
func ReadJsonlToDicts(
	reader io.Reader, cb func(line int, row *ordereddict.Dict) error) error {
	buffered := bufio.NewReader(reader)
	line := 0
	for {
		data, err := buffered.ReadBytes('\n')
		if len(data) > 0 {
			line++
			data = bytes.TrimSpace(data)
			if len(data) > 0 {
				item := ordereddict.NewDict()
				parse_err := json.Unmarshal(data, item)
				if parse_err != nil {
					return errors.Wrapf(parse_err, "line %d", line)
				}

				cb_err := cb(line, item)
				if cb_err != nil {
					return cb_err
				}
			}
		}

		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return errors.WithStack(err)
		}
	}
}
