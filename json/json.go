// Wrap json library to control encoding.

package json

import (
	"bytes"
	"time"

	"github.com/Velocidex/json"
	"github.com/Velocidex/ordereddict"
)

type EncOpts = json.EncOpts

// Dicts are encoded in insertion order using the same options for
// nested values.
func MarshalJSONDict(v interface{}, opts *json.EncOpts) ([]byte, error) {
	self, ok := v.(*ordereddict.Dict)
	if !ok || self == nil {
		return nil, json.EncoderCallbackSkip
	}

	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	first := true
	for _, k := range self.Keys() {
		k_escaped, err := json.MarshalWithOptions(k, opts)
		if err != nil {
			continue
		}

		if !first {
			buf.WriteByte(',')
		}
		first = false

		buf.Write(k_escaped)
		buf.WriteByte(':')

		value, _ := self.Get(k)
		v_bytes, err := json.MarshalWithOptions(value, opts)
		if err != nil {
			buf.WriteString("null")
			continue
		}
		buf.Write(v_bytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Times are always emitted in UTC so output does not depend on the
// local timezone of the machine.
func MarshalTime(v interface{}, opts *json.EncOpts) ([]byte, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().MarshalJSON()

	case *time.Time:
		if t == nil {
			return []byte("null"), nil
		}
		return t.UTC().MarshalJSON()
	}
	return nil, json.EncoderCallbackSkip
}

func init() {
	RegisterCustomEncoder(ordereddict.NewDict(), MarshalJSONDict)
	RegisterCustomEncoder(time.Time{}, MarshalTime)
	RegisterCustomEncoder(&time.Time{}, MarshalTime)
}
