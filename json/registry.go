package json

import (
	"reflect"
	"sync"

	"github.com/Velocidex/json"
)

var (
	mu sync.Mutex

	// Encoders in registration order, at most one per type.
	encoders []*typeEncoder
)

type typeEncoder struct {
	value_type reflect.Type
	sample     interface{}
	cb         json.EncoderCallback
}

// Installs cb as the encoder for values of the same type as
// sample. Registering a type again replaces its encoder so the
// defaults installed by this package can be overridden from an
// init() function.
func RegisterCustomEncoder(sample interface{}, cb json.EncoderCallback) {
	mu.Lock()
	defer mu.Unlock()

	value_type := reflect.TypeOf(sample)
	for _, encoder := range encoders {
		if encoder.value_type == value_type {
			encoder.sample = sample
			encoder.cb = cb
			return
		}
	}

	encoders = append(encoders, &typeEncoder{
		value_type: value_type,
		sample:     sample,
		cb:         cb,
	})
}

// Encoder options with all the registered encoders. A fresh set is
// built each time so later registrations are always seen.
func NewEncOpts() *json.EncOpts {
	mu.Lock()
	defer mu.Unlock()

	opts := json.NewEncOpts()
	for _, encoder := range encoders {
		opts.WithCallback(encoder.sample, encoder.cb)
	}
	return opts
}
