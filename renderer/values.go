package renderer

import (
	"encoding/hex"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/Velocidex/ordereddict"
	"www.velocidex.com/golang/eventfmt/json"
	"www.velocidex.com/golang/eventfmt/utils"
)

// The field values of a single event. *ordereddict.Dict satisfies
// this interface.
type Fields interface {
	Get(name string) (interface{}, bool)
	Keys() []string
}

type MapFields map[string]interface{}

func (self MapFields) Get(name string) (interface{}, bool) {
	value, pres := self[name]
	return value, pres
}

func (self MapFields) Keys() []string {
	result := make([]string, 0, len(self))
	for k := range self {
		result = append(result, k)
	}
	return utils.Sort(result)
}

func NewDictFields(dict *ordereddict.Dict) Fields {
	if dict == nil {
		return MapFields{}
	}
	return dict
}

// Converts a field value into the string shown in a message. The
// result never depends on the locale or timezone of the machine:
// numbers use the Go literal syntax and times are shown in UTC.
func ToDisplayString(value interface{}) string {
	if utils.IsNil(value) {
		return ""
	}

	switch t := value.(type) {
	case string:
		return t

	case []byte:
		return hex.EncodeToString(t)

	case bool:
		return strconv.FormatBool(t)

	case int:
		return strconv.FormatInt(int64(t), 10)
	case int8:
		return strconv.FormatInt(int64(t), 10)
	case int16:
		return strconv.FormatInt(int64(t), 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)

	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint8:
		return strconv.FormatUint(uint64(t), 10)
	case uint16:
		return strconv.FormatUint(uint64(t), 10)
	case uint32:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)

	case float32:
		return formatFloat(float64(t), 32)
	case float64:
		return formatFloat(t, 64)

	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		return t.UTC().Format(time.RFC3339Nano)

	case *ordereddict.Dict:
		return json.MustMarshalString(t)

	case fmt.Stringer:
		return t.String()

	case error:
		return t.Error()
	}

	switch reflect.ValueOf(value).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct:
		serialized, err := json.Marshal(value)
		if err == nil {
			return string(serialized)
		}
	}

	return fmt.Sprintf("%v", value)
}

func formatFloat(value float64, bits int) string {
	// Very large or small numbers are clearer in exponent form.
	abs := math.Abs(value)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return strconv.FormatFloat(value, 'g', -1, bits)
	}
	return strconv.FormatFloat(value, 'f', -1, bits)
}

// A field is present when it has a value which displays as a non
// empty string. Empty collections are absent but zero and false are
// present.
func IsPresent(fields Fields, name string) bool {
	if utils.IsNil(fields) {
		return false
	}

	value, pres := fields.Get(name)
	if !pres || utils.IsNil(value) {
		return false
	}

	switch t := value.(type) {
	case *ordereddict.Dict:
		if t.Len() == 0 {
			return false
		}

	default:
		switch reflect.ValueOf(value).Kind() {
		case reflect.Slice, reflect.Array, reflect.Map:
			if reflect.ValueOf(value).Len() == 0 {
				return false
			}
		}
	}

	return ToDisplayString(value) != ""
}

func resolver(fields Fields) func(name string) string {
	return func(name string) string {
		if utils.IsNil(fields) {
			return ""
		}

		value, pres := fields.Get(name)
		if !pres {
			return ""
		}
		return ToDisplayString(value)
	}
}
