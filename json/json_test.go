package json

import (
	"reflect"
	"testing"
	"time"

	"github.com/Velocidex/ordereddict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictKeepsOrder(t *testing.T) {
	row := ordereddict.NewDict().
		Set("z", 1).
		Set("a", "two").
		Set("m", ordereddict.NewDict().Set("y", true).Set("b", nil))

	serialized, err := Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":"two","m":{"y":true,"b":null}}`,
		string(serialized))
}

func TestTimeIsUTC(t *testing.T) {
	zone := time.FixedZone("AEST", 10*60*60)
	ts := time.Date(2020, 1, 2, 13, 4, 5, 0, zone)

	serialized, err := Marshal(ordereddict.NewDict().Set("ts", ts))
	require.NoError(t, err)
	assert.Equal(t, `{"ts":"2020-01-02T03:04:05Z"}`, string(serialized))
}

func TestJsonLine(t *testing.T) {
	serialized, err := MarshalJsonLine(ordereddict.NewDict().Set("a", 1))
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1}\n", string(serialized))
}

type testPoint struct {
	X, Y int
}

func TestRegisterCustomEncoderReplaces(t *testing.T) {
	RegisterCustomEncoder(testPoint{}, func(v interface{}, opts *EncOpts) ([]byte, error) {
		return []byte(`"first"`), nil
	})
	RegisterCustomEncoder(testPoint{}, func(v interface{}, opts *EncOpts) ([]byte, error) {
		point := v.(testPoint)
		return Marshal([]int{point.X, point.Y})
	})

	serialized, err := Marshal(ordereddict.NewDict().Set("p", testPoint{1, 2}))
	require.NoError(t, err)
	assert.Equal(t, `{"p":[1,2]}`, string(serialized))

	count := 0
	for _, encoder := range encoders {
		if encoder.value_type == reflect.TypeOf(testPoint{}) {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
