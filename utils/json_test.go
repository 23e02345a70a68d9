package utils

import (
	"strings"
	"testing"

	"github.com/Velocidex/ordereddict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadJsonlToDicts(t *testing.T) {
	input := `{"data_type": "a", "x": 1}

{"data_type": "b"}
{"data_type": "c"}`

	var types []string
	var lines []int
	err := ReadJsonlToDicts(strings.NewReader(input),
		func(line int, row *ordereddict.Dict) error {
			data_type, _ := row.GetString("data_type")
			types = append(types, data_type)
			lines = append(lines, line)
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, types)
	assert.Equal(t, []int{1, 3, 4}, lines)
}

func TestReadJsonlInvalid(t *testing.T) {
	err := ReadJsonlToDicts(strings.NewReader("{\"a\": 1}\n{bad\n"),
		func(line int, row *ordereddict.Dict) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestElide(t *testing.T) {
	assert.Equal(t, "hello", Elide("hello", 10))
	assert.Equal(t, "hello", Elide("hello", 5))
	assert.Equal(t, "he...", Elide("hello world", 5))
	assert.Equal(t, "hello world", Elide("hello world", 0))
}

func TestIsNil(t *testing.T) {
	var ptr *ordereddict.Dict
	assert.True(t, IsNil(nil))
	assert.True(t, IsNil(ptr))
	assert.False(t, IsNil(0))
	assert.False(t, IsNil(""))
}
