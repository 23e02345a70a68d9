package goldie

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"www.velocidex.com/golang/eventfmt/json"
)

func Assert(t *testing.T, filename string, golden []byte) {
	t.Helper()

	g := goldie.New(t)
	_ = g.WithFixtureDir("fixtures")
	g.Assert(t, filename, golden)
}

// Serializes golden with the project encoders so ordered dicts keep
// their key order in the fixture.
func AssertJson(t *testing.T, filename string, golden interface{}) {
	t.Helper()

	Assert(t, filename, json.MustMarshalIndent(golden))
}
