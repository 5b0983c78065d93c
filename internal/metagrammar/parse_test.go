package metagrammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_AcceptsChainedProductions(t *testing.T) {
	assert := assert.New(t)

	src := "top: foo;\nfoo: bar;\nbar: baz;\n"
	_, err := Parse(src, nil)
	assert.NoError(err)
}

func TestParse_AcceptsConditionAndSpecifiers(t *testing.T) {
	assert := assert.New(t)

	src := "top @feature (+other): foo;\nfoo: bar;\n"
	_, err := Parse(src, nil)
	assert.NoError(err)
}

func TestParse_RejectsMissingSemicolon(t *testing.T) {
	assert := assert.New(t)

	src := "top: foo\n"
	_, err := Parse(src, nil)
	assert.Error(err, "a production body with no terminating semicolon must not parse")
}

func TestParse_RejectsMissingColon(t *testing.T) {
	assert := assert.New(t)

	src := "top foo;\n"
	_, err := Parse(src, nil)
	assert.Error(err, "a production header with no colon must not parse")
}
