// internal/common/validation/schema_test.go
package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"type": "object",
	"required": ["id"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"rate": {"type": "number", "minimum": 0}
	}
}`

func TestValidateAgainstSchema_ValidDocument(t *testing.T) {
	doc := map[string]interface{}{"id": "p-001", "rate": 85.0}

	result, err := ValidateAgainstSchema(doc, testSchema)

	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidateAgainstSchema_InvalidDocument(t *testing.T) {
	doc := map[string]interface{}{"rate": -5.0}

	result, err := ValidateAgainstSchema(doc, testSchema)

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Len(t, result.Errors, 2)

	messages := result.GetErrorMessages()
	require.Len(t, messages, 2)
	assert.NotEmpty(t, messages[0])
}

func TestValidateAgainstSchema_RawJSONString(t *testing.T) {
	result, err := ValidateAgainstSchema(`{"id": "p-001"}`, testSchema)

	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("ada@example.com"))
	assert.True(t, ValidateEmail("first.last+tag@sub.example.co"))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail("missing@tld"))
	assert.False(t, ValidateEmail(""))
}

func TestValidatePhone(t *testing.T) {
	assert.True(t, ValidatePhone("+49 170 1234567"))
	assert.True(t, ValidatePhone("(030) 123-45678"))
	assert.False(t, ValidatePhone("12345"))
	assert.False(t, ValidatePhone("call me"))
}
