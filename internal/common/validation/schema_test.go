package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTaskTypeNaming(t *testing.T) {
	assert.NoError(t, ValidateTaskTypeNaming("evaluate-eligibility"))
	assert.NoError(t, ValidateTaskTypeNaming("search"))

	assert.Error(t, ValidateTaskTypeNaming("Evaluate_Eligibility"))
	assert.Error(t, ValidateTaskTypeNaming("evaluate--eligibility"))
	assert.Error(t, ValidateTaskTypeNaming("evaluate-eligibility-"))
	assert.Error(t, ValidateTaskTypeNaming(""))
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("dev@example.com"))
	assert.True(t, ValidateEmail("first.last+tag@sub.example.co"))

	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail("missing@tld"))
	assert.False(t, ValidateEmail(""))
}

func TestValidatePhone(t *testing.T) {
	assert.True(t, ValidatePhone("+49 170 1234567"))
	assert.True(t, ValidatePhone("0049 (170) 123-4567"))

	assert.False(t, ValidatePhone("12"))
	assert.False(t, ValidatePhone("call me maybe"))
}

func TestValidateURL(t *testing.T) {
	assert.True(t, ValidateURL("https://registry.verra.org/api/v2"))
	assert.True(t, ValidateURL("http://localhost:9200"))

	assert.False(t, ValidateURL("registry.verra.org"))
	assert.False(t, ValidateURL(""))
}

func TestGetSchemaFromJSON(t *testing.T) {
	schema, err := GetSchemaFromJSON(`{
		"type": "object",
		"required": ["projectId"],
		"properties": {
			"projectId": {"type": "string", "minLength": 1}
		}
	}`)
	require.NoError(t, err)

	result := ValidateInput(map[string]interface{}{"projectId": "proj-1"}, schema)
	assert.True(t, result.Valid)

	result = ValidateInput(map[string]interface{}{}, schema)
	require.False(t, result.Valid)
	assert.Equal(t, "REQUIRED_FIELD_MISSING", result.Errors[0].Code)
}
