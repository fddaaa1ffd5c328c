package sendnotification

import (
	"encoding/json"
	"testing"

	"carbon-workers/internal/common/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validVariables() map[string]interface{} {
	return map[string]interface{}{
		"notificationType": "evaluation_complete",
		"channel":          "email",
		"recipientId":      "dev-001",
		"recipientType":    "developer",
		"recipientEmail":   "dev@example.com",
		"payload": map[string]interface{}{
			"projectName": "Thar Desert Solar",
		},
	}
}

func TestInputSchema_ValidVariables(t *testing.T) {
	result := validation.ValidateInput(validVariables(), GetInputSchema())
	assert.True(t, result.Valid, "errors: %v", result.GetErrorMessages())
}

func TestInputSchema_AllowsProcessScopeVariables(t *testing.T) {
	vars := validVariables()
	vars["confidenceScore"] = float64(75)
	vars["projectId"] = "proj-123"

	result := validation.ValidateInput(vars, GetInputSchema())
	assert.True(t, result.Valid)
}

func TestInputSchema_MissingChannel(t *testing.T) {
	vars := validVariables()
	delete(vars, "channel")

	result := validation.ValidateInput(vars, GetInputSchema())
	require.False(t, result.Valid)
	assert.True(t, result.HasErrors("channel"))
}

func TestInputSchema_PayloadMustBeObject(t *testing.T) {
	vars := validVariables()
	vars["payload"] = "not an object"

	result := validation.ValidateInput(vars, GetInputSchema())
	require.False(t, result.Valid)
	assert.True(t, result.HasErrors("payload"))
}

func TestInputSchema_RecipientTypeEnum(t *testing.T) {
	vars := validVariables()
	vars["recipientType"] = "auditor"

	result := validation.ValidateInput(vars, GetInputSchema())
	require.False(t, result.Valid)
	assert.True(t, result.HasErrors("recipientType"))
}

func TestOutputSchema_MatchesHandlerOutput(t *testing.T) {
	out := Output{
		NotificationID: "ntf-abc",
		Status:         "sent",
		Channel:        "email",
		SentAt:         "2026-08-29T10:00:00Z",
	}

	data, err := json.Marshal(out)
	require.NoError(t, err)
	var asMap map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &asMap))

	result := validation.ValidateInput(asMap, GetOutputSchema())
	assert.True(t, result.Valid, "errors: %v", result.GetErrorMessages())
}
