// internal/workers/communication/send-notification/validation.go
package sendnotification

import "carbon-workers/internal/common/validation"

// GetInputSchema describes the job variables this worker consumes. Zeebe
// passes the whole process-variable scope, so additional properties are
// allowed; only the fields this worker reads are checked.
func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"notificationType", "channel"},
		Properties: map[string]validation.Property{
			"notificationType": {
				Type:        "string",
				Description: "Template key, e.g. evaluation_complete",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(100),
			},
			"channel": {
				Type:        "string",
				Description: "Delivery channel (email or sms)",
				MinLength:   intPtr(1),
			},
			"recipientId": {
				Type:        "string",
				Description: "Platform ID of the recipient",
			},
			"recipientType": {
				Type:        "string",
				Description: "developer or buyer",
				Enum:        []string{"developer", "buyer"},
			},
			"recipientEmail": {
				Type:        "string",
				Description: "Recipient email address for the email channel",
				MaxLength:   intPtr(255),
			},
			"recipientPhone": {
				Type:        "string",
				Description: "Recipient phone number (E.164) for the sms channel",
				MaxLength:   intPtr(20),
			},
			"payload": {
				Type:        "object",
				Description: "Template variables",
			},
		},
		AdditionalProperties: true,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"notificationId": {
				Type:        "string",
				Description: "Unique notification identifier",
			},
			"status": {
				Type:        "string",
				Description: "Delivery status",
				Enum:        []string{"sent", "disabled"},
			},
			"channel": {
				Type:        "string",
				Description: "Channel the notification went out on",
			},
			"sentAt": {
				Type:        "string",
				Description: "Delivery timestamp (RFC3339)",
			},
		},
		AdditionalProperties: false,
	}
}

func intPtr(i int) *int {
	return &i
}
