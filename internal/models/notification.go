// internal/models/notification.go
package models

// NotificationTemplate is a versioned message template. Subject and bodies
// are Go text templates rendered against the job payload.
type NotificationTemplate struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	HTMLBody string `json:"htmlBody,omitempty"`
	Version  string `json:"version"`
}
