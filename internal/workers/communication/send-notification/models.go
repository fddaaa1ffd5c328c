// internal/workers/communication/send-notification/models.go
package sendnotification

type Input struct {
	NotificationType string                 `json:"notificationType"`
	Channel          string                 `json:"channel"`
	RecipientID      string                 `json:"recipientId"`
	RecipientType    string                 `json:"recipientType"`
	RecipientEmail   string                 `json:"recipientEmail,omitempty"`
	RecipientPhone   string                 `json:"recipientPhone,omitempty"`
	Payload          map[string]interface{} `json:"payload,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"`
	Channel        string `json:"channel"`
	SentAt         string `json:"sentAt,omitempty"`
}
