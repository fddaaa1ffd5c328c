// internal/workers/infrastructure/validate-subscription/models.go
package validatesubscription

type Input struct {
	DeveloperID string `json:"developerId"`
	Operation   string `json:"operation,omitempty"`
}

// Output represents the output data after subscription validation
type Output struct {
	IsValid      bool   `json:"isValid"`
	Plan         string `json:"plan"`
	ProjectQuota int    `json:"projectQuota,omitempty"`
}

// Subscription represents a developer subscription record
type Subscription struct {
	DeveloperID  string `json:"developerId"`
	Plan         string `json:"plan"`
	ValidUntil   string `json:"validUntil"`
	IsActive     bool   `json:"isActive"`
	ProjectQuota int    `json:"projectQuota"`
}
