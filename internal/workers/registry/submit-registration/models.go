// internal/workers/registry/submit-registration/models.go
package submitregistration

type Input struct {
	ProjectID                  string   `json:"projectId"`
	ProjectName                string   `json:"projectName"`
	Technology                 string   `json:"technology"`
	Country                    string   `json:"country"`
	CapacityMW                 float64  `json:"capacityMw"`
	CommissioningDate          string   `json:"commissioningDate,omitempty"`
	AdditionalityJustification string   `json:"additionalityJustification"`
	EligibilityScore           *int     `json:"confidenceScore,omitempty"`
	HardFailTriggered          bool     `json:"hardFailTriggered"`
	SupportingDocuments        []string `json:"supportingDocuments,omitempty"`
}

type Output struct {
	SubmissionID string `json:"submissionId"`
	Registry     string `json:"registry"`
	SubmittedAt  string `json:"submittedAt"`
}
