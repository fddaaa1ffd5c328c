// internal/workers/project/create-project-record/models.go
package createprojectrecord

type Input struct {
	DeveloperID                string  `json:"developerId"`
	Name                       string  `json:"name"`
	Technology                 string  `json:"technology"`
	Country                    string  `json:"country"`
	CapacityMW                 float64 `json:"capacityMw,omitempty"`
	CommissioningDate          string  `json:"commissioningDate,omitempty"`
	OfftakeType                string  `json:"offtakeType,omitempty"`
	OfftakerType               string  `json:"offtakerType,omitempty"`
	AdditionalityJustification string  `json:"additionalityJustification,omitempty"`
	EligibilityScore           *int    `json:"confidenceScore,omitempty"`
}

type Output struct {
	ProjectID string `json:"projectId"`
	Status    string `json:"projectStatus"`
	CreatedAt string `json:"createdAt"`
}
