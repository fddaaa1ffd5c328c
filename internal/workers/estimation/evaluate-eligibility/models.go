// internal/workers/estimation/evaluate-eligibility/models.go
package evaluateeligibility

import "carbon-workers/internal/eligibility"

// Input carries either the draft data inline or a project ID to load the
// draft from storage. Inline data wins when both are present.
type Input struct {
	ProjectID   string                   `json:"projectId,omitempty"`
	ProjectData *eligibility.ProjectData `json:"projectData,omitempty"`
}

// Output is the eligibility verdict exposed to the workflow.
type Output struct {
	HardFailTriggered bool                         `json:"hardFailTriggered"`
	HardFailReasons   []eligibility.HardFailReason `json:"hardFailReasons"`
	SoftSignals       []eligibility.SoftSignal     `json:"softSignals"`
	RiskWarnings      []string                     `json:"riskWarnings"`
	ConfidenceScore   int                          `json:"confidenceScore"`
	ConfidenceLevel   eligibility.ConfidenceLevel  `json:"confidenceLevel"`
	Recommendation    string                       `json:"recommendation"`
}
