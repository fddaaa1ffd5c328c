// internal/workers/marketplace/match-buyer-projects/models.go
package matchbuyerprojects

type Input struct {
	ProjectID string `json:"projectId"`
}

// MandateMatch is one buyer mandate the project qualifies for,
// scored by how closely the project fits the mandate criteria.
type MandateMatch struct {
	MandateID       string  `json:"mandateId"`
	BuyerID         string  `json:"buyerId"`
	MatchScore      int     `json:"matchScore"`
	PriceCeilingEUR float64 `json:"priceCeilingEur,omitempty"`
}

type Output struct {
	ProjectID  string         `json:"projectId"`
	Matches    []MandateMatch `json:"matches"`
	MatchCount int            `json:"matchCount"`
}
