// internal/models/mandate.go
package models

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// BuyerMandate captures a corporate buyer's standing purchase criteria.
// Projects matching a mandate are surfaced to the buyer's desk.
type BuyerMandate struct {
	ID                  string    `json:"id" db:"id"`
	BuyerID             string    `json:"buyerId" db:"buyer_id"`
	Technologies        []string  `json:"technologies" db:"technologies"`
	Countries           []string  `json:"countries,omitempty" db:"countries"`
	MinCapacityMW       float64   `json:"minCapacityMw,omitempty" db:"min_capacity_mw"`
	MaxCapacityMW       float64   `json:"maxCapacityMw,omitempty" db:"max_capacity_mw"`
	MinEligibilityScore int       `json:"minEligibilityScore" db:"min_eligibility_score"`
	PriceCeilingEUR     float64   `json:"priceCeilingEur,omitempty" db:"price_ceiling_eur"`
	Active              bool      `json:"active" db:"active"`
	CreatedAt           time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time `json:"updatedAt" db:"updated_at"`
}

func (m BuyerMandate) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ID, validation.Required),
		validation.Field(&m.BuyerID, validation.Required),
		validation.Field(&m.Technologies, validation.Required, validation.Length(1, 0)),
		validation.Field(&m.MinEligibilityScore, validation.Min(0), validation.Max(100)),
		validation.Field(&m.MinCapacityMW, validation.Min(0.0)),
		validation.Field(&m.MaxCapacityMW, validation.Min(0.0)),
	)
}

// Matches reports whether the project satisfies the mandate criteria.
// A zero MaxCapacityMW means no upper bound.
func (m BuyerMandate) Matches(p *Project) bool {
	if !m.Active {
		return false
	}
	if !containsFold(m.Technologies, p.Technology) {
		return false
	}
	if len(m.Countries) > 0 && !containsFold(m.Countries, p.Country) {
		return false
	}
	if p.CapacityMW < m.MinCapacityMW {
		return false
	}
	if m.MaxCapacityMW > 0 && p.CapacityMW > m.MaxCapacityMW {
		return false
	}
	if p.EligibilityScore == nil || *p.EligibilityScore < m.MinEligibilityScore {
		return false
	}
	return true
}

func containsFold(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.EqualFold(h, needle) {
			return true
		}
	}
	return false
}
