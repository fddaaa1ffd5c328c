// internal/models/project.go
package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type ProjectStatus string

const (
	ProjectStatusDraft      ProjectStatus = "DRAFT"
	ProjectStatusActive     ProjectStatus = "ACTIVE"
	ProjectStatusSubmitted  ProjectStatus = "SUBMITTED"
	ProjectStatusRegistered ProjectStatus = "REGISTERED"
	ProjectStatusRejected   ProjectStatus = "REJECTED"
)

// Project is a renewable energy project tracked by the platform.
type Project struct {
	ID                         string        `json:"id" db:"id"`
	DeveloperID                string        `json:"developerId" db:"developer_id"`
	Name                       string        `json:"name" db:"name"`
	Technology                 string        `json:"technology" db:"technology"`
	Country                    string        `json:"country" db:"country"`
	CapacityMW                 float64       `json:"capacityMw" db:"capacity_mw"`
	CommissioningDate          string        `json:"commissioningDate,omitempty" db:"commissioning_date"`
	OfftakeType                string        `json:"offtakeType,omitempty" db:"offtake_type"`
	OfftakerType               string        `json:"offtakerType,omitempty" db:"offtaker_type"`
	AdditionalityJustification string        `json:"additionalityJustification,omitempty" db:"additionality_justification"`
	Status                     ProjectStatus `json:"status" db:"status"`
	EligibilityScore           *int          `json:"eligibilityScore,omitempty" db:"eligibility_score"`
	CreatedAt                  time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt                  time.Time     `json:"updatedAt" db:"updated_at"`
}

// Validate checks structural invariants before the project is persisted.
func (p Project) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ID, validation.Required, is.UUIDv4),
		validation.Field(&p.DeveloperID, validation.Required),
		validation.Field(&p.Name, validation.Required, validation.Length(3, 200)),
		validation.Field(&p.Technology, validation.Required,
			validation.In("SOLAR", "WIND", "HYDRO", "BIOMASS", "GEOTHERMAL")),
		validation.Field(&p.Country, validation.Required, is.CountryCode2),
		validation.Field(&p.CapacityMW, validation.Min(0.0)),
		validation.Field(&p.Status, validation.Required,
			validation.In(ProjectStatusDraft, ProjectStatusActive, ProjectStatusSubmitted,
				ProjectStatusRegistered, ProjectStatusRejected)),
	)
}
