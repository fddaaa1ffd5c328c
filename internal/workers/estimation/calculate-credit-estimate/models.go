// internal/workers/estimation/calculate-credit-estimate/models.go
package calculatecreditestimate

type Input struct {
	ProjectID         string  `json:"projectId,omitempty"`
	CapacityMW        float64 `json:"capacityMw"`
	Technology        string  `json:"technology"`
	Country           string  `json:"country,omitempty"`
	ConfidenceLevel   string  `json:"confidenceLevel,omitempty"`
	HardFailTriggered bool    `json:"hardFailTriggered,omitempty"`
}

// Output is the indicative credit volume and revenue band for a project.
// Figures are pre-registration estimates, not issuance guarantees.
type Output struct {
	AnnualGenerationMWh float64     `json:"annualGenerationMwh"`
	AnnualCredits       int         `json:"annualCredits"`
	RevenueEstimate     RevenueBand `json:"revenueEstimate"`
	Assumptions         Assumptions `json:"assumptions"`
}

type RevenueBand struct {
	LowEUR  float64 `json:"lowEur"`
	HighEUR float64 `json:"highEur"`
}

type Assumptions struct {
	CapacityFactor     float64 `json:"capacityFactor"`
	EmissionFactor     float64 `json:"emissionFactorTCO2PerMwh"`
	PriceLowEURPerTon  float64 `json:"priceLowEurPerTon"`
	PriceHighEURPerTon float64 `json:"priceHighEurPerTon"`
}
