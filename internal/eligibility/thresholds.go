package eligibility

// Business parameters for the rule set. Values mirror the brokerage's current
// registration guidance; tests pin them down, so a change here is a deliberate
// policy change, not a refactor.
const (
	// minJustificationChars is the floor below which a provided additionality
	// justification is considered a non-answer and disqualifies the project.
	// Absent text is not disqualifying; it surfaces as a risk warning instead.
	minJustificationChars = 120

	// substantiveJustificationChars is the length at which a justification
	// starts counting as a positive signal.
	substantiveJustificationChars = 250

	// longPPAYears is the tenor from which a PPA is considered long-term
	// enough to de-risk the revenue model.
	longPPAYears = 10.0

	// graceWindowYears is the post-commissioning window registries accept for
	// documenting registration intent.
	graceWindowYears = 2

	// Confidence score bands. score >= high -> HIGH, >= medium -> MEDIUM.
	scoreBandHigh   = 70
	scoreBandMedium = 40
)

// Soft-signal weights. Relative magnitude encodes how much each factor moves
// registry outcomes: a formal PPA and a clear Article 6 position dominate,
// carbon-revenue materiality is a minor corroborating signal. Weights sum to
// 100 for readability only; scoring normalises by the actual total.
const (
	weightFormalPPA       = 20
	weightLongPPA         = 10
	weightNonMerchant     = 10
	weightArticle6Clear   = 20
	weightStableOfftaker  = 10
	weightEarlyIntent     = 15
	weightSubstantiveJust = 10
	weightCarbonRevenue   = 5
)
