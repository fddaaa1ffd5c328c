// Package eligibility implements the carbon-credit eligibility evaluator used by
// the credit-estimation workflow. It combines hard-disqualification rules,
// weighted soft signals and advisory risk warnings into a single verdict.
//
// The evaluator is a pure function over its input: it performs no I/O, keeps no
// state between calls, and never returns an error regardless of how sparse or
// malformed the project data is. Unknown fields are treated as unknown, not as
// zero values.
package eligibility

import (
	"strings"
	"time"
)

type OfftakeType string

const (
	OfftakePPA        OfftakeType = "PPA"
	OfftakeCaptive    OfftakeType = "CAPTIVE"
	OfftakeOpenAccess OfftakeType = "OPEN_ACCESS"
	OfftakeMerchant   OfftakeType = "MERCHANT"
)

type OfftakerType string

const (
	OfftakerGovernment OfftakerType = "GOVERNMENT"
	OfftakerUtility    OfftakerType = "UTILITY"
	OfftakerPrivate    OfftakerType = "PRIVATE"
	OfftakerOther      OfftakerType = "OTHER"
)

type RegistrationIntent string

const (
	IntentBeforeCommissioning RegistrationIntent = "BEFORE_COMMISSIONING"
	IntentWithinTwoYears      RegistrationIntent = "WITHIN_2_YEARS"
	IntentAfterTwoYears       RegistrationIntent = "AFTER_2_YEARS"
	IntentNotDecided          RegistrationIntent = "NOT_DECIDED"
)

type Article6Status string

const (
	Article6Clear     Article6Status = "CLEAR"
	Article6Ambiguous Article6Status = "AMBIGUOUS"
	Article6HighRisk  Article6Status = "HIGH_RISK"
)

type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "HIGH"
	ConfidenceMedium ConfidenceLevel = "MEDIUM"
	ConfidenceLow    ConfidenceLevel = "LOW"
)

// ProjectData is the loosely-populated project record coming from the
// estimation wizard draft. Every field is optional; a nil pointer means the
// developer has not supplied the value yet, which is distinct from zero/false.
type ProjectData struct {
	InstalledCapacityDC        *float64            `json:"installedCapacityDC,omitempty"`
	InstalledCapacityAC        *float64            `json:"installedCapacityAC,omitempty"`
	InstalledCapacity          *float64            `json:"installedCapacity,omitempty"`
	PPADuration                *float64            `json:"ppaDuration,omitempty"`
	OfftakeType                *OfftakeType        `json:"offtakeType,omitempty"`
	CreditingPeriodStart       *string             `json:"creditingPeriodStart,omitempty"`
	CommissioningDate          *string             `json:"commissioningDate,omitempty"`
	OfftakerType               *OfftakerType       `json:"offtakerType,omitempty"`
	IsPolicyDriven             *bool               `json:"isPolicyDriven,omitempty"`
	IsMerchant                 *bool               `json:"isMerchant,omitempty"`
	CarbonRevenueMaterial      *bool               `json:"carbonRevenueMaterial,omitempty"`
	CarbonRegistrationIntent   *RegistrationIntent `json:"carbonRegistrationIntent,omitempty"`
	AdditionalityJustification *string             `json:"additionalityJustification,omitempty"`
	HostCountryArticle6Status  *Article6Status     `json:"hostCountryArticle6Status,omitempty"`
}

// HardFailReason reports one disqualification check. The full set is returned
// on every evaluation so the UI can render the complete checklist; only
// Triggered and Reason vary with the input.
type HardFailReason struct {
	ID        string `json:"id"`
	Condition string `json:"condition"`
	Triggered bool   `json:"triggered"`
	Reason    string `json:"reason,omitempty"`
}

// SoftSignal reports one positive indicator and its weight toward the
// confidence score.
type SoftSignal struct {
	ID      string `json:"id"`
	Signal  string `json:"signal"`
	Present bool   `json:"present"`
	Weight  int    `json:"weight"`
}

// Result is the full eligibility verdict.
type Result struct {
	HardFailTriggered bool             `json:"hardFailTriggered"`
	HardFailReasons   []HardFailReason `json:"hardFailReasons"`
	SoftSignals       []SoftSignal     `json:"softSignals"`
	RiskWarnings      []string         `json:"riskWarnings"`
	ConfidenceScore   int              `json:"confidenceScore"`
	ConfidenceLevel   ConfidenceLevel  `json:"confidenceLevel"`
	Recommendation    string           `json:"recommendation"`
}

// Evaluate runs the full rule set against the supplied project data using the
// current time as the reference for date-relative checks.
func Evaluate(data ProjectData) Result {
	return EvaluateAt(data, time.Now().UTC())
}

// EvaluateAt is Evaluate with an injectable reference time. Only the
// commissioning-age warning depends on it; everything else is a pure function
// of the input.
func EvaluateAt(data ProjectData, now time.Time) Result {
	n := normalize(data)

	reasons := evaluateHardFails(n)
	failed := false
	firstReason := ""
	for _, r := range reasons {
		if r.Triggered {
			failed = true
			if firstReason == "" {
				firstReason = r.Condition
			}
		}
	}

	// Soft signals are always computed so the UI can render the grid, but on a
	// hard fail they must not imply viability: the score is forced to zero.
	signals := evaluateSoftSignals(n)
	warnings := evaluateRiskWarnings(n, now)

	result := Result{
		HardFailTriggered: failed,
		HardFailReasons:   reasons,
		SoftSignals:       signals,
		RiskWarnings:      warnings,
	}

	if failed {
		result.ConfidenceScore = 0
		result.ConfidenceLevel = ConfidenceLow
		result.Recommendation = "Carbon credit registration is not currently advisable: " + firstReason + ". Resolve the disqualifying condition before proceeding."
		return result
	}

	result.ConfidenceScore = scoreSignals(signals)
	result.ConfidenceLevel = bandScore(result.ConfidenceScore)
	result.Recommendation = recommendationFor(result.ConfidenceLevel)
	return result
}

func scoreSignals(signals []SoftSignal) int {
	total := 0
	present := 0
	for _, s := range signals {
		total += s.Weight
		if s.Present {
			present += s.Weight
		}
	}
	if total == 0 {
		return 0
	}
	// round(100 * present/total)
	return (present*100 + total/2) / total
}

func bandScore(score int) ConfidenceLevel {
	switch {
	case score >= scoreBandHigh:
		return ConfidenceHigh
	case score >= scoreBandMedium:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func recommendationFor(level ConfidenceLevel) string {
	switch level {
	case ConfidenceHigh:
		return "Proceed with registration. Eligibility indicators are strong."
	case ConfidenceMedium:
		return "Proceed with caution. Address the flagged risks before submitting for validation."
	default:
		return "Further diligence recommended before committing to registration."
	}
}

// ---- normalization ----

// Each opt* pair keeps the "was this provided" bit alongside the value so rules
// never have to infer absence from a zero value.
type optFloat struct {
	value float64
	known bool
}

type optBool struct {
	value bool
	known bool
}

type optString struct {
	value string
	known bool
}

type optTime struct {
	value time.Time
	known bool
}

type normalized struct {
	capacityMW     optFloat
	ppaYears       optFloat
	offtake        optString
	offtaker       optString
	commissioning  optTime
	creditingStart optTime
	policyDriven   optBool
	merchant       optBool
	carbonRevenue  optBool
	intent         optString
	justification  optString
	article6       optString
}

func normalize(d ProjectData) normalized {
	var n normalized

	// Prefer the DC figure, then AC, then the unqualified nameplate value.
	// Absence stays absent; a missing capacity must never read as 0 MW.
	switch {
	case d.InstalledCapacityDC != nil:
		n.capacityMW = optFloat{*d.InstalledCapacityDC, true}
	case d.InstalledCapacityAC != nil:
		n.capacityMW = optFloat{*d.InstalledCapacityAC, true}
	case d.InstalledCapacity != nil:
		n.capacityMW = optFloat{*d.InstalledCapacity, true}
	}

	if d.PPADuration != nil {
		n.ppaYears = optFloat{*d.PPADuration, true}
	}
	if d.OfftakeType != nil && *d.OfftakeType != "" {
		n.offtake = optString{string(*d.OfftakeType), true}
	}
	if d.OfftakerType != nil && *d.OfftakerType != "" {
		n.offtaker = optString{string(*d.OfftakerType), true}
	}
	if d.IsPolicyDriven != nil {
		n.policyDriven = optBool{*d.IsPolicyDriven, true}
	}
	if d.IsMerchant != nil {
		n.merchant = optBool{*d.IsMerchant, true}
	}
	if d.CarbonRevenueMaterial != nil {
		n.carbonRevenue = optBool{*d.CarbonRevenueMaterial, true}
	}
	if d.CarbonRegistrationIntent != nil && *d.CarbonRegistrationIntent != "" {
		n.intent = optString{string(*d.CarbonRegistrationIntent), true}
	}
	if d.AdditionalityJustification != nil {
		if text := strings.TrimSpace(*d.AdditionalityJustification); text != "" {
			n.justification = optString{text, true}
		}
	}
	if d.HostCountryArticle6Status != nil && *d.HostCountryArticle6Status != "" {
		n.article6 = optString{string(*d.HostCountryArticle6Status), true}
	}

	n.commissioning = parseDate(d.CommissioningDate)
	n.creditingStart = parseDate(d.CreditingPeriodStart)

	return n
}

// dateLayouts covers the formats the wizard has historically produced.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// parseDate is lenient: an empty, missing or unparseable date resolves to
// unknown rather than an error, so date-difference rules simply stand down.
func parseDate(raw *string) optTime {
	if raw == nil {
		return optTime{}
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return optTime{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return optTime{t.UTC(), true}
		}
	}
	return optTime{}
}
