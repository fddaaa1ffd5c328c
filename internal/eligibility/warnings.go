package eligibility

import (
	"fmt"
	"time"
)

// warningRule produces an advisory caveat without affecting the verdict.
// Declaration order fixes the order of the returned strings.
type warningRule func(n normalized, now time.Time) (string, bool)

var warningRules = []warningRule{
	// Ambiguous Article 6 posture: not disqualifying, but a live exposure.
	func(n normalized, _ time.Time) (string, bool) {
		if n.article6.known && n.article6.value == string(Article6Ambiguous) {
			return "Host country Article 6 position is ambiguous; future corresponding-adjustment rules may create double-counting exposure.", true
		}
		return "", false
	},
	func(n normalized, _ time.Time) (string, bool) {
		if !n.article6.known {
			return "Eligibility assessment incomplete: host country Article 6 status has not been provided.", true
		}
		return "", false
	},
	func(n normalized, _ time.Time) (string, bool) {
		if !n.commissioning.known {
			return "Eligibility assessment incomplete: commissioning date is missing or unparseable.", true
		}
		return "", false
	},
	func(n normalized, _ time.Time) (string, bool) {
		if !n.capacityMW.known {
			return "Eligibility assessment incomplete: no installed capacity figure has been provided.", true
		}
		return "", false
	},
	func(n normalized, _ time.Time) (string, bool) {
		if n.policyDriven.known && n.policyDriven.value {
			return "Project is flagged as policy-driven; regulatory additionality may be challenged during validation.", true
		}
		return "", false
	},
	// Crediting period opening before the plant exists is usually a data-entry
	// mistake, but VVBs will query it either way.
	func(n normalized, _ time.Time) (string, bool) {
		if n.creditingStart.known && n.commissioning.known && n.creditingStart.value.Before(n.commissioning.value) {
			return "Crediting period starts before the commissioning date; verify the intended crediting start.", true
		}
		return "", false
	},
	func(n normalized, _ time.Time) (string, bool) {
		if n.intent.known && n.intent.value == string(IntentNotDecided) {
			return "Carbon registration intent is undecided; delaying the decision erodes the post-commissioning grace window.", true
		}
		return "", false
	},
	// The only clock-dependent rule: an already-aged plant with no documented
	// early intent is at risk of the same grace-window objection that the
	// AFTER_2_YEARS hard fail encodes.
	func(n normalized, now time.Time) (string, bool) {
		if !n.commissioning.known {
			return "", false
		}
		if n.intent.known && n.intent.value == string(IntentBeforeCommissioning) {
			return "", false
		}
		cutoff := n.commissioning.value.AddDate(graceWindowYears, 0, 0)
		if now.After(cutoff) {
			return fmt.Sprintf("Plant was commissioned more than %d years ago without documented pre-commissioning registration intent; registries may challenge the timing.", graceWindowYears), true
		}
		return "", false
	},
	func(n normalized, _ time.Time) (string, bool) {
		if n.merchant.known && n.merchant.value && !n.carbonRevenue.known {
			return "Merchant exposure with unconfirmed carbon-revenue materiality; confirm materiality to strengthen the additionality case.", true
		}
		return "", false
	},
}

func evaluateRiskWarnings(n normalized, now time.Time) []string {
	warnings := make([]string, 0, len(warningRules))
	for _, rule := range warningRules {
		if msg, ok := rule(n, now); ok {
			warnings = append(warnings, msg)
		}
	}
	return warnings
}
