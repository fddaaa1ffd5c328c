package eligibility

import "fmt"

// hardFailRule is one disqualification check. Rules are independent and
// order-insensitive for the verdict; slice order fixes display order.
type hardFailRule struct {
	id        string
	condition string
	check     func(n normalized) (bool, string)
}

// hardFailRules is the complete, fixed checklist. Every rule appears in the
// result whether or not it triggered. A rule whose inputs are unknown stands
// down: absence of information is never a hard fail on its own.
var hardFailRules = []hardFailRule{
	{
		id:        "late-registration-intent",
		condition: "Registration intent documented more than the grace window after commissioning",
		check: func(n normalized) (bool, string) {
			if n.intent.known && n.intent.value == string(IntentAfterTwoYears) {
				return true, fmt.Sprintf("registries generally reject projects that documented registration intent beyond %d years after commissioning", graceWindowYears)
			}
			return false, ""
		},
	},
	{
		id:        "article6-high-risk",
		condition: "Host country Article 6 double-counting risk rated high",
		check: func(n normalized) (bool, string) {
			if n.article6.known && n.article6.value == string(Article6HighRisk) {
				return true, "issued credits would face unresolved corresponding-adjustment exposure in the host country"
			}
			return false, ""
		},
	},
	{
		id:        "merchant-no-carbon-revenue",
		condition: "Merchant project with carbon revenue confirmed immaterial",
		check: func(n normalized) (bool, string) {
			// Requires an explicit false; an unconfirmed materiality only warns.
			if n.merchant.known && n.merchant.value && n.carbonRevenue.known && !n.carbonRevenue.value {
				return true, "a merchant project with no guaranteed offtake and no reliance on carbon revenue has weak additionality grounds"
			}
			return false, ""
		},
	},
	{
		id:        "policy-driven-government-offtake",
		condition: "Policy-driven program selling to a government offtaker",
		check: func(n normalized) (bool, string) {
			if n.policyDriven.known && n.policyDriven.value &&
				n.offtaker.known && n.offtaker.value == string(OfftakerGovernment) {
				return true, "projects built under a government mandate and contracted back to the government cannot demonstrate regulatory additionality"
			}
			return false, ""
		},
	},
	{
		id:        "insufficient-additionality-justification",
		condition: "Additionality justification provided but below the minimum substance threshold",
		check: func(n normalized) (bool, string) {
			if n.justification.known && len(n.justification.value) < minJustificationChars {
				return true, fmt.Sprintf("the submitted justification is %d characters; at least %d are required for the registration gate", len(n.justification.value), minJustificationChars)
			}
			return false, ""
		},
	},
}

func evaluateHardFails(n normalized) []HardFailReason {
	reasons := make([]HardFailReason, 0, len(hardFailRules))
	for _, rule := range hardFailRules {
		triggered, why := rule.check(n)
		reasons = append(reasons, HardFailReason{
			ID:        rule.id,
			Condition: rule.condition,
			Triggered: triggered,
			Reason:    why,
		})
	}
	return reasons
}
