package eligibility

// softSignalRule is one positive indicator contributing its weight to the
// confidence score when present. Like hard-fail rules, the full set is always
// returned; only the Present flag varies.
type softSignalRule struct {
	id      string
	signal  string
	weight  int
	present func(n normalized) bool
}

var softSignalRules = []softSignalRule{
	{
		id:     "formal-ppa",
		signal: "Grid-connected with a formal power purchase agreement",
		weight: weightFormalPPA,
		present: func(n normalized) bool {
			return n.offtake.known && n.offtake.value == string(OfftakePPA)
		},
	},
	{
		id:     "long-ppa",
		signal: "PPA tenor of ten years or more",
		weight: weightLongPPA,
		present: func(n normalized) bool {
			return n.ppaYears.known && n.ppaYears.value >= longPPAYears
		},
	},
	{
		id:     "non-merchant",
		signal: "Not exposed to merchant power pricing",
		weight: weightNonMerchant,
		present: func(n normalized) bool {
			if n.merchant.known {
				return !n.merchant.value
			}
			// A contracted offtake structure implies non-merchant even when the
			// flag itself was not filled in.
			return n.offtake.known && n.offtake.value != string(OfftakeMerchant)
		},
	},
	{
		id:     "article6-clear",
		signal: "Host country Article 6 authorisation position is clear",
		weight: weightArticle6Clear,
		present: func(n normalized) bool {
			return n.article6.known && n.article6.value == string(Article6Clear)
		},
	},
	{
		id:     "stable-offtaker",
		signal: "Government or utility offtaker (low counterparty risk)",
		weight: weightStableOfftaker,
		present: func(n normalized) bool {
			return n.offtaker.known &&
				(n.offtaker.value == string(OfftakerGovernment) || n.offtaker.value == string(OfftakerUtility))
		},
	},
	{
		id:     "early-registration-intent",
		signal: "Registration intent documented before commissioning",
		weight: weightEarlyIntent,
		present: func(n normalized) bool {
			return n.intent.known && n.intent.value == string(IntentBeforeCommissioning)
		},
	},
	{
		id:     "substantive-justification",
		signal: "Substantive additionality justification on file",
		weight: weightSubstantiveJust,
		present: func(n normalized) bool {
			return n.justification.known && len(n.justification.value) >= substantiveJustificationChars
		},
	},
	{
		id:     "carbon-revenue-material",
		signal: "Carbon revenue confirmed material to project economics",
		weight: weightCarbonRevenue,
		present: func(n normalized) bool {
			return n.carbonRevenue.known && n.carbonRevenue.value
		},
	},
}

func evaluateSoftSignals(n normalized) []SoftSignal {
	signals := make([]SoftSignal, 0, len(softSignalRules))
	for _, rule := range softSignalRules {
		signals = append(signals, SoftSignal{
			ID:      rule.id,
			Signal:  rule.signal,
			Present: rule.present(n),
			Weight:  rule.weight,
		})
	}
	return signals
}
