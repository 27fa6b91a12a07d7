package scoring

// tierActions lists recommended interventions per tier, most urgent first.
type tierActions [TierCritical + 1][]string

// algaeActions covers water bodies. High and Critical share the advisory list.
var algaeActions = tierActions{
	TierLow: {
		"Routine monthly monitoring.",
		"Maintain baseline nutrient analysis.",
	},
	TierModerate: {
		"Weekly sampling for cyanotoxins.",
		"Visual inspection of shorelines.",
		"Reduce nutrient inflow from upstream.",
	},
	TierHigh:     algaeAdvisory,
	TierCritical: algaeAdvisory,
}

var algaeAdvisory = []string{
	"Issue Public Advisory: No Contact/Swimming.",
	"Increase testing frequency to daily.",
	"Deploy aeration systems in stagnant zones.",
	"Monitor drinking water intakes for toxins.",
}

// microplasticActions covers products and drinking water samples.
var microplasticActions = tierActions{
	TierLow: {
		"No action needed: particle load is within normal range.",
		"Rescan periodically if the source changes.",
	},
	TierModerate: {
		"Prefer Glass or Aluminum alternatives.",
		"Avoid heating or reusing single-use plastic containers.",
		"Rescan with a fresh sample to confirm.",
	},
	TierHigh:     microplasticAdvisory,
	TierCritical: microplasticAdvisory,
}

var microplasticAdvisory = []string{
	"Avoid consuming from this container or source.",
	"Prefer Glass or Aluminum alternatives.",
	"Use a certified filter rated for microplastics.",
	"Confirm with laboratory microplastic analysis.",
}

func actionTable(v Variant) *tierActions {
	if v == VariantMicroplastic {
		return &microplasticActions
	}
	return &algaeActions
}

// ActionsFor returns the ordered action list for a variant and tier.
// Unknown variants get the algae lists and unknown tiers get the Low list.
// The returned slice is a copy.
func ActionsFor(v Variant, t Tier) []string {
	if t < TierLow || t > TierCritical {
		t = TierLow
	}
	src := actionTable(v)[t]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// PrimaryAction returns the first recommended action for a variant and tier.
func PrimaryAction(v Variant, t Tier) string {
	return ActionsFor(v, t)[0]
}
