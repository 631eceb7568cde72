package scoring

type RecommendationType string

const (
	RecommendPromotion RecommendationType = "Promotion"
	RecommendRetain    RecommendationType = "Retain"
	RecommendCoaching  RecommendationType = "Coaching"
	RecommendDemotion  RecommendationType = "Demotion"
)

const (
	PromotionMinTenureMonths = 12
	DemotionMinTenureMonths  = 6
)

type ChecklistItem struct {
	Requirement string `json:"requirement"`
	Met         bool   `json:"met"`
}

type Recommendation struct {
	Type        RecommendationType `json:"type"`
	Reason      string             `json:"reason"`
	Consequence string             `json:"consequence"`
	NextStep    string             `json:"next_step"`
	Checklist   []ChecklistItem    `json:"checklist"`
}

func recommend(final Zone, profile Profile, tenureMonths int, marginOnTarget bool) Recommendation {
	strongProfile := profile == ProfileLeader || profile == ProfilePerformer
	promotionChecks := []ChecklistItem{
		{Requirement: "Zona final Success", Met: final == ZoneSuccess},
		{Requirement: "Profil Leader atau Performer", Met: strongProfile},
		{Requirement: "Masa kerja minimal 12 bulan", Met: tenureMonths >= PromotionMinTenureMonths},
		{Requirement: "Margin melampaui target", Met: marginOnTarget},
	}
	demotionChecks := []ChecklistItem{
		{Requirement: "Zona final Critical", Met: final == ZoneCritical},
		{Requirement: "Profil At-Risk atau margin di bawah target", Met: profile == ProfileAtRisk || !marginOnTarget},
		{Requirement: "Masa kerja minimal 6 bulan", Met: tenureMonths >= DemotionMinTenureMonths},
	}

	switch {
	case allMet(promotionChecks):
		return Recommendation{
			Type:        RecommendPromotion,
			Reason:      "Output and conduct are both in the Success zone with margin above target for a tenured employee.",
			Consequence: "Eligible for promotion to the next position level in the coming cycle.",
			NextStep:    "Manager prepares the promotion proposal and a handover plan for the current portfolio.",
			Checklist:   promotionChecks,
		}
	case allMet(demotionChecks):
		return Recommendation{
			Type:        RecommendDemotion,
			Reason:      "Final zone is Critical and results do not support the current position level.",
			Consequence: "Position level is reviewed for demotion unless the next quarter recovers to at least Warning.",
			NextStep:    "Schedule a formal review with the manager and agree on a 90-day recovery plan.",
			Checklist:   demotionChecks,
		}
	case final == ZoneCritical || (final == ZoneWarning && profile == ProfileAtRisk):
		return Recommendation{
			Type:        RecommendCoaching,
			Reason:      "Performance or self-assessment accuracy is below expectation but demotion criteria are not all met.",
			Consequence: "Employee enters an intensive coaching track for the next quarter.",
			NextStep:    "Manager holds bi-weekly coaching sessions focused on the pillars with the largest negative gap.",
			Checklist:   demotionChecks,
		}
	default:
		return Recommendation{
			Type:        RecommendRetain,
			Reason:      "Results are acceptable for the current position level but promotion criteria are not all met.",
			Consequence: "Employee stays at the current level.",
			NextStep:    "Close the unmet promotion requirements in the checklist before the next audit.",
			Checklist:   promotionChecks,
		}
	}
}

func allMet(items []ChecklistItem) bool {
	for _, it := range items {
		if !it.Met {
			return false
		}
	}
	return true
}
