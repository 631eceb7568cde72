package audit

import (
	"time"

	"aisg-audit/internal/scoring"
)

func toResponse(a Audit) AuditResponse {
	target := a.Target.Data()
	prodem := a.ProdemDetail.Data()

	checklist := make([]ChecklistItem, len(prodem.Checklist))
	for i, c := range prodem.Checklist {
		checklist[i] = ChecklistItem{Requirement: c.Requirement, Met: c.Met}
	}

	var pillars []PillarResponse
	if len(a.Pillars) > 0 {
		pillars = make([]PillarResponse, len(a.Pillars))
		for i, p := range a.Pillars {
			name := ""
			if def, ok := scoring.PillarByID(p.PillarID); ok {
				name = def.Name
			}
			pillars[i] = PillarResponse{
				PillarID: p.PillarID,
				Category: p.Category,
				Name:     name,
				Self:     p.Self,
				Reality:  p.Reality,
				Gap:      p.Gap,
				Notes:    p.Notes,
			}
		}
	}

	return AuditResponse{
		ID:             a.ID.String(),
		EmployeeID:     a.EmployeeID.String(),
		Year:           a.Year,
		Quarter:        a.Quarter,
		PersonalMargin: a.PersonalMargin.StringFixed(2),
		PersonalNA:     a.PersonalNA,
		TeamMargin:     a.TeamMargin.StringFixed(2),
		TeamNA:         a.TeamNA,
		Target: TargetResponse{
			PersonalMargin: target.PersonalMargin.StringFixed(2),
			PersonalNA:     target.PersonalNA,
			TotalMargin:    target.TotalMargin.StringFixed(2),
			TotalNA:        target.TotalNA,
			Source:         a.TargetSource,
		},
		TenureMonths:  a.TenureMonths,
		TotalSelf:     a.TotalSelf,
		TotalReality:  a.TotalReality,
		TotalGap:      a.TotalGap,
		WeightedScore: a.WeightedScore,
		ZonaKinerja:   a.ZonaKinerja,
		ZonaPerilaku:  a.ZonaPerilaku,
		ZonaFinal:     a.ZonaFinal,
		Profile:       a.Profile,
		Prodem: ProdemResponse{
			Type:        string(prodem.Type),
			Reason:      prodem.Reason,
			Consequence: prodem.Consequence,
			NextStep:    prodem.NextStep,
			Checklist:   checklist,
		},
		TeamSize:        a.TeamSize,
		Coverage:        a.Coverage,
		Structure:       nonNilStructure(a.Structure.Data()),
		Pending:         a.Pending.Data(),
		Warnings:        a.Warnings.Data(),
		Narrative:       a.Narrative,
		NarrativeSource: a.NarrativeSource,
		AggregatedAt:    formatTime(a.AggregatedAt),
		CreatedAt:       formatTime(a.CreatedAt),
		Pillars:         pillars,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
