package audit

import "aisg-audit/internal/aggregation"

type PillarAnswerRequest struct {
	PillarID int    `json:"pillar_id" binding:"required,min=1,max=18"`
	Category string `json:"category" binding:"omitempty,oneof=A B C"`
	Score    int    `json:"score" binding:"required,min=1,max=5"`
	Notes    string `json:"notes" binding:"omitempty,max=2000"`
}

type CreateAuditRequest struct {
	EmployeeID string                `json:"employee_id" binding:"required,uuid"`
	Year       int                   `json:"year" binding:"required,min=2000,max=2100"`
	Quarter    int                   `json:"quarter" binding:"required,min=1,max=4"`
	Pillars    []PillarAnswerRequest `json:"pillars" binding:"required,dive"`
}

type DeleteAuditRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

type ListFilter struct {
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	Year       int    `form:"year" binding:"omitempty,min=2000,max=2100"`
	Quarter    int    `form:"quarter" binding:"omitempty,min=1,max=4"`
	Zone       string `form:"zone" binding:"omitempty,oneof=Success Warning Critical"`

	// diisi service untuk membatasi hasil ke closure bawahan
	EmployeeIDs []string `form:"-"`
}

type PillarResponse struct {
	PillarID int     `json:"pillar_id"`
	Category string  `json:"category"`
	Name     string  `json:"name"`
	Self     int     `json:"self"`
	Reality  float64 `json:"reality"`
	Gap      float64 `json:"gap"`
	Notes    string  `json:"notes,omitempty"`
}

type TargetResponse struct {
	PersonalMargin string `json:"personal_margin"`
	PersonalNA     int64  `json:"personal_na"`
	TotalMargin    string `json:"total_margin"`
	TotalNA        int64  `json:"total_na"`
	Source         string `json:"source"`
}

type ProdemResponse struct {
	Type        string          `json:"type"`
	Reason      string          `json:"reason"`
	Consequence string          `json:"consequence"`
	NextStep    string          `json:"next_step"`
	Checklist   []ChecklistItem `json:"checklist"`
}

type ChecklistItem struct {
	Requirement string `json:"requirement"`
	Met         bool   `json:"met"`
}

type AuditResponse struct {
	ID              string                           `json:"id"`
	EmployeeID      string                           `json:"employee_id"`
	Year            int                              `json:"year"`
	Quarter         int                              `json:"quarter"`
	PersonalMargin  string                           `json:"personal_margin"`
	PersonalNA      int64                            `json:"personal_na"`
	TeamMargin      string                           `json:"team_margin"`
	TeamNA          int64                            `json:"team_na"`
	Target          TargetResponse                   `json:"target"`
	TenureMonths    int                              `json:"tenure_months"`
	TotalSelf       int                              `json:"total_self"`
	TotalReality    float64                          `json:"total_reality"`
	TotalGap        float64                          `json:"total_gap"`
	WeightedScore   float64                          `json:"weighted_score"`
	ZonaKinerja     string                           `json:"zona_kinerja"`
	ZonaPerilaku    string                           `json:"zona_perilaku"`
	ZonaFinal       string                           `json:"zona_final"`
	Profile         string                           `json:"profile"`
	Prodem          ProdemResponse                   `json:"prodem"`
	TeamSize        int                              `json:"team_size"`
	Coverage        int                              `json:"coverage"`
	Structure       []aggregation.RoleCount          `json:"structure"`
	Pending         []aggregation.PendingSubordinate `json:"pending_subordinates,omitempty"`
	Warnings        []string                         `json:"warnings,omitempty"`
	Narrative       string                           `json:"narrative"`
	NarrativeSource string                           `json:"narrative_source"`
	AggregatedAt    string                           `json:"aggregated_at"`
	CreatedAt       string                           `json:"created_at"`
	Pillars         []PillarResponse                 `json:"pillars,omitempty"`
}

type CreateAuditResponse struct {
	Audit               AuditResponse                    `json:"audit"`
	Warnings            []string                         `json:"warnings"`
	PendingSubordinates []aggregation.PendingSubordinate `json:"pending_subordinates"`
}
