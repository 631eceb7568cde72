package audit

import (
	"time"

	"aisg-audit/internal/aggregation"
	"aisg-audit/internal/scoring"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit adalah snapshot satu karyawan untuk satu kuartal. Keunikan
// (employee_id, year, quarter) hanya berlaku untuk baris yang belum dihapus,
// lewat partial index uq_audit_employee_period yang dibuat saat migrasi.
type Audit struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index"`
	Year       int       `gorm:"not null"`
	Quarter    int       `gorm:"not null"`

	PersonalMargin decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	PersonalNA     int64           `gorm:"not null;default:0"`
	TeamMargin     decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	TeamNA         int64           `gorm:"not null;default:0"`

	Target       datatypes.JSONType[scoring.Target] `gorm:"type:jsonb"`
	TargetSource string                             `gorm:"size:20;not null"`
	TenureMonths int                                `gorm:"not null;default:0"`

	TotalSelf     int     `gorm:"not null"`
	TotalReality  float64 `gorm:"type:numeric(6,2);not null"`
	TotalGap      float64 `gorm:"type:numeric(6,2);not null"`
	WeightedScore float64 `gorm:"type:numeric(4,2);not null"`
	ZonaKinerja   string  `gorm:"size:20;not null"`
	ZonaPerilaku  string  `gorm:"size:20;not null"`
	ZonaFinal     string  `gorm:"size:20;not null;index"`
	Profile       string  `gorm:"size:30;not null"`

	ProdemRecommendation string                                     `gorm:"size:20;not null"`
	ProdemDetail         datatypes.JSONType[scoring.Recommendation] `gorm:"type:jsonb"`

	TeamSize  int                                                     `gorm:"not null;default:0"`
	Coverage  int                                                     `gorm:"not null;default:100"`
	Structure datatypes.JSONType[[]aggregation.RoleCount]          `gorm:"type:jsonb"`
	Pending   datatypes.JSONType[[]aggregation.PendingSubordinate] `gorm:"type:jsonb"`
	Warnings  datatypes.JSONType[[]string]                          `gorm:"type:jsonb"`

	Narrative       string `gorm:"type:text"`
	NarrativeSource string `gorm:"size:20"`

	AggregatedAt time.Time
	CreatedBy    *uuid.UUID `gorm:"type:uuid"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
	DeletedBy    *uuid.UUID     `gorm:"type:uuid"`
	DeleteReason string         `gorm:"size:500"`

	Pillars []AuditPillar `gorm:"foreignKey:AuditID;constraint:OnDelete:CASCADE"`
}

func (Audit) TableName() string {
	return "audits"
}

type AuditPillar struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	AuditID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_audit_pillar"`
	PillarID int       `gorm:"not null;uniqueIndex:uq_audit_pillar"`
	Category string    `gorm:"size:1;not null"`
	Self     int       `gorm:"not null"`
	Reality  float64   `gorm:"type:numeric(4,2);not null"`
	Gap      float64   `gorm:"type:numeric(4,2);not null"`
	Notes    string    `gorm:"type:text"`
}

func (AuditPillar) TableName() string {
	return "audit_pillars"
}

func (a Audit) Metrics() scoring.Metrics {
	return scoring.Metrics{
		PersonalMargin: a.PersonalMargin,
		PersonalNA:     a.PersonalNA,
		TeamMargin:     a.TeamMargin,
		TeamNA:         a.TeamNA,
	}
}

func (a Audit) Answers() []scoring.Answer {
	out := make([]scoring.Answer, len(a.Pillars))
	for i, p := range a.Pillars {
		out[i] = scoring.Answer{PillarID: p.PillarID, Category: p.Category, Score: p.Self, Notes: p.Notes}
	}
	return out
}
