package orgunit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	KindBranch  = "BRANCH"
	KindCEOUnit = "CEO_UNIT"
)

type OrgUnit struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uq_org_unit_code"`
	Kind      string         `gorm:"size:20;not null;index"`
	Code      string         `gorm:"size:50;not null;uniqueIndex:uq_org_unit_code"`
	Name      string         `gorm:"size:255;not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (OrgUnit) TableName() string {
	return "org_units"
}
