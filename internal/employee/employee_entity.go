package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

type Employee struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_employee_code"`
	Code         string     `gorm:"size:50;not null;uniqueIndex:uq_employee_code"`
	FullName     string     `gorm:"size:255;not null"`
	Email        string     `gorm:"size:255"`
	PositionCode string     `gorm:"size:10;not null;index"`
	ManagerID    *uuid.UUID `gorm:"type:uuid;index"`
	BranchID     *uuid.UUID `gorm:"type:uuid"`
	CEOUnitID    *uuid.UUID `gorm:"type:uuid"`
	BirthDate    *time.Time `gorm:"type:date"`
	JoinedAt     time.Time  `gorm:"not null"`
	Status       string     `gorm:"size:20;not null;default:'ACTIVE'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (Employee) TableName() string {
	return "employees"
}
