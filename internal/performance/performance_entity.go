package performance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	SourceManual = "MANUAL"
	SourceImport = "IMPORT"
)

type MonthlyPerformance struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	EmployeeID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uq_performance_period"`
	Year       int             `gorm:"not null;uniqueIndex:uq_performance_period;index:idx_performance_quarter"`
	Month      int             `gorm:"not null;uniqueIndex:uq_performance_period"`
	Quarter    int             `gorm:"not null;index:idx_performance_quarter"`
	Margin     decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	NA         int64           `gorm:"not null;default:0"`
	Source     string          `gorm:"size:20;not null;default:'MANUAL'"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (MonthlyPerformance) TableName() string {
	return "monthly_performances"
}

// QuarterOf: Jan-Mar = 1, Apr-Jun = 2, dst.
func QuarterOf(month int) int {
	return (month + 2) / 3
}

// MonthsOf returns the three calendar months of a quarter.
func MonthsOf(quarter int) []int {
	first := (quarter-1)*3 + 1
	return []int{first, first + 1, first + 2}
}
