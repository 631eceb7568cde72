package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User akun login. EmployeeID kosong untuk akun admin/HR yang tidak ada di hierarki sales.
type User struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	EmployeeID *uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	Name       string     `gorm:"type:varchar(255);not null"`
	Email      string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	Password   string     `gorm:"type:varchar(255);not null"`
	Role       string     `gorm:"type:varchar(50);not null;default:'EMPLOYEE'"`
	IsActive   bool       `gorm:"default:true"`
	LastLogin  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string { return "users" }

func (u User) employeeIDString() string {
	if u.EmployeeID == nil || *u.EmployeeID == uuid.Nil {
		return ""
	}
	return u.EmployeeID.String()
}
