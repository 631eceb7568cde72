package rbac

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RolePermission izin tambahan per company di luar defaultPolicies.
type RolePermission struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_role_permission"`
	Role      string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_role_permission"`
	Resource  string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_role_permission"`
	Action    string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_role_permission"`
	CreatedAt time.Time
}

func (RolePermission) TableName() string { return "role_permissions" }

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	ListByCompany(ctx context.Context, companyID string) ([]RolePermission, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListByCompany(ctx context.Context, companyID string) ([]RolePermission, error) {
	var rows []RolePermission
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("role, resource, action").
		Find(&rows).Error
	return rows, err
}
