package orgunit

import (
	"context"
	"database/sql"

	"aisg-audit/internal/shared/connection"
	"aisg-audit/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=orgunit_repo.go -destination=mock/orgunit_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, unit *OrgUnit) error
	FindAllByCompany(ctx context.Context, companyID, kind string) ([]OrgUnit, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*OrgUnit, error)
	CountEmployees(ctx context.Context, companyID, id string) (int64, error)
	Update(ctx context.Context, unit *OrgUnit) error
	Delete(ctx context.Context, companyID, id string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: connection.BindTx(r.db, tx)}
}

func (r *repository) Create(ctx context.Context, unit *OrgUnit) error {
	return r.db.WithContext(ctx).Create(unit).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID, kind string) ([]OrgUnit, error) {
	var units []OrgUnit
	q := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID))
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	err := q.Order("code ASC").Find(&units).Error
	return units, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*OrgUnit, error) {
	var unit OrgUnit
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&unit, "id = ?", id).Error
	return &unit, err
}

func (r *repository) CountEmployees(ctx context.Context, companyID, id string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("employees").
		Where("company_id = ?", companyID).
		Where("(branch_id = ? OR ceo_unit_id = ?)", id, id).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count, err
}

func (r *repository) Update(ctx context.Context, unit *OrgUnit) error {
	return r.db.WithContext(ctx).Save(unit).Error
}

func (r *repository) Delete(ctx context.Context, companyID, id string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&OrgUnit{}, "id = ?", id).Error
}
