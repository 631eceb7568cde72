package audit

import (
	"context"
	"database/sql"

	"aisg-audit/internal/aggregation"
	"aisg-audit/internal/shared/connection"
	"aisg-audit/internal/tenant"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

//go:generate mockgen -source=audit_repo.go -destination=mock/audit_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, a *Audit) error
	Save(ctx context.Context, a *Audit) error
	ReplacePillars(ctx context.Context, auditID uuid.UUID, pillars []AuditPillar) error
	FindAll(ctx context.Context, companyID string, filter ListFilter) ([]Audit, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Audit, error)
	FindByIDUnscoped(ctx context.Context, companyID, id string) (*Audit, error)
	FindByEmployeePeriod(ctx context.Context, companyID, employeeID string, year, quarter int) (*Audit, error)
	FindFiguresForPeriod(ctx context.Context, companyID string, employeeIDs []string, year, quarter int) (map[string]aggregation.Figures, error)
	SoftDelete(ctx context.Context, companyID, id string, deletedBy *uuid.UUID, reason string) error
	HardDelete(ctx context.Context, companyID, id string) error
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

func (r *repository) Create(ctx context.Context, a *Audit) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// Save hanya menulis kolom milik audit; pilar diganti lewat ReplacePillars.
func (r *repository) Save(ctx context.Context, a *Audit) error {
	return r.db.WithContext(ctx).Omit("Pillars").Save(a).Error
}

func (r *repository) ReplacePillars(ctx context.Context, auditID uuid.UUID, pillars []AuditPillar) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("audit_id = ?", auditID).Delete(&AuditPillar{}).Error; err != nil {
		return err
	}
	if len(pillars) == 0 {
		return nil
	}
	for i := range pillars {
		pillars[i].AuditID = auditID
		if pillars[i].ID == uuid.Nil {
			pillars[i].ID = uuid.New()
		}
	}
	return db.Create(&pillars).Error
}

func (r *repository) FindAll(ctx context.Context, companyID string, filter ListFilter) ([]Audit, error) {
	var audits []Audit
	q := r.db.WithContext(ctx).Scopes(tenant.Scope(companyID))

	if filter.EmployeeID != "" {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.EmployeeIDs != nil {
		q = q.Where("employee_id IN ?", filter.EmployeeIDs)
	}
	if filter.Year > 0 {
		q = q.Where("year = ?", filter.Year)
	}
	if filter.Quarter > 0 {
		q = q.Where("quarter = ?", filter.Quarter)
	}
	if filter.Zone != "" {
		q = q.Where("zona_final = ?", filter.Zone)
	}

	err := q.Order("year DESC, quarter DESC, created_at DESC").Find(&audits).Error
	return audits, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Audit, error) {
	var a Audit
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Pillars", func(db *gorm.DB) *gorm.DB {
			return db.Order("pillar_id ASC")
		}).
		Where("id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) FindByIDUnscoped(ctx context.Context, companyID, id string) (*Audit, error) {
	var a Audit
	err := r.db.WithContext(ctx).
		Unscoped().
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) FindByEmployeePeriod(ctx context.Context, companyID, employeeID string, year, quarter int) (*Audit, error) {
	var a Audit
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ? AND year = ? AND quarter = ?", employeeID, year, quarter).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

type figuresRow struct {
	EmployeeID     string
	PersonalMargin decimal.Decimal
	PersonalNA     int64
	TeamMargin     decimal.Decimal
	TeamNA         int64
}

func (r *repository) FindFiguresForPeriod(ctx context.Context, companyID string, employeeIDs []string, year, quarter int) (map[string]aggregation.Figures, error) {
	out := make(map[string]aggregation.Figures, len(employeeIDs))
	if len(employeeIDs) == 0 {
		return out, nil
	}

	var rows []figuresRow
	err := r.db.WithContext(ctx).
		Model(&Audit{}).
		Scopes(tenant.Scope(companyID)).
		Select("employee_id::text AS employee_id, personal_margin, personal_na, team_margin, team_na").
		Where("employee_id IN ? AND year = ? AND quarter = ?", employeeIDs, year, quarter).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		out[row.EmployeeID] = aggregation.Figures{
			PersonalMargin: row.PersonalMargin,
			PersonalNA:     row.PersonalNA,
			TeamMargin:     row.TeamMargin,
			TeamNA:         row.TeamNA,
		}
	}
	return out, nil
}

func (r *repository) SoftDelete(ctx context.Context, companyID, id string, deletedBy *uuid.UUID, reason string) error {
	db := r.db.WithContext(ctx).Scopes(tenant.Scope(companyID)).Where("id = ?", id)

	res := db.Model(&Audit{}).Updates(map[string]interface{}{
		"deleted_by":    deletedBy,
		"delete_reason": reason,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		Delete(&Audit{}).Error
}

func (r *repository) HardDelete(ctx context.Context, companyID, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("audit_id = ?", id).Delete(&AuditPillar{}).Error; err != nil {
		return err
	}
	res := db.Unscoped().
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		Delete(&Audit{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
