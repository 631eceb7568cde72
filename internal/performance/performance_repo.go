package performance

import (
	"context"
	"database/sql"

	"aisg-audit/internal/shared/connection"
	"aisg-audit/internal/tenant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=performance_repo.go -destination=mock/performance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Upsert(ctx context.Context, rows []MonthlyPerformance) error
	FindAll(ctx context.Context, companyID string, filter ListFilter) ([]MonthlyPerformance, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*MonthlyPerformance, error)
	FindByEmployeeQuarter(ctx context.Context, companyID, employeeID string, year, quarter int) ([]MonthlyPerformance, error)
	FindByEmployeeMonths(ctx context.Context, companyID, employeeID string, from, to int) ([]MonthlyPerformance, error)
	EmployeeExists(ctx context.Context, companyID, employeeID string) (bool, error)
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

// Upsert menimpa margin/na untuk periode yang sama; quarter selalu dihitung ulang dari month.
func (r *repository) Upsert(ctx context.Context, rows []MonthlyPerformance) error {
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		rows[i].Quarter = QuarterOf(rows[i].Month)
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "employee_id"}, {Name: "year"}, {Name: "month"}},
			DoUpdates: clause.AssignmentColumns([]string{"margin", "na", "quarter", "source", "updated_at"}),
		}).
		CreateInBatches(rows, 200).Error
}

func (r *repository) FindAll(ctx context.Context, companyID string, filter ListFilter) ([]MonthlyPerformance, error) {
	var rows []MonthlyPerformance
	q := r.db.WithContext(ctx).Scopes(tenant.Scope(companyID))
	if filter.EmployeeID != "" {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.Year > 0 {
		q = q.Where("year = ?", filter.Year)
	}
	if filter.Quarter > 0 {
		q = q.Where("quarter = ?", filter.Quarter)
	}
	err := q.Order("year DESC, month DESC").Find(&rows).Error
	return rows, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*MonthlyPerformance, error) {
	var row MonthlyPerformance
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&row, "id = ?", id).Error
	return &row, err
}

func (r *repository) FindByEmployeeQuarter(ctx context.Context, companyID, employeeID string, year, quarter int) ([]MonthlyPerformance, error) {
	var rows []MonthlyPerformance
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ? AND year = ? AND quarter = ?", employeeID, year, quarter).
		Order("month ASC").
		Find(&rows).Error
	return rows, err
}

// FindByEmployeeMonths mengambil baris dalam rentang year*12+month (inklusif).
func (r *repository) FindByEmployeeMonths(ctx context.Context, companyID, employeeID string, from, to int) ([]MonthlyPerformance, error) {
	var rows []MonthlyPerformance
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("(year * 12 + month) BETWEEN ? AND ?", from, to).
		Order("year ASC, month ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) EmployeeExists(ctx context.Context, companyID, employeeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("employees").
		Where("company_id = ? AND id = ? AND deleted_at IS NULL", companyID, employeeID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) Delete(ctx context.Context, companyID, id string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&MonthlyPerformance{}, "id = ?", id).Error
}
