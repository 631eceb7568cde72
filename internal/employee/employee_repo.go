package employee

import (
	"context"
	"database/sql"

	"aisg-audit/internal/hierarchy"
	"aisg-audit/internal/position"
	"aisg-audit/internal/shared/connection"
	"aisg-audit/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, empl *Employee) error
	UpsertByCode(ctx context.Context, empls []Employee) error
	FindAllByCompany(ctx context.Context, companyID string) ([]Employee, error)
	FindOptionsByCompany(ctx context.Context, companyID string) ([]Employee, error)
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Employee, error)
	FindByCodes(ctx context.Context, companyID string, codes []string) ([]Employee, error)
	DirectSubordinates(ctx context.Context, companyID, managerID string) ([]hierarchy.Node, error)
	CountDirectSubordinates(ctx context.Context, companyID, managerID string) (int64, error)
	SubordinateIDsRecursive(ctx context.Context, companyID, managerID string, maxDepth int) ([]string, error)
	UpdateManager(ctx context.Context, companyID, id string, managerID *uuid.UUID) error
	Update(ctx context.Context, empl *Employee) error
	Delete(ctx context.Context, companyID string, id string) error
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

func (r *repository) Create(ctx context.Context, empl *Employee) error {
	return r.db.WithContext(ctx).Create(empl).Error
}

// UpsertByCode dipakai import: baris dengan kode yang sudah ada (termasuk yang
// soft-deleted) diperbarui dan dihidupkan kembali. manager_id tidak disentuh di sini.
func (r *repository) UpsertByCode(ctx context.Context, empls []Employee) error {
	if len(empls) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "company_id"}, {Name: "code"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"full_name":     gorm.Expr("EXCLUDED.full_name"),
				"email":         gorm.Expr("EXCLUDED.email"),
				"position_code": gorm.Expr("EXCLUDED.position_code"),
				"birth_date":    gorm.Expr("EXCLUDED.birth_date"),
				"status":        gorm.Expr("EXCLUDED.status"),
				"updated_at":    gorm.Expr("now()"),
				"deleted_at":    nil,
			}),
		}).
		CreateInBatches(empls, 200).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]Employee, error) {
	var empls []Employee
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("code ASC").
		Find(&empls).Error
	return empls, err
}

func (r *repository) FindOptionsByCompany(ctx context.Context, companyID string) ([]Employee, error) {
	var empls []Employee
	err := r.db.WithContext(ctx).
		Select("id", "company_id", "code", "full_name", "position_code", "manager_id", "status").
		Scopes(tenant.Scope(companyID)).
		Where("status = ?", StatusActive).
		Order("full_name ASC").
		Find(&empls).Error
	return empls, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Employee, error) {
	var empl Employee
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&empl, "id = ?", id).Error
	return &empl, err
}

func (r *repository) FindByCodes(ctx context.Context, companyID string, codes []string) ([]Employee, error) {
	var empls []Employee
	if len(codes) == 0 {
		return empls, nil
	}
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("code IN ?", codes).
		Find(&empls).Error
	return empls, err
}

func (r *repository) DirectSubordinates(ctx context.Context, companyID, managerID string) ([]hierarchy.Node, error) {
	var empls []Employee
	err := r.db.WithContext(ctx).
		Select("id", "code", "full_name", "position_code", "manager_id").
		Scopes(tenant.Scope(companyID)).
		Where("manager_id = ?", managerID).
		Order("code ASC").
		Find(&empls).Error
	if err != nil {
		return nil, err
	}

	nodes := make([]hierarchy.Node, len(empls))
	for i, e := range empls {
		nodes[i] = ToNode(e)
	}
	return nodes, nil
}

func (r *repository) CountDirectSubordinates(ctx context.Context, companyID, managerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Employee{}).
		Scopes(tenant.Scope(companyID)).
		Where("manager_id = ?", managerID).
		Count(&count).Error
	return count, err
}

// SubordinateIDsRecursive adalah varian SQL dari Walker.AllSubordinates.
// Kolom depth membatasi rekursi kalau data sudah terlanjur membentuk siklus.
func (r *repository) SubordinateIDsRecursive(ctx context.Context, companyID, managerID string, maxDepth int) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Raw(`
		WITH RECURSIVE tree AS (
			SELECT id, 1 AS depth
			FROM employees
			WHERE company_id = ? AND manager_id = ? AND deleted_at IS NULL
			UNION
			SELECT e.id, t.depth + 1
			FROM employees e
			JOIN tree t ON e.manager_id = t.id
			WHERE e.company_id = ? AND e.deleted_at IS NULL AND t.depth < ?
		)
		SELECT DISTINCT id::text FROM tree WHERE id <> ?
	`, companyID, managerID, companyID, maxDepth, managerID).Scan(&ids).Error
	return ids, err
}

func (r *repository) UpdateManager(ctx context.Context, companyID, id string, managerID *uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&Employee{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		Update("manager_id", managerID).Error
}

func (r *repository) Update(ctx context.Context, empl *Employee) error {
	return r.db.WithContext(ctx).Save(empl).Error
}

func (r *repository) Delete(ctx context.Context, companyID string, id string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&Employee{}, "id = ?", id).Error
}

func ToNode(e Employee) hierarchy.Node {
	return hierarchy.Node{
		ID:           e.ID.String(),
		Code:         e.Code,
		FullName:     e.FullName,
		PositionCode: e.PositionCode,
		Level:        position.LevelOf(e.PositionCode),
		ManagerID:    uuidToString(e.ManagerID),
	}
}
