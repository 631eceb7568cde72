package position

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=position_repo.go -destination=mock/position_repo_mock.go -package=mock
type Repository interface {
	FindAll(ctx context.Context) ([]Position, error)
	FindByCode(ctx context.Context, code string) (*Position, error)
	Upsert(ctx context.Context, positions []Position) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindAll(ctx context.Context) ([]Position, error) {
	var positions []Position
	err := r.db.WithContext(ctx).
		Order("level ASC").
		Find(&positions).Error
	return positions, err
}

func (r *repository) FindByCode(ctx context.Context, code string) (*Position, error) {
	var p Position
	err := r.db.WithContext(ctx).
		First(&p, "code = ?", code).Error
	return &p, err
}

func (r *repository) Upsert(ctx context.Context, positions []Position) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "level", "updated_at"}),
		}).
		Create(&positions).Error
}
