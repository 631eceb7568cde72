package performance

import (
	"context"
	"database/sql"
	"errors"

	performanceerrors "aisg-audit/internal/performance/errors"
	"aisg-audit/internal/shared/numeric"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=performance_service.go -destination=mock/performance_service_mock.go -package=mock
type Service interface {
	Upsert(ctx context.Context, companyID string, req UpsertPerformanceRequest) (PerformanceResponse, error)
	GetAll(ctx context.Context, companyID string, filter ListFilter) ([]PerformanceResponse, error)
	GetByID(ctx context.Context, companyID, id string) (PerformanceResponse, error)
	GetQuarterly(ctx context.Context, companyID string, q QuarterlyQuery) (QuarterlyResponse, error)
	Delete(ctx context.Context, companyID, id string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("performance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("performance.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Upsert(ctx context.Context, companyID string, req UpsertPerformanceRequest) (PerformanceResponse, error) {
	margin, ok := numeric.NormalizeStrict(req.Margin)
	if !ok {
		return PerformanceResponse{}, performanceerrors.ErrInvalidMargin.WithDetails(map[string]string{"margin": req.Margin})
	}
	na, ok := numeric.NormalizeCount(req.NA)
	if !ok {
		return PerformanceResponse{}, performanceerrors.ErrInvalidNA.WithDetails(map[string]string{"na": req.NA})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PerformanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	exists, err := qtx.EmployeeExists(ctx, companyID, req.EmployeeID)
	if err != nil {
		return PerformanceResponse{}, err
	}
	if !exists {
		return PerformanceResponse{}, performanceerrors.ErrEmployeeNotFound
	}

	row := MonthlyPerformance{
		ID:         uuid.New(),
		CompanyID:  uuid.MustParse(companyID),
		EmployeeID: uuid.MustParse(req.EmployeeID),
		Year:       req.Year,
		Month:      req.Month,
		Quarter:    QuarterOf(req.Month),
		Margin:     margin.Round(2),
		NA:         na,
		Source:     SourceManual,
	}
	if err := qtx.Upsert(ctx, []MonthlyPerformance{row}); err != nil {
		s.logger.Error("upsert performance failed",
			zap.String("employee_id", req.EmployeeID),
			zap.Int("year", req.Year),
			zap.Int("month", req.Month),
			zap.Error(err),
		)
		return PerformanceResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PerformanceResponse{}, err
	}

	s.logger.Info("performance upserted",
		zap.String("employee_id", req.EmployeeID),
		zap.Int("year", req.Year),
		zap.Int("month", req.Month),
	)
	return mapToResponse(row), nil
}

func (s *service) GetAll(ctx context.Context, companyID string, filter ListFilter) ([]PerformanceResponse, error) {
	rows, err := s.repo.FindAll(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}
	res := make([]PerformanceResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (PerformanceResponse, error) {
	row, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PerformanceResponse{}, performanceerrors.ErrPerformanceNotFound
		}
		return PerformanceResponse{}, err
	}
	return mapToResponse(*row), nil
}

func (s *service) GetQuarterly(ctx context.Context, companyID string, q QuarterlyQuery) (QuarterlyResponse, error) {
	rows, err := s.repo.FindByEmployeeQuarter(ctx, companyID, q.EmployeeID, q.Year, q.Quarter)
	if err != nil {
		return QuarterlyResponse{}, err
	}

	sum := Summarize(rows, q.Quarter)
	months := make([]PerformanceResponse, len(rows))
	for i, r := range rows {
		months[i] = mapToResponse(r)
	}

	return QuarterlyResponse{
		EmployeeID:    q.EmployeeID,
		Year:          q.Year,
		Quarter:       q.Quarter,
		Margin:        sum.Margin.StringFixed(2),
		NA:            sum.NA,
		Complete:      sum.Complete(),
		MissingMonths: sum.MissingMonths,
		Months:        months,
	}, nil
}

func (s *service) Delete(ctx context.Context, companyID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if _, err := qtx.FindByIDAndCompany(ctx, companyID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return performanceerrors.ErrPerformanceNotFound
		}
		return err
	}
	if err := qtx.Delete(ctx, companyID, id); err != nil {
		return err
	}
	return tx.Commit()
}

func mapToResponse(r MonthlyPerformance) PerformanceResponse {
	return PerformanceResponse{
		ID:         r.ID.String(),
		EmployeeID: r.EmployeeID.String(),
		Year:       r.Year,
		Month:      r.Month,
		Quarter:    r.Quarter,
		Margin:     r.Margin.StringFixed(2),
		NA:         r.NA,
		Source:     r.Source,
	}
}
