package orgunit

import (
	"context"
	"database/sql"
	"strings"

	orguniterrors "aisg-audit/internal/orgunit/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=orgunit_service.go -destination=mock/orgunit_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID string, req CreateOrgUnitRequest) (OrgUnitResponse, error)
	GetAll(ctx context.Context, companyID, kind string) ([]OrgUnitResponse, error)
	GetByID(ctx context.Context, companyID, id string) (OrgUnitResponse, error)
	Update(ctx context.Context, companyID, id string, req UpdateOrgUnitRequest) (OrgUnitResponse, error)
	Delete(ctx context.Context, companyID, id string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("orgunit.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("orgunit.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Create(
	ctx context.Context,
	companyID string,
	req CreateOrgUnitRequest,
) (OrgUnitResponse, error) {
	s.logger.Debug("create org unit",
		zap.String("company_id", companyID),
		zap.String("kind", req.Kind),
		zap.String("code", req.Code),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return OrgUnitResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	unit := &OrgUnit{
		ID:        uuid.New(),
		CompanyID: uuid.MustParse(companyID),
		Kind:      req.Kind,
		Code:      strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:      strings.TrimSpace(req.Name),
	}

	if err := qtx.Create(ctx, unit); err != nil {
		s.logger.Warn("create org unit failed", zap.Error(err))
		return OrgUnitResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return OrgUnitResponse{}, err
	}

	return mapToResponse(*unit), nil
}

func (s *service) GetAll(ctx context.Context, companyID, kind string) ([]OrgUnitResponse, error) {
	units, err := s.repo.FindAllByCompany(ctx, companyID, strings.ToUpper(kind))
	if err != nil {
		return nil, err
	}
	return mapToListResponse(units), nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (OrgUnitResponse, error) {
	unit, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return OrgUnitResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*unit), nil
}

func (s *service) Update(
	ctx context.Context,
	companyID, id string,
	req UpdateOrgUnitRequest,
) (OrgUnitResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return OrgUnitResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	unit, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return OrgUnitResponse{}, mapRepositoryError(err)
	}

	unit.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	unit.Name = strings.TrimSpace(req.Name)

	if err := qtx.Update(ctx, unit); err != nil {
		return OrgUnitResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return OrgUnitResponse{}, err
	}

	return mapToResponse(*unit), nil
}

// Delete menolak unit yang masih dipakai karyawan aktif.
func (s *service) Delete(ctx context.Context, companyID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if _, err := qtx.FindByIDAndCompany(ctx, companyID, id); err != nil {
		return mapRepositoryError(err)
	}

	used, err := qtx.CountEmployees(ctx, companyID, id)
	if err != nil {
		return err
	}
	if used > 0 {
		s.logger.Info("delete org unit rejected",
			zap.String("org_unit_id", id),
			zap.Int64("employees", used),
		)
		return orguniterrors.ErrOrgUnitInUse
	}

	if err := qtx.Delete(ctx, companyID, id); err != nil {
		return err
	}

	return tx.Commit()
}

func mapToResponse(unit OrgUnit) OrgUnitResponse {
	return OrgUnitResponse{
		ID:        unit.ID.String(),
		CompanyID: unit.CompanyID.String(),
		Kind:      unit.Kind,
		Code:      unit.Code,
		Name:      unit.Name,
	}
}

func mapToListResponse(units []OrgUnit) []OrgUnitResponse {
	res := make([]OrgUnitResponse, len(units))
	for i, u := range units {
		res[i] = mapToResponse(u)
	}
	return res
}
