package orgunit_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"aisg-audit/internal/orgunit"
	orguniterrors "aisg-audit/internal/orgunit/errors"
	orgunitMock "aisg-audit/internal/orgunit/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type serviceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service orgunit.Service
	repo    *orgunitMock.MockRepository
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	db, sqlMock, _ := sqlmock.New()
	repo := orgunitMock.NewMockRepository(ctrl)

	return &serviceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: orgunit.NewService(db, repo),
		repo:    repo,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestOrgUnitService_Create(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	t.Run("success normalizes code", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, u *orgunit.OrgUnit) error {
			assert.Equal(t, "JKT-01", u.Code)
			assert.Equal(t, orgunit.KindBranch, u.Kind)
			return nil
		})

		resp, err := deps.service.Create(ctx, companyID, orgunit.CreateOrgUnitRequest{
			Kind: orgunit.KindBranch,
			Code: " jkt-01 ",
			Name: "Jakarta Pusat",
		})

		assert.NoError(t, err)
		assert.Equal(t, "JKT-01", resp.Code)
		assert.Equal(t, companyID, resp.CompanyID)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("duplicate code maps to conflict", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).
			Return(&pgconn.PgError{Code: "23505", ConstraintName: "uq_org_unit_code"})

		_, err := deps.service.Create(ctx, companyID, orgunit.CreateOrgUnitRequest{
			Kind: orgunit.KindCEOUnit, Code: "CEO-A", Name: "CEO Unit A",
		})

		assert.ErrorIs(t, err, orguniterrors.ErrOrgUnitCodeExists)
	})
}

func TestOrgUnitService_GetByID(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.repo.EXPECT().FindByIDAndCompany(ctx, companyID, "missing").
			Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.GetByID(ctx, companyID, "missing")
		assert.ErrorIs(t, err, orguniterrors.ErrOrgUnitNotFound)
	})
}

func TestOrgUnitService_GetAll(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	deps := setupServiceTest(t)
	defer deps.db.Close()

	deps.repo.EXPECT().FindAllByCompany(ctx, companyID, orgunit.KindBranch).Return([]orgunit.OrgUnit{
		{ID: uuid.New(), Kind: orgunit.KindBranch, Code: "BDG", Name: "Bandung"},
	}, nil)

	resp, err := deps.service.GetAll(ctx, companyID, "branch")
	assert.NoError(t, err)
	assert.Len(t, resp, 1)
	assert.Equal(t, "BDG", resp[0].Code)
}

func TestOrgUnitService_Delete(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	id := uuid.New().String()

	t.Run("in use", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByIDAndCompany(ctx, companyID, id).Return(&orgunit.OrgUnit{}, nil)
		deps.repo.EXPECT().CountEmployees(ctx, companyID, id).Return(int64(4), nil)

		err := deps.service.Delete(ctx, companyID, id)
		assert.ErrorIs(t, err, orguniterrors.ErrOrgUnitInUse)
	})

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByIDAndCompany(ctx, companyID, id).Return(&orgunit.OrgUnit{}, nil)
		deps.repo.EXPECT().CountEmployees(ctx, companyID, id).Return(int64(0), nil)
		deps.repo.EXPECT().Delete(ctx, companyID, id).Return(nil)

		assert.NoError(t, deps.service.Delete(ctx, companyID, id))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("count error bubbles up", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByIDAndCompany(ctx, companyID, id).Return(&orgunit.OrgUnit{}, nil)
		deps.repo.EXPECT().CountEmployees(ctx, companyID, id).Return(int64(0), errors.New("db down"))

		assert.Error(t, deps.service.Delete(ctx, companyID, id))
	})
}
