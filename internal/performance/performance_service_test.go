package performance_test

import (
	"context"
	"database/sql"
	"testing"

	"aisg-audit/internal/performance"
	performanceerrors "aisg-audit/internal/performance/errors"
	performanceMock "aisg-audit/internal/performance/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type serviceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service performance.Service
	repo    *performanceMock.MockRepository
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)
	db, sqlMock, _ := sqlmock.New()
	repo := performanceMock.NewMockRepository(ctrl)
	return &serviceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: performance.NewService(db, repo),
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

func TestPerformanceService_Upsert(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	employeeID := uuid.New().String()

	t.Run("normalizes european margin and derives quarter", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().EmployeeExists(ctx, companyID, employeeID).Return(true, nil)
		deps.repo.EXPECT().Upsert(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, rows []performance.MonthlyPerformance) error {
			assert.Len(t, rows, 1)
			assert.True(t, rows[0].Margin.Equal(decimal.RequireFromString("1234.56")))
			assert.Equal(t, 2, rows[0].Quarter)
			assert.Equal(t, int64(7), rows[0].NA)
			return nil
		})

		resp, err := deps.service.Upsert(ctx, companyID, performance.UpsertPerformanceRequest{
			EmployeeID: employeeID,
			Year:       2025,
			Month:      5,
			Margin:     "1.234,56",
			NA:         "7",
		})

		assert.NoError(t, err)
		assert.Equal(t, "1234.56", resp.Margin)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("garbage margin is rejected", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Upsert(ctx, companyID, performance.UpsertPerformanceRequest{
			EmployeeID: employeeID, Year: 2025, Month: 1, Margin: "abc", NA: "1",
		})
		assert.ErrorIs(t, err, performanceerrors.ErrInvalidMargin)
	})

	t.Run("unknown employee", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().EmployeeExists(ctx, companyID, employeeID).Return(false, nil)

		_, err := deps.service.Upsert(ctx, companyID, performance.UpsertPerformanceRequest{
			EmployeeID: employeeID, Year: 2025, Month: 1, Margin: "10", NA: "1",
		})
		assert.ErrorIs(t, err, performanceerrors.ErrEmployeeNotFound)
	})
}

func TestPerformanceService_GetQuarterly(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	employeeID := uuid.New()
	deps := setupServiceTest(t)
	defer deps.db.Close()

	deps.repo.EXPECT().FindByEmployeeQuarter(ctx, companyID, employeeID.String(), 2025, 1).Return([]performance.MonthlyPerformance{
		{EmployeeID: employeeID, Year: 2025, Month: 1, Quarter: 1, Margin: decimal.NewFromInt(100), NA: 1},
		{EmployeeID: employeeID, Year: 2025, Month: 3, Quarter: 1, Margin: decimal.NewFromInt(300), NA: 3},
	}, nil)

	resp, err := deps.service.GetQuarterly(ctx, companyID, performance.QuarterlyQuery{
		EmployeeID: employeeID.String(), Year: 2025, Quarter: 1,
	})

	assert.NoError(t, err)
	assert.Equal(t, "400.00", resp.Margin)
	assert.Equal(t, int64(4), resp.NA)
	assert.False(t, resp.Complete)
	assert.Equal(t, []int{2}, resp.MissingMonths)
}

func TestPerformanceService_Delete(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	deps := setupServiceTest(t)
	defer deps.db.Close()

	expectTx(t, deps.sqlMock, false)
	deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
	deps.repo.EXPECT().FindByIDAndCompany(ctx, companyID, "x").Return(nil, gorm.ErrRecordNotFound)

	assert.ErrorIs(t, deps.service.Delete(ctx, companyID, "x"), performanceerrors.ErrPerformanceNotFound)
}

func TestSummarize(t *testing.T) {
	rows := []performance.MonthlyPerformance{
		{Month: 4, Margin: decimal.RequireFromString("100.10"), NA: 1},
		{Month: 5, Margin: decimal.RequireFromString("200.20"), NA: 2},
		{Month: 6, Margin: decimal.RequireFromString("300.30"), NA: 3},
		{Month: 7, Margin: decimal.NewFromInt(999), NA: 9},
	}

	q := performance.Summarize(rows, 2)

	assert.True(t, q.Complete())
	assert.True(t, q.Margin.Equal(decimal.RequireFromString("600.60")))
	assert.Equal(t, int64(6), q.NA)
}

func TestQuarterOf(t *testing.T) {
	cases := map[int]int{1: 1, 3: 1, 4: 2, 6: 2, 7: 3, 9: 3, 10: 4, 12: 4}
	for month, want := range cases {
		assert.Equal(t, want, performance.QuarterOf(month), "month %d", month)
	}
	assert.Equal(t, []int{10, 11, 12}, performance.MonthsOf(4))
}
