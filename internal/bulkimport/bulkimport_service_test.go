package bulkimport_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"aisg-audit/internal/bulkimport"
	bulkimporterrors "aisg-audit/internal/bulkimport/errors"
	"aisg-audit/internal/employee"
	"aisg-audit/internal/events"
	"aisg-audit/internal/hierarchy"
	"aisg-audit/internal/messaging/kafka"
	"aisg-audit/internal/performance"
	"aisg-audit/internal/shared/apperror"

	employeeMock "aisg-audit/internal/employee/mock"
	kafkaMock "aisg-audit/internal/messaging/kafka/mock"
	performanceMock "aisg-audit/internal/performance/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type serviceDeps struct {
	sqlMock      sqlmock.Sqlmock
	redismock    redismock.ClientMock
	service      bulkimport.Service
	employees    *employeeMock.MockRepository
	performances *performanceMock.MockRepository
	outbox       *kafkaMock.MockOutboxRepository
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rdb, redisMock := redismock.NewClientMock()
	employees := employeeMock.NewMockRepository(ctrl)
	performances := performanceMock.NewMockRepository(ctrl)
	outbox := kafkaMock.NewMockOutboxRepository(ctrl)

	return &serviceDeps{
		sqlMock:      sqlMock,
		redismock:    redisMock,
		service:      bulkimport.NewService(db, employees, performances, outbox, rdb),
		employees:    employees,
		performances: performances,
		outbox:       outbox,
	}
}

var header = []interface{}{"employee_code", "nama", "posisi", "atasan_code", "margin", "na"}

func TestBulkImportService_Import(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.NewString()
	req := bulkimport.ImportRequest{Year: 2025, Month: 2}

	t.Run("two-pass commit", func(t *testing.T) {
		deps := setupServiceTest(t)
		buf := workbook(t, header,
			[]interface{}{"E1", "Budi", "bc", "M1", "1.250,75", "3"},
			[]interface{}{"M1", "Mira", "BsM", "", "2000", "1"},
		)

		e1 := employee.Employee{ID: uuid.New(), Code: "E1", PositionCode: "BC"}
		m1 := employee.Employee{ID: uuid.New(), Code: "M1", PositionCode: "BsM"}

		// validator lookup
		deps.employees.EXPECT().FindByCodes(ctx, companyID, []string{"E1", "M1"}).Return(nil, nil)

		deps.sqlMock.ExpectBegin()
		deps.employees.EXPECT().WithTx(gomock.Any()).Return(deps.employees)
		deps.employees.EXPECT().UpsertByCode(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, empls []employee.Employee) error {
			require.Len(t, empls, 2)
			assert.Equal(t, "BC", empls[0].PositionCode)
			assert.Nil(t, empls[0].ManagerID)
			return nil
		})
		deps.employees.EXPECT().FindByCodes(ctx, companyID, []string{"E1", "M1", "M1"}).Return([]employee.Employee{e1, m1}, nil)
		// walker (cek siklus) lalu cek rank bawahan
		deps.employees.EXPECT().DirectSubordinates(ctx, companyID, e1.ID.String()).Return(nil, nil).Times(2)
		deps.employees.EXPECT().UpdateManager(ctx, companyID, e1.ID.String(), &m1.ID).Return(nil)
		deps.employees.EXPECT().UpdateManager(ctx, companyID, m1.ID.String(), nil).Return(nil)
		deps.employees.EXPECT().DirectSubordinates(ctx, companyID, m1.ID.String()).
			Return([]hierarchy.Node{{ID: e1.ID.String(), Code: "E1", PositionCode: "BC", Level: 9}}, nil)

		deps.performances.EXPECT().WithTx(gomock.Any()).Return(deps.performances)
		deps.performances.EXPECT().Upsert(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, rows []performance.MonthlyPerformance) error {
			require.Len(t, rows, 2)
			assert.Equal(t, e1.ID, rows[0].EmployeeID)
			assert.True(t, rows[0].Margin.Equal(decimal.RequireFromString("1250.75")))
			assert.Equal(t, int64(3), rows[0].NA)
			assert.Equal(t, 1, rows[0].Quarter)
			assert.Equal(t, performance.SourceImport, rows[1].Source)
			return nil
		})
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, ev kafka.OutboxEvent) error {
			var payload events.EmployeeLifecycleEvent
			require.NoError(t, json.Unmarshal(ev.Payload, &payload))
			assert.Equal(t, events.EmployeesImported, payload.EventType)
			assert.Equal(t, 2, payload.Imported)
			return nil
		})
		deps.sqlMock.ExpectCommit()
		deps.redismock.ExpectDel(employee.GetEmployeeOptionsKey(companyID)).SetVal(1)

		resp, err := deps.service.Import(ctx, companyID, req, buf)

		require.NoError(t, err)
		assert.True(t, resp.Committed)
		assert.Equal(t, 2, resp.EmployeesUpserted)
		assert.Equal(t, 1, resp.ManagerLinks)
		assert.Equal(t, 2, resp.PerformanceRows)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("invalid batch without partial writes nothing", func(t *testing.T) {
		deps := setupServiceTest(t)
		buf := workbook(t, header,
			[]interface{}{"E1", "Budi", "BC", "GHOST", "100", "1"},
		)
		deps.employees.EXPECT().FindByCodes(ctx, companyID, gomock.Any()).Return(nil, nil)

		resp, err := deps.service.Import(ctx, companyID, req, buf)

		assert.ErrorIs(t, err, bulkimporterrors.ErrValidationFailed)
		var appErr *apperror.AppError
		require.True(t, errors.As(err, &appErr))
		details, ok := appErr.Details.(bulkimport.Result)
		require.True(t, ok)
		assert.Len(t, details.Errors, 1)
		assert.False(t, resp.Committed)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("dry run only validates", func(t *testing.T) {
		deps := setupServiceTest(t)
		buf := workbook(t, header,
			[]interface{}{"E1", "Budi", "BC", "", "100", "1"},
		)
		deps.employees.EXPECT().FindByCodes(ctx, companyID, gomock.Any()).Return(nil, nil)

		dry := req
		dry.DryRun = true
		resp, err := deps.service.Import(ctx, companyID, dry, buf)

		require.NoError(t, err)
		assert.False(t, resp.Committed)
		assert.True(t, resp.Validation.IsValid)
	})

	t.Run("partial commits only valid rows", func(t *testing.T) {
		deps := setupServiceTest(t)
		buf := workbook(t, header,
			[]interface{}{"E1", "Budi", "BC", "", "100", "1"},
			[]interface{}{"E2", "Ani", "XX", "", "100", "1"},
		)
		e1 := employee.Employee{ID: uuid.New(), Code: "E1", PositionCode: "BC"}

		deps.employees.EXPECT().FindByCodes(ctx, companyID, []string{"E1", "E2"}).Return(nil, nil)
		deps.sqlMock.ExpectBegin()
		deps.employees.EXPECT().WithTx(gomock.Any()).Return(deps.employees)
		deps.employees.EXPECT().UpsertByCode(ctx, gomock.Len(1)).Return(nil)
		deps.employees.EXPECT().FindByCodes(ctx, companyID, []string{"E1"}).Return([]employee.Employee{e1}, nil)
		deps.employees.EXPECT().UpdateManager(ctx, companyID, e1.ID.String(), nil).Return(nil)
		deps.employees.EXPECT().DirectSubordinates(ctx, companyID, e1.ID.String()).Return(nil, nil)
		deps.performances.EXPECT().WithTx(gomock.Any()).Return(deps.performances)
		deps.performances.EXPECT().Upsert(ctx, gomock.Len(1)).Return(nil)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).Return(nil)
		deps.sqlMock.ExpectCommit()
		deps.redismock.ExpectDel(employee.GetEmployeeOptionsKey(companyID)).SetVal(1)

		partial := req
		partial.Partial = true
		resp, err := deps.service.Import(ctx, companyID, partial, buf)

		require.NoError(t, err)
		assert.True(t, resp.Committed)
		assert.Equal(t, 1, resp.EmployeesUpserted)
		assert.Equal(t, []int{3}, resp.SkippedRows)
	})

	t.Run("store-level cycle rolls back", func(t *testing.T) {
		deps := setupServiceTest(t)
		buf := workbook(t, header,
			[]interface{}{"M1", "Mira", "BsM", "S1", "100", "1"},
		)
		m1 := employee.Employee{ID: uuid.New(), Code: "M1", PositionCode: "BsM"}
		s1 := employee.Employee{ID: uuid.New(), Code: "S1", PositionCode: "SBM"}

		deps.employees.EXPECT().FindByCodes(ctx, companyID, []string{"M1", "S1"}).Return([]employee.Employee{m1, s1}, nil)
		deps.sqlMock.ExpectBegin()
		deps.employees.EXPECT().WithTx(gomock.Any()).Return(deps.employees)
		deps.employees.EXPECT().UpsertByCode(ctx, gomock.Any()).Return(nil)
		deps.employees.EXPECT().FindByCodes(ctx, companyID, []string{"M1", "S1"}).Return([]employee.Employee{m1, s1}, nil)
		// S1 sudah berada di bawah M1 di store
		deps.employees.EXPECT().DirectSubordinates(ctx, companyID, m1.ID.String()).
			Return([]hierarchy.Node{{ID: s1.ID.String(), Code: "S1", PositionCode: "SBM", Level: 7}}, nil)
		deps.employees.EXPECT().DirectSubordinates(ctx, companyID, s1.ID.String()).Return(nil, nil)
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Import(ctx, companyID, req, buf)
		assert.ErrorIs(t, err, bulkimporterrors.ErrHierarchyRejected)
	})

	t.Run("subordinate outranking the new position rolls back", func(t *testing.T) {
		deps := setupServiceTest(t)
		buf := workbook(t, header,
			[]interface{}{"M1", "Mira", "BsM", "", "100", "1"},
		)
		m1 := employee.Employee{ID: uuid.New(), Code: "M1", PositionCode: "BsM"}

		// posisi tidak berubah saat validasi, jadi validator tidak memeriksa bawahan
		deps.employees.EXPECT().FindByCodes(ctx, companyID, []string{"M1"}).Return([]employee.Employee{m1}, nil)
		deps.sqlMock.ExpectBegin()
		deps.employees.EXPECT().WithTx(gomock.Any()).Return(deps.employees)
		deps.employees.EXPECT().UpsertByCode(ctx, gomock.Any()).Return(nil)
		deps.employees.EXPECT().FindByCodes(ctx, companyID, []string{"M1"}).Return([]employee.Employee{m1}, nil)
		deps.employees.EXPECT().UpdateManager(ctx, companyID, m1.ID.String(), nil).Return(nil)
		// bawahan yang ditautkan bersamaan di store sudah setara BsM
		deps.employees.EXPECT().DirectSubordinates(ctx, companyID, m1.ID.String()).
			Return([]hierarchy.Node{{ID: uuid.NewString(), Code: "S9", PositionCode: "BsM", Level: 8}}, nil)
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Import(ctx, companyID, req, buf)

		require.ErrorIs(t, err, bulkimporterrors.ErrHierarchyRejected)
		var appErr *apperror.AppError
		require.True(t, errors.As(err, &appErr))
		detail, ok := appErr.Details.(bulkimport.RowError)
		require.True(t, ok)
		assert.Equal(t, bulkimport.ColPosition, detail.Field)
		assert.Contains(t, detail.Reason, "subordinate S9")
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}
