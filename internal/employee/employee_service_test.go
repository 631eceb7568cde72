package employee_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"aisg-audit/internal/employee"
	employeeerrors "aisg-audit/internal/employee/errors"
	"aisg-audit/internal/events"
	"aisg-audit/internal/hierarchy"
	hierarchyerrors "aisg-audit/internal/hierarchy/errors"
	"aisg-audit/internal/shared/contextutil"

	employeeMock "aisg-audit/internal/employee/mock"
	"aisg-audit/internal/messaging/kafka"
	kafkaMock "aisg-audit/internal/messaging/kafka/mock"
	counterMock "aisg-audit/internal/shared/counter/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type serviceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	service   employee.Service
	repo      *employeeMock.MockRepository
	counter   *counterMock.MockRepository
	redismock redismock.ClientMock
	outbox    *kafkaMock.MockOutboxRepository
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	db, sqlMock, _ := sqlmock.New()
	dbRedis, redisMock := redismock.NewClientMock()
	repo := employeeMock.NewMockRepository(ctrl)
	counterRepo := counterMock.NewMockRepository(ctrl)
	outboxRepo := kafkaMock.NewMockOutboxRepository(ctrl)

	svc := employee.NewServiceWithOutbox(db, repo, counterRepo, outboxRepo, dbRedis)

	return &serviceDeps{
		db:        db,
		sqlMock:   sqlMock,
		service:   svc,
		repo:      repo,
		counter:   counterRepo,
		outbox:    outboxRepo,
		redismock: redisMock,
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

func TestEmployeeService_Create(t *testing.T) {
	ctx := contextutil.WithRequestID(context.Background(), "req-1")
	companyID := uuid.New().String()

	t.Run("success - auto generate code", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.counter.EXPECT().WithTx(gomock.Any()).Return(deps.counter)
		deps.counter.EXPECT().GetNextValue(ctx, companyID, "employee_code").Return(int64(123), nil)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, e *employee.Employee) error {
			assert.Equal(t, "EMP-000123", e.Code)
			assert.Equal(t, "BC", e.PositionCode)
			assert.Equal(t, employee.StatusActive, e.Status)
			assert.Nil(t, e.ManagerID)
			assert.False(t, e.JoinedAt.IsZero())
			return nil
		})
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, ev kafka.OutboxEvent) error {
			assert.Equal(t, events.EmployeeLifecycleTopic, ev.Topic)
			assert.Equal(t, "req-1", ev.RequestID)

			var payload events.EmployeeLifecycleEvent
			require.NoError(t, json.Unmarshal(ev.Payload, &payload))
			assert.Equal(t, events.EmployeeCreated, payload.EventType)
			return nil
		})
		deps.redismock.ExpectDel(employee.GetEmployeeOptionsKey(companyID)).SetVal(1)

		resp, err := deps.service.Create(ctx, companyID, employee.CreateEmployeeRequest{
			FullName:     "Budi",
			PositionCode: "bc",
		})

		assert.NoError(t, err)
		assert.Equal(t, "EMP-000123", resp.Code)
		assert.Equal(t, 9, resp.PositionLevel)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("unknown position", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Create(ctx, companyID, employee.CreateEmployeeRequest{
			FullName: "X", PositionCode: "CTO",
		})
		assert.ErrorIs(t, err, employeeerrors.ErrInvalidPosition)
	})

	t.Run("manager of lower rank is rejected", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		managerID := uuid.New()
		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByIDAndCompany(ctx, companyID, managerID.String()).
			Return(&employee.Employee{ID: managerID, Code: "M1", PositionCode: "BC"}, nil)

		_, err := deps.service.Create(ctx, companyID, employee.CreateEmployeeRequest{
			Code:         "E1",
			FullName:     "Eka",
			PositionCode: "BsM",
			ManagerID:    managerID.String(),
		})
		assert.ErrorIs(t, err, hierarchyerrors.ErrManagerRankViolation)
	})

	t.Run("missing manager", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		managerID := uuid.New().String()
		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByIDAndCompany(ctx, companyID, managerID).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.Create(ctx, companyID, employee.CreateEmployeeRequest{
			Code: "E1", FullName: "Eka", PositionCode: "BC", ManagerID: managerID,
		})
		assert.ErrorIs(t, err, employeeerrors.ErrManagerNotFound)
	})

	t.Run("duplicate code", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).
			Return(&pgconn.PgError{Code: "23505", ConstraintName: "uq_employee_code"})

		_, err := deps.service.Create(ctx, companyID, employee.CreateEmployeeRequest{
			Code: "E1", FullName: "Eka", PositionCode: "BC",
		})
		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeCodeAlreadyExists)
	})

	t.Run("invalid birth date", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Create(ctx, companyID, employee.CreateEmployeeRequest{
			FullName: "Eka", PositionCode: "BC", BirthDate: "01/02/1990",
		})
		assert.ErrorIs(t, err, employeeerrors.ErrInvalidDate)
	})
}

func TestEmployeeService_Update(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	t.Run("cycle through subordinate is rejected", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		selfID := uuid.New()
		subID := uuid.New()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByIDAndCompany(ctx, companyID, selfID.String()).
			Return(&employee.Employee{ID: selfID, Code: "M", PositionCode: "EM"}, nil)
		// bawahan langsung, level 9 > 5
		deps.repo.EXPECT().DirectSubordinates(ctx, companyID, selfID.String()).
			Return([]hierarchy.Node{{ID: subID.String(), Level: 9}}, nil).AnyTimes()
		deps.repo.EXPECT().FindByIDAndCompany(ctx, companyID, subID.String()).
			Return(&employee.Employee{ID: subID, Code: "S", PositionCode: "CEO"}, nil)
		deps.repo.EXPECT().DirectSubordinates(ctx, companyID, subID.String()).
			Return([]hierarchy.Node{}, nil).AnyTimes()

		_, err := deps.service.Update(ctx, companyID, selfID.String(), employee.UpdateEmployeeRequest{
			FullName:     "Manager",
			PositionCode: "SEM",
			ManagerID:    subID.String(),
		})
		assert.ErrorIs(t, err, hierarchyerrors.ErrCircularReference)
	})

	t.Run("demotion below a subordinate is rejected", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		selfID := uuid.New()
		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByIDAndCompany(ctx, companyID, selfID.String()).
			Return(&employee.Employee{ID: selfID, PositionCode: "SBM"}, nil)
		deps.repo.EXPECT().DirectSubordinates(ctx, companyID, selfID.String()).
			Return([]hierarchy.Node{{ID: "x", Level: 8}}, nil)

		_, err := deps.service.Update(ctx, companyID, selfID.String(), employee.UpdateEmployeeRequest{
			FullName: "Manager", PositionCode: "BsM",
		})
		assert.ErrorIs(t, err, employeeerrors.ErrRankBelowSubordinates)
	})

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		selfID := uuid.New()
		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByIDAndCompany(ctx, companyID, selfID.String()).
			Return(&employee.Employee{ID: selfID, Code: "E", PositionCode: "BC", Status: employee.StatusActive}, nil)
		deps.repo.EXPECT().DirectSubordinates(ctx, companyID, selfID.String()).Return(nil, nil)
		deps.repo.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, e *employee.Employee) error {
			assert.Equal(t, "BsM", e.PositionCode)
			assert.Equal(t, employee.StatusInactive, e.Status)
			return nil
		})
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).Return(nil)
		deps.redismock.ExpectDel(employee.GetEmployeeOptionsKey(companyID)).SetVal(1)

		resp, err := deps.service.Update(ctx, companyID, selfID.String(), employee.UpdateEmployeeRequest{
			FullName: "Promoted", PositionCode: "bsm", Status: employee.StatusInactive,
		})
		assert.NoError(t, err)
		assert.Equal(t, 8, resp.PositionLevel)
	})
}

func TestEmployeeService_Delete(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	id := uuid.New().String()

	t.Run("has subordinates", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByIDAndCompany(ctx, companyID, id).Return(&employee.Employee{}, nil)
		deps.repo.EXPECT().CountDirectSubordinates(ctx, companyID, id).Return(int64(2), nil)

		assert.ErrorIs(t, deps.service.Delete(ctx, companyID, id), employeeerrors.ErrHasSubordinates)
	})

	t.Run("repository failure", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByIDAndCompany(ctx, companyID, id).Return(&employee.Employee{}, nil)
		deps.repo.EXPECT().CountDirectSubordinates(ctx, companyID, id).Return(int64(0), nil)
		deps.repo.EXPECT().Delete(ctx, companyID, id).Return(errors.New("db down"))

		assert.Error(t, deps.service.Delete(ctx, companyID, id))
	})
}

func TestEmployeeService_GetSubordinates(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	deps := setupServiceTest(t)
	defer deps.db.Close()

	deps.repo.EXPECT().FindByIDAndCompany(ctx, companyID, "m").Return(&employee.Employee{}, nil)
	deps.repo.EXPECT().DirectSubordinates(ctx, companyID, "m").
		Return([]hierarchy.Node{{ID: "a", Level: 8}, {ID: "b", Level: 9}}, nil)
	deps.repo.EXPECT().DirectSubordinates(ctx, companyID, "a").
		Return([]hierarchy.Node{{ID: "c", Level: 9}}, nil)
	deps.repo.EXPECT().DirectSubordinates(ctx, companyID, "b").Return(nil, nil)
	deps.repo.EXPECT().DirectSubordinates(ctx, companyID, "c").Return(nil, nil)

	resp, err := deps.service.GetSubordinates(ctx, companyID, "m", true)
	assert.NoError(t, err)
	assert.Len(t, resp, 3)
}

func TestEmployeeService_GetOptions(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	t.Run("cache hit", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		cached, _ := json.Marshal([]employee.EmployeeResponse{{ID: "1", Code: "E1"}})
		deps.redismock.ExpectGet(employee.GetEmployeeOptionsKey(companyID)).SetVal(string(cached))

		resp, err := deps.service.GetOptions(ctx, companyID)
		assert.NoError(t, err)
		assert.Equal(t, "E1", resp[0].Code)
	})

	t.Run("cache miss loads from repository", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		key := employee.GetEmployeeOptionsKey(companyID)
		deps.redismock.ExpectGet(key).RedisNil()
		deps.repo.EXPECT().FindOptionsByCompany(ctx, companyID).
			Return([]employee.Employee{{ID: uuid.New(), Code: "E2", PositionCode: "BC"}}, nil)
		deps.redismock.Regexp().ExpectSet(key, `.*`, time.Hour).SetVal("OK")

		resp, err := deps.service.GetOptions(ctx, companyID)
		assert.NoError(t, err)
		assert.Equal(t, "E2", resp[0].Code)
	})
}
