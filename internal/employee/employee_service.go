package employee

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	employeeerrors "aisg-audit/internal/employee/errors"
	"aisg-audit/internal/events"
	"aisg-audit/internal/hierarchy"
	"aisg-audit/internal/messaging/kafka"
	"aisg-audit/internal/position"
	"aisg-audit/internal/shared/contextutil"
	"aisg-audit/internal/shared/counter"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const EmployeeOptionsKeyPrefix = "employees:options:"

func GetEmployeeOptionsKey(companyID string) string {
	return EmployeeOptionsKeyPrefix + companyID
}

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID string, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context, companyID string) ([]EmployeeResponse, error)
	GetOptions(ctx context.Context, companyID string) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, companyID, id string) (EmployeeResponse, error)
	GetSubordinates(ctx context.Context, companyID, id string, recursive bool) ([]SubordinateResponse, error)
	Update(ctx context.Context, companyID, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, companyID, id string) error
}

type service struct {
	db      *sql.DB
	repo    Repository
	counter counter.Repository
	outbox  kafka.OutboxRepository
	rdb     *redis.Client
	sf      *singleflight.Group
	logger  *zap.Logger
}

func NewService(db *sql.DB, repo Repository, counter counter.Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, counter, nil, rdb, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	counter counter.Repository,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:      db,
		repo:    repo,
		counter: counter,
		outbox:  outboxRepo,
		rdb:     rdb,
		sf:      &singleflight.Group{},
		logger:  l}
}

func (s *service) Create(
	ctx context.Context,
	companyID string,
	req CreateEmployeeRequest,
) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("company_id", companyID),
		zap.String("position_code", req.PositionCode),
	)

	pos, ok := position.Lookup(req.PositionCode)
	if !ok {
		return EmployeeResponse{}, employeeerrors.ErrInvalidPosition
	}
	birthDate, err := parseOptionalDate(req.BirthDate)
	if err != nil {
		return EmployeeResponse{}, err
	}
	joinedAt, err := parseOptionalDate(req.JoinedAt)
	if err != nil {
		return EmployeeResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create employee begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	code := strings.TrimSpace(req.Code)
	if code == "" {
		nextVal, err := s.counter.WithTx(tx).GetNextValue(ctx, companyID, counter.TypeEmployeeCode)
		if err != nil {
			s.logger.Error("create employee generate code failed", zap.Error(err))
			return EmployeeResponse{}, err
		}
		code = counter.FormatEmployeeCode(nextVal)
	}

	empl := &Employee{
		ID:           uuid.New(),
		CompanyID:    uuid.MustParse(companyID),
		Code:         code,
		FullName:     strings.TrimSpace(req.FullName),
		Email:        strings.TrimSpace(req.Email),
		PositionCode: pos.Code,
		BranchID:     uuidPtr(req.BranchID),
		CEOUnitID:    uuidPtr(req.CEOUnitID),
		BirthDate:    birthDate,
		JoinedAt:     time.Now().UTC(),
		Status:       StatusActive,
	}
	if joinedAt != nil {
		empl.JoinedAt = *joinedAt
	}

	if req.ManagerID != "" {
		// employee baru: cukup cek rank, belum mungkin ada siklus
		if err := s.validateManager(ctx, qtx, companyID, hierarchy.Node{Level: pos.Level}, req.ManagerID); err != nil {
			return EmployeeResponse{}, err
		}
		empl.ManagerID = uuidPtr(req.ManagerID)
	}

	if err := qtx.Create(ctx, empl); err != nil {
		s.logger.Error("create employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := s.enqueue(ctx, tx, empl, events.EmployeeCreated); err != nil {
		return EmployeeResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("commit failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.invalidateOptions(ctx, companyID)
	s.logger.Info("create employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", empl.ID.String()),
		zap.String("code", empl.Code),
	)

	return mapToResponse(*empl), nil
}

func (s *service) GetAll(
	ctx context.Context,
	companyID string,
) ([]EmployeeResponse, error) {
	s.logger.Debug("get all employees requested", zap.String("company_id", companyID))
	empls, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		s.logger.Error("get all employees failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	return mapToListResponse(empls), nil
}

func (s *service) GetOptions(ctx context.Context, companyID string) ([]EmployeeResponse, error) {
	cacheKey := GetEmployeeOptionsKey(companyID)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp []EmployeeResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	// Singleflight untuk dropdown atasan saat import/form dibuka bersamaan
	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		empls, err := s.repo.FindOptionsByCompany(ctx, companyID)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := mapToListResponse(empls)

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, cacheKey, jsonData, 1*time.Hour)
			}
		}

		return resp, nil
	})

	if err != nil {
		return nil, err
	}

	return v.([]EmployeeResponse), nil
}

func (s *service) GetByID(
	ctx context.Context,
	companyID, id string,
) (EmployeeResponse, error) {
	empl, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		s.logger.Warn("get employee by id failed", zap.String("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*empl), nil
}

func (s *service) GetSubordinates(
	ctx context.Context,
	companyID, id string,
	recursive bool,
) ([]SubordinateResponse, error) {
	if _, err := s.repo.FindByIDAndCompany(ctx, companyID, id); err != nil {
		return nil, mapRepositoryError(err)
	}

	walker := hierarchy.NewWalker(s.repo)
	var (
		nodes []hierarchy.Node
		err   error
	)
	if recursive {
		nodes, err = walker.AllSubordinates(ctx, companyID, id)
	} else {
		nodes, err = walker.DirectSubordinates(ctx, companyID, id)
	}
	if err != nil {
		s.logger.Error("get subordinates failed",
			zap.String("employee_id", id),
			zap.Bool("recursive", recursive),
			zap.Error(err),
		)
		return nil, err
	}

	resp := make([]SubordinateResponse, len(nodes))
	for i, n := range nodes {
		resp[i] = SubordinateResponse{
			ID:           n.ID,
			Code:         n.Code,
			FullName:     n.FullName,
			PositionCode: n.PositionCode,
			Level:        n.Level,
			ManagerID:    n.ManagerID,
		}
	}
	return resp, nil
}

func (s *service) Update(
	ctx context.Context,
	companyID, id string,
	req UpdateEmployeeRequest,
) (EmployeeResponse, error) {
	s.logger.Debug("update employee requested",
		zap.String("company_id", companyID),
		zap.String("employee_id", id),
		zap.String("position_code", req.PositionCode),
	)

	pos, ok := position.Lookup(req.PositionCode)
	if !ok {
		return EmployeeResponse{}, employeeerrors.ErrInvalidPosition
	}
	birthDate, err := parseOptionalDate(req.BirthDate)
	if err != nil {
		return EmployeeResponse{}, err
	}
	joinedAt, err := parseOptionalDate(req.JoinedAt)
	if err != nil {
		return EmployeeResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update employee begin tx failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	empl, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	// posisi baru tetap harus di atas semua bawahan langsung
	subs, err := qtx.DirectSubordinates(ctx, companyID, id)
	if err != nil {
		return EmployeeResponse{}, err
	}
	for _, sub := range subs {
		if sub.Level <= pos.Level {
			s.logger.Info("update employee rank rejected",
				zap.String("employee_id", id),
				zap.String("subordinate_id", sub.ID),
			)
			return EmployeeResponse{}, employeeerrors.ErrRankBelowSubordinates
		}
	}

	empl.ManagerID = nil
	if req.ManagerID != "" {
		self := ToNode(*empl)
		self.Level = pos.Level
		if err := s.validateManager(ctx, qtx, companyID, self, req.ManagerID); err != nil {
			return EmployeeResponse{}, err
		}
		empl.ManagerID = uuidPtr(req.ManagerID)
	}

	empl.FullName = strings.TrimSpace(req.FullName)
	empl.Email = strings.TrimSpace(req.Email)
	empl.PositionCode = pos.Code
	empl.BranchID = uuidPtr(req.BranchID)
	empl.CEOUnitID = uuidPtr(req.CEOUnitID)
	empl.BirthDate = birthDate
	if joinedAt != nil {
		empl.JoinedAt = *joinedAt
	}
	if req.Status != "" {
		empl.Status = req.Status
	}

	if err := qtx.Update(ctx, empl); err != nil {
		s.logger.Error("update employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := s.enqueue(ctx, tx, empl, events.EmployeeUpdated); err != nil {
		return EmployeeResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update employee commit failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.invalidateOptions(ctx, companyID)
	s.logger.Info("update employee success", zap.String("employee_id", id))

	return mapToResponse(*empl), nil
}

func (s *service) Delete(
	ctx context.Context,
	companyID, id string,
) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("delete employee begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	empl, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return mapRepositoryError(err)
	}

	count, err := qtx.CountDirectSubordinates(ctx, companyID, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return employeeerrors.ErrHasSubordinates
	}

	if err := qtx.Delete(ctx, companyID, id); err != nil {
		s.logger.Error("delete employee failed", zap.Error(err))
		return mapRepositoryError(err)
	}

	if err := s.enqueue(ctx, tx, empl, events.EmployeeDeleted); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("delete employee commit failed", zap.Error(err))
		return err
	}

	s.invalidateOptions(ctx, companyID)
	s.logger.Info("delete employee success", zap.String("employee_id", id))
	return nil
}

func (s *service) validateManager(
	ctx context.Context,
	qtx Repository,
	companyID string,
	self hierarchy.Node,
	managerID string,
) error {
	mgr, err := qtx.FindByIDAndCompany(ctx, companyID, managerID)
	if err != nil {
		if errors.Is(mapRepositoryError(err), employeeerrors.ErrEmployeeNotFound) {
			return employeeerrors.ErrManagerNotFound
		}
		return err
	}

	walker := hierarchy.NewWalker(qtx)
	if err := walker.ValidateManager(ctx, companyID, self, ToNode(*mgr)); err != nil {
		s.logger.Info("manager link rejected",
			zap.String("employee_id", self.ID),
			zap.String("manager_id", managerID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *service) enqueue(ctx context.Context, tx *sql.Tx, empl *Employee, eventType string) error {
	if s.outbox == nil {
		return nil
	}
	rid := contextutil.GetRequestID(ctx)

	event := events.EmployeeLifecycleEvent{
		EventType:  eventType,
		RequestID:  rid,
		EmployeeID: empl.ID.String(),
		CompanyID:  empl.CompanyID.String(),
		ManagerID:  uuidToString(empl.ManagerID),
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "employee",
		AggregateID:   empl.ID.String(),
		EventType:     eventType,
		Topic:         events.EmployeeLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("employee outbox persist failed",
			zap.String("employee_id", empl.ID.String()),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *service) invalidateOptions(ctx context.Context, companyID string) {
	if s.rdb == nil {
		return
	}
	cacheKey := GetEmployeeOptionsKey(companyID)
	if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate employee options cache",
			zap.Error(err),
			zap.String("key", cacheKey),
		)
	}
}

func mapToResponse(empl Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:            empl.ID.String(),
		CompanyID:     empl.CompanyID.String(),
		Code:          empl.Code,
		FullName:      empl.FullName,
		Email:         empl.Email,
		PositionCode:  empl.PositionCode,
		PositionLevel: position.LevelOf(empl.PositionCode),
		ManagerID:     uuidToString(empl.ManagerID),
		BranchID:      uuidToString(empl.BranchID),
		CEOUnitID:     uuidToString(empl.CEOUnitID),
		Status:        empl.Status,
	}
	if empl.BirthDate != nil {
		resp.BirthDate = empl.BirthDate.Format("2006-01-02")
	}
	if !empl.JoinedAt.IsZero() {
		resp.JoinedAt = empl.JoinedAt.Format("2006-01-02")
	}
	return resp
}

func mapToListResponse(empls []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, len(empls))
	for i, e := range empls {
		res[i] = mapToResponse(e)
	}
	return res
}

func parseOptionalDate(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, employeeerrors.ErrInvalidDate
	}
	return &t, nil
}

func uuidPtr(v string) *uuid.UUID {
	id, err := uuid.Parse(v)
	if err != nil {
		return nil
	}
	return &id
}

func uuidToString(v *uuid.UUID) string {
	if v == nil {
		return ""
	}
	return v.String()
}
