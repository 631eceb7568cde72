package bulkimport

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	bulkimporterrors "aisg-audit/internal/bulkimport/errors"
	"aisg-audit/internal/employee"
	"aisg-audit/internal/events"
	"aisg-audit/internal/hierarchy"
	"aisg-audit/internal/messaging/kafka"
	"aisg-audit/internal/performance"
	"aisg-audit/internal/position"
	"aisg-audit/internal/shared/apperror"
	"aisg-audit/internal/shared/contextutil"
	"aisg-audit/internal/shared/numeric"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Service interface {
	Import(ctx context.Context, companyID string, req ImportRequest, file io.Reader) (ImportResponse, error)
	Validate(ctx context.Context, companyID string, rows []Row) (Result, error)
}

type service struct {
	db           *sql.DB
	employees    employee.Repository
	performances performance.Repository
	outbox       kafka.OutboxRepository
	rdb          *redis.Client
	validator    *Validator
	logger       *zap.Logger
}

func NewService(
	db *sql.DB,
	employees employee.Repository,
	performances performance.Repository,
	outbox kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("bulkimport.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("bulkimport.service")
	}
	return &service{
		db:           db,
		employees:    employees,
		performances: performances,
		outbox:       outbox,
		rdb:          rdb,
		validator:    NewValidator(employees, l),
		logger:       l,
	}
}

func (s *service) Validate(ctx context.Context, companyID string, rows []Row) (Result, error) {
	return s.validator.Validate(ctx, companyID, rows)
}

func (s *service) Import(ctx context.Context, companyID string, req ImportRequest, file io.Reader) (ImportResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	rows, err := ReadWorkbook(file)
	if err != nil {
		return ImportResponse{}, err
	}

	result, err := s.validator.Validate(ctx, companyID, rows)
	if err != nil {
		return ImportResponse{}, err
	}
	resp := ImportResponse{Validation: result}

	if req.DryRun {
		return resp, nil
	}
	if !result.IsValid && !req.Partial {
		return resp, bulkimporterrors.ErrValidationFailed.WithDetails(result)
	}

	keep := make(map[int]bool, len(result.ValidRows))
	for _, n := range result.ValidRows {
		keep[n] = true
	}
	commit := make([]Row, 0, len(keep))
	for _, r := range rows {
		if keep[r.RowNumber] {
			commit = append(commit, normalizeRow(r))
		} else {
			resp.SkippedRows = append(resp.SkippedRows, r.RowNumber)
		}
	}
	if len(commit) == 0 {
		return resp, bulkimporterrors.ErrNothingToCommit.WithDetails(result)
	}

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return resp, apperror.InvalidField("company_id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return resp, err
	}
	defer tx.Rollback()

	qEmployees := s.employees.WithTx(tx)

	// pass 1: semua employee dibuat/diperbarui dulu, tanpa manager
	now := time.Now().UTC()
	empls := make([]employee.Employee, len(commit))
	codes := make([]string, len(commit))
	for i, r := range commit {
		empls[i] = employee.Employee{
			ID:           uuid.New(),
			CompanyID:    companyUUID,
			Code:         r.EmployeeCode,
			FullName:     r.Name,
			Email:        r.Email,
			PositionCode: r.Position,
			BirthDate:    parseDate(r.BirthDate),
			JoinedAt:     now,
			Status:       employee.StatusActive,
		}
		codes[i] = r.EmployeeCode
	}
	if err := qEmployees.UpsertByCode(ctx, empls); err != nil {
		return resp, err
	}

	lookup := append([]string{}, codes...)
	for _, r := range commit {
		if r.ManagerCode != "" {
			lookup = append(lookup, r.ManagerCode)
		}
	}
	saved, err := qEmployees.FindByCodes(ctx, companyID, lookup)
	if err != nil {
		return resp, err
	}
	byCode := make(map[string]employee.Employee, len(saved))
	for _, e := range saved {
		byCode[e.Code] = e
	}

	// pass 2: tautan manager; urutan baris dalam sheet tidak berpengaruh
	walker := hierarchy.NewWalker(qEmployees)
	for _, r := range commit {
		empl, ok := byCode[r.EmployeeCode]
		if !ok {
			return resp, fmt.Errorf("imported employee %s not found after upsert", r.EmployeeCode)
		}

		var managerID *uuid.UUID
		if r.ManagerCode != "" {
			mgr, ok := byCode[r.ManagerCode]
			if !ok {
				return resp, bulkimporterrors.ErrHierarchyRejected.WithDetails(RowError{
					Row: r.RowNumber, Code: r.EmployeeCode, Field: ColManagerCode,
					Reason: fmt.Sprintf("manager %s not found", r.ManagerCode),
				})
			}
			empl.PositionCode = r.Position
			if err := walker.ValidateManager(ctx, companyID, employee.ToNode(empl), employee.ToNode(mgr)); err != nil {
				return resp, bulkimporterrors.ErrHierarchyRejected.WithDetails(RowError{
					Row: r.RowNumber, Code: r.EmployeeCode, Field: ColManagerCode, Reason: err.Error(),
				})
			}
			managerID = &mgr.ID
			resp.ManagerLinks++
		}
		if err := qEmployees.UpdateManager(ctx, companyID, empl.ID.String(), managerID); err != nil {
			return resp, err
		}
	}

	// posisi baru tetap harus di atas semua bawahan langsung yang tersisa
	for _, r := range commit {
		level := position.LevelOf(r.Position)
		subs, err := qEmployees.DirectSubordinates(ctx, companyID, byCode[r.EmployeeCode].ID.String())
		if err != nil {
			return resp, err
		}
		for _, sub := range subs {
			if sub.Level > 0 && sub.Level <= level {
				log.Info("import rank rejected",
					zap.String("employee_code", r.EmployeeCode),
					zap.String("subordinate_code", sub.Code),
				)
				return resp, bulkimporterrors.ErrHierarchyRejected.WithDetails(RowError{
					Row: r.RowNumber, Code: r.EmployeeCode, Field: ColPosition,
					Reason: fmt.Sprintf("subordinate %s (level %d) must rank below %s (level %d)", sub.Code, sub.Level, r.Position, level),
				})
			}
		}
	}

	// pass 3: performa bulanan untuk periode request
	perf := make([]performance.MonthlyPerformance, len(commit))
	for i, r := range commit {
		na, _ := numeric.NormalizeCount(r.NA)
		perf[i] = performance.MonthlyPerformance{
			ID:         uuid.New(),
			CompanyID:  companyUUID,
			EmployeeID: byCode[r.EmployeeCode].ID,
			Year:       req.Year,
			Month:      req.Month,
			Quarter:    performance.QuarterOf(req.Month),
			Margin:     numeric.Normalize(r.Margin),
			NA:         na,
			Source:     performance.SourceImport,
		}
	}
	if err := s.performances.WithTx(tx).Upsert(ctx, perf); err != nil {
		return resp, err
	}

	if err := s.enqueue(ctx, tx, companyID, len(commit), req); err != nil {
		return resp, err
	}
	if err := tx.Commit(); err != nil {
		return resp, err
	}

	resp.Committed = true
	resp.EmployeesUpserted = len(commit)
	resp.PerformanceRows = len(perf)

	if s.rdb != nil {
		if err := s.rdb.Del(ctx, employee.GetEmployeeOptionsKey(companyID)).Err(); err != nil {
			log.Warn("failed to invalidate employee options cache", zap.Error(err))
		}
	}

	log.Info("employee import committed",
		zap.String("company_id", companyID),
		zap.Int("employees", resp.EmployeesUpserted),
		zap.Int("manager_links", resp.ManagerLinks),
		zap.Int("skipped", len(resp.SkippedRows)),
		zap.Int("year", req.Year),
		zap.Int("month", req.Month),
	)
	return resp, nil
}

func (s *service) enqueue(ctx context.Context, tx *sql.Tx, companyID string, imported int, req ImportRequest) error {
	if s.outbox == nil {
		return nil
	}
	rid := contextutil.GetRequestID(ctx)

	payload, err := json.Marshal(events.EmployeeLifecycleEvent{
		EventType:  events.EmployeesImported,
		RequestID:  rid,
		CompanyID:  companyID,
		Imported:   imported,
		Year:       req.Year,
		Month:      req.Month,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "company",
		AggregateID:   companyID,
		EventType:     events.EmployeesImported,
		Topic:         events.EmployeeLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func normalizeRow(r Row) Row {
	r.EmployeeCode = strings.TrimSpace(r.EmployeeCode)
	r.ManagerCode = strings.TrimSpace(r.ManagerCode)
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	if p, ok := position.Lookup(r.Position); ok {
		r.Position = p.Code
	}
	return r
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
