package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"aisg-audit/internal/aggregation"
	auditerrors "aisg-audit/internal/audit/errors"
	"aisg-audit/internal/employee"
	"aisg-audit/internal/events"
	"aisg-audit/internal/hierarchy"
	"aisg-audit/internal/messaging/kafka"
	"aisg-audit/internal/narrative"
	"aisg-audit/internal/performance"
	"aisg-audit/internal/scoring"
	"aisg-audit/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

//go:generate mockgen -source=audit_service.go -destination=mock/audit_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID string, actor Actor, req CreateAuditRequest) (CreateAuditResponse, error)
	GetAll(ctx context.Context, companyID string, actor Actor, filter ListFilter) ([]AuditResponse, error)
	GetByID(ctx context.Context, companyID string, actor Actor, id string) (AuditResponse, error)
	RefreshAggregation(ctx context.Context, companyID string, actor Actor, id string) (AuditResponse, error)
	RegenerateReport(ctx context.Context, companyID string, actor Actor, id string) (AuditResponse, error)
	RenderReportPDF(ctx context.Context, companyID string, actor Actor, id string) ([]byte, string, error)
	SoftDelete(ctx context.Context, companyID string, actor Actor, id string, reason string) error
	HardDelete(ctx context.Context, companyID string, actor Actor, id string) error
	RefreshManagerAggregation(ctx context.Context, event events.AuditLifecycleEvent) error
}

type service struct {
	db           *sql.DB
	repo         Repository
	employees    employee.Repository
	performances performance.Repository
	aggregator   *aggregation.Aggregator
	writer       narrative.Writer
	outbox       kafka.OutboxRepository
	now          func() time.Time
	logger       *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	employees employee.Repository,
	performances performance.Repository,
	writer narrative.Writer,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("audit.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit.service")
	}
	if writer == nil {
		writer = narrative.NewTieredWriter(nil, "", "", narrative.WithLogger(l))
	}
	return &service{
		db:           db,
		repo:         repo,
		employees:    employees,
		performances: performances,
		aggregator:   aggregation.NewAggregator(employees, repo, l),
		writer:       writer,
		outbox:       outbox,
		now:          time.Now,
		logger:       l,
	}
}

func (s *service) Create(ctx context.Context, companyID string, actor Actor, req CreateAuditRequest) (CreateAuditResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	answers := make([]scoring.Answer, len(req.Pillars))
	for i, p := range req.Pillars {
		answers[i] = scoring.Answer{PillarID: p.PillarID, Category: p.Category, Score: p.Score, Notes: p.Notes}
	}
	if err := scoring.ValidateAnswers(answers); err != nil {
		return CreateAuditResponse{}, err
	}

	empl, err := s.findEmployee(ctx, companyID, req.EmployeeID)
	if err != nil {
		return CreateAuditResponse{}, err
	}
	if err := s.authorize(ctx, companyID, actor, req.EmployeeID); err != nil {
		return CreateAuditResponse{}, err
	}

	_, err = s.repo.FindByEmployeePeriod(ctx, companyID, req.EmployeeID, req.Year, req.Quarter)
	if err == nil {
		return CreateAuditResponse{}, auditerrors.ErrAuditAlreadyExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return CreateAuditResponse{}, err
	}

	rows, err := s.performances.FindByEmployeeQuarter(ctx, companyID, req.EmployeeID, req.Year, req.Quarter)
	if err != nil {
		return CreateAuditResponse{}, err
	}
	personal := performance.Summarize(rows, req.Quarter)
	if !personal.Complete() {
		return CreateAuditResponse{}, auditerrors.ErrIncompletePerformance.
			WithMessage(fmt.Sprintf("Missing performance data for months %v", personal.MissingMonths)).
			WithDetails(map[string]any{"missing_months": personal.MissingMonths})
	}

	agg, err := s.aggregator.Aggregate(ctx, companyID, req.EmployeeID, req.Year, req.Quarter)
	if err != nil {
		return CreateAuditResponse{}, err
	}

	metrics := scoring.Metrics{
		PersonalMargin: personal.Margin,
		PersonalNA:     personal.NA,
		TeamMargin:     agg.TeamMargin,
		TeamNA:         agg.TeamNA,
	}
	target, err := s.resolveTarget(ctx, companyID, req.EmployeeID, req.Year, req.Quarter, agg.TotalSubordinates)
	if err != nil {
		return CreateAuditResponse{}, err
	}
	tenure := TenureMonths(empl.JoinedAt, req.Year, req.Quarter)

	result, err := scoring.Classify(scoring.Input{
		Answers:      answers,
		Metrics:      metrics,
		Target:       target,
		TenureMonths: tenure,
		TeamSize:     agg.TotalSubordinates,
		Coverage:     agg.Coverage,
	})
	if err != nil {
		return CreateAuditResponse{}, err
	}

	nar := s.writeNarrative(ctx, narrative.Request{
		EmployeeName:   empl.FullName,
		EmployeeCode:   empl.Code,
		PositionCode:   empl.PositionCode,
		Year:           req.Year,
		Quarter:        req.Quarter,
		Metrics:        metrics,
		Target:         target,
		Coverage:       agg.Coverage,
		TeamSize:       agg.TotalSubordinates,
		Warnings:       agg.Warnings,
		Classification: result,
	})

	now := s.now().UTC()
	audit := &Audit{
		ID:             uuid.New(),
		CompanyID:      empl.CompanyID,
		EmployeeID:     empl.ID,
		Year:           req.Year,
		Quarter:        req.Quarter,
		PersonalMargin: metrics.PersonalMargin,
		PersonalNA:     metrics.PersonalNA,
		Target:         datatypes.NewJSONType(target),
		TargetSource:   target.Source,
		TenureMonths:   tenure,
		CreatedBy:      parseUUIDPtr(actor.UserID),
	}
	applyAggregation(audit, agg, now)
	applyClassification(audit, result, nar)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return CreateAuditResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Create(ctx, audit); err != nil {
		return CreateAuditResponse{}, mapRepositoryError(err)
	}
	if err := s.enqueue(ctx, tx, audit, uuidToString(empl.ManagerID), events.AuditCreated, 0); err != nil {
		return CreateAuditResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return CreateAuditResponse{}, mapRepositoryError(err)
	}

	log.Info("audit created",
		zap.String("audit_id", audit.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.String("zona_final", audit.ZonaFinal),
		zap.String("narrative_source", audit.NarrativeSource),
	)

	return CreateAuditResponse{
		Audit:               toResponse(*audit),
		Warnings:            nonNilStrings(agg.Warnings),
		PendingSubordinates: nonNilPending(agg.PendingSubordinates),
	}, nil
}

func (s *service) GetAll(ctx context.Context, companyID string, actor Actor, filter ListFilter) ([]AuditResponse, error) {
	ids, err := s.visibleEmployeeIDs(ctx, companyID, actor)
	if err != nil {
		return nil, err
	}
	filter.EmployeeIDs = ids

	audits, err := s.repo.FindAll(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}
	res := make([]AuditResponse, len(audits))
	for i, a := range audits {
		res[i] = toResponse(a)
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, companyID string, actor Actor, id string) (AuditResponse, error) {
	a, err := s.findAuthorized(ctx, companyID, actor, id)
	if err != nil {
		return AuditResponse{}, err
	}
	return toResponse(*a), nil
}

// RefreshAggregation hanya menghitung ulang angka tim, coverage dan struktur.
// Klasifikasi tetap seperti saat dibuat; gunakan RegenerateReport untuk itu.
func (s *service) RefreshAggregation(ctx context.Context, companyID string, actor Actor, id string) (AuditResponse, error) {
	a, err := s.findAuthorized(ctx, companyID, actor, id)
	if err != nil {
		return AuditResponse{}, err
	}
	if _, err := s.refresh(ctx, a, 0); err != nil {
		return AuditResponse{}, err
	}
	return toResponse(*a), nil
}

func (s *service) RegenerateReport(ctx context.Context, companyID string, actor Actor, id string) (AuditResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	a, err := s.findAuthorized(ctx, companyID, actor, id)
	if err != nil {
		return AuditResponse{}, err
	}
	empl, err := s.findEmployee(ctx, companyID, a.EmployeeID.String())
	if err != nil {
		return AuditResponse{}, err
	}

	target := a.Target.Data()
	result, err := scoring.Classify(scoring.Input{
		Answers:      a.Answers(),
		Metrics:      a.Metrics(),
		Target:       target,
		TenureMonths: a.TenureMonths,
		TeamSize:     a.TeamSize,
		Coverage:     a.Coverage,
	})
	if err != nil {
		return AuditResponse{}, err
	}

	nar := s.writeNarrative(ctx, narrative.Request{
		EmployeeName:   empl.FullName,
		EmployeeCode:   empl.Code,
		PositionCode:   empl.PositionCode,
		Year:           a.Year,
		Quarter:        a.Quarter,
		Metrics:        a.Metrics(),
		Target:         target,
		Coverage:       a.Coverage,
		TeamSize:       a.TeamSize,
		Warnings:       a.Warnings.Data(),
		Classification: result,
	})
	applyClassification(a, result, nar)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AuditResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Save(ctx, a); err != nil {
		return AuditResponse{}, mapRepositoryError(err)
	}
	if err := qtx.ReplacePillars(ctx, a.ID, a.Pillars); err != nil {
		return AuditResponse{}, err
	}
	if err := s.enqueue(ctx, tx, a, uuidToString(empl.ManagerID), events.AuditRegenerated, 0); err != nil {
		return AuditResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return AuditResponse{}, err
	}

	log.Info("audit report regenerated",
		zap.String("audit_id", a.ID.String()),
		zap.String("narrative_source", a.NarrativeSource),
	)
	return toResponse(*a), nil
}

func (s *service) RenderReportPDF(ctx context.Context, companyID string, actor Actor, id string) ([]byte, string, error) {
	a, err := s.findAuthorized(ctx, companyID, actor, id)
	if err != nil {
		return nil, "", err
	}
	empl, err := s.findEmployee(ctx, companyID, a.EmployeeID.String())
	if err != nil {
		return nil, "", err
	}

	data, err := renderReport(*a, empl)
	if err != nil {
		s.logger.Error("render audit pdf failed", zap.String("audit_id", id), zap.Error(err))
		return nil, "", err
	}
	filename := fmt.Sprintf("audit_%s_%dQ%d.pdf", empl.Code, a.Year, a.Quarter)
	return data, filename, nil
}

func (s *service) SoftDelete(ctx context.Context, companyID string, actor Actor, id string, reason string) error {
	a, err := s.findAuthorized(ctx, companyID, actor, id)
	if err != nil {
		return err
	}
	managerID := s.currentManagerID(ctx, companyID, a.EmployeeID.String())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).SoftDelete(ctx, companyID, id, parseUUIDPtr(actor.UserID), reason); err != nil {
		return mapRepositoryError(err)
	}
	if err := s.enqueue(ctx, tx, a, managerID, events.AuditDeleted, 0); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) HardDelete(ctx context.Context, companyID string, actor Actor, id string) error {
	if !actor.IsAdmin() {
		return auditerrors.ErrHardDeleteForbidden
	}

	a, err := s.repo.FindByIDUnscoped(ctx, companyID, id)
	if err != nil {
		return mapRepositoryError(err)
	}
	managerID := s.currentManagerID(ctx, companyID, a.EmployeeID.String())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).HardDelete(ctx, companyID, id); err != nil {
		return mapRepositoryError(err)
	}
	// audit yang sudah soft-deleted sudah tidak dihitung atasan
	if !a.DeletedAt.Valid {
		if err := s.enqueue(ctx, tx, a, managerID, events.AuditDeleted, 0); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Warn("audit permanently deleted",
		zap.String("audit_id", id),
		zap.String("actor_user_id", actor.UserID),
	)
	return nil
}

// RefreshManagerAggregation dipanggil consumer: perubahan audit bawahan
// menyegarkan audit atasan pada periode yang sama, lalu merambat ke atas
// selama angkanya benar-benar berubah.
func (s *service) RefreshManagerAggregation(ctx context.Context, event events.AuditLifecycleEvent) error {
	log := contextutil.GetLogger(ctx, s.logger).With(
		zap.String("audit_id", event.AuditID),
		zap.String("event_type", event.EventType),
		zap.Int("depth", event.Depth),
	)

	if event.Depth >= hierarchy.DefaultMaxDepth {
		log.Warn("audit propagation depth exceeded, stopping")
		return nil
	}

	managerID := s.currentManagerID(ctx, event.CompanyID, event.EmployeeID)
	if managerID == "" {
		managerID = event.ManagerID
	}
	if managerID == "" {
		return nil
	}

	a, err := s.repo.FindByEmployeePeriod(ctx, event.CompanyID, managerID, event.Year, event.Quarter)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Debug("manager has no audit for period", zap.String("manager_id", managerID))
		return nil
	}
	if err != nil {
		return err
	}

	changed, err := s.refresh(ctx, a, event.Depth+1)
	if err != nil {
		return err
	}
	log.Info("manager audit aggregation refreshed",
		zap.String("manager_audit_id", a.ID.String()),
		zap.Bool("changed", changed),
	)
	return nil
}

func (s *service) refresh(ctx context.Context, a *Audit, depth int) (bool, error) {
	companyID := a.CompanyID.String()
	agg, err := s.aggregator.Aggregate(ctx, companyID, a.EmployeeID.String(), a.Year, a.Quarter)
	if err != nil {
		return false, err
	}

	changed := aggregationChanged(a, agg)
	applyAggregation(a, agg, s.now().UTC())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Save(ctx, a); err != nil {
		return false, mapRepositoryError(err)
	}
	if changed {
		managerID := s.currentManagerID(ctx, companyID, a.EmployeeID.String())
		if err := s.enqueue(ctx, tx, a, managerID, events.AuditAggregationRefreshed, depth); err != nil {
			return false, err
		}
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return changed, nil
}

// resolveTarget: audit kuartal sebelumnya, lalu data bulanan kuartal
// sebelumnya (hanya untuk karyawan tanpa bawahan), lalu baseline default.
func (s *service) resolveTarget(ctx context.Context, companyID, employeeID string, year, quarter, teamSize int) (scoring.Target, error) {
	py, pq := PreviousQuarter(year, quarter)

	prior, err := s.repo.FindByEmployeePeriod(ctx, companyID, employeeID, py, pq)
	if err == nil {
		return scoring.TargetFromPrior(prior.Metrics(), teamSize), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return scoring.Target{}, err
	}

	if teamSize == 0 {
		rows, err := s.performances.FindByEmployeeQuarter(ctx, companyID, employeeID, py, pq)
		if err != nil {
			return scoring.Target{}, err
		}
		if len(rows) > 0 {
			sum := performance.Summarize(rows, pq)
			return scoring.TargetFromPrior(scoring.Metrics{PersonalMargin: sum.Margin, PersonalNA: sum.NA}, 0), nil
		}
	}
	return scoring.DefaultTarget(teamSize), nil
}

func (s *service) writeNarrative(ctx context.Context, req narrative.Request) narrative.Narrative {
	nar, err := s.writer.Write(ctx, req)
	if err != nil || nar.Text == "" {
		s.logger.Warn("narrative writer failed, using template", zap.Error(err))
		return narrative.Narrative{Text: narrative.Template(req), Source: narrative.SourceTemplate}
	}
	return nar
}

func (s *service) findAuthorized(ctx context.Context, companyID string, actor Actor, id string) (*Audit, error) {
	a, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if err := s.authorize(ctx, companyID, actor, a.EmployeeID.String()); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) findEmployee(ctx context.Context, companyID, id string) (*employee.Employee, error) {
	empl, err := s.employees.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auditerrors.ErrEmployeeNotFound
		}
		return nil, err
	}
	return empl, nil
}

func (s *service) currentManagerID(ctx context.Context, companyID, employeeID string) string {
	empl, err := s.employees.FindByIDAndCompany(ctx, companyID, employeeID)
	if err != nil {
		return ""
	}
	return uuidToString(empl.ManagerID)
}

func (s *service) enqueue(ctx context.Context, tx *sql.Tx, a *Audit, managerID, eventType string, depth int) error {
	if s.outbox == nil {
		return nil
	}
	rid := contextutil.GetRequestID(ctx)

	event := events.AuditLifecycleEvent{
		EventType:  eventType,
		RequestID:  rid,
		AuditID:    a.ID.String(),
		EmployeeID: a.EmployeeID.String(),
		ManagerID:  managerID,
		CompanyID:  a.CompanyID.String(),
		Year:       a.Year,
		Quarter:    a.Quarter,
		Depth:      depth,
		OccurredAt: s.now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "audit",
		AggregateID:   a.ID.String(),
		EventType:     eventType,
		Topic:         events.AuditLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("audit outbox persist failed",
			zap.String("audit_id", a.ID.String()),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func applyAggregation(a *Audit, agg aggregation.Result, at time.Time) {
	a.TeamMargin = agg.TeamMargin
	a.TeamNA = agg.TeamNA
	a.TeamSize = agg.TotalSubordinates
	a.Coverage = agg.Coverage
	a.Structure = datatypes.NewJSONType(nonNilStructure(agg.Structure))
	a.Pending = datatypes.NewJSONType(nonNilPending(agg.PendingSubordinates))
	a.Warnings = datatypes.NewJSONType(nonNilStrings(agg.Warnings))
	a.AggregatedAt = at
}

func aggregationChanged(a *Audit, agg aggregation.Result) bool {
	return !a.TeamMargin.Equal(agg.TeamMargin) ||
		a.TeamNA != agg.TeamNA ||
		a.TeamSize != agg.TotalSubordinates ||
		a.Coverage != agg.Coverage ||
		!reflect.DeepEqual(nonNilStructure(a.Structure.Data()), nonNilStructure(agg.Structure))
}

func applyClassification(a *Audit, r scoring.Result, nar narrative.Narrative) {
	a.TotalSelf = r.TotalSelf
	a.TotalReality = r.TotalReality
	a.TotalGap = r.TotalGap
	a.WeightedScore = r.WeightedScore
	a.ZonaKinerja = string(r.ZonaKinerja)
	a.ZonaPerilaku = string(r.ZonaPerilaku)
	a.ZonaFinal = string(r.ZonaFinal)
	a.Profile = string(r.Profile)
	a.ProdemRecommendation = string(r.Prodem.Type)
	a.ProdemDetail = datatypes.NewJSONType(r.Prodem)
	a.Narrative = nar.Text
	a.NarrativeSource = nar.Source

	pillars := make([]AuditPillar, len(r.Pillars))
	for i, p := range r.Pillars {
		pillars[i] = AuditPillar{
			ID:       uuid.New(),
			AuditID:  a.ID,
			PillarID: p.PillarID,
			Category: string(p.Category),
			Self:     p.Self,
			Reality:  p.Reality,
			Gap:      p.Gap,
			Notes:    p.Notes,
		}
	}
	a.Pillars = pillars
}

// TenureMonths menghitung masa kerja penuh sampai hari terakhir kuartal audit,
// sehingga hasilnya tidak bergantung pada kapan audit dibuat.
func TenureMonths(joinedAt time.Time, year, quarter int) int {
	if joinedAt.IsZero() {
		return 0
	}
	end := time.Date(year, time.Month(quarter*3)+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	months := (end.Year()-joinedAt.Year())*12 + int(end.Month()) - int(joinedAt.Month())
	if end.Day() < joinedAt.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

func PreviousQuarter(year, quarter int) (int, int) {
	if quarter <= 1 {
		return year - 1, 4
	}
	return year, quarter - 1
}

func parseUUIDPtr(v string) *uuid.UUID {
	id, err := uuid.Parse(v)
	if err != nil {
		return nil
	}
	return &id
}

func uuidToString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func nonNilPending(v []aggregation.PendingSubordinate) []aggregation.PendingSubordinate {
	if v == nil {
		return []aggregation.PendingSubordinate{}
	}
	return v
}

func nonNilStructure(v []aggregation.RoleCount) []aggregation.RoleCount {
	if v == nil {
		return []aggregation.RoleCount{}
	}
	return v
}
