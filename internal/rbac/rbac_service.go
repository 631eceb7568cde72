package rbac

import (
	"context"
	"strings"
	"sync"
	"time"

	"aisg-audit/internal/domain"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

// policyTTL jarak maksimum sebelum izin company dibaca ulang dari DB.
const policyTTL = 5 * time.Minute

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	LoadCompanyPolicy(ctx context.Context, companyID string) error
	Enforce(req domain.EnforceRequest) (bool, error)
	ListPermissions(ctx context.Context, companyID, role string) ([]domain.PermissionResponse, error)
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	logger   *zap.Logger
	now      func() time.Time

	mu     sync.Mutex
	loaded map[string]time.Time
}

func NewService(repo Repository, enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}

	s := &service{
		repo:     repo,
		enforcer: enforcer,
		logger:   l,
		now:      time.Now,
		loaded:   make(map[string]time.Time),
	}

	rules := make([][]string, 0, len(defaultPolicies))
	for _, p := range defaultPolicies {
		rules = append(rules, []string{p.Role, AnyDomain, p.Resource, p.Action})
	}
	if _, err := enforcer.AddPolicies(rules); err != nil {
		l.Error("load default rbac policy failed", zap.Error(err))
	}
	return s
}

func (s *service) LoadCompanyPolicy(ctx context.Context, companyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadCompanyPolicyUnlocked(ctx, companyID)
}

func (s *service) loadCompanyPolicyUnlocked(ctx context.Context, companyID string) error {
	rows, err := s.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return err
	}

	if _, err := s.enforcer.RemoveFilteredPolicy(1, companyID); err != nil {
		return err
	}

	rules := make([][]string, 0, len(rows))
	for _, rp := range rows {
		rules = append(rules, []string{normalizeRole(rp.Role), companyID, rp.Resource, rp.Action})
	}
	if len(rules) > 0 {
		if _, err := s.enforcer.AddPolicies(rules); err != nil {
			return err
		}
	}

	s.loaded[companyID] = s.now()
	s.logger.Debug("rbac company policy loaded",
		zap.String("company_id", companyID),
		zap.Int("role_permissions", len(rows)),
	)
	return nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	role := normalizeRole(req.Role)
	if role == "" || req.CompanyID == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if at, ok := s.loaded[req.CompanyID]; !ok || s.now().Sub(at) > policyTTL {
		if err := s.loadCompanyPolicyUnlocked(context.Background(), req.CompanyID); err != nil {
			return false, err
		}
	}

	allowed, err := s.enforcer.Enforce(role, req.CompanyID, req.Resource, req.Action)
	if err != nil {
		return false, err
	}

	if !allowed {
		s.logger.Info("rbac denied",
			zap.String("role", role),
			zap.String("employee_id", req.EmployeeID),
			zap.String("company_id", req.CompanyID),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
		)
	}
	return allowed, nil
}

func (s *service) ListPermissions(ctx context.Context, companyID, role string) ([]domain.PermissionResponse, error) {
	role = normalizeRole(role)

	var out []domain.PermissionResponse
	for _, p := range defaultPolicies {
		if p.Role == role {
			out = append(out, domain.PermissionResponse{Role: role, Resource: p.Resource, Action: p.Action, Source: "default"})
		}
	}

	rows, err := s.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	for _, rp := range rows {
		if normalizeRole(rp.Role) == role {
			out = append(out, domain.PermissionResponse{Role: role, Resource: rp.Resource, Action: rp.Action, Source: "company"})
		}
	}
	return out, nil
}

func normalizeRole(role string) string {
	return strings.ToUpper(strings.TrimSpace(role))
}
