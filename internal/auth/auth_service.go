package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	autherrors "aisg-audit/internal/auth/errors"
	"aisg-audit/internal/auth/token"
	"aisg-audit/internal/employee"
	"aisg-audit/internal/rbac"
	"aisg-audit/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, resp AuthResponse, err error)
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken, newRefreshToken string, resp AuthResponse, err error)
	GetMe(ctx context.Context, userID string) (*AuthResponse, error)
	Register(ctx context.Context, companyID string, req RegisterRequest) (AuthResponse, error)
}

type service struct {
	repo         Repository
	rbac         rbac.Service
	employeeRepo employee.Repository
	secret       []byte
	now          func() time.Time
	logger       *zap.Logger
}

func NewService(repo Repository, rbacService rbac.Service, employeeRepo employee.Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{
		repo:         repo,
		rbac:         rbacService,
		employeeRepo: employeeRepo,
		secret:       token.Secret(),
		now:          time.Now,
		logger:       l,
	}
}

func (s *service) Login(ctx context.Context, email, password string) (string, string, AuthResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("login lookup failed", zap.Error(err))
		}
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", "", AuthResponse{}, autherrors.ErrUserInactive
	}

	// warm up casbin supaya request pertama tidak membaca DB
	if err := s.rbac.LoadCompanyPolicy(ctx, user.CompanyID.String()); err != nil {
		return "", "", AuthResponse{}, err
	}

	access, refresh, err := s.issuePair(user)
	if err != nil {
		return "", "", AuthResponse{}, err
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID, s.now()); err != nil {
		log.Warn("update last login failed", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	log.Info("user logged in", zap.String("user_id", user.ID.String()), zap.String("role", user.Role))
	return access, refresh, toAuthResponse(user), nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, string, AuthResponse, error) {
	claims, err := token.Parse(s.secret, refreshToken, token.TypeRefresh)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidRefreshToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidUserID
	}

	// role dibaca ulang dari DB: perubahan role berlaku saat refresh berikutnya
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrUserNotFound
	}
	if !user.IsActive {
		return "", "", AuthResponse{}, autherrors.ErrUserInactive
	}

	access, refresh, err := s.issuePair(user)
	if err != nil {
		return "", "", AuthResponse{}, err
	}
	return access, refresh, toAuthResponse(user), nil
}

func (s *service) GetMe(ctx context.Context, userID string) (*AuthResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, autherrors.ErrInvalidUserID
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, autherrors.ErrUserNotFound
	}

	resp := toAuthResponse(u)
	return &resp, nil
}

func (s *service) Register(ctx context.Context, companyID string, req RegisterRequest) (AuthResponse, error) {
	cID, err := uuid.Parse(companyID)
	if err != nil {
		return AuthResponse{}, autherrors.ErrInvalidToken
	}

	if existing, err := s.repo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return AuthResponse{}, autherrors.ErrEmailAlreadyRegistered
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return AuthResponse{}, err
	}

	var employeeID *uuid.UUID
	if req.EmployeeID != "" {
		empl, err := s.employeeRepo.FindByIDAndCompany(ctx, companyID, req.EmployeeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return AuthResponse{}, autherrors.ErrEmployeeNotFound
			}
			return AuthResponse{}, err
		}
		employeeID = &empl.ID
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResponse{}, err
	}

	user := &User{
		ID:         uuid.New(),
		CompanyID:  cID,
		EmployeeID: employeeID,
		Email:      req.Email,
		Name:       strings.TrimSpace(req.Name),
		Password:   string(hashed),
		Role:       strings.ToUpper(req.Role),
		IsActive:   true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		contextutil.GetLogger(ctx, s.logger).Warn("create user failed", zap.Error(err))
		return AuthResponse{}, autherrors.ErrEmailAlreadyRegistered
	}

	return toAuthResponse(user), nil
}

func (s *service) issuePair(u *User) (string, string, error) {
	now := s.now()
	base := token.Claims{
		UserID:     u.ID.String(),
		EmployeeID: u.employeeIDString(),
		CompanyID:  u.CompanyID.String(),
		Role:       u.Role,
	}

	accessClaims := base
	accessClaims.TokenType = token.TypeAccess
	access, err := token.Issue(s.secret, accessClaims, token.AccessTTL, now)
	if err != nil {
		return "", "", autherrors.ErrTokenGenerationFailed
	}

	refreshClaims := base
	refreshClaims.TokenType = token.TypeRefresh
	refresh, err := token.Issue(s.secret, refreshClaims, token.RefreshTTL, now)
	if err != nil {
		return "", "", autherrors.ErrTokenGenerationFailed
	}
	return access, refresh, nil
}
