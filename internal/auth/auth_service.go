package auth

import (
	"context"

	autherrors "github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/auth/errors"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, email, password string) (TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (TokenPair, error)
	GetMe(ctx context.Context, userID string) (AuthResponse, error)
}

type service struct {
	repo   Repository
	tokens *TokenManager
	logger *zap.Logger
}

func NewService(repo Repository, tokens *TokenManager, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{repo: repo, tokens: tokens, logger: l}
}

func (s *service) Login(ctx context.Context, email, password string) (TokenPair, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Debug("login unknown email")
		return TokenPair{}, autherrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		s.logger.Warn("login wrong password", zap.String("user_id", u.ID.String()))
		return TokenPair{}, autherrors.ErrInvalidCredentials
	}
	if !u.IsActive {
		return TokenPair{}, autherrors.ErrUserInactive
	}

	pair, err := s.issue(u)
	if err != nil {
		return TokenPair{}, err
	}
	s.logger.Info("login success", zap.String("user_id", u.ID.String()))
	return pair, nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (TokenPair, error) {
	userID, err := s.tokens.Parse(refreshToken, TokenRefresh)
	if err != nil {
		return TokenPair{}, autherrors.ErrInvalidRefreshToken
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return TokenPair{}, autherrors.ErrInvalidRefreshToken
	}
	if !u.IsActive {
		return TokenPair{}, autherrors.ErrUserInactive
	}
	return s.issue(u)
}

func (s *service) GetMe(ctx context.Context, userID string) (AuthResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return AuthResponse{}, autherrors.ErrInvalidToken
	}
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil || !u.IsActive {
		return AuthResponse{}, autherrors.ErrInvalidToken
	}
	return mapToResponse(u), nil
}

func (s *service) issue(u *user.User) (TokenPair, error) {
	access, err := s.tokens.Issue(u.ID.String(), TokenAccess)
	if err != nil {
		s.logger.Error("issue access token failed", zap.Error(err))
		return TokenPair{}, autherrors.ErrTokenGenerationFailed
	}
	refresh, err := s.tokens.Issue(u.ID.String(), TokenRefresh)
	if err != nil {
		s.logger.Error("issue refresh token failed", zap.Error(err))
		return TokenPair{}, autherrors.ErrTokenGenerationFailed
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, User: mapToResponse(u)}, nil
}

func mapToResponse(u *user.User) AuthResponse {
	resp := AuthResponse{
		ID:       u.ID.String(),
		TenantID: u.TenantID.String(),
		Email:    u.Email,
		Name:     u.Name,
		Role:     u.Role,
	}
	if u.FactoryID != nil {
		f := u.FactoryID.String()
		resp.FactoryID = &f
	}
	return resp
}
