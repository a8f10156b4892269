package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/auth"
	autherrors "github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/auth/errors"
	authMock "github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/auth/mock"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

const secret = "test-secret-at-least-16"

func newTokens() *auth.TokenManager {
	return auth.NewTokenManager(secret, 15*time.Minute, 24*time.Hour)
}

func TestTokenManager(t *testing.T) {
	tokens := newTokens()
	userID := uuid.NewString()

	access, err := tokens.Issue(userID, auth.TokenAccess)
	require.NoError(t, err)

	got, err := tokens.Parse(access, auth.TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	_, err = tokens.Parse(access, auth.TokenRefresh)
	assert.ErrorIs(t, err, autherrors.ErrInvalidToken, "an access token is not a refresh token")

	_, err = auth.NewTokenManager("another-secret-value", time.Minute, time.Minute).Parse(access, auth.TokenAccess)
	assert.ErrorIs(t, err, autherrors.ErrInvalidToken)

	expired, err := auth.NewTokenManager(secret, -time.Minute, time.Minute).Issue(userID, auth.TokenAccess)
	require.NoError(t, err)
	_, err = tokens.Parse(expired, auth.TokenAccess)
	assert.ErrorIs(t, err, autherrors.ErrTokenExpired)
}

func TestService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := authMock.NewMockRepository(ctrl)
	tokens := newTokens()
	service := auth.NewService(mockRepo, tokens)
	ctx := context.Background()

	pw, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	factoryID := uuid.New()
	mockUser := &user.User{
		ID:        uuid.New(),
		TenantID:  uuid.New(),
		FactoryID: &factoryID,
		Email:     "hr@example.com",
		Password:  string(pw),
		Role:      "HR_STAFF",
		IsActive:  true,
	}

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().GetByEmail(ctx, mockUser.Email).Return(mockUser, nil)

		pair, err := service.Login(ctx, mockUser.Email, "password123")
		require.NoError(t, err)
		assert.Equal(t, "HR_STAFF", pair.User.Role)
		assert.Equal(t, factoryID.String(), *pair.User.FactoryID)

		sub, err := tokens.Parse(pair.AccessToken, auth.TokenAccess)
		require.NoError(t, err)
		assert.Equal(t, mockUser.ID.String(), sub)
	})

	t.Run("wrong password", func(t *testing.T) {
		mockRepo.EXPECT().GetByEmail(ctx, mockUser.Email).Return(mockUser, nil)

		_, err := service.Login(ctx, mockUser.Email, "wrongpass")
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		mockRepo.EXPECT().GetByEmail(ctx, "nobody@example.com").Return(nil, errors.New("record not found"))

		_, err := service.Login(ctx, "nobody@example.com", "password123")
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("inactive user", func(t *testing.T) {
		inactive := *mockUser
		inactive.IsActive = false
		mockRepo.EXPECT().GetByEmail(ctx, mockUser.Email).Return(&inactive, nil)

		_, err := service.Login(ctx, mockUser.Email, "password123")
		assert.ErrorIs(t, err, autherrors.ErrUserInactive)
	})
}

func TestService_RefreshToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := authMock.NewMockRepository(ctrl)
	tokens := newTokens()
	service := auth.NewService(mockRepo, tokens)
	ctx := context.Background()

	u := &user.User{ID: uuid.New(), TenantID: uuid.New(), Role: "AUDITOR", IsActive: true}

	t.Run("rotates the pair", func(t *testing.T) {
		refresh, err := tokens.Issue(u.ID.String(), auth.TokenRefresh)
		require.NoError(t, err)
		mockRepo.EXPECT().GetByID(ctx, u.ID.String()).Return(u, nil)

		pair, err := service.RefreshToken(ctx, refresh)
		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.Equal(t, "AUDITOR", pair.User.Role)
	})

	t.Run("access token is rejected", func(t *testing.T) {
		access, err := tokens.Issue(u.ID.String(), auth.TokenAccess)
		require.NoError(t, err)

		_, err = service.RefreshToken(ctx, access)
		assert.ErrorIs(t, err, autherrors.ErrInvalidRefreshToken)
	})
}
