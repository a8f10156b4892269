package user_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/apperror"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/user"
	usererrors "github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/user/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeUserService struct {
	user.Service
	CreateFn       func(ctx context.Context, actorID string, req user.CreateUserRequest) (user.UserResponse, error)
	ToggleStatusFn func(ctx context.Context, actorID, id string, isActive bool) (user.UserResponse, error)
}

func (f *fakeUserService) Create(ctx context.Context, actorID string, req user.CreateUserRequest) (user.UserResponse, error) {
	return f.CreateFn(ctx, actorID, req)
}

func (f *fakeUserService) ToggleStatus(ctx context.Context, actorID, id string, isActive bool) (user.UserResponse, error) {
	return f.ToggleStatusFn(ctx, actorID, id, isActive)
}

func newUserContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("user_id", "admin-1")
	return c, w
}

func TestUserHandler_Create(t *testing.T) {
	const valid = `{"name":"Sokha","email":"sokha@example.com","password":"password123","role":"HR_STAFF","factory_id":"7b0c6f3e-7d2a-4f43-9d5e-1d1b6a2f9c11"}`

	t.Run("created", func(t *testing.T) {
		svc := &fakeUserService{CreateFn: func(ctx context.Context, actorID string, req user.CreateUserRequest) (user.UserResponse, error) {
			assert.Equal(t, "admin-1", actorID)
			assert.Equal(t, "HR_STAFF", req.Role)
			return user.UserResponse{ID: "u-1", Role: req.Role}, nil
		}}
		c, w := newUserContext(http.MethodPost, "/users", valid)

		user.NewHandler(svc).Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("unknown role is rejected before the service", func(t *testing.T) {
		svc := &fakeUserService{CreateFn: func(context.Context, string, user.CreateUserRequest) (user.UserResponse, error) {
			t.Fatal("service must not be called")
			return user.UserResponse{}, nil
		}}
		c, w := newUserContext(http.MethodPost, "/users", strings.Replace(valid, "HR_STAFF", "OWNER", 1))

		user.NewHandler(svc).Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc := &fakeUserService{CreateFn: func(context.Context, string, user.CreateUserRequest) (user.UserResponse, error) {
			return user.UserResponse{}, usererrors.ErrUserAlreadyExists
		}}
		c, w := newUserContext(http.MethodPost, "/users", valid)

		user.NewHandler(svc).Create(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), `"field":"email"`)
	})

	t.Run("super admin grant", func(t *testing.T) {
		svc := &fakeUserService{CreateFn: func(context.Context, string, user.CreateUserRequest) (user.UserResponse, error) {
			return user.UserResponse{}, usererrors.ErrSuperAdminGrant
		}}
		c, w := newUserContext(http.MethodPost, "/users", valid)

		user.NewHandler(svc).Create(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestUserHandler_ToggleStatus(t *testing.T) {
	t.Run("missing flag", func(t *testing.T) {
		c, w := newUserContext(http.MethodPatch, "/users/u-2/status", `{}`)
		c.Params = gin.Params{{Key: "id", Value: "u-2"}}

		user.NewHandler(&fakeUserService{}).ToggleStatus(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("deactivate", func(t *testing.T) {
		svc := &fakeUserService{ToggleStatusFn: func(ctx context.Context, actorID, id string, isActive bool) (user.UserResponse, error) {
			assert.Equal(t, "u-2", id)
			assert.False(t, isActive)
			return user.UserResponse{ID: id, IsActive: false}, nil
		}}
		c, w := newUserContext(http.MethodPatch, "/users/u-2/status", `{"is_active":false}`)
		c.Params = gin.Params{{Key: "id", Value: "u-2"}}

		user.NewHandler(svc).ToggleStatus(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"is_active":false`)
	})

	t.Run("self deactivation", func(t *testing.T) {
		svc := &fakeUserService{ToggleStatusFn: func(context.Context, string, string, bool) (user.UserResponse, error) {
			return user.UserResponse{}, apperror.Validation("is_active", "self")
		}}
		c, w := newUserContext(http.MethodPatch, "/users/admin-1/status", `{"is_active":false}`)
		c.Params = gin.Params{{Key: "id", Value: "admin-1"}}

		user.NewHandler(svc).ToggleStatus(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
