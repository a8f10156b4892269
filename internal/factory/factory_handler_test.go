package factory_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/factory"
	factoryerrors "github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/factory/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeFactoryService struct {
	factory.Service
	CreateFn     func(ctx context.Context, actorID string, req factory.CreateFactoryRequest) (factory.FactoryResponse, error)
	DeleteFn     func(ctx context.Context, actorID, id string) error
	GetOptionsFn func(ctx context.Context, actorID, tenantID string) ([]factory.OptionResponse, error)
}

func (f *fakeFactoryService) Create(ctx context.Context, actorID string, req factory.CreateFactoryRequest) (factory.FactoryResponse, error) {
	return f.CreateFn(ctx, actorID, req)
}

func (f *fakeFactoryService) Delete(ctx context.Context, actorID, id string) error {
	return f.DeleteFn(ctx, actorID, id)
}

func (f *fakeFactoryService) GetOptions(ctx context.Context, actorID, tenantID string) ([]factory.OptionResponse, error) {
	return f.GetOptionsFn(ctx, actorID, tenantID)
}

func newContext(method, target, body, actorID string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("user_id", actorID)
	return c, w
}

func TestFactoryHandler_Create(t *testing.T) {
	gin.SetMode(gin.TestMode)
	actorID := uuid.NewString()

	t.Run("duplicate name", func(t *testing.T) {
		svc := &fakeFactoryService{
			CreateFn: func(_ context.Context, aid string, req factory.CreateFactoryRequest) (factory.FactoryResponse, error) {
				assert.Equal(t, actorID, aid)
				assert.Equal(t, "PP-01", req.Code)
				return factory.FactoryResponse{}, factoryerrors.ErrFactoryNameExists
			},
		}
		c, w := newContext(http.MethodPost, "/factories", `{"name":"Phnom Penh Garments","code":"PP-01","country":"Cambodia"}`, actorID)

		factory.NewHandler(svc).Create(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), `"field":"name"`)
	})

	t.Run("missing country", func(t *testing.T) {
		c, w := newContext(http.MethodPost, "/factories", `{"name":"X","code":"X"}`, actorID)

		factory.NewHandler(&fakeFactoryService{}).Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestFactoryHandler_Delete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	id := uuid.NewString()
	svc := &fakeFactoryService{
		DeleteFn: func(_ context.Context, _, fid string) error {
			assert.Equal(t, id, fid)
			return factoryerrors.ErrFactoryHasActiveUsers.WithDetail("active_users", 2)
		},
	}
	c, w := newContext(http.MethodDelete, "/factories/"+id, "", uuid.NewString())
	c.Params = gin.Params{{Key: "id", Value: id}}

	factory.NewHandler(svc).Delete(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"active_users":2`)
}

func TestFactoryHandler_GetOptions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tenantID := uuid.NewString()
	svc := &fakeFactoryService{
		GetOptionsFn: func(_ context.Context, _, tid string) ([]factory.OptionResponse, error) {
			assert.Equal(t, tenantID, tid)
			return []factory.OptionResponse{{ID: "f-1", Name: "Phnom Penh Garments", Code: "PP-01"}}, nil
		},
	}
	c, w := newContext(http.MethodGet, "/factories/options?tenant_id="+tenantID, "", uuid.NewString())

	factory.NewHandler(svc).GetOptions(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Phnom Penh Garments")
}
