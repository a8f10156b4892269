package grievance_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/grievance"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/pagination"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeGrievanceService struct {
	grievance.Service
	CreateAnonymousFn func(ctx context.Context, req grievance.CreateGrievanceRequest) (grievance.SubmissionResponse, error)
	GetAllFn          func(ctx context.Context, actorID string, q grievance.ListGrievanceQuery) (pagination.Result[grievance.GrievanceResponse], error)
}

func (f *fakeGrievanceService) CreateAnonymous(ctx context.Context, req grievance.CreateGrievanceRequest) (grievance.SubmissionResponse, error) {
	return f.CreateAnonymousFn(ctx, req)
}

func (f *fakeGrievanceService) GetAll(ctx context.Context, actorID string, q grievance.ListGrievanceQuery) (pagination.Result[grievance.GrievanceResponse], error) {
	return f.GetAllFn(ctx, actorID, q)
}

func TestGrievanceHandler_CreateAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	factoryID := uuid.NewString()

	t.Run("success", func(t *testing.T) {
		svc := &fakeGrievanceService{
			CreateAnonymousFn: func(_ context.Context, req grievance.CreateGrievanceRequest) (grievance.SubmissionResponse, error) {
				assert.True(t, req.IsAnonymous)
				assert.Equal(t, factoryID, req.FactoryID)
				return grievance.SubmissionResponse{Reference: "GRV-000001", Status: grievance.StatusSubmitted}, nil
			},
		}
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"factory_id":"` + factoryID + `","title":"Heat","description":"No ventilation","category":"SAFETY","is_anonymous":true}`
		c.Request = httptest.NewRequest(http.MethodPost, "/grievances/anonymous", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		grievance.NewHandler(svc).CreateAnonymous(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "GRV-000001")
		assert.NotContains(t, w.Body.String(), "reported_by")
	})

	t.Run("unknown category", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"factory_id":"` + factoryID + `","title":"Heat","description":"x","category":"NOISE","is_anonymous":true}`
		c.Request = httptest.NewRequest(http.MethodPost, "/grievances/anonymous", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		grievance.NewHandler(&fakeGrievanceService{}).CreateAnonymous(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGrievanceHandler_GetAll(t *testing.T) {
	gin.SetMode(gin.TestMode)
	actorID := uuid.NewString()
	svc := &fakeGrievanceService{
		GetAllFn: func(_ context.Context, aid string, q grievance.ListGrievanceQuery) (pagination.Result[grievance.GrievanceResponse], error) {
			assert.Equal(t, actorID, aid)
			assert.Equal(t, grievance.SeverityHigh, q.Severity)
			return pagination.NewResult[grievance.GrievanceResponse](nil, 0, pagination.Normalize(1, 10)), nil
		},
	}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/grievances?severity=HIGH", nil)
	c.Set("user_id", actorID)

	grievance.NewHandler(svc).GetAll(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}
