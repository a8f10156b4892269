package audit_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/audit"
	auditerrors "github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/audit/errors"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/apperror"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/pagination"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuditService struct {
	CreateFn   func(ctx context.Context, actorID string, req audit.CreateAuditRequest) (audit.AuditResponse, error)
	GetAllFn   func(ctx context.Context, actorID string, q audit.ListAuditQuery) (pagination.Result[audit.AuditResponse], error)
	GetByIDFn  func(ctx context.Context, actorID, id string) (audit.AuditResponse, error)
	UpdateFn   func(ctx context.Context, actorID, id string, req audit.UpdateAuditRequest) (audit.AuditResponse, error)
	DeleteFn   func(ctx context.Context, actorID, id string) error
	StartFn    func(ctx context.Context, actorID, id string) (audit.AuditResponse, error)
	CompleteFn func(ctx context.Context, actorID, id string, req audit.CompleteAuditRequest) (audit.AuditResponse, error)
	GetStatsFn func(ctx context.Context, actorID, factoryID string) (audit.StatsResponse, error)
	ReportFn   func(ctx context.Context, actorID, id string) (audit.Report, error)
}

func (f *fakeAuditService) Create(ctx context.Context, actorID string, req audit.CreateAuditRequest) (audit.AuditResponse, error) {
	return f.CreateFn(ctx, actorID, req)
}
func (f *fakeAuditService) GetAll(ctx context.Context, actorID string, q audit.ListAuditQuery) (pagination.Result[audit.AuditResponse], error) {
	return f.GetAllFn(ctx, actorID, q)
}
func (f *fakeAuditService) GetByID(ctx context.Context, actorID, id string) (audit.AuditResponse, error) {
	return f.GetByIDFn(ctx, actorID, id)
}
func (f *fakeAuditService) Update(ctx context.Context, actorID, id string, req audit.UpdateAuditRequest) (audit.AuditResponse, error) {
	return f.UpdateFn(ctx, actorID, id, req)
}
func (f *fakeAuditService) Delete(ctx context.Context, actorID, id string) error {
	return f.DeleteFn(ctx, actorID, id)
}
func (f *fakeAuditService) Start(ctx context.Context, actorID, id string) (audit.AuditResponse, error) {
	return f.StartFn(ctx, actorID, id)
}
func (f *fakeAuditService) Complete(ctx context.Context, actorID, id string, req audit.CompleteAuditRequest) (audit.AuditResponse, error) {
	return f.CompleteFn(ctx, actorID, id, req)
}
func (f *fakeAuditService) GetStats(ctx context.Context, actorID, factoryID string) (audit.StatsResponse, error) {
	return f.GetStatsFn(ctx, actorID, factoryID)
}
func (f *fakeAuditService) Report(ctx context.Context, actorID, id string) (audit.Report, error) {
	return f.ReportFn(ctx, actorID, id)
}

type envelope struct {
	Ok         bool            `json:"ok"`
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		Total int64 `json:"total"`
	} `json:"pagination"`
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func newContext(method, target, body, actorID string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	c.Set("user_id", actorID)
	return c, w
}

func TestAuditHandler_Create(t *testing.T) {
	actorID := uuid.NewString()
	factoryID := uuid.NewString()

	t.Run("success", func(t *testing.T) {
		svc := &fakeAuditService{
			CreateFn: func(ctx context.Context, aid string, req audit.CreateAuditRequest) (audit.AuditResponse, error) {
				assert.Equal(t, actorID, aid)
				assert.Equal(t, factoryID, req.FactoryID)
				return audit.AuditResponse{ID: uuid.NewString(), Reference: "AUD-000001", Status: audit.StatusPlanned}, nil
			},
		}
		body := `{"factory_id":"` + factoryID + `","title":"Fire","type":"INTERNAL","scheduled_date":"2026-11-01"}`
		c, w := newContext(http.MethodPost, "/audits", body, actorID)

		audit.NewHandler(svc).Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decode(t, w)
		assert.True(t, env.Ok)
		assert.Contains(t, string(env.Data), "AUD-000001")
	})

	t.Run("binding error", func(t *testing.T) {
		c, w := newContext(http.MethodPost, "/audits", `{"title":"Fire","type":"OTHER"}`, actorID)

		audit.NewHandler(&fakeAuditService{}).Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apperror.CodeInvalidInput, decode(t, w).Error.Code)
	})

	t.Run("invalid reference", func(t *testing.T) {
		svc := &fakeAuditService{
			CreateFn: func(context.Context, string, audit.CreateAuditRequest) (audit.AuditResponse, error) {
				return audit.AuditResponse{}, auditerrors.ErrInvalidFactoryID
			},
		}
		body := `{"factory_id":"` + factoryID + `","title":"Fire","type":"INTERNAL","scheduled_date":"2026-11-01"}`
		c, w := newContext(http.MethodPost, "/audits", body, actorID)

		audit.NewHandler(svc).Create(c)

		env := decode(t, w)
		assert.Equal(t, apperror.StatusOf(apperror.CodeInvalidReference), w.Code)
		assert.Equal(t, apperror.CodeInvalidReference, env.Error.Code)
		assert.Equal(t, "factory_id", env.Error.Details["field"])
	})
}

func TestAuditHandler_GetAll(t *testing.T) {
	svc := &fakeAuditService{
		GetAllFn: func(ctx context.Context, actorID string, q audit.ListAuditQuery) (pagination.Result[audit.AuditResponse], error) {
			assert.Equal(t, 2, q.Page)
			assert.Equal(t, audit.StatusPlanned, q.Status)
			return pagination.NewResult([]audit.AuditResponse{{ID: "a"}}, 11, pagination.Normalize(2, 10)), nil
		},
	}
	c, w := newContext(http.MethodGet, "/audits?page=2&status=PLANNED", "", uuid.NewString())

	audit.NewHandler(svc).GetAll(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, int64(11), env.Pagination.Total)
}

func TestAuditHandler_Transitions(t *testing.T) {
	id := uuid.NewString()

	t.Run("start conflict maps to invalid state", func(t *testing.T) {
		svc := &fakeAuditService{
			StartFn: func(context.Context, string, string) (audit.AuditResponse, error) {
				return audit.AuditResponse{}, apperror.InvalidState([]string{audit.StatusPlanned}, audit.StatusInProgress, "already in progress")
			},
		}
		c, w := newContext(http.MethodPost, "/audits/"+id+"/start", "", uuid.NewString())
		c.Params = gin.Params{{Key: "id", Value: id}}

		audit.NewHandler(svc).Start(c)

		env := decode(t, w)
		assert.Equal(t, apperror.StatusOf(apperror.CodeInvalidState), w.Code)
		assert.Equal(t, "already in progress", env.Error.Message)
	})

	t.Run("complete passes the payload through", func(t *testing.T) {
		svc := &fakeAuditService{
			CompleteFn: func(_ context.Context, _ string, gotID string, req audit.CompleteAuditRequest) (audit.AuditResponse, error) {
				assert.Equal(t, id, gotID)
				require.NotNil(t, req.Score)
				assert.Equal(t, 85.0, *req.Score)
				assert.Equal(t, "ok", req.Summary)
				return audit.AuditResponse{ID: gotID, Status: audit.StatusCompleted}, nil
			},
		}
		c, w := newContext(http.MethodPost, "/audits/"+id+"/complete", `{"score":85,"summary":"ok","recommendations":"fix X"}`, uuid.NewString())
		c.Params = gin.Params{{Key: "id", Value: id}}

		audit.NewHandler(svc).Complete(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAuditHandler_GetByID_Forbidden(t *testing.T) {
	svc := &fakeAuditService{
		GetByIDFn: func(context.Context, string, string) (audit.AuditResponse, error) {
			return audit.AuditResponse{}, apperror.Forbidden("factory")
		},
	}
	c, w := newContext(http.MethodGet, "/audits/x", "", uuid.NewString())
	c.Params = gin.Params{{Key: "id", Value: "x"}}

	audit.NewHandler(svc).GetByID(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuditHandler_Report(t *testing.T) {
	svc := &fakeAuditService{
		ReportFn: func(context.Context, string, string) (audit.Report, error) {
			return audit.Report{Filename: "AUD-000001.pdf", Content: []byte("%PDF-1.4")}, nil
		},
	}
	c, w := newContext(http.MethodGet, "/audits/x/report", "", uuid.NewString())
	c.Params = gin.Params{{Key: "id", Value: "x"}}

	audit.NewHandler(svc).Report(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "AUD-000001.pdf")
}
