package grievance_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/access"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/access/accesstest"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/events"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/grievance"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/notification"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/apperror"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/counter"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/pagination"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memRepo struct {
	mu         sync.Mutex
	rows       map[string]grievance.Grievance
	factories  map[string]string
	principals map[string]access.Principal
}

func (r *memRepo) WithTx(*sql.Tx) grievance.Repository { return r }

func (r *memRepo) Create(_ context.Context, g *grievance.Grievance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g.CreatedAt = time.Now().UTC()
	g.UpdatedAt = g.CreatedAt
	r.rows[g.ID.String()] = *g
	return nil
}

func (r *memRepo) FindAll(_ context.Context, scope access.Scope, f grievance.ListFilter, page pagination.Params) ([]grievance.Grievance, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []grievance.Grievance
	for _, g := range r.rows {
		g := g
		if scope.Matches(&g) && (f.Status == "" || g.Status == f.Status) {
			out = append(out, g)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memRepo) FindByID(_ context.Context, scope access.Scope, id string) (*grievance.Grievance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.rows[id]
	if !ok || !scope.Matches(&g) {
		return nil, gorm.ErrRecordNotFound
	}
	return &g, nil
}

func (r *memRepo) FindByIDForUpdate(ctx context.Context, scope access.Scope, id string) (*grievance.Grievance, error) {
	return r.FindByID(ctx, scope, id)
}

func (r *memRepo) TransitionStatus(_ context.Context, id, from string, updates map[string]any) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.rows[id]
	if !ok || g.Status != from {
		return 0, nil
	}
	g.Status = updates["status"].(string)
	if v, ok := updates["assigned_to"].(uuid.UUID); ok {
		g.AssignedTo = &v
	}
	if v, ok := updates["resolution"].(string); ok {
		g.Resolution = &v
	}
	if v, ok := updates["resolved_at"].(time.Time); ok {
		g.ResolvedAt = &v
	}
	if v, ok := updates["closed_at"].(time.Time); ok {
		g.ClosedAt = &v
	}
	r.rows[id] = g
	return 1, nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *memRepo) FindFactoryTenant(_ context.Context, factoryID string) (string, error) {
	tenantID, ok := r.factories[factoryID]
	if !ok {
		return "", gorm.ErrRecordNotFound
	}
	return tenantID, nil
}

func (r *memRepo) CountEligibleAssignees(_ context.Context, tenantID, factoryID, userID string) (int64, error) {
	p, ok := r.principals[userID]
	if !ok || !p.IsActive || p.TenantID != tenantID || !lo.Contains(grievance.AssigneeRoles, access.Role(p.Role)) {
		return 0, nil
	}
	if p.FactoryID != nil && *p.FactoryID != factoryID {
		return 0, nil
	}
	return 1, nil
}

func (r *memRepo) Stats(_ context.Context, scope access.Scope) (grievance.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := grievance.Stats{ByStatus: map[string]int64{}, ByCategory: map[string]int64{}, BySeverity: map[string]int64{}}
	for _, g := range r.rows {
		g := g
		if !scope.Matches(&g) {
			continue
		}
		st.Total++
		st.ByStatus[g.Status]++
		st.ByCategory[g.Category]++
		st.BySeverity[g.Severity]++
		if g.IsAnonymous {
			st.Anonymous++
		}
	}
	return st, nil
}

// seqCounter hands out per-tenant sequence numbers.
type seqCounter struct {
	mu   sync.Mutex
	next map[string]int64
}

func (c *seqCounter) WithTx(*sql.Tx) counter.Repository { return c }
func (c *seqCounter) GetNextValue(_ context.Context, tenantID, _ string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next[tenantID]++
	return c.next[tenantID], nil
}

// recordingDispatcher keeps enqueued events in memory.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.ComplianceEvent
}

func (d *recordingDispatcher) Enqueue(_ context.Context, _ *sql.Tx, ev events.ComplianceEvent) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, ev)
	return nil
}

func (d *recordingDispatcher) types() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return lo.Map(d.events, func(e events.ComplianceEvent, _ int) string { return e.EventType })
}

var _ notification.Dispatcher = (*recordingDispatcher)(nil)

type fixture struct {
	sqlMock    sqlmock.Sqlmock
	repo       *memRepo
	dispatcher *recordingDispatcher
	activity   *accesstest.Recorder
	service    grievance.Service

	tenantA, tenantB, factoryA1, factoryA2 string

	superAdmin, tenantAdmin, committee, siblingCommittee, hrStaff, worker string
}

func setupServiceTest(t *testing.T) *fixture {
	t.Helper()
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		sqlMock:    sqlMock,
		dispatcher: &recordingDispatcher{},
		activity:   &accesstest.Recorder{},

		tenantA:   uuid.NewString(),
		tenantB:   uuid.NewString(),
		factoryA1: uuid.NewString(),
		factoryA2: uuid.NewString(),

		superAdmin:       uuid.NewString(),
		tenantAdmin:      uuid.NewString(),
		committee:        uuid.NewString(),
		siblingCommittee: uuid.NewString(),
		hrStaff:          uuid.NewString(),
		worker:           uuid.NewString(),
	}

	principals := []access.Principal{
		accesstest.Principal(f.superAdmin, access.RoleSuperAdmin, uuid.NewString(), ""),
		accesstest.Principal(f.tenantAdmin, access.RoleTenantAdmin, f.tenantA, ""),
		accesstest.Principal(f.committee, access.RoleGrievanceCommittee, f.tenantA, f.factoryA1),
		accesstest.Principal(f.siblingCommittee, access.RoleGrievanceCommittee, f.tenantA, f.factoryA2),
		accesstest.Principal(f.hrStaff, access.RoleHRStaff, f.tenantA, f.factoryA1),
		accesstest.Principal(f.worker, access.RoleWorker, f.tenantA, f.factoryA1),
	}
	f.repo = &memRepo{
		rows:       map[string]grievance.Grievance{},
		factories:  map[string]string{f.factoryA1: f.tenantA, f.factoryA2: f.tenantA},
		principals: lo.SliceToMap(principals, func(p access.Principal) (string, access.Principal) { return p.ID, p }),
	}

	guard := accesstest.Guard[*grievance.Grievance](t, grievance.Policy, accesstest.NewSource(principals...), f.activity)
	f.service = grievance.NewService(db, f.repo, &seqCounter{next: map[string]int64{}}, guard, f.dispatcher)
	return f
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func (f *fixture) request(factoryID string, anonymous bool) grievance.CreateGrievanceRequest {
	return grievance.CreateGrievanceRequest{
		FactoryID:   factoryID,
		Title:       "Unpaid overtime",
		Description: "Overtime in March was not paid",
		Category:    grievance.CategoryWages,
		IsAnonymous: anonymous,
	}
}

func (f *fixture) only(t *testing.T) grievance.Grievance {
	t.Helper()
	f.repo.mu.Lock()
	defer f.repo.mu.Unlock()
	require.Len(t, f.repo.rows, 1)
	for _, g := range f.repo.rows {
		return g
	}
	return grievance.Grievance{}
}

func TestGrievanceService_AnonymousSubmission(t *testing.T) {
	ctx := context.Background()
	f := setupServiceTest(t)
	expectTx(t, f.sqlMock, true)

	sub, err := f.service.CreateAnonymous(ctx, f.request(f.factoryA1, true))
	require.NoError(t, err)
	assert.Equal(t, "GRV-000001", sub.Reference)
	assert.Equal(t, grievance.StatusSubmitted, sub.Status)

	stored := f.only(t)
	assert.Nil(t, stored.ReportedBy)
	assert.True(t, stored.IsAnonymous)
	assert.Equal(t, f.tenantA, stored.TenantID.String())
	assert.Equal(t, grievance.SeverityMedium, stored.Severity)

	resp, err := f.service.GetByID(ctx, f.committee, stored.ID.String())
	require.NoError(t, err, "the factory's committee can retrieve it")
	assert.Nil(t, resp.ReportedBy)
	assert.True(t, resp.IsAnonymous)

	_, err = f.service.GetByID(ctx, f.siblingCommittee, stored.ID.String())
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))

	require.Len(t, f.activity.Entries, 1)
	assert.Empty(t, f.activity.Entries[0].ActorID)
	assert.Equal(t, []string{events.GrievanceCreated}, f.dispatcher.types())
	assert.Empty(t, f.dispatcher.events[0].ActorID)
	assert.NoError(t, f.sqlMock.ExpectationsWereMet())
}

func TestGrievanceService_AnonymousRejections(t *testing.T) {
	ctx := context.Background()
	f := setupServiceTest(t)

	_, err := f.service.CreateAnonymous(ctx, f.request(f.factoryA1, false))
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidInput))

	_, err = f.service.CreateAnonymous(ctx, f.request(uuid.NewString(), true))
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidReference))

	assert.Empty(t, f.repo.rows)
}

func TestGrievanceService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("worker reports under their name", func(t *testing.T) {
		f := setupServiceTest(t)
		expectTx(t, f.sqlMock, true)

		resp, err := f.service.Create(ctx, f.worker, f.request(f.factoryA1, false))

		require.NoError(t, err)
		require.NotNil(t, resp.ReportedBy)
		assert.Equal(t, f.worker, *resp.ReportedBy)
		assert.Equal(t, f.worker, f.dispatcher.events[0].ActorID)
	})

	t.Run("authenticated reporter may stay anonymous", func(t *testing.T) {
		f := setupServiceTest(t)
		expectTx(t, f.sqlMock, true)

		resp, err := f.service.Create(ctx, f.worker, f.request(f.factoryA1, true))

		require.NoError(t, err)
		assert.Nil(t, resp.ReportedBy)
		assert.Empty(t, f.activity.Entries[0].ActorID)
	})

	t.Run("pinned committee cannot file for a sibling factory", func(t *testing.T) {
		f := setupServiceTest(t)

		_, err := f.service.Create(ctx, f.committee, f.request(f.factoryA2, false))

		assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
	})
}

func TestGrievanceService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := setupServiceTest(t)
	expectTx(t, f.sqlMock, true)
	created, err := f.service.Create(ctx, f.worker, f.request(f.factoryA1, false))
	require.NoError(t, err)
	id := created.ID

	t.Run("worker cannot read", func(t *testing.T) {
		_, err := f.service.GetByID(ctx, f.worker, id)
		assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
	})

	t.Run("close before resolve", func(t *testing.T) {
		expectTx(t, f.sqlMock, false)
		_, err := f.service.Close(ctx, f.committee, id)
		require.True(t, apperror.IsCode(err, apperror.CodeInvalidState))
		assert.Contains(t, err.Error(), "must be resolved")
	})

	t.Run("assignee outside the committee", func(t *testing.T) {
		expectTx(t, f.sqlMock, false)
		_, err := f.service.Assign(ctx, f.committee, id, grievance.AssignGrievanceRequest{AssignedTo: f.hrStaff})
		assert.True(t, apperror.IsCode(err, apperror.CodeInvalidReference))
	})

	t.Run("assignee pinned to another factory", func(t *testing.T) {
		expectTx(t, f.sqlMock, false)
		_, err := f.service.Assign(ctx, f.committee, id, grievance.AssignGrievanceRequest{AssignedTo: f.siblingCommittee})
		assert.True(t, apperror.IsCode(err, apperror.CodeInvalidReference))
	})

	t.Run("hr staff cannot assign", func(t *testing.T) {
		expectTx(t, f.sqlMock, false)
		_, err := f.service.Assign(ctx, f.hrStaff, id, grievance.AssignGrievanceRequest{AssignedTo: f.committee})
		assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
	})

	t.Run("assign", func(t *testing.T) {
		expectTx(t, f.sqlMock, true)
		resp, err := f.service.Assign(ctx, f.tenantAdmin, id, grievance.AssignGrievanceRequest{AssignedTo: f.committee})
		require.NoError(t, err)
		assert.Equal(t, grievance.StatusAssigned, resp.Status)
		require.NotNil(t, resp.AssignedTo)
		assert.Equal(t, f.committee, *resp.AssignedTo)
	})

	t.Run("second assign", func(t *testing.T) {
		expectTx(t, f.sqlMock, false)
		_, err := f.service.Assign(ctx, f.tenantAdmin, id, grievance.AssignGrievanceRequest{AssignedTo: f.tenantAdmin})
		require.True(t, apperror.IsCode(err, apperror.CodeInvalidState))
		assert.Contains(t, err.Error(), "already assigned")
	})

	t.Run("resolve needs a resolution", func(t *testing.T) {
		expectTx(t, f.sqlMock, false)
		_, err := f.service.Resolve(ctx, f.committee, id, grievance.ResolveGrievanceRequest{})
		assert.True(t, apperror.IsCode(err, apperror.CodeInvalidInput))
	})

	t.Run("resolve", func(t *testing.T) {
		expectTx(t, f.sqlMock, true)
		resp, err := f.service.Resolve(ctx, f.committee, id, grievance.ResolveGrievanceRequest{Resolution: "Back pay issued"})
		require.NoError(t, err)
		assert.Equal(t, grievance.StatusResolved, resp.Status)
		assert.NotNil(t, resp.ResolvedAt)
	})

	t.Run("close", func(t *testing.T) {
		expectTx(t, f.sqlMock, true)
		resp, err := f.service.Close(ctx, f.committee, id)
		require.NoError(t, err)
		assert.Equal(t, grievance.StatusClosed, resp.Status)
		assert.NotNil(t, resp.ClosedAt)
	})

	t.Run("second close", func(t *testing.T) {
		expectTx(t, f.sqlMock, false)
		_, err := f.service.Close(ctx, f.committee, id)
		require.True(t, apperror.IsCode(err, apperror.CodeInvalidState))
		assert.Contains(t, err.Error(), "already closed")
	})

	assert.Equal(t, []string{
		events.GrievanceCreated,
		events.GrievanceAssigned,
		events.GrievanceResolved,
		events.GrievanceClosed,
	}, f.dispatcher.types())
	assert.NoError(t, f.sqlMock.ExpectationsWereMet())
}

func TestGrievanceService_Delete(t *testing.T) {
	ctx := context.Background()
	f := setupServiceTest(t)
	expectTx(t, f.sqlMock, true)
	created, err := f.service.Create(ctx, f.worker, f.request(f.factoryA1, false))
	require.NoError(t, err)

	err = f.service.Delete(ctx, f.tenantAdmin, created.ID)
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))

	expectTx(t, f.sqlMock, true)
	require.NoError(t, f.service.Delete(ctx, f.superAdmin, created.ID))
	assert.Empty(t, f.repo.rows)
	assert.NoError(t, f.sqlMock.ExpectationsWereMet())
}

func TestGrievanceService_GetStats(t *testing.T) {
	ctx := context.Background()
	f := setupServiceTest(t)

	st, err := f.service.GetStats(ctx, f.tenantAdmin, "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), st.Total)
	assert.Len(t, st.ByStatus, len(grievance.Statuses))
	assert.Len(t, st.BySeverity, len(grievance.Severities))

	expectTx(t, f.sqlMock, true)
	expectTx(t, f.sqlMock, true)
	_, err = f.service.CreateAnonymous(ctx, f.request(f.factoryA1, true))
	require.NoError(t, err)
	_, err = f.service.Create(ctx, f.worker, f.request(f.factoryA1, false))
	require.NoError(t, err)

	st, err = f.service.GetStats(ctx, f.committee, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.Total)
	assert.Equal(t, int64(2), st.Open)
	assert.Equal(t, int64(1), st.Anonymous)
	assert.Equal(t, int64(2), st.ByCategory[grievance.CategoryWages])

	_, err = f.service.GetStats(ctx, f.worker, "")
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
}
