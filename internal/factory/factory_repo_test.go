package factory_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/factory"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func TestRepository_CountActiveUsers_IgnoresSoftDeleted(t *testing.T) {
	db, mock := newGorm(t)
	factoryID := uuid.NewString()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "users" WHERE factory_id = $1 AND is_active = $2 AND deleted_at IS NULL`)).
		WithArgs(factoryID, true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := factory.NewRepository(db).CountActiveUsers(context.Background(), factoryID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_TenantExists(t *testing.T) {
	db, mock := newGorm(t)
	tenantID := uuid.NewString()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "tenants"`).
		WithArgs(tenantID, true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	ok, err := factory.NewRepository(db).TenantExists(context.Background(), tenantID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
