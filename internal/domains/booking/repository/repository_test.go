package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomdesk/infras/otel/mocks"
	"roomdesk/infras/postgres"
	"roomdesk/internal/domains/booking/repository"
)

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, repository.Booking) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "postgres")
	conn := &postgres.Connection{Read: sqlxDB, Write: sqlxDB}

	return sqlxDB, mock, repository.New(conn, mocks.NewOtel())
}

func TestHasOverlap_Create(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	startAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	endAt := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)

	// Without a record to exclude the query binds exactly three parameters;
	// an empty string would not parse as uuid.
	mock.ExpectPrepare(`SELECT EXISTS`).
		ExpectQuery().
		WithArgs("room-id-1", endAt, startAt).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	overlap, err := repo.HasOverlap(context.Background(), "room-id-1", startAt, endAt, "")

	require.NoError(t, err)
	assert.True(t, overlap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasOverlap_Edit(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	startAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	endAt := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)

	mock.ExpectPrepare(`id != \$4`).
		ExpectQuery().
		WithArgs("room-id-1", endAt, startAt, "booking-id-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	overlap, err := repo.HasOverlap(context.Background(), "room-id-1", startAt, endAt, "booking-id-1")

	require.NoError(t, err)
	assert.False(t, overlap)
	assert.NoError(t, mock.ExpectationsWereMet())
}
