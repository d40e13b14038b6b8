package services

import (
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/deyby01/nexus-pm-v2/internal/repository"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

// The recompute must not touch the row when the derived value matches the
// cached one, so status flips that do not move the ratio stay write-free.
func TestRecalculateProgress_SkipsUnchangedWrite(t *testing.T) {
	db, mock := setupMockDB(t)
	projectID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "projects"`).
		WithArgs(projectID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "progress_percentage"}).
			AddRow(projectID.String(), 50))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "tasks"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "tasks"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	progress, err := recalculateProgress(repository.NewProjectRepository(db), projectID)
	require.NoError(t, err)
	require.Equal(t, 50, progress)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecalculateProgress_WritesChangedValue(t *testing.T) {
	db, mock := setupMockDB(t)
	projectID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "projects"`).
		WithArgs(projectID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "progress_percentage"}).
			AddRow(projectID.String(), 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "tasks"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "tasks"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec(`UPDATE "projects" SET`).
		WithArgs(67, sqlmock.AnyArg(), projectID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	progress, err := recalculateProgress(repository.NewProjectRepository(db), projectID)
	require.NoError(t, err)
	require.Equal(t, 67, progress)
	require.NoError(t, mock.ExpectationsWereMet())
}
