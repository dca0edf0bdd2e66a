package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unistad/document-archiver/constants"
	"github.com/unistad/document-archiver/internal/common"
)

func newMockRepo(t *testing.T) (JobRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewJobRepository(db, "sqlite", nil), mock
}

func jobColumns() []string {
	return []string{"partition_key", "job_id", "status", "status_description",
		"source_file", "result_file", "user_name", "updated_at"}
}

func TestJobCreateQueued(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO jobs").
		WithArgs("unistad", "job-1", int(constants.JobQueued), "Document uploaded",
			"design.pdf", "ops@example.com", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), "unistad", "job-1", "design.pdf", "ops@example.com")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobGet(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM jobs WHERE").
		WithArgs("unistad", "job-1").
		WillReturnRows(sqlmock.NewRows(jobColumns()).
			AddRow("unistad", "job-1", 3, "Conversion completed",
				"design.pdf", "unistad/04. EC/EC-IPTV-SAD-REF.pdf", "ops@example.com", now))

	j, err := repo.Get(context.Background(), "unistad", "job-1")
	require.NoError(t, err)
	assert.Equal(t, constants.JobConverted, j.Status)
	assert.Equal(t, "unistad/04. EC/EC-IPTV-SAD-REF.pdf", j.ResultFile)
}

func TestJobGetNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM jobs WHERE").
		WithArgs("unistad", "missing").
		WillReturnRows(sqlmock.NewRows(jobColumns()))

	_, err := repo.Get(context.Background(), "unistad", "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestJobUpdateStatusDefaultDescription(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE jobs SET").
		WithArgs(int(constants.JobRunning), "Job is running.", "", sqlmock.AnyArg(), "unistad", "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "unistad", "job-1", constants.JobRunning, "", "")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobUpdateStatusExplicitDescription(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE jobs SET").
		WithArgs(int(constants.JobFailed), "EDRMS reference number not found. [Error:114]",
			"_jobs_failed/design-ab123.pdf", sqlmock.AnyArg(), "unistad", "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "unistad", "job-1", constants.JobFailed,
		"EDRMS reference number not found. [Error:114]", "_jobs_failed/design-ab123.pdf")
	require.NoError(t, err)
}

func TestJobUpdateStatusUnknownJob(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE jobs SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "unistad", "missing", constants.JobRunning, "", "")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRebind(t *testing.T) {
	assert.Equal(t, "SELECT 1 WHERE a = ? AND b = ?", rebind("sqlite", "SELECT 1 WHERE a = ? AND b = ?"))
	assert.Equal(t, "SELECT 1 WHERE a = $1 AND b = $2", rebind("pgx", "SELECT 1 WHERE a = ? AND b = ?"))
}
