package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/unistad/document-archiver/constants"
	"github.com/unistad/document-archiver/internal/common"
)

// Job is one persisted unit-of-work record tracking a document from upload
// to terminal outcome. (partition_key, job_id) is the identity; updates are
// last-write-wins because at most one worker holds a given job.
type Job struct {
	PartitionKey      string
	JobID             string
	Status            constants.JobStatus
	StatusDescription string
	SourceFile        string
	ResultFile        string
	User              string
	UpdatedAt         time.Time
}

type JobRepository interface {
	// Create inserts a new record in Queued with the default description.
	Create(ctx context.Context, partitionKey, jobID, sourceFile, user string) error

	// Get fetches one record; common.ErrNotFound when absent.
	Get(ctx context.Context, partitionKey, jobID string) (*Job, error)

	// List returns all records in a partition, newest first.
	List(ctx context.Context, partitionKey string) ([]*Job, error)

	// UpdateStatus writes status, description and result path. An empty
	// description falls back to the status default.
	UpdateStatus(ctx context.Context, partitionKey, jobID string, status constants.JobStatus, description, resultFile string) error
}

type jobRepo struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

func NewJobRepository(db *sql.DB, driver string, logger *slog.Logger) JobRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &jobRepo{db: db, driver: driver, logger: logger}
}

func (r *jobRepo) Create(ctx context.Context, partitionKey, jobID, sourceFile, user string) error {
	query := rebind(r.driver, `
INSERT INTO jobs (partition_key, job_id, status, status_description, source_file, result_file, user_name, updated_at)
VALUES (?, ?, ?, ?, ?, '', ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		partitionKey, jobID, int(constants.JobQueued), constants.JobQueued.Description(),
		sourceFile, user, time.Now().UTC())
	if err != nil {
		r.logger.Error("job create failed", "job_id", jobID, "error", err)
		return fmt.Errorf("create job: %w", err)
	}
	r.logger.Info("job created", "job_id", jobID, "source_file", sourceFile, "user", user)
	return nil
}

func (r *jobRepo) Get(ctx context.Context, partitionKey, jobID string) (*Job, error) {
	query := rebind(r.driver, `
SELECT partition_key, job_id, status, status_description, source_file, result_file, user_name, updated_at
FROM jobs WHERE partition_key = ? AND job_id = ?`)
	row := r.db.QueryRowContext(ctx, query, partitionKey, jobID)

	var j Job
	var status int
	err := row.Scan(&j.PartitionKey, &j.JobID, &status, &j.StatusDescription,
		&j.SourceFile, &j.ResultFile, &j.User, &j.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("JOB_NOT_FOUND", jobID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	j.Status = constants.JobStatus(status)
	return &j, nil
}

func (r *jobRepo) List(ctx context.Context, partitionKey string) ([]*Job, error) {
	query := rebind(r.driver, `
SELECT partition_key, job_id, status, status_description, source_file, result_file, user_name, updated_at
FROM jobs WHERE partition_key = ? ORDER BY updated_at DESC`)
	rows, err := r.db.QueryContext(ctx, query, partitionKey)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		var j Job
		var status int
		if err := rows.Scan(&j.PartitionKey, &j.JobID, &status, &j.StatusDescription,
			&j.SourceFile, &j.ResultFile, &j.User, &j.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		j.Status = constants.JobStatus(status)
		jobs = append(jobs, &j)
	}
	return jobs, rows.Err()
}

func (r *jobRepo) UpdateStatus(ctx context.Context, partitionKey, jobID string, status constants.JobStatus, description, resultFile string) error {
	if description == "" {
		description = status.Description()
	}
	query := rebind(r.driver, `
UPDATE jobs SET status = ?, status_description = ?, result_file = ?, updated_at = ?
WHERE partition_key = ? AND job_id = ?`)
	res, err := r.db.ExecContext(ctx, query,
		int(status), description, resultFile, time.Now().UTC(), partitionKey, jobID)
	if err != nil {
		r.logger.Error("job status update failed", "job_id", jobID, "status", status.String(), "error", err)
		return fmt.Errorf("update job status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.NewAppError("JOB_NOT_FOUND", jobID, common.ErrNotFound)
	}
	r.logger.Info("job status updated", "job_id", jobID, "status", status.String(), "result_file", resultFile)
	return nil
}
