package export

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unistad/document-archiver/constants"
	"github.com/unistad/document-archiver/internal/repository"
	"github.com/xuri/excelize/v2"
)

type stubJobs struct {
	jobs []*repository.Job
	err  error
}

func (s *stubJobs) Create(context.Context, string, string, string, string) error { return nil }
func (s *stubJobs) Get(context.Context, string, string) (*repository.Job, error) {
	return nil, errors.New("not implemented")
}
func (s *stubJobs) UpdateStatus(context.Context, string, string, constants.JobStatus, string, string) error {
	return nil
}
func (s *stubJobs) List(context.Context, string) ([]*repository.Job, error) { return s.jobs, s.err }

func TestExportJobsXLSX(t *testing.T) {
	updated := time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)
	svc := NewService(&stubJobs{jobs: []*repository.Job{
		{
			PartitionKey:      "unistad",
			JobID:             "job-1",
			Status:            constants.JobConverted,
			StatusDescription: "Conversion completed",
			SourceFile:        "_jobs_uploaded/design.pdf",
			ResultFile:        "unistad/04. EC/Design/EC-IPTV-SAD-REF.pdf",
			User:              "ops",
			UpdatedAt:         updated,
		},
		{
			PartitionKey:      "unistad",
			JobID:             "job-2",
			Status:            constants.JobFailed,
			StatusDescription: "Unit not found. [Error:114]",
			User:              "ops",
		},
	}}, nil)

	data, err := svc.ExportJobsXLSX(context.Background(), "unistad")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Jobs")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"Job ID", "Status", "Description", "Source File", "Result File", "User", "Updated At"}, rows[0])
	assert.Equal(t, "job-1", rows[1][0])
	assert.Equal(t, "Converted", rows[1][1])
	assert.Equal(t, "unistad/04. EC/Design/EC-IPTV-SAD-REF.pdf", rows[1][4])
	assert.Equal(t, "2024-03-09 14:30:00", rows[1][6])
	assert.Equal(t, "Failed", rows[2][1])
	assert.Equal(t, "Unit not found. [Error:114]", rows[2][2])
}

func TestExportJobsXLSXListError(t *testing.T) {
	svc := NewService(&stubJobs{err: errors.New("db down")}, nil)
	_, err := svc.ExportJobsXLSX(context.Background(), "unistad")
	require.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
	assert.Equal(t, "abcdef", truncate("abcdef", 0))
}
