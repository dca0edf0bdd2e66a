package pipeline

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unistad/document-archiver/constants"
	"github.com/unistad/document-archiver/internal/classify"
	"github.com/unistad/document-archiver/internal/queue"
	"github.com/unistad/document-archiver/internal/repository"
	"github.com/unistad/document-archiver/internal/storage"
)

type statusWrite struct {
	status      constants.JobStatus
	description string
	resultFile  string
}

type fakeJobs struct {
	mu     sync.Mutex
	writes []statusWrite
	failOn map[constants.JobStatus]error
}

func (f *fakeJobs) recorded() []statusWrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]statusWrite(nil), f.writes...)
}

func (f *fakeJobs) Create(context.Context, string, string, string, string) error { return nil }
func (f *fakeJobs) Get(context.Context, string, string) (*repository.Job, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeJobs) List(context.Context, string) ([]*repository.Job, error) { return nil, nil }

func (f *fakeJobs) UpdateStatus(_ context.Context, _, _ string, status constants.JobStatus, description, resultFile string) error {
	if err := f.failOn[status]; err != nil {
		return err
	}
	if description == "" {
		description = status.Description()
	}
	f.mu.Lock()
	f.writes = append(f.writes, statusWrite{status, description, resultFile})
	f.mu.Unlock()
	return nil
}

type fakeExtractor struct {
	page1, page2 string
	err          error
}

func (f *fakeExtractor) FirstTwoPages(context.Context, io.Reader) (string, string, error) {
	return f.page1, f.page2, f.err
}

func testDicts(t *testing.T) *classify.Dictionaries {
	t.Helper()
	add := func(pairs ...string) *classify.Dictionary {
		d := classify.NewDictionary()
		for i := 0; i < len(pairs); i += 2 {
			d.Add(pairs[i], pairs[i+1])
		}
		return d
	}
	return &classify.Dictionaries{
		Units:          add("Education City", "EC"),
		Services:       add("IPTV", "IPTV"),
		DocTypes:       add("Solution Architecture", "SAD"),
		UnitFolders:    add("EC", "04. EC"),
		ServiceFolders: add("IPTV", "Package 1/Base"),
		DocTypeFolders: add("SAD", "Design"),
	}
}

const (
	testCover = "Education City Stadium IPTV Service Solution Architecture SC-C05-CAB-ORD-DBF-IT-00001"
	testJobID = "5f1c9f0e-ab12-4d15-9e61-0de0c1a1b3c4"
	archived  = "unistad/04. EC/Package 1/Base/Design/EC-IPTV-SAD-SC-C05-CAB-ORD-DBF-IT-00001.pdf"
)

type fixture struct {
	proc  *Processor
	store *storage.Filesystem
	jobs  *fakeJobs
	msg   queue.Message
}

func setup(t *testing.T, ex *fakeExtractor) *fixture {
	t.Helper()
	fs := storage.NewFilesystem(t.TempDir(), nil)
	jobs := &fakeJobs{failOn: map[constants.JobStatus]error{}}
	proc := NewProcessor(nil, fs, jobs, ex, testDicts(t), Folders{})

	msg := queue.Message{PartitionKey: "unistad", JobID: testJobID, FileName: "design.pdf", User: "u"}
	require.NoError(t, fs.SaveFile(context.Background(), constants.UploadedFolder, "design.pdf", strings.NewReader("%PDF")))
	return &fixture{proc: proc, store: fs, jobs: jobs, msg: msg}
}

func TestProcessConverted(t *testing.T) {
	f := setup(t, &fakeExtractor{page1: testCover, page2: "REVISION table without versions"})
	ctx := context.Background()

	require.NoError(t, f.proc.Process(ctx, f.msg))

	require.Len(t, f.jobs.writes, 2)
	assert.Equal(t, statusWrite{constants.JobRunning, "Job is running.", ""}, f.jobs.writes[0])
	assert.Equal(t, statusWrite{constants.JobConverted, "Conversion completed", archived}, f.jobs.writes[1])

	ok, err := f.store.FileExists(ctx, "unistad/04. EC/Package 1/Base/Design", "EC-IPTV-SAD-SC-C05-CAB-ORD-DBF-IT-00001.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.store.FileExists(ctx, constants.UploadedFolder, "design.pdf")
	require.NoError(t, err)
	assert.False(t, ok, "source must leave the uploaded folder")
}

func TestProcessDestinationCollision(t *testing.T) {
	f := setup(t, &fakeExtractor{page1: testCover})
	ctx := context.Background()

	// A previously archived document already owns the destination name.
	require.NoError(t, f.store.SaveFile(ctx, "unistad/04. EC/Package 1/Base/Design",
		"EC-IPTV-SAD-SC-C05-CAB-ORD-DBF-IT-00001.pdf", strings.NewReader("existing")))

	require.NoError(t, f.proc.Process(ctx, f.msg))

	require.Len(t, f.jobs.writes, 2)
	assert.Equal(t, constants.JobRunning, f.jobs.writes[0].status)

	final := f.jobs.writes[1]
	assert.Equal(t, constants.JobFailed, final.status)
	assert.Contains(t, final.description, "already exists")
	assert.Contains(t, final.resultFile, "design-1b3c4.pdf")

	ok, err := f.store.FileExists(ctx, constants.FailedFolder, "design-1b3c4.pdf")
	require.NoError(t, err)
	assert.True(t, ok, "source must be quarantined under the job-id suffix")
}

func TestProcessClassificationFailure(t *testing.T) {
	f := setup(t, &fakeExtractor{page1: "no recognizable content"})
	ctx := context.Background()

	require.NoError(t, f.proc.Process(ctx, f.msg))

	require.Len(t, f.jobs.writes, 2)
	final := f.jobs.writes[1]
	assert.Equal(t, constants.JobFailed, final.status)
	assert.Contains(t, final.description, "Unit not found. [Error:114]")
	assert.Contains(t, final.resultFile, constants.FailedFolder)

	ok, err := f.store.FileExists(ctx, constants.FailedFolder, "design-1b3c4.pdf")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestProcessExtractionError(t *testing.T) {
	f := setup(t, &fakeExtractor{err: errors.New("pdftotext: exit status 1")})
	ctx := context.Background()

	err := f.proc.Process(ctx, f.msg)
	require.Error(t, err)

	// Best-effort boundary: Running then Failed, with the source quarantined.
	require.Len(t, f.jobs.writes, 2)
	assert.Equal(t, constants.JobRunning, f.jobs.writes[0].status)
	assert.Equal(t, constants.JobFailed, f.jobs.writes[1].status)
	assert.Contains(t, f.jobs.writes[1].description, "Unexpected error")
}

func TestProcessRunningWriteFailureStopsEverything(t *testing.T) {
	f := setup(t, &fakeExtractor{page1: testCover})
	f.jobs.failOn[constants.JobRunning] = errors.New("store unavailable")

	err := f.proc.Process(context.Background(), f.msg)
	require.Error(t, err)

	// No terminal write may happen without a durable Running record.
	assert.Empty(t, f.jobs.writes)

	ok, _ := f.store.FileExists(context.Background(), constants.UploadedFolder, "design.pdf")
	assert.True(t, ok, "source must stay for redelivery")
}

func TestProcessDeterministicAcrossRedelivery(t *testing.T) {
	// Same message, fresh run (as after a crash before the move): the
	// computation must land on the same archive path.
	first := setup(t, &fakeExtractor{page1: testCover, page2: "REVISION 0.2"})
	require.NoError(t, first.proc.Process(context.Background(), first.msg))

	second := setup(t, &fakeExtractor{page1: testCover, page2: "REVISION 0.2"})
	require.NoError(t, second.proc.Process(context.Background(), second.msg))

	assert.Equal(t, first.jobs.writes, second.jobs.writes)
	assert.Equal(t, constants.JobConverted, first.jobs.writes[1].status)
}

func TestQuarantineName(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		jobID    string
		want     string
	}{
		{"uuid suffix", "design.pdf", testJobID, "design-1b3c4.pdf"},
		{"short job id kept whole", "design.pdf", "j1", "design-j1.pdf"},
		{"no extension", "design", "abcdefgh", "design-defgh"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QuarantineName(tt.fileName, tt.jobID))
		})
	}
}
