// Package pipeline drives one queued document from Running to a terminal
// Converted or Failed status: fetch, extract page text, classify, then
// archive or quarantine.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/unistad/document-archiver/constants"
	"github.com/unistad/document-archiver/internal/classify"
	"github.com/unistad/document-archiver/internal/extract"
	"github.com/unistad/document-archiver/internal/queue"
	"github.com/unistad/document-archiver/internal/repository"
	"github.com/unistad/document-archiver/internal/storage"
)

// Folders locates the three storage areas the pipeline works across.
type Folders struct {
	Uploaded    string // where the upload side drops documents
	Failed      string // quarantine
	ArchiveRoot string // base of the classified folder tree
}

func defaultFolders(f Folders) Folders {
	if f.Uploaded == "" {
		f.Uploaded = constants.UploadedFolder
	}
	if f.Failed == "" {
		f.Failed = constants.FailedFolder
	}
	if f.ArchiveRoot == "" {
		f.ArchiveRoot = constants.ArchiveFolder
	}
	return f
}

// Processor executes one message end-to-end. It holds no mutable state
// across jobs; the dictionaries are read-only and shared.
type Processor struct {
	logger    *slog.Logger
	store     storage.Storage
	jobs      repository.JobRepository
	extractor extract.PageTexts
	dicts     *classify.Dictionaries
	folders   Folders
}

func NewProcessor(
	logger *slog.Logger,
	store storage.Storage,
	jobs repository.JobRepository,
	extractor extract.PageTexts,
	dicts *classify.Dictionaries,
	folders Folders,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:    logger,
		store:     store,
		jobs:      jobs,
		extractor: extractor,
		dicts:     dicts,
		folders:   defaultFolders(folders),
	}
}

// Process runs the state machine for one message. The Running write always
// happens before any terminal write; if it cannot be recorded the message is
// left for redelivery. Classification failures and destination collisions
// are regular Failed outcomes, not errors; only collaborator failures
// surface as errors, after a best-effort quarantine.
func (p *Processor) Process(ctx context.Context, msg queue.Message) error {
	log := p.logger.With("job_id", msg.JobID, "file", msg.FileName)
	log.Info("processing queued document")

	if err := p.jobs.UpdateStatus(ctx, msg.PartitionKey, msg.JobID, constants.JobRunning, "", ""); err != nil {
		return fmt.Errorf("mark running: %w", err)
	}

	if err := p.run(ctx, msg, log); err != nil {
		log.Error("processing failed", "error", err)
		p.failBestEffort(ctx, msg, "Unexpected error during conversion: "+err.Error(), log)
		return err
	}
	return nil
}

func (p *Processor) run(ctx context.Context, msg queue.Message, log *slog.Logger) error {
	rc, err := p.store.GetFile(ctx, p.folders.Uploaded, msg.FileName)
	if err != nil {
		return fmt.Errorf("fetch source: %w", err)
	}
	page1, page2, err := p.extractor.FirstTwoPages(ctx, rc)
	rc.Close()
	if err != nil {
		return fmt.Errorf("extract page text: %w", err)
	}

	res := classify.NameDocument(page1, page2, p.dicts)
	if !res.OK {
		return p.quarantine(ctx, msg, res.ErrorDetail, log)
	}

	destDir := p.folders.ArchiveRoot + constants.FolderDelimiter + res.TargetFolder
	destName := res.FileName + constants.PDFExtension

	// The archive namespace is the source of truth; overwriting a
	// previously archived document is never acceptable.
	exists, err := p.store.FileExists(ctx, destDir, destName)
	if err != nil {
		return fmt.Errorf("check destination: %w", err)
	}
	if exists {
		diag := fmt.Sprintf("The file %s already exists at the target folder %s. [ERROR: 200]", destName, destDir)
		return p.quarantine(ctx, msg, diag, log)
	}

	if err := p.store.MoveFile(ctx, p.folders.Uploaded, msg.FileName, destDir, destName); err != nil {
		log.Error("archive move failed", "error", err)
		return p.quarantine(ctx, msg, "Failed to store the converted document: "+err.Error(), log)
	}

	resultPath := destDir + constants.FolderDelimiter + destName
	if err := p.jobs.UpdateStatus(ctx, msg.PartitionKey, msg.JobID, constants.JobConverted, "", resultPath); err != nil {
		return fmt.Errorf("mark converted: %w", err)
	}
	log.Info("document archived", "path", resultPath)
	return nil
}

// quarantine moves the source to the failed folder under a collision-safe
// name and records the Failed status with the diagnostic. The quarantine
// name is deterministic per job so a redelivered message lands on the same
// path.
func (p *Processor) quarantine(ctx context.Context, msg queue.Message, diag string, log *slog.Logger) error {
	qname := QuarantineName(msg.FileName, msg.JobID)
	if err := p.store.MoveFile(ctx, p.folders.Uploaded, msg.FileName, p.folders.Failed, qname); err != nil {
		// The status write still proceeds; the source stays put for an
		// operator to inspect.
		log.Error("quarantine move failed", "error", err)
	}
	qpath := p.folders.Failed + constants.FolderDelimiter + qname
	if err := p.jobs.UpdateStatus(ctx, msg.PartitionKey, msg.JobID, constants.JobFailed, diag, qpath); err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	log.Warn("document quarantined", "path", qpath, "reason", diag)
	return nil
}

// failBestEffort handles the unexpected-error boundary: quarantine and a
// Failed write are attempted once each, their own failures only logged.
func (p *Processor) failBestEffort(ctx context.Context, msg queue.Message, diag string, log *slog.Logger) {
	if err := p.quarantine(ctx, msg, diag, log); err != nil {
		log.Error("failed status write did not complete", "error", err)
	}
}

// QuarantineName appends the last five characters of the job id before the
// extension: "design.pdf" + job ...1b3c4 -> "design-1b3c4.pdf".
func QuarantineName(fileName, jobID string) string {
	suffix := jobID
	if len(suffix) > 5 {
		suffix = suffix[len(suffix)-5:]
	}
	ext := ""
	if i := strings.LastIndex(fileName, "."); i >= 0 {
		ext = fileName[i:]
		fileName = fileName[:i]
	}
	return fileName + "-" + suffix + ext
}
