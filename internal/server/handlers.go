// Package server exposes the upload-side HTTP API: document ingestion plus
// read access to the job log.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/unistad/document-archiver/constants"
	"github.com/unistad/document-archiver/internal/common"
	"github.com/unistad/document-archiver/internal/export"
	"github.com/unistad/document-archiver/internal/queue"
	"github.com/unistad/document-archiver/internal/repository"
	"github.com/unistad/document-archiver/internal/storage"
)

// maxUploadBytes bounds the multipart body; stadium design documents top out
// well under this.
const maxUploadBytes = 256 << 20

// Handlers carries the collaborators the HTTP layer dispatches into.
type Handlers struct {
	logger    *slog.Logger
	store     storage.Storage
	jobs      repository.JobRepository
	queue     queue.Queue
	exporter  *export.Service
	partition string
	queueTTL  time.Duration
}

func NewHandlers(
	logger *slog.Logger,
	store storage.Storage,
	jobs repository.JobRepository,
	q queue.Queue,
	exporter *export.Service,
	partition string,
	queueTTL time.Duration,
) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		logger:    logger,
		store:     store,
		jobs:      jobs,
		queue:     q,
		exporter:  exporter,
		partition: partition,
		queueTTL:  queueTTL,
	}
}

type jobResponse struct {
	JobID             string `json:"jobId"`
	Status            int    `json:"status"`
	StatusText        string `json:"statusText"`
	StatusDescription string `json:"statusDescription"`
	SourceFile        string `json:"sourceFile"`
	ResultFile        string `json:"resultFile,omitempty"`
	User              string `json:"user,omitempty"`
	UpdatedAt         string `json:"updatedAt,omitempty"`
}

func toJobResponse(j *repository.Job) jobResponse {
	resp := jobResponse{
		JobID:             j.JobID,
		Status:            int(j.Status),
		StatusText:        j.Status.String(),
		StatusDescription: j.StatusDescription,
		SourceFile:        j.SourceFile,
		ResultFile:        j.ResultFile,
		User:              j.User,
	}
	if !j.UpdatedAt.IsZero() {
		resp.UpdatedAt = j.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// UploadDocument accepts a multipart PDF, parks it in the uploaded folder,
// creates the Queued job record and enqueues the processing message. The
// response is 202: conversion is asynchronous.
func (h *Handlers) UploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	fileName := filepath.Base(header.Filename)
	if !constants.IsPDF(fileName) {
		respondError(w, http.StatusBadRequest, "only .pdf documents are accepted")
		return
	}
	user := r.FormValue("user")
	if user == "" {
		user = "anonymous"
	}

	jobID := uuid.NewString()
	log := h.logger.With("job_id", jobID, "file", fileName, "user", user)

	if err := h.store.SaveFile(r.Context(), constants.UploadedFolder, fileName, file); err != nil {
		log.Error("upload save failed", "error", err)
		respondError(w, http.StatusInternalServerError, "could not store the document")
		return
	}

	sourcePath := constants.UploadedFolder + constants.FolderDelimiter + fileName
	if err := h.jobs.Create(r.Context(), h.partition, jobID, sourcePath, user); err != nil {
		log.Error("job create failed", "error", err)
		respondError(w, http.StatusInternalServerError, "could not record the job")
		return
	}

	msg := queue.Message{
		PartitionKey: h.partition,
		JobID:        jobID,
		FileName:     fileName,
		User:         user,
	}
	if err := h.queue.Enqueue(r.Context(), msg, h.queueTTL); err != nil {
		// The job record stays Queued; an operator can re-enqueue it.
		log.Error("enqueue failed", "error", err)
		respondError(w, http.StatusInternalServerError, "could not queue the document")
		return
	}

	log.Info("document accepted")
	respondJSON(w, http.StatusAccepted, map[string]any{
		"jobId":    jobID,
		"fileName": fileName,
		"status":   int(constants.JobQueued),
	})
}

// GetJob returns one job record by id.
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job, err := h.jobs.Get(r.Context(), h.partition, jobID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			respondError(w, http.StatusNotFound, fmt.Sprintf("job %s not found", jobID))
			return
		}
		h.logger.Error("job lookup failed", "job_id", jobID, "error", err)
		respondError(w, http.StatusInternalServerError, "could not load the job")
		return
	}
	respondJSON(w, http.StatusOK, toJobResponse(job))
}

// ListJobs returns every job in the partition, newest first.
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobs.List(r.Context(), h.partition)
	if err != nil {
		h.logger.Error("job list failed", "error", err)
		respondError(w, http.StatusInternalServerError, "could not load the job log")
		return
	}
	out := make([]jobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toJobResponse(j))
	}
	respondJSON(w, http.StatusOK, map[string]any{"jobs": out})
}

// ExportJobs streams the job log as an XLSX attachment.
func (h *Handlers) ExportJobs(w http.ResponseWriter, r *http.Request) {
	data, err := h.exporter.ExportJobsXLSX(r.Context(), h.partition)
	if err != nil {
		h.logger.Error("job export failed", "error", err)
		respondError(w, http.StatusInternalServerError, "could not export the job log")
		return
	}
	name := "jobs-" + time.Now().UTC().Format("20060102-150405") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HealthCheck reports liveness; the worker owns DB health.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
