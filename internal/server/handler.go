package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/baixafy/baixafy-api/internal/apperror"
	"github.com/baixafy/baixafy-api/internal/entitlement"
	"github.com/baixafy/baixafy-api/internal/fetcher"
	"github.com/baixafy/baixafy-api/internal/job"
)

const (
	userKeyHeader  = "X-API-Key"
	anonymousUser  = "anonymous"
	healthDeadline = 20 * time.Second
)

type handler struct {
	jobSvc      *job.Service
	entitleSvc  *entitlement.Service
	fetch       fetcher.Fetcher
	archiveRoot string
}

func userKey(r *http.Request) string {
	if key := r.Header.Get(userKeyHeader); key != "" {
		return key
	}
	return anonymousUser
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthDeadline)
	defer cancel()

	status := map[string]string{"status": "ok", "fetcher": "ok"}
	if err := h.fetch.Healthy(ctx); err != nil {
		status["status"] = "degraded"
		status["fetcher"] = "unavailable"
		writeJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *handler) submitJob(w http.ResponseWriter, r *http.Request) {
	var req job.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apperror.BadRequest, "invalid request body")
		return
	}
	req.UserKey = userKey(r)

	id, err := h.jobSvc.Submit(r.Context(), req)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"jobId": id})
}

func (h *handler) getJob(w http.ResponseWriter, r *http.Request) {
	rec, err := h.jobSvc.Get(job.GetJobRequest{ID: r.PathValue("id")})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *handler) listJobs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.jobSvc.List())
}

// downloadArchive streams a completed job's archive as an attachment. The
// file name is the opaque resultPath value; anything that resolves outside
// the archive root is rejected. Downloading does not touch the retention
// timer, so a swept archive is simply gone.
func (h *handler) downloadArchive(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("file")
	if name == "" || name != filepath.Base(name) {
		writeError(w, http.StatusBadRequest, apperror.BadRequest, "invalid archive name")
		return
	}

	path := filepath.Join(h.archiveRoot, name)
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, apperror.NotFound, "archive not found or expired")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	http.ServeFile(w, r, path)
}

func (h *handler) downloadHistory(w http.ResponseWriter, r *http.Request) {
	downloads, err := h.entitleSvc.History(r.Context(), userKey(r))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, downloads)
}
