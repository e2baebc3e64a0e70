package server

import (
	"net/http"

	"github.com/baixafy/baixafy-api/internal/entitlement"
	"github.com/baixafy/baixafy-api/internal/fetcher"
	"github.com/baixafy/baixafy-api/internal/job"
)

// NewHandler creates the full HTTP handler with routes and middleware.
// Exported for use in tests (e.g., httptest.NewServer).
func NewHandler(jobSvc *job.Service, entitleSvc *entitlement.Service, fetch fetcher.Fetcher, archiveRoot string) http.Handler {
	return newMux(jobSvc, entitleSvc, fetch, archiveRoot)
}

func newMux(jobSvc *job.Service, entitleSvc *entitlement.Service, fetch fetcher.Fetcher, archiveRoot string) http.Handler {
	h := &handler{
		jobSvc:      jobSvc,
		entitleSvc:  entitleSvc,
		fetch:       fetch,
		archiveRoot: archiveRoot,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("POST /api/v1/jobs", h.submitJob)
	mux.HandleFunc("GET /api/v1/jobs", h.listJobs)
	mux.HandleFunc("GET /api/v1/jobs/{id}", h.getJob)
	mux.HandleFunc("GET /api/v1/downloads/{file}", h.downloadArchive)
	mux.HandleFunc("GET /api/v1/history", h.downloadHistory)

	// Apply middleware stack: recovery -> requestID -> logging
	var handler http.Handler = mux
	handler = logging(handler)
	handler = requestID(handler)
	handler = recovery(handler)

	return handler
}
