package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/baixafy/baixafy-api/internal/entitlement"
	"github.com/baixafy/baixafy-api/internal/fetcher"
	"github.com/baixafy/baixafy-api/internal/job"
)

type Server struct {
	srv *http.Server
}

// New creates a server. The baseCtx is used as the base context for all
// incoming requests (via BaseContext); cancelling it winds down in-flight
// requests during graceful shutdown. Archive downloads can be slow, so the
// write timeout is generous.
func New(baseCtx context.Context, port string, jobSvc *job.Service, entitleSvc *entitlement.Service, fetch fetcher.Fetcher, archiveRoot string) *Server {
	return &Server{
		srv: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: newMux(jobSvc, entitleSvc, fetch, archiveRoot),
			BaseContext: func(_ net.Listener) context.Context {
				return baseCtx
			},
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
	}
}

func (s *Server) Start() error {
	slog.Info("starting server", "addr", s.srv.Addr)
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down server")
	return s.srv.Shutdown(ctx)
}
