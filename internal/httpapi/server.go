// Package httpapi exposes LBService as a JSON REST API.
package httpapi

import (
	"net/http"
	"path/filepath"
	"time"

	"letterbox/internal/lb"
)

// DefaultMaxUploadSize bounds a single create request including photos.
const DefaultMaxUploadSize = 50 << 20

// Options configures a Server.
type Options struct {
	// MaxUploadSize limits request bodies in bytes. Zero selects DefaultMaxUploadSize.
	MaxUploadSize int64
	// PhotoDir, if set, is the attachment store root. Only its letters/
	// subtree is served, read-only and without directory listings, under /photos/letters/.
	PhotoDir string
}

// Server routes HTTP requests to the service.
type Server struct {
	svc           *lb.LBService
	logger        lb.Logger
	clock         lb.Clock
	maxUploadSize int64
	photoDir      string
}

func NewServer(svc *lb.LBService, logger lb.Logger, clock lb.Clock, opts Options) *Server {
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = DefaultMaxUploadSize
	}
	return &Server{
		svc:           svc,
		logger:        logger,
		clock:         clock,
		maxUploadSize: opts.MaxUploadSize,
		photoDir:      opts.PhotoDir,
	}
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /api/letters", s.handleListLetters)
	mux.HandleFunc("POST /api/letters", s.handleCreateLetter)
	mux.HandleFunc("GET /api/letters/{id}", s.handleGetLetter)
	mux.HandleFunc("PATCH /api/letters/{id}/open", s.handleOpenLetter)
	mux.HandleFunc("DELETE /api/letters/{id}", s.handleDeleteLetter)

	mux.HandleFunc("POST /api/devices/register", s.handleRegisterDevice)
	mux.HandleFunc("GET /api/devices", s.handleListDevices)
	mux.HandleFunc("DELETE /api/devices/{playerId}", s.handleDeactivateDevice)

	if s.photoDir != "" {
		photos := http.FileServer(http.Dir(filepath.Join(s.photoDir, "letters")))
		mux.Handle("GET /photos/letters/", http.StripPrefix("/photos/letters/", noDirListing(photos)))
	}

	return s.recoverer(s.requestLogger(corsMiddleware(mux)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   s.clock.Now().Format(time.RFC3339),
	})
}
