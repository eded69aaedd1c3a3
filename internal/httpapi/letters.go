package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"letterbox/internal/lb"
)

// multipartMemory is how much of a multipart body is kept in memory before spilling to disk.
const multipartMemory = 8 << 20

type createLetterRequest struct {
	Title          string `json:"title"`
	Message        string `json:"message"`
	OpenAt         string `json:"openAt"`
	OpenDate       string `json:"openDate"`
	SenderPlayerID string `json:"senderPlayerId"`
}

type deleteLetterResponse struct {
	Message string `json:"message"`
}

// letterResponse adds the computed gate state to a letter.
type letterResponse struct {
	*lb.Capsule
	State lb.State `json:"state"`
}

func (s *Server) letterView(c *lb.Capsule, now time.Time) letterResponse {
	return letterResponse{Capsule: c, State: lb.StateAt(c, now)}
}

func (s *Server) handleListLetters(w http.ResponseWriter, r *http.Request) {
	letters, err := s.svc.ListCapsules(r.Context())
	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}
	now := s.clock.Now()
	views := make([]letterResponse, len(letters))
	for i, l := range letters {
		views[i] = s.letterView(l, now)
	}
	s.respondWithJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetLetter(w http.ResponseWriter, r *http.Request) {
	letter, err := s.svc.GetCapsule(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}
	s.respondWithJSON(w, http.StatusOK, s.letterView(letter, s.clock.Now()))
}

// handleCreateLetter accepts either multipart/form-data with optional
// "photos" file parts, or a JSON body without photos.
func (s *Server) handleCreateLetter(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)

	var (
		req    createLetterRequest
		photos []*multipart.FileHeader
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			s.respondWithBodyError(w, err)
			return
		}
		defer r.MultipartForm.RemoveAll()

		req = createLetterRequest{
			Title:          r.FormValue("title"),
			Message:        r.FormValue("message"),
			OpenAt:         r.FormValue("openAt"),
			OpenDate:       r.FormValue("openDate"),
			SenderPlayerID: r.FormValue("senderPlayerId"),
		}
		photos = r.MultipartForm.File["photos"]
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondWithBodyError(w, err)
			return
		}
	}

	openAt, err := parseOpenAt(req)
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, err.Error(), err)
		return
	}
	if len(photos) > lb.MaxAttachments {
		s.respondWithError(w, http.StatusBadRequest, fmt.Sprintf("photos: at most %d photos are allowed", lb.MaxAttachments), nil)
		return
	}

	uploads := make([]lb.AttachmentUpload, 0, len(photos))
	for _, fh := range photos {
		f, err := fh.Open()
		if err != nil {
			s.respondWithError(w, http.StatusBadRequest, "could not read uploaded photo", err)
			return
		}
		defer f.Close()
		uploads = append(uploads, lb.AttachmentUpload{Filename: fh.Filename, Size: fh.Size, Body: f})
	}

	letter, err := s.svc.CreateCapsule(r.Context(), lb.CreateCapsuleParams{
		Title:          req.Title,
		Message:        req.Message,
		OpenAt:         openAt,
		Attachments:    uploads,
		SenderDeviceID: req.SenderPlayerID,
	})
	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}
	s.respondWithJSON(w, http.StatusCreated, s.letterView(letter, s.clock.Now()))
}

func (s *Server) handleOpenLetter(w http.ResponseWriter, r *http.Request) {
	letter, err := s.svc.OpenCapsule(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}
	s.respondWithJSON(w, http.StatusOK, s.letterView(letter, s.clock.Now()))
}

func (s *Server) handleDeleteLetter(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteCapsule(r.Context(), r.PathValue("id")); err != nil {
		s.respondWithServiceError(w, err)
		return
	}
	s.respondWithJSON(w, http.StatusOK, deleteLetterResponse{Message: "letter deleted"})
}

// parseOpenAt reads the unlock time. Older app builds send "openDate".
func parseOpenAt(req createLetterRequest) (time.Time, error) {
	raw := strings.TrimSpace(req.OpenAt)
	if raw == "" {
		raw = strings.TrimSpace(req.OpenDate)
	}
	if raw == "" {
		return time.Time{}, fmt.Errorf("openAt: is required")
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("openAt: must be an RFC 3339 timestamp")
	}
	return t, nil
}

// respondWithBodyError reports a body that could not be read or decoded.
func (s *Server) respondWithBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		s.respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), err)
	case errors.Is(err, io.EOF):
		s.respondWithError(w, http.StatusBadRequest, "request body is empty", err)
	default:
		s.respondWithError(w, http.StatusBadRequest, "invalid request body", err)
	}
}
