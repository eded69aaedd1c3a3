package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"letterbox/internal/lb"
)

type registerDeviceRequest struct {
	PlayerID   string `json:"playerId"`
	UserName   string `json:"userName"`
	DeviceName string `json:"deviceName"`
	Platform   string `json:"platform"`
}

type deviceResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Device  *lb.Device `json:"device,omitempty"`
}

type deviceListResponse struct {
	Success bool         `json:"success"`
	Devices []*lb.Device `json:"devices"`
}

func (s *Server) handleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req registerDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithBodyError(w, err)
		return
	}

	device, err := s.svc.RegisterDevice(r.Context(), lb.RegisterDeviceParams{
		ExternalID: req.PlayerID,
		OwnerName:  req.UserName,
		DeviceName: req.DeviceName,
		Platform:   req.Platform,
	})
	if err != nil {
		s.respondWithDeviceError(w, err)
		return
	}
	s.respondWithJSON(w, http.StatusOK, deviceResponse{Success: true, Message: "device registered", Device: device})
}

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.svc.ListDevices(r.Context())
	if err != nil {
		s.respondWithDeviceError(w, err)
		return
	}
	if devices == nil {
		devices = []*lb.Device{}
	}
	s.respondWithJSON(w, http.StatusOK, deviceListResponse{Success: true, Devices: devices})
}

func (s *Server) handleDeactivateDevice(w http.ResponseWriter, r *http.Request) {
	device, err := s.svc.DeactivateDevice(r.Context(), r.PathValue("playerId"))
	if err != nil {
		s.respondWithDeviceError(w, err)
		return
	}
	s.respondWithJSON(w, http.StatusOK, deviceResponse{Success: true, Message: "device deactivated", Device: device})
}

// respondWithDeviceError keeps the {"success": false} envelope the app expects from device routes.
func (s *Server) respondWithDeviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lb.ErrValidation):
		s.respondWithJSON(w, http.StatusBadRequest, deviceResponse{Message: err.Error()})
	case errors.Is(err, lb.ErrNotFound):
		s.respondWithJSON(w, http.StatusNotFound, deviceResponse{Message: "device not found"})
	default:
		s.respondWithError(w, http.StatusInternalServerError, "internal error", err)
	}
}
