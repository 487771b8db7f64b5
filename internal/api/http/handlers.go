package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"weighbridge-server/internal/logger"
	"weighbridge-server/internal/service"
)

// Pinger reports database reachability for the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SessionCounter reports connected realtime sessions for the health check.
type SessionCounter interface {
	Count() int
}

// ServerInfo is returned by /api/server-info.
type ServerInfo struct {
	Host    string `json:"host"`
	Port    int    `json:"port"`
	BaseURL string `json:"baseUrl"`
}

type APIHandler struct {
	admin   service.AdminService
	devices service.DeviceService
	db       Pinger
	sessions SessionCounter
	info     ServerInfo
}

func NewAPIHandler(admin service.AdminService, devices service.DeviceService, db Pinger, sessions SessionCounter, info ServerInfo) *APIHandler {
	return &APIHandler{admin: admin, devices: devices, db: db, sessions: sessions, info: info}
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *APIHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, loginResponse{Success: false, Message: "Invalid request body"})
		return
	}
	if err := h.admin.CheckLogin(req.Password); err != nil {
		logger.Warn("Admin login rejected", "remote", r.RemoteAddr)
		writeJSON(w, http.StatusUnauthorized, loginResponse{Success: false, Message: "Invalid Password"})
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Success: true, Message: "Access Granted"})
}

type portsResponse struct {
	Success      bool   `json:"success"`
	Ports        any    `json:"ports,omitempty"`
	CurrentPort  string `json:"currentPort"`
	IsSimulation bool   `json:"isSimulation"`
	Error        string `json:"error,omitempty"`
}

func (h *APIHandler) ListPorts(w http.ResponseWriter, r *http.Request) {
	ports, current, err := h.devices.ListDevices()
	if err != nil {
		logger.Warn("Failed to enumerate weight devices", "error", err)
		writeJSON(w, http.StatusOK, portsResponse{Success: false, Error: err.Error(), CurrentPort: current.Path, IsSimulation: current.Simulation})
		return
	}
	writeJSON(w, http.StatusOK, portsResponse{Success: true, Ports: ports, CurrentPort: current.Path, IsSimulation: current.Simulation})
}

type changePortRequest struct {
	Port string `json:"port"`
}

// ChangePort mirrors the result to every session through the device service broadcast.
func (h *APIHandler) ChangePort(w http.ResponseWriter, r *http.Request) {
	var req changePortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, service.PortChange{Success: false, Error: "Invalid request body"})
		return
	}
	writeJSON(w, http.StatusOK, h.devices.SwitchDevice(r.Context(), req.Port))
}

func (h *APIHandler) ServerInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.info)
}

type healthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
	Error    string `json:"error,omitempty"`
}

func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Sessions: h.sessions.Count(), Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Sessions: h.sessions.Count()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to write response", "error", err)
	}
}
