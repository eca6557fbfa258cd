package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/srxwire-net/srxwire/pkg/device"
	"github.com/srxwire-net/srxwire/pkg/engine"
	"github.com/srxwire-net/srxwire/pkg/util"
)

// configureRequest is the JSON body for /api/configure and /api/validate.
type configureRequest struct {
	Address      string `json:"device_ip"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	Simulate     bool   `json:"mock_mode"`
	Interface    string `json:"interface_name"`
	InterfaceIP  string `json:"interface_ip"`
	Zone         string `json:"security_zone"`
	IncludeHTTPS bool   `json:"include_https"`
}

func (r configureRequest) toEngineRequest() *engine.Request {
	return &engine.Request{
		Address:      r.Address,
		Username:     r.Username,
		Password:     r.Password,
		Simulate:     r.Simulate,
		Interface:    r.Interface,
		InterfaceIP:  r.InterfaceIP,
		Zone:         r.Zone,
		IncludeHTTPS: r.IncludeHTTPS,
	}
}

func (s *Server) handleConfigure(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req configureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	outcome, err := s.engine.Configure(r.Context(), req.toEngineRequest())
	if err != nil {
		switch {
		case errors.Is(err, util.ErrValidationFailed):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, util.ErrDeviceBusy):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": outcome.Success,
		"message": outcome.Message,
		"details": outcome,
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req configureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	outcome, err := s.engine.Validate(r.Context(), req.toEngineRequest())
	if err != nil {
		if errors.Is(err, util.ErrValidationFailed) {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"valid":   false,
				"message": err.Error(),
			})
			return
		}
		if errors.Is(err, util.ErrDeviceBusy) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid":   outcome.Success,
		"message": outcome.Message,
		"details": outcome,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	address := q.Get("device_ip")
	simulate := q.Get("mock_mode") != "false"
	creds := device.Credentials{
		Username: q.Get("username"),
		Password: q.Get("password"),
	}
	if address == "" {
		writeError(w, http.StatusBadRequest, "device_ip is required")
		return
	}

	facts, err := s.engine.TestConnection(r.Context(), address, creds, simulate)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"connected": false,
			"error":     err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"connected":   true,
		"device_info": facts,
	})
}

// backupRequest is the JSON body for /api/backup.
type backupRequest struct {
	Address  string `json:"device_ip"`
	Username string `json:"username"`
	Password string `json:"password"`
	Simulate bool   `json:"mock_mode"`
}

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req backupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Address == "" {
		writeError(w, http.StatusBadRequest, "device_ip is required")
		return
	}

	creds := device.Credentials{Username: req.Username, Password: req.Password}
	rec, err := s.engine.Backup(r.Context(), req.Address, creds, req.Simulate)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "configuration backup created successfully",
		"backup":  rec,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entries := s.auditLog.List()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"history": entries,
		"total":   len(entries),
	})
}
