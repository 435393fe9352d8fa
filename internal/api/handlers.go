// Package api provides HTTP handlers for LeavePipe endpoints.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/BTreeMap/LeavePipe/internal/models"
)

// healthHandler provides a health check endpoint for monitoring and load balancing
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	healthData := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	// Exercise the store as a health indicator
	if requests, err := s.st.ListLeaveRequests(); err != nil {
		slog.Warn("Health check: failed to list leave requests", "error", err)
		healthData["status"] = "degraded"
		healthData["error"] = "Failed to reach workflow store"
	} else {
		healthData["leave_requests"] = len(requests)
	}

	statusCode := http.StatusOK
	if healthData["status"] != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSONResponse(w, statusCode, healthData)
}

// messageHandler injects one inbound sender message into the engine and
// returns the reply (POST /message). It is the synchronous counterpart
// of the webhook path, used for integration and operator testing.
func (s *Server) messageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.messageHandler: processing message", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.messageHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var resp models.Response
	if err := json.NewDecoder(r.Body).Decode(&resp); err != nil {
		slog.Warn("Server.messageHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if resp.From == "" || resp.Body == "" {
		slog.Warn("Server.messageHandler: missing fields", "from", resp.From, "body_length", len(resp.Body))
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Both 'from' and 'body' are required"))
		return
	}

	reply, err := s.eng.HandleMessage(context.Background(), resp.From, resp.Body)
	if err != nil {
		slog.Error("Server.messageHandler: engine error", "error", err, "from", resp.From)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to process message"))
		return
	}

	slog.Info("Server.messageHandler: message processed", "from", resp.From)
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{"reply": reply}))
}

// requestsHandler returns leave requests (GET /requests), optionally
// filtered with ?status=.
func (s *Server) requestsHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.requestsHandler: processing requests listing", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		slog.Warn("Server.requestsHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var (
		requests []models.LeaveRequest
		err      error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		requests, err = s.st.ListLeaveRequestsByStatus(models.LeaveStatus(status))
	} else {
		requests, err = s.st.ListLeaveRequests()
	}
	if err != nil {
		slog.Error("Error fetching leave requests", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch leave requests"))
		return
	}
	slog.Debug("leave requests fetched", "count", len(requests))
	writeJSONResponse(w, http.StatusOK, models.Success(requests))
}

// requestDetailHandler returns one leave request with its substitution
// history (GET /requests/{id}).
func (s *Server) requestDetailHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.requestDetailHandler: processing request detail", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		slog.Warn("Server.requestDetailHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/requests/")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		slog.Warn("Server.requestDetailHandler: invalid request id", "id", idStr)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid request id"))
		return
	}

	req, err := s.st.GetLeaveRequest(id)
	if err != nil {
		slog.Error("Error fetching leave request", "error", err, "id", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch leave request"))
		return
	}
	if req == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Leave request not found"))
		return
	}

	substitutions, err := s.st.ListSubstitutionsByLeave(id)
	if err != nil {
		slog.Error("Error fetching substitutions", "error", err, "id", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch substitutions"))
		return
	}

	writeJSONResponse(w, http.StatusOK, models.Success(map[string]interface{}{
		"request":       req,
		"substitutions": substitutions,
	}))
}

// receiptsHandler returns all recorded delivery attempts (GET /receipts).
func (s *Server) receiptsHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.receiptsHandler: processing receipts request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		slog.Warn("Server.receiptsHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	receipts, err := s.st.GetReceipts()
	if err != nil {
		slog.Error("Error fetching receipts", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch receipts"))
		return
	}
	slog.Debug("receipts fetched", "count", len(receipts))
	writeJSONResponse(w, http.StatusOK, models.Success(receipts))
}

// statsHandler returns statistics about the leave workflow (GET /stats).
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.statsHandler invoked", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		slog.Warn("Server.statsHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	requests, err := s.st.ListLeaveRequests()
	if err != nil {
		slog.Error("Error fetching leave requests in statsHandler", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch leave requests"))
		return
	}
	byStatus := make(map[string]int)
	var totalDays int
	for _, req := range requests {
		byStatus[string(req.Status)]++
		totalDays += req.Days
	}

	receipts, err := s.st.GetReceipts()
	if err != nil {
		slog.Error("Error fetching receipts in statsHandler", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch receipts"))
		return
	}
	var failedNotifications int
	for _, receipt := range receipts {
		if receipt.Status == models.MessageStatusFailed {
			failedNotifications++
		}
	}

	stats := map[string]interface{}{
		"total_requests":       len(requests),
		"total_days_requested": totalDays,
		"by_status":            byStatus,
		"notifications_sent":   len(receipts) - failedNotifications,
		"notifications_failed": failedNotifications,
	}
	slog.Debug("stats computed", "total_requests", len(requests))
	writeJSONResponse(w, http.StatusOK, models.Success(stats))
}
