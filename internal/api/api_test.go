package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/BTreeMap/LeavePipe/internal/advisor"
	"github.com/BTreeMap/LeavePipe/internal/directory"
	"github.com/BTreeMap/LeavePipe/internal/engine"
	"github.com/BTreeMap/LeavePipe/internal/messaging"
	"github.com/BTreeMap/LeavePipe/internal/models"
	"github.com/BTreeMap/LeavePipe/internal/session"
	"github.com/BTreeMap/LeavePipe/internal/store"
	"github.com/BTreeMap/LeavePipe/internal/twiliowhatsapp"
)

const (
	testEmployeePhone = "+919876543210"
	testManagerPhone  = "+919876500000"
)

// newTestServer creates a Server over in-memory dependencies and the
// Twilio mock client.
func newTestServer(t *testing.T) (*Server, *store.InMemoryStore) {
	t.Helper()

	st := store.NewInMemoryStore()
	dir := directory.NewInMemoryDirectory([]models.Person{
		{ID: 1, Name: "Rahul Verma", Phone: testEmployeePhone, Department: "Engineering"},
		{ID: 2, Name: "Priya Sharma", Phone: "+919876543211", Department: "Engineering"},
	})
	sessions := session.NewStore()
	t.Cleanup(sessions.Close)

	twilioService := messaging.NewTwilioService(twiliowhatsapp.NewMockClient())

	eng, err := engine.New(
		engine.WithStore(st),
		engine.WithSessions(sessions),
		engine.WithDirectory(dir),
		engine.WithManagerCheck(directory.NewManagerCheck(testManagerPhone)),
		engine.WithNotifier(twilioService),
		engine.WithAnalyzer(&advisor.MockAnalyzer{Summary: "Recommendation: approve."}),
	)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	return NewServer(twilioService, st, eng, ""), st
}

func createJSONRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func assertHTTPStatus(t *testing.T, expected, actual int, context string) {
	t.Helper()
	if actual != expected {
		t.Errorf("%s: expected status %d, got %d", context, expected, actual)
	}
}

// assertJSONStatus decodes the API envelope and validates the status field.
func assertJSONStatus(t *testing.T, rr *httptest.ResponseRecorder, expected string) models.APIResponse {
	t.Helper()
	var response models.APIResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
	if response.Status != expected {
		t.Errorf("expected status %q, got %q (message: %q)", expected, response.Status, response.Message)
	}
	return response
}

func seedRequest(t *testing.T, st store.Store, status models.LeaveStatus, days int) *models.LeaveRequest {
	t.Helper()
	req := &models.LeaveRequest{
		RequesterName: "Rahul Verma",
		Days:          days,
		Reason:        "family emergency",
		Status:        status,
	}
	if err := st.CreateLeaveRequest(req); err != nil {
		t.Fatalf("failed to seed leave request: %v", err)
	}
	return req
}

func TestHealthHandler(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	server.healthHandler(rr, req)

	assertHTTPStatus(t, http.StatusOK, rr.Code, "health check")

	var health map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&health); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if health["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", health["status"])
	}
}

func TestHealthHandler_MethodNotAllowed(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest("POST", "/health", nil)
	rr := httptest.NewRecorder()
	server.healthHandler(rr, req)

	assertHTTPStatus(t, http.StatusMethodNotAllowed, rr.Code, "health wrong method")
}

func TestMessageHandler_StartsConversation(t *testing.T) {
	server, _ := newTestServer(t)

	req := createJSONRequest(t, "POST", "/message",
		`{"from":"`+testEmployeePhone+`","body":"I need 3 days leave for a family emergency"}`)
	rr := httptest.NewRecorder()
	server.messageHandler(rr, req)

	assertHTTPStatus(t, http.StatusOK, rr.Code, "message handler")
	response := assertJSONStatus(t, rr, "ok")

	result := response.Result.(map[string]interface{})
	reply := result["reply"].(string)
	if !strings.Contains(reply, "Leave Application Summary") {
		t.Errorf("expected a confirmation summary reply, got %q", reply)
	}
}

func TestMessageHandler_UnknownSender(t *testing.T) {
	server, _ := newTestServer(t)

	req := createJSONRequest(t, "POST", "/message",
		`{"from":"+10000000000","body":"hello"}`)
	rr := httptest.NewRecorder()
	server.messageHandler(rr, req)

	assertHTTPStatus(t, http.StatusOK, rr.Code, "message handler unknown sender")
	response := assertJSONStatus(t, rr, "ok")

	result := response.Result.(map[string]interface{})
	reply := result["reply"].(string)
	if !strings.Contains(reply, "couldn't find your number in the employee directory") {
		t.Errorf("expected an unknown-sender reply, got %q", reply)
	}
}

func TestMessageHandler_BadRequest(t *testing.T) {
	server, _ := newTestServer(t)

	for name, body := range map[string]string{
		"invalid JSON": `{"from":`,
		"missing from": `{"body":"hi"}`,
		"missing body": `{"from":"+15551234567"}`,
	} {
		req := createJSONRequest(t, "POST", "/message", body)
		rr := httptest.NewRecorder()
		server.messageHandler(rr, req)

		assertHTTPStatus(t, http.StatusBadRequest, rr.Code, name)
		assertJSONStatus(t, rr, "error")
	}
}

func TestMessageHandler_MethodNotAllowed(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/message", nil)
	rr := httptest.NewRecorder()
	server.messageHandler(rr, req)

	assertHTTPStatus(t, http.StatusMethodNotAllowed, rr.Code, "message wrong method")
}

func TestRequestsHandler(t *testing.T) {
	server, st := newTestServer(t)
	seedRequest(t, st, models.LeaveStatusPending, 3)
	seedRequest(t, st, models.LeaveStatusApproved, 2)

	req := httptest.NewRequest("GET", "/requests", nil)
	rr := httptest.NewRecorder()
	server.requestsHandler(rr, req)

	assertHTTPStatus(t, http.StatusOK, rr.Code, "requests listing")
	response := assertJSONStatus(t, rr, "ok")

	requests := response.Result.([]interface{})
	if len(requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(requests))
	}
}

func TestRequestsHandler_StatusFilter(t *testing.T) {
	server, st := newTestServer(t)
	seedRequest(t, st, models.LeaveStatusPending, 3)
	seedRequest(t, st, models.LeaveStatusApproved, 2)

	req := httptest.NewRequest("GET", "/requests?status=pending", nil)
	rr := httptest.NewRecorder()
	server.requestsHandler(rr, req)

	assertHTTPStatus(t, http.StatusOK, rr.Code, "requests status filter")
	response := assertJSONStatus(t, rr, "ok")

	requests := response.Result.([]interface{})
	if len(requests) != 1 {
		t.Fatalf("expected 1 pending request, got %d", len(requests))
	}
	first := requests[0].(map[string]interface{})
	if first["status"] != "pending" {
		t.Errorf("expected pending status, got %v", first["status"])
	}
}

func TestRequestDetailHandler(t *testing.T) {
	server, st := newTestServer(t)
	seeded := seedRequest(t, st, models.LeaveStatusSubstituteAssigned, 3)
	if err := st.CreateSubstitution(&models.Substitution{
		LeaveID:        seeded.ID,
		SubstituteName: "Priya Sharma",
		Status:         models.SubstitutionPending,
	}); err != nil {
		t.Fatalf("failed to seed substitution: %v", err)
	}

	req := httptest.NewRequest("GET", "/requests/1", nil)
	rr := httptest.NewRecorder()
	server.requestDetailHandler(rr, req)

	assertHTTPStatus(t, http.StatusOK, rr.Code, "request detail")
	response := assertJSONStatus(t, rr, "ok")

	result := response.Result.(map[string]interface{})
	request := result["request"].(map[string]interface{})
	if request["requester_name"] != "Rahul Verma" {
		t.Errorf("unexpected requester: %v", request["requester_name"])
	}
	substitutions := result["substitutions"].([]interface{})
	if len(substitutions) != 1 {
		t.Fatalf("expected 1 substitution, got %d", len(substitutions))
	}
}

func TestRequestDetailHandler_InvalidID(t *testing.T) {
	server, _ := newTestServer(t)

	for _, path := range []string{"/requests/abc", "/requests/0", "/requests/-1"} {
		req := httptest.NewRequest("GET", path, nil)
		rr := httptest.NewRecorder()
		server.requestDetailHandler(rr, req)

		assertHTTPStatus(t, http.StatusBadRequest, rr.Code, path)
		assertJSONStatus(t, rr, "error")
	}
}

func TestRequestDetailHandler_NotFound(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/requests/99", nil)
	rr := httptest.NewRecorder()
	server.requestDetailHandler(rr, req)

	assertHTTPStatus(t, http.StatusNotFound, rr.Code, "request detail missing")
	assertJSONStatus(t, rr, "error")
}

func TestReceiptsHandler(t *testing.T) {
	server, st := newTestServer(t)
	if err := st.AddReceipt(models.Receipt{To: testEmployeePhone, Status: models.MessageStatusSent, Time: 1}); err != nil {
		t.Fatalf("failed to seed receipt: %v", err)
	}

	req := httptest.NewRequest("GET", "/receipts", nil)
	rr := httptest.NewRecorder()
	server.receiptsHandler(rr, req)

	assertHTTPStatus(t, http.StatusOK, rr.Code, "receipts listing")
	response := assertJSONStatus(t, rr, "ok")

	receipts := response.Result.([]interface{})
	if len(receipts) != 1 {
		t.Fatalf("expected 1 receipt, got %d", len(receipts))
	}
}

func TestStatsHandler(t *testing.T) {
	server, st := newTestServer(t)
	seedRequest(t, st, models.LeaveStatusPending, 3)
	seedRequest(t, st, models.LeaveStatusPending, 1)
	seedRequest(t, st, models.LeaveStatusRejected, 5)
	if err := st.AddReceipt(models.Receipt{To: testEmployeePhone, Status: models.MessageStatusSent, Time: 1}); err != nil {
		t.Fatalf("failed to seed receipt: %v", err)
	}
	if err := st.AddReceipt(models.Receipt{To: testEmployeePhone, Status: models.MessageStatusFailed, Time: 2}); err != nil {
		t.Fatalf("failed to seed receipt: %v", err)
	}

	req := httptest.NewRequest("GET", "/stats", nil)
	rr := httptest.NewRecorder()
	server.statsHandler(rr, req)

	assertHTTPStatus(t, http.StatusOK, rr.Code, "stats")
	response := assertJSONStatus(t, rr, "ok")

	stats := response.Result.(map[string]interface{})
	if stats["total_requests"].(float64) != 3 {
		t.Errorf("expected 3 total requests, got %v", stats["total_requests"])
	}
	if stats["total_days_requested"].(float64) != 9 {
		t.Errorf("expected 9 total days, got %v", stats["total_days_requested"])
	}
	byStatus := stats["by_status"].(map[string]interface{})
	if byStatus["pending"].(float64) != 2 {
		t.Errorf("expected 2 pending, got %v", byStatus["pending"])
	}
	if stats["notifications_failed"].(float64) != 1 {
		t.Errorf("expected 1 failed notification, got %v", stats["notifications_failed"])
	}
}

func TestWebhookRouteRegistered(t *testing.T) {
	server, _ := newTestServer(t)
	handler := server.Handler()

	form := url.Values{}
	form.Set("From", "whatsapp:"+testEmployeePhone)
	form.Set("Body", "I need 2 days leave for a wedding")
	req := httptest.NewRequest("POST", "/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assertHTTPStatus(t, http.StatusOK, rr.Code, "webhook inbound")

	select {
	case resp := <-server.msgService.Responses():
		if resp.From != "whatsapp:"+testEmployeePhone {
			t.Errorf("unexpected webhook sender: %q", resp.From)
		}
		if resp.Body != "I need 2 days leave for a wedding" {
			t.Errorf("unexpected webhook body: %q", resp.Body)
		}
	default:
		t.Fatal("expected a response on the channel after webhook delivery")
	}
}

func TestWriteJSONResponseFallsBackOnMarshalFailure(t *testing.T) {
	rr := httptest.NewRecorder()
	// Channels cannot be marshaled, forcing the fallback path.
	writeJSONResponse(rr, http.StatusOK, map[string]interface{}{"bad": make(chan int)})

	assertHTTPStatus(t, http.StatusInternalServerError, rr.Code, "marshal fallback")
	var resp models.APIResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("fallback body is not valid JSON: %v", err)
	}
	if resp.Status != string(models.APIStatusError) || resp.Message != "Internal server error" {
		t.Errorf("unexpected fallback envelope: %+v", resp)
	}
}
