package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sheikh-saqib/deposit-ledger-service/internal/ledger"
	"github.com/sheikh-saqib/deposit-ledger-service/internal/metrics"
	"github.com/sheikh-saqib/deposit-ledger-service/internal/storage/memory"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()
	l := ledger.NewLedger(memory.NewMemoryLedgerStore())
	return NewServer(l, metrics.NewCollector("test"), nil)
}

func do(t *testing.T, s *Server, method, target, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if userID != "" {
		req.Header.Set(UserIDHeader, userID)
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func openAccount(t *testing.T, s *Server, userID string) accountResponse {
	t.Helper()
	w := do(t, s, http.MethodPost, "/accounts", userID, `{"currency":"USD"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("open account: status %d body %s", w.Code, w.Body)
	}
	return decode[accountResponse](t, w)
}

func TestServer_Health(t *testing.T) {
	s := setupTestServer(t)

	w := do(t, s, http.MethodGet, "/health", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestServer_RequiresUser(t *testing.T) {
	s := setupTestServer(t)

	w := do(t, s, http.MethodGet, "/transactions?accountId=x", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected status 401, got %d", w.Code)
	}
	resp := decode[errorResponse](t, w)
	if resp.Error.Type != "UnauthorizedError" {
		t.Errorf("Expected UnauthorizedError, got %s", resp.Error.Type)
	}
}

func TestServer_OpenAndGetAccount(t *testing.T) {
	s := setupTestServer(t)
	acct := openAccount(t, s, "alice")

	if acct.Balance != "0.00" || acct.Currency != "USD" || acct.UserID != "alice" {
		t.Errorf("unexpected account %+v", acct)
	}

	w := do(t, s, http.MethodGet, "/accounts/"+acct.ID, "alice", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	w = do(t, s, http.MethodGet, "/accounts/"+acct.ID, "mallory", "")
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", w.Code)
	}

	w = do(t, s, http.MethodPost, "/accounts", "alice", `{"currency":"JPY"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestServer_DepositAndList(t *testing.T) {
	s := setupTestServer(t)
	acct := openAccount(t, s, "alice")

	w := do(t, s, http.MethodPost, "/transactions/deposit", "alice",
		`{"accountId":"`+acct.ID+`","amount":100.50,"reference":"first"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body)
	}
	first := decode[depositResponse](t, w)
	if first.Balance != "100.50" || first.Transaction.Amount != "100.50" || first.Transaction.Type != "deposit" {
		t.Errorf("unexpected deposit response %+v", first)
	}

	w = do(t, s, http.MethodPost, "/transactions/deposit", "alice",
		`{"accountId":"`+acct.ID+`","amount":50.00,"reference":"second"}`)
	second := decode[depositResponse](t, w)
	if second.Balance != "150.50" {
		t.Errorf("Expected balance 150.50, got %s", second.Balance)
	}

	w = do(t, s, http.MethodGet, "/transactions?accountId="+acct.ID+"&page=1&limit=1", "alice", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	page := decode[transactionPageResponse](t, w)
	if page.Total != 2 || page.Page != 1 || page.Limit != 1 || len(page.Items) != 1 {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.Items[0].Reference == nil || *page.Items[0].Reference != "second" {
		t.Errorf("Expected the second deposit first, got %+v", page.Items[0])
	}

	w = do(t, s, http.MethodGet, "/accounts/"+acct.ID+"/reconciliation", "alice", "")
	rec := decode[reconciliationResponse](t, w)
	if !rec.Consistent || rec.Balance != "150.50" || rec.EntryCount != 2 {
		t.Errorf("unexpected reconciliation %+v", rec)
	}
}

func TestServer_DepositErrors(t *testing.T) {
	s := setupTestServer(t)
	acct := openAccount(t, s, "alice")

	tests := []struct {
		name    string
		user    string
		body    string
		status  int
		errType string
		msg     string
	}{
		{"string amount", "alice", `{"accountId":"` + acct.ID + `","amount":"abc"}`, 400, "ValidationError", "amount must be a number"},
		{"quoted number", "alice", `{"accountId":"` + acct.ID + `","amount":"10"}`, 400, "ValidationError", "amount must be a number"},
		{"missing amount", "alice", `{"accountId":"` + acct.ID + `"}`, 400, "ValidationError", "amount must be a number"},
		{"zero", "alice", `{"accountId":"` + acct.ID + `","amount":0}`, 400, "ValidationError", "amount must be greater than 0"},
		{"negative", "alice", `{"accountId":"` + acct.ID + `","amount":-5}`, 400, "ValidationError", "amount must be greater than 0"},
		{"huge exponent", "alice", `{"accountId":"` + acct.ID + `","amount":1e100000000}`, 400, "ValidationError", "amount exceeds the maximum allowed"},
		{"tiny exponent", "alice", `{"accountId":"` + acct.ID + `","amount":1e-100000000}`, 400, "ValidationError", "amount must have at most 2 decimal places"},
		{"malformed body", "alice", `{"accountId":`, 400, "ValidationError", "invalid request body"},
		{"unknown account", "alice", `{"accountId":"nope","amount":1}`, 404, "NotFoundError", "account not found"},
		{"not owner", "mallory", `{"accountId":"` + acct.ID + `","amount":1}`, 403, "ForbiddenError", "caller does not own this account"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/transactions/deposit", tt.user, tt.body)
			if w.Code != tt.status {
				t.Fatalf("Expected status %d, got %d: %s", tt.status, w.Code, w.Body)
			}
			resp := decode[errorResponse](t, w)
			if resp.Error.Type != tt.errType || resp.Error.Message != tt.msg {
				t.Errorf("got %+v, want %s %q", resp.Error, tt.errType, tt.msg)
			}
		})
	}
}

func TestServer_DepositRejectsOversizedBody(t *testing.T) {
	s := setupTestServer(t)
	acct := openAccount(t, s, "alice")

	body := `{"accountId":"` + acct.ID + `","amount":1,"reference":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	w := do(t, s, http.MethodPost, "/transactions/deposit", "alice", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
	if resp := decode[errorResponse](t, w); resp.Error.Message != "invalid request body" {
		t.Errorf("message = %q", resp.Error.Message)
	}
}

func TestServer_ListErrors(t *testing.T) {
	s := setupTestServer(t)
	acct := openAccount(t, s, "alice")

	tests := []struct {
		query  string
		status int
		msg    string
	}{
		{"", 400, "accountId is required"},
		{"accountId=" + acct.ID + "&page=0", 400, "page must be a positive integer"},
		{"accountId=" + acct.ID + "&limit=x", 400, "limit must be a positive integer"},
		{"accountId=" + acct.ID + "&limit=101", 400, "limit cannot exceed 100"},
		{"accountId=" + acct.ID + "&limit=99999999999999999999", 400, "limit cannot exceed 100"},
		{"accountId=missing", 404, "account not found"},
	}

	for _, tt := range tests {
		w := do(t, s, http.MethodGet, "/transactions?"+tt.query, "alice", "")
		if w.Code != tt.status {
			t.Errorf("%q: Expected status %d, got %d", tt.query, tt.status, w.Code)
			continue
		}
		if resp := decode[errorResponse](t, w); resp.Error.Message != tt.msg {
			t.Errorf("%q: message = %q, want %q", tt.query, resp.Error.Message, tt.msg)
		}
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	s := setupTestServer(t)

	w := do(t, s, http.MethodGet, "/transactions/deposit", "alice", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}

func TestServer_MetricsUseRouteTemplate(t *testing.T) {
	s := setupTestServer(t)
	acct := openAccount(t, s, "alice")
	do(t, s, http.MethodGet, "/accounts/"+acct.ID, "alice", "")

	w := do(t, s, http.MethodGet, "/metrics", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `route="/accounts/{id}"`) {
		t.Error("expected route template label in metrics")
	}
	if strings.Contains(body, acct.ID) {
		t.Error("raw account id leaked into metric labels")
	}
}
