package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/deposit-ledger-service/internal/ledger"
	"github.com/sheikh-saqib/deposit-ledger-service/internal/models"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 64 << 10

// HTTPMetrics records served requests.
type HTTPMetrics interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
	Handler() http.Handler
}

// Server exposes the ledger over HTTP.
type Server struct {
	ledger  *ledger.Ledger
	metrics HTTPMetrics
	logger  *zap.Logger
	router  *mux.Router
}

// NewServer wires the routes. metrics may be nil.
func NewServer(l *ledger.Ledger, metrics HTTPMetrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{ledger: l, metrics: metrics, logger: logger}

	r := mux.NewRouter()
	r.Use(s.instrument)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if metrics != nil {
		r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	}

	authed := r.NewRoute().Subrouter()
	authed.Use(requireUser)
	authed.HandleFunc("/accounts", s.handleOpenAccount).Methods(http.MethodPost)
	authed.HandleFunc("/accounts/{id}", s.handleGetAccount).Methods(http.MethodGet)
	authed.HandleFunc("/accounts/{id}/reconciliation", s.handleReconcile).Methods(http.MethodGet)
	authed.HandleFunc("/transactions/deposit", s.handleDeposit).Methods(http.MethodPost)
	authed.HandleFunc("/transactions", s.handleListTransactions).Methods(http.MethodGet)

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleOpenAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Currency string `json:"currency"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ledger.KindValidation.String(), "invalid request body")
		return
	}

	acct, err := s.ledger.OpenAccount(r.Context(), UserIDFrom(r.Context()), models.Currency(req.Currency))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newAccountResponse(acct))
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := s.ledger.GetAccount(r.Context(), mux.Vars(r)["id"], UserIDFrom(r.Context()))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAccountResponse(acct))
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	rec, err := s.ledger.Reconcile(r.Context(), mux.Vars(r)["id"], UserIDFrom(r.Context()))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reconciliationResponse{
		AccountID:    rec.AccountID,
		Balance:      money(rec.Balance),
		EntriesTotal: money(rec.EntriesTotal),
		EntryCount:   rec.EntryCount,
		Consistent:   rec.Consistent(),
	})
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID string          `json:"accountId"`
		Amount    json.RawMessage `json:"amount"` // raw so "abc" and "10" can be told apart from 10
		Reference *string         `json:"reference"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ledger.KindValidation.String(), "invalid request body")
		return
	}

	res, err := s.ledger.Deposit(r.Context(), ledger.DepositRequest{
		AccountID: req.AccountID,
		Amount:    string(req.Amount),
		Reference: req.Reference,
		UserID:    UserIDFrom(r.Context()),
	})
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, depositResponse{
		Transaction: newTransactionResponse(res.Entry),
		Balance:     money(res.Balance),
	})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := s.ledger.ListTransactions(r.Context(), ledger.ListRequest{
		AccountID: q.Get("accountId"),
		Page:      q.Get("page"),
		Limit:     q.Get("limit"),
		UserID:    UserIDFrom(r.Context()),
	})
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTransactionPageResponse(page))
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}
