package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/deposit-ledger-service/internal/ledger"
	"github.com/sheikh-saqib/deposit-ledger-service/internal/models"
)

type accountResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Currency  string    `json:"currency"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"createdAt"`
}

type transactionResponse struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	Type      string    `json:"type"`
	Amount    string    `json:"amount"`
	Reference *string   `json:"reference"`
	CreatedAt time.Time `json:"createdAt"`
}

type depositResponse struct {
	Transaction transactionResponse `json:"transaction"`
	Balance     string              `json:"balance"`
}

type transactionPageResponse struct {
	Items []transactionResponse `json:"items"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
	Total int                   `json:"total"`
}

type reconciliationResponse struct {
	AccountID    string `json:"accountId"`
	Balance      string `json:"balance"`
	EntriesTotal string `json:"entriesTotal"`
	EntryCount   int    `json:"entryCount"`
	Consistent   bool   `json:"consistent"`
}

type errorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// money renders amounts with exactly two fractional digits.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func newAccountResponse(a models.Account) accountResponse {
	return accountResponse{
		ID:        a.ID,
		UserID:    a.OwnerID,
		Currency:  string(a.Currency),
		Balance:   money(a.Balance),
		CreatedAt: a.CreatedAt,
	}
}

func newTransactionResponse(e models.LedgerEntry) transactionResponse {
	return transactionResponse{
		ID:        e.ID,
		AccountID: e.AccountID,
		Type:      string(e.Kind),
		Amount:    money(e.Amount),
		Reference: e.Reference,
		CreatedAt: e.CreatedAt,
	}
}

func newTransactionPageResponse(p models.TransactionPage) transactionPageResponse {
	items := make([]transactionResponse, 0, len(p.Items))
	for _, e := range p.Items {
		items = append(items, newTransactionResponse(e))
	}
	return transactionPageResponse{Items: items, Page: p.Page, Limit: p.Limit, Total: p.Total}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps ledger error kinds to HTTP status codes.
func statusFor(kind ledger.Kind) int {
	switch kind {
	case ledger.KindValidation:
		return http.StatusBadRequest
	case ledger.KindNotFound:
		return http.StatusNotFound
	case ledger.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeLedgerError(w http.ResponseWriter, err error) {
	kind := ledger.KindOf(err)
	writeJSON(w, statusFor(kind), errorResponse{Error: errorBody{
		Type:    kind.String(),
		Message: ledger.PublicMessage(err),
	}})
}

func writeError(w http.ResponseWriter, status int, errType, msg string) {
	writeJSON(w, status, errorResponse{Error: errorBody{Type: errType, Message: msg}})
}
