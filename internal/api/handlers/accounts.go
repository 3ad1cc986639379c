package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"revenue-split-engine/internal/api/request"
	"revenue-split-engine/internal/api/response"
	"revenue-split-engine/internal/model"
	"revenue-split-engine/internal/service"
)

// AccountHandler handles HTTP requests for account endpoints.
type AccountHandler struct {
	accountService *service.AccountService
	ledgerService  *service.LedgerService
}

// NewAccountHandler creates a new AccountHandler with the provided service dependencies.
func NewAccountHandler(accountService *service.AccountService, ledgerService *service.LedgerService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		ledgerService:  ledgerService,
	}
}

// accountCreatedResponse is returned exactly once at registration. The API
// key is not stored and cannot be recovered afterwards.
type accountCreatedResponse struct {
	Account model.Account `json:"account"`
	APIKey  string        `json:"apiKey"`
}

// CreateAccount handles POST requests to register a payee account and mint
// its API key.
//
// Endpoint: POST /api/account
// Request Body: CreateAccountRequest (name)
// Response: 201 Created with the account and its API key
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateAccountRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Name == "" {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", "name is required")
		return
	}

	account, apiKey, err := h.accountService.Register(r.Context(), req.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, accountCreatedResponse{
		Account: account,
		APIKey:  apiKey,
	})
}

// GetAccount handles GET requests for a single account.
//
// Endpoint: GET /api/account/{uuid}
// Response: 200 OK with the account
// Error: 404 Not Found if the account does not exist
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountService.GetAccount(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, account)
}

// Balances handles GET requests for all asset balances held by an address.
//
// Endpoint: GET /api/account/{uuid}/balances
// Response: 200 OK with array of Balance
func (h *AccountHandler) Balances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.ledgerService.Balances(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, balances)
}
