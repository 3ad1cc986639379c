package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"revenue-split-engine/internal/api/middleware"
	"revenue-split-engine/internal/api/request"
	"revenue-split-engine/internal/api/response"
	"revenue-split-engine/internal/service"
	"revenue-split-engine/internal/validation"
)

// DistributionHandler handles HTTP requests for distribution and deposit
// endpoints.
type DistributionHandler struct {
	waterfallService *service.WaterfallService
	ledgerService    *service.LedgerService
}

// NewDistributionHandler creates a new DistributionHandler with the provided service dependencies.
func NewDistributionHandler(waterfallService *service.WaterfallService, ledgerService *service.LedgerService) *DistributionHandler {
	return &DistributionHandler{
		waterfallService: waterfallService,
		ledgerService:    ledgerService,
	}
}

// DistributeNative handles POST requests to distribute an engine's full
// current native balance. The caller must hold the distributor role.
//
// Endpoint: POST /api/engine/{uuid}/distribute
// Response: 204 No Content on success
// Error: 403 Forbidden if the caller is not a distributor
// Error: 422 Unprocessable Entity on transfer or oracle failure; no state change
func (h *DistributionHandler) DistributeNative(w http.ResponseWriter, r *http.Request) {
	err := h.waterfallService.DistributeNative(r.Context(), middleware.Caller(r), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// DistributeAsset handles POST requests to distribute an engine's full
// current balance of one token. A zero balance is a no-op success.
//
// Endpoint: POST /api/engine/{uuid}/distribute/{asset}
// Response: 204 No Content on success
// Error: 403 Forbidden if the caller is not a distributor
// Error: 422 Unprocessable Entity on transfer or oracle failure; no state change
func (h *DistributionHandler) DistributeAsset(w http.ResponseWriter, r *http.Request) {
	err := h.waterfallService.DistributeAsset(
		r.Context(),
		middleware.Caller(r),
		chi.URLParam(r, "uuid"),
		chi.URLParam(r, "asset"),
	)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// Deposit handles POST requests to credit external value to an engine.
// A native deposit into an auto-distribute engine distributes immediately.
// The credit commits before the triggered distribution runs, so a
// distribution error does not undo the credit.
//
// Endpoint: POST /api/engine/{uuid}/deposit
// Request Body: DepositRequest (asset, amount)
// Response: 204 No Content on success
// Error: 400 Bad Request if validation fails
// Error: 422 Unprocessable Entity if the triggered distribution fails; the credit stands
func (h *DistributionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.DepositRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateDeposit(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if err := h.ledgerService.Deposit(r.Context(), chi.URLParam(r, "uuid"), req.Asset, req.Amount); err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
