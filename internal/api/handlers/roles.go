package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"revenue-split-engine/internal/api/middleware"
	"revenue-split-engine/internal/api/request"
	"revenue-split-engine/internal/api/response"
	"revenue-split-engine/internal/service"
)

// RoleHandler handles HTTP requests for role and policy endpoints.
type RoleHandler struct {
	engineService *service.EngineService
}

// NewRoleHandler creates a new RoleHandler with the provided service dependency.
func NewRoleHandler(engineService *service.EngineService) *RoleHandler {
	return &RoleHandler{
		engineService: engineService,
	}
}

// Distributors handles GET requests for the addresses holding the
// distributor role on an engine.
//
// Endpoint: GET /api/engine/{uuid}/distributors
// Response: 200 OK with array of addresses
// Error: 404 Not Found if the engine does not exist
func (h *RoleHandler) Distributors(w http.ResponseWriter, r *http.Request) {
	distributors, err := h.engineService.GetDistributors(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, distributors)
}

// SetDistributor handles PUT requests to grant or revoke the distributor
// role. Owner-gated.
//
// Endpoint: PUT /api/engine/{uuid}/distributor
// Request Body: SetDistributorRequest (address, enabled)
// Response: 204 No Content on success
// Error: 403 Forbidden if the caller is not the owner
// Error: 409 Conflict if the grant state already matches
func (h *RoleHandler) SetDistributor(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SetDistributorRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	err = h.engineService.SetDistributor(
		r.Context(),
		middleware.Caller(r),
		chi.URLParam(r, "uuid"),
		req.Address,
		req.Enabled,
	)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// SetController handles PUT requests to hand the controller role to a new
// address. Owner-gated; rejected when the controller is immutable.
//
// Endpoint: PUT /api/engine/{uuid}/controller
// Request Body: SetControllerRequest (controller)
// Response: 204 No Content on success
// Error: 403 Forbidden if the caller is not the owner
// Error: 409 Conflict if no controller is configured, the controller is
// immutable, or the new controller equals the current one
func (h *RoleHandler) SetController(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SetControllerRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	err = h.engineService.SetController(
		r.Context(),
		middleware.Caller(r),
		chi.URLParam(r, "uuid"),
		req.Controller,
	)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// SetPriceFeed handles PUT requests to bind or rebind the oracle feed used
// to value an asset in the engine's unit of account. Owner-gated.
//
// Endpoint: PUT /api/engine/{uuid}/pricefeed
// Request Body: SetPriceFeedRequest (asset, feedId)
// Response: 204 No Content on success
// Error: 403 Forbidden if the caller is not the owner
func (h *RoleHandler) SetPriceFeed(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SetPriceFeedRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	err = h.engineService.SetPriceFeed(
		r.Context(),
		middleware.Caller(r),
		chi.URLParam(r, "uuid"),
		req.Asset,
		req.FeedID,
	)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// SetFeePolicy handles PUT requests to update the platform fee rate and
// fee recipient. Owner-gated.
//
// Endpoint: PUT /api/engine/{uuid}/fee
// Request Body: SetFeeRequest (feeRate, feeRecipient)
// Response: 204 No Content on success
// Error: 400 Bad Request if the fee rate exceeds the scale or the
// recipient is missing for a non-zero rate
// Error: 403 Forbidden if the caller is not the owner
func (h *RoleHandler) SetFeePolicy(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SetFeeRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	err = h.engineService.SetFeePolicy(
		r.Context(),
		middleware.Caller(r),
		chi.URLParam(r, "uuid"),
		req.FeeRate,
		req.FeeRecipient,
	)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
