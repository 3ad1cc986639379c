package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"revenue-split-engine/internal/api/middleware"
	"revenue-split-engine/internal/api/request"
	"revenue-split-engine/internal/api/response"
	"revenue-split-engine/internal/service"
)

// RecipientHandler handles HTTP requests for recipient set endpoints.
type RecipientHandler struct {
	registryService *service.RegistryService
}

// NewRecipientHandler creates a new RecipientHandler with the provided service dependency.
func NewRecipientHandler(registryService *service.RegistryService) *RecipientHandler {
	return &RecipientHandler{
		registryService: registryService,
	}
}

// Recipients handles GET requests for an engine's active recipient set,
// in apportionment order.
//
// Endpoint: GET /api/engine/{uuid}/recipients
// Response: 200 OK with array of Recipient
// Error: 404 Not Found if the engine does not exist
func (h *RecipientHandler) Recipients(w http.ResponseWriter, r *http.Request) {
	recipients, err := h.registryService.GetRecipients(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, recipients)
}

// SetRecipients handles PUT requests to atomically replace the recipient
// set. Controller-gated. A rejected set leaves the prior set intact.
//
// Endpoint: PUT /api/engine/{uuid}/recipients
// Request Body: SetRecipientsRequest (addresses, percentages)
// Response: 204 No Content on success
// Error: 400 Bad Request if the candidate set is malformed or does not sum to the scale
// Error: 403 Forbidden if the caller is not the controller
func (h *RecipientHandler) SetRecipients(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SetRecipientsRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	err = h.registryService.SetRecipients(
		r.Context(),
		middleware.Caller(r),
		chi.URLParam(r, "uuid"),
		req.Addresses,
		req.Percentages,
	)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
