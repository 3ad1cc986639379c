package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"revenue-split-engine/internal/api/middleware"
	"revenue-split-engine/internal/api/request"
	"revenue-split-engine/internal/api/response"
	"revenue-split-engine/internal/model"
	"revenue-split-engine/internal/service"
	"revenue-split-engine/internal/validation"
)

// EngineHandler handles HTTP requests for engine lifecycle endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the engineService.
type EngineHandler struct {
	engineService *service.EngineService
}

// NewEngineHandler creates a new EngineHandler with the provided service dependency.
func NewEngineHandler(engineService *service.EngineService) *EngineHandler {
	return &EngineHandler{
		engineService: engineService,
	}
}

// CreateEngine handles POST requests to initialize a new engine. The
// authenticated caller becomes the engine owner. Initialization is
// single-shot: all investor claim parameters are immutable afterwards.
//
// Endpoint: POST /api/engine
// Request Body: CreateEngineRequest
// Response: 201 Created with the initialized Engine
// Error: 400 Bad Request if validation fails
// Error: 401 Unauthorized without a valid API key
func (h *EngineHandler) CreateEngine(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateEngineRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateEngine(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	feeds := make([]model.PriceFeedBinding, len(req.PriceFeeds))
	for i, f := range req.PriceFeeds {
		feeds[i] = model.PriceFeedBinding{Asset: f.Asset, FeedID: f.FeedID}
	}

	engine, err := h.engineService.Initialize(r.Context(), middleware.Caller(r), service.InitializeSettings{
		Name:                 req.Name,
		Investor:             req.Investor,
		InvestedAmount:       req.InvestedAmount,
		InterestRate:         req.InterestRate,
		ResidualInterestRate: req.ResidualInterestRate,
		UnitOfAccount:        req.UnitOfAccount,
		ConversionMode:       req.ConversionMode,
		Controller:           req.Controller,
		ControllerImmutable:  req.ControllerImmutable,
		FeeRate:              req.FeeRate,
		FeeRecipient:         req.FeeRecipient,
		AutoDistribute:       req.AutoDistribute,
		Recipients:           req.Recipients,
		Percentages:          req.Percentages,
		PriceFeeds:           feeds,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, engine)
}

// Engines handles GET requests to list all engines.
//
// Endpoint: GET /api/engine
// Response: 200 OK with array of Engine
func (h *EngineHandler) Engines(w http.ResponseWriter, r *http.Request) {
	engines, err := h.engineService.GetEngines(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, engines)
}

// GetEngine handles GET requests to retrieve a single engine, including
// the current claim state (amountToReceive, amountReceived).
//
// Endpoint: GET /api/engine/{uuid}
// Response: 200 OK with Engine
// Error: 404 Not Found if the engine does not exist
func (h *EngineHandler) GetEngine(w http.ResponseWriter, r *http.Request) {
	engine, err := h.engineService.GetEngine(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, engine)
}

// Events handles GET requests for the notifications emitted by an engine.
//
// Endpoint: GET /api/engine/{uuid}/events
// Response: 200 OK with array of Event, oldest first
// Error: 404 Not Found if the engine does not exist
func (h *EngineHandler) Events(w http.ResponseWriter, r *http.Request) {
	events, err := h.engineService.GetEvents(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, events)
}
