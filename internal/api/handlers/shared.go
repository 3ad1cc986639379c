package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"revenue-split-engine/internal/api/response"
	"revenue-split-engine/internal/apperrors"
)

// parseJSON decodes a JSON request body into the given type. Unknown
// fields are rejected so typos surface as 400s instead of silent zeroes.
func parseJSON[T any](r *http.Request) (T, error) {
	var v T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("failed to decode request body: %w", err)
	}
	return v, nil
}

// respondServiceError maps a service error to an HTTP status code and
// writes the error response. The mapping is by error class: role failures
// are 403, missing entities 404, configuration conflicts 409, rejected
// input 400, and failures inside an accepted distribution call 422.
func respondServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, apperrors.ErrOnlyOwner),
		errors.Is(err, apperrors.ErrOnlyController),
		errors.Is(err, apperrors.ErrOnlyDistributor):
		status = http.StatusForbidden

	case errors.Is(err, apperrors.ErrEngineNotFound),
		errors.Is(err, apperrors.ErrAccountNotFound):
		status = http.StatusNotFound

	case errors.Is(err, apperrors.ErrEngineExists),
		errors.Is(err, apperrors.ErrDistributorAlreadyConfigured),
		errors.Is(err, apperrors.ErrControllerAlreadyConfigured),
		errors.Is(err, apperrors.ErrControllerNotConfigured),
		errors.Is(err, apperrors.ErrImmutableController):
		status = http.StatusConflict

	case errors.Is(err, apperrors.ErrInconsistentDataLength),
		errors.Is(err, apperrors.ErrNullAddressRecipient),
		errors.Is(err, apperrors.ErrDuplicateRecipient),
		errors.Is(err, apperrors.ErrInvalidPercentage),
		errors.Is(err, apperrors.ErrInvalidFeePercentage),
		errors.Is(err, apperrors.ErrInvestorAddressZero),
		errors.Is(err, apperrors.ErrNegativeAmount),
		errors.Is(err, apperrors.ErrMissingRequiredField):
		status = http.StatusBadRequest

	case errors.Is(err, apperrors.ErrTransferFailed),
		errors.Is(err, apperrors.ErrMissingPriceOracle),
		errors.Is(err, apperrors.ErrInvalidOraclePrice),
		errors.Is(err, apperrors.ErrCallDepthExceeded),
		errors.Is(err, apperrors.ErrAmountOverflow):
		status = http.StatusUnprocessableEntity
	}

	response.RespondError(w, status, err.Error(), nil)
}
