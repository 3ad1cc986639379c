package validation

import (
	"fmt"
	"math"
	"strings"

	"revenue-split-engine/internal/api/request"
	"revenue-split-engine/internal/model"
)

// ValidConversionMode contains the allowed conversion mode values.
var ValidConversionMode = map[string]bool{
	model.ConversionDirect: true, model.ConversionUSD: true,
}

// ValidateCreateEngine validates an engine initialization request.
// Structural checks only; business rules (percentage sums, fee policy
// consistency, controller semantics) live in the service layer.
func ValidateCreateEngine(req request.CreateEngineRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	}

	if strings.TrimSpace(req.Investor) == "" {
		errors["investor"] = "investor is required"
	}

	if strings.TrimSpace(req.UnitOfAccount) == "" {
		errors["unitOfAccount"] = "unitOfAccount is required"
	}

	if strings.TrimSpace(req.ConversionMode) == "" {
		errors["conversionMode"] = "conversionMode is required"
	} else if !ValidConversionMode[req.ConversionMode] {
		errors["conversionMode"] = fmt.Sprintf("invalid conversion mode: %s", req.ConversionMode)
	}

	if req.InvestedAmount > math.MaxInt64 {
		errors["investedAmount"] = "investedAmount exceeds ledger range"
	}

	if req.InterestRate > model.Scale {
		errors["interestRate"] = "interestRate exceeds scale"
	}

	if req.ResidualInterestRate > model.Scale {
		errors["residualInterestRate"] = "residualInterestRate exceeds scale"
	}

	if len(req.Recipients) == 0 {
		errors["recipients"] = "at least one recipient is required"
	}

	for i, feed := range req.PriceFeeds {
		if strings.TrimSpace(feed.Asset) == "" || strings.TrimSpace(feed.FeedID) == "" {
			errors["priceFeeds"] = fmt.Sprintf("price feed entry %d is incomplete", i)
			break
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateDeposit validates a deposit request.
func ValidateDeposit(req request.DepositRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Asset) == "" {
		errors["asset"] = "asset is required"
	}

	if req.Amount == 0 {
		errors["amount"] = "amount must be positive"
	} else if req.Amount > math.MaxInt64 {
		errors["amount"] = "amount exceeds ledger range"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
