package http

import (
	"net/http"

	endorsementuc "github.com/lawrencezcl/GeminiLendX/internal/usecase/endorsement"

	"github.com/labstack/echo/v4"
)

type EndorsementHandler struct {
	manager *endorsementuc.Manager
}

func NewEndorsementHandler(manager *endorsementuc.Manager) *EndorsementHandler {
	return &EndorsementHandler{manager: manager}
}

type createEndorsementReq struct {
	EndorsementID string  `json:"endorsement_id" validate:"required"`
	LoanID        string  `json:"loan_id" validate:"required"`
	EndorserID    string  `json:"endorser_id" validate:"required"`
	BorrowerID    string  `json:"borrower_id" validate:"required"`
	Percentage    float64 `json:"percentage" validate:"required,gt=0"`
	Signature     string  `json:"signature" validate:"required"`
}

func (h *EndorsementHandler) CreateEndorsement(c echo.Context) error {
	var req createEndorsementReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: fieldErrors(err)})
	}
	e, err := h.manager.Create(c.Request().Context(), endorsementuc.CreateInput{
		EndorsementID: req.EndorsementID,
		LoanID:        req.LoanID,
		EndorserID:    req.EndorserID,
		BorrowerID:    req.BorrowerID,
		Percentage:    req.Percentage,
		Signature:     req.Signature,
	})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, e)
}

type validateEndorsementReq struct {
	EndorsementID string `json:"endorsement_id" validate:"required"`
}

func (h *EndorsementHandler) ValidateEndorsement(c echo.Context) error {
	var req validateEndorsementReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: fieldErrors(err)})
	}
	ok, err := h.manager.Validate(c.Request().Context(), req.EndorsementID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"endorsement_id": req.EndorsementID,
		"is_valid":       ok,
	})
}
