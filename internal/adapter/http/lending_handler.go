package http

import (
	"errors"
	"net/http"

	endorsementdomain "github.com/lawrencezcl/GeminiLendX/internal/domain/endorsement"
	loandomain "github.com/lawrencezcl/GeminiLendX/internal/domain/loan"
	"github.com/lawrencezcl/GeminiLendX/internal/usecase/risk"

	"github.com/labstack/echo/v4"
)

type LendingHandler struct {
	engine *risk.Engine
}

func NewLendingHandler(engine *risk.Engine) *LendingHandler {
	return &LendingHandler{engine: engine}
}

type initiateLoanReq struct {
	BorrowerID       string  `json:"borrower_id" validate:"required"`
	CollateralAsset  string  `json:"collateral_asset" validate:"required"`
	CollateralChain  string  `json:"collateral_chain" validate:"required"`
	CollateralAmount float64 `json:"collateral_amount" validate:"required,gt=0"`
	BorrowAsset      string  `json:"borrow_asset" validate:"required"`
	BorrowChain      string  `json:"borrow_chain" validate:"required"`
	Amount           float64 `json:"amount" validate:"required,gt=0"`
	TermDays         int     `json:"term_days" validate:"required,gt=0"`
}

func (h *LendingHandler) InitiateLoan(c echo.Context) error {
	var req initiateLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: fieldErrors(err)})
	}

	result, err := h.engine.InitiateLoan(c.Request().Context(), risk.LoanRequest{
		BorrowerID:       req.BorrowerID,
		CollateralAsset:  req.CollateralAsset,
		CollateralChain:  req.CollateralChain,
		CollateralAmount: req.CollateralAmount,
		BorrowAsset:      req.BorrowAsset,
		BorrowChain:      req.BorrowChain,
		Amount:           req.Amount,
		TermDays:         req.TermDays,
	})
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, result)
	case errors.Is(err, risk.ErrDisbursementPending):
		// approved but not confirmed; retryable by loan id
		return c.JSON(http.StatusAccepted, map[string]any{
			"loan":   result,
			"status": "disbursement_pending",
		})
	default:
		return errorJSON(c, err)
	}
}

type resumeReq struct {
	LoanID string `json:"loan_id" validate:"required"`
}

func (h *LendingHandler) ResumeDisbursement(c echo.Context) error {
	var req resumeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: fieldErrors(err)})
	}
	result, err := h.engine.ResumeDisbursement(c.Request().Context(), req.LoanID)
	if err != nil {
		if errors.Is(err, risk.ErrDisbursementPending) {
			return c.JSON(http.StatusAccepted, map[string]string{"loan_id": req.LoanID, "status": "disbursement_pending"})
		}
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

type repayLoanReq struct {
	LoanID         string  `json:"loan_id" validate:"required"`
	RepaymentAsset string  `json:"repayment_asset" validate:"required"`
	Amount         float64 `json:"amount" validate:"required"`
}

func (h *LendingHandler) RepayLoan(c echo.Context) error {
	var req repayLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: fieldErrors(err)})
	}
	result, err := h.engine.RepayLoan(c.Request().Context(), req.LoanID, req.Amount, req.RepaymentAsset)
	if err != nil {
		if errors.Is(err, risk.ErrSettlementPending) {
			// repayment is authoritative; collateral release retries later
			return c.JSON(http.StatusAccepted, map[string]any{
				"repayment": result,
				"status":    "collateral_release_pending",
			})
		}
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

type liquidateLoanReq struct {
	LoanID string `json:"loan_id" validate:"required"`
}

func (h *LendingHandler) LiquidateLoan(c echo.Context) error {
	var req liquidateLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: fieldErrors(err)})
	}
	result, err := h.engine.LiquidateLoan(c.Request().Context(), req.LoanID)
	if err != nil {
		if errors.Is(err, risk.ErrSettlementPending) {
			return c.JSON(http.StatusAccepted, map[string]string{"loan_id": req.LoanID, "status": "settlement_pending"})
		}
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// errorJSON maps domain errors to wire-level statuses.
func errorJSON(c echo.Context, err error) error {
	switch {
	case errors.Is(err, loandomain.ErrNotFound),
		errors.Is(err, endorsementdomain.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, loandomain.ErrInvalidAmount),
		errors.Is(err, loandomain.ErrInvalidTerm),
		errors.Is(err, loandomain.ErrInsufficientCollateral),
		errors.Is(err, endorsementdomain.ErrInvalidPercentage),
		errors.Is(err, endorsementdomain.ErrInvalidEndorsement):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, loandomain.ErrConcurrentModification),
		errors.Is(err, loandomain.ErrInvalidTransition),
		errors.Is(err, loandomain.ErrTerminalState),
		errors.Is(err, endorsementdomain.ErrAlreadyProcessed):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, endorsementdomain.ErrVerification):
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}
