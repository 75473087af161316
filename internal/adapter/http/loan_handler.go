package http

import (
	"errors"
	"net/http"

	loandomain "github.com/lawrencezcl/GeminiLendX/internal/domain/loan"
	loanuc "github.com/lawrencezcl/GeminiLendX/internal/usecase/loan"
	"github.com/lawrencezcl/GeminiLendX/internal/usecase/risk"

	"github.com/labstack/echo/v4"
)

type LoanHandler struct {
	lifecycle *loanuc.Engine
	loans     loandomain.Repository
	oracle    risk.PriceOracle
}

func NewLoanHandler(lifecycle *loanuc.Engine, loans loandomain.Repository, oracle risk.PriceOracle) *LoanHandler {
	return &LoanHandler{lifecycle: lifecycle, loans: loans, oracle: oracle}
}

// GetLoan returns loan details with the health factor computed against a
// fresh collateral valuation.
func (h *LoanHandler) GetLoan(c echo.Context) error {
	loanID := c.Param("loan_id")

	l, err := h.loans.GetByLoanID(c.Request().Context(), loanID)
	if err != nil {
		if errors.Is(err, loandomain.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
		}
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}

	collateralValue := 0.0
	if prices, err := h.oracle.Prices(c.Request().Context(), []string{l.CollateralAsset}); err == nil {
		collateralValue = prices[l.CollateralAsset] * l.CollateralAmount
	}

	dto, err := h.lifecycle.Details(c.Request().Context(), loanID, collateralValue)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
