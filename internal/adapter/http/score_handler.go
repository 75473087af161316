package http

import (
	"net/http"

	"github.com/lawrencezcl/GeminiLendX/internal/usecase/risk"

	"github.com/labstack/echo/v4"
)

type ScoreHandler struct {
	engine *risk.Engine
}

func NewScoreHandler(engine *risk.Engine) *ScoreHandler {
	return &ScoreHandler{engine: engine}
}

func (h *ScoreHandler) GetCreditScore(c echo.Context) error {
	borrowerID := c.Param("borrower_id")
	if borrowerID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing borrower_id"})
	}
	// optional: score volatility against a specific collateral asset
	asset := c.QueryParam("collateral_asset")

	res, err := h.engine.CreditScore(c.Request().Context(), borrowerID, asset)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
