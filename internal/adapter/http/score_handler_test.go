package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/lawrencezcl/GeminiLendX/internal/usecase/risk"
)

func TestGetCreditScore(t *testing.T) {
	h := newWebHarness(t)

	rec := h.do(t, http.MethodGet, "/api/credit/score/0xnewcomer?collateral_asset=ETH", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var res risk.ScoreResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// no history, 0.3 volatility: base score only
	if res.Score != 600 {
		t.Fatalf("score = %d, want 600", res.Score)
	}
	if res.Explanation == "" {
		t.Fatal("explanation missing")
	}
	if res.BorrowerID != "0xnewcomer" {
		t.Fatalf("borrower = %q", res.BorrowerID)
	}
}
