package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	endorsementdomain "github.com/lawrencezcl/GeminiLendX/internal/domain/endorsement"
	"github.com/lawrencezcl/GeminiLendX/internal/testutil/endorsementmock"
	endorsementuc "github.com/lawrencezcl/GeminiLendX/internal/usecase/endorsement"
)

type stubVerifier struct {
	ok  bool
	err error
}

func (s *stubVerifier) Verify(context.Context, string, string, string) (bool, error) {
	return s.ok, s.err
}

func newEndorsementEcho(t *testing.T, repo *endorsementmock.Repo, v endorsementuc.Verifier) *echo.Echo {
	t.Helper()
	manager := endorsementuc.NewManager(repo, v, discard())
	e := echo.New()
	e.HideBanner = true
	e.Validator = NewValidator()
	h := NewEndorsementHandler(manager)
	e.POST("/api/endorsements", h.CreateEndorsement)
	e.POST("/api/endorsements/validate", h.ValidateEndorsement)
	return e
}

func postJSON(t *testing.T, e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateEndorsement(t *testing.T) {
	repo := &endorsementmock.Repo{}
	e := newEndorsementEcho(t, repo, &stubVerifier{ok: true})

	rec := postJSON(t, e, "/api/endorsements", `{
		"endorsement_id": "e1", "loan_id": "l1", "endorser_id": "0xabc",
		"borrower_id": "0xdef", "percentage": 20, "signature": "0xsig"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// out-of-bounds percentage maps to 400
	rec = postJSON(t, e, "/api/endorsements", `{
		"endorsement_id": "e2", "loan_id": "l1", "endorser_id": "0xabc",
		"borrower_id": "0xdef", "percentage": 45, "signature": "0xsig"
	}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestValidateEndorsement(t *testing.T) {
	stored := &endorsementdomain.Endorsement{
		EndorsementID: "e1", LoanID: "l1", EndorserID: "0xabc",
		Percentage: 20, Signature: "0xsig",
	}
	repo := &endorsementmock.Repo{
		GetByEndorsementIDFn: func(_ context.Context, id string) (*endorsementdomain.Endorsement, error) {
			if id != "e1" {
				return nil, endorsementdomain.ErrNotFound
			}
			return stored, nil
		},
	}
	e := newEndorsementEcho(t, repo, &stubVerifier{ok: true})

	rec := postJSON(t, e, "/api/endorsements/validate", `{"endorsement_id": "e1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var res map[string]any
	json.Unmarshal(rec.Body.Bytes(), &res)
	if res["is_valid"] != true {
		t.Fatalf("body = %v", res)
	}

	// unknown endorsement maps to 404
	rec = postJSON(t, e, "/api/endorsements/validate", `{"endorsement_id": "missing"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestValidateEndorsement_VerifierOutageIs502(t *testing.T) {
	stored := &endorsementdomain.Endorsement{
		EndorsementID: "e1", LoanID: "l1", Percentage: 20, Signature: "junk",
	}
	repo := &endorsementmock.Repo{
		GetByEndorsementIDFn: func(context.Context, string) (*endorsementdomain.Endorsement, error) {
			return stored, nil
		},
	}
	e := newEndorsementEcho(t, repo, &stubVerifier{err: context.DeadlineExceeded})

	rec := postJSON(t, e, "/api/endorsements/validate", `{"endorsement_id": "e1"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}
