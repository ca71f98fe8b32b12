package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-musician-booking/core/errors"
	"go-musician-booking/core/saga"
	"go-musician-booking/modules/contract/repository"
	"go-musician-booking/modules/contract/service"

	"github.com/labstack/echo/v4"
)

func newTestController() *ContractController {
	contracts := service.NewContractService(service.Dependencies{
		Contracts: repository.NewMemoryMonthlyContractRepository(),
		Links:     repository.NewMemoryContractLinkRepository(),
		Runner:    saga.NewRunner(saga.NewMemoryStore(), saga.Options{MaxAttempts: 1}),
	})
	return NewContractController(contracts, nil)
}

func TestRespondErrorMapping(t *testing.T) {
	c := newTestController()
	e := echo.New()

	tests := []struct {
		name   string
		body   string
		status int
		code   errors.ErrorCode
	}{
		{"malformed body", `{"token":`, http.StatusBadRequest, errors.ErrInvalidRequestData},
		{"missing token", `{"action":"sign"}`, http.StatusBadRequest, errors.ErrInvalidInput},
		{"unknown action", `{"token":"abc","action":"later"}`, http.StatusBadRequest, errors.ErrInvalidInput},
		{"unknown token", `{"token":"abc","action":"sign"}`, http.StatusNotFound, errors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/public/contracts/respond", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()

			if err := c.Respond(e.NewContext(req, rec)); err != nil {
				t.Fatalf("Respond() error = %v", err)
			}
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			var body struct {
				Code errors.ErrorCode `json:"code"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Code != tt.code {
				t.Errorf("code = %s, want %s", body.Code, tt.code)
			}
		})
	}
}

func TestViewByTokenRejectsBadID(t *testing.T) {
	c := newTestController()
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/contracts/view-by-token?token=abc&id=nope", nil)
	rec := httptest.NewRecorder()
	if err := c.ViewByToken(e.NewContext(req, rec)); err != nil {
		t.Fatalf("ViewByToken() error = %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
