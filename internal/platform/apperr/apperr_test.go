package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", NotFound("appointment %s not found", "abc"), KindNotFound},
		{"conflict", Conflict("time slot not available"), KindConflict},
		{"invalid transition", InvalidTransition("cannot move completed to scheduled"), KindInvalidTransition},
		{"invalid amount", InvalidAmount("payment exceeds balance"), KindInvalidAmount},
		{"wrapped", fmt.Errorf("service: %w", AccessDenied("patients only")), KindAccessDenied},
		{"plain error", errors.New("boom"), KindInternal},
		{"nil-wrapped internal", Internal(errors.New("db down")), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestError_Message(t *testing.T) {
	err := NotFound("invoice %s not found", "inv-1")
	if err.Error() != "invoice inv-1 not found" {
		t.Errorf("unexpected message: %q", err.Error())
	}

	wrapped := Internal(errors.New("connection refused"))
	if wrapped.Error() != "internal server error: connection refused" {
		t.Errorf("unexpected message: %q", wrapped.Error())
	}
	if !errors.Is(wrapped, wrapped.Err) {
		t.Error("expected Unwrap to expose the cause")
	}
}

func TestIs(t *testing.T) {
	if !Is(Validation("missing field"), KindValidation) {
		t.Error("expected validation kind")
	}
	if Is(Validation("missing field"), KindConflict) {
		t.Error("did not expect conflict kind")
	}
}

func renderError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	logger := zerolog.New(os.Stderr)
	HTTPErrorHandler(logger)(err, c)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body["error"]
}

func TestHTTPErrorHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not found", NotFound("patient not found"), http.StatusNotFound, "patient not found"},
		{"validation", Validation("date is required"), http.StatusBadRequest, "date is required"},
		{"invalid reference", InvalidReference("unknown dentist"), http.StatusBadRequest, "unknown dentist"},
		{"invalid amount", InvalidAmount("amount must be positive"), http.StatusBadRequest, "amount must be positive"},
		{"conflict", Conflict("time slot not available"), http.StatusConflict, "time slot not available"},
		{"invalid transition", InvalidTransition("cannot cancel completed appointment"), http.StatusConflict, "cannot cancel completed appointment"},
		{"access denied", AccessDenied("staff only"), http.StatusForbidden, "staff only"},
		{"unauthorized", Unauthorized("no token provided"), http.StatusUnauthorized, "no token provided"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := renderError(t, tt.err)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := decodeError(t, rec); got != tt.wantMsg {
				t.Errorf("message = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestHTTPErrorHandler_InternalHidesCause(t *testing.T) {
	rec := renderError(t, Internal(errors.New("pq: connection refused")))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if got := decodeError(t, rec); got != "internal server error" {
		t.Errorf("message = %q, want generic message", got)
	}
}

func TestHTTPErrorHandler_PlainError(t *testing.T) {
	rec := renderError(t, errors.New("boom"))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if got := decodeError(t, rec); got != "internal server error" {
		t.Errorf("message = %q, want generic message", got)
	}
}

func TestHTTPErrorHandler_EchoHTTPError(t *testing.T) {
	rec := renderError(t, echo.NewHTTPError(http.StatusMethodNotAllowed, "method not allowed"))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
	if got := decodeError(t, rec); got != "method not allowed" {
		t.Errorf("message = %q", got)
	}
}
