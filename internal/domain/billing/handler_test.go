package billing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/smilecare/smilecare/internal/platform/apperr"
	"github.com/smilecare/smilecare/internal/platform/auth"
)

func handlerFixture() (*Handler, *fixture) {
	f := newFixture()
	return NewHandler(f.svc), f
}

func authedRequest(method, target, body string, actor auth.Identity) (*http.Request, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req = req.WithContext(auth.ContextWithIdentity(req.Context(), actor))
	return req, httptest.NewRecorder()
}

func TestHandler_CreateInvoice(t *testing.T) {
	h, f := handlerFixture()
	e := echo.New()

	body := fmt.Sprintf(`{"patient_id":%q,"amount":250.50}`, f.patient.UserID)
	req, rec := authedRequest(http.MethodPost, "/billing", body, f.staff)
	if err := h.CreateInvoice(e.NewContext(req, rec)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var inv Invoice
	if err := json.Unmarshal(rec.Body.Bytes(), &inv); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if inv.Status != StatusPending || inv.Amount != 250.50 {
		t.Errorf("got status=%q amount=%v", inv.Status, inv.Amount)
	}
}

func TestHandler_ApplyPayment(t *testing.T) {
	h, f := handlerFixture()
	e := echo.New()
	inv := f.invoice(t, f.patient.UserID, 100)

	body := fmt.Sprintf(`{"invoice_id":%q,"amount":100,"payment_method":"card"}`, inv.ID)
	req, rec := authedRequest(http.MethodPost, "/billing/payments", body, f.staff)
	if err := h.ApplyPayment(e.NewContext(req, rec)); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var got Invoice
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != StatusPaid {
		t.Errorf("status = %q, want paid", got.Status)
	}
}

func TestHandler_ApplyPayment_Overpayment(t *testing.T) {
	h, f := handlerFixture()
	e := echo.New()
	inv := f.invoice(t, f.patient.UserID, 100)

	body := fmt.Sprintf(`{"invoice_id":%q,"amount":150,"payment_method":"card"}`, inv.ID)
	req, rec := authedRequest(http.MethodPost, "/billing/payments", body, f.staff)
	if err := h.ApplyPayment(e.NewContext(req, rec)); apperr.KindOf(err) != apperr.KindInvalidAmount {
		t.Errorf("expected invalid amount, got %v", err)
	}
}

func TestHandler_GetInvoice_InvalidID(t *testing.T) {
	h, f := handlerFixture()
	e := echo.New()

	req, rec := authedRequest(http.MethodGet, "/billing/nope", "", f.staff)
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("nope")

	if err := h.GetInvoice(c); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestHandler_ListInvoices_BadStatusFilter(t *testing.T) {
	h, f := handlerFixture()
	e := echo.New()

	req, rec := authedRequest(http.MethodGet, "/billing?status=settled", "", f.staff)
	if err := h.ListInvoices(e.NewContext(req, rec)); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}
