package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/smilecare/smilecare/internal/platform/apperr"
	"github.com/smilecare/smilecare/internal/platform/auth"
	"github.com/smilecare/smilecare/internal/platform/db"
)

type Service struct {
	invoices InvoiceRepository
	payments PaymentRepository
	inTx     db.TxRunner
}

func NewService(invoices InvoiceRepository, payments PaymentRepository, inTx db.TxRunner) *Service {
	return &Service{invoices: invoices, payments: payments, inTx: inTx}
}

// CreateInvoice records a new invoice in pending status with nothing paid.
func (s *Service) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error) {
	if req.PatientID == uuid.Nil {
		return nil, apperr.Validation("patient_id is required")
	}
	if req.Amount <= 0 {
		return nil, apperr.InvalidAmount("amount must be positive")
	}

	inv := &Invoice{
		PatientID:       req.PatientID,
		AppointmentID:   req.AppointmentID,
		TreatmentPlanID: req.TreatmentPlanID,
		Amount:          req.Amount,
		PaidAmount:      0,
		Status:          StatusPending,
		DueDate:         req.DueDate,
		Description:     req.Description,
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// GetInvoice returns an invoice with its payment history. Patients may
// only see their own invoices.
func (s *Service) GetInvoice(ctx context.Context, actor auth.Identity, id uuid.UUID) (*Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, id)
	if err == ErrNotFound {
		return nil, apperr.NotFound("invoice not found")
	}
	if err != nil {
		return nil, err
	}
	if actor.IsPatient() && inv.PatientID != actor.UserID {
		return nil, apperr.AccessDenied("not your invoice")
	}

	inv.Payments, err = s.payments.ListByInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// ListInvoices returns invoices scoped to the caller.
func (s *Service) ListInvoices(ctx context.Context, actor auth.Identity, filter ListFilter, limit, offset int) ([]*Invoice, int, error) {
	if actor.IsPatient() {
		filter.PatientID = &actor.UserID
	}
	return s.invoices.List(ctx, filter, limit, offset)
}

// ListPayments returns payment history scoped to the caller. Patients see
// payments against their own invoices only.
func (s *Service) ListPayments(ctx context.Context, actor auth.Identity, limit, offset int) ([]*Payment, int, error) {
	var patientID *uuid.UUID
	if actor.IsPatient() {
		patientID = &actor.UserID
	}
	return s.payments.ListByPatient(ctx, patientID, limit, offset)
}

// UpdateInvoice applies a partial update to invoice metadata. Paid amounts
// never change here; they only move through ApplyPayment.
func (s *Service) UpdateInvoice(ctx context.Context, id uuid.UUID, patch InvoicePatch) (*Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, id)
	if err == ErrNotFound {
		return nil, apperr.NotFound("invoice not found")
	}
	if err != nil {
		return nil, err
	}

	if patch.Amount != nil {
		if *patch.Amount <= 0 {
			return nil, apperr.InvalidAmount("amount must be positive")
		}
		if *patch.Amount < inv.PaidAmount {
			return nil, apperr.InvalidAmount("amount cannot drop below the amount already paid")
		}
		inv.Amount = *patch.Amount
	}
	if patch.Status != nil {
		if !ValidStatus(*patch.Status) {
			return nil, apperr.Validation("invalid status: %s", *patch.Status)
		}
		inv.Status = *patch.Status
	}
	if patch.DueDate != nil {
		inv.DueDate = patch.DueDate
	}
	if patch.Description != nil {
		inv.Description = patch.Description
	}

	if err := s.invoices.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// ApplyPayment records a payment against an invoice and advances the
// invoice's paid amount and status, all in one transaction. The invoice
// row is locked for the duration so concurrent payments serialize and the
// paid amount can never exceed the invoice amount.
func (s *Service) ApplyPayment(ctx context.Context, req PaymentRequest) (*Invoice, error) {
	if req.Amount <= 0 {
		return nil, apperr.InvalidAmount("payment amount must be positive")
	}
	if req.PaymentMethod == "" {
		return nil, apperr.Validation("payment_method is required")
	}

	var inv *Invoice
	err := s.inTx(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.invoices.GetForUpdate(ctx, req.InvoiceID)
		if err == ErrNotFound {
			return apperr.NotFound("invoice not found")
		}
		if err != nil {
			return err
		}

		if req.Amount > inv.Balance() {
			return apperr.InvalidAmount("payment of %.2f exceeds remaining balance of %.2f",
				req.Amount, inv.Balance())
		}

		paymentDate := time.Now()
		if req.PaymentDate != nil {
			paymentDate = *req.PaymentDate
		}
		payment := &Payment{
			InvoiceID:     inv.ID,
			Amount:        req.Amount,
			PaymentMethod: req.PaymentMethod,
			TransactionID: req.TransactionID,
			PaymentDate:   paymentDate,
			Notes:         req.Notes,
		}
		if err := s.payments.Create(ctx, payment); err != nil {
			return err
		}

		inv.PaidAmount += req.Amount
		if inv.Balance() == 0 {
			inv.Status = StatusPaid
			inv.PaidDate = &paymentDate
		} else {
			inv.Status = StatusPartiallyPaid
		}
		if err := s.invoices.Update(ctx, inv); err != nil {
			return err
		}

		inv.Payments = append(inv.Payments, payment)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}
