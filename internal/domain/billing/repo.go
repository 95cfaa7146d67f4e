package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no invoice matches the lookup.
var ErrNotFound = errors.New("invoice not found")

type InvoiceRepository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// GetForUpdate loads the invoice under a row lock; callers must hold an
	// open transaction so concurrent payment application serializes.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Invoice, int, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error)
	ListByPatient(ctx context.Context, patientID *uuid.UUID, limit, offset int) ([]*Payment, int, error)
}
