// Package billing implements invoices and the transactional payment
// application workflow.
package billing

import (
	"time"

	"github.com/google/uuid"
)

// Invoice statuses.
const (
	StatusPending       = "pending"
	StatusPartiallyPaid = "partially_paid"
	StatusPaid          = "paid"
	StatusOverdue       = "overdue"
	StatusCancelled     = "cancelled"
)

var validStatuses = map[string]bool{
	StatusPending: true, StatusPartiallyPaid: true, StatusPaid: true,
	StatusOverdue: true, StatusCancelled: true,
}

// ValidStatus reports whether s is a known invoice status.
func ValidStatus(s string) bool { return validStatuses[s] }

// Invoice maps to the invoices table. 0 <= paid_amount <= amount always
// holds; payment application maintains it under a row lock.
type Invoice struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	PatientID       uuid.UUID  `db:"patient_id" json:"patient_id"`
	AppointmentID   *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	TreatmentPlanID *uuid.UUID `db:"treatment_plan_id" json:"treatment_plan_id,omitempty"`
	Amount          float64    `db:"amount" json:"amount"`
	PaidAmount      float64    `db:"paid_amount" json:"paid_amount"`
	Status          string     `db:"status" json:"status"`
	DueDate         *time.Time `db:"due_date" json:"due_date,omitempty"`
	PaidDate        *time.Time `db:"paid_date" json:"paid_date,omitempty"`
	Description     *string    `db:"description" json:"description,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`

	Payments []*Payment `db:"-" json:"payments,omitempty"`
}

// Balance is the amount still owed.
func (i *Invoice) Balance() float64 { return i.Amount - i.PaidAmount }

// Payment maps to the payments table. Payments are immutable once
// recorded.
type Payment struct {
	ID            uuid.UUID `db:"id" json:"id"`
	InvoiceID     uuid.UUID `db:"invoice_id" json:"invoice_id"`
	Amount        float64   `db:"amount" json:"amount"`
	PaymentMethod string    `db:"payment_method" json:"payment_method"`
	TransactionID *string   `db:"transaction_id" json:"transaction_id,omitempty"`
	PaymentDate   time.Time `db:"payment_date" json:"payment_date"`
	Notes         *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// CreateInvoiceRequest is the invoice creation payload.
type CreateInvoiceRequest struct {
	PatientID       uuid.UUID  `json:"patient_id"`
	AppointmentID   *uuid.UUID `json:"appointment_id,omitempty"`
	TreatmentPlanID *uuid.UUID `json:"treatment_plan_id,omitempty"`
	Amount          float64    `json:"amount"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	Description     *string    `json:"description,omitempty"`
}

// InvoicePatch carries a partial invoice update; nil fields are untouched.
// Paid amounts are only ever changed through payment application.
type InvoicePatch struct {
	Amount      *float64   `json:"amount,omitempty"`
	Status      *string    `json:"status,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Description *string    `json:"description,omitempty"`
}

// PaymentRequest applies a payment to an invoice. The payment date
// defaults to now when omitted.
type PaymentRequest struct {
	InvoiceID     uuid.UUID  `json:"invoice_id"`
	Amount        float64    `json:"amount"`
	PaymentMethod string     `json:"payment_method"`
	TransactionID *string    `json:"transaction_id,omitempty"`
	PaymentDate   *time.Time `json:"payment_date,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

// ListFilter narrows invoice listings.
type ListFilter struct {
	PatientID *uuid.UUID
	Status    *string
}
