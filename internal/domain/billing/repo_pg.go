package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smilecare/smilecare/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// =========== Invoice Repository ===========

type invoiceRepoPG struct{ pool *pgxpool.Pool }

func NewInvoiceRepoPG(pool *pgxpool.Pool) InvoiceRepository { return &invoiceRepoPG{pool: pool} }

const invoiceCols = `id, patient_id, appointment_id, treatment_plan_id, amount, paid_amount,
	status, due_date, paid_date, description, created_at, updated_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.PatientID, &inv.AppointmentID, &inv.TreatmentPlanID,
		&inv.Amount, &inv.PaidAmount, &inv.Status, &inv.DueDate, &inv.PaidDate,
		&inv.Description, &inv.CreatedAt, &inv.UpdatedAt)
	return &inv, err
}

func (r *invoiceRepoPG) Create(ctx context.Context, inv *Invoice) error {
	inv.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO invoices (id, patient_id, appointment_id, treatment_plan_id, amount, paid_amount,
			status, due_date, description)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		inv.ID, inv.PatientID, inv.AppointmentID, inv.TreatmentPlanID, inv.Amount, inv.PaidAmount,
		inv.Status, inv.DueDate, inv.Description)
	return err
}

func (r *invoiceRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	inv, err := scanInvoice(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+invoiceCols+` FROM invoices WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return inv, err
}

func (r *invoiceRepoPG) GetForUpdate(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	inv, err := scanInvoice(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+invoiceCols+` FROM invoices WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return inv, err
}

func (r *invoiceRepoPG) Update(ctx context.Context, inv *Invoice) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE invoices SET amount=$2, paid_amount=$3, status=$4, due_date=$5, paid_date=$6,
			description=$7, updated_at=NOW()
		WHERE id = $1`,
		inv.ID, inv.Amount, inv.PaidAmount, inv.Status, inv.DueDate, inv.PaidDate, inv.Description)
	return err
}

func (r *invoiceRepoPG) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Invoice, int, error) {
	query := `SELECT ` + invoiceCols + ` FROM invoices WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM invoices WHERE 1=1`
	var args []interface{}
	idx := 1

	if filter.PatientID != nil {
		cond := fmt.Sprintf(` AND patient_id = $%d`, idx)
		query += cond
		countQuery += cond
		args = append(args, *filter.PatientID)
		idx++
	}
	if filter.Status != nil {
		cond := fmt.Sprintf(` AND status = $%d`, idx)
		query += cond
		countQuery += cond
		args = append(args, *filter.Status)
		idx++
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, inv)
	}
	return items, total, rows.Err()
}

// =========== Payment Repository ===========

type paymentRepoPG struct{ pool *pgxpool.Pool }

func NewPaymentRepoPG(pool *pgxpool.Pool) PaymentRepository { return &paymentRepoPG{pool: pool} }

const paymentCols = `id, invoice_id, amount, payment_method, transaction_id, payment_date, notes, created_at`

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.PaymentMethod, &p.TransactionID,
		&p.PaymentDate, &p.Notes, &p.CreatedAt)
	return &p, err
}

func (r *paymentRepoPG) Create(ctx context.Context, p *Payment) error {
	p.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO payments (id, invoice_id, amount, payment_method, transaction_id, payment_date, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.InvoiceID, p.Amount, p.PaymentMethod, p.TransactionID, p.PaymentDate, p.Notes)
	return err
}

func (r *paymentRepoPG) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+paymentCols+` FROM payments WHERE invoice_id = $1 ORDER BY payment_date`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *paymentRepoPG) ListByPatient(ctx context.Context, patientID *uuid.UUID, limit, offset int) ([]*Payment, int, error) {
	query := `SELECT p.id, p.invoice_id, p.amount, p.payment_method, p.transaction_id, p.payment_date, p.notes, p.created_at
		FROM payments p JOIN invoices i ON i.id = p.invoice_id WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM payments p JOIN invoices i ON i.id = p.invoice_id WHERE 1=1`
	var args []interface{}
	idx := 1

	if patientID != nil {
		cond := fmt.Sprintf(` AND i.patient_id = $%d`, idx)
		query += cond
		countQuery += cond
		args = append(args, *patientID)
		idx++
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY p.payment_date DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
