package treatment

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

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const planCols = `id, patient_id, dentist_id, title, description, status,
	start_date, end_date, estimated_cost, created_at, updated_at`

func scanPlan(row pgx.Row) (*Plan, error) {
	var p Plan
	err := row.Scan(&p.ID, &p.PatientID, &p.DentistID, &p.Title, &p.Description, &p.Status,
		&p.StartDate, &p.EndDate, &p.EstimatedCost, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

const stepCols = `id, treatment_plan_id, step_number, description, completed,
	completed_date, notes, created_at, updated_at`

func scanStep(row pgx.Row) (*Step, error) {
	var st Step
	err := row.Scan(&st.ID, &st.PlanID, &st.StepNumber, &st.Description, &st.Completed,
		&st.CompletedDate, &st.Notes, &st.CreatedAt, &st.UpdatedAt)
	return &st, err
}

func (r *repoPG) CreatePlan(ctx context.Context, p *Plan) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO treatment_plans (id, patient_id, dentist_id, title, description, status,
			start_date, end_date, estimated_cost)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.PatientID, p.DentistID, p.Title, p.Description, p.Status,
		p.StartDate, p.EndDate, p.EstimatedCost)
	return err
}

func (r *repoPG) GetPlan(ctx context.Context, id uuid.UUID) (*Plan, error) {
	p, err := scanPlan(r.conn(ctx).QueryRow(ctx, `SELECT `+planCols+` FROM treatment_plans WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *repoPG) UpdatePlan(ctx context.Context, p *Plan) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE treatment_plans SET title=$2, description=$3, status=$4, start_date=$5,
			end_date=$6, estimated_cost=$7, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Title, p.Description, p.Status, p.StartDate, p.EndDate, p.EstimatedCost)
	return err
}

func (r *repoPG) ListPlans(ctx context.Context, filter ListFilter, limit, offset int) ([]*Plan, int, error) {
	query := `SELECT ` + planCols + ` FROM treatment_plans WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM treatment_plans WHERE 1=1`
	var args []interface{}
	idx := 1

	addClause := func(clause string, arg interface{}) {
		cond := fmt.Sprintf(clause, idx)
		query += cond
		countQuery += cond
		args = append(args, arg)
		idx++
	}

	if filter.PatientID != nil {
		addClause(` AND patient_id = $%d`, *filter.PatientID)
	}
	if filter.DentistID != nil {
		addClause(` AND dentist_id = $%d`, *filter.DentistID)
	}
	if filter.Status != nil {
		addClause(` AND status = $%d`, *filter.Status)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *repoPG) CreateStep(ctx context.Context, st *Step) error {
	st.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO treatment_steps (id, treatment_plan_id, step_number, description, completed, notes)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		st.ID, st.PlanID, st.StepNumber, st.Description, st.Completed, st.Notes)
	return err
}

func (r *repoPG) GetStep(ctx context.Context, id uuid.UUID) (*Step, error) {
	st, err := scanStep(r.conn(ctx).QueryRow(ctx, `SELECT `+stepCols+` FROM treatment_steps WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return st, err
}

func (r *repoPG) UpdateStep(ctx context.Context, st *Step) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE treatment_steps SET description=$2, completed=$3, completed_date=$4, notes=$5, updated_at=NOW()
		WHERE id = $1`,
		st.ID, st.Description, st.Completed, st.CompletedDate, st.Notes)
	return err
}

func (r *repoPG) ListSteps(ctx context.Context, planID uuid.UUID) ([]*Step, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+stepCols+` FROM treatment_steps WHERE treatment_plan_id = $1 ORDER BY step_number`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Step
	for rows.Next() {
		st, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, st)
	}
	return items, rows.Err()
}
