package review

import (
	"context"

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

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const cols = `id, patient_id, dentist_id, rating, comment, created_at`

func (r *repoPG) Create(ctx context.Context, rev *Review) error {
	rev.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO reviews (id, patient_id, dentist_id, rating, comment)
		VALUES ($1,$2,$3,$4,$5)`,
		rev.ID, rev.PatientID, rev.DentistID, rev.Rating, rev.Comment)
	return err
}

func (r *repoPG) ListByDentist(ctx context.Context, dentistID uuid.UUID, limit, offset int) ([]*Review, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM reviews WHERE dentist_id = $1`, dentistID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+cols+` FROM reviews WHERE dentist_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, dentistID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Review
	for rows.Next() {
		var rev Review
		if err := rows.Scan(&rev.ID, &rev.PatientID, &rev.DentistID, &rev.Rating, &rev.Comment, &rev.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &rev)
	}
	return items, total, rows.Err()
}

func (r *repoPG) AverageByDentist(ctx context.Context, dentistID uuid.UUID) (float64, int, error) {
	var avg float64
	var count int
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COALESCE(AVG(rating), 0), COUNT(*) FROM reviews WHERE dentist_id = $1`, dentistID).
		Scan(&avg, &count)
	return avg, count, err
}
