package records

import (
	"context"
	"errors"

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

type medicalRecordRepoPG struct{ pool *pgxpool.Pool }

func NewMedicalRecordRepoPG(pool *pgxpool.Pool) MedicalRecordRepository {
	return &medicalRecordRepoPG{pool: pool}
}

const medicalCols = `id, patient_id, allergies, medications, conditions, blood_type, notes, created_at, updated_at`

func (r *medicalRecordRepoPG) CreateEmpty(ctx context.Context, patientID uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx,
		`INSERT INTO medical_records (id, patient_id) VALUES ($1, $2)`, uuid.New(), patientID)
	return err
}

func (r *medicalRecordRepoPG) GetByPatient(ctx context.Context, patientID uuid.UUID) (*MedicalRecord, error) {
	var rec MedicalRecord
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+medicalCols+` FROM medical_records WHERE patient_id = $1`, patientID).
		Scan(&rec.ID, &rec.PatientID, &rec.Allergies, &rec.Medications, &rec.Conditions,
			&rec.BloodType, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &rec, err
}

func (r *medicalRecordRepoPG) Update(ctx context.Context, rec *MedicalRecord) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE medical_records SET allergies=$2, medications=$3, conditions=$4, blood_type=$5,
			notes=$6, updated_at=NOW()
		WHERE id = $1`,
		rec.ID, rec.Allergies, rec.Medications, rec.Conditions, rec.BloodType, rec.Notes)
	return err
}

type dentalRecordRepoPG struct{ pool *pgxpool.Pool }

func NewDentalRecordRepoPG(pool *pgxpool.Pool) DentalRecordRepository {
	return &dentalRecordRepoPG{pool: pool}
}

const dentalCols = `id, patient_id, dentist_id, visit_date, diagnosis, treatment, tooth_number, notes, created_at`

func scanDental(row pgx.Row) (*DentalRecord, error) {
	var rec DentalRecord
	err := row.Scan(&rec.ID, &rec.PatientID, &rec.DentistID, &rec.VisitDate, &rec.Diagnosis,
		&rec.Treatment, &rec.ToothNumber, &rec.Notes, &rec.CreatedAt)
	return &rec, err
}

func (r *dentalRecordRepoPG) Create(ctx context.Context, rec *DentalRecord) error {
	rec.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO dental_records (id, patient_id, dentist_id, visit_date, diagnosis, treatment, tooth_number, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		rec.ID, rec.PatientID, rec.DentistID, rec.VisitDate, rec.Diagnosis, rec.Treatment,
		rec.ToothNumber, rec.Notes)
	return err
}

func (r *dentalRecordRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*DentalRecord, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM dental_records WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+dentalCols+` FROM dental_records WHERE patient_id = $1
		 ORDER BY visit_date DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*DentalRecord
	for rows.Next() {
		rec, err := scanDental(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, rows.Err()
}
