package repositories

import (
	"context"
	"time"

	"dentalops/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PrescriptionRepository interface {
	Create(ctx context.Context, prescription *models.Prescription) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Prescription, error)
	GetByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.Prescription, error)
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string, dispensedAt *time.Time) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Prescription, error)
	ListByPatient(ctx context.Context, tenantID, patientID uuid.UUID) ([]*models.Prescription, error)
}

type prescriptionRepo struct {
	db Database
}

func NewPrescriptionRepo(db Database) PrescriptionRepository {
	return &prescriptionRepo{db: db}
}

func (r *prescriptionRepo) Create(ctx context.Context, prescription *models.Prescription) error {
	query := `
		INSERT INTO prescriptions (id, tenant_id, patient_id, doctor_id, medications, instructions, status, valid_until, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, prescription.ID, prescription.TenantID, prescription.PatientID, prescription.DoctorID,
		prescription.Medications, prescription.Instructions, prescription.Status, prescription.ValidUntil)
	return err
}

func (r *prescriptionRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Prescription, error) {
	return r.get(ctx, tenantID, id, false)
}

// GetByIDForUpdate locks the prescription row so the status check and the
// transition to a terminal state are one serialized step within the
// enclosing transaction.
func (r *prescriptionRepo) GetByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.Prescription, error) {
	return r.get(ctx, tenantID, id, true)
}

func (r *prescriptionRepo) get(ctx context.Context, tenantID, id uuid.UUID, forUpdate bool) (*models.Prescription, error) {
	prescription := &models.Prescription{}
	query := `
		SELECT id, tenant_id, patient_id, doctor_id, medications, instructions, status, valid_until, dispensed_at, created_at, updated_at
		FROM prescriptions
		WHERE tenant_id = $1 AND id = $2
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&prescription.ID, &prescription.TenantID, &prescription.PatientID,
		&prescription.DoctorID, &prescription.Medications, &prescription.Instructions, &prescription.Status,
		&prescription.ValidUntil, &prescription.DispensedAt, &prescription.CreatedAt, &prescription.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return prescription, nil
}

func (r *prescriptionRepo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string, dispensedAt *time.Time) error {
	query := `
		UPDATE prescriptions
		SET status = $1, dispensed_at = $2, updated_at = NOW()
		WHERE tenant_id = $3 AND id = $4
	`
	_, err := r.db.Exec(ctx, query, status, dispensedAt, tenantID, id)
	return err
}

func (r *prescriptionRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Prescription, error) {
	query := `
		SELECT id, tenant_id, patient_id, doctor_id, medications, instructions, status, valid_until, dispensed_at, created_at, updated_at
		FROM prescriptions
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPrescriptions(rows)
}

func (r *prescriptionRepo) ListByPatient(ctx context.Context, tenantID, patientID uuid.UUID) ([]*models.Prescription, error) {
	query := `
		SELECT id, tenant_id, patient_id, doctor_id, medications, instructions, status, valid_until, dispensed_at, created_at, updated_at
		FROM prescriptions
		WHERE tenant_id = $1 AND patient_id = $2
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, tenantID, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPrescriptions(rows)
}

func scanPrescriptions(rows pgx.Rows) ([]*models.Prescription, error) {
	var prescriptions []*models.Prescription
	for rows.Next() {
		prescription := &models.Prescription{}
		if err := rows.Scan(&prescription.ID, &prescription.TenantID, &prescription.PatientID, &prescription.DoctorID,
			&prescription.Medications, &prescription.Instructions, &prescription.Status, &prescription.ValidUntil,
			&prescription.DispensedAt, &prescription.CreatedAt, &prescription.UpdatedAt); err != nil {
			return nil, err
		}
		prescriptions = append(prescriptions, prescription)
	}
	return prescriptions, rows.Err()
}
