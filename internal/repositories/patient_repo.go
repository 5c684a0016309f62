package repositories

import (
	"context"

	"dentalops/internal/models"

	"github.com/google/uuid"
)

type PatientRepository interface {
	Create(ctx context.Context, patient *models.Patient) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Patient, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Patient, error)
}

type patientRepo struct {
	db Database
}

func NewPatientRepo(db Database) PatientRepository {
	return &patientRepo{db: db}
}

func (r *patientRepo) Create(ctx context.Context, patient *models.Patient) error {
	query := `
		INSERT INTO patients (id, tenant_id, user_id, first_name, last_name, date_of_birth, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.db.Exec(ctx, query, patient.ID, patient.TenantID, patient.UserID, patient.FirstName, patient.LastName, patient.DateOfBirth)
	return err
}

func (r *patientRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Patient, error) {
	patient := &models.Patient{}
	query := `
		SELECT id, tenant_id, user_id, first_name, last_name, date_of_birth, created_at
		FROM patients
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&patient.ID, &patient.TenantID, &patient.UserID, &patient.FirstName, &patient.LastName, &patient.DateOfBirth, &patient.CreatedAt)
	if err != nil {
		return nil, err
	}
	return patient, nil
}

func (r *patientRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Patient, error) {
	query := `
		SELECT id, tenant_id, user_id, first_name, last_name, date_of_birth, created_at
		FROM patients
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patients []*models.Patient
	for rows.Next() {
		patient := &models.Patient{}
		if err := rows.Scan(&patient.ID, &patient.TenantID, &patient.UserID, &patient.FirstName, &patient.LastName, &patient.DateOfBirth, &patient.CreatedAt); err != nil {
			return nil, err
		}
		patients = append(patients, patient)
	}
	return patients, rows.Err()
}
