package repositories

import (
	"context"

	"dentalops/internal/models"

	"github.com/google/uuid"
)

// AppointmentRepository is read-only: appointments are timeline inputs whose
// lifecycle is managed elsewhere.
type AppointmentRepository interface {
	ListByPatient(ctx context.Context, tenantID, patientID uuid.UUID) ([]*models.Appointment, error)
}

type appointmentRepo struct {
	db Database
}

func NewAppointmentRepo(db Database) AppointmentRepository {
	return &appointmentRepo{db: db}
}

func (r *appointmentRepo) ListByPatient(ctx context.Context, tenantID, patientID uuid.UUID) ([]*models.Appointment, error) {
	query := `
		SELECT id, tenant_id, patient_id, provider_id, title, status, scheduled_at, notes
		FROM appointments
		WHERE tenant_id = $1 AND patient_id = $2
		ORDER BY scheduled_at DESC
	`
	rows, err := r.db.Query(ctx, query, tenantID, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appointments []*models.Appointment
	for rows.Next() {
		appointment := &models.Appointment{}
		if err := rows.Scan(&appointment.ID, &appointment.TenantID, &appointment.PatientID, &appointment.ProviderID,
			&appointment.Title, &appointment.Status, &appointment.ScheduledAt, &appointment.Notes); err != nil {
			return nil, err
		}
		appointments = append(appointments, appointment)
	}
	return appointments, rows.Err()
}
