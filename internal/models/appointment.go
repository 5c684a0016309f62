package models

import (
	"time"

	"github.com/google/uuid"
)

// Appointment rows are read-only inputs to the patient timeline; scheduling
// itself lives outside this service.
type Appointment struct {
	ID          uuid.UUID `json:"id" db:"id"`
	TenantID    uuid.UUID `json:"tenant_id" db:"tenant_id"`
	PatientID   uuid.UUID `json:"patient_id" db:"patient_id"`
	ProviderID  uuid.UUID `json:"provider_id" db:"provider_id"`
	Title       string    `json:"title" db:"title"`
	Status      string    `json:"status" db:"status"`
	ScheduledAt time.Time `json:"scheduled_at" db:"scheduled_at"`
	Notes       *string   `json:"notes,omitempty" db:"notes"`
}
