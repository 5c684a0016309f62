package models

import (
	"time"

	"github.com/google/uuid"
)

// Invoice rows are read-only inputs to the patient timeline; billing and
// payment computation are out of scope.
type Invoice struct {
	ID            uuid.UUID `json:"id" db:"id"`
	TenantID      uuid.UUID `json:"tenant_id" db:"tenant_id"`
	PatientID     uuid.UUID `json:"patient_id" db:"patient_id"`
	InvoiceNumber string    `json:"invoice_number" db:"invoice_number"`
	TotalAmount   float64   `json:"total_amount" db:"total_amount"`
	Status        string    `json:"status" db:"status"`
	IssuedAt      time.Time `json:"issued_at" db:"issued_at"`
}
