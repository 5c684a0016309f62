package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Prescription status lifecycle: pending is the only non-terminal state.
const (
	PrescriptionPending   = "pending"
	PrescriptionFilled    = "filled"
	PrescriptionCancelled = "cancelled"
)

// MedicationLinesVersion tags the structured line format stored in jsonb so
// older rows can be migrated if the shape changes.
const MedicationLinesVersion = 1

// MedicationLine is one prescribed medication. InventoryItemID links the line
// to a stock row; lines without it (external pharmacy items) are dispensed
// without a ledger deduction.
type MedicationLine struct {
	Name            string     `json:"name"`
	Dosage          string     `json:"dosage"`
	Quantity        int        `json:"quantity"`
	InventoryItemID *uuid.UUID `json:"inventory_item_id,omitempty"`
}

// Validate checks a single medication line.
func (l *MedicationLine) Validate() error {
	if l.Name == "" {
		return fmt.Errorf("medication name is required")
	}
	if l.Dosage == "" {
		return fmt.Errorf("medication dosage is required")
	}
	if l.Quantity < 1 {
		return fmt.Errorf("medication quantity must be at least 1")
	}
	return nil
}

// MedicationLines is the versioned jsonb payload on a prescription row.
type MedicationLines struct {
	Version int              `json:"version"`
	Lines   []MedicationLine `json:"lines"`
}

// Validate checks the payload as a whole.
func (m *MedicationLines) Validate() error {
	if len(m.Lines) == 0 {
		return fmt.Errorf("at least one medication line is required")
	}
	for i := range m.Lines {
		if err := m.Lines[i].Validate(); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
	}
	return nil
}

type Prescription struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	TenantID     uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	PatientID    uuid.UUID       `json:"patient_id" db:"patient_id"`
	DoctorID     uuid.UUID       `json:"doctor_id" db:"doctor_id"`
	Medications  MedicationLines `json:"medications" db:"medications"`
	Instructions *string         `json:"instructions,omitempty" db:"instructions"`
	Status       string          `json:"status" db:"status"`
	ValidUntil   *time.Time      `json:"valid_until,omitempty" db:"valid_until"`
	DispensedAt  *time.Time      `json:"dispensed_at,omitempty" db:"dispensed_at"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}
