package models

import (
	"time"
)

// Timeline event types, in tie-break priority order.
const (
	TimelineAppointment  = "appointment"
	TimelinePrescription = "prescription"
	TimelineInvoice      = "invoice"
)

// TimelineEvent is the uniform shape appointments, prescriptions and invoices
// are mapped into before merging.
type TimelineEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Metadata    JSONB     `json:"metadata,omitempty"`
}

// TypePriority orders equal-timestamp events: appointments before
// prescriptions before invoices.
func (e *TimelineEvent) TypePriority() int {
	switch e.Type {
	case TimelineAppointment:
		return 0
	case TimelinePrescription:
		return 1
	default:
		return 2
	}
}
