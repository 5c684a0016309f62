package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"dentalops/internal/common"
	"dentalops/internal/models"
	"dentalops/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TimelineService merges a patient's appointments, prescriptions and
// invoices into one chronological view. It only reads; nothing here mutates
// the underlying records.
type TimelineService interface {
	GetTimeline(ctx context.Context, principal *common.Principal, tenantID, patientID uuid.UUID) ([]models.TimelineEvent, error)
}

type timelineService struct {
	patientRepo      repositories.PatientRepository
	appointmentRepo  repositories.AppointmentRepository
	prescriptionRepo repositories.PrescriptionRepository
	invoiceRepo      repositories.InvoiceRepository
}

func NewTimelineService(patientRepo repositories.PatientRepository, appointmentRepo repositories.AppointmentRepository, prescriptionRepo repositories.PrescriptionRepository, invoiceRepo repositories.InvoiceRepository) TimelineService {
	return &timelineService{
		patientRepo:      patientRepo,
		appointmentRepo:  appointmentRepo,
		prescriptionRepo: prescriptionRepo,
		invoiceRepo:      invoiceRepo,
	}
}

func (s *timelineService) GetTimeline(ctx context.Context, principal *common.Principal, tenantID, patientID uuid.UUID) ([]models.TimelineEvent, error) {
	if principal == nil {
		return nil, common.ErrUnauthorized
	}
	if principal.TenantID == nil || *principal.TenantID != tenantID {
		return nil, common.ErrForbidden
	}

	patient, err := s.patientRepo.GetByID(ctx, tenantID, patientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: load patient: %v", common.ErrTransient, err)
	}

	// Patients see only their own record; staff access is capability-gated
	// upstream.
	if principal.Kind == common.KindPatient {
		if patient.UserID == nil || *patient.UserID != principal.UserID {
			return nil, common.ErrForbidden
		}
	}

	appointments, err := s.appointmentRepo.ListByPatient(ctx, tenantID, patientID)
	if err != nil {
		return nil, fmt.Errorf("%w: list appointments: %v", common.ErrTransient, err)
	}
	prescriptions, err := s.prescriptionRepo.ListByPatient(ctx, tenantID, patientID)
	if err != nil {
		return nil, fmt.Errorf("%w: list prescriptions: %v", common.ErrTransient, err)
	}
	invoices, err := s.invoiceRepo.ListByPatient(ctx, tenantID, patientID)
	if err != nil {
		return nil, fmt.Errorf("%w: list invoices: %v", common.ErrTransient, err)
	}

	events := make([]models.TimelineEvent, 0, len(appointments)+len(prescriptions)+len(invoices))
	for _, appointment := range appointments {
		event := models.TimelineEvent{
			ID:        appointment.ID.String(),
			Type:      models.TimelineAppointment,
			Timestamp: appointment.ScheduledAt,
			Title:     appointment.Title,
			Status:    appointment.Status,
			Metadata:  models.JSONB{"provider_id": appointment.ProviderID.String()},
		}
		if appointment.Notes != nil {
			event.Description = *appointment.Notes
		}
		events = append(events, event)
	}
	for _, prescription := range prescriptions {
		title := "Prescription"
		if len(prescription.Medications.Lines) > 0 {
			title = "Prescription: " + prescription.Medications.Lines[0].Name
		}
		event := models.TimelineEvent{
			ID:        prescription.ID.String(),
			Type:      models.TimelinePrescription,
			Timestamp: prescription.CreatedAt,
			Title:     title,
			Status:    prescription.Status,
			Metadata: models.JSONB{
				"doctor_id":        prescription.DoctorID.String(),
				"medication_count": len(prescription.Medications.Lines),
			},
		}
		if prescription.Instructions != nil {
			event.Description = *prescription.Instructions
		}
		events = append(events, event)
	}
	for _, invoice := range invoices {
		events = append(events, models.TimelineEvent{
			ID:        invoice.ID.String(),
			Type:      models.TimelineInvoice,
			Timestamp: invoice.IssuedAt,
			Title:     "Invoice " + invoice.InvoiceNumber,
			Status:    invoice.Status,
			Metadata:  models.JSONB{"total_amount": invoice.TotalAmount},
		})
	}

	// Newest first; equal timestamps fall back to type priority, then id, so
	// repeated reads return an identical ordering.
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].Timestamp.After(events[j].Timestamp)
		}
		if events[i].TypePriority() != events[j].TypePriority() {
			return events[i].TypePriority() < events[j].TypePriority()
		}
		return events[i].ID < events[j].ID
	})
	return events, nil
}
