package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"dentalops/internal/common"
	"dentalops/internal/models"
	"dentalops/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

type PrescriptionService interface {
	Create(ctx context.Context, prescription *models.Prescription) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Prescription, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Prescription, error)
	Fulfill(ctx context.Context, tenantID, prescriptionID, actorID uuid.UUID) (*models.Prescription, error)
	Cancel(ctx context.Context, tenantID, prescriptionID, actorID uuid.UUID, reason string) (*models.Prescription, error)
}

type prescriptionService struct {
	db                  repositories.TxDatabase
	prescriptionRepo    repositories.PrescriptionRepository
	patientRepo         repositories.PatientRepository
	notificationService NotificationService
}

func NewPrescriptionService(db repositories.TxDatabase, prescriptionRepo repositories.PrescriptionRepository, patientRepo repositories.PatientRepository, notificationService NotificationService) PrescriptionService {
	return &prescriptionService{
		db:                  db,
		prescriptionRepo:    prescriptionRepo,
		patientRepo:         patientRepo,
		notificationService: notificationService,
	}
}

func (s *prescriptionService) Create(ctx context.Context, prescription *models.Prescription) error {
	prescription.Medications.Version = models.MedicationLinesVersion
	if err := prescription.Medications.Validate(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	if _, err := s.patientRepo.GetByID(ctx, prescription.TenantID, prescription.PatientID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.ErrNotFound
		}
		return fmt.Errorf("%w: load patient: %v", common.ErrTransient, err)
	}

	if prescription.ID == uuid.Nil {
		prescription.ID = uuid.New()
	}
	prescription.Status = models.PrescriptionPending
	if err := s.prescriptionRepo.Create(ctx, prescription); err != nil {
		return fmt.Errorf("%w: create prescription: %v", common.ErrTransient, err)
	}
	return nil
}

func (s *prescriptionService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Prescription, error) {
	prescription, err := s.prescriptionRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: load prescription: %v", common.ErrTransient, err)
	}
	return prescription, nil
}

func (s *prescriptionService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Prescription, error) {
	prescriptions, err := s.prescriptionRepo.List(ctx, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list prescriptions: %v", common.ErrTransient, err)
	}
	return prescriptions, nil
}

// ledgerLine pairs an inventory item with the total quantity the
// prescription draws from it.
type ledgerLine struct {
	itemID uuid.UUID
	amount int
}

// ledgerLines collapses the prescription's stock-linked medication lines
// into per-item totals, ordered by item id. Every fulfillment locks items in
// this order, so two concurrent fulfillments can never deadlock on each
// other's rows.
func ledgerLines(medications models.MedicationLines) []ledgerLine {
	totals := make(map[uuid.UUID]int)
	for _, line := range medications.Lines {
		if line.InventoryItemID == nil {
			continue
		}
		totals[*line.InventoryItemID] += line.Quantity
	}

	lines := make([]ledgerLine, 0, len(totals))
	for itemID, amount := range totals {
		lines = append(lines, ledgerLine{itemID: itemID, amount: amount})
	}
	sort.Slice(lines, func(i, j int) bool {
		return bytes.Compare(lines[i].itemID[:], lines[j].itemID[:]) < 0
	})
	return lines
}

// Fulfill dispenses a pending prescription. The status transition, every
// stock deduction, and the audit entry commit as one transaction; if any
// line lacks stock, nothing is dispensed and no quantity changes.
func (s *prescriptionService) Fulfill(ctx context.Context, tenantID, prescriptionID, actorID uuid.UUID) (*models.Prescription, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: begin transaction: %v", common.ErrTransient, err)
	}
	defer tx.Rollback(ctx)

	txPrescriptionRepo := repositories.NewPrescriptionRepo(tx)
	txInventoryRepo := repositories.NewInventoryRepo(tx)
	txAuditRepo := repositories.NewAuditRepo(tx)

	prescription, err := txPrescriptionRepo.GetByIDForUpdate(ctx, tenantID, prescriptionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: load prescription: %v", common.ErrTransient, err)
	}
	if prescription.Status != models.PrescriptionPending {
		return nil, fmt.Errorf("%w: prescription is %s", common.ErrInvalidState, prescription.Status)
	}
	now := time.Now().UTC()
	if prescription.ValidUntil != nil && prescription.ValidUntil.Before(now) {
		return nil, fmt.Errorf("%w: prescription expired %s", common.ErrInvalidState, prescription.ValidUntil.Format(time.RFC3339))
	}

	deductions := models.JSONB{}
	for _, line := range ledgerLines(prescription.Medications) {
		remaining, err := txInventoryRepo.DecrementIfSufficient(ctx, tenantID, line.itemID, line.amount)
		if err != nil {
			var stockErr *common.StockInsufficientError
			if errors.As(err, &stockErr) || errors.Is(err, common.ErrNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: decrement stock: %v", common.ErrTransient, err)
		}
		deductions[line.itemID.String()] = models.JSONB{"amount": line.amount, "remaining": remaining}
	}

	if err := txPrescriptionRepo.UpdateStatus(ctx, tenantID, prescriptionID, models.PrescriptionFilled, &now); err != nil {
		return nil, fmt.Errorf("%w: update prescription status: %v", common.ErrTransient, err)
	}

	fromState := models.PrescriptionPending
	toState := models.PrescriptionFilled
	entry := &models.AuditEntry{
		ID:          uuid.New(),
		TenantID:    tenantID,
		SubjectType: "prescription",
		SubjectID:   prescriptionID.String(),
		Action:      models.AuditPrescriptionFulfill,
		FromState:   &fromState,
		ToState:     &toState,
		ActorID:     &actorID,
		Details:     models.JSONB{"deductions": deductions},
	}
	if err := txAuditRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("%w: record audit entry: %v", common.ErrTransient, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit transaction: %v", common.ErrTransient, err)
	}

	prescription.Status = models.PrescriptionFilled
	prescription.DispensedAt = &now
	log.Info().Str("tenant_id", tenantID.String()).Str("prescription_id", prescriptionID.String()).Msg("prescription fulfilled")
	s.notificationService.Publish(ctx, tenantID, EventPrescriptionFilled, models.JSONB{
		"prescription_id": prescriptionID.String(),
		"patient_id":      prescription.PatientID.String(),
	})
	return prescription, nil
}

// Cancel voids a pending prescription. No stock is touched: cancellation
// before dispensing has nothing to restore.
func (s *prescriptionService) Cancel(ctx context.Context, tenantID, prescriptionID, actorID uuid.UUID, reason string) (*models.Prescription, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: begin transaction: %v", common.ErrTransient, err)
	}
	defer tx.Rollback(ctx)

	txPrescriptionRepo := repositories.NewPrescriptionRepo(tx)
	txAuditRepo := repositories.NewAuditRepo(tx)

	prescription, err := txPrescriptionRepo.GetByIDForUpdate(ctx, tenantID, prescriptionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: load prescription: %v", common.ErrTransient, err)
	}
	if prescription.Status != models.PrescriptionPending {
		return nil, fmt.Errorf("%w: prescription is %s", common.ErrInvalidState, prescription.Status)
	}

	if err := txPrescriptionRepo.UpdateStatus(ctx, tenantID, prescriptionID, models.PrescriptionCancelled, nil); err != nil {
		return nil, fmt.Errorf("%w: update prescription status: %v", common.ErrTransient, err)
	}

	fromState := models.PrescriptionPending
	toState := models.PrescriptionCancelled
	entry := &models.AuditEntry{
		ID:          uuid.New(),
		TenantID:    tenantID,
		SubjectType: "prescription",
		SubjectID:   prescriptionID.String(),
		Action:      models.AuditPrescriptionCancel,
		FromState:   &fromState,
		ToState:     &toState,
		ActorID:     &actorID,
	}
	if reason != "" {
		entry.Reason = &reason
	}
	if err := txAuditRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("%w: record audit entry: %v", common.ErrTransient, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit transaction: %v", common.ErrTransient, err)
	}

	prescription.Status = models.PrescriptionCancelled
	s.notificationService.Publish(ctx, tenantID, EventPrescriptionCancelled, models.JSONB{
		"prescription_id": prescriptionID.String(),
		"patient_id":      prescription.PatientID.String(),
	})
	return prescription, nil
}
