package services

import (
	"context"
	"errors"
	"fmt"

	"dentalops/internal/common"
	"dentalops/internal/models"
	"dentalops/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PatientService interface {
	Create(ctx context.Context, patient *models.Patient) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Patient, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Patient, error)
}

type patientService struct {
	patientRepo repositories.PatientRepository
}

func NewPatientService(patientRepo repositories.PatientRepository) PatientService {
	return &patientService{patientRepo: patientRepo}
}

func (s *patientService) Create(ctx context.Context, patient *models.Patient) error {
	if err := common.ValidateRequiredString(patient.FirstName, "first_name"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if err := common.ValidateRequiredString(patient.LastName, "last_name"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}
	if err := s.patientRepo.Create(ctx, patient); err != nil {
		return fmt.Errorf("%w: create patient: %v", common.ErrTransient, err)
	}
	return nil
}

func (s *patientService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Patient, error) {
	patient, err := s.patientRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: load patient: %v", common.ErrTransient, err)
	}
	return patient, nil
}

func (s *patientService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Patient, error) {
	patients, err := s.patientRepo.List(ctx, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list patients: %v", common.ErrTransient, err)
	}
	return patients, nil
}
