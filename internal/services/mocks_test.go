package services

import (
	"context"
	"time"

	"dentalops/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockPatientRepository struct {
	mock.Mock
}

func (m *MockPatientRepository) Create(ctx context.Context, patient *models.Patient) error {
	args := m.Called(ctx, patient)
	return args.Error(0)
}

func (m *MockPatientRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Patient, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Patient), args.Error(1)
}

func (m *MockPatientRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Patient, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Patient), args.Error(1)
}

type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) ListByPatient(ctx context.Context, tenantID, patientID uuid.UUID) ([]*models.Appointment, error) {
	args := m.Called(ctx, tenantID, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Appointment), args.Error(1)
}

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) ListByPatient(ctx context.Context, tenantID, patientID uuid.UUID) ([]*models.Invoice, error) {
	args := m.Called(ctx, tenantID, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Invoice), args.Error(1)
}

type MockPrescriptionRepository struct {
	mock.Mock
}

func (m *MockPrescriptionRepository) Create(ctx context.Context, prescription *models.Prescription) error {
	args := m.Called(ctx, prescription)
	return args.Error(0)
}

func (m *MockPrescriptionRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Prescription, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Prescription), args.Error(1)
}

func (m *MockPrescriptionRepository) GetByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.Prescription, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Prescription), args.Error(1)
}

func (m *MockPrescriptionRepository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string, dispensedAt *time.Time) error {
	args := m.Called(ctx, tenantID, id, status, dispensedAt)
	return args.Error(0)
}

func (m *MockPrescriptionRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Prescription, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Prescription), args.Error(1)
}

func (m *MockPrescriptionRepository) ListByPatient(ctx context.Context, tenantID, patientID uuid.UUID) ([]*models.Prescription, error) {
	args := m.Called(ctx, tenantID, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Prescription), args.Error(1)
}

type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) Create(ctx context.Context, role *models.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *MockRoleRepository) GetByName(ctx context.Context, tenantID uuid.UUID, name string) (*models.Role, error) {
	args := m.Called(ctx, tenantID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Role), args.Error(1)
}

func (m *MockRoleRepository) ListNamesByUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRoleRepository) AssignToUser(ctx context.Context, userRole *models.UserRole) error {
	args := m.Called(ctx, userRole)
	return args.Error(0)
}

func (m *MockRoleRepository) GrantPermission(ctx context.Context, roleID, permissionID uuid.UUID, position int) error {
	args := m.Called(ctx, roleID, permissionID, position)
	return args.Error(0)
}

type MockPermissionRepository struct {
	mock.Mock
}

func (m *MockPermissionRepository) ListByRole(ctx context.Context, roleID uuid.UUID) ([]*models.Permission, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Permission), args.Error(1)
}

func (m *MockPermissionRepository) GetByKey(ctx context.Context, key string) (*models.Permission, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Permission), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetCapabilities(ctx context.Context, tenantID uuid.UUID, roleKey string) ([]models.Capability, error) {
	args := m.Called(ctx, tenantID, roleKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Capability), args.Error(1)
}

func (m *MockCacheService) SetCapabilities(ctx context.Context, tenantID uuid.UUID, roleKey string, caps []models.Capability, ttl time.Duration) error {
	args := m.Called(ctx, tenantID, roleKey, caps, ttl)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateTenantCapabilities(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Publish(ctx context.Context, tenantID uuid.UUID, eventType string, payload models.JSONB) {
	m.Called(ctx, tenantID, eventType, payload)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
