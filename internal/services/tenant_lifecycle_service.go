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
	"github.com/rs/zerolog/log"
)

// defaultRoles are seeded for every new tenant, each bound to its capability
// keys in display order.
var defaultRoles = []struct {
	name        string
	description string
	capKeys     []string
}{
	{
		name:        "dentist",
		description: "Prescribes and reviews patient records",
		capKeys:     []string{models.CapPrescriptionsCreate, models.CapPrescriptionsRead, models.CapPrescriptionsCancel, models.CapTimelineRead, models.CapInventoryRead},
	},
	{
		name:        "pharmacist",
		description: "Dispenses prescriptions against clinic stock",
		capKeys:     []string{models.CapPrescriptionsRead, models.CapPrescriptionsFulfill, models.CapInventoryRead, models.CapInventoryManage},
	},
	{
		name:        "receptionist",
		description: "Front desk scheduling and patient lookup",
		capKeys:     []string{models.CapPrescriptionsRead, models.CapTimelineRead, models.CapPatientsManage},
	},
	{
		name:        "office_manager",
		description: "Full clinic administration",
		capKeys: []string{
			models.CapPrescriptionsCreate, models.CapPrescriptionsRead, models.CapPrescriptionsFulfill,
			models.CapPrescriptionsCancel, models.CapInventoryRead, models.CapInventoryManage,
			models.CapTimelineRead, models.CapPatientsManage,
		},
	},
}

// TenantLifecycleService owns tenant state transitions and the per-request
// access gate. Status is always read fresh from the store: a flipped kill
// switch must hold on the very next request, so no caching is permitted here.
type TenantLifecycleService interface {
	Create(ctx context.Context, name string, actorID uuid.UUID) (*models.Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	List(ctx context.Context, limit, offset int) ([]*models.Tenant, error)
	KillSwitch(ctx context.Context, tenantID, actorID uuid.UUID, reason string) (*models.Tenant, error)
	EnableMaintenance(ctx context.Context, tenantID, actorID uuid.UUID, reason string) (*models.Tenant, error)
	Reactivate(ctx context.Context, tenantID, actorID uuid.UUID, reason string) (*models.Tenant, error)
	CheckAccess(ctx context.Context, tenantID uuid.UUID, principal *common.Principal) error
}

type tenantLifecycleService struct {
	db                  repositories.TxDatabase
	tenantRepo          repositories.TenantRepository
	notificationService NotificationService
	capabilityService   CapabilityService
}

func NewTenantLifecycleService(db repositories.TxDatabase, tenantRepo repositories.TenantRepository, notificationService NotificationService, capabilityService CapabilityService) TenantLifecycleService {
	return &tenantLifecycleService{
		db:                  db,
		tenantRepo:          tenantRepo,
		notificationService: notificationService,
		capabilityService:   capabilityService,
	}
}

// Create provisions a tenant with its default roles and capability bindings
// in a single transaction.
func (s *tenantLifecycleService) Create(ctx context.Context, name string, actorID uuid.UUID) (*models.Tenant, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: tenant name is required", common.ErrValidation)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: begin transaction: %v", common.ErrTransient, err)
	}
	defer tx.Rollback(ctx)

	txTenantRepo := repositories.NewTenantRepo(tx)
	txRoleRepo := repositories.NewRoleRepo(tx)
	txPermissionRepo := repositories.NewPermissionRepo(tx)
	txAuditRepo := repositories.NewAuditRepo(tx)

	tenant := &models.Tenant{
		ID:     uuid.New(),
		Name:   name,
		Status: models.TenantActive,
	}
	if err := txTenantRepo.Create(ctx, tenant); err != nil {
		return nil, fmt.Errorf("%w: create tenant: %v", common.ErrTransient, err)
	}

	for _, seed := range defaultRoles {
		description := seed.description
		role := &models.Role{
			ID:          uuid.New(),
			TenantID:    tenant.ID,
			Name:        seed.name,
			Description: &description,
		}
		if err := txRoleRepo.Create(ctx, role); err != nil {
			return nil, fmt.Errorf("%w: seed role %s: %v", common.ErrTransient, seed.name, err)
		}
		for position, key := range seed.capKeys {
			perm, err := txPermissionRepo.GetByKey(ctx, key)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					// A hole in the capability catalog would commit a tenant
					// with silently degraded roles.
					return nil, fmt.Errorf("capability %s missing from catalog, cannot seed role %s", key, seed.name)
				}
				return nil, fmt.Errorf("%w: load capability %s: %v", common.ErrTransient, key, err)
			}
			if err := txRoleRepo.GrantPermission(ctx, role.ID, perm.ID, position); err != nil {
				return nil, fmt.Errorf("%w: bind capability %s to role %s: %v", common.ErrTransient, key, seed.name, err)
			}
		}
	}

	toState := models.TenantActive
	entry := &models.AuditEntry{
		ID:          uuid.New(),
		TenantID:    tenant.ID,
		SubjectType: "tenant",
		SubjectID:   tenant.ID.String(),
		Action:      models.AuditTenantCreate,
		ToState:     &toState,
		ActorID:     &actorID,
	}
	if err := txAuditRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("%w: record audit entry: %v", common.ErrTransient, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit transaction: %v", common.ErrTransient, err)
	}

	s.capabilityService.InvalidateTenant(ctx, tenant.ID)
	log.Info().Str("tenant_id", tenant.ID.String()).Str("name", name).Msg("tenant provisioned")
	return tenant, nil
}

func (s *tenantLifecycleService) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: load tenant: %v", common.ErrTransient, err)
	}
	return tenant, nil
}

func (s *tenantLifecycleService) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	tenants, err := s.tenantRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list tenants: %v", common.ErrTransient, err)
	}
	return tenants, nil
}

func (s *tenantLifecycleService) KillSwitch(ctx context.Context, tenantID, actorID uuid.UUID, reason string) (*models.Tenant, error) {
	return s.transition(ctx, tenantID, actorID, reason, models.TenantSuspended, models.AuditTenantKillSwitch,
		models.TenantActive, models.TenantMaintenance, models.TenantFrozen)
}

func (s *tenantLifecycleService) EnableMaintenance(ctx context.Context, tenantID, actorID uuid.UUID, reason string) (*models.Tenant, error) {
	return s.transition(ctx, tenantID, actorID, reason, models.TenantMaintenance, models.AuditTenantMaintenance,
		models.TenantActive)
}

func (s *tenantLifecycleService) Reactivate(ctx context.Context, tenantID, actorID uuid.UUID, reason string) (*models.Tenant, error) {
	return s.transition(ctx, tenantID, actorID, reason, models.TenantActive, models.AuditTenantReactivate,
		models.TenantSuspended, models.TenantFrozen, models.TenantMaintenance)
}

// transition moves the tenant to target if its current status is one of
// allowedFrom. The locked read, the status write and the audit entry commit
// together.
func (s *tenantLifecycleService) transition(ctx context.Context, tenantID, actorID uuid.UUID, reason, target, action string, allowedFrom ...string) (*models.Tenant, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: begin transaction: %v", common.ErrTransient, err)
	}
	defer tx.Rollback(ctx)

	txTenantRepo := repositories.NewTenantRepo(tx)
	txAuditRepo := repositories.NewAuditRepo(tx)

	tenant, err := txTenantRepo.GetByIDForUpdate(ctx, tenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: load tenant: %v", common.ErrTransient, err)
	}

	allowed := false
	for _, from := range allowedFrom {
		if tenant.Status == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: tenant is %s", common.ErrInvalidState, tenant.Status)
	}

	if err := txTenantRepo.UpdateStatus(ctx, tenantID, target); err != nil {
		return nil, fmt.Errorf("%w: update tenant status: %v", common.ErrTransient, err)
	}

	fromState := tenant.Status
	toState := target
	entry := &models.AuditEntry{
		ID:          uuid.New(),
		TenantID:    tenantID,
		SubjectType: "tenant",
		SubjectID:   tenantID.String(),
		Action:      action,
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

	tenant.Status = target
	log.Info().Str("tenant_id", tenantID.String()).Str("from", fromState).Str("to", target).Msg("tenant status changed")
	s.notificationService.Publish(ctx, tenantID, EventTenantStatusChanged, models.JSONB{
		"from": fromState,
		"to":   target,
	})
	return tenant, nil
}

// CheckAccess is the per-request tenant gate. It reads the tenant row fresh
// each time so a transition is enforced on the next request after it
// commits. System owners bypass the gate entirely.
func (s *tenantLifecycleService) CheckAccess(ctx context.Context, tenantID uuid.UUID, principal *common.Principal) error {
	if principal != nil && principal.IsSystemOwner() {
		return nil
	}

	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.ErrNotFound
		}
		return fmt.Errorf("%w: load tenant: %v", common.ErrTransient, err)
	}

	switch tenant.Status {
	case models.TenantActive:
		return nil
	case models.TenantSuspended, models.TenantFrozen:
		return common.ErrTenantSuspended
	case models.TenantMaintenance:
		// Staff keep working through maintenance; patient portal traffic is
		// shed.
		if principal != nil && principal.Kind == common.KindPatient {
			return common.ErrServiceUnavailable
		}
		return nil
	default:
		return common.ErrTenantSuspended
	}
}
