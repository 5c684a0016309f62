package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dentalops/internal/caching"
	"dentalops/internal/common"
	"dentalops/internal/models"
	"dentalops/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

const capabilityCacheTTL = 5 * time.Minute

// systemOwnerCapabilities is the fixed set for principals with no tenant.
// System owners never resolve through tenant role bindings.
var systemOwnerCapabilities = []models.Capability{
	{Key: models.CapTenantsManage, Label: "Manage tenants", Group: "platform"},
	{Key: models.CapAuditRead, Label: "Read audit trail", Group: "platform"},
}

// CapabilityService is the single place capability sets are produced.
// Access checks and the UI-facing capability listing both go through it, so
// they can never disagree.
type CapabilityService interface {
	CapabilitiesFor(ctx context.Context, principal *common.Principal) ([]models.Capability, error)
	HasCapability(ctx context.Context, principal *common.Principal, key string) (bool, error)
	MergeCapabilities(ctx context.Context, tenantID uuid.UUID, roles []string) ([]models.Capability, error)
	InvalidateTenant(ctx context.Context, tenantID uuid.UUID)
}

type capabilityService struct {
	roleRepo       repositories.RoleRepository
	permissionRepo repositories.PermissionRepository
	cacheService   caching.CacheService
}

func NewCapabilityService(roleRepo repositories.RoleRepository, permissionRepo repositories.PermissionRepository, cacheService caching.CacheService) CapabilityService {
	return &capabilityService{
		roleRepo:       roleRepo,
		permissionRepo: permissionRepo,
		cacheService:   cacheService,
	}
}

func (s *capabilityService) CapabilitiesFor(ctx context.Context, principal *common.Principal) ([]models.Capability, error) {
	if principal == nil {
		return nil, common.ErrUnauthorized
	}
	if principal.IsSystemOwner() {
		caps := make([]models.Capability, len(systemOwnerCapabilities))
		copy(caps, systemOwnerCapabilities)
		return caps, nil
	}
	if principal.TenantID == nil {
		return nil, common.ErrForbidden
	}
	return s.MergeCapabilities(ctx, *principal.TenantID, principal.Roles)
}

func (s *capabilityService) HasCapability(ctx context.Context, principal *common.Principal, key string) (bool, error) {
	caps, err := s.CapabilitiesFor(ctx, principal)
	if err != nil {
		return false, err
	}
	for _, capability := range caps {
		if capability.Key == key {
			return true, nil
		}
	}
	return false, nil
}

// MergeCapabilities unions the capabilities of the given roles. Duplicate
// keys collapse to one entry; the earliest role's label and group win, so the
// merged set is deterministic for a given role order.
func (s *capabilityService) MergeCapabilities(ctx context.Context, tenantID uuid.UUID, roles []string) ([]models.Capability, error) {
	if len(roles) == 0 {
		return []models.Capability{}, nil
	}

	roleKey := strings.Join(roles, ",")
	if cached, err := s.cacheService.GetCapabilities(ctx, tenantID, roleKey); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		log.Warn().Err(err).Str("tenant_id", tenantID.String()).Msg("capability cache read failed")
	}

	seen := make(map[string]bool)
	merged := []models.Capability{}
	for _, roleName := range roles {
		role, err := s.roleRepo.GetByName(ctx, tenantID, roleName)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// A stale role name in a token contributes nothing.
				continue
			}
			return nil, fmt.Errorf("%w: load role %s: %v", common.ErrTransient, roleName, err)
		}
		perms, err := s.permissionRepo.ListByRole(ctx, role.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: load permissions for role %s: %v", common.ErrTransient, roleName, err)
		}
		for _, perm := range perms {
			if seen[perm.Key] {
				continue
			}
			seen[perm.Key] = true
			merged = append(merged, models.Capability{Key: perm.Key, Label: perm.Label, Group: perm.Group})
		}
	}

	if err := s.cacheService.SetCapabilities(ctx, tenantID, roleKey, merged, capabilityCacheTTL); err != nil {
		log.Warn().Err(err).Str("tenant_id", tenantID.String()).Msg("capability cache write failed")
	}
	return merged, nil
}

func (s *capabilityService) InvalidateTenant(ctx context.Context, tenantID uuid.UUID) {
	if err := s.cacheService.InvalidateTenantCapabilities(ctx, tenantID); err != nil {
		log.Warn().Err(err).Str("tenant_id", tenantID.String()).Msg("capability cache invalidation failed")
	}
}
