package services

import (
	"context"
	"testing"

	"dentalops/internal/common"
	"dentalops/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type CapabilityServiceTestSuite struct {
	suite.Suite
	roleRepo       *MockRoleRepository
	permissionRepo *MockPermissionRepository
	cache          *MockCacheService
	service        CapabilityService
	ctx            context.Context
	tenantID       uuid.UUID
}

func (suite *CapabilityServiceTestSuite) SetupTest() {
	suite.roleRepo = &MockRoleRepository{}
	suite.permissionRepo = &MockPermissionRepository{}
	suite.cache = &MockCacheService{}
	suite.service = NewCapabilityService(suite.roleRepo, suite.permissionRepo, suite.cache)
	suite.ctx = context.Background()
	suite.tenantID = uuid.New()

	suite.roleRepo.Test(suite.T())
	suite.permissionRepo.Test(suite.T())
	suite.cache.Test(suite.T())
}

func (suite *CapabilityServiceTestSuite) TearDownTest() {
	suite.roleRepo.AssertExpectations(suite.T())
	suite.permissionRepo.AssertExpectations(suite.T())
}

func TestCapabilityServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CapabilityServiceTestSuite))
}

func (suite *CapabilityServiceTestSuite) perm(key, label, group string) *models.Permission {
	return &models.Permission{ID: uuid.New(), Key: key, Label: label, Group: group}
}

func (suite *CapabilityServiceTestSuite) TestMerge_DuplicateKeysFirstRoleWins() {
	dentistID := uuid.New()
	managerID := uuid.New()

	suite.cache.On("GetCapabilities", mock.Anything, suite.tenantID, "dentist,office_manager").Return(nil, nil)
	suite.cache.On("SetCapabilities", mock.Anything, suite.tenantID, "dentist,office_manager", mock.Anything, capabilityCacheTTL).Return(nil)

	suite.roleRepo.On("GetByName", mock.Anything, suite.tenantID, "dentist").
		Return(&models.Role{ID: dentistID, TenantID: suite.tenantID, Name: "dentist"}, nil)
	suite.roleRepo.On("GetByName", mock.Anything, suite.tenantID, "office_manager").
		Return(&models.Role{ID: managerID, TenantID: suite.tenantID, Name: "office_manager"}, nil)

	suite.permissionRepo.On("ListByRole", mock.Anything, dentistID).Return([]*models.Permission{
		suite.perm(models.CapPrescriptionsRead, "View prescriptions", "clinical"),
		suite.perm(models.CapTimelineRead, "View patient timeline", "clinical"),
	}, nil)
	suite.permissionRepo.On("ListByRole", mock.Anything, managerID).Return([]*models.Permission{
		suite.perm(models.CapPrescriptionsRead, "Prescription access", "admin"),
		suite.perm(models.CapInventoryManage, "Manage stock", "admin"),
	}, nil)

	caps, err := suite.service.MergeCapabilities(suite.ctx, suite.tenantID, []string{"dentist", "office_manager"})
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), caps, 3)
	// prescriptions:read keeps the dentist's display metadata.
	assert.Equal(suite.T(), models.CapPrescriptionsRead, caps[0].Key)
	assert.Equal(suite.T(), "View prescriptions", caps[0].Label)
	assert.Equal(suite.T(), "clinical", caps[0].Group)
	assert.Equal(suite.T(), models.CapTimelineRead, caps[1].Key)
	assert.Equal(suite.T(), models.CapInventoryManage, caps[2].Key)
}

func (suite *CapabilityServiceTestSuite) TestMerge_CacheHitSkipsStore() {
	cached := []models.Capability{{Key: models.CapInventoryRead, Label: "View stock", Group: "clinical"}}
	suite.cache.On("GetCapabilities", mock.Anything, suite.tenantID, "pharmacist").Return(cached, nil)

	caps, err := suite.service.MergeCapabilities(suite.ctx, suite.tenantID, []string{"pharmacist"})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), cached, caps)
	suite.roleRepo.AssertNotCalled(suite.T(), "GetByName")
}

func (suite *CapabilityServiceTestSuite) TestMerge_UnknownRoleContributesNothing() {
	suite.cache.On("GetCapabilities", mock.Anything, suite.tenantID, "ghost").Return(nil, nil)
	suite.cache.On("SetCapabilities", mock.Anything, suite.tenantID, "ghost", mock.Anything, capabilityCacheTTL).Return(nil)
	suite.roleRepo.On("GetByName", mock.Anything, suite.tenantID, "ghost").Return(nil, pgx.ErrNoRows)

	caps, err := suite.service.MergeCapabilities(suite.ctx, suite.tenantID, []string{"ghost"})
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), caps)
}

func (suite *CapabilityServiceTestSuite) TestMerge_EmptyRoles() {
	caps, err := suite.service.MergeCapabilities(suite.ctx, suite.tenantID, nil)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), caps)
}

func (suite *CapabilityServiceTestSuite) TestCapabilitiesFor_SystemOwner() {
	principal := &common.Principal{UserID: uuid.New(), Kind: common.KindSystemOwner}

	caps, err := suite.service.CapabilitiesFor(suite.ctx, principal)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), caps, 2)
	assert.Equal(suite.T(), models.CapTenantsManage, caps[0].Key)
	assert.Equal(suite.T(), models.CapAuditRead, caps[1].Key)
	suite.roleRepo.AssertNotCalled(suite.T(), "GetByName")
}

func (suite *CapabilityServiceTestSuite) TestHasCapability() {
	roleID := uuid.New()
	principal := &common.Principal{UserID: uuid.New(), TenantID: &suite.tenantID, Kind: common.KindStaff, Roles: []string{"pharmacist"}}

	suite.cache.On("GetCapabilities", mock.Anything, suite.tenantID, "pharmacist").Return(nil, nil).Twice()
	suite.cache.On("SetCapabilities", mock.Anything, suite.tenantID, "pharmacist", mock.Anything, capabilityCacheTTL).Return(nil).Twice()
	suite.roleRepo.On("GetByName", mock.Anything, suite.tenantID, "pharmacist").
		Return(&models.Role{ID: roleID, TenantID: suite.tenantID, Name: "pharmacist"}, nil).Twice()
	suite.permissionRepo.On("ListByRole", mock.Anything, roleID).Return([]*models.Permission{
		suite.perm(models.CapPrescriptionsFulfill, "Dispense prescriptions", "clinical"),
	}, nil).Twice()

	allowed, err := suite.service.HasCapability(suite.ctx, principal, models.CapPrescriptionsFulfill)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), allowed)

	allowed, err = suite.service.HasCapability(suite.ctx, principal, models.CapTenantsManage)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), allowed)
}
