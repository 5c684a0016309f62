package services

import (
	"context"
	"testing"
	"time"

	"dentalops/internal/common"
	"dentalops/internal/models"
	"dentalops/internal/repositories"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type TenantLifecycleServiceTestSuite struct {
	suite.Suite
	mock          pgxmock.PgxPoolIface
	notifications *MockNotificationService
	capabilities  *MockCapabilityService
	service       TenantLifecycleService
	ctx           context.Context
	tenantID      uuid.UUID
	actorID       uuid.UUID
}

type MockCapabilityService struct {
	mock.Mock
}

func (m *MockCapabilityService) CapabilitiesFor(ctx context.Context, principal *common.Principal) ([]models.Capability, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Capability), args.Error(1)
}

func (m *MockCapabilityService) HasCapability(ctx context.Context, principal *common.Principal, key string) (bool, error) {
	args := m.Called(ctx, principal, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCapabilityService) MergeCapabilities(ctx context.Context, tenantID uuid.UUID, roles []string) ([]models.Capability, error) {
	args := m.Called(ctx, tenantID, roles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Capability), args.Error(1)
}

func (m *MockCapabilityService) InvalidateTenant(ctx context.Context, tenantID uuid.UUID) {
	m.Called(ctx, tenantID)
}

func (suite *TenantLifecycleServiceTestSuite) SetupTest() {
	mockPool, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mockPool
	suite.notifications = &MockNotificationService{}
	suite.capabilities = &MockCapabilityService{}
	suite.service = NewTenantLifecycleService(mockPool, repositories.NewTenantRepo(mockPool), suite.notifications, suite.capabilities)
	suite.ctx = context.Background()
	suite.tenantID = uuid.New()
	suite.actorID = uuid.New()

	suite.notifications.Test(suite.T())
	suite.capabilities.Test(suite.T())
}

func (suite *TenantLifecycleServiceTestSuite) TearDownTest() {
	suite.mock.Close()
	suite.notifications.AssertExpectations(suite.T())
}

func TestTenantLifecycleServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TenantLifecycleServiceTestSuite))
}

func (suite *TenantLifecycleServiceTestSuite) tenantRow(status string) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{"id", "name", "status", "created_at", "updated_at"}).
		AddRow(suite.tenantID, "Smile Dental", status, now, now)
}

func (suite *TenantLifecycleServiceTestSuite) expectTransition(fromStatus, toStatus string) {
	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT id, name, status, created_at, updated_at FROM tenants WHERE id = \$1 FOR UPDATE`).
		WithArgs(suite.tenantID).
		WillReturnRows(suite.tenantRow(fromStatus))
	suite.mock.ExpectExec(`UPDATE tenants SET status = \$1`).
		WithArgs(toStatus, suite.tenantID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`INSERT INTO audit_entries`).
		WithArgs(pgxmock.AnyArg(), suite.tenantID, "tenant", suite.tenantID.String(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()
}

func (suite *TenantLifecycleServiceTestSuite) TestKillSwitch_FromActive() {
	suite.expectTransition(models.TenantActive, models.TenantSuspended)
	suite.notifications.On("Publish", mock.Anything, suite.tenantID, EventTenantStatusChanged, mock.Anything).Return()

	tenant, err := suite.service.KillSwitch(suite.ctx, suite.tenantID, suite.actorID, "billing dispute")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.TenantSuspended, tenant.Status)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *TenantLifecycleServiceTestSuite) TestKillSwitch_FromFrozen() {
	suite.expectTransition(models.TenantFrozen, models.TenantSuspended)
	suite.notifications.On("Publish", mock.Anything, suite.tenantID, EventTenantStatusChanged, mock.Anything).Return()

	tenant, err := suite.service.KillSwitch(suite.ctx, suite.tenantID, suite.actorID, "compliance hold escalated")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.TenantSuspended, tenant.Status)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *TenantLifecycleServiceTestSuite) TestKillSwitch_AlreadySuspended() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT id, name, status, created_at, updated_at FROM tenants WHERE id = \$1 FOR UPDATE`).
		WithArgs(suite.tenantID).
		WillReturnRows(suite.tenantRow(models.TenantSuspended))
	suite.mock.ExpectRollback()

	_, err := suite.service.KillSwitch(suite.ctx, suite.tenantID, suite.actorID, "")
	assert.ErrorIs(suite.T(), err, common.ErrInvalidState)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *TenantLifecycleServiceTestSuite) TestEnableMaintenance_RequiresActive() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT id, name, status, created_at, updated_at FROM tenants WHERE id = \$1 FOR UPDATE`).
		WithArgs(suite.tenantID).
		WillReturnRows(suite.tenantRow(models.TenantSuspended))
	suite.mock.ExpectRollback()

	_, err := suite.service.EnableMaintenance(suite.ctx, suite.tenantID, suite.actorID, "upgrade window")
	assert.ErrorIs(suite.T(), err, common.ErrInvalidState)
}

func (suite *TenantLifecycleServiceTestSuite) TestReactivate_FromFrozen() {
	suite.expectTransition(models.TenantFrozen, models.TenantActive)
	suite.notifications.On("Publish", mock.Anything, suite.tenantID, EventTenantStatusChanged, mock.Anything).Return()

	tenant, err := suite.service.Reactivate(suite.ctx, suite.tenantID, suite.actorID, "resolved")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.TenantActive, tenant.Status)
}

func (suite *TenantLifecycleServiceTestSuite) TestCreate_MissingCapabilityAbortsProvisioning() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`INSERT INTO tenants`).
		WithArgs(pgxmock.AnyArg(), "Smile Dental", models.TenantActive).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO roles`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "dentist", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	// The first capability lookup comes back empty; the whole provisioning
	// transaction must roll back rather than commit a degraded role.
	suite.mock.ExpectQuery(`SELECT id, key, label, grp, created_at FROM permissions WHERE key = \$1`).
		WithArgs(models.CapPrescriptionsCreate).
		WillReturnRows(pgxmock.NewRows([]string{"id", "key", "label", "grp", "created_at"}))
	suite.mock.ExpectRollback()

	_, err := suite.service.Create(suite.ctx, "Smile Dental", suite.actorID)
	assert.ErrorContains(suite.T(), err, models.CapPrescriptionsCreate)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *TenantLifecycleServiceTestSuite) expectStatusRead(status string) {
	suite.mock.ExpectQuery(`SELECT id, name, status, created_at, updated_at FROM tenants WHERE id = \$1`).
		WithArgs(suite.tenantID).
		WillReturnRows(suite.tenantRow(status))
}

func (suite *TenantLifecycleServiceTestSuite) TestCheckAccess_Active() {
	suite.expectStatusRead(models.TenantActive)
	staff := &common.Principal{UserID: uuid.New(), TenantID: &suite.tenantID, Kind: common.KindStaff}
	assert.NoError(suite.T(), suite.service.CheckAccess(suite.ctx, suite.tenantID, staff))
}

func (suite *TenantLifecycleServiceTestSuite) TestCheckAccess_SuspendedBlocksStaff() {
	suite.expectStatusRead(models.TenantSuspended)
	staff := &common.Principal{UserID: uuid.New(), TenantID: &suite.tenantID, Kind: common.KindStaff}
	assert.ErrorIs(suite.T(), suite.service.CheckAccess(suite.ctx, suite.tenantID, staff), common.ErrTenantSuspended)
}

func (suite *TenantLifecycleServiceTestSuite) TestCheckAccess_FrozenBlocksLikeSuspended() {
	suite.expectStatusRead(models.TenantFrozen)
	staff := &common.Principal{UserID: uuid.New(), TenantID: &suite.tenantID, Kind: common.KindStaff}
	assert.ErrorIs(suite.T(), suite.service.CheckAccess(suite.ctx, suite.tenantID, staff), common.ErrTenantSuspended)
}

func (suite *TenantLifecycleServiceTestSuite) TestCheckAccess_MaintenanceShedsPatientsOnly() {
	suite.expectStatusRead(models.TenantMaintenance)
	patient := &common.Principal{UserID: uuid.New(), TenantID: &suite.tenantID, Kind: common.KindPatient}
	assert.ErrorIs(suite.T(), suite.service.CheckAccess(suite.ctx, suite.tenantID, patient), common.ErrServiceUnavailable)

	suite.expectStatusRead(models.TenantMaintenance)
	staff := &common.Principal{UserID: uuid.New(), TenantID: &suite.tenantID, Kind: common.KindStaff}
	assert.NoError(suite.T(), suite.service.CheckAccess(suite.ctx, suite.tenantID, staff))
}

func (suite *TenantLifecycleServiceTestSuite) TestCheckAccess_SystemOwnerBypasses() {
	owner := &common.Principal{UserID: uuid.New(), Kind: common.KindSystemOwner}
	assert.NoError(suite.T(), suite.service.CheckAccess(suite.ctx, suite.tenantID, owner))
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}
