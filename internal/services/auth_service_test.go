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
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceTestSuite struct {
	suite.Suite
	userRepo *MockUserRepository
	roleRepo *MockRoleRepository
	service  AuthService
	ctx      context.Context
	tenantID uuid.UUID
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.userRepo = &MockUserRepository{}
	suite.roleRepo = &MockRoleRepository{}
	svc, err := NewAuthService(suite.userRepo, suite.roleRepo, "test-secret", "")
	assert.NoError(suite.T(), err)
	suite.service = svc
	suite.ctx = context.Background()
	suite.tenantID = uuid.New()

	suite.userRepo.Test(suite.T())
	suite.roleRepo.Test(suite.T())
}

func (suite *AuthServiceTestSuite) TearDownTest() {
	suite.userRepo.AssertExpectations(suite.T())
	suite.roleRepo.AssertExpectations(suite.T())
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func (suite *AuthServiceTestSuite) staffUser(password string) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(suite.T(), err)
	return &models.User{
		ID:           uuid.New(),
		TenantID:     &suite.tenantID,
		Email:        "dentist@smile.example",
		PasswordHash: string(hash),
		Kind:         common.KindStaff,
		Status:       "active",
	}
}

func (suite *AuthServiceTestSuite) TestLoginAndResolveRoundTrip() {
	user := suite.staffUser("correct horse")
	suite.userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	suite.roleRepo.On("ListNamesByUser", mock.Anything, user.ID).Return([]string{"dentist"}, nil)

	token, loggedIn, err := suite.service.Login(suite.ctx, user.Email, "correct horse")
	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), token)
	assert.Equal(suite.T(), user.ID, loggedIn.ID)

	principal, err := suite.service.ResolvePrincipal(suite.ctx, token)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), user.ID, principal.UserID)
	assert.Equal(suite.T(), common.KindStaff, principal.Kind)
	assert.Equal(suite.T(), []string{"dentist"}, principal.Roles)
	if assert.NotNil(suite.T(), principal.TenantID) {
		assert.Equal(suite.T(), suite.tenantID, *principal.TenantID)
	}
	assert.False(suite.T(), principal.IsSystemOwner())
}

func (suite *AuthServiceTestSuite) TestLogin_WrongPassword() {
	user := suite.staffUser("correct horse")
	suite.userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	_, _, err := suite.service.Login(suite.ctx, user.Email, "battery staple")
	assert.ErrorIs(suite.T(), err, common.ErrUnauthorized)
}

func (suite *AuthServiceTestSuite) TestLogin_UnknownEmail() {
	suite.userRepo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, pgx.ErrNoRows)

	_, _, err := suite.service.Login(suite.ctx, "nobody@example.com", "whatever")
	assert.ErrorIs(suite.T(), err, common.ErrUnauthorized)
}

func (suite *AuthServiceTestSuite) TestResolvePrincipal_GarbageToken() {
	_, err := suite.service.ResolvePrincipal(suite.ctx, "not-a-jwt")
	assert.ErrorIs(suite.T(), err, common.ErrUnauthorized)
}

func (suite *AuthServiceTestSuite) TestCreateUser_RequiresTenantForStaff() {
	_, err := suite.service.CreateUser(suite.ctx, &NewUserInput{
		Email:    "staff@smile.example",
		Password: "secret",
		Kind:     common.KindStaff,
	})
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
}

func (suite *AuthServiceTestSuite) TestCreateUser_AssignsRoles() {
	roleID := uuid.New()
	suite.userRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)
	suite.roleRepo.On("GetByName", mock.Anything, suite.tenantID, "pharmacist").
		Return(&models.Role{ID: roleID, TenantID: suite.tenantID, Name: "pharmacist"}, nil)
	suite.roleRepo.On("AssignToUser", mock.Anything, mock.AnythingOfType("*models.UserRole")).Return(nil)

	user, err := suite.service.CreateUser(suite.ctx, &NewUserInput{
		TenantID: &suite.tenantID,
		Email:    "pharm@smile.example",
		Password: "secret",
		Kind:     common.KindStaff,
		Roles:    []string{"pharmacist"},
	})
	assert.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), uuid.Nil, user.ID)
	assert.NotEmpty(suite.T(), user.PasswordHash)
}
