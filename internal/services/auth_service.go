package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dentalops/internal/common"
	"dentalops/internal/models"
	"dentalops/internal/repositories"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// Claims carried by issued and accepted tokens. TenantID is absent for
// system owners.
type Claims struct {
	TenantID *string  `json:"tenant_id,omitempty"`
	Kind     string   `json:"kind"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// AuthService resolves verified credentials into principals and issues
// tokens for locally managed users. Credential issuance beyond login is
// external; remotely issued tokens are accepted when a JWKS endpoint is
// configured.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	ResolvePrincipal(ctx context.Context, tokenString string) (*common.Principal, error)
	CreateUser(ctx context.Context, input *NewUserInput) (*models.User, error)
}

// NewUserInput describes a user to provision. TenantID is nil only for
// system owners.
type NewUserInput struct {
	TenantID  *uuid.UUID `json:"tenant_id"`
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Kind      string     `json:"kind"`
	Roles     []string   `json:"roles"`
}

type authService struct {
	userRepo  repositories.UserRepository
	roleRepo  repositories.RoleRepository
	secret    []byte
	jwks      *keyfunc.JWKS
	tokenTTL  time.Duration
}

// NewAuthService builds the resolver. When jwksURL is non-empty, token
// signatures are verified against the remote key set instead of the shared
// secret.
func NewAuthService(userRepo repositories.UserRepository, roleRepo repositories.RoleRepository, secret string, jwksURL string) (AuthService, error) {
	s := &authService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		secret:   []byte(secret),
		tokenTTL: 24 * time.Hour,
	}
	if jwksURL != "" {
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
			RefreshInterval:  time.Hour,
			RefreshRateLimit: time.Minute,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load JWKS from %s: %w", jwksURL, err)
		}
		s.jwks = jwks
	}
	return s, nil
}

func (s *authService) keyfunc(token *jwt.Token) (interface{}, error) {
	if s.jwks != nil {
		return s.jwks.Keyfunc(token)
	}
	return s.secret, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, common.ErrUnauthorized
		}
		return "", nil, fmt.Errorf("%w: load user: %v", common.ErrTransient, err)
	}
	if user.PasswordHash == "" {
		return "", nil, common.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, common.ErrUnauthorized
	}

	roles, err := s.roleRepo.ListNamesByUser(ctx, user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("%w: load roles: %v", common.ErrTransient, err)
	}

	now := time.Now()
	claims := &Claims{
		Kind:  user.Kind,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	if user.TenantID != nil {
		tenantStr := user.TenantID.String()
		claims.TenantID = &tenantStr
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, user, nil
}

// CreateUser provisions a user with a hashed password and assigns any
// requested tenant roles.
func (s *authService) CreateUser(ctx context.Context, input *NewUserInput) (*models.User, error) {
	if input.Email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrValidation)
	}
	switch input.Kind {
	case common.KindStaff, common.KindPatient, common.KindSystemOwner:
	default:
		return nil, fmt.Errorf("%w: unknown user kind %q", common.ErrValidation, input.Kind)
	}
	if input.Kind != common.KindSystemOwner && input.TenantID == nil {
		return nil, fmt.Errorf("%w: tenant is required for %s users", common.ErrValidation, input.Kind)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		TenantID:     input.TenantID,
		Email:        input.Email,
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Kind:         input.Kind,
		Status:       "active",
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("%w: create user: %v", common.ErrTransient, err)
	}

	for _, roleName := range input.Roles {
		if input.TenantID == nil {
			break
		}
		role, err := s.roleRepo.GetByName(ctx, *input.TenantID, roleName)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("%w: role %s does not exist", common.ErrValidation, roleName)
			}
			return nil, fmt.Errorf("%w: load role %s: %v", common.ErrTransient, roleName, err)
		}
		if err := s.roleRepo.AssignToUser(ctx, &models.UserRole{UserID: user.ID, RoleID: role.ID, TenantID: *input.TenantID}); err != nil {
			return nil, fmt.Errorf("%w: assign role %s: %v", common.ErrTransient, roleName, err)
		}
	}
	return user, nil
}

// ResolvePrincipal verifies the credential and produces the request
// principal. Any verification failure, including expiry, is Unauthorized.
func (s *authService) ResolvePrincipal(ctx context.Context, tokenString string) (*common.Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyfunc)
	if err != nil || !token.Valid {
		return nil, common.ErrUnauthorized
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, common.ErrUnauthorized
	}

	principal := &common.Principal{
		UserID: userID,
		Kind:   claims.Kind,
		Roles:  claims.Roles,
	}
	if claims.TenantID != nil {
		tenantID, err := uuid.Parse(*claims.TenantID)
		if err != nil {
			return nil, common.ErrUnauthorized
		}
		principal.TenantID = &tenantID
	}
	return principal, nil
}
