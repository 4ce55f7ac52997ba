package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"lexdesk-backend/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

// InviteMailer delivers invitation emails. Delivery failure is never fatal;
// the admin still receives the temporary password in the response.
type InviteMailer interface {
	SendInvite(to, name, role, officeName, tempPassword string) error
}

// UserService handles authentication and tenant user administration
type UserService struct {
	users     UserStore
	settings  SettingsStore
	mailer    InviteMailer
	jwtSecret []byte
}

// UserServiceOption is a functional option for UserService
type UserServiceOption func(*UserService)

// WithUserStore sets the user repository
func WithUserStore(store UserStore) UserServiceOption {
	return func(s *UserService) { s.users = store }
}

// WithUserSettings sets the tenant settings store, used for the office name
// in invitation emails
func WithUserSettings(store SettingsStore) UserServiceOption {
	return func(s *UserService) { s.settings = store }
}

// WithInviteMailer sets the invitation mailer
func WithInviteMailer(m InviteMailer) UserServiceOption {
	return func(s *UserService) { s.mailer = m }
}

// WithJWTSecret sets the token signing key
func WithJWTSecret(secret []byte) UserServiceOption {
	return func(s *UserService) { s.jwtSecret = secret }
}

// NewUserService creates a new user service
func NewUserService(opts ...UserServiceOption) *UserService {
	s := &UserService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string
	Password string
}

// LoginResult carries the issued token and the authenticated user
type LoginResult struct {
	Token string
	User  *models.User
}

// Login verifies credentials and issues a signed bearer token
func (s *UserService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidArgument)
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(req.Email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrUserInactive
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, User: user}, nil
}

func (s *UserService) issueToken(uid uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   uid.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates a bearer token and returns the user id it names
func (s *UserService) VerifyToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidCredentials
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return uuid.Nil, ErrInvalidCredentials
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidCredentials
	}
	return uid, nil
}

// ResolveUser loads the authenticated user from its token subject via the
// tenant index. Deactivated accounts fail here on every request.
func (s *UserService) ResolveUser(ctx context.Context, uid uuid.UUID) (*models.User, error) {
	tenantID, err := s.users.ResolveTenant(ctx, uid)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, tenantID, uid)
	if err != nil {
		return nil, notFoundErr(err)
	}
	if !user.Active {
		return nil, ErrUserInactive
	}
	return user, nil
}

// InviteUserRequest represents an admin inviting a colleague
type InviteUserRequest struct {
	TenantID uuid.UUID
	Email    string
	Name     string
	Role     string
}

// InviteUserResult carries the created user and its temporary password
type InviteUserResult struct {
	User         *models.User
	TempPassword string
}

// InviteUser creates a user in the admin's tenant with a temporary password
// and emails the invitation when SMTP is configured.
func (s *UserService) InviteUser(ctx context.Context, req InviteUserRequest) (*InviteUserResult, error) {
	if req.Email == "" || req.Name == "" || req.Role == "" {
		return nil, fmt.Errorf("%w: email, name and role are required", ErrInvalidArgument)
	}
	switch req.Role {
	case models.RoleAdmin, models.RoleLawyer, models.RoleAssistant:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidArgument, req.Role)
	}

	tempPassword, err := randomPassword()
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		TenantID:     req.TenantID,
		Email:        strings.ToLower(req.Email),
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         req.Role,
		Active:       true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.mailer != nil {
		officeName := ""
		if s.settings != nil {
			if settings, err := s.settings.Get(ctx, req.TenantID); err == nil {
				officeName = settings.Office.Name
			}
		}
		if err := s.mailer.SendInvite(user.Email, user.Name, user.Role, officeName, tempPassword); err != nil {
			log.Printf("Warning: failed to send invite email to %s: %v", user.Email, err)
		}
	} else {
		log.Printf("SMTP not configured; skipping invite email for %s", user.Email)
	}

	return &InviteUserResult{User: user, TempPassword: tempPassword}, nil
}

// ListUsers returns the users of a tenant
func (s *UserService) ListUsers(ctx context.Context, tenantID uuid.UUID) ([]*models.User, error) {
	return s.users.ListByTenant(ctx, tenantID)
}

// DeactivateUser disables a colleague's account. Admins cannot deactivate
// themselves.
func (s *UserService) DeactivateUser(ctx context.Context, tenantID, callerID, userID uuid.UUID) error {
	if userID == callerID {
		return fmt.Errorf("%w: cannot deactivate your own account", ErrInvalidArgument)
	}

	if _, err := s.users.GetByID(ctx, tenantID, userID); err != nil {
		return notFoundErr(err)
	}

	return s.users.SetActive(ctx, tenantID, userID, false)
}

func randomPassword() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
