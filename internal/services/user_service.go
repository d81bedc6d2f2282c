package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskflow/internal/apperr"
	"taskflow/internal/authz"
	"taskflow/internal/logger"
	"taskflow/internal/metrics"
	"taskflow/internal/models"
	"taskflow/internal/repositories"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLen = 6

type SignupInput struct {
	Name     string
	Email    string
	Password string
	Role     string // admin|moderator honored, anything else -> user
}

// AuthResult is what signup and login hand back to the client.
type AuthResult struct {
	Token string
	User  *models.User
}

type UserService interface {
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, caller authz.Identity, id string, patch models.UserPatch) (*models.User, error)
}

type userService struct {
	repo    repositories.UserRepository
	auth    AuthService
	mailer  EmailService // nil when SMTP is not configured
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string
}

func NewUserService(repo repositories.UserRepository, auth AuthService, mailer EmailService, m *metrics.Metrics) UserService {
	return &userService{
		repo:    repo,
		auth:    auth,
		mailer:  mailer,
		metrics: m,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	log := logger.FromContext(ctx)

	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, apperr.Validation("Please provide name, email, and password")
	}
	if !emailRe.MatchString(email) {
		return nil, apperr.Validation("Please provide a valid email")
	}
	if len(in.Password) < minPasswordLen {
		return nil, apperr.Validation("Password must be at least 6 characters")
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		log.Warn("[auth][signup] duplicate email", "email", email)
		return nil, apperr.Conflict("User with this email already exists")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.Internal("Server error during registration", err)
	}

	hash, err := s.auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("Server error during registration", err)
	}
	user := &models.User{
		ID:           s.newID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         authz.SignupRole(in.Role),
		CreatedAt:    s.now(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// lost a race against a concurrent signup with the same email
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, apperr.Conflict("User with this email already exists")
		}
		return nil, apperr.Internal("Server error during registration", err)
	}

	token, err := s.auth.IssueToken(user)
	if err != nil {
		return nil, apperr.Internal("Server error during registration", err)
	}
	log.Info("[auth][signup][ok]", "id", user.ID, "role", user.Role)

	if s.mailer != nil {
		if err := s.mailer.SendWelcomeEmail(user.Email, user.Name); err != nil {
			// warn but do not fail creation
			log.Warn("[auth][signup] welcome email failed", "email", user.Email, "err", err)
		}
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("Please provide email and password")
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			log.Info("[auth][login] unknown email", "email", email)
			s.auth.CheckPassword("", password)
			s.metrics.AuthFailure("invalid_credentials")
			return nil, apperr.Unauthenticated("Invalid credentials")
		}
		return nil, apperr.Internal("Server error during login", err)
	}
	if !s.auth.CheckPassword(user.PasswordHash, password) {
		log.Info("[auth][login] password mismatch", "id", user.ID)
		s.metrics.AuthFailure("invalid_credentials")
		return nil, apperr.Unauthenticated("Invalid credentials")
	}

	token, err := s.auth.IssueToken(user)
	if err != nil {
		return nil, apperr.Internal("Server error during login", err)
	}
	log.Info("[auth][login][ok]", "id", user.ID, "role", user.Role, "took", time.Since(start).Truncate(time.Millisecond))
	return &AuthResult{Token: token, User: user}, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("Server error", err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Internal("Server error", err)
	}
	return users, nil
}

// Update is the administrative profile/role update; it is the only path that
// changes a user's role.
func (s *userService) Update(ctx context.Context, caller authz.Identity, id string, patch models.UserPatch) (*models.User, error) {
	if !caller.IsAdmin() {
		return nil, apperr.Forbidden("only admin can update users")
	}
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		user.Name = name
	}
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		if !emailRe.MatchString(email) {
			return nil, apperr.Validation("Please provide a valid email")
		}
		user.Email = email
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			return nil, apperr.Validation("invalid role")
		}
		user.Role = *patch.Role
	}

	if err := s.repo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateEmail):
			return nil, apperr.Conflict("User with this email already exists")
		case errors.Is(err, repositories.ErrNotFound):
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("failed to update user", err)
	}
	logger.FromContext(ctx).Info("[user][update][ok]", "id", id, "role", user.Role, "by", caller.ID)
	return user, nil
}
