package services

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"taskflow/internal/apperr"
	"taskflow/internal/authz"
	"taskflow/internal/models"
	"taskflow/internal/utils"
)

// AuthService covers password hashing and bearer tokens.
type AuthService interface {
	HashPassword(plain string) (string, error)
	CheckPassword(hash, plain string) bool
	IssueToken(user *models.User) (string, error)
	// Authenticate resolves a bearer token into the caller identity or fails with Unauthenticated.
	Authenticate(token string) (authz.Identity, error)
}

type authService struct {
	tokens *utils.TokenManager
	cost   int

	dummyOnce sync.Once
	dummy     []byte
}

func NewAuthService(tokens *utils.TokenManager) AuthService {
	return &authService{tokens: tokens, cost: bcrypt.DefaultCost}
}

// newAuthServiceWithCost lets tests use bcrypt.MinCost.
func newAuthServiceWithCost(tokens *utils.TokenManager, cost int) AuthService {
	return &authService{tokens: tokens, cost: cost}
}

func (s *authService) HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// CheckPassword with an empty hash still pays for one bcrypt comparison,
// so unknown accounts take as long to reject as wrong passwords.
func (s *authService) CheckPassword(hash, plain string) bool {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash(), []byte(plain))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

func (s *authService) dummyHash() []byte {
	s.dummyOnce.Do(func() {
		s.dummy, _ = bcrypt.GenerateFromPassword([]byte("taskflow-no-such-user"), s.cost)
	})
	return s.dummy
}

func (s *authService) IssueToken(user *models.User) (string, error) {
	return s.tokens.Issue(user.ID, user.Role)
}

func (s *authService) Authenticate(token string) (authz.Identity, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return authz.Identity{}, apperr.Unauthenticated("Invalid or expired token")
	}
	return authz.Identity{ID: claims.UserID, Role: claims.Role}, nil
}
