package users

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/bryanlu3000/sign-in-demo/internal/models"
)

// bcryptCost matches the original deployment's work factor.
const bcryptCost = 10

var (
	// ErrDuplicateEmail is returned by Register when the email already has a record
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials is returned by Authenticate for unknown email or password mismatch
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service encapsulates credential-store business logic
type Service struct {
	repo UserRepository
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r}
}

// Register hashes the password and inserts a new user record.
// The duplicate check and the insert are not atomic and there is no unique
// index on email, so two concurrent registrations can both succeed. That
// matches the observed behavior of the system this replaces.
func (s *Service) Register(ctx context.Context, email, password string) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrDuplicateEmail
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}
	return s.repo.Insert(ctx, &models.User{Email: email, Password: string(hash)})
}

// Authenticate compares the plaintext password against the stored bcrypt hash.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// SetRefreshToken persists the latest refresh token on the user record.
// Concurrent logins for the same email race here; last write wins.
func (s *Service) SetRefreshToken(ctx context.Context, email, token string) error {
	return s.repo.SetRefreshToken(ctx, email, token)
}

// ClearRefreshToken empties the stored refresh token, ending the session
func (s *Service) ClearRefreshToken(ctx context.Context, email string) error {
	return s.repo.SetRefreshToken(ctx, email, "")
}

func (s *Service) FindByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	return s.repo.FindByRefreshToken(ctx, token)
}

func (s *Service) ListEmails(ctx context.Context) ([]string, error) {
	return s.repo.ListEmails(ctx)
}
