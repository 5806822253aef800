// Package account provides use cases for owner accounts: creation and
// password verification.
package account

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"homefeed/internal/domain/entity"
	"homefeed/internal/repository"
)

// saltLength is the byte length of the per-owner random salt.
const saltLength = 16

// minPasswordLength is the minimum accepted password length.
const minPasswordLength = 8

// Sentinel errors for account use case operations.
var (
	// ErrOwnerExists indicates that an owner with the same name already
	// exists. The comparison is case-insensitive.
	ErrOwnerExists = errors.New("owner with this name already exists")

	// ErrInvalidCredentials indicates a failed password verification.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// CreateInput represents the input parameters for creating an owner.
type CreateInput struct {
	Name     string
	Password string
	Admin    bool
}

// Service provides owner account use cases.
type Service struct {
	OwnerRepo repository.OwnerRepository
}

// Create registers a new owner. The name must be unique ignoring case.
// The password is stored as an HMAC-SHA256 digest keyed with a random
// per-owner salt.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Owner, error) {
	if in.Name == "" {
		return nil, &entity.ValidationError{Field: "name", Message: "is required"}
	}
	if len(in.Password) < minPasswordLength {
		return nil, &entity.ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("must be at least %d characters", minPasswordLength),
		}
	}

	existing, err := s.OwnerRepo.GetByName(ctx, in.Name)
	if err != nil {
		return nil, fmt.Errorf("check owner name: %w", err)
	}
	if existing != nil {
		return nil, ErrOwnerExists
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	owner := &entity.Owner{
		Name:         in.Name,
		PasswordHash: hashPassword(in.Password, salt),
		Salt:         salt,
		Admin:        in.Admin,
		CreatedAt:    time.Now(),
	}
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	if err := s.OwnerRepo.Create(ctx, owner); err != nil {
		return nil, fmt.Errorf("create owner: %w", err)
	}

	return owner, nil
}

// Authenticate verifies a name and password pair and returns the owner.
// Returns ErrInvalidCredentials for an unknown name or wrong password; the
// two cases are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, name, password string) (*entity.Owner, error) {
	owner, err := s.OwnerRepo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get owner: %w", err)
	}
	if owner == nil {
		return nil, ErrInvalidCredentials
	}

	if !hmac.Equal(hashPassword(password, owner.Salt), owner.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return owner, nil
}

// ChangePassword replaces an owner's password, rotating the salt.
func (s *Service) ChangePassword(ctx context.Context, ownerID int64, password string) error {
	if len(password) < minPasswordLength {
		return &entity.ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("must be at least %d characters", minPasswordLength),
		}
	}

	owner, err := s.OwnerRepo.Get(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("get owner: %w", err)
	}
	if owner == nil {
		return entity.ErrNotFound
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}

	owner.Salt = salt
	owner.PasswordHash = hashPassword(password, salt)

	if err := s.OwnerRepo.Update(ctx, owner); err != nil {
		return fmt.Errorf("update owner: %w", err)
	}
	return nil
}

// hashPassword derives the stored digest from a password and salt.
func hashPassword(password string, salt []byte) []byte {
	mac := hmac.New(sha256.New, salt)
	mac.Write([]byte(password))
	return mac.Sum(nil)
}
