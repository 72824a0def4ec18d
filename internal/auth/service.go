package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type Service struct {
	store  CredentialStore
	hasher PasswordHasher
	issuer *Issuer
	logger *slog.Logger

	// Verified against when the identity is unknown so both failure paths
	// cost one hash.
	decoy string
}

func NewService(store CredentialStore, hasher PasswordHasher, issuer *Issuer, logger *slog.Logger) (*Service, error) {
	decoy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("prepare hasher: %w", err)
	}
	return &Service{
		store:  store,
		hasher: hasher,
		issuer: issuer,
		logger: logger,
		decoy:  decoy,
	}, nil
}

type RegisterRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

// Register creates a credential. An existing id or email is rejected with
// ErrDuplicateIdentity and nothing is written.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	req.ID = strings.TrimSpace(req.ID)
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if req.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	role, err := ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	exists, err := s.store.ExistsByIdentityOrEmail(ctx, req.ID, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check identity: %w", err)
	}
	if exists {
		return nil, ErrDuplicateIdentity
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &User{
		ID:           req.ID,
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicateIdentity) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("user registered", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Login verifies the password and mints a token. A requested role must match
// the stored one; no role may be assumed at login.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if strings.TrimSpace(req.ID) == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: id and password are required", ErrInvalidInput)
	}
	var requested Role
	if req.Role != "" {
		r, err := ParseRole(req.Role)
		if err != nil {
			return nil, err
		}
		requested = r
	}

	u, err := s.store.FindByIdentity(ctx, strings.TrimSpace(req.ID))
	if errors.Is(err, ErrUserNotFound) {
		s.hasher.Verify(req.Password, s.decoy)
		s.logger.Warn("login rejected", "reason", "unknown_identity", "user_id", req.ID)
		return nil, ErrUnknownIdentity
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !s.hasher.Verify(req.Password, u.PasswordHash) {
		s.logger.Warn("login rejected", "reason", "bad_credential", "user_id", u.ID)
		return nil, ErrBadCredential
	}
	if requested != "" && requested != u.Role {
		s.logger.Warn("login rejected", "reason", "role_not_permitted", "user_id", u.ID, "requested_role", requested)
		return nil, fmt.Errorf("%w: cannot login as %s", ErrRoleNotPermitted, requested)
	}

	token, exp, err := s.issuer.Issue(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user logged in", "user_id", u.ID, "role", u.Role)
	return &LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}

type usersFile struct {
	Users []RegisterRequest `yaml:"users"`
}

// SeedFromFile registers the users listed in a YAML file, skipping ones that
// already exist.
func (s *Service) SeedFromFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var uf usersFile
	if err := yaml.Unmarshal(data, &uf); err != nil {
		return err
	}
	for _, u := range uf.Users {
		if u.Email == "" || u.Password == "" {
			continue
		}
		if _, err := s.Register(ctx, u); err != nil {
			if errors.Is(err, ErrDuplicateIdentity) {
				continue
			}
			return fmt.Errorf("seed %s: %w", u.Email, err)
		}
	}
	return nil
}
