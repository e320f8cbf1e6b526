// Package users manages owner-issued accounts (buyers and assigned users).
package users

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nberthet/depotvente/internal/apperr"
	"github.com/nberthet/depotvente/internal/auth"
	"github.com/nberthet/depotvente/internal/models"
	"github.com/nberthet/depotvente/internal/storage"
)

// Service provides account management on a RecordStore backend.
type Service struct {
	store storage.RecordStore
}

// NewService creates a new Service with the given storage backend.
func NewService(store storage.RecordStore) *Service {
	return &Service{store: store}
}

// Create registers a new account and returns it with its generated ID.
// Owner only. Role defaults to AssignedUser when empty.
func (s *Service) Create(ctx context.Context, tok *auth.Token, displayName, phone string, role models.Role) (*models.User, error) {
	if tok == nil || tok.Role != models.RoleOwner {
		return nil, apperr.Unauthorized("creating users requires the owner role")
	}
	if strings.TrimSpace(displayName) == "" {
		return nil, apperr.Validation("display name is required")
	}
	if role == "" {
		role = models.RoleAssignedUser
	}
	if !role.Valid() || role == models.RoleOwner {
		return nil, apperr.Validation("invalid role: %s", role)
	}

	user := &models.User{
		ID:          uuid.New().String(),
		Role:        role,
		DisplayName: strings.TrimSpace(displayName),
		Phone:       strings.TrimSpace(phone),
		CreatedAt:   time.Now().Unix(),
	}

	if err := s.store.PutUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("User created", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Get retrieves an account by ID.
func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	return s.store.GetUser(ctx, id)
}

// List returns all accounts in stable order. Owner only.
func (s *Service) List(ctx context.Context, tok *auth.Token) ([]*models.User, error) {
	if tok == nil || tok.Role != models.RoleOwner {
		return nil, apperr.Unauthorized("listing users requires the owner role")
	}
	return s.store.ListUsers(ctx)
}

// SuggestByName returns the IDs of accounts whose display name matches,
// for the owner's consignment form.
func (s *Service) SuggestByName(ctx context.Context, tok *auth.Token, name string) ([]string, error) {
	if tok == nil || tok.Role != models.RoleOwner {
		return nil, apperr.Unauthorized("user lookup requires the owner role")
	}
	all, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	name = strings.ToLower(strings.TrimSpace(name))
	var ids []string
	for _, u := range all {
		if strings.ToLower(u.DisplayName) == name {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}
