package service

import (
	"context"
	"fmt"
	"strings"

	"slotbook/internal/models"
)

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// EnsureMember records the member behind a session and returns the stored
// row with roles.
func (s *UserService) EnsureMember(ctx context.Context, vid int64, name, email string) (*models.User, error) {
	u := &models.User{VID: vid, Name: strings.TrimSpace(name)}
	if e := strings.TrimSpace(email); e != "" {
		u.Email = &e
	}
	if err := s.users.Upsert(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to record member: %w", err)
	}

	stored, err := s.users.GetByVID(ctx, vid)
	if err != nil {
		return nil, fmt.Errorf("failed to load member: %w", err)
	}
	if stored == nil {
		return u, nil
	}
	return stored, nil
}
