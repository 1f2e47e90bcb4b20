package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-board/internal/models"
	"github.com/sirupsen/logrus"
)

// UserService holds the admin-only user management operations.
type UserService struct {
	Store UserStore
}

func NewUserService(store UserStore) *UserService {
	return &UserService{Store: store}
}

func (s *UserService) UpdateRole(ctx context.Context, actor models.Actor, userID uuid.UUID, role models.Role) (*models.Profile, error) {
	if actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	if err := s.Store.UpdateRole(ctx, userID, role); err != nil {
		return nil, lookupFailure("update role", err)
	}
	logrus.WithFields(logrus.Fields{
		"user_id":  userID,
		"actor_id": actor.ID,
		"role":     role,
	}).Info("user role changed")

	profile, err := s.Store.GetProfile(ctx, userID)
	if err != nil {
		return nil, lookupFailure("load profile", err)
	}
	return profile, nil
}
