package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/sattegames/satta-services/internal/gamesvc/models"
	"github.com/sattegames/satta-services/internal/gamesvc/store"
)

// UserService struct represents the user service layer
type UserService struct {
	userStore *store.UserStore
}

// NewUserService creates a new UserService instance
func NewUserService(userStore *store.UserStore) *UserService {
	return &UserService{
		userStore: userStore,
	}
}

// GetOrCreateUser checks if a user exists and creates them if not. The
// identity fields arrive from the authenticated client and are trusted as
// given.
func (s *UserService) GetOrCreateUser(ctx context.Context, userInfo models.User) (*models.User, error) {
	existingUser, err := s.userStore.GetByID(ctx, userInfo.UserId)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %v", err)
	}
	if existingUser != nil {
		return existingUser, nil
	}

	log.Infof("user %d not found, creating", userInfo.UserId)

	userInfo.Status = "ACTIVE"
	userId, err := s.userStore.CreateUser(ctx, userInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %v", err)
	}

	userInfo.UserId = userId
	return &userInfo, nil
}
