package service

import (
	"context"

	"movie-recommendation-service/internal/models"
	"movie-recommendation-service/internal/validation"
)

// UserStore persists users.
type UserStore interface {
	UserLookup
	CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
}

type UserService struct {
	store UserStore
}

func NewUserService(store UserStore) *UserService {
	return &UserService{store: store}
}

func (s *UserService) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	if err := validation.ValidateStruct(&req); err != nil {
		return nil, err
	}
	return s.store.CreateUser(ctx, req)
}

func (s *UserService) GetUser(ctx context.Context, id int) (*models.User, error) {
	return s.store.GetUser(ctx, id)
}
