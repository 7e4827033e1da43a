package service

import (
	"context"

	"github.com/referly/referral-api/internal/models"
	"github.com/referly/referral-api/internal/repository"
)

type UserService interface {
	List(ctx context.Context) ([]*models.User, error)
}

type userService struct {
	u repository.UserRepository
}

func NewUserService(u repository.UserRepository) UserService {
	return &userService{u: u}
}

func (s *userService) List(ctx context.Context) ([]*models.User, error) {
	return s.u.List(ctx)
}
