package service

import (
	"context"
	"strings"

	"shareit/internal/apperr"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type UserService struct {
	repo     domain.Repository
	validate *validator.Validate
	logger   *zerolog.Logger
}

func NewUserService(repo domain.Repository, logger *zerolog.Logger) *UserService {
	return &UserService{
		repo:     repo,
		validate: validator.New(),
		logger:   logger,
	}
}

func (s *UserService) checkEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return apperr.BadRequestf("email must not be blank")
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return apperr.BadRequestf("invalid email: %s", email)
	}
	return nil
}

func (s *UserService) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if err := s.checkEmail(user.Email); err != nil {
		return nil, err
	}

	created := &models.User{Name: user.Name, Email: strings.TrimSpace(user.Email)}
	if err := s.repo.CreateUser(ctx, created); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", created.ID).Msg("user created")
	return created, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAllUsers(ctx)
}

// UpdateUser applies the non-empty fields of patch.
func (s *UserService) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
		user.Name = *patch.Name
	}
	if patch.Email != nil && strings.TrimSpace(*patch.Email) != "" {
		if err := s.checkEmail(*patch.Email); err != nil {
			return nil, err
		}
		user.Email = strings.TrimSpace(*patch.Email)
	}

	// уникальность email проверяет БД
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return user, nil
}
