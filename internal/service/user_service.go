package service

import (
	"context"
	"fmt"
	"strings"

	"lendit/internal/domain"
	"lendit/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	users  domain.UserDirectory
	logger *zerolog.Logger
}

func NewUserService(users domain.UserDirectory, logger *zerolog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

func (s *UserService) Create(ctx context.Context, name, email string) (*models.User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("user name is required: %w", domain.ErrInvalid)
	}
	if !validEmail(email) {
		return nil, fmt.Errorf("invalid email %q: %w", email, domain.ErrInvalid)
	}

	user := &models.User{Name: name, Email: email}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("user_id", user.ID).Msg("user created")
	return user, nil
}

// Update changes name and/or email. Blank fields are left untouched.
func (s *UserService) Update(ctx context.Context, id int64, name, email string) (*models.User, error) {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(name) != "" {
		user.Name = name
	}
	if strings.TrimSpace(email) != "" {
		if !validEmail(email) {
			return nil, fmt.Errorf("invalid email %q: %w", email, domain.ErrInvalid)
		}
		user.Email = email
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.users.GetUser(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.ListUsers(ctx)
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}

func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}
