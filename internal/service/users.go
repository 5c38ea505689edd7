package service

import (
	"context"
	"errors"
	"log/slog"

	"cinevault/internal/domain"
	"cinevault/internal/mapper"
	"cinevault/internal/query"
	"cinevault/internal/stats"
	"cinevault/pkg/auth"
)

// UserService операции над пользователями.
type UserService struct {
	*base
	hasher auth.PasswordHasher
}

var _ Entity[domain.UserRequest, *domain.User] = (*UserService)(nil)

var userMessages = storeMessages{
	notFound:   "User not found",
	conflict:   "User with this username or email already exists",
	dependents: "User has reviews or likes and cannot be deleted",
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.store.FindUsers(ctx, query.AllUsers())
	return users, s.translate(ctx, "list users", err, userMessages)
}

func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, s.translate(ctx, "get user", err, userMessages)
	}
	return user, nil
}

func (s *UserService) hash(ctx context.Context, password string) (string, error) {
	hashed, err := s.hasher.Hash(password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return "", Validation("password must be at most 72 bytes")
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to hash password", slog.String("error", err.Error()))
		return "", Internal(err)
	}
	return hashed, nil
}

func (s *UserService) Create(ctx context.Context, req domain.UserRequest) (int64, error) {
	if err := s.validate(ctx, req); err != nil {
		return 0, err
	}
	hashed, err := s.hash(ctx, req.Password)
	if err != nil {
		return 0, err
	}
	user := domain.User{PasswordHash: hashed}
	mapper.ApplyUser(req, &user)
	if err := s.store.CreateUser(ctx, &user); err != nil {
		return 0, s.translate(ctx, "create user", err, userMessages)
	}
	s.logger.InfoContext(ctx, "User created", slog.Int64("userID", user.ID), slog.String("username", user.Username))
	return user.ID, nil
}

// Update заменяет имя, почту и пароль.
func (s *UserService) Update(ctx context.Context, id int64, req domain.UserRequest) error {
	if err := s.validate(ctx, req); err != nil {
		return err
	}
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return s.translate(ctx, "get user", err, userMessages)
	}
	hashed, err := s.hash(ctx, req.Password)
	if err != nil {
		return err
	}
	mapper.ApplyUser(req, user)
	user.PasswordHash = hashed
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return s.translate(ctx, "update user", err, userMessages)
	}
	s.logger.InfoContext(ctx, "User updated", slog.Int64("userID", id))
	return nil
}

func (s *UserService) Delete(ctx context.Context, id int64, mode DeleteMode) error {
	var err error
	if mode == HardDelete {
		err = s.store.DeleteUser(ctx, id)
	} else {
		err = s.store.SoftDeleteUser(ctx, id)
	}
	if err != nil {
		return s.translate(ctx, "delete user", err, userMessages)
	}
	s.logger.InfoContext(ctx, "User deleted", slog.Int64("userID", id), slog.String("mode", mode.String()))
	return nil
}

func (s *UserService) Search(ctx context.Context, req domain.UserSearchRequest) ([]*domain.User, error) {
	filter, err := query.UserSearch(req)
	if err != nil {
		return nil, Validation("%s", err.Error())
	}
	users, err := s.store.FindUsers(ctx, filter)
	return users, s.translate(ctx, "search users", err, userMessages)
}

// Stats считает статистику по неудаленным отзывам пользователя.
func (s *UserService) Stats(ctx context.Context, id int64) (domain.UserStats, error) {
	if _, err := s.store.GetUser(ctx, id); err != nil {
		return domain.UserStats{}, s.translate(ctx, "get user", err, userMessages)
	}
	reviews, err := s.store.ReviewsByUser(ctx, id)
	if err != nil {
		return domain.UserStats{}, s.translate(ctx, "user reviews", err, userMessages)
	}
	return stats.ForUser(reviews), nil
}
