package service

import (
	"context"
	"strings"

	"github.com/ce-fello/synergy-crm/src/internal/model"

	"go.uber.org/zap"
)

func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.ListUsers(ctx)
	return users, s.fail(err, "users")
}

func (s *Service) GetUser(ctx context.Context, id string) (model.User, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return model.User{}, s.fail(err, "user")
	}
	return u, nil
}

// CreateUser rejects an email already held by an active user.
func (s *Service) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createUser(ctx, u)
}

// createUser must be called with s.mu held.
func (s *Service) createUser(ctx context.Context, u model.User) (model.User, error) {
	if strings.TrimSpace(u.Email) == "" || strings.TrimSpace(u.Name) == "" {
		return model.User{}, invalid("name and email required")
	}
	if !u.Role.Valid() {
		return model.User{}, invalid("unknown role " + string(u.Role))
	}
	if _, ok, err := s.repo.FindUserByEmail(ctx, u.Email); err != nil {
		return model.User{}, s.fail(err, "user")
	} else if ok {
		return model.User{}, conflict("email " + u.Email + " already in use")
	}
	created, err := s.repo.CreateUser(ctx, u)
	if err != nil {
		return created, s.fail(err, "user")
	}
	s.log.Info("CreateUser: success", zap.String("user", created.ID), zap.String("role", string(created.Role)))
	return created, nil
}

// UpdateUser merges patch onto the user. The result may not share its email
// with another active user, whether the patch changes the email or reactivates.
func (s *Service) UpdateUser(ctx context.Context, id string, patch model.Patch) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return model.User{}, s.fail(err, "user")
	}
	next, err := model.Merge(cur, patch)
	if err != nil {
		return model.User{}, s.fail(err, "user")
	}
	if !next.Role.Valid() {
		return model.User{}, invalid("unknown role " + string(next.Role))
	}
	emailChanged := !strings.EqualFold(strings.TrimSpace(next.Email), strings.TrimSpace(cur.Email))
	if next.IsActive && (emailChanged || !cur.IsActive) {
		if other, ok, err := s.repo.FindUserByEmail(ctx, next.Email); err != nil {
			return model.User{}, s.fail(err, "user")
		} else if ok && other.ID != id {
			return model.User{}, conflict("email " + next.Email + " already in use")
		}
	}
	u, err := s.repo.UpdateUser(ctx, id, patch)
	if err != nil {
		return u, s.fail(err, "user")
	}
	return u, nil
}

// SetUserIsActive refuses to reactivate a user whose email has since been
// taken by another active account.
func (s *Service) SetUserIsActive(ctx context.Context, userID string, isActive bool) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if isActive {
		cur, err := s.repo.GetUser(ctx, userID)
		if err != nil {
			return model.User{}, s.fail(err, "user")
		}
		if other, ok, err := s.repo.FindUserByEmail(ctx, cur.Email); err != nil {
			return model.User{}, s.fail(err, "user")
		} else if ok && other.ID != userID {
			return model.User{}, conflict("email " + cur.Email + " already in use")
		}
	}
	u, err := s.repo.SetUserIsActive(ctx, userID, isActive)
	if err != nil {
		return u, s.fail(err, "user")
	}
	return u, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) (bool, error) {
	ok, err := s.repo.DeleteUser(ctx, id)
	return ok, s.fail(err, "user")
}
